package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/saydalia/saydalia/app/models"
	"github.com/saydalia/saydalia/pkg/database"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// emailCollation makes lookups match the case-insensitive unique index.
var emailCollation = &options.Collation{Locale: "en", Strength: 2}

// MongoUserRepository is the users collection implementation.
type MongoUserRepository struct {
	c *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{c: db.Collection("users")}
}

func (r *MongoUserRepository) Create(ctx context.Context, u *models.User) error {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	u.Email = strings.TrimSpace(strings.ToLower(u.Email))
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := r.c.InsertOne(ctx, u); err != nil {
		if database.IsDup(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *MongoUserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	var u models.User
	err := r.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, ErrNotFound
	}
	return u, err
}

func (r *MongoUserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := r.c.FindOne(ctx,
		bson.M{"email": strings.TrimSpace(strings.ToLower(email))},
		options.FindOne().SetCollation(emailCollation),
	).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, ErrNotFound
	}
	return u, err
}

func (r *MongoUserRepository) Update(ctx context.Context, u *models.User) error {
	u.Email = strings.TrimSpace(strings.ToLower(u.Email))
	u.UpdatedAt = time.Now()

	res, err := r.c.ReplaceOne(ctx, bson.M{"_id": u.ID}, u)
	if err != nil {
		if database.IsDup(err) {
			return ErrDuplicate
		}
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoUserRepository) SetPharmacy(ctx context.Context, userID primitive.ObjectID, pharmacyID *primitive.ObjectID) error {
	set := bson.M{"updatedAt": time.Now()}
	unset := bson.M{}
	if pharmacyID == nil {
		unset["pharmacy"] = ""
	} else {
		set["pharmacy"] = *pharmacyID
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	res, err := r.c.UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoUserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
