package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/saydalia/saydalia/app/models"
	"github.com/saydalia/saydalia/pkg/database"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoPharmacyRepository stores pharmacies with their medicine catalog
// embedded in the same document.
type MongoPharmacyRepository struct {
	c *mongo.Collection
}

func NewPharmacyRepository(db *mongo.Database) *MongoPharmacyRepository {
	return &MongoPharmacyRepository{c: db.Collection("pharmacies")}
}

func (r *MongoPharmacyRepository) Create(ctx context.Context, p *models.Pharmacy) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	if _, err := r.c.InsertOne(ctx, p); err != nil {
		if database.IsDup(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *MongoPharmacyRepository) FindByID(ctx context.Context, id primitive.ObjectID) (models.Pharmacy, error) {
	var p models.Pharmacy
	err := r.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Pharmacy{}, ErrNotFound
	}
	return p, err
}

func (r *MongoPharmacyRepository) FindByAdmin(ctx context.Context, adminID primitive.ObjectID) (models.Pharmacy, error) {
	var p models.Pharmacy
	err := r.c.FindOne(ctx, bson.M{"admin": adminID}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Pharmacy{}, ErrNotFound
	}
	return p, err
}

// FindByMedicine locates the pharmacy whose catalog contains the medicine.
func (r *MongoPharmacyRepository) FindByMedicine(ctx context.Context, medicineID primitive.ObjectID) (models.Pharmacy, error) {
	var p models.Pharmacy
	err := r.c.FindOne(ctx, bson.M{"medicines._id": medicineID}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Pharmacy{}, ErrNotFound
	}
	return p, err
}

func (r *MongoPharmacyRepository) All(ctx context.Context) ([]models.Pharmacy, error) {
	cur, err := r.c.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Pharmacy{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Replace writes the whole document back. The admin is part of the filter,
// so a non-owner write matches nothing and reads as not found.
func (r *MongoPharmacyRepository) Replace(ctx context.Context, p *models.Pharmacy) error {
	p.UpdatedAt = time.Now()

	res, err := r.c.ReplaceOne(ctx, bson.M{"_id": p.ID, "admin": p.Admin}, p)
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

func (r *MongoPharmacyRepository) Delete(ctx context.Context, id, adminID primitive.ObjectID) error {
	res, err := r.c.DeleteOne(ctx, bson.M{"_id": id, "admin": adminID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
