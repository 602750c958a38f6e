package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/saydalia/saydalia/app/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type MongoNotificationRepository struct {
	c *mongo.Collection
}

func NewNotificationRepository(db *mongo.Database) *MongoNotificationRepository {
	return &MongoNotificationRepository{c: db.Collection("notifications")}
}

func (r *MongoNotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	n.CreatedAt = time.Now()

	_, err := r.c.InsertOne(ctx, n)
	return err
}

func (r *MongoNotificationRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	cur, err := r.c.Find(ctx, bson.M{"user": userID}, newestFirst)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Notification{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkRead flips the read flag. The recipient is part of the filter, so
// another user's notification reads as not found. Marking an already-read
// notification succeeds.
func (r *MongoNotificationRepository) MarkRead(ctx context.Context, id, userID primitive.ObjectID) (models.Notification, error) {
	var n models.Notification
	err := r.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "user": userID},
		bson.M{"$set": bson.M{"read": true}},
		findAfter,
	).Decode(&n)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Notification{}, ErrNotFound
	}
	return n, err
}

func (r *MongoNotificationRepository) CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return r.c.CountDocuments(ctx, bson.M{"user": userID, "read": false})
}
