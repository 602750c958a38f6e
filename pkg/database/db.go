// Package database owns the MongoDB connection and index bootstrap.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/saydalia/saydalia/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var (
	Client *mongo.Client
	DB     *mongo.Database
)

// Connect opens the MongoDB connection and verifies it with a ping.
// Returns an error instead of exiting so the caller can shut down gracefully.
func Connect() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(config.MongoURI()).
		SetMaxPoolSize(25).
		SetMaxConnIdleTime(2*time.Minute))
	if err != nil {
		return fmt.Errorf("database: connect: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("database: ping: %w", err)
	}

	Client = client
	DB = client.Database(config.MongoDatabase())
	return nil
}

// Disconnect closes the client connection.
func Disconnect(ctx context.Context) error {
	if Client == nil {
		return nil
	}
	return Client.Disconnect(ctx)
}

// Ping verifies the connection is still live (used by /health).
func Ping(ctx context.Context) error {
	if Client == nil {
		return fmt.Errorf("database: not connected")
	}
	return Client.Ping(ctx, readpref.Primary())
}

// EnsureIndexes creates the collection indexes the application relies on.
//
// The unique index on pharmacies.admin is what makes "one pharmacy per admin"
// hold under concurrent creation; the pre-check in the service only exists to
// produce a friendlier conflict message.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	// users.email — unique, case-insensitive (collation strength 2).
	_, err := db.Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
		Options: options.Index().
			SetUnique(true).
			SetCollation(&options.Collation{Locale: "en", Strength: 2}),
	})
	if err != nil {
		return fmt.Errorf("database: users.email index: %w", err)
	}

	_, err = db.Collection("pharmacies").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "admin", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("database: pharmacies.admin index: %w", err)
	}

	_, err = db.Collection("orders").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "pharmacy", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("database: orders indexes: %w", err)
	}

	_, err = db.Collection("notifications").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("database: notifications index: %w", err)
	}

	return nil
}

// IsDup reports whether err is a MongoDB duplicate-key error.
func IsDup(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}
