// Package db provides database connectivity for the inkwell application.
// It establishes the MongoDB client, verifies the connection with a ping,
// and ensures the indexes the application relies on: unique username and
// email on the users collection, and a descending createdAt index on posts
// so the newest-first listing stays an index scan.
package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/user/inkwell-go/apperror"
	"github.com/user/inkwell-go/config"
)

// Collection names used across the application.
const (
	UsersCollection = "users"
	PostsCollection = "posts"
)

// Connect establishes the MongoDB client and returns it together with a
// handle to the configured database. The caller owns the client and must
// Disconnect it on shutdown.
func Connect(cfg *config.MongoConfig) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, apperror.NewDatabaseError("failed to connect to mongodb", err)
	}

	// Connect does not block on establishing a connection, so ping to verify
	// the server is actually reachable before the application starts serving.
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, apperror.NewDatabaseError("failed to ping mongodb", err)
	}

	return client, client.Database(cfg.Database), nil
}

// EnsureIndexes creates the indexes the application depends on. Index
// creation is idempotent, so running it on every startup is safe.
func EnsureIndexes(database *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Unique indexes back the registration conflict checks: even if two
	// concurrent registrations pass the pre-check, the second insert fails
	// with a duplicate key error.
	userIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := database.Collection(UsersCollection).Indexes().CreateMany(ctx, userIndexes); err != nil {
		return apperror.NewDatabaseError("failed to create user indexes", err)
	}

	postIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	}
	if _, err := database.Collection(PostsCollection).Indexes().CreateMany(ctx, postIndexes); err != nil {
		return apperror.NewDatabaseError("failed to create post indexes", err)
	}

	return nil
}
