package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mkdirlove/song-server/internal/config"
)

// Collection names.
const (
	colUsers = "users"
	colSongs = "songs"
)

// Connect opens a pooled client and verifies connectivity. The returned
// database handle is safe for concurrent use by all in-flight requests.
func Connect(ctx context.Context, cfg config.MongoConfig) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("repository: failed to connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("repository: ping failed: %w", err)
	}

	return client.Database(cfg.Database), nil
}

// EnsureIndexes declares the uniqueness constraints. Enforcing them at the
// storage layer is what keeps concurrent duplicate inserts from racing a
// check-then-insert pattern.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(colUsers).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("repository: users index: %w", err)
	}

	_, err = db.Collection(colSongs).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}, {Key: "source_url", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("repository: songs index: %w", err)
	}
	return nil
}
