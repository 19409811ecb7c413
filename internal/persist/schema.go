package persist

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// EnsureIndexes creates every index this package's collections need, if it
// doesn't already exist.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := []struct {
		collection string
		models     []mongo.IndexModel
	}{
		{
			collection: "book_summaries",
			models: []mongo.IndexModel{
				{Keys: bson.D{{Key: "stock", Value: 1}, {Key: "at", Value: -1}}},
			},
		},
		{
			collection: "trades",
			models: []mongo.IndexModel{
				{Keys: bson.D{{Key: "stock", Value: 1}, {Key: "executed_at", Value: -1}}},
				{Keys: bson.D{{Key: "match_number", Value: 1}}, Options: options.Index().SetUnique(true)},
			},
		},
		{
			collection: "replay_state",
			models: []mongo.IndexModel{
				{Keys: bson.D{{Key: "capture_path", Value: 1}}, Options: options.Index().SetUnique(true)},
			},
		},
	}

	for _, s := range specs {
		if _, err := db.Collection(s.collection).Indexes().CreateMany(ctx, s.models); err != nil {
			return fmt.Errorf("persist: ensure indexes on %s: %w", s.collection, err)
		}
	}
	return nil
}
