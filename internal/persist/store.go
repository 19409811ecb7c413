// Package persist snapshots book summaries, the derived trade tape, and
// the replay-resume position to MongoDB, adapted from the teacher's own
// persist package. It never persists the order book's ring/deep internals
// themselves — only point-in-time summaries and the raw trade tape.
package persist

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Store wraps a MongoDB client and the database this module's collections
// live in.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewStore connects to uri and pings the server, failing fast rather than
// returning a lazily-broken client.
func NewStore(ctx context.Context, uri string) (*Store, error) {
	opts := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("persist: connect: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("persist: ping: %w", err)
	}

	dbName, err := dbNameFromURI(uri)
	if err != nil {
		return nil, err
	}

	return &Store{client: client, db: client.Database(dbName)}, nil
}

func dbNameFromURI(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("persist: parse mongo uri: %w", err)
	}
	name := strings.TrimPrefix(u.Path, "/")
	if name == "" {
		return "itchbook", nil
	}
	return name, nil
}

// Migrate ensures every collection's indexes exist. Safe to call on every
// startup; index creation is idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	return EnsureIndexes(ctx, s.db)
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
