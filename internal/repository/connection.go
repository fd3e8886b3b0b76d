package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoConfig describes the document database behind MongoStore.
type MongoConfig struct {
	URI         string
	Database    string
	MaxPoolSize uint64
	// ServerSelectionTimeout bounds how long an operation waits for a usable
	// server. Zero means five seconds.
	ServerSelectionTimeout time.Duration
}

func (c MongoConfig) clientOptions() (*options.ClientOptions, error) {
	if c.URI == "" {
		return nil, errors.New("mongo: URI is required")
	}
	if c.Database == "" {
		return nil, errors.New("mongo: database name is required")
	}
	selection := c.ServerSelectionTimeout
	if selection <= 0 {
		selection = 5 * time.Second
	}
	opts := options.Client().
		ApplyURI(c.URI).
		SetAppName("storefront").
		SetServerSelectionTimeout(selection).
		SetRetryWrites(true)
	if c.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(c.MaxPoolSize)
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("mongo options: %w", err)
	}
	return opts, nil
}

// OpenMongoStore connects, waits for the primary and returns a store over the
// configured database with its indexes in place. The returned func
// disconnects the client.
func OpenMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, func(context.Context) error, error) {
	opts, err := cfg.clientOptions()
	if err != nil {
		return nil, nil, err
	}
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongo: %w", err)
	}
	disconnect := func(ctx context.Context) error { return client.Disconnect(ctx) }

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = disconnect(context.Background())
		return nil, nil, fmt.Errorf("ping mongo: %w", err)
	}

	store := NewMongoStore(client.Database(cfg.Database))
	if err := store.CreateIndexes(ctx); err != nil {
		_ = disconnect(context.Background())
		return nil, nil, fmt.Errorf("create mongo indexes: %w", err)
	}
	return store, disconnect, nil
}
