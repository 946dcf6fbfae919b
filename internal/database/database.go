// Package database owns the MongoDB client. Connecting is lazy: the client
// is constructed without dialing, so an unreachable store never blocks boot.
// The first operation pays the server-selection timeout instead.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/art-beyond-sight/sight-core/internal/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// serverSelectionTimeout bounds how long any single operation waits for a
// usable server before the per-endpoint degradation policy kicks in.
const serverSelectionTimeout = 5 * time.Second

// Connect builds the Mongo client from config.
func Connect(cfg *config.AppConfig) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(cfg.Database.URIValue()).
		SetServerSelectionTimeout(serverSelectionTimeout).
		SetAppName(cfg.Database.AppName)

	client, err := mongo.Connect(context.Background(), opts)
	if err != nil {
		return nil, fmt.Errorf("mongo client: %w", err)
	}
	return client, nil
}

// Collection resolves the analysis-record collection from config.
func Collection(client *mongo.Client, cfg *config.AppConfig) *mongo.Collection {
	return client.Database(cfg.Database.DatabaseName()).Collection(cfg.Database.CollectionName())
}

// Disconnect closes the client with a short grace period.
func Disconnect(client *mongo.Client) error {
	if client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return client.Disconnect(ctx)
}
