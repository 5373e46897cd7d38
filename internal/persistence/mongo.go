package persistence

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/devsanbid/bravo-test-sub001/internal/config"
)

// Mongo wraps the MongoDB client and the document database.
type Mongo struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// NewMongo connects to MongoDB. The database name falls back to the backend database id.
func NewMongo(ctx context.Context, cfg config.MongoConfig, databaseID string, logger *zap.Logger) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	name := cfg.Database
	if name == "" {
		name = databaseID
	}
	logger.Info("connected to mongodb", zap.String("database", name))
	return &Mongo{Client: client, Database: client.Database(name)}, nil
}

// Ping verifies connectivity.
func (m *Mongo) Ping(ctx context.Context) error {
	return m.Client.Ping(ctx, nil)
}

// Close disconnects the client.
func (m *Mongo) Close(ctx context.Context) {
	if m != nil && m.Client != nil {
		_ = m.Client.Disconnect(ctx)
	}
}
