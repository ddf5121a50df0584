package database

import (
	"context"
	"fmt"
	"time"

	"github.com/DevilCodeX-123/College-Hub-sub003/internal/config"
	"github.com/DevilCodeX-123/College-Hub-sub003/pkg/logger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

type MongoDB struct {
	client        *mongo.Client
	database      *mongo.Database
	healthTimeout time.Duration
}

func NewMongoDB(cfg *config.MongoConfig) (*MongoDB, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetConnectTimeout(cfg.ConnectTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), cfg.PingTimeout)
	defer pingCancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	logger.Info("Connected to MongoDB",
		zap.String("database", cfg.Database),
		zap.Uint64("max_pool_size", cfg.MaxPoolSize),
	)

	return &MongoDB{
		client:        client,
		database:      client.Database(cfg.Database),
		healthTimeout: 2 * time.Second,
	}, nil
}

func (m *MongoDB) Database() *mongo.Database {
	return m.database
}

// SetHealthTimeout задает таймаут проверки Health
func (m *MongoDB) SetHealthTimeout(timeout time.Duration) {
	if timeout > 0 {
		m.healthTimeout = timeout
	}
}

func (m *MongoDB) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, m.healthTimeout)
	defer cancel()

	if err := m.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongo health check failed: %w", err)
	}
	return nil
}

func (m *MongoDB) Close(ctx context.Context) error {
	if m.client == nil {
		return nil
	}
	if err := m.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect mongo: %w", err)
	}

	logger.Info("MongoDB connection closed")
	return nil
}
