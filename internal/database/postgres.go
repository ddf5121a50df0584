package database

import (
	"context"
	"fmt"
	"time"

	"github.com/DevilCodeX-123/College-Hub-sub003/internal/config"
	"github.com/DevilCodeX-123/College-Hub-sub003/pkg/logger"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type DB struct {
	pool          *pgxpool.Pool
	healthTimeout time.Duration
}

func NewDB(cfg *config.DatabaseConfig) (*DB, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConnections)
	poolConfig.MaxConnIdleTime = cfg.MaxIdleTime
	poolConfig.HealthCheckPeriod = cfg.HealthCheckPeriod

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.PingTimeout)
	defer cancel()

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Connected to PostgreSQL",
		zap.Int("max_connections", cfg.MaxConnections),
		zap.Duration("max_idle_time", cfg.MaxIdleTime),
	)

	return &DB{pool: pool, healthTimeout: 2 * time.Second}, nil
}

// SetHealthTimeout задает таймаут проверки Health
func (db *DB) SetHealthTimeout(timeout time.Duration) {
	if timeout > 0 {
		db.healthTimeout = timeout
	}
}

func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}

func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
		logger.Info("Database connection pool closed")
	}
}

func (db *DB) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, db.healthTimeout)
	defer cancel()

	if err := db.pool.Ping(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	var result int
	if err := db.pool.QueryRow(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("database query health check failed: %w", err)
	}

	return nil
}

// SQLX возвращает sqlx поверх того же пула pgx для репозиториев на database/sql
func (db *DB) SQLX() *sqlx.DB {
	return sqlx.NewDb(stdlib.OpenDBFromPool(db.pool), "pgx")
}

func (db *DB) Stats() *pgxpool.Stat {
	return db.pool.Stat()
}
