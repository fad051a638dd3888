// Package db manages the PostgreSQL connection used by the server.
package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cashbook/cashbook/config"
)

const pingTimeout = 2 * time.Second

// Database wraps the GORM connection and its pool settings.
type Database struct {
	db *gorm.DB
}

// NewPostgresConnection opens a pooled PostgreSQL connection and verifies it
// with a bounded ping before handing it out.
func NewPostgresConnection(cfg *config.DatabaseConfig) (*Database, error) {
	db, err := gorm.Open(postgres.Open(cfg.URL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	pool, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}
	pool.SetMaxOpenConns(cfg.MaxOpenConns)
	pool.SetMaxIdleConns(cfg.MaxIdleConns)
	pool.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	d := &Database{db: db}
	if err := d.ping(); err != nil {
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}

	slog.Info("Database connection established",
		"max_open_conns", cfg.MaxOpenConns,
		"max_idle_conns", cfg.MaxIdleConns,
	)
	return d, nil
}

// DB returns the underlying GORM handle for repositories.
func (d *Database) DB() *gorm.DB {
	return d.db
}

// AutoMigrate creates or updates the schema for the given models.
func (d *Database) AutoMigrate(models ...any) error {
	if err := d.db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to run auto-migration: %w", err)
	}
	return nil
}

// HealthCheck reports whether the database currently answers a ping. Used by
// the health endpoint.
func (d *Database) HealthCheck() bool {
	if err := d.ping(); err != nil {
		slog.Error("Database health check failed", "error", err)
		return false
	}
	return true
}

// Close releases the connection pool.
func (d *Database) Close() error {
	pool, err := d.db.DB()
	if err != nil {
		return fmt.Errorf("failed to access connection pool: %w", err)
	}
	if err := pool.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}
	slog.Info("Database connection closed")
	return nil
}

func (d *Database) ping() error {
	pool, err := d.db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return pool.PingContext(ctx)
}
