package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fieldsales/backend/internal/infrastructure/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Database is the connection pool shared by the repositories
type Database struct {
	DB  *gorm.DB
	sql *sql.DB
}

// Option adjusts the gorm session Open creates
type Option func(*gorm.Config)

// WithLogger routes gorm's statement log through l
func WithLogger(l gormlogger.Interface) Option {
	return func(c *gorm.Config) { c.Logger = l }
}

// Open connects to postgres, sizes the pool from cfg and waits for the
// server to answer a ping
func Open(ctx context.Context, cfg config.DatabaseConfig, opts ...Option) (*Database, error) {
	return open(ctx, postgres.Open(cfg.DSN()), cfg, opts...)
}

func open(ctx context.Context, dialector gorm.Dialector, cfg config.DatabaseConfig, opts ...Option) (*Database, error) {
	gormCfg := &gorm.Config{
		Logger:                 gormlogger.Discard,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
		DisableAutomaticPing:   true,
	}
	for _, opt := range opts {
		opt(gormCfg)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Database{DB: db, sql: sqlDB}, nil
}

// SQL returns the pool for code that works below gorm
func (d *Database) SQL() *sql.DB { return d.sql }

// Ping checks the server still answers
func (d *Database) Ping(ctx context.Context) error {
	return d.sql.PingContext(ctx)
}

// Stats returns the pool counters
func (d *Database) Stats() sql.DBStats {
	return d.sql.Stats()
}

// Close closes every pooled connection
func (d *Database) Close() error {
	return d.sql.Close()
}
