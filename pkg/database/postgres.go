package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/noah-isme/exam-planner-api/pkg/config"
)

// NewPostgres returns a configured PostgreSQL client.
func NewPostgres(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", DSN(cfg))
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	db.SetConnMaxLifetime(1 * time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// DSN builds the lib/pq connection string.
func DSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)
}

// schemaStatements create the exams table. The unique index enforces one row per natural key.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS exams (
		id TEXT PRIMARY KEY,
		campus TEXT NOT NULL,
		subject TEXT NOT NULL,
		course TEXT NOT NULL,
		section TEXT NOT NULL,
		start_time TIMESTAMPTZ NOT NULL,
		duration_min INTEGER,
		building TEXT,
		room TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS exams_natural_key_idx
		ON exams (lower(campus), lower(subject), lower(course), lower(section), start_time)`,
	`CREATE INDEX IF NOT EXISTS exams_start_time_idx ON exams (start_time)`,
}

// EnsureSchema applies the idempotent DDL for the exams store.
func EnsureSchema(ctx context.Context, db sqlx.ExecerContext) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
