package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"linkhub/internal/domain"
	"linkhub/internal/metrics"

	"github.com/jackc/pgx/v5/pgxpool"
)

// InitDB initializes the database connection pool
// This is called once at application startup
func InitDB(ctx context.Context, dsn string, maxConns, minConns int, maxLifetime time.Duration) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	// Connection pool settings: reuse connections instead of paying the
	// TCP+auth handshake on every request
	config.MaxConns = int32(maxConns)
	config.MinConns = int32(minConns)
	config.MaxConnLifetime = maxLifetime
	config.MaxConnIdleTime = 30 * time.Minute
	config.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

// schema holds the table definitions in dependency order. Every statement is
// idempotent so Migrate can run on every startup.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGSERIAL PRIMARY KEY,
		name          TEXT,
		username      VARCHAR(100) UNIQUE,
		email         TEXT,
		bio           TEXT,
		profile_photo TEXT,
		cover_photo   TEXT,
		mode          TEXT NOT NULL DEFAULT 'creator' CHECK (mode IN ('creator', 'business')),
		theme         VARCHAR(50) NOT NULL DEFAULT 'facebook-classic',
		claim_token   VARCHAR(100),
		is_anonymous  BOOLEAN NOT NULL DEFAULT TRUE,
		is_verified   BOOLEAN NOT NULL DEFAULT FALSE,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS links (
		id               BIGSERIAL PRIMARY KEY,
		user_id          BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title            TEXT NOT NULL,
		url              TEXT NOT NULL,
		description      TEXT,
		image            TEXT,
		type             TEXT NOT NULL DEFAULT 'custom'
			CHECK (type IN ('video', 'social', 'store', 'resource', 'event', 'music', 'custom')),
		is_auto_imported BOOLEAN NOT NULL DEFAULT FALSE,
		source           VARCHAR(100),
		clicks           BIGINT NOT NULL DEFAULT 0,
		position         INT NOT NULL DEFAULT 0,
		is_active        BOOLEAN NOT NULL DEFAULT TRUE,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS analytics (
		id         BIGSERIAL PRIMARY KEY,
		user_id    BIGINT REFERENCES users(id) ON DELETE CASCADE,
		link_id    BIGINT REFERENCES links(id) ON DELETE CASCADE,
		type       TEXT NOT NULL CHECK (type IN ('view', 'click')),
		referrer   TEXT,
		user_agent TEXT,
		ip_address VARCHAR(45),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS community_badges (
		id         BIGSERIAL PRIMARY KEY,
		user_id    BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		badge_type TEXT NOT NULL
			CHECK (badge_type IN ('top_fan', 'first_clicker', 'top_referrer', 'community_champion', 'early_supporter')),
		earned_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		criteria   JSONB
	)`,

	`CREATE INDEX IF NOT EXISTS idx_links_user_id ON links (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_analytics_user_created ON analytics (user_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_analytics_link_id ON analytics (link_id)`,
	`CREATE INDEX IF NOT EXISTS idx_badges_user_id ON community_badges (user_id)`,
}

// observeQuery records latency and errors for one named query.
// Call via defer so the observation covers the whole call:
//
//	defer func() { observeQuery("create_link", start, err) }()
func observeQuery(operation string, start time.Time, err error) {
	metrics.DatabaseQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	// A not-found outcome is a normal answer, not a database failure
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		metrics.DatabaseErrorsTotal.WithLabelValues(operation).Inc()
	}
}

// Migrate creates the schema if it does not exist yet.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
