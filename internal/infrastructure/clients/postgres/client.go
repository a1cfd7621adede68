package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"github.com/zatekoja/blooddonorconnect/backend/pkg/config"
	"github.com/zatekoja/blooddonorconnect/backend/pkg/retry"
)

const pingTimeout = 5 * time.Second

// Client holds the connection pool of the postgres snapshot store.
type Client struct {
	db *sql.DB
}

// NewClient opens a pool sized from cfg and waits for the database to
// answer, retrying with backoff until ctx ends.
func NewClient(ctx context.Context, cfg *config.DatabaseConfig) (*Client, error) {
	db, err := sql.Open("postgres", cfg.DatabaseDSN())
	if err != nil {
		return nil, fmt.Errorf("open database connection: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	c := &Client{db: db}
	err = retry.Do(ctx, retry.DefaultConfig(), "PostgreSQL", c.Ping, func(attempt int, err error, nextDelay time.Duration) {
		log.Warn().Err(err).Str("host", cfg.Host).Int("attempt", attempt).Dur("next_delay", nextDelay).Msg("PostgreSQL not reachable yet")
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect to PostgreSQL at %s: %w", cfg.Host, err)
	}

	log.Info().
		Str("host", cfg.Host).
		Str("database", cfg.Database).
		Int("max_open_conns", cfg.MaxOpenConns).
		Msg("Connected to PostgreSQL")
	return c, nil
}

// NewFromDB wraps an already opened database handle.
func NewFromDB(db *sql.DB) *Client {
	return &Client{db: db}
}

func (c *Client) DB() *sql.DB {
	return c.db
}

// Name identifies the dependency in health reports.
func (c *Client) Name() string {
	return "postgres"
}

// Ping bounds a round trip by pingTimeout.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return c.db.PingContext(ctx)
}

// BeginTx starts a read-write transaction.
func (c *Client) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return c.db.BeginTx(ctx, nil)
}

func (c *Client) Close() error {
	return c.db.Close()
}
