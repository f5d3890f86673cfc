package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sergss/geomark/internal/models"
)

// Repository persists completed search sessions and their placemarks.
type Repository struct {
	db  Database
	log *slog.Logger
}

// Database is the subset of pgxpool.Pool the repository needs. It is
// satisfied by both a real pool and a pgxmock pool.
type Database interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
	Close()
}

// Interface is the history surface the batch runner and HTTP layer depend on.
type Interface interface {
	SaveSession(ctx context.Context, record models.SessionRecord, marks []models.Placemark) (int64, error)
	RecentSessions(ctx context.Context, limit int) ([]models.SessionRecord, error)
}

// NewRepository creates a new instance of Repository with the provided Database.
// It returns a pointer to the newly created Repository.
func NewRepository(db Database, log *slog.Logger) *Repository {
	return &Repository{db: db, log: log}
}

// NewDatabase connects to PostgreSQL using the given connection URL and
// verifies the connection with a ping.
func NewDatabase(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

// Noop is an Interface implementation used when no database is configured.
// History is simply not recorded.
type Noop struct{}

// SaveSession implements Interface and discards the record.
func (Noop) SaveSession(_ context.Context, _ models.SessionRecord, _ []models.Placemark) (int64, error) {
	return 0, nil
}

// RecentSessions implements Interface and returns no history.
func (Noop) RecentSessions(_ context.Context, _ int) ([]models.SessionRecord, error) {
	return nil, nil
}
