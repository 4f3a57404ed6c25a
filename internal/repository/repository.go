package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Repository owns the database handle. The chat endpoints never use it; it
// only backs the database health probe.
type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("repository: ping: %w", err)
	}
	return nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}
