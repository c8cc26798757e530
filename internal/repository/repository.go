package repository

import (
	"context"
	"log/slog"

	"github.com/UnknownOlympus/hestia/internal/models"
)

type Repository struct {
	db  Database
	log *slog.Logger
}

type Interface interface {
	SaveQuote(ctx context.Context, quote models.Quote) error
	MarkDelivered(ctx context.Context, quoteID string) error
	IncrementFailureCount(ctx context.Context, quoteID string, errMsg string) error
	FetchUndelivered(ctx context.Context, limit int) ([]models.Quote, error)
}

// NewRepository creates a new instance of Repository with the provided Database.
// It returns a pointer to the newly created Repository.
func NewRepository(db Database, log *slog.Logger) *Repository {
	return &Repository{db: db, log: log}
}
