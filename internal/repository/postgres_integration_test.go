//go:build integration

package repository_test

import (
	"log/slog"
	"net/url"
	"testing"

	"github.com/UnknownOlympus/hestia/internal/models"
	"github.com/UnknownOlympus/hestia/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

func TestRepository_Postgres(t *testing.T) {
	ctx := t.Context()

	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("hestia"),
		postgres.WithUsername("hestia"),
		postgres.WithPassword("hestia"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, repository.Migrate(ctx, pool))
	repo := repository.NewRepository(pool, slog.Default())

	first := models.Quote{ID: "6f1c3c1e-8a3c-4c38-a1b5-2b0f7c9a0001", Fields: url.Values{"firstName": {"Ann"}}}
	second := models.Quote{ID: "6f1c3c1e-8a3c-4c38-a1b5-2b0f7c9a0002", Fields: url.Values{"firstName": {"Bob"}}}
	require.NoError(t, repo.SaveQuote(ctx, first))
	require.NoError(t, repo.SaveQuote(ctx, second))

	pending, err := repo.FetchUndelivered(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending, "fresh quotes are still being delivered by their request")

	require.NoError(t, repo.IncrementFailureCount(ctx, first.ID, "relay down"))
	pending, err = repo.FetchUndelivered(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "Ann", pending[0].Fields.Get("firstName"))
	assert.Equal(t, 1, pending[0].Attempts)

	require.NoError(t, repo.MarkDelivered(ctx, first.ID))
	for range repository.MaxDeliveryAttempts {
		require.NoError(t, repo.IncrementFailureCount(ctx, second.ID, "relay down"))
	}

	pending, err = repo.FetchUndelivered(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending, "delivered and exhausted quotes are not retried")
}
