package postgresql_test

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/auditflow/auditflow/pkg/models"
	"github.com/auditflow/auditflow/pkg/session"
	"github.com/auditflow/auditflow/pkg/session/postgresql"
)

var postgresContainer *postgres.PostgresContainer

func dropDB(ctx context.Context, t *testing.T, databaseURL string) {
	t.Helper()

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	for _, table := range []string{"session_entries", "schema_migrations"} {
		_, err = db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE")
		require.NoError(t, err)
	}

	err = db.Close()
	require.NoError(t, err)
}

func setupTestStore(t *testing.T) (*postgresql.Store, context.Context) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)

	if postgresContainer == nil || !postgresContainer.IsRunning() {
		var err error

		postgresContainer, err = postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("auditflow_test"),
			postgres.WithUsername("auditflow"),
			postgres.WithPassword("auditflow"),
			postgres.BasicWaitStrategies(),
		)
		require.NoError(t, err)
	}

	databaseURL, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	dropDB(ctx, t, databaseURL)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	store, err := postgresql.NewStore(ctx, logger, databaseURL)
	require.NoError(t, err)

	t.Cleanup(func() {
		dropDB(ctx, t, databaseURL)

		err = store.Close(ctx)
		require.NoError(t, err)

		cancel()
	})

	return store, ctx
}

func TestStore_SetGetRoundTrip(t *testing.T) {
	store, ctx := setupTestStore(t)

	require.NoError(t, store.Set(ctx, "active_job_id", "job-1"))

	value, err := store.Get(ctx, "active_job_id")
	require.NoError(t, err)
	assert.Equal(t, "job-1", value)
}

func TestStore_SetOverwritesValue(t *testing.T) {
	store, ctx := setupTestStore(t)

	require.NoError(t, store.Set(ctx, "source_url", "https://example.com/a.git"))
	require.NoError(t, store.Set(ctx, "source_url", "https://example.com/b.git"))

	value, err := store.Get(ctx, "source_url")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/b.git", value)
}

func TestStore_GetMissingKey(t *testing.T) {
	store, ctx := setupTestStore(t)

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, session.ErrKeyNotFound)
}

func TestStore_DeleteAndClear(t *testing.T) {
	store, ctx := setupTestStore(t)

	require.NoError(t, store.Set(ctx, "active_job_id", "job-1"))
	require.NoError(t, store.Set(ctx, "source_url", "https://example.com/a.git"))

	require.NoError(t, store.Delete(ctx, "active_job_id"))

	_, err := store.Get(ctx, "active_job_id")
	assert.ErrorIs(t, err, session.ErrKeyNotFound)

	require.NoError(t, store.Clear(ctx))

	_, err = store.Get(ctx, "source_url")
	assert.ErrorIs(t, err, session.ErrKeyNotFound)
}

func TestStore_HealthCheck(t *testing.T) {
	store, ctx := setupTestStore(t)

	assert.NoError(t, store.HealthCheck(ctx))
}

func TestStore_WorksUnderRepository(t *testing.T) {
	store, ctx := setupTestStore(t)
	repo := session.NewRepository(store)

	require.NoError(t, repo.Save(ctx, models.PersistedSession{
		ActiveJobID: "job-7",
		SourceType:  models.SourceTypeGit,
		SourceURL:   "https://example.com/acme/billing.git",
	}))

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "job-7", loaded.ActiveJobID)
	assert.Equal(t, "https://example.com/acme/billing.git", loaded.SourceURL)
}
