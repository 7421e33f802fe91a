package session

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auditflow/auditflow/pkg/models"
)

func newTestJanitor(t *testing.T, ttl time.Duration) (*Janitor, *Repository) {
	t.Helper()

	repo := NewRepository(NewMemoryStore())
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	return NewJanitor(repo, ttl, logger), repo
}

func TestJanitor_PurgesExpiredSession(t *testing.T) {
	janitor, repo := newTestJanitor(t, time.Hour)

	require.NoError(t, repo.Save(t.Context(), models.PersistedSession{
		ActiveJobID: "job-1",
		SourceType:  models.SourceTypeGit,
		SourceURL:   "https://example.com/acme/billing.git",
		UpdatedAt:   time.Now().UTC().Add(-2 * time.Hour),
	}))

	janitor.Sweep(t.Context())

	loaded, err := repo.Load(t.Context())
	require.NoError(t, err)
	assert.True(t, loaded.Empty())
}

func TestJanitor_KeepsFreshSession(t *testing.T) {
	janitor, repo := newTestJanitor(t, time.Hour)

	require.NoError(t, repo.Save(t.Context(), models.PersistedSession{
		ActiveJobID: "job-1",
		SourceType:  models.SourceTypeGit,
		SourceURL:   "https://example.com/acme/billing.git",
		UpdatedAt:   time.Now().UTC().Add(-time.Minute),
	}))

	janitor.Sweep(t.Context())

	loaded, err := repo.Load(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "job-1", loaded.ActiveJobID)
}

func TestJanitor_IgnoresEmptySession(t *testing.T) {
	janitor, repo := newTestJanitor(t, time.Hour)

	janitor.Sweep(t.Context())

	loaded, err := repo.Load(t.Context())
	require.NoError(t, err)
	assert.True(t, loaded.Empty())
}

func TestJanitor_StartAndStop(t *testing.T) {
	janitor, _ := newTestJanitor(t, time.Hour)

	require.NoError(t, janitor.Start(t.Context(), "@hourly"))
	janitor.Stop()
}

func TestJanitor_RejectsBadSchedule(t *testing.T) {
	janitor, _ := newTestJanitor(t, time.Hour)

	assert.Error(t, janitor.Start(t.Context(), "not a schedule"))
}
