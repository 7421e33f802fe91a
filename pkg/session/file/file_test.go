package file

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auditflow/auditflow/pkg/session"
)

func TestStore_SetGetRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())

	require.NoError(t, store.Set(t.Context(), "active_job_id", "job-1"))

	value, err := store.Get(t.Context(), "active_job_id")
	require.NoError(t, err)
	assert.Equal(t, "job-1", value)
}

func TestStore_GetMissingKey(t *testing.T) {
	store := NewStore(t.TempDir())

	_, err := store.Get(t.Context(), "missing")
	assert.ErrorIs(t, err, session.ErrKeyNotFound)
}

func TestStore_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	store := NewStore(dir)
	require.NoError(t, store.Set(t.Context(), "source_url", "https://example.com/repo.git"))

	reopened := NewStore(dir)

	value, err := reopened.Get(t.Context(), "source_url")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/repo.git", value)
}

func TestStore_Delete(t *testing.T) {
	store := NewStore(t.TempDir())

	require.NoError(t, store.Set(t.Context(), "active_job_id", "job-1"))
	require.NoError(t, store.Delete(t.Context(), "active_job_id"))

	_, err := store.Get(t.Context(), "active_job_id")
	assert.ErrorIs(t, err, session.ErrKeyNotFound)
}

func TestStore_Clear(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	require.NoError(t, store.Set(t.Context(), "active_job_id", "job-1"))
	require.NoError(t, store.Clear(t.Context()))

	assert.NoFileExists(t, filepath.Join(dir, "session.json"))

	_, err := store.Get(t.Context(), "active_job_id")
	assert.ErrorIs(t, err, session.ErrKeyNotFound)
}

func TestStore_ClearOnEmptyDirectory(t *testing.T) {
	store := NewStore(t.TempDir())

	assert.NoError(t, store.Clear(t.Context()))
}

func TestStore_AcceptsFileURL(t *testing.T) {
	dir := t.TempDir()
	store := NewStore("file://" + dir)

	require.NoError(t, store.Set(t.Context(), "source_path", "/srv/repos/billing"))
	assert.FileExists(t, filepath.Join(dir, "session.json"))
}

func TestStore_HealthCheck(t *testing.T) {
	store := NewStore(t.TempDir())
	assert.NoError(t, store.HealthCheck(t.Context()))

	missing := NewStore("/nonexistent/auditflow-test")
	assert.Error(t, missing.HealthCheck(t.Context()))
}
