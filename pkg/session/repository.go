package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/auditflow/auditflow/pkg/models"
)

// Repository reads and writes the typed persisted session over any Store.
type Repository struct {
	store Store
}

// NewRepository creates a session repository on the given store.
func NewRepository(store Store) *Repository {
	return &Repository{store: store}
}

// Load rebuilds the persisted session. Missing keys leave their fields at
// zero; a fully absent session comes back Empty.
func (r *Repository) Load(ctx context.Context) (models.PersistedSession, error) {
	var persisted models.PersistedSession

	for key, target := range map[string]*string{
		KeyActiveJobID: &persisted.ActiveJobID,
		KeySourceURL:   &persisted.SourceURL,
		KeySourcePath:  &persisted.SourcePath,
	} {
		value, err := r.store.Get(ctx, key)
		if err != nil {
			if errors.Is(err, ErrKeyNotFound) {
				continue
			}

			return models.PersistedSession{}, fmt.Errorf("failed to load session key %s: %w", key, err)
		}

		*target = value
	}

	sourceType, err := r.store.Get(ctx, KeySourceType)
	if err == nil {
		persisted.SourceType = models.SourceType(sourceType)
	} else if !errors.Is(err, ErrKeyNotFound) {
		return models.PersistedSession{}, fmt.Errorf("failed to load session key %s: %w", KeySourceType, err)
	}

	updatedAt, err := r.store.Get(ctx, KeyUpdatedAt)
	if err == nil {
		parsed, parseErr := time.Parse(time.RFC3339, updatedAt)
		if parseErr == nil {
			persisted.UpdatedAt = parsed
		}
	} else if !errors.Is(err, ErrKeyNotFound) {
		return models.PersistedSession{}, fmt.Errorf("failed to load session key %s: %w", KeyUpdatedAt, err)
	}

	return persisted, nil
}

// Save writes the session. Empty fields delete their keys so a cleared job
// id does not linger in storage.
func (r *Repository) Save(ctx context.Context, persisted models.PersistedSession) error {
	values := map[string]string{
		KeyActiveJobID: persisted.ActiveJobID,
		KeySourceType:  string(persisted.SourceType),
		KeySourceURL:   persisted.SourceURL,
		KeySourcePath:  persisted.SourcePath,
	}

	for key, value := range values {
		if value == "" {
			err := r.store.Delete(ctx, key)
			if err != nil && !errors.Is(err, ErrKeyNotFound) {
				return fmt.Errorf("failed to clear session key %s: %w", key, err)
			}

			continue
		}

		err := r.store.Set(ctx, key, value)
		if err != nil {
			return fmt.Errorf("failed to save session key %s: %w", key, err)
		}
	}

	updatedAt := persisted.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	err := r.store.Set(ctx, KeyUpdatedAt, updatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save session key %s: %w", KeyUpdatedAt, err)
	}

	return nil
}

// ClearJob removes only the active job id, keeping the source selection for
// convenience on the next run.
func (r *Repository) ClearJob(ctx context.Context) error {
	err := r.store.Delete(ctx, KeyActiveJobID)
	if err != nil && !errors.Is(err, ErrKeyNotFound) {
		return fmt.Errorf("failed to clear active job id: %w", err)
	}

	return nil
}

// HealthCheck reports whether the underlying store is reachable.
func (r *Repository) HealthCheck(ctx context.Context) error {
	return r.store.HealthCheck(ctx)
}

// Purge removes the whole persisted session.
func (r *Repository) Purge(ctx context.Context) error {
	err := r.store.Clear(ctx)
	if err != nil {
		return fmt.Errorf("failed to purge session: %w", err)
	}

	return nil
}
