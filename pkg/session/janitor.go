package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultJanitorSchedule sweeps once an hour.
const DefaultJanitorSchedule = "@hourly"

// Janitor purges persisted sessions whose last write is older than the TTL,
// so abandoned runs do not accumulate in shared stores.
type Janitor struct {
	repository *Repository
	ttl        time.Duration
	logger     *slog.Logger
	cron       *cron.Cron
}

// NewJanitor creates a janitor over the given session repository.
func NewJanitor(repository *Repository, ttl time.Duration, logger *slog.Logger) *Janitor {
	return &Janitor{
		repository: repository,
		ttl:        ttl,
		logger:     logger.With("module", "session_janitor"),
		cron:       cron.New(),
	}
}

// Start schedules the sweep. An empty schedule uses the default.
func (j *Janitor) Start(ctx context.Context, schedule string) error {
	if schedule == "" {
		schedule = DefaultJanitorSchedule
	}

	_, err := j.cron.AddFunc(schedule, func() {
		j.Sweep(ctx)
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(ctx, "Session janitor started", "schedule", schedule, "ttl", j.ttl)

	return nil
}

// Sweep purges the session if it has expired. Safe to call directly.
func (j *Janitor) Sweep(ctx context.Context) {
	persisted, err := j.repository.Load(ctx)
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to load session during sweep", "error", err)

		return
	}

	if persisted.Empty() || persisted.UpdatedAt.IsZero() {
		return
	}

	age := time.Since(persisted.UpdatedAt)
	if age < j.ttl {
		return
	}

	err = j.repository.Purge(ctx)
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to purge expired session", "error", err)

		return
	}

	j.logger.InfoContext(ctx, "Purged expired session", "age", age)
}

// Stop halts the schedule and waits for a running sweep to finish.
func (j *Janitor) Stop() {
	stopCtx := j.cron.Stop()
	<-stopCtx.Done()
}
