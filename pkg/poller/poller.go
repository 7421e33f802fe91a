// Package poller implements the bounded fixed-interval polling loop for
// long-running analysis jobs.
package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/auditflow/auditflow/pkg/models"
)

const (
	// DefaultInterval is the fixed delay between poll attempts.
	DefaultInterval = 2 * time.Second

	// DefaultMaxAttempts bounds the loop; at the default interval this is
	// roughly four minutes.
	DefaultMaxAttempts = 120
)

// ErrPollTimeout indicates the attempt budget was exhausted without a
// terminal status. Fatal for the current run.
var ErrPollTimeout = errors.New("job polling timed out")

// StatusClient is the narrow slice of the gateway the poller needs.
type StatusClient interface {
	JobStatus(ctx context.Context, jobID string) (*models.JobState, error)
}

// Poller runs at most one polling loop at a time. Starting a poll for the
// job already being polled is a no-op; starting one for a different job
// cancels the previous loop first.
type Poller struct {
	client      StatusClient
	clock       clockwork.Clock
	logger      *slog.Logger
	interval    time.Duration
	maxAttempts int

	mu     sync.Mutex
	active *loop
}

type loop struct {
	jobID     string
	cancelled bool
	stop      chan struct{}
}

// New creates a poller with the default interval and attempt budget.
func New(client StatusClient, logger *slog.Logger) *Poller {
	return NewWithClock(client, clockwork.NewRealClock(), logger)
}

// NewWithClock creates a poller on an explicit clock. Tests pass a fake
// clock to drive the interval deterministically.
func NewWithClock(client StatusClient, clock clockwork.Clock, logger *slog.Logger) *Poller {
	return &Poller{
		client:      client,
		clock:       clock,
		logger:      logger.With("module", "poller"),
		interval:    DefaultInterval,
		maxAttempts: DefaultMaxAttempts,
	}
}

// SetInterval overrides the poll interval. Only safe before Start.
func (p *Poller) SetInterval(interval time.Duration) {
	p.interval = interval
}

// SetMaxAttempts overrides the attempt budget. Only safe before Start.
func (p *Poller) SetMaxAttempts(attempts int) {
	p.maxAttempts = attempts
}

// Active returns the id of the job currently being polled, or "" when idle.
func (p *Poller) Active() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.active == nil {
		return ""
	}

	return p.active.jobID
}

// Start begins polling jobID. onTerminal receives the completed job state;
// onError receives the failure (job failure, timeout). Exactly one of the
// two fires unless the loop is cancelled first. Returns false when the same
// job is already being polled.
func (p *Poller) Start(ctx context.Context, jobID string, onTerminal func(*models.JobState), onError func(error)) bool {
	p.mu.Lock()

	if p.active != nil {
		if p.active.jobID == jobID {
			p.mu.Unlock()

			return false
		}

		p.cancelLocked()
	}

	current := &loop{
		jobID: jobID,
		stop:  make(chan struct{}),
	}
	p.active = current
	p.mu.Unlock()

	go p.run(ctx, current, onTerminal, onError)

	return true
}

// Cancel stops the active loop. Further callbacks for that loop are
// silenced; an in-flight status request is allowed to finish and its result
// is discarded.
func (p *Poller) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.cancelLocked()
}

func (p *Poller) cancelLocked() {
	if p.active == nil {
		return
	}

	p.active.cancelled = true
	close(p.active.stop)
	p.active = nil
}

func (p *Poller) run(ctx context.Context, current *loop, onTerminal func(*models.JobState), onError func(error)) {
	logger := p.logger.With("job_id", current.jobID)
	logger.InfoContext(ctx, "Starting poll loop", "interval", p.interval, "max_attempts", p.maxAttempts)

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		select {
		case <-current.stop:
			logger.InfoContext(ctx, "Poll loop cancelled", "attempt", attempt)

			return
		case <-ctx.Done():
			logger.InfoContext(ctx, "Poll loop context cancelled", "attempt", attempt)

			return
		case <-p.clock.After(p.interval):
		}

		state, err := p.client.JobStatus(ctx, current.jobID)
		if err != nil {
			// Transient: a failed request consumes one attempt slot and the
			// loop carries on at the next interval.
			logger.WarnContext(ctx, "Poll attempt failed", "attempt", attempt, "error", err)

			continue
		}

		switch state.Status {
		case models.JobStatusCompleted:
			if p.claim(current) {
				logger.InfoContext(ctx, "Job completed", "attempt", attempt)
				onTerminal(state)
			}

			return
		case models.JobStatusFailed:
			if p.claim(current) {
				logger.InfoContext(ctx, "Job failed", "attempt", attempt, "error", state.ErrorMessage)
				onError(fmt.Errorf("job failed: %s", state.ErrorMessage))
			}

			return
		case models.JobStatusQueued, models.JobStatusRunning:
			logger.DebugContext(ctx, "Job still in progress", "attempt", attempt, "status", state.Status)
		}
	}

	if p.claim(current) {
		logger.ErrorContext(ctx, "Poll attempt budget exhausted", "attempts", p.maxAttempts)
		onError(fmt.Errorf("%w after %d attempts", ErrPollTimeout, p.maxAttempts))
	}
}

// claim detaches the loop so its callback may fire. Returns false when the
// loop was cancelled or replaced in the meantime.
func (p *Poller) claim(current *loop) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if current.cancelled || p.active != current {
		return false
	}

	p.active = nil

	return true
}
