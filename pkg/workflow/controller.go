package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/auditflow/auditflow/pkg/eventbus"
	"github.com/auditflow/auditflow/pkg/events"
	"github.com/auditflow/auditflow/pkg/gateway"
	"github.com/auditflow/auditflow/pkg/models"
	"github.com/auditflow/auditflow/pkg/poller"
	"github.com/auditflow/auditflow/pkg/session"
	"github.com/auditflow/auditflow/pkg/steps"
)

// Controller owns the WorkflowState for one pipeline run. All mutation goes
// through its named operations; callers observe the state via Snapshot.
// Every remote-call failure is normalized into WorkflowState.Error plus an
// error return, so callers never see transport-level failures.
type Controller struct {
	gateway  gateway.Client
	sessions *session.Repository
	poller   *poller.Poller
	eventBus eventbus.EventBus
	validate *validator.Validate
	logger   *slog.Logger

	mu         sync.Mutex
	state      models.WorkflowState
	generation uint64 // Run token; bumped on Reset so late results are discarded
	submitting bool
}

// NewController wires the orchestration engine. The event bus may be nil
// when no consumers are configured.
func NewController(
	gatewayClient gateway.Client,
	sessions *session.Repository,
	jobPoller *poller.Poller,
	eventBus eventbus.EventBus,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		gateway:  gatewayClient,
		sessions: sessions,
		poller:   jobPoller,
		eventBus: eventBus,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger.With("module", "workflow_controller"),
		state:    models.NewWorkflowState(),
	}
}

// Snapshot returns a read-only deep copy of the current state.
func (c *Controller) Snapshot() models.WorkflowState {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state.Clone()
}

// SetSource updates the source selection. Allowed only while no job is
// active; the selection is persisted synchronously so a reload keeps it.
func (c *Controller) SetSource(ctx context.Context, source models.SourceSelection) error {
	c.mu.Lock()

	if c.state.ActiveJobID != "" || c.submitting {
		c.mu.Unlock()

		return NewValidationError("SetSource", "SOURCE_FROZEN",
			"source cannot change while an analysis job is active", ErrSourceFrozen)
	}

	err := c.validate.Struct(source)
	if err != nil {
		c.mu.Unlock()

		return NewValidationError("SetSource", "INVALID_SOURCE", err.Error(), ErrInvalidSource)
	}

	c.state.Source = source
	c.state.Error = ""
	persisted := c.persistedLocked()
	c.mu.Unlock()

	c.saveSession(ctx, persisted)

	return nil
}

// SubmitRun starts the long-running analysis job for the current source
// selection and begins polling it. Rejected while a job is active.
func (c *Controller) SubmitRun(ctx context.Context) (string, error) {
	c.mu.Lock()

	if c.state.ActiveJobID != "" || c.submitting {
		c.mu.Unlock()

		return "", NewValidationError("SubmitRun", "JOB_ACTIVE",
			"an analysis job is already active", ErrJobActive)
	}

	source := c.state.Source
	if source.Empty() {
		c.mu.Unlock()

		return "", NewValidationError("SubmitRun", "SOURCE_REQUIRED",
			"select a repository source before submitting", ErrSourceRequired)
	}

	err := c.validate.Struct(source)
	if err != nil {
		c.mu.Unlock()

		return "", NewValidationError("SubmitRun", "INVALID_SOURCE", err.Error(), ErrInvalidSource)
	}

	c.submitting = true
	c.state.Loading = true
	c.state.Error = ""
	c.state.Progress = models.DefaultSubStages()
	c.state.Progress[0].Status = models.SubStageRunning
	gen := c.generation
	c.mu.Unlock()

	jobID, err := c.gateway.SubmitRun(ctx, source)

	c.mu.Lock()
	c.submitting = false

	if gen != c.generation {
		c.mu.Unlock()

		return "", &StateError{Op: "SubmitRun", Code: "RUN_RESET", Err: ErrRunReset}
	}

	if err != nil {
		c.state.Loading = false
		c.state.Error = "Failed to submit analysis run: " + err.Error()
		c.mu.Unlock()

		return "", fmt.Errorf("%w: submit run: %w", ErrStageCall, err)
	}

	c.state.ActiveJobID = jobID
	persisted := c.persistedLocked()
	c.mu.Unlock()

	c.saveSession(ctx, persisted)
	c.publish(ctx, jobID, events.RunSubmitted{
		BaseEvent: c.newBaseEvent(events.RunSubmittedEvent, jobID),
		Source:    source,
	})

	c.logger.InfoContext(ctx, "Analysis run submitted", "job_id", jobID, "source", source.Location())
	c.startPolling(ctx, gen, jobID)

	return jobID, nil
}

// Resume reconciles persisted session state after a restart. Evaluated once
// at startup; decides between hydrating a completed job, resuming the poll
// loop, surfacing a failure, or silently purging a stale session.
func (c *Controller) Resume(ctx context.Context) error {
	persisted, err := c.sessions.Load(ctx)
	if err != nil {
		c.logger.WarnContext(ctx, "Failed to load persisted session", "error", err)

		return nil
	}

	if persisted.Empty() {
		return nil
	}

	c.mu.Lock()
	if !persisted.Source().Empty() {
		c.state.Source = persisted.Source()
	}
	gen := c.generation
	c.mu.Unlock()

	if persisted.ActiveJobID == "" {
		return nil
	}

	job, err := c.gateway.JobStatus(ctx, persisted.ActiveJobID)
	if err != nil {
		// Stale session: the job is gone or unreachable. Purge silently.
		c.logger.InfoContext(ctx, "Persisted job not queryable, purging stale session",
			"job_id", persisted.ActiveJobID, "error", err)

		purgeErr := c.sessions.ClearJob(ctx)
		if purgeErr != nil {
			c.logger.ErrorContext(ctx, "Failed to purge stale session", "error", purgeErr)
		}

		c.mu.Lock()
		c.state.ActiveJobID = ""
		c.state.Loading = false
		c.mu.Unlock()

		return nil
	}

	switch job.Status {
	case models.JobStatusCompleted:
		c.mu.Lock()
		c.state.ActiveJobID = persisted.ActiveJobID
		c.mu.Unlock()

		c.logger.InfoContext(ctx, "Resumed run: job already completed", "job_id", job.ID)
		c.ingestJobResult(ctx, gen, job)
	case models.JobStatusFailed:
		c.mu.Lock()
		c.state.ActiveJobID = ""
		c.state.Loading = false
		c.state.Error = "Analysis job failed: " + job.ErrorMessage
		c.mu.Unlock()

		clearErr := c.sessions.ClearJob(ctx)
		if clearErr != nil {
			c.logger.ErrorContext(ctx, "Failed to clear failed job from session", "error", clearErr)
		}

		c.publish(ctx, job.ID, events.AnalysisFailed{
			BaseEvent: c.newBaseEvent(events.AnalysisFailedEvent, job.ID),
			Error:     job.ErrorMessage,
		})
	case models.JobStatusQueued, models.JobStatusRunning:
		c.mu.Lock()
		c.state.ActiveJobID = persisted.ActiveJobID
		c.state.Loading = true
		c.state.Progress = models.DefaultSubStages()
		c.state.Progress[0].Status = models.SubStageRunning
		c.mu.Unlock()

		c.logger.InfoContext(ctx, "Resumed run: job still in progress", "job_id", job.ID, "status", job.Status)
		c.startPolling(ctx, gen, persisted.ActiveJobID)
	}

	return nil
}

// RunReadiness re-triggers the readiness evaluation. The automatic run
// happens when analysis completes; this is the retry path.
func (c *Controller) RunReadiness(ctx context.Context) (*models.ReadinessResult, error) {
	c.mu.Lock()

	if c.state.Analysis == nil || c.state.Analysis.Status != models.JobStatusCompleted {
		c.mu.Unlock()

		return nil, NewValidationError("RunReadiness", "NO_ANALYSIS",
			"readiness requires a completed analysis", ErrNoAnalysis)
	}

	scores := c.state.Analysis.Scores
	gen := c.generation
	c.state.Loading = true
	c.state.Error = ""
	c.mu.Unlock()

	err := c.runReadiness(ctx, gen, scores)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Readiness == nil {
		return nil, &StateError{Op: "RunReadiness", Code: "RUN_RESET", Err: ErrRunReset}
	}

	readiness := *c.state.Readiness

	return &readiness, nil
}

// RunCompliance executes the compliance check for the given profile.
// Available only at the compliance step; on success the result is recorded
// and the step advances.
func (c *Controller) RunCompliance(ctx context.Context, profile string) (*models.ComplianceResult, error) {
	c.mu.Lock()

	if c.state.Step != models.StepCompliance {
		c.mu.Unlock()

		return nil, NewValidationError("RunCompliance", "WRONG_STEP",
			"compliance check is only available at the compliance step", ErrWrongStep)
	}

	if c.state.Analysis == nil {
		c.mu.Unlock()

		return nil, NewValidationError("RunCompliance", "NO_ANALYSIS",
			"compliance requires a completed analysis", ErrNoAnalysis)
	}

	scores := c.state.Analysis.Scores
	gen := c.generation
	c.state.Loading = true
	c.state.Error = ""
	c.mu.Unlock()

	result, err := c.gateway.ComplianceCheck(ctx, profile, scores)

	c.mu.Lock()

	if gen != c.generation {
		c.mu.Unlock()

		return nil, &StateError{Op: "RunCompliance", Code: "RUN_RESET", Err: ErrRunReset}
	}

	if err != nil {
		c.state.Loading = false
		c.state.Error = "Compliance check failed: " + err.Error()
		c.mu.Unlock()

		return nil, fmt.Errorf("%w: compliance: %w", ErrStageCall, err)
	}

	c.state.Compliance = result
	c.state.Loading = false
	c.state.Error = ""
	c.advanceIfReadyLocked()
	c.mu.Unlock()

	c.publish(ctx, "", events.StageCompleted{
		BaseEvent: c.newBaseEvent(events.StageCompletedEvent, ""),
		Step:      models.StepCompliance,
	})

	return result, nil
}

// RunCost executes the remediation cost estimate at the given hourly rate.
func (c *Controller) RunCost(ctx context.Context, rate float64) (*models.CostResult, error) {
	c.mu.Lock()

	if c.state.Step != models.StepCost {
		c.mu.Unlock()

		return nil, NewValidationError("RunCost", "WRONG_STEP",
			"cost estimate is only available at the cost step", ErrWrongStep)
	}

	if c.state.Analysis == nil {
		c.mu.Unlock()

		return nil, NewValidationError("RunCost", "NO_ANALYSIS",
			"cost estimate requires a completed analysis", ErrNoAnalysis)
	}

	metrics := c.state.Analysis.Scores.Metrics
	gen := c.generation
	c.state.Loading = true
	c.state.Error = ""
	c.mu.Unlock()

	result, err := c.gateway.CostEstimate(ctx, metrics, rate)

	c.mu.Lock()

	if gen != c.generation {
		c.mu.Unlock()

		return nil, &StateError{Op: "RunCost", Code: "RUN_RESET", Err: ErrRunReset}
	}

	if err != nil {
		c.state.Loading = false
		c.state.Error = "Cost estimate failed: " + err.Error()
		c.mu.Unlock()

		return nil, fmt.Errorf("%w: cost: %w", ErrStageCall, err)
	}

	c.state.Cost = result
	c.state.Loading = false
	c.state.Error = ""
	c.advanceIfReadyLocked()
	c.mu.Unlock()

	c.publish(ctx, "", events.StageCompleted{
		BaseEvent: c.newBaseEvent(events.StageCompletedEvent, ""),
		Step:      models.StepCost,
	})

	return result, nil
}

// GenerateDocument renders one document. Re-generating the same type
// overwrites its entry instead of duplicating it; the step never advances
// automatically because document generation is optional.
func (c *Controller) GenerateDocument(ctx context.Context, docType models.DocumentType, format string, contextData map[string]any) (*models.GeneratedDocument, error) {
	c.mu.Lock()

	if c.state.Step != models.StepDocuments {
		c.mu.Unlock()

		return nil, NewValidationError("GenerateDocument", "WRONG_STEP",
			"document generation is only available at the documents step", ErrWrongStep)
	}

	gen := c.generation
	c.state.Loading = true
	c.state.Error = ""
	c.mu.Unlock()

	document, err := c.gateway.GenerateDocument(ctx, docType, format, contextData)

	c.mu.Lock()

	if gen != c.generation {
		c.mu.Unlock()

		return nil, &StateError{Op: "GenerateDocument", Code: "RUN_RESET", Err: ErrRunReset}
	}

	if err != nil {
		c.state.Loading = false
		c.state.Error = "Document generation failed: " + err.Error()
		c.mu.Unlock()

		return nil, fmt.Errorf("%w: generate document: %w", ErrStageCall, err)
	}

	if document.GeneratedAt.IsZero() {
		document.GeneratedAt = time.Now().UTC()
	}

	c.state.Documents[docType] = *document
	c.state.Loading = false
	c.state.Error = ""
	c.mu.Unlock()

	c.publish(ctx, "", events.DocumentGenerated{
		BaseEvent:    c.newBaseEvent(events.DocumentGeneratedEvent, ""),
		DocumentType: docType,
		Format:       document.Format,
	})

	return document, nil
}

// RunComparison compares the audit scores against a contract baseline. This
// is the last stage call; on success the pipeline advances to complete.
func (c *Controller) RunComparison(ctx context.Context, contractID string) (*models.ComparisonResult, error) {
	c.mu.Lock()

	if c.state.Step != models.StepCompare {
		c.mu.Unlock()

		return nil, NewValidationError("RunComparison", "WRONG_STEP",
			"contract comparison is only available at the compare step", ErrWrongStep)
	}

	if c.state.Analysis == nil {
		c.mu.Unlock()

		return nil, NewValidationError("RunComparison", "NO_ANALYSIS",
			"comparison requires a completed analysis", ErrNoAnalysis)
	}

	scores := c.state.Analysis.Scores
	gen := c.generation
	c.state.Loading = true
	c.state.Error = ""
	c.mu.Unlock()

	result, err := c.gateway.CompareContract(ctx, contractID, scores)

	c.mu.Lock()

	if gen != c.generation {
		c.mu.Unlock()

		return nil, &StateError{Op: "RunComparison", Code: "RUN_RESET", Err: ErrRunReset}
	}

	if err != nil {
		c.state.Loading = false
		c.state.Error = "Contract comparison failed: " + err.Error()
		c.mu.Unlock()

		return nil, fmt.Errorf("%w: comparison: %w", ErrStageCall, err)
	}

	c.state.Comparison = result
	c.state.Loading = false
	c.state.Error = ""
	c.advanceIfReadyLocked()
	c.mu.Unlock()

	c.publish(ctx, "", events.StageCompleted{
		BaseEvent: c.newBaseEvent(events.StageCompletedEvent, ""),
		Step:      models.StepCompare,
	})

	return result, nil
}

// Advance moves to the immediate successor via the primary continue action.
// Reaching the terminal step is idempotent.
func (c *Controller) Advance(_ context.Context) (models.Step, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Step.Terminal() {
		return c.state.Step, nil
	}

	next, _ := c.state.Step.Next()

	err := steps.Advance(c.state, next)
	if err != nil {
		return "", err
	}

	c.setStepLocked(next)

	return next, nil
}

// Rewind navigates back to an earlier step. Non-destructive: downstream
// results stay in place and a later forward advance may reuse them.
func (c *Controller) Rewind(_ context.Context, to models.Step) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := steps.Rewind(c.state, to)
	if err != nil {
		return err
	}

	c.state.Step = to

	return nil
}

// SelectStep navigates directly to an already-visited step for read-only
// inspection, bypassing the precondition gate.
func (c *Controller) SelectStep(_ context.Context, to models.Step) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := steps.Select(c.state, to)
	if err != nil {
		return err
	}

	c.state.Step = to

	return nil
}

// Reset cancels any active polling, restores the default state and purges
// the persisted session. Results of in-flight calls are discarded when they
// eventually resolve.
func (c *Controller) Reset(ctx context.Context) error {
	c.poller.Cancel()

	c.mu.Lock()
	c.generation++
	c.state = models.NewWorkflowState()
	c.submitting = false
	c.mu.Unlock()

	err := c.sessions.Purge(ctx)
	if err != nil {
		c.logger.ErrorContext(ctx, "Failed to purge session on reset", "error", err)
	}

	c.publish(ctx, "", events.WorkflowReset{
		BaseEvent: c.newBaseEvent(events.WorkflowResetEvent, ""),
	})

	return err
}

// HealthCheck reports the health of the session store.
func (c *Controller) HealthCheck(ctx context.Context) error {
	return c.sessions.HealthCheck(ctx)
}

func (c *Controller) startPolling(ctx context.Context, gen uint64, jobID string) {
	// The poll loop must survive the request that started it.
	pollCtx := context.WithoutCancel(ctx)

	c.poller.Start(pollCtx, jobID,
		func(job *models.JobState) { c.ingestJobResult(pollCtx, gen, job) },
		func(err error) { c.failRun(pollCtx, gen, err) },
	)
}

// ingestJobResult hydrates the analysis result from a terminal job state,
// then triggers the automatic downstream actions: the eager document
// requirements lookup and the readiness evaluation that auto-advances the
// pipeline.
func (c *Controller) ingestJobResult(ctx context.Context, gen uint64, job *models.JobState) {
	c.mu.Lock()

	if gen != c.generation {
		c.mu.Unlock()

		return
	}

	if job.Payload == nil {
		c.mu.Unlock()
		c.failRun(ctx, gen, fmt.Errorf("completed job %s carried no payload", job.ID))

		return
	}

	analysis := *job.Payload
	if analysis.Status == "" {
		analysis.Status = models.JobStatusCompleted
	}

	c.state.Analysis = &analysis
	c.state.ActiveJobID = ""

	for i := range c.state.Progress {
		c.state.Progress[i].Status = models.SubStageDone
	}

	// Readiness evaluation is still outstanding.
	c.state.Loading = true
	persisted := c.persistedLocked()
	c.mu.Unlock()

	c.saveSession(ctx, persisted)
	c.publish(ctx, job.ID, events.AnalysisCompleted{
		BaseEvent:      c.newBaseEvent(events.AnalysisCompletedEvent, job.ID),
		Classification: analysis.Classification,
		Scores:         analysis.Scores,
	})

	if analysis.Classification != "" {
		c.fetchRequirements(ctx, gen, analysis.Classification)
	}

	err := c.runReadiness(ctx, gen, analysis.Scores)
	if err != nil {
		c.logger.ErrorContext(ctx, "Automatic readiness evaluation failed", "error", err)
	}
}

// runReadiness performs the readiness stage call and, on success, advances
// to the readiness step. Auto-advance happens only here; every later stage
// requires explicit user action.
func (c *Controller) runReadiness(ctx context.Context, gen uint64, scores models.ScoreCard) error {
	result, err := c.gateway.ReadinessCheck(ctx, scores)

	c.mu.Lock()

	if gen != c.generation {
		c.mu.Unlock()

		return nil
	}

	if err != nil {
		c.state.Loading = false
		c.state.Error = "Readiness check failed: " + err.Error()
		c.mu.Unlock()

		return fmt.Errorf("%w: readiness: %w", ErrStageCall, err)
	}

	c.state.Readiness = result
	c.state.Loading = false
	c.state.Error = ""

	if c.state.Step.Index() < models.StepReadiness.Index() {
		c.setStepLocked(models.StepReadiness)
	}

	c.mu.Unlock()

	c.publish(ctx, "", events.StageCompleted{
		BaseEvent: c.newBaseEvent(events.StageCompletedEvent, ""),
		Step:      models.StepReadiness,
	})

	return nil
}

// fetchRequirements eagerly loads the document requirements for the
// analyzed repository's classification. Advisory reference data: a failure
// is logged, not surfaced.
func (c *Controller) fetchRequirements(ctx context.Context, gen uint64, classification string) {
	requirements, err := c.gateway.DocumentRequirements(ctx, classification)
	if err != nil {
		c.logger.WarnContext(ctx, "Failed to fetch document requirements",
			"classification", classification, "error", err)

		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		return
	}

	c.state.Requirements = requirements
}

// failRun handles job failure and poll timeout: fatal for the current run.
func (c *Controller) failRun(ctx context.Context, gen uint64, runErr error) {
	c.mu.Lock()

	if gen != c.generation {
		c.mu.Unlock()

		return
	}

	jobID := c.state.ActiveJobID
	c.state.ActiveJobID = ""
	c.state.Loading = false
	c.state.Error = "Analysis failed: " + runErr.Error()

	for i := range c.state.Progress {
		if c.state.Progress[i].Status == models.SubStageRunning {
			c.state.Progress[i].Status = models.SubStageError
		}
	}

	c.mu.Unlock()

	err := c.sessions.Purge(ctx)
	if err != nil {
		c.logger.ErrorContext(ctx, "Failed to purge session after job failure", "error", err)
	}

	c.logger.ErrorContext(ctx, "Analysis run failed", "job_id", jobID, "error", runErr)
	c.publish(ctx, jobID, events.AnalysisFailed{
		BaseEvent: c.newBaseEvent(events.AnalysisFailedEvent, jobID),
		Error:     runErr.Error(),
	})
}

// advanceIfReadyLocked moves to the immediate successor when its gate
// passes. Used by the stage calls whose success implies the user's continue.
func (c *Controller) advanceIfReadyLocked() {
	next, ok := c.state.Step.Next()
	if !ok {
		return
	}

	if steps.Advance(c.state, next) == nil {
		c.setStepLocked(next)
	}
}

func (c *Controller) setStepLocked(step models.Step) {
	c.state.Step = step

	if step.Index() > c.state.HighestStep.Index() {
		c.state.HighestStep = step
	}
}

// persistedLocked builds the durable subset of the current state. Caller
// holds the mutex.
func (c *Controller) persistedLocked() models.PersistedSession {
	return models.PersistedSession{
		ActiveJobID: c.state.ActiveJobID,
		SourceType:  c.state.Source.Type,
		SourceURL:   c.state.Source.URL,
		SourcePath:  c.state.Source.Path,
		UpdatedAt:   time.Now().UTC(),
	}
}

func (c *Controller) saveSession(ctx context.Context, persisted models.PersistedSession) {
	err := c.sessions.Save(ctx, persisted)
	if err != nil {
		c.logger.ErrorContext(ctx, "Failed to persist session", "error", err)
	}
}

func (c *Controller) publish(ctx context.Context, key string, event eventbus.Event) {
	if c.eventBus == nil {
		return
	}

	err := c.eventBus.Publish(ctx, key, event)
	if err != nil {
		c.logger.ErrorContext(ctx, "Failed to publish event", "event_type", event.GetType(), "error", err)
	}
}

func (c *Controller) newBaseEvent(eventType events.EventType, jobID string) events.BaseEvent {
	return events.BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		JobID:     jobID,
	}
}
