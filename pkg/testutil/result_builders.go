// Package testutil provides test data builders and utilities for testing.
package testutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/auditflow/auditflow/pkg/models"
)

// CreateTestSource creates a git source selection with default values that
// can be overridden.
func CreateTestSource(overrides ...func(*models.SourceSelection)) models.SourceSelection {
	source := models.SourceSelection{
		Type:       models.SourceTypeGit,
		URL:        "https://example.com/acme/billing.git",
		Branch:     "main",
		RegionMode: models.RegionModeFull,
	}

	for _, override := range overrides {
		override(&source)
	}

	return source
}

// WithLocalPath configures the source as a local checkout.
func WithLocalPath(path string) func(*models.SourceSelection) {
	return func(s *models.SourceSelection) {
		s.Type = models.SourceTypeLocal
		s.URL = ""
		s.Path = path
	}
}

// CreateTestScores creates a score card with default values.
func CreateTestScores(overrides ...func(*models.ScoreCard)) models.ScoreCard {
	scores := models.ScoreCard{
		Health: 72.5,
		Debt:   14.0,
		Metrics: map[string]float64{
			"complexity": 3.1,
			"coverage":   0.64,
		},
	}

	for _, override := range overrides {
		override(&scores)
	}

	return scores
}

// CreateTestAnalysis creates a completed analysis result.
func CreateTestAnalysis(overrides ...func(*models.AnalysisResult)) *models.AnalysisResult {
	analysis := &models.AnalysisResult{
		Status:         models.JobStatusCompleted,
		RepositoryName: "acme/billing",
		Classification: "service",
		Scores:         CreateTestScores(),
		CompletedAt:    time.Now().UTC(),
	}

	for _, override := range overrides {
		override(analysis)
	}

	return analysis
}

// WithClassification sets the repository classification.
func WithClassification(classification string) func(*models.AnalysisResult) {
	return func(a *models.AnalysisResult) {
		a.Classification = classification
	}
}

// CreateCompletedJob creates a completed job state carrying a full analysis
// payload.
func CreateCompletedJob(overrides ...func(*models.JobState)) *models.JobState {
	job := &models.JobState{
		ID:      uuid.New().String(),
		Status:  models.JobStatusCompleted,
		Payload: CreateTestAnalysis(),
	}

	for _, override := range overrides {
		override(job)
	}

	return job
}

// CreateRunningJob creates a job state still in flight.
func CreateRunningJob(jobID string) *models.JobState {
	return &models.JobState{
		ID:     jobID,
		Status: models.JobStatusRunning,
	}
}

// CreateFailedJob creates a failed job state with an error message.
func CreateFailedJob(jobID, message string) *models.JobState {
	return &models.JobState{
		ID:           jobID,
		Status:       models.JobStatusFailed,
		ErrorMessage: message,
	}
}
