// Package events defines the lifecycle events published by the workflow
// controller.
package events

import (
	"time"

	"github.com/auditflow/auditflow/pkg/models"
)

type EventType string

// Topic carries every pipeline lifecycle event.
const Topic = "auditflow.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	RunSubmittedEvent      EventType = "run.submitted"
	AnalysisCompletedEvent EventType = "run.analysis.completed"
	AnalysisFailedEvent    EventType = "run.analysis.failed"
	StageCompletedEvent    EventType = "run.stage.completed"
	DocumentGeneratedEvent EventType = "run.document.generated"
	WorkflowResetEvent     EventType = "run.reset"
)

type BaseEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	JobID     string         `json:"job_id,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type RunSubmitted struct {
	BaseEvent

	Source models.SourceSelection `json:"source"`
}

func (e RunSubmitted) GetType() EventType {
	return RunSubmittedEvent
}

type AnalysisCompleted struct {
	BaseEvent

	Classification string           `json:"classification,omitempty"`
	Scores         models.ScoreCard `json:"scores"`
}

func (e AnalysisCompleted) GetType() EventType {
	return AnalysisCompletedEvent
}

type AnalysisFailed struct {
	BaseEvent

	Error string `json:"error"`
}

func (e AnalysisFailed) GetType() EventType {
	return AnalysisFailedEvent
}

type StageCompleted struct {
	BaseEvent

	Step models.Step `json:"step"`
}

func (e StageCompleted) GetType() EventType {
	return StageCompletedEvent
}

type DocumentGenerated struct {
	BaseEvent

	DocumentType models.DocumentType `json:"document_type"`
	Format       string              `json:"format,omitempty"`
}

func (e DocumentGenerated) GetType() EventType {
	return DocumentGeneratedEvent
}

type WorkflowReset struct {
	BaseEvent
}

func (e WorkflowReset) GetType() EventType {
	return WorkflowResetEvent
}
