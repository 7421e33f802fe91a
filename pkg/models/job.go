package models

// JobStatus is the lifecycle state of a remote analysis job.
type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// Terminal reports whether the status ends a poll loop.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// JobState is the remote job status endpoint response.
type JobState struct {
	ID           string          `json:"id"`
	Status       JobStatus       `json:"status"`
	Payload      *AnalysisResult `json:"payload,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
}
