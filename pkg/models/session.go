package models

import "time"

// PersistedSession is the subset of WorkflowState written to durable
// storage. It holds only the identifiers needed to resume a run; results are
// re-fetched, never replayed from storage.
type PersistedSession struct {
	ActiveJobID string     `json:"active_job_id,omitempty"`
	SourceType  SourceType `json:"source_type,omitempty"`
	SourceURL   string     `json:"source_url,omitempty"`
	SourcePath  string     `json:"source_path,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Empty reports whether there is nothing to resume from.
func (s PersistedSession) Empty() bool {
	return s.ActiveJobID == "" && s.SourceURL == "" && s.SourcePath == ""
}

// Source rebuilds the source selection held in the session.
func (s PersistedSession) Source() SourceSelection {
	return SourceSelection{
		Type: s.SourceType,
		URL:  s.SourceURL,
		Path: s.SourcePath,
	}
}
