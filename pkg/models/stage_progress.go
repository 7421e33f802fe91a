package models

// SubStageStatus is the advisory status of one analysis sub-stage. Progress
// markers are UI-facing only and never gate step transitions.
type SubStageStatus string

const (
	SubStagePending SubStageStatus = "pending"
	SubStageRunning SubStageStatus = "running"
	SubStageDone    SubStageStatus = "done"
	SubStageError   SubStageStatus = "error"
)

// SubStage is one marker in the ordered stage progress list.
type SubStage struct {
	Name   string         `json:"name"`
	Status SubStageStatus `json:"status"`
}

// DefaultSubStages returns the progress markers for a fresh analysis run.
func DefaultSubStages() []SubStage {
	return []SubStage{
		{Name: "fetch", Status: SubStagePending},
		{Name: "structure", Status: SubStagePending},
		{Name: "scoring", Status: SubStagePending},
	}
}
