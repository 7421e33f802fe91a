package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWorkflowState(t *testing.T) {
	state := NewWorkflowState()

	assert.Equal(t, StepSetup, state.Step)
	assert.Equal(t, StepSetup, state.HighestStep)
	assert.NotNil(t, state.Documents)
	assert.Len(t, state.Progress, 3)
	assert.False(t, state.Loading)
}

func TestWorkflowState_CloneIsDeep(t *testing.T) {
	state := NewWorkflowState()
	state.Analysis = &AnalysisResult{RepositoryName: "acme/billing"}
	state.Documents[DocumentTypeInvoice] = GeneratedDocument{Type: DocumentTypeInvoice, Content: "v1"}
	state.Progress[0].Status = SubStageRunning

	clone := state.Clone()

	clone.Analysis.RepositoryName = "other/repo"
	clone.Documents[DocumentTypeInvoice] = GeneratedDocument{Type: DocumentTypeInvoice, Content: "v2"}
	clone.Progress[0].Status = SubStageError

	assert.Equal(t, "acme/billing", state.Analysis.RepositoryName)
	assert.Equal(t, "v1", state.Documents[DocumentTypeInvoice].Content)
	assert.Equal(t, SubStageRunning, state.Progress[0].Status)
}

func TestWorkflowState_Visited(t *testing.T) {
	state := NewWorkflowState()
	state.Step = StepReadiness
	state.HighestStep = StepCost

	assert.True(t, state.Visited(StepSetup))
	assert.True(t, state.Visited(StepCost))
	assert.False(t, state.Visited(StepDocuments))
	assert.False(t, state.Visited(Step("bogus")))
}

func TestStep_Ordering(t *testing.T) {
	order := StepOrder()
	require.Len(t, order, 8)
	assert.Equal(t, StepSetup, order[0])
	assert.Equal(t, StepComplete, order[7])

	next, ok := StepSetup.Next()
	require.True(t, ok)
	assert.Equal(t, StepReadiness, next)

	_, ok = StepComplete.Next()
	assert.False(t, ok)
	assert.True(t, StepComplete.Terminal())

	assert.Equal(t, -1, Step("bogus").Index())
	assert.False(t, Step("bogus").Valid())
}

func TestSourceSelection_Location(t *testing.T) {
	git := SourceSelection{Type: SourceTypeGit, URL: "https://example.com/repo.git"}
	assert.Equal(t, git.URL, git.Location())

	local := SourceSelection{Type: SourceTypeLocal, Path: "/srv/repos/billing"}
	assert.Equal(t, local.Path, local.Location())

	assert.True(t, SourceSelection{}.Empty())
	assert.False(t, git.Empty())
}

func TestJobStatus_Terminal(t *testing.T) {
	assert.True(t, JobStatusCompleted.Terminal())
	assert.True(t, JobStatusFailed.Terminal())
	assert.False(t, JobStatusQueued.Terminal())
	assert.False(t, JobStatusRunning.Terminal())
}
