package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDFromContent(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		id1 := IDFromContent("invoice-checksum")
		id2 := IDFromContent("invoice-checksum")
		assert.Equal(t, id1, id2)
	})

	t.Run("different content produces different IDs", func(t *testing.T) {
		id1 := IDFromContent("checksum-a")
		id2 := IDFromContent("checksum-b")
		assert.NotEqual(t, id1, id2)
	})
}

func TestJobStatusTerminal(t *testing.T) {
	tests := []struct {
		status   JobStatus
		terminal bool
	}{
		{StatusQueued, false},
		{StatusProcessing, false},
		{StatusNeedsReview, true},
		{StatusDone, true},
		{StatusFailed, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.terminal, tt.status.Terminal())
		})
	}
}

func TestStepStatusTerminal(t *testing.T) {
	assert.False(t, StepQueued.Terminal())
	assert.False(t, StepProcessing.Terminal())
	assert.True(t, StepSkipped.Terminal())
	assert.True(t, StepDone.Terminal())
	assert.True(t, StepFailed.Terminal())
}

func TestStepSuccessStatuses(t *testing.T) {
	t.Run("extract accepts needs_review", func(t *testing.T) {
		assert.ElementsMatch(t, []JobStatus{StatusDone, StatusNeedsReview}, StepSuccessStatuses(TaskExtract))
	})

	t.Run("embed accepts only done", func(t *testing.T) {
		assert.Equal(t, []JobStatus{StatusDone}, StepSuccessStatuses(TaskEmbed))
	})
}

func TestNewPipelineMetadata(t *testing.T) {
	meta := NewPipelineMetadata()
	require.NotNil(t, meta)
	assert.Equal(t, StepQueued, meta.Extract.Status)
	assert.Equal(t, StepQueued, meta.Embed.Status)
	assert.True(t, meta.StartedAt.IsZero())
	assert.True(t, meta.CompletedAt.IsZero())
	assert.True(t, meta.FailedAt.IsZero())
}

func TestPipelineMetadataStep(t *testing.T) {
	meta := NewPipelineMetadata()
	meta.Extract.Status = StepDone

	require.NotNil(t, meta.Step(TaskExtract))
	assert.Equal(t, StepDone, meta.Step(TaskExtract).Status)
	require.NotNil(t, meta.Step(TaskEmbed))
	assert.Equal(t, StepQueued, meta.Step(TaskEmbed).Status)
	assert.Nil(t, meta.Step(TaskPipeline))

	// Step returns a pointer into the metadata, not a copy
	meta.Step(TaskEmbed).Status = StepProcessing
	assert.Equal(t, StepProcessing, meta.Embed.Status)
}
