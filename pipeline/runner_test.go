package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/paperbridge/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitForTerminalJob(t *testing.T, f *pipelineFixture, jobID core.ID) *core.Job {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, err := f.repos.Jobs.GetJob(context.Background(), jobID)
		require.NoError(t, err)
		require.NotNil(t, job)
		if job.Status.Terminal() {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("job %d did not reach a terminal status", jobID)
	return nil
}

func TestRunnerProcessDocument(t *testing.T) {
	f := setupPipeline(t)
	defer f.cleanup()
	ctx := context.Background()

	runner, err := NewRunner(f.orchestrator, WithPoolSize(2))
	require.NoError(t, err)
	defer runner.Release()

	docID := f.addDocument(t, "Invoice #42 from Acme Corp to Widgets Ltd.")

	job, err := runner.ProcessDocument(ctx, docID)
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, core.TaskPipeline, job.Task)

	final := waitForTerminalJob(t, f, job.Id)
	assert.Equal(t, core.StatusDone, final.Status)
	assert.Equal(t, core.StepDone, final.Pipeline.Extract.Status)
	assert.Equal(t, core.StepDone, final.Pipeline.Embed.Status)
}

func TestRunnerProcessDocument_Idempotent(t *testing.T) {
	f := setupPipeline(t)
	defer f.cleanup()
	ctx := context.Background()

	runner, err := NewRunner(f.orchestrator, WithPoolSize(2))
	require.NoError(t, err)
	defer runner.Release()

	docID := f.addDocument(t, "Invoice #42 from Acme Corp.")

	first, err := runner.ProcessDocument(ctx, docID)
	require.NoError(t, err)

	// Resubmitting while the job is in flight returns the same job
	second, err := runner.ProcessDocument(ctx, docID)
	require.NoError(t, err)
	assert.Equal(t, first.Id, second.Id)

	final := waitForTerminalJob(t, f, first.Id)
	assert.Equal(t, core.StatusDone, final.Status)

	// Resubmitting after completion reuses the done job without rework
	extractorCalls := f.extractor.CallCount()
	third, err := runner.ProcessDocument(ctx, docID)
	require.NoError(t, err)
	assert.Equal(t, first.Id, third.Id)
	assert.Equal(t, core.StatusDone, third.Status)
	assert.Equal(t, extractorCalls, f.extractor.CallCount())
}

func TestNewRunnerValidation(t *testing.T) {
	_, err := NewRunner(nil)
	assert.Error(t, err)
}

func TestRunnerRelease(t *testing.T) {
	f := setupPipeline(t)
	defer f.cleanup()

	runner, err := NewRunner(f.orchestrator)
	require.NoError(t, err)

	assert.Zero(t, runner.Running())
	runner.Release()
}
