package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/paperbridge/core"
	"github.com/poiesic/paperbridge/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupGuard(t *testing.T, opts ...GuardOption) (*Guard, *badger.Repositories) {
	t.Helper()

	repos, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		repos.Close()
		backend.Close()
	})

	guard, err := NewGuard(repos.Jobs, opts...)
	require.NoError(t, err)
	return guard, repos
}

func TestGuardOptions(t *testing.T) {
	repos, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		repos.Close()
		backend.Close()
	}()

	_, err = NewGuard(nil)
	assert.ErrorIs(t, err, ErrJobRepositoryRequired)

	_, err = NewGuard(repos.Jobs, WithWaitTimeout(0))
	assert.Error(t, err)

	_, err = NewGuard(repos.Jobs, WithPollInterval(-time.Second))
	assert.Error(t, err)
}

func TestWaitForTerminal_ReturnsImmediatelyForTerminalJob(t *testing.T) {
	guard, repos := setupGuard(t)
	ctx := context.Background()

	job, err := repos.Jobs.CreateJob(ctx, &core.Job{
		DocumentId: 1,
		Task:       core.TaskExtract,
		Status:     core.StatusDone,
	})
	require.NoError(t, err)

	got, err := guard.WaitForTerminal(ctx, job.Id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, core.StatusDone, got.Status)
}

func TestWaitForTerminal_PollsUntilTerminal(t *testing.T) {
	guard, repos := setupGuard(t,
		WithWaitTimeout(2*time.Second),
		WithPollInterval(10*time.Millisecond))
	ctx := context.Background()

	job, err := repos.Jobs.CreateJob(ctx, &core.Job{
		DocumentId: 1,
		Task:       core.TaskEmbed,
		Status:     core.StatusProcessing,
	})
	require.NoError(t, err)

	go func() {
		time.Sleep(80 * time.Millisecond)
		current, err := repos.Jobs.GetJob(context.Background(), job.Id)
		if err != nil || current == nil {
			return
		}
		current.Status = core.StatusFailed
		current.ErrorMessage = "worker crashed"
		repos.Jobs.SaveJob(context.Background(), current)
	}()

	got, err := guard.WaitForTerminal(ctx, job.Id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, core.StatusFailed, got.Status)
	assert.Equal(t, "worker crashed", got.ErrorMessage)
}

func TestWaitForTerminal_TimesOut(t *testing.T) {
	guard, repos := setupGuard(t,
		WithWaitTimeout(50*time.Millisecond),
		WithPollInterval(10*time.Millisecond))
	ctx := context.Background()

	job, err := repos.Jobs.CreateJob(ctx, &core.Job{
		DocumentId: 1,
		Task:       core.TaskExtract,
		Status:     core.StatusProcessing,
	})
	require.NoError(t, err)

	_, err = guard.WaitForTerminal(ctx, job.Id)
	assert.ErrorIs(t, err, ErrWaitTimeout)
}

func TestWaitForTerminal_MissingJob(t *testing.T) {
	guard, _ := setupGuard(t)

	_, err := guard.WaitForTerminal(context.Background(), 424242)
	assert.ErrorIs(t, err, ErrJobDeleted)
}

func TestWaitForTerminal_ContextCancel(t *testing.T) {
	guard, repos := setupGuard(t,
		WithWaitTimeout(10*time.Second),
		WithPollInterval(10*time.Millisecond))

	job, err := repos.Jobs.CreateJob(context.Background(), &core.Job{
		DocumentId: 1,
		Task:       core.TaskExtract,
		Status:     core.StatusProcessing,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err = guard.WaitForTerminal(ctx, job.Id)
	assert.ErrorIs(t, err, context.Canceled)
}
