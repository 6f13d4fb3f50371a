package badger

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/paperbridge/core"
	"github.com/poiesic/paperbridge/storage"
)

func TestJobBasics(t *testing.T) {
	repos, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { repos.Close(); backend.Close() }()

	ctx := context.Background()

	job := &core.Job{
		DocumentId: 7,
		Task:       core.TaskExtract,
		Status:     core.StatusQueued,
	}

	created, err := repos.Jobs.CreateJob(ctx, job)
	if err != nil {
		t.Fatalf("Failed to create job: %v", err)
	}
	if created.Id == 0 {
		t.Fatal("Expected non-zero ID")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Fatal("Expected timestamps to be set")
	}

	retrieved, err := repos.Jobs.GetJob(ctx, created.Id)
	if err != nil {
		t.Fatalf("Failed to get job: %v", err)
	}
	if retrieved == nil {
		t.Fatal("Expected job, got nil")
	}
	if retrieved.Task != core.TaskExtract || retrieved.Status != core.StatusQueued {
		t.Fatalf("Unexpected job contents: %+v", retrieved)
	}
}

func TestJobGetMissing(t *testing.T) {
	repos, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { repos.Close(); backend.Close() }()

	job, err := repos.Jobs.GetJob(context.Background(), 9999)
	if err != nil {
		t.Fatalf("Expected no error for missing job, got: %v", err)
	}
	if job != nil {
		t.Fatalf("Expected nil for missing job, got: %+v", job)
	}
}

func TestJobSave(t *testing.T) {
	repos, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { repos.Close(); backend.Close() }()

	ctx := context.Background()

	created, err := repos.Jobs.CreateJob(ctx, &core.Job{
		DocumentId: 7,
		Task:       core.TaskEmbed,
		Status:     core.StatusQueued,
	})
	if err != nil {
		t.Fatalf("Failed to create job: %v", err)
	}

	created.Status = core.StatusFailed
	created.ErrorMessage = "embedder unavailable"
	saved, err := repos.Jobs.SaveJob(ctx, created)
	if err != nil {
		t.Fatalf("Failed to save job: %v", err)
	}

	retrieved, err := repos.Jobs.GetJob(ctx, saved.Id)
	if err != nil {
		t.Fatalf("Failed to get job: %v", err)
	}
	if retrieved.Status != core.StatusFailed {
		t.Fatalf("Expected failed status, got %s", retrieved.Status)
	}
	if retrieved.ErrorMessage != "embedder unavailable" {
		t.Fatalf("Expected error message to persist, got %q", retrieved.ErrorMessage)
	}
}

func TestJobSaveMissing(t *testing.T) {
	repos, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { repos.Close(); backend.Close() }()

	_, err = repos.Jobs.SaveJob(context.Background(), &core.Job{
		Id:         424242,
		DocumentId: 7,
		Task:       core.TaskExtract,
		Status:     core.StatusDone,
	})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got: %v", err)
	}
}

func TestFindLatestJob(t *testing.T) {
	repos, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { repos.Close(); backend.Close() }()

	ctx := context.Background()

	// Older extract job for document 7, terminal
	first, err := repos.Jobs.CreateJob(ctx, &core.Job{
		DocumentId: 7, Task: core.TaskExtract, Status: core.StatusDone,
	})
	if err != nil {
		t.Fatalf("Failed to create job: %v", err)
	}

	// Newer extract job for document 7, active
	second, err := repos.Jobs.CreateJob(ctx, &core.Job{
		DocumentId: 7, Task: core.TaskExtract, Status: core.StatusQueued,
	})
	if err != nil {
		t.Fatalf("Failed to create job: %v", err)
	}

	// Different task and different document must not match
	if _, err := repos.Jobs.CreateJob(ctx, &core.Job{
		DocumentId: 7, Task: core.TaskEmbed, Status: core.StatusQueued,
	}); err != nil {
		t.Fatalf("Failed to create job: %v", err)
	}
	if _, err := repos.Jobs.CreateJob(ctx, &core.Job{
		DocumentId: 8, Task: core.TaskExtract, Status: core.StatusQueued,
	}); err != nil {
		t.Fatalf("Failed to create job: %v", err)
	}

	latest, err := repos.Jobs.FindLatestJob(ctx, 7, core.TaskExtract)
	if err != nil {
		t.Fatalf("Failed to find latest job: %v", err)
	}
	if latest == nil || latest.Id != second.Id {
		t.Fatalf("Expected newest extract job %d, got %+v", second.Id, latest)
	}

	// Status filter skips the newer queued job and finds the done one
	done, err := repos.Jobs.FindLatestJob(ctx, 7, core.TaskExtract, core.StatusDone)
	if err != nil {
		t.Fatalf("Failed to find latest done job: %v", err)
	}
	if done == nil || done.Id != first.Id {
		t.Fatalf("Expected done extract job %d, got %+v", first.Id, done)
	}

	// No match at all returns nil, nil
	none, err := repos.Jobs.FindLatestJob(ctx, 7, core.TaskExtract, core.StatusFailed)
	if err != nil {
		t.Fatalf("Expected no error when nothing matches, got: %v", err)
	}
	if none != nil {
		t.Fatalf("Expected nil when nothing matches, got: %+v", none)
	}
}

func TestJobPipelineMetadataRoundTrip(t *testing.T) {
	repos, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { repos.Close(); backend.Close() }()

	ctx := context.Background()

	created, err := repos.Jobs.CreateJob(ctx, &core.Job{
		DocumentId: 7,
		Task:       core.TaskPipeline,
		Status:     core.StatusQueued,
		Pipeline:   core.NewPipelineMetadata(),
	})
	if err != nil {
		t.Fatalf("Failed to create pipeline job: %v", err)
	}

	retrieved, err := repos.Jobs.GetJob(ctx, created.Id)
	if err != nil {
		t.Fatalf("Failed to get pipeline job: %v", err)
	}
	if retrieved.Pipeline == nil {
		t.Fatal("Expected pipeline metadata to persist")
	}
	if retrieved.Pipeline.Extract.Status != core.StepQueued ||
		retrieved.Pipeline.Embed.Status != core.StepQueued {
		t.Fatalf("Expected queued steps, got %+v", retrieved.Pipeline)
	}
	if !retrieved.Pipeline.StartedAt.IsZero() {
		t.Fatal("Expected zero StartedAt on a fresh pipeline job")
	}
}
