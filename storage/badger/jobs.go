package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/paperbridge/core"
	"github.com/poiesic/paperbridge/storage"
)

// JobRepository implements storage.JobRepository for BadgerDB.
type JobRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.JobRepository = (*JobRepository)(nil)

// NewJobRepository creates a new JobRepository.
func NewJobRepository(backend *Backend) (*JobRepository, error) {
	idSeq, err := backend.GetSequence(jobIDSeq)
	if err != nil {
		return nil, err
	}

	return &JobRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *JobRepository) Close() error {
	return r.idSeq.Release()
}

// CreateJob persists a new job, assigning its ID from sequence.
func (r *JobRepository) CreateJob(ctx context.Context, job *core.Job) (*core.Job, error) {
	if err := core.ValidateJob(job); err != nil {
		return nil, err
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		nextID, err := r.idSeq.Next()
		if err != nil {
			return err
		}
		// BadgerDB sequences can return 0 on first call, so we skip it
		if nextID == 0 {
			nextID, err = r.idSeq.Next()
			if err != nil {
				return err
			}
		}
		job.Id = core.ID(nextID)

		job.CreatedAt = time.Now().UTC()
		job.UpdatedAt = job.CreatedAt

		// Store primary record
		key := makeJobKey(job.Id)
		value := storage.MarshalJob(job)
		if err := tx.Set(key, value); err != nil {
			return err
		}

		// Update (document, task) index
		indexKey := makeJobDocTaskKey(job.DocumentId, job.Task, job.CreatedAt, job.Id)
		if err := tx.Set(indexKey, storage.MarshalID(job.Id)); err != nil {
			return err
		}

		return tx.Commit()
	}, true)

	return job, err
}

// GetJob retrieves a job by ID. Returns nil, nil if the job does not exist.
func (r *JobRepository) GetJob(ctx context.Context, id core.ID) (*core.Job, error) {
	var result *core.Job
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeJobKey(id)
		var err error
		result, err = r.readJob(tx, key)
		return err
	}, false)
	return result, err
}

// FindLatestJob returns the most recently created job for a document and task
// type. When statuses are given, only jobs in one of those statuses match.
// Returns nil, nil if no matching job exists.
func (r *JobRepository) FindLatestJob(ctx context.Context, documentID core.ID, task core.TaskType, statuses ...core.JobStatus) (*core.Job, error) {
	var result *core.Job
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true

		iter := tx.NewIterator(opts)
		defer iter.Close()

		// Seek past the newest possible index entry for this (document, task)
		// pair; reverse iteration then yields entries newest-first.
		startKey := makeJobDocTaskKey(documentID, task,
			time.Date(9999, 12, 31, 23, 59, 59, 999999999, time.UTC), core.ID(^uint64(0)))
		prefix := makePartialJobDocTaskKey(documentID, task)

		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if len(key) < len(prefix) || slices.Compare(key[:len(prefix)], prefix) != 0 {
				break
			}

			var jobID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				jobID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			job, err := r.readJob(tx, makeJobKey(jobID))
			if err != nil {
				return err
			}
			if job == nil {
				continue
			}

			if len(statuses) > 0 && !slices.Contains(statuses, job.Status) {
				continue
			}

			result = job
			return nil
		}
		return nil
	}, false)

	return result, err
}

// SaveJob persists mutated fields of an existing job.
// Returns storage.ErrNotFound if the job does not exist.
func (r *JobRepository) SaveJob(ctx context.Context, job *core.Job) (*core.Job, error) {
	if err := core.ValidateJob(job); err != nil {
		return nil, err
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeJobKey(job.Id)

		old, err := r.readJob(tx, key)
		if err != nil {
			return err
		}
		if old == nil {
			return storage.ErrNotFound
		}

		// CreatedAt is immutable, so the index entry never moves.
		job.CreatedAt = old.CreatedAt
		job.UpdatedAt = time.Now().UTC()

		if err := tx.Set(key, storage.MarshalJob(job)); err != nil {
			return err
		}

		return tx.Commit()
	}, true)

	return job, err
}

// readJob reads a job record from the transaction.
func (r *JobRepository) readJob(tx *badger.Txn, key []byte) (*core.Job, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var job *core.Job
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		job, unmarshalErr = storage.UnmarshalJob(val)
		return unmarshalErr
	})
	return job, err
}
