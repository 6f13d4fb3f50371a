package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/paperbridge/core"
	"github.com/poiesic/paperbridge/storage"
)

// ExtractionRepository implements storage.ExtractionRepository for BadgerDB.
// Extraction rows are append-only; the newest row for a document wins on read.
type ExtractionRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.ExtractionRepository = (*ExtractionRepository)(nil)

// NewExtractionRepository creates a new ExtractionRepository.
func NewExtractionRepository(backend *Backend) (*ExtractionRepository, error) {
	idSeq, err := backend.GetSequence(extIDSeq)
	if err != nil {
		return nil, err
	}

	return &ExtractionRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *ExtractionRepository) Close() error {
	return r.idSeq.Release()
}

// AddExtraction persists an extraction result, assigning its ID from sequence.
func (r *ExtractionRepository) AddExtraction(ctx context.Context, extraction *core.Extraction) (*core.Extraction, error) {
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
		extraction.Id = core.ID(nextID)

		extraction.CreatedAt = time.Now().UTC()
		extraction.UpdatedAt = extraction.CreatedAt

		key := makeExtractionKey(extraction.Id)
		if err := tx.Set(key, storage.MarshalExtraction(extraction)); err != nil {
			return err
		}

		// Update per-document index
		indexKey := makeExtractionDocKey(extraction.DocumentId, extraction.CreatedAt, extraction.Id)
		if err := tx.Set(indexKey, storage.MarshalID(extraction.Id)); err != nil {
			return err
		}

		return tx.Commit()
	}, true)

	return extraction, err
}

// LatestExtraction returns the most recent extraction for a document.
// Returns nil, nil if none exists.
func (r *ExtractionRepository) LatestExtraction(ctx context.Context, documentID core.ID) (*core.Extraction, error) {
	var result *core.Extraction
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true

		iter := tx.NewIterator(opts)
		defer iter.Close()

		startKey := makeExtractionDocKey(documentID,
			time.Date(9999, 12, 31, 23, 59, 59, 999999999, time.UTC), core.ID(^uint64(0)))
		prefix := makePartialExtractionDocKey(documentID)

		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if len(key) < len(prefix) || slices.Compare(key[:len(prefix)], prefix) != 0 {
				break
			}

			var extractionID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				extractionID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			item, err := tx.Get(makeExtractionKey(extractionID))
			if err != nil {
				if err == badger.ErrKeyNotFound {
					continue
				}
				return err
			}
			return item.Value(func(val []byte) error {
				var unmarshalErr error
				result, unmarshalErr = storage.UnmarshalExtraction(val)
				return unmarshalErr
			})
		}
		return nil
	}, false)

	return result, err
}

// HasExtraction reports whether any extraction exists for a document.
func (r *ExtractionRepository) HasExtraction(ctx context.Context, documentID core.ID) (bool, error) {
	var found bool
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := makePartialExtractionDocKey(documentID)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false

		iter := tx.NewIterator(opts)
		defer iter.Close()

		iter.Rewind()
		found = iter.Valid()
		return nil
	}, false)
	return found, err
}
