package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/paperbridge/core"
	"github.com/poiesic/paperbridge/storage"
)

// DocumentRepository implements storage.DocumentRepository for BadgerDB.
type DocumentRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.DocumentRepository = (*DocumentRepository)(nil)

// NewDocumentRepository creates a new DocumentRepository.
func NewDocumentRepository(backend *Backend) (*DocumentRepository, error) {
	idSeq, err := backend.GetSequence(docIDSeq)
	if err != nil {
		return nil, err
	}

	return &DocumentRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *DocumentRepository) Close() error {
	return r.idSeq.Release()
}

// AddDocument persists a document. A zero ID is assigned from sequence.
func (r *DocumentRepository) AddDocument(ctx context.Context, doc *core.Document) (*core.Document, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		if doc.Id == 0 {
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
			doc.Id = core.ID(nextID)
		}

		if doc.CreatedAt.IsZero() {
			doc.CreatedAt = time.Now().UTC()
		}

		key := makeDocumentKey(doc.Id)
		if err := tx.Set(key, storage.MarshalDocument(doc)); err != nil {
			return err
		}

		// Update checksum index
		if doc.ChecksumSHA256 != "" {
			checksumKey := makeDocChecksumKey(doc.ChecksumSHA256)
			if err := tx.Set(checksumKey, storage.MarshalID(doc.Id)); err != nil {
				return err
			}
		}

		return tx.Commit()
	}, true)

	return doc, err
}

// GetDocument retrieves a document by ID.
// Returns nil, nil if the document does not exist.
func (r *DocumentRepository) GetDocument(ctx context.Context, id core.ID) (*core.Document, error) {
	var result *core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeDocumentKey(id)
		var err error
		result, err = readDocument(tx, key)
		return err
	}, false)
	return result, err
}

// GetDocumentByChecksum finds a document by its content checksum.
// Returns nil, nil if no document with that checksum exists.
func (r *DocumentRepository) GetDocumentByChecksum(ctx context.Context, checksum string) (*core.Document, error) {
	var result *core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeDocChecksumKey(checksum))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return nil
			}
			return err
		}

		var docID core.ID
		if err := item.Value(func(val []byte) error {
			var err error
			docID, err = storage.UnmarshalID(val)
			return err
		}); err != nil {
			return err
		}

		result, err = readDocument(tx, makeDocumentKey(docID))
		return err
	}, false)
	return result, err
}

// AddPages persists page text for a document.
// Re-adding a page number overwrites the previous text.
func (r *DocumentRepository) AddPages(ctx context.Context, pages ...*core.DocumentPage) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, page := range pages {
			key := makePageKey(page.DocumentId, page.Number)
			if err := tx.Set(key, storage.MarshalDocumentPage(page)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetPages retrieves all pages of a document ordered by page number.
func (r *DocumentRepository) GetPages(ctx context.Context, documentID core.ID) ([]*core.DocumentPage, error) {
	var results []*core.DocumentPage
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := makePartialPageKey(documentID)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		iter := tx.NewIterator(opts)
		defer iter.Close()

		// Page numbers are BigEndian in the key, so iteration order is page order.
		for iter.Rewind(); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if len(key) < len(prefix) || slices.Compare(key[:len(prefix)], prefix) != 0 {
				break
			}

			var page *core.DocumentPage
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				page, err = storage.UnmarshalDocumentPage(val)
				return err
			}); err != nil {
				return err
			}
			results = append(results, page)
		}
		return nil
	}, false)

	return results, err
}

// readDocument reads a document record from the transaction.
func readDocument(tx *badger.Txn, key []byte) (*core.Document, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var doc *core.Document
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		doc, unmarshalErr = storage.UnmarshalDocument(val)
		return unmarshalErr
	})
	return doc, err
}
