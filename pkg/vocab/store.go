package vocab

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aleksaelezovic/curie/internal/encoding"
	"github.com/aleksaelezovic/curie/pkg/store"
)

// StoreSource keeps vocabulary documents in a key-value storage
type StoreSource struct {
	storage store.Storage
	encoder *encoding.TermEncoder
}

// NewStoreSource wraps storage; the caller keeps ownership and closes it
func NewStoreSource(storage store.Storage) *StoreSource {
	return &StoreSource{
		storage: storage,
		encoder: encoding.NewTermEncoder(),
	}
}

func (s *StoreSource) Fetch(ctx context.Context, prefix string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	txn, err := s.storage.Begin(false)
	if err != nil {
		return nil, err
	}
	defer txn.Rollback()

	data, err := txn.Get(store.TableDocuments, []byte(prefix))
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("prefix %q: %w", prefix, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read document for %q: %w", prefix, err)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Put stores the document for prefix. It reports false when an identical
// document was already stored.
func (s *StoreSource) Put(prefix string, data []byte) (bool, error) {
	txn, err := s.storage.Begin(true)
	if err != nil {
		return false, err
	}
	defer txn.Rollback()

	digest := []byte(s.encoder.Digest(data))
	existing, err := txn.Get(store.TableDigests, []byte(prefix))
	if err == nil && bytes.Equal(existing, digest) {
		return false, nil
	}
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return false, err
	}

	if err := txn.Set(store.TableDocuments, []byte(prefix), data); err != nil {
		return false, err
	}
	if err := txn.Set(store.TableDigests, []byte(prefix), digest); err != nil {
		return false, err
	}
	if err := txn.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit document for %q: %w", prefix, err)
	}
	return true, nil
}

// Prefixes lists the prefixes that have a stored document
func (s *StoreSource) Prefixes() ([]string, error) {
	txn, err := s.storage.Begin(false)
	if err != nil {
		return nil, err
	}
	defer txn.Rollback()

	it, err := txn.Scan(store.TableDocuments, nil)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var prefixes []string
	for it.Next() {
		prefixes = append(prefixes, string(it.Key()))
	}
	return prefixes, nil
}
