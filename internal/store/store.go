// Package store defines the boundary to the backing vector store. Embedding
// and similarity ranking live behind this interface; the core only hands over
// chunk records keyed by their deterministic ids.
package store

import (
	"context"
	"errors"

	"text-indexer/internal/chunk"
)

// ErrTimeout marks a store operation that exceeded its caller-supplied
// deadline. Callers can test for it with errors.Is to decide on retries.
var ErrTimeout = errors.New("store operation timed out")

// Result is one ranked hit from a similarity query.
type Result struct {
	ID         string
	Content    string
	Metadata   map[string]string
	Similarity float32
}

// Store is the contract every backend adapter implements.
//
// Upsert is replace-or-insert keyed by rec.ID and is the atomicity unit: a
// failed write of one record never corrupts another record's state. Deletes
// with missing ids are not errors; the returned counts reflect what the
// backend actually removed, under whatever consistency model it offers.
type Store interface {
	Upsert(ctx context.Context, collection string, rec chunk.Record) error
	Get(ctx context.Context, collection, id string) (chunk.Record, bool, error)
	DeleteByIDs(ctx context.Context, collection string, ids []string) (int, error)
	DeleteWhere(ctx context.Context, collection string, filter map[string]string) (int, error)
	Query(ctx context.Context, collection, queryText string, k int, filter map[string]string) ([]Result, error)
	Count(ctx context.Context, collection string) (int, error)
}

// ClassifyErr wraps deadline and cancellation errors with ErrTimeout so the
// ingest layer can report failed(timeout) distinctly from other store errors.
func ClassifyErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.Join(ErrTimeout, err)
	}
	return err
}
