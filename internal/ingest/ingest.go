// Package ingest drives the chunk pipeline: split a source's text, derive
// deterministic chunk ids, compose metadata, and upsert the records into the
// backing store with per-record outcomes.
package ingest

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"text-indexer/internal/chunk"
	"text-indexer/internal/splitter"
	"text-indexer/internal/store"
)

// Status is the per-record outcome of an upsert batch.
type Status string

const (
	StatusWritten Status = "written"
	StatusSkipped Status = "skipped-unchanged"
	StatusFailed  Status = "failed"
)

// Outcome reports what happened to one chunk record.
type Outcome struct {
	ID      string
	Ordinal int
	Status  Status
	Err     error
}

// Report summarizes one ingestion run for a single source.
type Report struct {
	RunID    string
	Source   string
	Chunks   int
	Written  int
	Skipped  int
	Failed   int
	Outcomes []Outcome
	Took     time.Duration
}

// Indexer coordinates splitting and batched upserts. It holds no store
// state of its own; the store handle is owned by the caller.
type Indexer struct {
	splitter *splitter.Splitter
	store    store.Store
	workers  int
}

func NewIndexer(sp *splitter.Splitter, st store.Store) *Indexer {
	return &Indexer{splitter: sp, store: st, workers: runtime.NumCPU()}
}

// IndexText splits text, derives ids and metadata, and upserts the resulting
// records. Records are written concurrently; one record's failure never
// aborts its siblings. Re-ingesting is idempotent: unchanged content hashes
// to the same ids and is skipped, changed content hashes to new ids and is
// written alongside the old rows.
func (ix *Indexer) IndexText(ctx context.Context, collection string, src chunk.Source, text string, extra map[string]string) (*Report, error) {
	if src.Key == "" {
		return nil, fmt.Errorf("source key must not be empty")
	}

	start := time.Now()
	segs := ix.splitter.Split(text)
	recs := make([]chunk.Record, len(segs))
	for i, seg := range segs {
		recs[i] = chunk.Record{
			ID:       chunk.ID(src.Key, seg.Content, seg.Ordinal),
			Content:  seg.Content,
			Metadata: chunk.ComposeMetadata(src, seg, extra),
		}
	}

	rep := &Report{
		RunID:    uuid.NewString(),
		Source:   src.Key,
		Chunks:   len(recs),
		Outcomes: make([]Outcome, len(recs)),
	}

	// Plain errgroup, not WithContext: a failed record must not cancel the
	// rest of the batch. Errors travel in the outcomes instead.
	var g errgroup.Group
	g.SetLimit(ix.workers)
	for i := range recs {
		i := i
		g.Go(func() error {
			rep.Outcomes[i] = ix.upsertOne(ctx, collection, recs[i], segs[i].Ordinal)
			return nil
		})
	}
	_ = g.Wait()

	for _, o := range rep.Outcomes {
		switch o.Status {
		case StatusWritten:
			rep.Written++
		case StatusSkipped:
			rep.Skipped++
		case StatusFailed:
			rep.Failed++
		}
	}
	rep.Took = time.Since(start)

	log.Info().
		Str("run_id", rep.RunID).
		Str("source", src.Key).
		Int("chunks", rep.Chunks).
		Int("written", rep.Written).
		Int("skipped", rep.Skipped).
		Int("failed", rep.Failed).
		Dur("took", rep.Took).
		Msg("Ingested source")
	return rep, nil
}

// upsertOne writes a single record. If the store already holds the same id
// with identical content the write is short-circuited; that is an
// optimization only, both paths leave the store in the same state.
func (ix *Indexer) upsertOne(ctx context.Context, collection string, rec chunk.Record, ordinal int) Outcome {
	existing, ok, err := ix.store.Get(ctx, collection, rec.ID)
	if err == nil && ok && existing.Content == rec.Content {
		return Outcome{ID: rec.ID, Ordinal: ordinal, Status: StatusSkipped}
	}
	// A failed lookup is not fatal: the upsert below decides.
	if err := ix.store.Upsert(ctx, collection, rec); err != nil {
		log.Error().Err(err).Str("id", rec.ID).Int("ordinal", ordinal).Msg("Failed to upsert chunk")
		return Outcome{ID: rec.ID, Ordinal: ordinal, Status: StatusFailed, Err: store.ClassifyErr(err)}
	}
	return Outcome{ID: rec.ID, Ordinal: ordinal, Status: StatusWritten}
}
