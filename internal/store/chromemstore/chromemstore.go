// Package chromemstore adapts the embedded chromem-go vector database to the
// store.Store interface. chromem computes embeddings itself through the
// EmbeddingFunc handed to each collection.
package chromemstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"

	"text-indexer/internal/chunk"
	"text-indexer/internal/store"
)

const compress = false

// Manager encapsulates the chromem-go database operations.
type Manager struct {
	db        *chromem.DB
	embedFunc chromem.EmbeddingFunc

	mu          sync.Mutex
	collections map[string]*chromem.Collection
}

var _ store.Store = (*Manager)(nil)

// New opens an in-memory or persistent database. embedFunc may be nil, in
// which case chromem falls back to its default (OpenAI) embedding function.
func New(dbPath string, inMemory bool, embedFunc chromem.EmbeddingFunc) (*Manager, error) {
	var db *chromem.DB
	var err error
	if inMemory {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(dbPath, compress)
		if err != nil {
			return nil, fmt.Errorf("failed to create database: %w", err)
		}
	}
	return &Manager{
		db:          db,
		embedFunc:   embedFunc,
		collections: make(map[string]*chromem.Collection),
	}, nil
}

// collection returns a cached handle, creating the collection on first use.
func (m *Manager) collection(name string) (*chromem.Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.collections[name]; ok {
		return c, nil
	}
	c, err := m.db.GetOrCreateCollection(name, nil, m.embedFunc)
	if err != nil {
		return nil, fmt.Errorf("failed to create/get collection: %w", err)
	}
	m.collections[name] = c
	return c, nil
}

// Upsert replaces or inserts a single record keyed by its id. chromem keys
// documents by ID, so adding under an existing id overwrites in place.
func (m *Manager) Upsert(ctx context.Context, collection string, rec chunk.Record) error {
	c, err := m.collection(collection)
	if err != nil {
		return err
	}
	doc := chromem.Document{
		ID:       rec.ID,
		Content:  rec.Content,
		Metadata: rec.Metadata,
	}
	if err := c.AddDocument(ctx, doc); err != nil {
		return store.ClassifyErr(fmt.Errorf("failed to add document %s: %w", rec.ID, err))
	}
	return nil
}

// Get fetches a record by id. chromem's GetByID only errors when the id is
// absent, which maps to found=false here.
func (m *Manager) Get(ctx context.Context, collection, id string) (chunk.Record, bool, error) {
	c, err := m.collection(collection)
	if err != nil {
		return chunk.Record{}, false, err
	}
	doc, err := c.GetByID(ctx, id)
	if err != nil {
		return chunk.Record{}, false, nil
	}
	return chunk.Record{ID: doc.ID, Content: doc.Content, Metadata: doc.Metadata}, true, nil
}

// DeleteByIDs removes the listed ids and returns how many actually existed.
func (m *Manager) DeleteByIDs(ctx context.Context, collection string, ids []string) (int, error) {
	c, err := m.collection(collection)
	if err != nil {
		return 0, err
	}
	existing := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := c.GetByID(ctx, id); err == nil {
			existing = append(existing, id)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	if err := c.Delete(ctx, nil, nil, existing...); err != nil {
		return 0, store.ClassifyErr(fmt.Errorf("failed to delete documents: %w", err))
	}
	return len(existing), nil
}

// DeleteWhere removes every record whose metadata matches the filter. The
// count is derived from the collection size before and after.
func (m *Manager) DeleteWhere(ctx context.Context, collection string, filter map[string]string) (int, error) {
	c, err := m.collection(collection)
	if err != nil {
		return 0, err
	}
	before := c.Count()
	if err := c.Delete(ctx, filter, nil); err != nil {
		return 0, store.ClassifyErr(fmt.Errorf("failed to delete by filter: %w", err))
	}
	return before - c.Count(), nil
}

// Query runs a similarity search. chromem rejects asking for more results
// than the collection holds, so k is clamped.
func (m *Manager) Query(ctx context.Context, collection, queryText string, k int, filter map[string]string) ([]store.Result, error) {
	if queryText == "" {
		return nil, fmt.Errorf("query text must not be empty")
	}
	c, err := m.collection(collection)
	if err != nil {
		return nil, err
	}
	count := c.Count()
	if count == 0 {
		return nil, nil
	}
	if k > count {
		log.Debug().Int("k", k).Int("count", count).Msg("clamping result count to collection size")
		k = count
	}
	results, err := c.Query(ctx, queryText, k, filter, nil)
	if err != nil {
		return nil, store.ClassifyErr(fmt.Errorf("failed to query by similarity: %w", err))
	}
	out := make([]store.Result, len(results))
	for i, r := range results {
		out[i] = store.Result{
			ID:         r.ID,
			Content:    r.Content,
			Metadata:   r.Metadata,
			Similarity: r.Similarity,
		}
	}
	return out, nil
}

// Count reports the number of records in the collection.
func (m *Manager) Count(ctx context.Context, collection string) (int, error) {
	c, err := m.collection(collection)
	if err != nil {
		return 0, err
	}
	return c.Count(), nil
}

// DropCollection removes an entire collection from the database.
func (m *Manager) DropCollection(name string) error {
	m.mu.Lock()
	delete(m.collections, name)
	m.mu.Unlock()
	if err := m.db.DeleteCollection(name); err != nil {
		return fmt.Errorf("failed to drop collection: %w", err)
	}
	return nil
}
