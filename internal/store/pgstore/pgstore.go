// Package pgstore backs the store interface with Postgres + pgvector through
// bun. Unlike chromem, Postgres does not embed for us, so the adapter owns a
// langchaingo embedder and vectorizes on write and on query.
package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"text-indexer/internal/chunk"
	"text-indexer/internal/store"
)

// ChunkRow is one persisted chunk. (collection, id) is the upsert key.
type ChunkRow struct {
	bun.BaseModel `bun:"table:chunks,alias:c"`
	Collection    string            `bun:"collection,pk"`
	ID            string            `bun:"id,pk"`
	Content       string            `bun:"content,notnull"`
	Metadata      map[string]string `bun:"metadata,type:jsonb"`
	Embedding     []float32         `bun:"embedding,type:vector(768)"`
	Similarity    float32           `bun:"similarity,scanonly"`
}

// Connect opens the underlying Postgres connection.
func Connect(dsn, password string) *sql.DB {
	return sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn), pgdriver.WithPassword(password)))
}

// NewDB wraps the connection with bun and, when debug is set, query logging.
func NewDB(sqldb *sql.DB, debug bool) *bun.DB {
	db := bun.NewDB(sqldb, pgdialect.New())
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db
}

// Store implements store.Store on a bun-managed Postgres database.
type Store struct {
	db       *bun.DB
	embedder embeddings.Embedder
}

var _ store.Store = (*Store)(nil)

func New(db *bun.DB, embedder embeddings.Embedder) *Store {
	return &Store{db: db, embedder: embedder}
}

// Init creates the vector extension and the chunks table if needed.
func (s *Store) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("failed to create vector extension: %w", err)
	}
	if _, err := s.db.NewCreateTable().Model((*ChunkRow)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("failed to create chunks table: %w", err)
	}
	return nil
}

func (s *Store) Upsert(ctx context.Context, collection string, rec chunk.Record) error {
	vec, err := s.embedder.EmbedQuery(ctx, rec.Content)
	if err != nil {
		return store.ClassifyErr(fmt.Errorf("failed to embed chunk %s: %w", rec.ID, err))
	}
	row := &ChunkRow{
		Collection: collection,
		ID:         rec.ID,
		Content:    rec.Content,
		Metadata:   rec.Metadata,
		Embedding:  vec,
	}
	_, err = s.db.NewInsert().
		Model(row).
		On("CONFLICT (collection, id) DO UPDATE").
		Set("content = EXCLUDED.content").
		Set("metadata = EXCLUDED.metadata").
		Set("embedding = EXCLUDED.embedding").
		Exec(ctx)
	if err != nil {
		return store.ClassifyErr(fmt.Errorf("failed to upsert chunk %s: %w", rec.ID, err))
	}
	return nil
}

func (s *Store) Get(ctx context.Context, collection, id string) (chunk.Record, bool, error) {
	var row ChunkRow
	err := s.db.NewSelect().
		Model(&row).
		Column("collection", "id", "content", "metadata").
		Where("collection = ?", collection).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return chunk.Record{}, false, nil
		}
		return chunk.Record{}, false, store.ClassifyErr(fmt.Errorf("failed to get chunk %s: %w", id, err))
	}
	return chunk.Record{ID: row.ID, Content: row.Content, Metadata: row.Metadata}, true, nil
}

func (s *Store) DeleteByIDs(ctx context.Context, collection string, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := s.db.NewDelete().
		Model((*ChunkRow)(nil)).
		Where("collection = ?", collection).
		Where("id IN (?)", bun.In(ids)).
		Exec(ctx)
	if err != nil {
		return 0, store.ClassifyErr(fmt.Errorf("failed to delete chunks: %w", err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (s *Store) DeleteWhere(ctx context.Context, collection string, filter map[string]string) (int, error) {
	q := s.db.NewDelete().
		Model((*ChunkRow)(nil)).
		Where("collection = ?", collection)
	for k, v := range filter {
		q = q.Where("metadata->>? = ?", k, v)
	}
	res, err := q.Exec(ctx)
	if err != nil {
		return 0, store.ClassifyErr(fmt.Errorf("failed to delete by filter: %w", err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (s *Store) Query(ctx context.Context, collection, queryText string, k int, filter map[string]string) ([]store.Result, error) {
	vec, err := s.embedder.EmbedQuery(ctx, queryText)
	if err != nil {
		return nil, store.ClassifyErr(fmt.Errorf("failed to embed query: %w", err))
	}
	var rows []ChunkRow
	q := s.db.NewSelect().
		Model(&rows).
		Column("collection", "id", "content", "metadata").
		ColumnExpr("1 - (embedding <=> ?) AS similarity", vec).
		Where("collection = ?", collection)
	for fk, fv := range filter {
		q = q.Where("metadata->>? = ?", fk, fv)
	}
	err = q.OrderExpr("embedding <-> ?", vec).
		Limit(k).
		Scan(ctx)
	if err != nil {
		return nil, store.ClassifyErr(fmt.Errorf("failed to query chunks: %w", err))
	}
	out := make([]store.Result, len(rows))
	for i, row := range rows {
		out[i] = store.Result{
			ID:         row.ID,
			Content:    row.Content,
			Metadata:   row.Metadata,
			Similarity: row.Similarity,
		}
	}
	return out, nil
}

func (s *Store) Count(ctx context.Context, collection string) (int, error) {
	n, err := s.db.NewSelect().
		Model((*ChunkRow)(nil)).
		Where("collection = ?", collection).
		Count(ctx)
	if err != nil {
		return 0, store.ClassifyErr(fmt.Errorf("failed to count chunks: %w", err))
	}
	return n, nil
}

// DropChunks removes every chunk in the collection's table.
func (s *Store) DropChunks(ctx context.Context) error {
	_, err := s.db.NewDropTable().Model((*ChunkRow)(nil)).IfExists().Exec(ctx)
	return err
}
