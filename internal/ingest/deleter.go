package ingest

import (
	"context"

	"github.com/rs/zerolog/log"

	"text-indexer/internal/chunk"
	"text-indexer/internal/store"
)

// Deleter removes previously stored chunks, by explicit id set or by a
// metadata predicate evaluated by the backing store.
type Deleter struct {
	store store.Store
}

func NewDeleter(st store.Store) *Deleter {
	return &Deleter{store: st}
}

// ByIDs deletes the given ids, ignoring duplicates and ids that are not in
// the store, and returns the number actually removed.
func (d *Deleter) ByIDs(ctx context.Context, collection string, ids []string) (int, error) {
	seen := make(map[string]struct{}, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	n, err := d.store.DeleteByIDs(ctx, collection, unique)
	if err != nil {
		return 0, err
	}
	log.Info().Int("requested", len(unique)).Int("deleted", n).Msg("Deleted chunks by id")
	return n, nil
}

// BySource deletes every chunk whose source reference equals sourceKey.
func (d *Deleter) BySource(ctx context.Context, collection, sourceKey string) (int, error) {
	return d.Where(ctx, collection, map[string]string{chunk.MetaSource: sourceKey})
}

// Where deletes by an arbitrary metadata predicate. The predicate is handed
// to the backing store's own filter capability; a read immediately after may
// or may not observe the deletion, per the store's consistency model.
func (d *Deleter) Where(ctx context.Context, collection string, filter map[string]string) (int, error) {
	n, err := d.store.DeleteWhere(ctx, collection, filter)
	if err != nil {
		return 0, err
	}
	log.Info().Interface("filter", filter).Int("deleted", n).Msg("Deleted chunks by filter")
	return n, nil
}
