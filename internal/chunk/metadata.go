package chunk

import (
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// Reserved metadata keys. These always win over source attributes and
// caller-supplied extras.
const (
	MetaSource     = "source"
	MetaChunkIndex = "chunk_index"
	MetaChunkSize  = "chunk_size"
	MetaIndexedAt  = "indexed_at"
)

var reservedKeys = map[string]struct{}{
	MetaSource:     {},
	MetaChunkIndex: {},
	MetaChunkSize:  {},
	MetaIndexedAt:  {},
}

// ComposeMetadata builds the attribute record stored alongside a segment.
// Source attributes are copied in first, then extras; a key colliding with a
// reserved field is dropped with a warning. indexed_at records wall-clock
// composition time and is the only non-deterministic field.
func ComposeMetadata(src Source, seg Segment, extra map[string]string) map[string]string {
	md := make(map[string]string, len(src.Attrs)+len(extra)+4)
	for k, v := range src.Attrs {
		if _, ok := reservedKeys[k]; ok {
			log.Warn().Str("key", k).Str("source", src.Key).Msg("source attribute shadows reserved metadata key, dropping")
			continue
		}
		md[k] = v
	}
	for k, v := range extra {
		if _, ok := reservedKeys[k]; ok {
			log.Warn().Str("key", k).Str("source", src.Key).Msg("extra metadata shadows reserved key, dropping")
			continue
		}
		md[k] = v
	}
	md[MetaSource] = src.Key
	md[MetaChunkIndex] = strconv.Itoa(seg.Ordinal)
	md[MetaChunkSize] = strconv.Itoa(len(seg.Content))
	md[MetaIndexedAt] = time.Now().UTC().Format(time.RFC3339)
	return md
}
