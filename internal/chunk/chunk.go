package chunk

// Source is the origin of a piece of ingested text: a URL, a file path or a
// caller-supplied label, plus free-form attributes captured at retrieval time.
type Source struct {
	Key   string
	Attrs map[string]string
}

// Segment is one bounded slice of a source's text, produced by the splitter.
// Ordinal is the zero-based position in the split sequence and is part of the
// chunk's identity. Offset is the start of the segment's base span in the
// original text (overlap prefix excluded).
type Segment struct {
	Content string
	Ordinal int
	Offset  int
}

// Record is the unit written to the backing store.
type Record struct {
	ID       string
	Content  string
	Metadata map[string]string
}
