// Package splitter partitions text into bounded segments using a prioritized
// separator hierarchy, with a sliding overlap window between neighbors.
//
// Splitting is deterministic and side-effect free: the base spans of the
// produced segments concatenate back to the input byte for byte, and each
// segment after the first carries the tail of its predecessor's span as an
// overlap prefix.
package splitter

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"text-indexer/internal/chunk"
)

// ErrInvalidConfig is returned by New for an unusable size/overlap pair.
var ErrInvalidConfig = errors.New("invalid splitter configuration")

// DefaultSeparators is the priority order used for prose: paragraph breaks
// first, then lines, sentence enders, clause punctuation, spaces, and finally
// a hard character boundary (the empty separator).
func DefaultSeparators() []string {
	return []string{"\n\n", "\n", ". ", "! ", "? ", "; ", ", ", " ", ""}
}

// Splitter splits text into segments of at most maxSize bytes.
type Splitter struct {
	maxSize    int
	overlap    int
	separators []string
}

// New validates the configuration eagerly. overlap must be smaller than
// maxSize; an empty separator list means hard cuts only.
func New(maxSize, overlap int, separators []string) (*Splitter, error) {
	if maxSize <= 0 {
		return nil, fmt.Errorf("%w: max size must be positive, got %d", ErrInvalidConfig, maxSize)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("%w: overlap must be non-negative, got %d", ErrInvalidConfig, overlap)
	}
	if overlap >= maxSize {
		return nil, fmt.Errorf("%w: overlap %d must be smaller than max size %d", ErrInvalidConfig, overlap, maxSize)
	}
	seps := make([]string, len(separators))
	copy(seps, separators)
	return &Splitter{maxSize: maxSize, overlap: overlap, separators: seps}, nil
}

// MaxSize reports the configured segment size bound.
func (s *Splitter) MaxSize() int { return s.maxSize }

// Overlap reports the configured overlap window.
func (s *Splitter) Overlap() int { return s.overlap }

// Split partitions text into an ordered sequence of segments. Empty text
// yields no segments; text within the size bound yields exactly one. Each
// segment's Offset is the start of its base span in the input, and its
// Ordinal is its position in the returned sequence.
func (s *Splitter) Split(text string) []chunk.Segment {
	if text == "" {
		return nil
	}
	if len(text) <= s.maxSize {
		return []chunk.Segment{{Content: text}}
	}

	// Base spans are budgeted below maxSize so that prepending the overlap
	// prefix never pushes a segment over the bound.
	budget := s.maxSize - s.overlap
	pieces := splitRecursive(text, s.separators, budget)
	base := mergePieces(pieces, budget)

	segs := make([]chunk.Segment, len(base))
	offset := 0
	for i, span := range base {
		content := span
		if i > 0 {
			// Overlap reaches only into the immediately preceding span,
			// never two separators back.
			prev := base[i-1]
			content = prev[overlapStart(prev, s.overlap):] + span
		}
		segs[i] = chunk.Segment{Content: content, Ordinal: i, Offset: offset}
		offset += len(span)
	}
	return segs
}

// splitRecursive cuts text into pieces no longer than budget, trying each
// separator in priority order and recursing with the remaining separators on
// any piece that is still too long. Separators stay attached to the piece
// they terminate so that the pieces concatenate back to the input.
func splitRecursive(text string, seps []string, budget int) []string {
	if len(text) <= budget {
		return []string{text}
	}
	if len(seps) == 0 {
		return hardCut(text, budget)
	}
	sep, rest := seps[0], seps[1:]
	if sep == "" {
		return hardCut(text, budget)
	}
	parts := splitAfter(text, sep)
	if len(parts) == 1 {
		return splitRecursive(text, rest, budget)
	}
	var out []string
	for _, p := range parts {
		if len(p) <= budget {
			out = append(out, p)
		} else {
			out = append(out, splitRecursive(p, rest, budget)...)
		}
	}
	return out
}

// splitAfter is strings.SplitAfter without the empty trailing piece that
// appears when text ends with the separator.
func splitAfter(text, sep string) []string {
	parts := strings.SplitAfter(text, sep)
	if n := len(parts); n > 1 && parts[n-1] == "" {
		parts = parts[:n-1]
	}
	return parts
}

// overlapStart returns the index in prev where the overlap window begins,
// advanced to the next rune start so the prefix is always valid UTF-8. The
// window shrinks when prev is shorter than the overlap.
func overlapStart(prev string, overlap int) int {
	start := len(prev) - overlap
	if start < 0 {
		start = 0
	}
	for start < len(prev) && !utf8.RuneStart(prev[start]) {
		start++
	}
	return start
}

// hardCut slices text at the budget boundary, backing off to the nearest
// rune start so multi-byte characters are never torn apart.
func hardCut(text string, budget int) []string {
	var out []string
	for len(text) > budget {
		cut := budget
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		if cut == 0 {
			cut = budget
		}
		out = append(out, text[:cut])
		text = text[cut:]
	}
	if text != "" {
		out = append(out, text)
	}
	return out
}

// mergePieces greedily joins adjacent pieces while the running length stays
// within the budget. Every input piece is already within the budget, so every
// output span is too.
func mergePieces(pieces []string, budget int) []string {
	var out []string
	var cur strings.Builder
	for _, p := range pieces {
		if cur.Len() > 0 && cur.Len()+len(p) > budget {
			out = append(out, cur.String())
			cur.Reset()
		}
		cur.WriteString(p)
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}
