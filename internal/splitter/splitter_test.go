package splitter

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"text-indexer/internal/chunk"
)

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cases := []struct {
		name    string
		maxSize int
		overlap int
	}{
		{"zero max size", 0, 0},
		{"negative max size", -5, 0},
		{"negative overlap", 100, -1},
		{"overlap equals max size", 100, 100},
		{"overlap exceeds max size", 100, 150},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.maxSize, tc.overlap, DefaultSeparators())
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("New(%d, %d) error = %v, want ErrInvalidConfig", tc.maxSize, tc.overlap, err)
			}
		})
	}
}

func TestSplit_EmptyText(t *testing.T) {
	s := mustNew(t, 100, 20, DefaultSeparators())
	if segs := s.Split(""); segs != nil {
		t.Fatalf("Split(\"\") = %v, want nil", segs)
	}
}

func TestSplit_ShortTextSingleSegment(t *testing.T) {
	s := mustNew(t, 100, 20, DefaultSeparators())
	text := "short text well under the limit"
	segs := s.Split(text)
	if len(segs) != 1 {
		t.Fatalf("got %d segments, want 1", len(segs))
	}
	if segs[0].Content != text || segs[0].Ordinal != 0 || segs[0].Offset != 0 {
		t.Fatalf("unexpected segment: %+v", segs[0])
	}
}

func TestSplit_SentenceScenario(t *testing.T) {
	s := mustNew(t, 4, 0, []string{". "})
	segs := s.Split("A. B. C.")

	var got []string
	for _, seg := range segs {
		got = append(got, strings.TrimSpace(seg.Content))
	}
	want := []string{"A.", "B.", "C."}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("segment %d = %q, want %q", i, got[i], want[i])
		}
		if segs[i].Ordinal != i {
			t.Fatalf("segment %d ordinal = %d", i, segs[i].Ordinal)
		}
	}
}

func TestSplit_Deterministic(t *testing.T) {
	s := mustNew(t, 50, 10, DefaultSeparators())
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 20)
	a := s.Split(text)
	b := s.Split(text)
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("segment %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestSplit_Properties(t *testing.T) {
	texts := []string{
		"one tiny text",
		strings.Repeat("Paragraph one.\n\nParagraph two with more words in it.\n\n", 10),
		strings.Repeat("Sentence alpha. Sentence beta! Sentence gamma? Clause one; clause two, and words. ", 15),
		strings.Repeat("x", 997),
		strings.Repeat("wordswithoutanyseparatorsatall", 40),
		"Вопросы и ответы о векторных базах данных. " + strings.Repeat("Семантический поиск ищет по смыслу. ", 25),
		strings.Repeat("日本語のテキストを分割する。改行も含む。\n", 30),
	}
	configs := []struct{ maxSize, overlap int }{
		{100, 0},
		{100, 20},
		{64, 30},
		{1000, 200},
		{17, 5},
	}

	for _, cfg := range configs {
		s := mustNew(t, cfg.maxSize, cfg.overlap, DefaultSeparators())
		for ti, text := range texts {
			segs := s.Split(text)

			for i, seg := range segs {
				if len(seg.Content) > cfg.maxSize {
					t.Errorf("cfg=%+v text=%d: segment %d length %d exceeds max %d",
						cfg, ti, i, len(seg.Content), cfg.maxSize)
				}
				if seg.Ordinal != i {
					t.Errorf("cfg=%+v text=%d: segment %d has ordinal %d", cfg, ti, i, seg.Ordinal)
				}
				if !utf8.ValidString(seg.Content) {
					t.Errorf("cfg=%+v text=%d: segment %d is not valid UTF-8", cfg, ti, i)
				}
			}

			if got := reassemble(segs, cfg.overlap); got != text {
				t.Errorf("cfg=%+v text=%d: reassembly mismatch (got %d bytes, want %d)",
					cfg, ti, len(got), len(text))
			}
		}
	}
}

func TestSplit_HardCutOnly(t *testing.T) {
	s := mustNew(t, 10, 0, nil)
	text := strings.Repeat("abcdefghij", 5)
	segs := s.Split(text)
	if len(segs) != 5 {
		t.Fatalf("got %d segments, want 5", len(segs))
	}
	for _, seg := range segs {
		if len(seg.Content) != 10 {
			t.Fatalf("segment length %d, want 10", len(seg.Content))
		}
	}
	if reassemble(segs, 0) != text {
		t.Fatal("reassembly mismatch")
	}
}

func TestSplit_HardCutKeepsRunesIntact(t *testing.T) {
	s := mustNew(t, 10, 0, nil)
	text := strings.Repeat("日本語", 20) // 9 bytes per repetition, forces misaligned cuts
	segs := s.Split(text)
	for i, seg := range segs {
		if !utf8.ValidString(seg.Content) {
			t.Fatalf("segment %d is not valid UTF-8: %q", i, seg.Content)
		}
	}
	if reassemble(segs, 0) != text {
		t.Fatal("reassembly mismatch")
	}
}

func TestSplit_OverlapPrefixMatchesPredecessor(t *testing.T) {
	overlap := 12
	s := mustNew(t, 40, overlap, DefaultSeparators())
	text := strings.Repeat("Alpha beta gamma delta epsilon zeta. ", 12)
	segs := s.Split(text)
	if len(segs) < 2 {
		t.Fatalf("expected multiple segments, got %d", len(segs))
	}

	prevBase := segs[0].Content
	for i := 1; i < len(segs); i++ {
		k := prefixLen(prevBase, overlap)
		wantPrefix := prevBase[len(prevBase)-k:]
		if !strings.HasPrefix(segs[i].Content, wantPrefix) {
			t.Fatalf("segment %d does not start with the tail of its predecessor", i)
		}
		prevBase = segs[i].Content[k:]
	}
}

func TestSplit_OffsetsAreBaseSpanStarts(t *testing.T) {
	s := mustNew(t, 30, 8, DefaultSeparators())
	text := strings.Repeat("Offsets must line up exactly. ", 10)
	segs := s.Split(text)

	offset := 0
	prevBase := ""
	for i, seg := range segs {
		if seg.Offset != offset {
			t.Fatalf("segment %d offset = %d, want %d", i, seg.Offset, offset)
		}
		base := seg.Content
		if i > 0 {
			base = seg.Content[prefixLen(prevBase, 8):]
		}
		offset += len(base)
		prevBase = base
	}
	if offset != len(text) {
		t.Fatalf("base spans cover %d bytes, want %d", offset, len(text))
	}
}

// reassemble rebuilds the original text by dropping each non-first segment's
// overlap prefix.
func reassemble(segs []chunk.Segment, overlap int) string {
	var sb strings.Builder
	prevBase := ""
	for i, seg := range segs {
		base := seg.Content
		if i > 0 {
			base = seg.Content[prefixLen(prevBase, overlap):]
		}
		sb.WriteString(base)
		prevBase = base
	}
	return sb.String()
}

// prefixLen is the length of the overlap prefix a segment carries when its
// predecessor's base span was prevBase: at most overlap bytes, shrunk to the
// base span and aligned forward to a rune boundary.
func prefixLen(prevBase string, overlap int) int {
	start := len(prevBase) - overlap
	if start < 0 {
		start = 0
	}
	for start < len(prevBase) && !utf8.RuneStart(prevBase[start]) {
		start++
	}
	return len(prevBase) - start
}

func mustNew(t *testing.T, maxSize, overlap int, seps []string) *Splitter {
	t.Helper()
	s, err := New(maxSize, overlap, seps)
	if err != nil {
		t.Fatalf("New(%d, %d): %v", maxSize, overlap, err)
	}
	return s
}
