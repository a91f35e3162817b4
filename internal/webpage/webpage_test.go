package webpage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const samplePage = `<!DOCTYPE html>
<html lang="en">
<head>
<title>  Test Page  </title>
<meta name="description" content="A page about vector stores">
<meta name="keywords" content="vectors, search">
<meta name="author" content="Jane Doe">
<script>var tracked = true;</script>
<style>body { color: red; }</style>
</head>
<body>
<nav>Home | About</nav>
<header>Site header</header>
<p>First    paragraph about semantic search.</p>
<p>Second paragraph!!!</p>
<aside>Sidebar junk</aside>
<footer>Copyright notice</footer>
</body>
</html>`

func TestText_StripsChromeAndScripts(t *testing.T) {
	text, err := Text(samplePage)
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	for _, banned := range []string{"tracked", "color: red", "Home | About", "Site header", "Sidebar junk", "Copyright notice"} {
		if strings.Contains(text, banned) {
			t.Errorf("extracted text contains %q", banned)
		}
	}
	if !strings.Contains(text, "First paragraph about semantic search.") {
		t.Errorf("body text missing or whitespace not collapsed: %q", text)
	}
	if !strings.Contains(text, "Second paragraph!") || strings.Contains(text, "!!!") {
		t.Errorf("repeated punctuation not collapsed: %q", text)
	}
}

func TestMeta_ExtractsPageMetadata(t *testing.T) {
	md := Meta(samplePage, "https://example.com/page")

	if md["url"] != "https://example.com/page" {
		t.Errorf("url = %q", md["url"])
	}
	if md["title"] != "Test Page" {
		t.Errorf("title = %q", md["title"])
	}
	if md["description"] != "A page about vector stores" {
		t.Errorf("description = %q", md["description"])
	}
	if md["keywords"] != "vectors, search" {
		t.Errorf("keywords = %q", md["keywords"])
	}
	if md["author"] != "Jane Doe" {
		t.Errorf("author = %q", md["author"])
	}
	if md["language"] != "en" {
		t.Errorf("language = %q", md["language"])
	}
	if _, err := time.Parse(time.RFC3339, md["retrieved_at"]); err != nil {
		t.Errorf("retrieved_at %q: %v", md["retrieved_at"], err)
	}
}

func TestMeta_OpenGraphDescriptionFallback(t *testing.T) {
	page := `<html><head><meta property="og:description" content="OG description"></head><body></body></html>`
	md := Meta(page, "https://example.com")
	if md["description"] != "OG description" {
		t.Errorf("description = %q", md["description"])
	}
}

func TestCleanText(t *testing.T) {
	cases := []struct{ in, want string }{
		{"", ""},
		{"  a \n\t b  ", "a b"},
		{"wait..... what", "wait... what"},
		{"no!!! really??", "no! really?"},
	}
	for _, tc := range cases {
		if got := CleanText(tc.in); got != tc.want {
			t.Errorf("CleanText(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFetch_RejectsInvalidURL(t *testing.T) {
	e := NewExtractor(time.Second, "")
	for _, bad := range []string{"", "not a url", "/relative/path", "example.com"} {
		if _, _, err := e.Fetch(context.Background(), bad); err == nil {
			t.Errorf("Fetch(%q) succeeded, want error", bad)
		}
	}
}

func TestFetch_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	e := NewExtractor(time.Second, "")
	_, status, err := e.Fetch(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected error for 404")
	}
	if status != http.StatusNotFound {
		t.Fatalf("status = %d", status)
	}
}

func TestExtract_EndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua == "" {
			t.Error("no User-Agent header sent")
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	e := NewExtractor(time.Second, "test-agent/1.0")
	text, src, err := e.Extract(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if src.Key != srv.URL {
		t.Errorf("source key = %q, want %q", src.Key, srv.URL)
	}
	if src.Attrs["title"] != "Test Page" {
		t.Errorf("title attr = %q", src.Attrs["title"])
	}
	if !strings.Contains(text, "semantic search") {
		t.Errorf("text = %q", text)
	}
}
