// Package webpage fetches web pages and flattens them to indexable text plus
// provenance metadata. It is a collaborator of the ingest pipeline: the core
// never fetches or parses HTML itself.
package webpage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"

	"text-indexer/internal/chunk"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// Tags whose subtrees carry no indexable prose.
var skipTags = map[string]struct{}{
	"script": {}, "style": {}, "nav": {}, "header": {}, "footer": {},
	"aside": {}, "noscript": {}, "iframe": {}, "form": {},
}

var (
	wsRe    = regexp.MustCompile(`\s+`)
	dotsRe  = regexp.MustCompile(`[.]{3,}`)
	bangsRe = regexp.MustCompile(`[!]{2,}`)
	marksRe = regexp.MustCompile(`[?]{2,}`)
)

// Extractor fetches pages and extracts their content.
type Extractor struct {
	client    *http.Client
	userAgent string
}

func NewExtractor(timeout time.Duration, userAgent string) *Extractor {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Extractor{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// Fetch retrieves the raw HTML of a page. It validates the URL shape and
// warns (but does not fail) when the response is not HTML.
func (e *Extractor) Fetch(ctx context.Context, rawURL string) (string, int, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", 0, fmt.Errorf("invalid URL: %s", rawURL)
	}

	log.Info().Str("url", rawURL).Msg("Fetching content")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return "", resp.StatusCode, fmt.Errorf("request failed for %s: status %d", rawURL, resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(strings.ToLower(ct), "text/html") {
		log.Warn().Str("url", rawURL).Str("content_type", ct).Msg("URL did not return HTML content")
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", resp.StatusCode, fmt.Errorf("failed to read body of %s: %w", rawURL, err)
	}
	log.Info().Str("url", rawURL).Int("size", len(body)).Msg("Fetched content")
	return string(body), resp.StatusCode, nil
}

// Extract fetches a page and returns its cleaned text together with a Source
// carrying the page metadata, ready for the ingest pipeline.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (string, chunk.Source, error) {
	htmlSrc, _, err := e.Fetch(ctx, rawURL)
	if err != nil {
		return "", chunk.Source{}, err
	}
	text, err := Text(htmlSrc)
	if err != nil {
		return "", chunk.Source{}, err
	}
	return text, chunk.Source{Key: rawURL, Attrs: Meta(htmlSrc, rawURL)}, nil
}

// Text extracts the visible text of an HTML document, skipping script,
// style and page-chrome elements, and normalizes whitespace.
func Text(htmlSrc string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlSrc))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	var sb strings.Builder
	collectText(doc, &sb)
	return CleanText(sb.String()), nil
}

func collectText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.ElementNode {
		if _, skip := skipTags[n.Data]; skip {
			return
		}
	}
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
		sb.WriteByte(' ')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb)
	}
}

// Meta pulls page metadata: title, description (plain or Open Graph),
// keywords, author and language, plus the URL and retrieval timestamp. A
// page that fails to parse still yields the base fields.
func Meta(htmlSrc, pageURL string) map[string]string {
	md := map[string]string{
		"url":          pageURL,
		"retrieved_at": time.Now().UTC().Format(time.RFC3339),
	}
	doc, err := html.Parse(strings.NewReader(htmlSrc))
	if err != nil {
		log.Error().Err(err).Str("url", pageURL).Msg("Failed to parse HTML for metadata")
		return md
	}
	collectMeta(doc, md)
	return md
}

func collectMeta(n *html.Node, md map[string]string) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "html":
			if lang := attr(n, "lang"); lang != "" {
				md["language"] = lang
			}
		case "title":
			if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
				md["title"] = strings.TrimSpace(n.FirstChild.Data)
			}
		case "meta":
			name := attr(n, "name")
			if name == "" {
				name = attr(n, "property")
			}
			content := strings.TrimSpace(attr(n, "content"))
			if content == "" {
				break
			}
			switch name {
			case "description":
				md["description"] = content
			case "og:description":
				if md["description"] == "" {
					md["description"] = content
				}
			case "keywords":
				md["keywords"] = content
			case "author":
				md["author"] = content
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectMeta(c, md)
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// CleanText collapses runs of whitespace and repeated punctuation.
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	text = wsRe.ReplaceAllString(text, " ")
	text = dotsRe.ReplaceAllString(text, "...")
	text = bangsRe.ReplaceAllString(text, "!")
	text = marksRe.ReplaceAllString(text, "?")
	return strings.TrimSpace(text)
}
