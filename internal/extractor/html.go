package extractor

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/presswire/newsdex/internal/domain"
	"github.com/presswire/newsdex/internal/logger"
	"github.com/presswire/newsdex/pkg/httpclient"
)

const (
	defaultMaxBodyBytes = 1 << 20 // 1 MiB cap on fetched HTML
	defaultUserAgent    = "newsdex/1.0 (+https://github.com/presswire/newsdex)"
)

// HTMLExtractor fetches pages over HTTP and extracts article fields from
// standard HTML metadata (Open Graph, meta tags) and paragraph text.
type HTMLExtractor struct {
	client       httpclient.Client
	log          logger.Logger
	maxBodyBytes int
	userAgent    string
}

// Option tunes an HTMLExtractor.
type Option func(*HTMLExtractor)

// WithMaxBodyBytes caps the HTML body size kept per fetch.
func WithMaxBodyBytes(n int) Option {
	return func(e *HTMLExtractor) {
		if n > 0 {
			e.maxBodyBytes = n
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every fetch.
func WithUserAgent(ua string) Option {
	return func(e *HTMLExtractor) {
		if strings.TrimSpace(ua) != "" {
			e.userAgent = ua
		}
	}
}

// NewHTML builds an HTMLExtractor on the given HTTP client.
func NewHTML(client httpclient.Client, log logger.Logger, opts ...Option) *HTMLExtractor {
	if client == nil {
		client = httpclient.NewRestyClient(15 * time.Second)
	}
	if log == nil {
		log = logger.NopLogger{}
	}

	e := &HTMLExtractor{
		client:       client,
		log:          log,
		maxBodyBytes: defaultMaxBodyBytes,
		userAgent:    defaultUserAgent,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ListArticles fetches the site front page and collects same-host anchor
// links as the fixed set of article pages for this run. No recursion, no
// link-depth handling.
func (e *HTMLExtractor) ListArticles(ctx context.Context, siteURL string) ([]string, error) {
	base, err := url.Parse(strings.TrimSpace(siteURL))
	if err != nil {
		return nil, fmt.Errorf("parse site url %q: %w", siteURL, err)
	}

	doc, err := e.fetchDocument(ctx, base.String())
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var pages []string

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		link := resolveArticleLink(base, href)
		if link == "" {
			return
		}
		if _, dup := seen[link]; dup {
			return
		}
		seen[link] = struct{}{}
		pages = append(pages, link)
	})

	return pages, nil
}

// Extract fetches one article page and pulls out its raw fields.
func (e *HTMLExtractor) Extract(ctx context.Context, pageURL string) (domain.Extraction, error) {
	doc, err := e.fetchDocument(ctx, pageURL)
	if err != nil {
		return domain.Extraction{}, err
	}

	meta := func(sel string) string {
		if node := doc.Find(sel).First(); node.Length() > 0 {
			if val, ok := node.Attr("content"); ok {
				return strings.TrimSpace(val)
			}
		}
		return ""
	}

	ext := domain.Extraction{URL: pageURL}

	ext.Title = firstNonEmpty(
		meta(`meta[property="og:title"]`),
		strings.TrimSpace(doc.Find("title").First().Text()),
	)
	if ext.Title == "" {
		return domain.Extraction{}, fmt.Errorf("page %s has no title", pageURL)
	}

	ext.Summary = firstNonEmpty(
		meta(`meta[property="og:description"]`),
		meta(`meta[name="description"]`),
	)
	ext.Authors = collectContents(doc, `meta[name="author"], meta[property="article:author"]`)
	ext.Tags = collectContents(doc, `meta[property="article:tag"]`)
	ext.Keywords = splitCommaList(meta(`meta[name="keywords"]`))
	ext.PublishedAt = parsePublishedTime(firstNonEmpty(
		meta(`meta[property="article:published_time"]`),
		meta(`meta[name="publish-date"]`),
	))
	ext.Body = extractBody(doc)

	return ext, nil
}

// fetchDocument retrieves the URL and parses it into a goquery document.
func (e *HTMLExtractor) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	headers := map[string]string{"User-Agent": e.userAgent}

	resp, err := e.client.Get(ctx, pageURL, headers)
	if err != nil {
		return nil, fmt.Errorf("http fetch: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%s returned status %d", pageURL, resp.StatusCode())
	}

	body := resp.Body()
	if len(body) > e.maxBodyBytes {
		e.log.InfoObj("html body truncated", "truncation", map[string]any{
			"url":      pageURL,
			"original": len(body),
			"kept":     e.maxBodyBytes,
		})
		body = body[:e.maxBodyBytes]
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// resolveArticleLink resolves href against the site base and filters out
// links that cannot be article pages: other hosts, non-HTTP schemes,
// fragments and the front page itself.
func resolveArticleLink(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}

	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}

	u := base.ResolveReference(ref)
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	if u.Host != base.Host {
		return ""
	}
	if u.Path == "" || u.Path == "/" {
		return ""
	}

	u.Fragment = ""
	return u.String()
}

// extractBody joins the paragraph text of the page, preferring paragraphs
// inside an <article> element when one exists.
func extractBody(doc *goquery.Document) string {
	paragraphs := doc.Find("article p")
	if paragraphs.Length() == 0 {
		paragraphs = doc.Find("p")
	}

	var parts []string
	paragraphs.Each(func(_ int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			parts = append(parts, text)
		}
	})
	return strings.Join(parts, "\n\n")
}

// collectContents gathers the trimmed content attributes of all nodes
// matching the selector, preserving document order and dropping duplicates.
func collectContents(doc *goquery.Document, selector string) []string {
	seen := make(map[string]struct{})
	var out []string

	doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		val, ok := sel.Attr("content")
		if !ok {
			return
		}
		val = strings.TrimSpace(val)
		if val == "" {
			return
		}
		if _, dup := seen[val]; dup {
			return
		}
		seen[val] = struct{}{}
		out = append(out, val)
	})
	return out
}

// splitCommaList splits a comma-separated value into trimmed entries.
func splitCommaList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// parsePublishedTime parses a publish timestamp from page metadata. The zero
// time means the page did not report one.
func parsePublishedTime(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}

	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

// firstNonEmpty returns the first non-empty string from the given values.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
