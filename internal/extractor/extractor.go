// Package extractor turns source sites and article pages into raw article
// fields. The ingestion coordinator treats it as an external collaborator:
// a page either yields an Extraction or fails.
package extractor

import (
	"context"

	"github.com/presswire/newsdex/internal/domain"
)

// Extractor lists the article pages of a source site and extracts raw
// article fields from a single page.
type Extractor interface {
	// ListArticles discovers the article page URLs of a source site. An
	// empty result is a valid outcome, not an error.
	ListArticles(ctx context.Context, siteURL string) ([]string, error)

	// Extract fetches and parses one article page. A network failure,
	// non-200 status or unparseable document is an extraction failure.
	Extract(ctx context.Context, pageURL string) (domain.Extraction, error)
}
