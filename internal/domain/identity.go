package domain

import (
	"crypto/sha1" //nolint:gosec // content identity, not security
	"encoding/hex"
	"strings"
	"time"
)

// idDelimiter separates the normalizing fields in the digest input. It is
// part of the identity contract and must never change.
const idDelimiter = "|"

// ArticleID derives the content identifier for an article from its
// normalizing fields: title, publish timestamp and authors. The same fields
// always produce the same identifier, no matter when or how often the page
// was fetched.
//
// Authors are concatenated in the order the extractor reported them; they are
// never re-sorted. Re-ordering would silently change the identity of an
// otherwise identical article.
func ArticleID(title string, publishedAt time.Time, authors []string) string {
	parts := make([]string, 0, len(authors)+2)
	parts = append(parts, title, publishedAt.UTC().Format(time.RFC3339))
	parts = append(parts, authors...)

	sum := sha1.Sum([]byte(strings.Join(parts, idDelimiter)))
	return hex.EncodeToString(sum[:])
}
