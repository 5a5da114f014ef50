package domain

import (
	"net/url"
	"time"
)

// Domain contains core models shared by ingestion and the read API.

const (
	// DateLayout is the calendar-date form used for story dates and stat keys.
	DateLayout = "2006-01-02"
	// TimeLayout is the clock form used for story times.
	TimeLayout = "15:04:05"
)

// Article is the canonical ingested unit. It is created once, at the first
// successful ingestion of a given ID, and never mutated afterwards.
type Article struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	URL        string    `json:"url"`
	Title      string    `json:"title"`
	Authors    []string  `json:"authors"`
	Body       string    `json:"body"`
	Summary    string    `json:"summary"`
	Category   []string  `json:"category"`
	Topics     []string  `json:"topics"`
	StoryDate  string    `json:"story_date"`
	StoryTime  string    `json:"story_time"`
	IngestedAt time.Time `json:"ingested_at"`
}

// Extraction is the raw output of the article extractor for a single page.
// PublishedAt is the zero time when the page does not report a publish
// timestamp; the ingestion coordinator substitutes the processing moment.
type Extraction struct {
	URL         string
	Title       string
	Authors     []string
	Body        string
	Summary     string
	Tags        []string
	Keywords    []string
	PublishedAt time.Time
}

// HostOf extracts the host name from an article URL, e.g.
// "https://news.example.com/story/1" -> "news.example.com".
func HostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Host
}
