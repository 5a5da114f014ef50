// Package publishers fans newly ingested articles out to external sinks:
// AWS SQS/SNS queues, GCP Pub/Sub topics and plain HTTP endpoints, declared
// in a YAML or JSON config file.
package publishers

import (
	"context"
	"fmt"
	"time"
)

// Event is the payload delivered for every newly ingested article.
type Event struct {
	RunID      string    `json:"run_id"`
	ArticleID  string    `json:"article_id"`
	Source     string    `json:"source"`
	Title      string    `json:"title"`
	URL        string    `json:"url"`
	StoryDate  string    `json:"story_date"`
	IngestedAt time.Time `json:"ingested_at"`
}

// Publisher delivers events to one configured sink.
type Publisher interface {
	ID() string
	Publish(ctx context.Context, evt Event) error
}

// Logger mirrors the application logging facade so this package stays
// decoupled from internal packages.
type Logger interface {
	DebugObj(msg, event string, fields map[string]any)
	InfoObj(msg, event string, fields map[string]any)
	WarnObj(msg, event string, fields map[string]any)
	ErrorObj(msg, event string, fields map[string]any)
}

type nopLogger struct{}

func (nopLogger) DebugObj(string, string, map[string]any) {}
func (nopLogger) InfoObj(string, string, map[string]any)  {}
func (nopLogger) WarnObj(string, string, map[string]any)  {}
func (nopLogger) ErrorObj(string, string, map[string]any) {}

func ensureLogger(log Logger) Logger {
	if log == nil {
		return nopLogger{}
	}
	return log
}

// Build instantiates publishers for every enabled config entry.
func Build(ctx context.Context, cfgs []Config, log Logger) ([]Publisher, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	log = ensureLogger(log)

	var pubs []Publisher
	for _, cfg := range cfgs {
		if !cfg.EnabledValue() {
			continue
		}

		var (
			pub Publisher
			err error
		)
		switch cfg.Type {
		case TypeSQS:
			pub, err = newSQSPublisher(ctx, cfg.ID, cfg.SQS, log)
		case TypeSNS:
			pub, err = newSNSPublisher(ctx, cfg.ID, cfg.SNS, log)
		case TypePubSub:
			pub, err = newPubSubPublisher(ctx, cfg.ID, cfg.PubSub, log)
		case TypeHTTP:
			pub, err = newHTTPPublisher(cfg.ID, cfg.HTTP, log)
		default:
			err = fmt.Errorf("type %q is not supported", cfg.Type)
		}
		if err != nil {
			return nil, fmt.Errorf("publisher %q: %w", cfg.ID, err)
		}
		pubs = append(pubs, pub)
	}
	return pubs, nil
}
