// Package ingest drives one ingestion pass: list article pages per source
// site, extract them concurrently over a bounded worker pool, and commit
// each article through dedup, time index and stat counters.
package ingest

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/presswire/newsdex/internal/domain"
	"github.com/presswire/newsdex/internal/extractor"
	"github.com/presswire/newsdex/internal/logger"
	"github.com/presswire/newsdex/pkg/publishers"
)

const defaultMaxWorkers = 10

// ArticleStore commits one article atomically and reports whether this call
// created it. A false result means the identifier was already claimed and
// nothing was written.
type ArticleStore interface {
	Ingest(rec domain.Article) (bool, error)
}

// Sink receives every newly created article as a side artifact.
type Sink interface {
	Write(rec domain.Article) error
}

// Summary counts the outcomes of one ingestion pass.
type Summary struct {
	RunID       string
	Sites       int
	SitesFailed int
	Pages       int
	Extracted   int
	Failed      int
	Duplicates  int
	Ingested    int
}

// Coordinator fans extraction out across article pages and is the sole
// writer of the store. Query services only ever read.
type Coordinator struct {
	ext     extractor.Extractor
	store   ArticleStore
	sink    Sink
	pubs    []publishers.Publisher
	log     logger.Logger
	workers int
	now     func() time.Time
}

// Options tunes a Coordinator. Zero values fall back to defaults.
type Options struct {
	Workers    int
	Sink       Sink
	Publishers []publishers.Publisher
	Now        func() time.Time
}

// New builds a Coordinator over the given extractor and store.
func New(ext extractor.Extractor, store ArticleStore, log logger.Logger, opts Options) *Coordinator {
	if log == nil {
		log = logger.NopLogger{}
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = defaultMaxWorkers
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Coordinator{
		ext:     ext,
		store:   store,
		sink:    opts.Sink,
		pubs:    opts.Publishers,
		log:     log,
		workers: workers,
		now:     now,
	}
}

// Run executes one full ingestion pass over the source site list. A failing
// site or page never aborts its siblings; the summary reports what happened.
func (c *Coordinator) Run(ctx context.Context, sources []string) Summary {
	sum := &Summary{RunID: uuid.NewString(), Sites: len(sources)}

	pages := c.listPages(ctx, sources, sum)
	sum.Pages = len(pages)
	if len(pages) == 0 {
		c.log.InfoObj("ingestion pass found no pages", "run_empty", map[string]any{
			"run_id": sum.RunID,
			"sites":  sum.Sites,
		})
		return *sum
	}

	workerCount := min(len(pages), c.workers)

	jobCh := make(chan string)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go c.pageWorker(ctx, jobCh, sum, &mu, &wg)
	}

	for _, page := range pages {
		if ctx.Err() != nil {
			break
		}
		jobCh <- page
	}
	close(jobCh)

	wg.Wait()

	c.log.InfoObj("ingestion pass complete", "run_summary", map[string]any{
		"run_id":       sum.RunID,
		"sites":        sum.Sites,
		"sites_failed": sum.SitesFailed,
		"pages":        sum.Pages,
		"extracted":    sum.Extracted,
		"failed":       sum.Failed,
		"duplicates":   sum.Duplicates,
		"ingested":     sum.Ingested,
	})

	return *sum
}

// listPages resolves every source site into its article page URLs. Sites are
// independent: a listing failure is logged and skipped, and a site with zero
// articles is a valid outcome.
func (c *Coordinator) listPages(ctx context.Context, sources []string, sum *Summary) []string {
	seen := make(map[string]struct{})
	var pages []string

	for _, site := range sources {
		if ctx.Err() != nil {
			break
		}

		found, err := c.ext.ListArticles(ctx, site)
		if err != nil {
			sum.SitesFailed++
			c.log.WarnObj("site listing failed", "site_listing_error", map[string]any{
				"run_id": sum.RunID,
				"site":   site,
				"error":  err.Error(),
			})
			continue
		}
		if len(found) == 0 {
			c.log.InfoObj("site listed no articles", "site_empty", map[string]any{
				"run_id": sum.RunID,
				"site":   site,
			})
			continue
		}

		for _, page := range found {
			if _, dup := seen[page]; dup {
				continue
			}
			seen[page] = struct{}{}
			pages = append(pages, page)
		}
	}
	return pages
}

// pageWorker pulls page URLs from the job channel and runs the per-article
// ingestion transaction for each.
func (c *Coordinator) pageWorker(ctx context.Context, jobCh <-chan string, sum *Summary, mu *sync.Mutex, wg *sync.WaitGroup) {
	defer wg.Done()

	for page := range jobCh {
		if ctx.Err() != nil {
			return
		}
		c.processPage(ctx, page, sum, mu)
	}
}

// processPage extracts one page and commits the resulting article. Every
// failure is contained at this granularity.
func (c *Coordinator) processPage(ctx context.Context, page string, sum *Summary, mu *sync.Mutex) {
	ext, err := c.ext.Extract(ctx, page)
	if err != nil {
		mu.Lock()
		sum.Failed++
		mu.Unlock()
		c.log.WarnObj("article extraction failed", "extraction_error", map[string]any{
			"run_id": sum.RunID,
			"url":    page,
			"error":  err.Error(),
		})
		return
	}

	mu.Lock()
	sum.Extracted++
	mu.Unlock()

	rec := c.buildRecord(ext)

	created, err := c.store.Ingest(rec)
	if err != nil {
		mu.Lock()
		sum.Failed++
		mu.Unlock()
		c.log.ErrorObj("article commit failed", "commit_error", map[string]any{
			"run_id":     sum.RunID,
			"article_id": rec.ID,
			"url":        page,
			"error":      err.Error(),
		})
		return
	}
	if !created {
		mu.Lock()
		sum.Duplicates++
		mu.Unlock()
		c.log.DebugObj("duplicate article skipped", "duplicate_skip", map[string]any{
			"run_id":     sum.RunID,
			"article_id": rec.ID,
			"url":        page,
		})
		return
	}

	mu.Lock()
	sum.Ingested++
	mu.Unlock()

	if c.sink != nil {
		if err := c.sink.Write(rec); err != nil {
			c.log.WarnObj("sink write failed", "sink_error", map[string]any{
				"run_id":     sum.RunID,
				"article_id": rec.ID,
				"error":      err.Error(),
			})
		}
	}
	c.publish(ctx, sum.RunID, rec)
}

// buildRecord turns an extraction into the canonical article record. A page
// without a publish timestamp is dated to the processing moment; that is the
// fallback policy, not an error.
func (c *Coordinator) buildRecord(ext domain.Extraction) domain.Article {
	now := c.now()

	published := ext.PublishedAt
	if published.IsZero() {
		published = now
	}
	published = published.UTC()

	authors := ext.Authors
	if authors == nil {
		authors = []string{}
	}

	return domain.Article{
		ID:         domain.ArticleID(ext.Title, published, authors),
		Source:     domain.HostOf(ext.URL),
		URL:        ext.URL,
		Title:      ext.Title,
		Authors:    authors,
		Body:       ext.Body,
		Summary:    ext.Summary,
		Category:   ext.Tags,
		Topics:     ext.Keywords,
		StoryDate:  published.Format(domain.DateLayout),
		StoryTime:  published.Format(domain.TimeLayout),
		IngestedAt: now,
	}
}

// publish fans the ingested article out to the configured publishers.
// Delivery failures are logged and never fail the ingestion.
func (c *Coordinator) publish(ctx context.Context, runID string, rec domain.Article) {
	if len(c.pubs) == 0 {
		return
	}

	evt := publishers.Event{
		RunID:      runID,
		ArticleID:  rec.ID,
		Source:     rec.Source,
		Title:      rec.Title,
		URL:        rec.URL,
		StoryDate:  rec.StoryDate,
		IngestedAt: rec.IngestedAt,
	}
	for _, pub := range c.pubs {
		if err := pub.Publish(ctx, evt); err != nil {
			c.log.WarnObj("publisher delivery failed", "publisher_error", map[string]any{
				"run_id":       runID,
				"publisher_id": pub.ID(),
				"article_id":   rec.ID,
				"error":        err.Error(),
			})
		}
	}
}
