package ingest

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/presswire/newsdex/internal/domain"
	"github.com/presswire/newsdex/internal/store"
)

// fakeExtractor serves canned listings and extractions.
type fakeExtractor struct {
	sites map[string][]string
	pages map[string]domain.Extraction
	fail  map[string]bool
}

func (f *fakeExtractor) ListArticles(_ context.Context, siteURL string) ([]string, error) {
	pages, ok := f.sites[siteURL]
	if !ok {
		return nil, errors.New("site unreachable")
	}
	return pages, nil
}

func (f *fakeExtractor) Extract(_ context.Context, pageURL string) (domain.Extraction, error) {
	if f.fail[pageURL] {
		return domain.Extraction{}, errors.New("fetch timeout")
	}
	ext, ok := f.pages[pageURL]
	if !ok {
		return domain.Extraction{}, errors.New("unparseable page")
	}
	return ext, nil
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func storyTime(day int) time.Time {
	return time.Date(2020, 3, day, 9, 0, 0, 0, time.UTC)
}

// threeArticleFixture reproduces the canonical scenario: two articles from
// a.example.com dated 2020-03-25 and one from b.example.com dated 2020-03-26.
func threeArticleFixture() *fakeExtractor {
	return &fakeExtractor{
		sites: map[string][]string{
			"https://a.example.com": {
				"https://a.example.com/story/1",
				"https://a.example.com/story/2",
			},
			"https://b.example.com": {
				"https://b.example.com/story/1",
			},
		},
		pages: map[string]domain.Extraction{
			"https://a.example.com/story/1": {
				URL:         "https://a.example.com/story/1",
				Title:       "Markets rally",
				Authors:     []string{"Jane Doe"},
				PublishedAt: storyTime(25),
			},
			"https://a.example.com/story/2": {
				URL:         "https://a.example.com/story/2",
				Title:       "Rates hold steady",
				Authors:     []string{"Sam Roe"},
				PublishedAt: storyTime(25),
			},
			"https://b.example.com/story/1": {
				URL:         "https://b.example.com/story/1",
				Title:       "Oil in flux",
				Authors:     []string{"Kim Lee"},
				PublishedAt: storyTime(26),
			},
		},
		fail: map[string]bool{},
	}
}

func fixtureSources() []string {
	return []string{"https://a.example.com", "https://b.example.com"}
}

func TestRunIngestsAllArticles(t *testing.T) {
	st := newTestStore(t)
	coord := New(threeArticleFixture(), st, nil, Options{Workers: 4})

	sum := coord.Run(context.Background(), fixtureSources())

	if sum.Pages != 3 || sum.Extracted != 3 || sum.Ingested != 3 {
		t.Errorf("summary = %+v, want 3 pages extracted and ingested", sum)
	}
	if sum.Failed != 0 || sum.Duplicates != 0 || sum.SitesFailed != 0 {
		t.Errorf("summary reports failures: %+v", sum)
	}

	count, _ := st.Count()
	if count != 3 {
		t.Errorf("index count = %d, want 3", count)
	}

	aCount, err := st.SumRange("a.example.com", storyTime(25).Truncate(24*time.Hour), time.Time{})
	if err != nil {
		t.Fatalf("sum range: %v", err)
	}
	if aCount != 2 {
		t.Errorf("a.example.com count on 2020-03-25 = %d, want 2", aCount)
	}
}

func TestRerunIsIdempotent(t *testing.T) {
	st := newTestStore(t)
	coord := New(threeArticleFixture(), st, nil, Options{Workers: 2})

	coord.Run(context.Background(), fixtureSources())
	sum := coord.Run(context.Background(), fixtureSources())

	if sum.Ingested != 0 || sum.Duplicates != 3 {
		t.Errorf("re-run summary = %+v, want 0 ingested and 3 duplicates", sum)
	}
	if count, _ := st.Count(); count != 3 {
		t.Errorf("index count after re-run = %d, want 3", count)
	}
}

func TestExtractionFailureDoesNotAbortSiblings(t *testing.T) {
	ext := threeArticleFixture()
	ext.fail["https://a.example.com/story/1"] = true

	st := newTestStore(t)
	sum := New(ext, st, nil, Options{Workers: 4}).Run(context.Background(), fixtureSources())

	if sum.Failed != 1 {
		t.Errorf("failed = %d, want 1", sum.Failed)
	}
	if sum.Ingested != 2 {
		t.Errorf("ingested = %d, want 2", sum.Ingested)
	}
}

func TestFailingSiteIsSkipped(t *testing.T) {
	ext := threeArticleFixture()
	st := newTestStore(t)

	sources := append(fixtureSources(), "https://down.example.com")
	sum := New(ext, st, nil, Options{Workers: 2}).Run(context.Background(), sources)

	if sum.SitesFailed != 1 {
		t.Errorf("sites failed = %d, want 1", sum.SitesFailed)
	}
	if sum.Ingested != 3 {
		t.Errorf("ingested = %d, want 3", sum.Ingested)
	}
}

func TestEmptySiteIsValid(t *testing.T) {
	ext := &fakeExtractor{
		sites: map[string][]string{"https://quiet.example.com": {}},
	}
	st := newTestStore(t)

	sum := New(ext, st, nil, Options{}).Run(context.Background(), []string{"https://quiet.example.com"})

	if sum.SitesFailed != 0 || sum.Failed != 0 {
		t.Errorf("empty site must not count as failure: %+v", sum)
	}
	if sum.Pages != 0 {
		t.Errorf("pages = %d, want 0", sum.Pages)
	}
}

func TestMissingPublishTimeDefaultsToNow(t *testing.T) {
	now := time.Date(2021, 7, 4, 15, 45, 30, 0, time.UTC)
	ext := &fakeExtractor{
		sites: map[string][]string{"https://a.example.com": {"https://a.example.com/story/9"}},
		pages: map[string]domain.Extraction{
			"https://a.example.com/story/9": {
				URL:   "https://a.example.com/story/9",
				Title: "Undated story",
			},
		},
	}
	st := newTestStore(t)

	New(ext, st, nil, Options{Now: func() time.Time { return now }}).
		Run(context.Background(), []string{"https://a.example.com"})

	ids, _ := st.Range(0, 1)
	if len(ids) != 1 {
		t.Fatal("expected one ingested article")
	}
	rec, err := st.Article(ids[0])
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if rec.StoryDate != "2021-07-04" || rec.StoryTime != "15:45:30" {
		t.Errorf("story date/time = %s %s, want ingestion moment", rec.StoryDate, rec.StoryTime)
	}
	if rec.Authors == nil || len(rec.Authors) != 0 {
		t.Errorf("authors must be empty, never absent: %#v", rec.Authors)
	}
}

func TestDuplicateAcrossSources(t *testing.T) {
	// Two source lists referencing the same story must ingest it once.
	ext := threeArticleFixture()
	ext.sites["https://mirror.example.com"] = []string{"https://a.example.com/story/1"}

	st := newTestStore(t)
	sources := append(fixtureSources(), "https://mirror.example.com")
	sum := New(ext, st, nil, Options{Workers: 4}).Run(context.Background(), sources)

	// The coordinator already dedupes page URLs across sites, so the
	// shared page is fetched once.
	if sum.Pages != 3 {
		t.Errorf("pages = %d, want 3", sum.Pages)
	}
	if count, _ := st.Count(); count != 3 {
		t.Errorf("index count = %d, want 3", count)
	}
}
