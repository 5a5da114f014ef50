package store

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/presswire/newsdex/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testArticle(n int, source, storyDate string) domain.Article {
	return domain.Article{
		ID:         fmt.Sprintf("id-%04d", n),
		Source:     source,
		URL:        fmt.Sprintf("https://%s/story/%d", source, n),
		Title:      fmt.Sprintf("Story %d", n),
		Authors:    []string{"Jane Doe"},
		StoryDate:  storyDate,
		StoryTime:  "10:30:00",
		IngestedAt: time.Date(2020, 3, 25, 12, 0, 0, 0, time.UTC),
	}
}

func mustIngest(t *testing.T, s *Store, rec domain.Article) {
	t.Helper()
	created, err := s.Ingest(rec)
	if err != nil {
		t.Fatalf("ingest %s: %v", rec.ID, err)
	}
	if !created {
		t.Fatalf("ingest %s: expected creation", rec.ID)
	}
}

func TestIngestIdempotent(t *testing.T) {
	s := newTestStore(t)
	rec := testArticle(1, "a.example.com", "2020-03-25")

	mustIngest(t, s, rec)

	// Second ingestion with the same id must be a complete no-op.
	created, err := s.Ingest(rec)
	if err != nil {
		t.Fatalf("second ingest: %v", err)
	}
	if created {
		t.Error("second ingest reported creation")
	}

	if count, _ := s.Count(); count != 1 {
		t.Errorf("index count = %d, want 1", count)
	}
	got, _ := s.StatCount("a.example.com", date(t, "2020-03-25"))
	if got != 1 {
		t.Errorf("stat count = %d, want 1", got)
	}
}

func TestIngestWritesAllThree(t *testing.T) {
	s := newTestStore(t)
	rec := testArticle(1, "a.example.com", "2020-03-25")
	mustIngest(t, s, rec)

	stored, err := s.Article(rec.ID)
	if err != nil {
		t.Fatalf("resolve record: %v", err)
	}
	if stored.Title != rec.Title || stored.Source != rec.Source {
		t.Errorf("stored record mismatch: %+v", stored)
	}

	ids, err := s.Range(0, 10)
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if len(ids) != 1 || ids[0] != rec.ID {
		t.Errorf("index entries = %v, want [%s]", ids, rec.ID)
	}

	exists, _ := s.StatsExist("a.example.com")
	if !exists {
		t.Error("expected stats for a.example.com")
	}
}

func TestExistsAndClaim(t *testing.T) {
	s := newTestStore(t)

	existed, err := s.ExistsAndClaim("claim-1")
	if err != nil {
		t.Fatalf("first claim: %v", err)
	}
	if existed {
		t.Error("first claim reported existing")
	}

	existed, err = s.ExistsAndClaim("claim-1")
	if err != nil {
		t.Fatalf("second claim: %v", err)
	}
	if !existed {
		t.Error("second claim must report existing")
	}
}

func TestArticleNotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Article("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAppendIndexIdempotent(t *testing.T) {
	s := newTestStore(t)

	for i := 0; i < 3; i++ {
		if err := s.AppendIndex("dup-id"); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if count, _ := s.Count(); count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestRangePagination(t *testing.T) {
	s := newTestStore(t)

	const total = 23
	want := make([]string, 0, total)
	for i := 0; i < total; i++ {
		rec := testArticle(i, "a.example.com", "2020-03-25")
		mustIngest(t, s, rec)
		want = append(want, rec.ID)
	}

	for _, pageSize := range []int{1, 4, 10, 23, 50} {
		var got []string
		for offset := 0; ; offset += pageSize {
			page, err := s.Range(offset, pageSize)
			if err != nil {
				t.Fatalf("range(%d, %d): %v", offset, pageSize, err)
			}
			if len(page) == 0 {
				break
			}
			got = append(got, page...)
		}

		if len(got) != total {
			t.Fatalf("pageSize %d: walked %d entries, want %d", pageSize, len(got), total)
		}
		for i := range got {
			if got[i] != want[i] {
				t.Fatalf("pageSize %d: entry %d = %s, want %s", pageSize, i, got[i], want[i])
			}
		}
	}
}

func TestRangeBeyondEnd(t *testing.T) {
	s := newTestStore(t)
	mustIngest(t, s, testArticle(1, "a.example.com", "2020-03-25"))

	for _, offset := range []int{1, 2, 100} {
		page, err := s.Range(offset, 10)
		if err != nil {
			t.Fatalf("range offset %d: %v", offset, err)
		}
		if len(page) != 0 {
			t.Errorf("range offset %d returned %d entries, want 0", offset, len(page))
		}
	}
}

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		t.Fatalf("parse date %s: %v", s, err)
	}
	return d
}
