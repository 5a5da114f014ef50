package ingest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/presswire/newsdex/internal/domain"
)

func sinkRecord(id, source, title string) domain.Article {
	return domain.Article{
		ID:     id,
		Source: source,
		Title:  title,
		URL:    "https://" + source + "/story/" + id,
	}
}

func readSinkFile(t *testing.T, path string) map[string]domain.Article {
	t.Helper()
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sink file: %v", err)
	}
	var doc struct {
		Results map[string]domain.Article `json:"results"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("decode sink file: %v", err)
	}
	return doc.Results
}

func TestSinkWritesPerDayPerSource(t *testing.T) {
	root := t.TempDir()
	s := NewJSONSink(root)
	s.now = func() time.Time { return time.Date(2020, 3, 25, 12, 0, 0, 0, time.UTC) }

	if err := s.Write(sinkRecord("id-1", "a.example.com", "First")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := s.Write(sinkRecord("id-2", "b.example.com", "Second")); err != nil {
		t.Fatalf("write: %v", err)
	}

	results := readSinkFile(t, filepath.Join(root, "2020-03-25", "a.example.com.json"))
	if len(results) != 1 || results["id-1"].Title != "First" {
		t.Errorf("a.example.com results = %v", results)
	}
	results = readSinkFile(t, filepath.Join(root, "2020-03-25", "b.example.com.json"))
	if len(results) != 1 || results["id-2"].Title != "Second" {
		t.Errorf("b.example.com results = %v", results)
	}
}

func TestSinkMergesExistingFile(t *testing.T) {
	root := t.TempDir()
	s := NewJSONSink(root)
	s.now = func() time.Time { return time.Date(2020, 3, 25, 12, 0, 0, 0, time.UTC) }

	if err := s.Write(sinkRecord("id-1", "a.example.com", "First")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := s.Write(sinkRecord("id-2", "a.example.com", "Second")); err != nil {
		t.Fatalf("write: %v", err)
	}
	// Same id again must overwrite in place, not duplicate.
	if err := s.Write(sinkRecord("id-1", "a.example.com", "First revised")); err != nil {
		t.Fatalf("write: %v", err)
	}

	results := readSinkFile(t, filepath.Join(root, "2020-03-25", "a.example.com.json"))
	if len(results) != 2 {
		t.Fatalf("results has %d entries, want 2", len(results))
	}
	if results["id-1"].Title != "First revised" {
		t.Errorf("id-1 title = %s", results["id-1"].Title)
	}
}
