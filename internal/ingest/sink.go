package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/presswire/newsdex/internal/domain"
)

// JSONSink writes every ingested article into a per-run-day, per-source JSON
// file: <root>/<YYYY-MM-DD>/<source>.json. Each file holds
// {"results": {<id>: <record>}} and is merged with any pre-existing content
// for that (day, source) pair.
type JSONSink struct {
	root string
	now  func() time.Time

	mu sync.Mutex // serializes read-modify-write per sink
}

// sinkFile is the on-disk shape of one per-source output file.
type sinkFile struct {
	Results map[string]domain.Article `json:"results"`
}

// NewJSONSink builds a sink rooted at the given output directory.
func NewJSONSink(root string) *JSONSink {
	return &JSONSink{root: root, now: time.Now}
}

// Write merges the record into the source's file for the current run day.
func (s *JSONSink) Write(rec domain.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Join(s.root, s.now().Format(domain.DateLayout))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create sink dir: %w", err)
	}

	path := filepath.Join(dir, rec.Source+".json")
	doc, err := loadSinkFile(path)
	if err != nil {
		return err
	}

	doc.Results[rec.ID] = rec

	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal sink file: %w", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("write sink file %s: %w", path, err)
	}
	return nil
}

// loadSinkFile reads an existing output file, or returns an empty document.
func loadSinkFile(path string) (sinkFile, error) {
	doc := sinkFile{Results: make(map[string]domain.Article)}

	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return doc, fmt.Errorf("read sink file %s: %w", path, err)
	}

	if err := json.Unmarshal(raw, &doc); err != nil {
		return doc, fmt.Errorf("decode sink file %s: %w", path, err)
	}
	if doc.Results == nil {
		doc.Results = make(map[string]domain.Article)
	}
	return doc, nil
}
