// Package store persists articles, the time-ordered index and the per-source
// statistics counters in a single bbolt file.
//
// Layout:
//
//	articles    id -> JSON article record
//	index       big-endian uint64 sequence -> id (ascending ingestion order)
//	index_ids   id -> sequence key (idempotence guard for the index)
//	summaries   one nested bucket per source, date string -> uint64 count
//
// All writes for one article happen inside one update transaction, so a
// crash can never leave a claimed identifier without its index entry or
// counter increment.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/presswire/newsdex/internal/domain"
)

var (
	bucketArticles  = []byte("articles")
	bucketIndex     = []byte("index")
	bucketIndexIDs  = []byte("index_ids")
	bucketSummaries = []byte("summaries")
)

var (
	// ErrNotFound reports a missing article record.
	ErrNotFound = errors.New("article not found")
	// ErrStatsNotFound reports a source with no recorded counters at all,
	// distinct from a source whose counters sum to zero.
	ErrStatsNotFound = errors.New("stats not found")
)

// Store is a bbolt-backed article store. It is safe for concurrent use;
// bbolt serializes write transactions internally.
type Store struct {
	db *bolt.DB
}

// Open opens (or creates) the store file and ensures all buckets exist.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketArticles, bucketIndex, bucketIndexIDs, bucketSummaries} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// OpenReadOnly opens an existing store file for queries only. The read API
// uses this so it can run alongside an ingestion pass.
func OpenReadOnly(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("open store %s read-only: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database file.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ingest commits one article as a single atomic transaction: dedup claim,
// record write, time-index append and stat-counter increment. It returns
// false when the identifier was already claimed, in which case nothing is
// mutated.
func (s *Store) Ingest(rec domain.Article) (bool, error) {
	created := false

	err := s.db.Update(func(tx *bolt.Tx) error {
		arts := tx.Bucket(bucketArticles)
		id := []byte(rec.ID)
		if arts.Get(id) != nil {
			return nil
		}

		payload, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal article %s: %w", rec.ID, err)
		}
		if err := arts.Put(id, payload); err != nil {
			return fmt.Errorf("put article %s: %w", rec.ID, err)
		}
		if err := appendIndex(tx, rec.ID); err != nil {
			return err
		}
		if err := incrementStat(tx, rec.Source, rec.StoryDate); err != nil {
			return err
		}

		created = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

// ExistsAndClaim atomically tests whether the identifier is known and, if
// not, reserves it with a placeholder record. It returns true when the
// identifier already existed. Ingest performs the same claim together with
// the index and counter writes; this method is the bare primitive.
func (s *Store) ExistsAndClaim(id string) (bool, error) {
	existed := false

	err := s.db.Update(func(tx *bolt.Tx) error {
		arts := tx.Bucket(bucketArticles)
		key := []byte(id)
		if arts.Get(key) != nil {
			existed = true
			return nil
		}
		return arts.Put(key, []byte("{}"))
	})
	if err != nil {
		return false, fmt.Errorf("claim %s: %w", id, err)
	}
	return existed, nil
}

// Article resolves a stored record by identifier.
func (s *Store) Article(id string) (domain.Article, error) {
	var rec domain.Article

	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketArticles).Get([]byte(id))
		if raw == nil {
			return ErrNotFound
		}
		if err := json.Unmarshal(raw, &rec); err != nil {
			return fmt.Errorf("unmarshal article %s: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return domain.Article{}, err
	}
	return rec, nil
}
