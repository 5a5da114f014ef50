package store

import (
	"encoding/binary"
	"fmt"

	bolt "go.etcd.io/bbolt"
)

// appendIndex adds one time-index entry for the identifier inside the given
// transaction. Appending the same identifier twice is a no-op; the dedup
// claim already gates this upstream, but the index keeps its own guard.
func appendIndex(tx *bolt.Tx, id string) error {
	idx := tx.Bucket(bucketIndex)
	ids := tx.Bucket(bucketIndexIDs)

	key := []byte(id)
	if ids.Get(key) != nil {
		return nil
	}

	seq, err := idx.NextSequence()
	if err != nil {
		return fmt.Errorf("index sequence: %w", err)
	}

	seqKey := make([]byte, 8)
	binary.BigEndian.PutUint64(seqKey, seq)

	if err := idx.Put(seqKey, key); err != nil {
		return fmt.Errorf("index append %s: %w", id, err)
	}
	if err := ids.Put(key, seqKey); err != nil {
		return fmt.Errorf("index guard %s: %w", id, err)
	}
	return nil
}

// AppendIndex adds a time-index entry for the identifier in its own
// transaction. Idempotent under the identifier.
func (s *Store) AppendIndex(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return appendIndex(tx, id)
	})
}

// Count reports the total number of distinct time-index entries.
func (s *Store) Count() (int, error) {
	count := 0
	err := s.db.View(func(tx *bolt.Tx) error {
		if idx := tx.Bucket(bucketIndex); idx != nil {
			count = idx.Stats().KeyN
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("index count: %w", err)
	}
	return count, nil
}

// Range returns up to limit article identifiers starting at the given offset,
// in ascending ingestion order. An offset at or past the end yields an empty
// slice, never an error.
func (s *Store) Range(offset, limit int) ([]string, error) {
	if offset < 0 || limit <= 0 {
		return nil, nil
	}

	var out []string
	err := s.db.View(func(tx *bolt.Tx) error {
		idx := tx.Bucket(bucketIndex)
		if idx == nil {
			return nil
		}

		c := idx.Cursor()
		pos := 0
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if pos < offset {
				pos++
				continue
			}
			out = append(out, string(v))
			if len(out) == limit {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("index range: %w", err)
	}
	return out, nil
}
