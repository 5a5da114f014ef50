package store

import (
	"encoding/binary"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/presswire/newsdex/internal/domain"
)

// incrementStat adds one to the (source, date) counter inside the given
// transaction, creating it at 1 when absent.
func incrementStat(tx *bolt.Tx, source, date string) error {
	summaries := tx.Bucket(bucketSummaries)
	src, err := summaries.CreateBucketIfNotExists([]byte(source))
	if err != nil {
		return fmt.Errorf("create summary bucket %s: %w", source, err)
	}

	key := []byte(date)
	count := uint64(0)
	if raw := src.Get(key); raw != nil {
		count = binary.BigEndian.Uint64(raw)
	}

	val := make([]byte, 8)
	binary.BigEndian.PutUint64(val, count+1)
	if err := src.Put(key, val); err != nil {
		return fmt.Errorf("increment %s %s: %w", source, date, err)
	}
	return nil
}

// IncrementStat adds one to the (source, date) counter in its own
// transaction.
func (s *Store) IncrementStat(source, date string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return incrementStat(tx, source, date)
	})
}

// StatCount reports the counter for (source, date). A missing source or date
// yields zero; absence is not an error here.
func (s *Store) StatCount(source string, date time.Time) (int64, error) {
	var count int64
	err := s.db.View(func(tx *bolt.Tx) error {
		src := sourceBucket(tx, source)
		if src == nil {
			return nil
		}
		if raw := src.Get([]byte(date.Format(domain.DateLayout))); raw != nil {
			count = int64(binary.BigEndian.Uint64(raw))
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("stat count %s: %w", source, err)
	}
	return count, nil
}

// StatsExist reports whether the source has ever recorded a counter.
func (s *Store) StatsExist(source string) (bool, error) {
	exists := false
	err := s.db.View(func(tx *bolt.Tx) error {
		exists = sourceBucket(tx, source) != nil
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("stats exist %s: %w", source, err)
	}
	return exists, nil
}

// SumRange totals the per-day counters for the source over [start, end].
// The start date is always counted once; when end is non-zero the walk then
// proceeds from end downward, one calendar day at a time, stopping as soon as
// the cursor is no longer after start. An end before start therefore yields
// the start-date count alone. A zero end degenerates to the single start
// date. Returns ErrStatsNotFound when the source has no counters at all.
func (s *Store) SumRange(source string, start, end time.Time) (int64, error) {
	var total int64

	err := s.db.View(func(tx *bolt.Tx) error {
		src := sourceBucket(tx, source)
		if src == nil {
			return ErrStatsNotFound
		}

		total += readCount(src, start)
		if end.IsZero() {
			return nil
		}
		for d := end; d.After(start); d = d.AddDate(0, 0, -1) {
			total += readCount(src, d)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// sourceBucket returns the nested per-source counter bucket, or nil.
func sourceBucket(tx *bolt.Tx, source string) *bolt.Bucket {
	summaries := tx.Bucket(bucketSummaries)
	if summaries == nil {
		return nil
	}
	return summaries.Bucket([]byte(source))
}

func readCount(src *bolt.Bucket, date time.Time) int64 {
	raw := src.Get([]byte(date.Format(domain.DateLayout)))
	if raw == nil {
		return 0
	}
	return int64(binary.BigEndian.Uint64(raw))
}
