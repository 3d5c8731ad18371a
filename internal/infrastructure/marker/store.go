// Package marker persists which users already received their streak
// reminder on a given day. The reminder sweep runs every few minutes
// past the reminder hour; the marker file is what keeps it from nagging
// the same user twice, including across restarts.
package marker

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/daykeep/backend/domain"
)

// Store wraps BoltDB with one key per (user, day) reminder.
type Store struct {
	db     *bolt.DB
	bucket []byte
}

// Open initializes the BoltDB file and ensures the bucket exists.
func Open(path string, bucket string) (*Store, error) {
	if bucket == "" {
		bucket = "reminders"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		db:     db,
		bucket: []byte(bucket),
	}, nil
}

// Seen reports whether the user was already reminded on the given day.
func (s *Store) Seen(userID int64, day domain.Date) (bool, error) {
	if s == nil || s.db == nil {
		return false, bolt.ErrDatabaseNotOpen
	}

	var seen bool
	err := s.db.View(func(tx *bolt.Tx) error {
		seen = tx.Bucket(s.bucket).Get(buildKey(userID, day)) != nil
		return nil
	})
	return seen, err
}

// Mark records that the user's reminder for the day went out.
func (s *Store) Mark(userID int64, day domain.Date) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}

	value := []byte(time.Now().UTC().Format(time.RFC3339))
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put(buildKey(userID, day), value)
	})
}

// Cleanup removes markers for days before the given one.
func (s *Store) Cleanup(before domain.Date) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		c := tx.Bucket(s.bucket).Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			day, ok := dayOfKey(k)
			if !ok || !day.Before(before) {
				continue
			}
			if err := c.Delete(); err != nil {
				return err
			}
		}
		return nil
	})
}

// Size returns the number of stored markers.
func (s *Store) Size() (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	var count int
	err := s.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket(s.bucket).Stats().KeyN
		return nil
	})
	return count, err
}

// Stats exposes Bolt statistics for monitoring endpoints.
func (s *Store) Stats() bolt.Stats {
	if s == nil || s.db == nil {
		return bolt.Stats{}
	}
	return s.db.Stats()
}

// Close closes the Bolt database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func buildKey(userID int64, day domain.Date) []byte {
	return []byte(fmt.Sprintf("%020d_%s", userID, day))
}

func dayOfKey(key []byte) (domain.Date, bool) {
	parts := strings.SplitN(string(key), "_", 2)
	if len(parts) != 2 {
		return domain.Date{}, false
	}
	day, err := domain.ParseDate(parts[1])
	if err != nil {
		return domain.Date{}, false
	}
	return day, true
}
