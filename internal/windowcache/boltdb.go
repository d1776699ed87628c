package windowcache

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.etcd.io/bbolt"

	"github.com/SteelMorgan/logslice/internal/domain"
)

const bucketName = "windows"

// BoltStore caches located byte windows in a BoltDB file, keyed by input
// path, file size, and target date. Because the key embeds the file size,
// an append-only log invalidates its own stale entries naturally.
type BoltStore struct {
	db *bbolt.DB
}

// NewBoltStore opens (or creates) the cache database at dbPath.
func NewBoltStore(dbPath string) (*BoltStore, error) {
	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{
		Timeout: 1 * time.Second,
	})
	if err != nil {
		// A lock timeout means another process holds the cache open.
		return nil, fmt.Errorf("failed to open boltdb (file may be locked by another process): %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	log.Info().
		Str("db_path", dbPath).
		Msg("Window cache initialized")

	return &BoltStore{db: db}, nil
}

// Get retrieves a cached window. ok is false on a miss.
func (s *BoltStore) Get(ctx context.Context, path string, size int64, date string) (domain.Window, bool, error) {
	var (
		window domain.Window
		found  bool
	)

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return fmt.Errorf("bucket not found")
		}

		val := b.Get([]byte(makeKey(path, size, date)))
		if val == nil {
			return nil
		}
		if len(val) < 16 {
			return fmt.Errorf("invalid window value")
		}

		window.Start = int64(binary.BigEndian.Uint64(val[:8]))
		window.End = int64(binary.BigEndian.Uint64(val[8:16]))
		found = true
		return nil
	})
	if err != nil {
		return domain.Window{}, false, fmt.Errorf("failed to get window: %w", err)
	}

	return window, found, nil
}

// Put stores a located window.
func (s *BoltStore) Put(ctx context.Context, path string, size int64, date string, w domain.Window) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return fmt.Errorf("bucket not found")
		}

		val := make([]byte, 16)
		binary.BigEndian.PutUint64(val[:8], uint64(w.Start))
		binary.BigEndian.PutUint64(val[8:16], uint64(w.End))

		return b.Put([]byte(makeKey(path, size, date)), val)
	})
	if err != nil {
		return fmt.Errorf("failed to put window: %w", err)
	}

	log.Debug().
		Str("path", path).
		Int64("size", size).
		Str("date", date).
		Int64("start", w.Start).
		Int64("end", w.End).
		Msg("Window cached")

	return nil
}

// Close closes the cache database.
func (s *BoltStore) Close() error {
	log.Info().Msg("Closing window cache")
	return s.db.Close()
}

// makeKey builds the composite cache key.
func makeKey(path string, size int64, date string) string {
	return fmt.Sprintf("%s|%d|%s", path, size, date)
}
