package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	bolt "go.etcd.io/bbolt"
)

const historyBucket = "extractions"

var errBucketMissing = errors.New("extractions bucket missing")

// boltStore implements a Store backed by BoltDB.
type boltStore struct {
	db              *bolt.DB
	cleanupMu       sync.Mutex
	lastCleanup     atomic.Int64
	entryTTL        time.Duration
	cleanupInterval time.Duration
	now             func() time.Time
}

// openBolt initializes a BoltDB-backed Store.
func openBolt(path string, opts Options) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(historyBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	store := &boltStore{
		db:              db,
		entryTTL:        opts.EntryTTL,
		cleanupInterval: opts.CleanupInterval,
		now:             time.Now,
	}
	// lastCleanup starts at zero so the first access of every process sweeps.
	return store, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	return err
}

// Lookup returns the unexpired entry for the digest. Expired entries are removed.
func (b *boltStore) Lookup(sha string) (Entry, bool, error) {
	if b == nil || b.db == nil {
		return Entry{}, false, nil
	}

	now := b.now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return Entry{}, false, err
	}

	var (
		entry Entry
		found bool
	)
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(historyBucket))
		if bucket == nil {
			return errBucketMissing
		}

		key := []byte(normalizeKey(sha))
		value := bucket.Get(key)
		if value == nil {
			return nil
		}

		decoded, ok := decodeEntry(value)
		if !ok || !decoded.ExpiresAt.After(now) {
			return bucket.Delete(key)
		}

		entry, found = decoded, true
		return nil
	})
	return entry, found, err
}

// Record stores entry, stamping ExtractedAt (if unset) and ExpiresAt.
func (b *boltStore) Record(entry Entry) error {
	if b == nil || b.db == nil {
		return nil
	}
	key := normalizeKey(entry.DocumentSHA256)
	if key == "" {
		return errors.New("history entry requires a document digest")
	}

	now := b.now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return err
	}

	if entry.ExtractedAt.IsZero() {
		entry.ExtractedAt = now.UTC()
	}
	entry.DocumentSHA256 = key
	entry.ExpiresAt = entry.ExtractedAt.Add(b.entryTTL)

	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode history entry: %w", err)
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(historyBucket))
		if bucket == nil {
			return errBucketMissing
		}
		return bucket.Put([]byte(key), raw)
	})
}

// maybeCleanupExpired sweeps expired entries at most once per cleanup interval.
func (b *boltStore) maybeCleanupExpired(now time.Time) error {
	if b == nil || b.db == nil {
		return nil
	}

	last := time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	b.cleanupMu.Lock()
	defer b.cleanupMu.Unlock()

	last = time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(historyBucket))
		if bucket == nil {
			return errBucketMissing
		}

		cursor := bucket.Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			entry, ok := decodeEntry(v)
			if !ok || !entry.ExpiresAt.After(now) {
				if err := cursor.Delete(); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err == nil {
		b.lastCleanup.Store(now.Unix())
	}
	return err
}

func decodeEntry(value []byte) (Entry, bool) {
	var entry Entry
	if err := json.Unmarshal(value, &entry); err != nil {
		return Entry{}, false
	}
	if entry.ExpiresAt.IsZero() {
		return Entry{}, false
	}
	return entry, true
}

func normalizeKey(sha string) string {
	return strings.ToLower(strings.TrimSpace(sha))
}
