package storage

import (
	"path/filepath"
	"testing"
	"time"

	bolt "go.etcd.io/bbolt"
)

func openTestStore(t *testing.T, opts Options) *boltStore {
	t.Helper()
	storeRaw, err := openBolt(filepath.Join(t.TempDir(), "nested", "history.db"), normalizeOptions(opts))
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	store := storeRaw.(*boltStore)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestBoltStoreRecordsAndExpiresEntries(t *testing.T) {
	store := openTestStore(t, Options{EntryTTL: time.Hour, CleanupInterval: time.Hour})
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }

	_, found, err := store.Lookup("ABC")
	if err != nil || found {
		t.Fatalf("expected unknown digest, found=%v err=%v", found, err)
	}

	if err := store.Record(Entry{DocumentSHA256: "ABC", DocumentName: "invoice.pdf", XMLFilename: "factur-x.xml"}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	entry, found, err := store.Lookup("abc")
	if err != nil || !found {
		t.Fatalf("expected recorded entry, found=%v err=%v", found, err)
	}
	if entry.DocumentName != "invoice.pdf" || entry.XMLFilename != "factur-x.xml" {
		t.Fatalf("unexpected entry %+v", entry)
	}
	if !entry.ExtractedAt.Equal(clock) || !entry.ExpiresAt.Equal(clock.Add(time.Hour)) {
		t.Fatalf("unexpected timestamps %+v", entry)
	}

	clock = clock.Add(2 * time.Hour)
	_, found, err = store.Lookup("abc")
	if err != nil {
		t.Fatalf("Lookup after expiry: %v", err)
	}
	if found {
		t.Fatalf("expected entry to expire")
	}
}

func TestBoltStoreCleanupSweepsExpired(t *testing.T) {
	store := openTestStore(t, Options{EntryTTL: time.Minute, CleanupInterval: time.Minute})
	clock := time.Now()
	store.now = func() time.Time { return clock }

	for _, sha := range []string{"a1", "b2"} {
		if err := store.Record(Entry{DocumentSHA256: sha}); err != nil {
			t.Fatalf("Record %s: %v", sha, err)
		}
	}

	clock = clock.Add(5 * time.Minute)
	if err := store.maybeCleanupExpired(clock); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if time.Unix(store.lastCleanup.Load(), 0).Before(clock.Add(-time.Second)) {
		t.Fatalf("lastCleanup not advanced")
	}
	_, found, err := store.Lookup("b2")
	if err != nil || found {
		t.Fatalf("expected swept entry, found=%v err=%v", found, err)
	}
}

func countEntries(t *testing.T, store *boltStore) int {
	t.Helper()
	var n int
	err := store.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket([]byte(historyBucket)).Stats().KeyN
		return nil
	})
	if err != nil {
		t.Fatalf("count entries: %v", err)
	}
	return n
}

func TestBoltStoreSweepsExpiredAcrossRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	start := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

	reopen := func(at time.Time) *boltStore {
		t.Helper()
		raw, err := openBolt(path, normalizeOptions(Options{}))
		if err != nil {
			t.Fatalf("openBolt: %v", err)
		}
		store := raw.(*boltStore)
		store.now = func() time.Time { return at }
		return store
	}

	for i, sha := range []string{"old1", "old2", "old3"} {
		store := reopen(start.Add(time.Duration(i) * time.Minute))
		if err := store.Record(Entry{DocumentSHA256: sha}); err != nil {
			t.Fatalf("Record %s: %v", sha, err)
		}
		if err := store.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
	}

	store := reopen(start.Add(90 * 24 * time.Hour))
	t.Cleanup(func() { store.Close() })
	if err := store.Record(Entry{DocumentSHA256: "fresh"}); err != nil {
		t.Fatalf("Record fresh: %v", err)
	}
	if _, found, err := store.Lookup("fresh"); err != nil || !found {
		t.Fatalf("expected fresh entry, found=%v err=%v", found, err)
	}
	if got := countEntries(t, store); got != 1 {
		t.Fatalf("expected expired entries swept, %d keys left", got)
	}
}

func TestBoltStoreRejectsEmptyDigest(t *testing.T) {
	store := openTestStore(t, Options{})
	if err := store.Record(Entry{DocumentSHA256: "  "}); err == nil {
		t.Fatalf("expected error for empty digest")
	}
}

func TestNewStoreSupportsNoop(t *testing.T) {
	store, err := NewStore("none", "", Options{})
	if err != nil {
		t.Fatalf("NewStore none: %v", err)
	}
	if err := store.Record(Entry{DocumentSHA256: "x"}); err != nil {
		t.Fatalf("noop store Record: %v", err)
	}
	if _, found, _ := store.Lookup("x"); found {
		t.Fatalf("noop store must not remember entries")
	}
}

func TestNewStoreRejectsUnknownType(t *testing.T) {
	if _, err := NewStore("redis", "x", Options{}); err == nil {
		t.Fatalf("expected error for unsupported type")
	}
	if _, err := NewStore("bbolt", " ", Options{}); err == nil {
		t.Fatalf("expected error for missing bbolt path")
	}
}
