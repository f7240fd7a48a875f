// Package storage keeps a local history of completed extractions.
package storage

import (
	"fmt"
	"strings"
	"time"
)

// Entry records one successful extraction of a document.
type Entry struct {
	DocumentSHA256 string    `json:"document_sha256"`
	DocumentName   string    `json:"document_name"`
	XMLFilename    string    `json:"xml_filename"`
	OutputPath     string    `json:"output_path"`
	FileStatus     string    `json:"file_status,omitempty"`
	ExtractedAt    time.Time `json:"extracted_at"`
	ExpiresAt      time.Time `json:"expires_at"`
}

// Store tracks extractions keyed by document digest.
type Store interface {
	Close() error
	Lookup(sha string) (Entry, bool, error)
	Record(entry Entry) error
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	EntryTTL        time.Duration
	CleanupInterval time.Duration
}

const (
	defaultEntryTTL        = 30 * 24 * time.Hour
	defaultCleanupInterval = 24 * time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.EntryTTL <= 0 {
		opts.EntryTTL = defaultEntryTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                       { return nil }
func (noopStore) Lookup(string) (Entry, bool, error) { return Entry{}, false, nil }
func (noopStore) Record(Entry) error                 { return nil }
