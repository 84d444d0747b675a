package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/jamesainslie/sweepsum/pkg/sweepsum/logging"
)

var logger = logging.Get("history")

var (
	// ErrNotFound is returned when no entry matches an ID.
	ErrNotFound = errors.New("history entry not found")

	// ErrAmbiguousID is returned when an ID prefix matches several entries.
	ErrAmbiguousID = errors.New("history entry ID is ambiguous")
)

// keyPrefix namespaces run entries. IDs are version 7 UUIDs, so keys sort
// by creation time.
var keyPrefix = []byte("run/")

func entryKey(id string) []byte {
	return append(append([]byte{}, keyPrefix...), id...)
}

// Store wraps Badger for run history.
type Store struct {
	db *badger.DB
}

// Open opens or creates a history store in dir.
func Open(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("history directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Disable badger logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening history store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the store.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record assigns e an ID and timestamp when unset and persists it.
func (s *Store) Record(e *Entry) error {
	if e.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("generating entry ID: %w", err)
		}
		e.ID = id.String()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(entryKey(e.ID), value)
	}); err != nil {
		return fmt.Errorf("failed to write history entry: %w", err)
	}

	logger.Debug("recorded run", "id", e.ID, "operation", e.Operation)
	return nil
}

// List returns entries newest first. If limit is 0 or negative, all
// entries are returned.
func (s *Store) List(limit int) ([]Entry, error) {
	entries := []Entry{}

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = keyPrefix
		it := txn.NewIterator(opts)
		defer it.Close()

		// Reverse iteration seeks to the largest key under the prefix.
		seek := append(append([]byte{}, keyPrefix...), 0xff)
		for it.Seek(seek); it.ValidForPrefix(keyPrefix); it.Next() {
			if limit > 0 && len(entries) >= limit {
				break
			}
			var e Entry
			if err := it.Item().Value(func(v []byte) error {
				return json.Unmarshal(v, &e)
			}); err != nil {
				// Skip entries that can't be parsed
				logger.Warn("skipping unreadable history entry", "key", string(it.Item().Key()), "error", err)
				continue
			}
			entries = append(entries, e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Get retrieves an entry by ID or by a unique ID prefix.
func (s *Store) Get(id string) (*Entry, error) {
	if id == "" {
		return nil, errors.New("entry ID cannot be empty")
	}

	var entry Entry
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(entryKey(id))
		if err == nil {
			return item.Value(func(v []byte) error {
				return json.Unmarshal(v, &entry)
			})
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		prefix := entryKey(id)
		it := txn.NewIterator(badger.IteratorOptions{Prefix: prefix})
		defer it.Close()

		var found *badger.Item
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if found != nil {
				return fmt.Errorf("%w: %s", ErrAmbiguousID, id)
			}
			found = it.Item()
		}
		if found == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return found.Value(func(v []byte) error {
			return json.Unmarshal(v, &entry)
		})
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Cleanup removes entries older than retentionDays and returns how many
// were removed. A non-positive retention keeps everything.
func (s *Store) Cleanup(retentionDays int) (int, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	var stale [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: keyPrefix, PrefetchValues: true, PrefetchSize: 100})
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var e Entry
			if err := it.Item().Value(func(v []byte) error {
				return json.Unmarshal(v, &e)
			}); err != nil {
				continue
			}
			if e.Timestamp.Before(cutoff) {
				stale = append(stale, it.Item().KeyCopy(nil))
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, key := range stale {
		if err := wb.Delete(key); err != nil {
			return 0, err
		}
	}
	if err := wb.Flush(); err != nil {
		return 0, fmt.Errorf("removing history entries: %w", err)
	}

	logger.Info("history cleaned", "removed", len(stale), "retention_days", retentionDays)
	return len(stale), nil
}
