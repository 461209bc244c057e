package storage

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/wbrown/janus-fixpoint/datalog"
)

// BadgerStore implements SnapshotStore using BadgerDB
type BadgerStore struct {
	db      *badger.DB
	encoder KeyEncoder
}

var _ SnapshotStore = (*BadgerStore)(nil)

// NewBadgerStore opens (or creates) a snapshot store at path. An empty path
// opens an in-memory store.
func NewBadgerStore(path string, encoder KeyEncoder) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil // Disable BadgerDB logs

	// Snapshots are written once and scanned key-only
	opts.DetectConflicts = false
	opts.NumCompactors = 2

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}

	if encoder == nil {
		encoder = NewKeyEncoder(BinaryStrategy)
	}

	return &BadgerStore{
		db:      db,
		encoder: encoder,
	}, nil
}

// SaveDatabase replaces every stored fact with the facts of db
func (s *BadgerStore) SaveDatabase(db *Database) error {
	stale, err := s.factKeys()
	if err != nil {
		return fmt.Errorf("failed to clear previous snapshot: %w", err)
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for _, key := range stale {
		if err := wb.Delete(key); err != nil {
			return fmt.Errorf("failed to clear previous snapshot: %w", err)
		}
	}

	var werr error
	db.Ascend(func(f datalog.Fact) bool {
		werr = wb.Set(s.encoder.EncodeKey(f), nil)
		return werr == nil
	})
	if werr != nil {
		return fmt.Errorf("failed to write fact: %w", werr)
	}

	if err := wb.Flush(); err != nil {
		return fmt.Errorf("failed to flush snapshot: %w", err)
	}
	return nil
}

// factKeys returns a copy of every stored fact key
func (s *BadgerStore) factKeys() ([][]byte, error) {
	var keys [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte{byte(FactNamespace)}

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	return keys, err
}

// LoadDatabase reads every stored fact
func (s *BadgerStore) LoadDatabase() (*Database, error) {
	out := NewDatabase()
	prefix := []byte{byte(FactNamespace)}
	err := s.scanKeys(prefix, prefixEnd(prefix), func(f datalog.Fact) {
		out.Add(f)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// LoadRelation reads the facts of one predicate
func (s *BadgerStore) LoadRelation(predicate string) (*Relation, error) {
	out := NewRelation(predicate)
	start, end := s.encoder.EncodePrefixRange(predicate)
	err := s.scanKeys(start, end, func(f datalog.Fact) {
		out.Add(f.Args)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// scanKeys decodes every fact key in [start, end)
func (s *BadgerStore) scanKeys(start, end []byte, fn func(datalog.Fact)) error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false // facts live entirely in the key

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(start); it.Valid(); it.Next() {
			key := it.Item().Key()
			if end != nil && bytes.Compare(key, end) >= 0 {
				break
			}
			f, err := s.encoder.DecodeKey(key)
			if err != nil {
				return fmt.Errorf("failed to decode key %x: %w", key, err)
			}
			fn(f)
		}
		return nil
	})
}

// CountFacts counts fact keys without decoding them
func (s *BadgerStore) CountFacts() (int64, error) {
	txn := s.db.NewTransaction(false)
	defer txn.Discard()

	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false // KEY ONLY - no values!
	opts.Prefix = []byte{byte(FactNamespace)}

	it := txn.NewIterator(opts)
	defer it.Close()

	var count int64
	for it.Rewind(); it.Valid(); it.Next() {
		count++
	}
	return count, nil
}

func metaKey(key string) []byte {
	return append([]byte{byte(MetaNamespace)}, key...)
}

// SetMeta stores a metadata value
func (s *BadgerStore) SetMeta(key, value string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(metaKey(key), []byte(value)); err != nil {
			return fmt.Errorf("failed to set meta %q: %w", key, err)
		}
		return nil
	})
}

// Meta fetches a metadata value. The boolean is false when the key was never
// set.
func (s *BadgerStore) Meta(key string) (string, bool, error) {
	var value string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(metaKey(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			value = string(val)
			return nil
		})
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read meta %q: %w", key, err)
	}
	return value, true, nil
}

// Close closes the store
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
