// Package experience persists search results across games in a BadgerDB
// store. At the root of a later search of the same position, the stored
// best move seeds the move picker ahead of an empty transposition table.
package experience

import (
	"encoding/binary"
	"encoding/json"

	"github.com/dgraph-io/badger/v4"
)

// Entry is the persisted outcome of one completed root search.
type Entry struct {
	Move  string `json:"move"` // UCI form
	Score int    `json:"score"`
	Depth int    `json:"depth"`
}

// Store wraps the BadgerDB handle.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) the experience database in dir.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func key(hash uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, hash)
	return k
}

// Record stores the search result for a position, keeping only the deepest
// result seen.
func (s *Store) Record(hash uint64, e Entry) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if item, err := txn.Get(key(hash)); err == nil {
			var old Entry
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &old)
			}); err == nil && old.Depth > e.Depth {
				return nil
			}
		}

		data, err := json.Marshal(e)
		if err != nil {
			return err
		}
		return txn.Set(key(hash), data)
	})
}

// Probe looks up the stored result for a position.
func (s *Store) Probe(hash uint64) (Entry, bool) {
	var e Entry
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(hash))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &e)
		})
	})
	if err != nil {
		return Entry{}, false
	}
	return e, true
}
