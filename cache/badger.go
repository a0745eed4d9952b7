package cache

import (
	"github.com/dgraph-io/badger"

	"github.com/toba/osm-router/logging"
)

var log = logging.NewLogger("cache")

func openBadger(dir string, opts Options) (*badger.DB, error) {
	bopts := badger.DefaultOptions
	bopts.Dir = dir
	bopts.ValueDir = dir
	bopts.SyncWrites = opts.SyncWrites
	return badger.Open(bopts)
}

// get returns a copy of the value for key, or ErrNotFound.
func get(db *badger.DB, key []byte) ([]byte, error) {
	var data []byte
	err := db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	return data, err
}

const batchSize = 4096

type entry struct {
	key, value []byte
}

// batch collects writes and stores them with one Update per batchSize
// entries.
type batch struct {
	db      *badger.DB
	pending []entry
	n       int
}

func newBatch(db *badger.DB) *batch {
	return &batch{db: db}
}

// Set queues key and value. Both must not be modified afterwards.
func (b *batch) Set(key, value []byte) error {
	b.pending = append(b.pending, entry{key, value})
	if len(b.pending) >= batchSize {
		return b.flush()
	}
	return nil
}

// Commit writes all queued entries.
func (b *batch) Commit() error {
	return b.flush()
}

func (b *batch) flush() error {
	if err := update(b.db, b.pending); err != nil {
		return err
	}
	b.n += len(b.pending)
	b.pending = b.pending[:0]
	return nil
}

// update writes entries in a single transaction. Entries that do not fit
// into one transaction are split in halves.
func update(db *badger.DB, entries []entry) error {
	if len(entries) == 0 {
		return nil
	}
	err := db.Update(func(txn *badger.Txn) error {
		for _, e := range entries {
			if err := txn.Set(e.key, e.value); err != nil {
				return err
			}
		}
		return nil
	})
	if err == badger.ErrTxnTooBig && len(entries) > 1 {
		half := len(entries) / 2
		if err := update(db, entries[:half]); err != nil {
			return err
		}
		return update(db, entries[half:])
	}
	return err
}

// iter calls fn for each key with prefix. The value is only valid
// during fn.
func iter(db *badger.DB, prefix []byte, fn func(key, value []byte) error) error {
	return db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			key := item.Key()
			if err := item.Value(func(val []byte) error {
				return fn(key, val)
			}); err != nil {
				return err
			}
		}
		return nil
	})
}
