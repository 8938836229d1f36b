package cache

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"go.etcd.io/bbolt"
)

const (
	// indexFileName is the BoltDB file at the cache root
	indexFileName = "index.db"

	// bucketName is the BoltDB bucket holding slot entries
	bucketName = "slots"

	indexTimeout = 1 * time.Second
)

// now is replaced in tests
var now = time.Now

// Index records finalized slots in BoltDB.
// The database is opened per operation so concurrent runs only contend briefly.
type Index struct {
	path string
}

func NewIndex(path string) *Index {
	return &Index{path: path}
}

func (ix *Index) open() (*bbolt.DB, error) {
	db, err := bbolt.Open(ix.path, 0o600, &bbolt.Options{Timeout: indexTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache index: %w", err)
	}

	// Create bucket if it doesn't exist
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache bucket: %w", err)
	}

	return db, nil
}

// Put stores or replaces the entry for e.Key
func (ix *Index) Put(e Entry) error {
	db, err := ix.open()
	if err != nil {
		return err
	}
	defer db.Close()

	return db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(e)
		if err != nil {
			return err
		}

		return tx.Bucket([]byte(bucketName)).Put([]byte(e.Key), data)
	})
}

// Get returns the entry for key, or nil on a miss
func (ix *Index) Get(key string) (*Entry, error) {
	db, err := ix.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	var entry *Entry
	err = db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(bucketName)).Get([]byte(key))
		if data == nil {
			return nil // Miss
		}

		entry = &Entry{}
		return json.Unmarshal(data, entry)
	})
	if err != nil {
		return nil, err
	}

	return entry, nil
}

// List returns all entries, most recently finalized first
func (ix *Index) List() ([]Entry, error) {
	db, err := ix.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	var entries []Entry
	err = db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).ForEach(func(_, v []byte) error {
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				return err
			}

			entries = append(entries, e)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})

	return entries, nil
}

// Count returns the number of entries
func (ix *Index) Count() (int, error) {
	db, err := ix.open()
	if err != nil {
		return 0, err
	}
	defer db.Close()

	var count int
	err = db.View(func(tx *bbolt.Tx) error {
		count = tx.Bucket([]byte(bucketName)).Stats().KeyN
		return nil
	})

	return count, err
}

// Reset drops all entries
func (ix *Index) Reset() error {
	db, err := ix.open()
	if err != nil {
		return err
	}
	defer db.Close()

	return db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket([]byte(bucketName)); err != nil {
			return err
		}

		_, err := tx.CreateBucket([]byte(bucketName))
		return err
	})
}
