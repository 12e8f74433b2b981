package store

import (
	"context"
	"encoding/binary"
	"fmt"
	"path/filepath"

	bolt "go.etcd.io/bbolt"
)

const notifiedBktName = "notified"

// DefaultBoltFileName is the name of the bolt file in the store directory.
const DefaultBoltFileName = "hn-telegram.db"

// Bolt keeps the notified set in a BoltDB bucket, one key per id.
type Bolt struct {
	db *bolt.DB
}

// NewBolt creates new Bolt storage in the given file.
func NewBolt(path string) (*Bolt, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to make boltdb for %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(notifiedBktName)); err != nil {
			return fmt.Errorf("create top-level bucket %s: %w", notifiedBktName, err)
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("make buckets: %w", err)
	}

	return &Bolt{db: db}, nil
}

// Load returns all ids from storage.
func (b *Bolt) Load(context.Context) ([]uint64, error) {
	var ids []uint64
	err := b.db.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(notifiedBktName))
		return bkt.ForEach(func(k, _ []byte) error {
			if len(k) != 8 {
				return fmt.Errorf("malformed key %x", k)
			}
			ids = append(ids, binary.BigEndian.Uint64(k))
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("view storage: %w", err)
	}
	return ids, nil
}

// Save puts all ids to storage in a single transaction.
// Keys are only added, the stored set is the union of all saved sets.
func (b *Bolt) Save(_ context.Context, ids []uint64) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(notifiedBktName))

		for _, id := range ids {
			key := make([]byte, 8)
			binary.BigEndian.PutUint64(key, id)
			if err := bkt.Put(key, []byte{}); err != nil {
				return fmt.Errorf("put id %d: %w", id, err)
			}
		}

		return nil
	})
	if err != nil {
		return &PersistError{Location: b.db.Path(), Err: fmt.Errorf("update storage: %w", err)}
	}

	return nil
}

// Close closes the storage.
func (b *Bolt) Close() error { return b.db.Close() }

// BoltPath returns the bolt file location inside dir.
func BoltPath(dir string) string { return filepath.Join(dir, DefaultBoltFileName) }
