// Package tilestore persists tile payloads in a bbolt database, one bucket
// per dataset, keyed by the packed tile key in big-endian order so a
// cursor walks tiles level by level.
package tilestore

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-globe/internal/engine/tile"
	"github.com/Faultbox/midgard-globe/internal/logger"
)

var (
	// ErrNotFound reports a tile absent from the store. It matches
	// fs.ErrNotExist so readers need not import this package.
	ErrNotFound = fmt.Errorf("tilestore: tile not found: %w", fs.ErrNotExist)

	// ErrClosed reports use of a closed store.
	ErrClosed = errors.New("tilestore: closed")
)

// openTimeout bounds the wait for another process's file lock.
const openTimeout = 2 * time.Second

// Store is a bbolt-backed tile payload store. It is safe for concurrent
// use.
type Store struct {
	db   *bolt.DB
	path string
	log  *zap.Logger
}

// Open opens or creates the store at path, creating parent directories.
// A file that exists but cannot be opened is moved aside and replaced by
// an empty store.
func Open(path string) (*Store, error) {
	log := logger.Named("tilestore")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("tile store directory: %w", err)
	}

	opts := &bolt.Options{Timeout: openTimeout}
	db, err := bolt.Open(path, 0o600, opts)
	if err != nil {
		if _, statErr := os.Stat(path); statErr != nil || errors.Is(err, bolt.ErrTimeout) {
			return nil, fmt.Errorf("open tile store %s: %w", path, err)
		}
		backup := path + ".corrupt." + time.Now().Format("20060102_150405")
		log.Warn("tile store unreadable, starting empty",
			zap.String("path", path), zap.String("backup", backup), zap.Error(err))
		if renameErr := os.Rename(path, backup); renameErr != nil {
			return nil, fmt.Errorf("open tile store %s: %w", path, multierr.Append(err, renameErr))
		}
		if db, err = bolt.Open(path, 0o600, opts); err != nil {
			return nil, fmt.Errorf("recreate tile store %s: %w", path, err)
		}
	}
	return &Store{db: db, path: path, log: log}, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

func encodeKey(k tile.Key) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], k.Pack())
	return buf[:]
}

func decodeKey(b []byte) tile.Key {
	return tile.UnpackKey(binary.BigEndian.Uint64(b))
}

// Put stores payload for the tile in dataset, replacing any previous
// payload.
func (s *Store) Put(dataset string, k tile.Key, payload []byte) error {
	return s.PutBatch(dataset, map[tile.Key][]byte{k: payload})
}

// PutBatch stores many payloads in a single transaction.
func (s *Store) PutBatch(dataset string, payloads map[tile.Key][]byte) error {
	if len(payloads) == 0 {
		return nil
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(dataset))
		if err != nil {
			return err
		}
		for k, p := range payloads {
			if err := b.Put(encodeKey(k), p); err != nil {
				return fmt.Errorf("tile %v: %w", k, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", dataset, s.wrap(err))
	}
	return nil
}

// Get returns a copy of the tile's payload, or ErrNotFound.
func (s *Store) Get(dataset string, k tile.Key) ([]byte, error) {
	var out []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(dataset))
		if b == nil {
			return ErrNotFound
		}
		v := b.Get(encodeKey(k))
		if v == nil {
			return ErrNotFound
		}
		out = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get %s %v: %w", dataset, k, s.wrap(err))
	}
	return out, nil
}

// Has reports whether the tile is stored.
func (s *Store) Has(dataset string, k tile.Key) (bool, error) {
	var ok bool
	err := s.db.View(func(tx *bolt.Tx) error {
		if b := tx.Bucket([]byte(dataset)); b != nil {
			ok = b.Get(encodeKey(k)) != nil
		}
		return nil
	})
	return ok, s.wrap(err)
}

// Delete removes the tile. Deleting an absent tile is not an error.
func (s *Store) Delete(dataset string, k tile.Key) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(dataset))
		if b == nil {
			return nil
		}
		return b.Delete(encodeKey(k))
	})
	if err != nil {
		return fmt.Errorf("delete %s %v: %w", dataset, k, s.wrap(err))
	}
	return nil
}

// Count returns the number of tiles in dataset.
func (s *Store) Count(dataset string) (int, error) {
	var n int
	err := s.db.View(func(tx *bolt.Tx) error {
		if b := tx.Bucket([]byte(dataset)); b != nil {
			n = b.Stats().KeyN
		}
		return nil
	})
	return n, s.wrap(err)
}

// Keys returns the tile keys of dataset at level, in row then column
// order.
func (s *Store) Keys(dataset string, level int) ([]tile.Key, error) {
	var keys []tile.Key
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(dataset))
		if b == nil {
			return nil
		}
		c := b.Cursor()
		prefix := encodeKey(tile.Key{Level: level})
		for k, _ := c.Seek(prefix); k != nil; k, _ = c.Next() {
			key := decodeKey(k)
			if key.Level != level {
				break
			}
			keys = append(keys, key)
		}
		return nil
	})
	return keys, s.wrap(err)
}

// Datasets returns the names of the stored datasets.
func (s *Store) Datasets() ([]string, error) {
	var names []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.ForEach(func(name []byte, _ *bolt.Bucket) error {
			names = append(names, string(name))
			return nil
		})
	})
	return names, s.wrap(err)
}

// Dataset returns a reader bound to one dataset.
func (s *Store) Dataset(name string) *Dataset {
	return &Dataset{store: s, name: name}
}

// Close closes the database.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close tile store %s: %w", s.path, err)
	}
	return nil
}

func (s *Store) wrap(err error) error {
	if errors.Is(err, bolt.ErrDatabaseNotOpen) {
		return multierr.Append(ErrClosed, err)
	}
	return err
}

// Dataset reads the tiles of one dataset. It satisfies the imagery
// layer's retriever interface.
type Dataset struct {
	store *Store
	name  string
}

// Name returns the dataset name.
func (d *Dataset) Name() string { return d.name }

// Retrieve returns the tile's payload, or an error wrapping ErrNotFound.
func (d *Dataset) Retrieve(ctx context.Context, k tile.Key) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return d.store.Get(d.name, k)
}
