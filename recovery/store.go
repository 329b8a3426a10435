package recovery

import (
	"errors"
	"fmt"
	"path/filepath"

	"go.etcd.io/bbolt"

	"github.com/joetucek/foedus-code/xctid"
)

var recordsBucket = []byte("records")

// Store is a demonstration recovery store: a single bbolt bucket
// mapping a record key to its persisted version stamp. It plays the
// role of the module's out-of-scope snapshot manager just far enough
// to exercise the codec in this package against real on-disk bytes.
type Store struct {
	db *bbolt.DB
}

// Open opens (creating if necessary) a bbolt-backed Store in dataDir.
func Open(dataDir string) (*Store, error) {
	db, err := bbolt.Open(filepath.Join(dataDir, "recovery.bbolt"), 0644, nil)
	if err != nil {
		return nil, fmt.Errorf("recovery: open failed: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(recordsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("recovery: create bucket failed: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put persists the version stamp for key, masking off its status bits
// per this module's persisted-shape rule.
func (s *Store) Put(key []byte, stamp xctid.VersionStamp) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(recordsBucket).Put(key, Encode(stamp))
	})
}

// Get reads back the version stamp persisted for key. It returns
// ErrNotFound if no stamp has been persisted for key.
func (s *Store) Get(key []byte) (xctid.VersionStamp, error) {
	var stamp xctid.VersionStamp
	err := s.db.View(func(tx *bbolt.Tx) error {
		buf := tx.Bucket(recordsBucket).Get(key)
		if buf == nil {
			return ErrNotFound
		}
		decoded, err := Decode(buf)
		if err != nil {
			return err
		}
		stamp = decoded
		return nil
	})
	return stamp, err
}

// ErrNotFound is returned by Store.Get when key has never been put.
var ErrNotFound = errors.New("recovery: key not found")
