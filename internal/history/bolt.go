package history

import (
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/Iron-Ham/adaptui/internal/errors"
)

// DefaultFileName is the journal file created inside the state directory.
const DefaultFileName = "history.db"

var (
	recordsBucket = []byte("adaptations")
	indexBucket   = []byte("adaptations_by_id")
)

// BoltStore is a Store backed by a bbolt file. Records are keyed by
// applied time so cursors walk them chronologically.
type BoltStore struct {
	mu     sync.RWMutex
	db     *bolt.DB
	path   string
	closed bool
}

// OpenBolt opens or creates the journal at path.
func OpenBolt(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.NewStoreError("create history directory", err).WithPath(path)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.NewStoreError("open history", err).WithPath(path)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{recordsBucket, indexBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.NewStoreError("create buckets", err).WithPath(path)
	}
	return &BoltStore{db: db, path: path}, nil
}

// Path returns the journal file path.
func (s *BoltStore) Path() string { return s.path }

// recordKey orders by applied time, then by ID for records applied in the
// same nanosecond.
func recordKey(r Record) []byte {
	key := make([]byte, 8, 8+len(r.ID))
	binary.BigEndian.PutUint64(key, uint64(r.AppliedAt.UnixNano()))
	return append(key, r.ID...)
}

func (s *BoltStore) view(fn func(tx *bolt.Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return errors.ErrHistoryClosed
	}
	return s.db.View(fn)
}

// Put stores r. A record with an existing ID replaces the old one.
func (s *BoltStore) Put(r Record) error {
	if r.ID == "" {
		return errors.NewValidationError("record id is required").WithField("id")
	}
	data, err := json.Marshal(r)
	if err != nil {
		return errors.NewStoreError("encode record", err).WithBucket(string(recordsBucket))
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return errors.ErrHistoryClosed
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		records := tx.Bucket(recordsBucket)
		index := tx.Bucket(indexBucket)
		if old := index.Get([]byte(r.ID)); old != nil {
			if err := records.Delete(old); err != nil {
				return err
			}
		}
		key := recordKey(r)
		if err := records.Put(key, data); err != nil {
			return err
		}
		return index.Put([]byte(r.ID), key)
	})
	if err != nil {
		return errors.NewStoreError("put record", err).WithPath(s.path).WithBucket(string(recordsBucket))
	}
	return nil
}

// Get returns the record with id.
func (s *BoltStore) Get(id string) (Record, error) {
	var r Record
	err := s.view(func(tx *bolt.Tx) error {
		key := tx.Bucket(indexBucket).Get([]byte(id))
		if key == nil {
			return errors.NewNotFoundError("adaptation", id).WithCause(errors.ErrRecordNotFound)
		}
		data := tx.Bucket(recordsBucket).Get(key)
		if data == nil {
			return errors.NewNotFoundError("adaptation", id).WithCause(errors.ErrRecordNotFound)
		}
		return json.Unmarshal(data, &r)
	})
	return r, err
}

// List returns up to limit records, newest first.
func (s *BoltStore) List(limit int) ([]Record, error) {
	var out []Record
	err := s.view(func(tx *bolt.Tx) error {
		c := tx.Bucket(recordsBucket).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(out) >= limit {
				break
			}
			var r Record
			if err := json.Unmarshal(v, &r); err != nil {
				return errors.NewStoreError("decode record", err).WithBucket(string(recordsBucket))
			}
			out = append(out, r)
		}
		return nil
	})
	return out, err
}

// Count returns the number of stored records.
func (s *BoltStore) Count() (int, error) {
	var n int
	err := s.view(func(tx *bolt.Tx) error {
		n = tx.Bucket(recordsBucket).Stats().KeyN
		return nil
	})
	return n, err
}

// Close closes the journal. Later calls fail with ErrHistoryClosed.
func (s *BoltStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
