// Package kvdb persists small pieces of UI state (column visibility, chart
// metric selection) under string keys.
package kvdb

import (
	"sync"
	"time"

	bg "github.com/SSSOCPaulCote/blunderguard"
	e "github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
	yaml "gopkg.in/yaml.v2"
)

const (
	ErrBucketNotFound = bg.Error("bucket not found")
	ErrNilValue       = bg.Error("cannot save a nil value")
	ErrEmptyKey       = bg.Error("key must not be empty")
)

var (
	defaultBucketName  = []byte("flux")
	defaultOpenTimeout = 1 * time.Second
)

// Compile time checks that both backends implement Store
var (
	_ Store = (*DB)(nil)
	_ Store = (*MemoryStore)(nil)
)

// Store is the key-value persistence used by feature stores
type Store interface {
	// Load decodes the value saved under key into v. Returns false if no value exists
	Load(key string, v interface{}) (bool, error)
	// Save encodes v and stores it under key, replacing any previous value
	Save(key string, v interface{}) error
	Close() error
}

// DB is a bbolt backed Store
type DB struct {
	*bolt.DB
	bucket []byte
	sync.Mutex
}

// NewDB opens or creates the database at path and ensures its bucket exists
func NewDB(path string) (*DB, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: defaultOpenTimeout})
	if err != nil {
		return nil, e.Wrapf(err, "could not open database at %s", path)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(defaultBucketName)
		return err
	}); err != nil {
		db.Close()
		return nil, e.Wrap(err, "could not create bucket")
	}
	return &DB{DB: db, bucket: defaultBucketName}, nil
}

// Load satisfies the Store interface
func (d *DB) Load(key string, v interface{}) (bool, error) {
	if key == "" {
		return false, ErrEmptyKey
	}
	var raw []byte
	err := d.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(d.bucket)
		if bucket == nil {
			return ErrBucketNotFound
		}
		if value := bucket.Get([]byte(key)); value != nil {
			raw = make([]byte, len(value))
			copy(raw, value)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	if raw == nil {
		return false, nil
	}
	if err := yaml.Unmarshal(raw, v); err != nil {
		return false, e.Wrapf(err, "could not decode value for %s", key)
	}
	return true, nil
}

// Save satisfies the Store interface
func (d *DB) Save(key string, v interface{}) error {
	if key == "" {
		return ErrEmptyKey
	}
	if v == nil {
		return ErrNilValue
	}
	raw, err := yaml.Marshal(v)
	if err != nil {
		return e.Wrapf(err, "could not encode value for %s", key)
	}
	d.Mutex.Lock()
	defer d.Mutex.Unlock()
	return d.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(d.bucket)
		if bucket == nil {
			return ErrBucketNotFound
		}
		return bucket.Put([]byte(key), raw)
	})
}

// Close closes the underlying database
func (d *DB) Close() error {
	return d.DB.Close()
}

// MemoryStore is an in-memory Store. Values are encoded the same way as DB so
// callers never share references with the store.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string][]byte)}
}

// Load satisfies the Store interface
func (m *MemoryStore) Load(key string, v interface{}) (bool, error) {
	if key == "" {
		return false, ErrEmptyKey
	}
	m.mu.RLock()
	raw, ok := m.values[key]
	m.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := yaml.Unmarshal(raw, v); err != nil {
		return false, e.Wrapf(err, "could not decode value for %s", key)
	}
	return true, nil
}

// Save satisfies the Store interface
func (m *MemoryStore) Save(key string, v interface{}) error {
	if key == "" {
		return ErrEmptyKey
	}
	if v == nil {
		return ErrNilValue
	}
	raw, err := yaml.Marshal(v)
	if err != nil {
		return e.Wrapf(err, "could not encode value for %s", key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = raw
	return nil
}

// Close satisfies the Store interface
func (m *MemoryStore) Close() error {
	return nil
}
