package kvbackend

import (
	"context"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudleakage/cloudleakage/storage"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

// Bolt stores key-value pairs in a bolt database file.
type Bolt struct {
	db *bolt.DB
}

// NewBolt creates a Bolt backend at the default location
// (~/.cloudleakage/data.db). The directory is created if it does not exist.
func NewBolt() (*Bolt, error) {
	u, err := user.Current()
	if err != nil {
		return nil, errors.Wrap(err, "get user")
	}
	file := filepath.Join(u.HomeDir, ".cloudleakage", "data.db")
	return NewBoltWithFile(file)
}

// NewBoltWithFile creates and opens a database at the given path. If the
// file or directory do not exist, they are created.
func NewBoltWithFile(file string) (*Bolt, error) {
	if err := os.MkdirAll(filepath.Dir(file), 0750); err != nil {
		return nil, errors.Wrapf(err, "ensure dir exists: %s", filepath.Dir(file))
	}
	db, err := bolt.Open(file, 0600, &bolt.Options{Timeout: 3 * time.Second})
	if err != nil {
		return nil, errors.Wrap(err, "open bolt db")
	}
	return &Bolt{db: db}, nil
}

// Close closes the database and releases all resources.
func (b *Bolt) Close() error {
	return b.db.Close()
}

// Put creates or updates a value.
func (b *Bolt) Put(ctx context.Context, key string, value []byte) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		buc, k, err := splitKey(key)
		if err != nil {
			return errors.Wrap(err, "get bucket name")
		}
		bkt, err := tx.CreateBucketIfNotExists(buc)
		if err != nil {
			return errors.Wrap(err, "ensure bucket exists")
		}
		return bkt.Put(k, value)
	})
}

// Get returns a single value.
func (b *Bolt) Get(ctx context.Context, key string) ([]byte, error) {
	var ret []byte
	if err := b.db.View(func(tx *bolt.Tx) error {
		buc, k, err := splitKey(key)
		if err != nil {
			return errors.Wrap(err, "get bucket name")
		}
		bkt := tx.Bucket(buc)
		if bkt == nil {
			return storage.ErrNotFound
		}
		data := bkt.Get(k)
		if len(data) == 0 {
			return storage.ErrNotFound
		}
		ret = make([]byte, len(data))
		copy(ret, data)
		return nil
	}); err != nil {
		return nil, err
	}
	return ret, nil
}

// Delete deletes a key.
func (b *Bolt) Delete(ctx context.Context, key string) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		buc, k, err := splitKey(key)
		if err != nil {
			return errors.Wrap(err, "get bucket name")
		}
		bkt := tx.Bucket(buc)
		if bkt == nil {
			return storage.ErrNotFound
		}
		if len(bkt.Get(k)) == 0 {
			return storage.ErrNotFound
		}
		if err = bkt.Delete(k); err != nil {
			return errors.Wrap(err, "delete key")
		}
		return nil
	})
}

// Scan performs a prefix scan and populates the returned map with any values
// matching the prefix.
//
// The prefix must match a bucket, that is, a key up to its last / character.
func (b *Bolt) Scan(ctx context.Context, prefix string) (map[string][]byte, error) {
	if strings.HasSuffix(prefix, "/") {
		return nil, errors.New("prefix should not contain trailing /")
	}
	ret := make(map[string][]byte)
	err := b.db.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(prefix))
		if bkt == nil {
			return nil
		}
		return bkt.ForEach(func(k, v []byte) error {
			val := make([]byte, len(v))
			copy(val, v)
			ret[prefix+"/"+string(k)] = val
			return nil
		})
	})
	return ret, err
}

// splitKey returns the bucket and key for a user specified key.
//
// Everything up to the last / becomes the bucket, the rest the key:
//
//   snapshot/abc
//   ->
//   bucket: snapshot
//   key:    abc
//
// Returns an error if the input does not contain a slash.
func splitKey(input string) (bucket, key []byte, err error) {
	if strings.HasPrefix(input, "/") {
		return nil, nil, errors.New("input cannot start with a slash")
	}
	if strings.HasSuffix(input, "/") {
		return nil, nil, errors.New("input cannot end with a slash")
	}
	slash := strings.LastIndex(input, "/")
	if slash == -1 {
		return nil, nil, errors.New("input does not contain a slash")
	}
	return []byte(input[:slash]), []byte(input[slash+1:]), nil
}
