// Package disk stores archived blobs as files on local disk.
package disk

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/cloudleakage/cloudleakage/archive"
	"github.com/pkg/errors"
)

// Storage stores blobs as files under a root directory.
type Storage struct {
	Dir string // Directory to store files in.
}

var _ archive.Storage = (*Storage)(nil)

// Has returns true if a blob with the given key exists.
func (s *Storage) Has(ctx context.Context, key string) (bool, error) {
	if _, err := os.Stat(s.path(key)); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrap(err, "stat")
	}
	return true, nil
}

// Get returns the blob stored under key.
func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := ioutil.ReadFile(s.path(key))
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}
	return data, nil
}

// Put stores a blob under key. Blobs are only readable by the current user.
func (s *Storage) Put(ctx context.Context, key string, data []byte) error {
	name := s.path(key)
	if err := os.MkdirAll(filepath.Dir(name), 0700); err != nil {
		return errors.Wrap(err, "create directory")
	}
	if err := ioutil.WriteFile(name, data, 0600); err != nil {
		return errors.Wrap(err, "write file")
	}
	return nil
}

func (s *Storage) path(key string) string {
	return filepath.Join(s.Dir, filepath.FromSlash(key))
}
