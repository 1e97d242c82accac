// Package archive provides blob storage for raw analysis inputs and
// results.
package archive

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
)

// Storage provides blob storage.
type Storage interface {
	// Has returns true if a blob with the given key exists.
	Has(ctx context.Context, key string) (bool, error)

	// Get returns the blob stored under key.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores a blob under key.
	Put(ctx context.Context, key string, data []byte) error
}

// Digest returns the content digest blobs are keyed by. Identical content
// always produces an identical key so re-archiving is harmless.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
