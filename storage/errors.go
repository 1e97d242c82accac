// Package storage persists application records in pluggable key-value
// backends.
package storage

import "github.com/pkg/errors"

// ErrNotFound is returned from reads and deletes of records that do not
// exist. Compare with errors.Cause; backends wrap it with context.
var ErrNotFound = errors.New("not found")
