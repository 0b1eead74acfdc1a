// Package storage provides the persistent key-value collaborator used for
// settings and the serialized chat list.
//
// Values are opaque strings; callers own serialization. Read and write
// failures are expected to degrade silently at the call site: the chat
// store and settings layer log a warning and fall back to defaults, they
// never treat a storage failure as fatal.
package storage

import "errors"

// ErrNotFound is returned by Get when the key has no stored value.
var ErrNotFound = errors.New("storage: key not found")

// Store is a synchronous string key-value store.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(key string) (string, error)

	// Set stores value under key, replacing any previous value.
	Set(key, value string) error
}
