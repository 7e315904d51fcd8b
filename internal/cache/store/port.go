package store

import "context"

// Store defines the port interface for persisted fragment tables and
// snippets. Values are opaque bytes; callers own serialization.
//
// Every adapter is last-write-wins. There is no read-modify-write
// transaction, so two concurrent writers of the same key race and the
// later Set survives.
type Store interface {
	// Get returns the stored value and true, or nil and false when the key
	// is absent. A non-nil error means the backend could not be consulted.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// DeletePrefix removes every key starting with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
}
