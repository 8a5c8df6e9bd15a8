// Package state defines the persistent key-value store that records sync progress.
package state

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	// BackendSQLite stores values in a SQLite database file.
	BackendSQLite = "sqlite"
	// BackendFile stores values in a single JSON document.
	BackendFile = "file"
	// BackendMemory keeps values for the lifetime of the process only.
	BackendMemory = "memory"
)

// Store holds opaque serialized values keyed by name. Each Put is independent and
// durable once it returns; there is no multi-key transaction and no locking across
// processes, so concurrent runs are last-write-wins.
type Store interface {
	// Get returns the stored value and true, or nil and false when the key is absent.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Put replaces the value stored under key.
	Put(ctx context.Context, key string, value []byte) error
	// Close releases backend resources.
	Close() error
}

// DecodeError indicates that a persisted value could not be decoded into its typed form.
type DecodeError struct {
	// Key is the state key whose value was malformed.
	Key string
	// Err is the underlying codec error.
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode state key %q: %v", e.Key, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IsDecodeError reports whether err is caused by a malformed persisted value.
func IsDecodeError(err error) bool {
	var target *DecodeError
	return errors.As(err, &target)
}

// Open constructs the Store for backend. path is ignored by the memory backend.
func Open(backend, path string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case BackendSQLite, "":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("sqlite state backend requires a path")
		}
		store, err := OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		return store, nil
	case BackendFile:
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("file state backend requires a path")
		}
		return NewFileStore(path), nil
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported state backend %q", backend)
	}
}
