package storage

import (
	"errors"
)

var (
	ErrNotDir   = errors.New("given root is not a directory")
	ErrInternal = errors.New("internal error")
	ErrNotExist = errors.New("key does not exist")
	ErrBadKey   = errors.New("invalid key")
)

// Storage is a small persistent key-value store. It holds state that must survive restarts, such as the
// authenticated session.
type Storage interface {
	// Get returns ErrNotExist if nothing is stored under key.
	Get(key string) ([]byte, error)
	// Set creates or replaces the value stored under key.
	Set(key string, value []byte) error
	Delete(key string) error
	// Clear removes every key.
	Clear() error
}
