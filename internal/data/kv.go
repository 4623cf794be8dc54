package data

import "context"

// Store is the key-value store every repository persists into
type Store interface {
	// Get returns the value for key; ok is false when the key does not exist
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error

	// Keys lists keys with the given prefix
	Keys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}
