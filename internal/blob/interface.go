package blob

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get for keys that do not exist
var ErrNotFound = errors.New("object not found")

// Store is a key/value object store holding one logical bucket
type Store interface {
	Bucket() string
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, body []byte) error
	Exists(ctx context.Context, key string) (bool, error)
	List(ctx context.Context, prefix string) ([]string, error)
}
