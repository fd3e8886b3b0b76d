package cache

import (
	"context"
	"errors"
)

// DocumentCache caches serialized documents by key.
type DocumentCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, doc []byte) error
	Delete(ctx context.Context, key string) error
}

var ErrCacheMiss = errors.New("cache miss")
