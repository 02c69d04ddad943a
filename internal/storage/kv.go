// Package storage holds the key-value substrates the workout log can be persisted to.
package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("key not found")

// KV is a minimal key-value substrate. Get returns ErrNotFound for absent keys.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}
