// Package storage provides the key-value persistence medium behind the question
// and category stores. Every backend stores opaque byte values under string keys.
package storage

import (
	"context"
	"errors"
)

// ErrClosed is returned by backends used after Close.
var ErrClosed = errors.New("storage closed")

// KV is the persistence medium. Get reports ok=false when the key is absent.
type KV interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
}

// Pinger is implemented by backends that can report liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Store is a KV that owns resources which must be released on shutdown.
type Store interface {
	KV
	Close() error
}
