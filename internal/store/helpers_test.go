package store

import (
	"context"
	"errors"
	"sync"

	"github.com/benvon/interview-tracker/internal/storage"
)

// countingKV wraps a memory KV and counts writes per key.
type countingKV struct {
	*storage.Memory
	mu     sync.Mutex
	writes map[string]int
	getErr error
}

func newCountingKV() *countingKV {
	return &countingKV{Memory: storage.NewMemory(), writes: make(map[string]int)}
}

func (c *countingKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	return c.Memory.Get(ctx, key)
}

func (c *countingKV) Set(ctx context.Context, key string, value []byte) error {
	c.mu.Lock()
	c.writes[key]++
	c.mu.Unlock()
	return c.Memory.Set(ctx, key, value)
}

func (c *countingKV) writeCount(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writes[key]
}

func (c *countingKV) raw(key string) string {
	v, _, _ := c.Memory.Get(context.Background(), key)
	return string(v)
}

var errDisk = errors.New("disk failure")

// clock returns a monotonically advancing millisecond clock starting at start.
func clock(start int64) func() int64 {
	var mu sync.Mutex
	t := start
	return func() int64 {
		mu.Lock()
		defer mu.Unlock()
		t++
		return t
	}
}
