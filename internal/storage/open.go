package storage

import (
	"context"
	"fmt"

	"github.com/benvon/interview-tracker/internal/database"
)

// Backend names accepted by Open.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Options selects and configures a backend.
type Options struct {
	Backend     string
	SQLitePath  string
	DatabaseURL string
	RedisURL    string
	RedisPrefix string
}

// Open creates the configured backend. The returned Store must be closed by the caller.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case BackendMemory:
		return NewMemory(), nil
	case BackendSQLite, "":
		return NewSQLite(opts.SQLitePath)
	case BackendPostgres:
		db, err := database.New(opts.DatabaseURL)
		if err != nil {
			return nil, err
		}
		repo := database.NewKVRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			_ = repo.Close()
			return nil, err
		}
		return repo, nil
	case BackendRedis:
		return DialRedis(ctx, opts.RedisURL, opts.RedisPrefix)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", opts.Backend)
	}
}

var (
	_ Store = (*Memory)(nil)
	_ Store = (*SQLite)(nil)
	_ Store = (*Redis)(nil)
	_ Store = (*database.KVRepository)(nil)
)
