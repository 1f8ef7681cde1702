// Package storage defines the backend-agnostic store contract the loader
// writes through, plus the factory registry backends self-register with.
//
// The contract is intentionally minimal: one natural-key lookup, one insert
// that returns the generated id, one idempotent insert, and transactions.
// Each backend implements these semantics in its own idiomatic way (Postgres
// ON CONFLICT, SQLite OR IGNORE, SQL Server IF NOT EXISTS).
package storage

import (
	"context"
	"fmt"
	"sync"
)

// Config selects and connects a backend.
type Config struct {
	Kind string `json:"kind"` // registered backend kind: "postgres", "sqlite", "mssql"
	DSN  string `json:"dsn"`
}

// Store is a connected backend. A Store hands out transactions; all loader
// writes go through a Tx.
type Store interface {
	// Close releases backend resources. Call once at shutdown.
	Close()

	// EnsureSchema creates the radio schema idempotently
	// (CREATE TABLE IF NOT EXISTS or the backend equivalent).
	EnsureSchema(ctx context.Context) error

	// Begin opens the run transaction.
	Begin(ctx context.Context) (Tx, error)
}

// Tx is one open transaction. Exactly one of Commit or Rollback must be
// called; Rollback after Commit must be a no-op so callers can defer it.
type Tx interface {
	// FindOne fetches selectCols from the first row matching all key
	// columns. found=false with a nil error means no row.
	FindOne(ctx context.Context, table string, keyCols []string, keyVals []any, selectCols []string) (row []any, found bool, err error)

	// Insert writes one row and returns the generated id. Only valid for
	// tables with an auto-generated integer id.
	Insert(ctx context.Context, table string, cols []string, vals []any) (int64, error)

	// InsertIgnore writes one row, silently doing nothing when the
	// uniqueness constraint over conflictCols is already satisfied.
	InsertIgnore(ctx context.Context, table string, cols []string, vals []any, conflictCols []string) error

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Table and column names of the radio schema. The loader and every backend
// share these; DDL lives with the backends.
const (
	TableGenre       = "genre"
	TableRadio       = "radio"
	TableTimeSlot    = "time_slot"
	TableSongSession = "song_session"
	TableSong        = "song"
	TablePlaySession = "play_session"
)

// ---- backend factories ----

type factory func(ctx context.Context, cfg Config) (Store, error)

var (
	mu        sync.RWMutex
	factories = map[string]factory{}
)

// Register registers a backend under a kind. Backends call this from init();
// registering a kind twice panics to fail fast on ambiguous selection.
func Register(kind string, f factory) {
	mu.Lock()
	defer mu.Unlock()

	if kind == "" {
		panic("storage: Register called with empty kind")
	}
	if f == nil {
		panic("storage: Register called with nil factory")
	}
	if _, exists := factories[kind]; exists {
		panic(fmt.Sprintf("storage: factory already registered for kind=%q", kind))
	}
	factories[kind] = f
}

// New constructs a Store using the registered factory for cfg.Kind.
func New(ctx context.Context, cfg Config) (Store, error) {
	if cfg.Kind == "" {
		return nil, fmt.Errorf("storage: missing storage.kind")
	}

	mu.RLock()
	f := factories[cfg.Kind]
	mu.RUnlock()

	if f == nil {
		return nil, fmt.Errorf("storage: unsupported storage.kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}
