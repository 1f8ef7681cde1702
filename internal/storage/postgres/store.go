// Package postgres implements the storage contract on Postgres via pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"radioetl/internal/storage"
)

func init() {
	storage.Register("postgres", New)
}

// Store implements storage.Store for Postgres.
type Store struct {
	pool *pgxpool.Pool
}

// New connects a pgx pool and validates connectivity.
func New(ctx context.Context, cfg storage.Config) (storage.Store, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() { s.pool.Close() }

// schemaDDL creates the radio star schema. Statements are ordered so foreign
// key targets exist before their referents.
var schemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS genre (
  id BIGSERIAL PRIMARY KEY,
  name TEXT NOT NULL UNIQUE
);`,
	`CREATE TABLE IF NOT EXISTS radio (
  id BIGSERIAL PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  headquarters TEXT NOT NULL,
  genre_id BIGINT NOT NULL REFERENCES genre(id)
);`,
	`CREATE TABLE IF NOT EXISTS time_slot (
  id BIGSERIAL PRIMARY KEY,
  date DATE NOT NULL,
  hour INT NOT NULL,
  minute INT NOT NULL,
  second INT NOT NULL,
  day_of_week INT NOT NULL,
  UNIQUE (date, hour, minute, second)
);`,
	`CREATE TABLE IF NOT EXISTS song_session (
  song_session_id TEXT PRIMARY KEY
);`,
	`CREATE TABLE IF NOT EXISTS song (
  id BIGSERIAL PRIMARY KEY,
  title TEXT NOT NULL,
  artists TEXT NOT NULL,
  duration BIGINT,
  release_year BIGINT,
  genre_id BIGINT NOT NULL REFERENCES genre(id),
  song_session_id TEXT NOT NULL REFERENCES song_session(song_session_id)
);`,
	`CREATE TABLE IF NOT EXISTS play_session (
  id BIGSERIAL PRIMARY KEY,
  listener_count BIGINT,
  song_session_id TEXT NOT NULL REFERENCES song_session(song_session_id),
  radio_id BIGINT NOT NULL REFERENCES radio(id),
  time_id BIGINT NOT NULL REFERENCES time_slot(id),
  recorded_at TIMESTAMP
);`,
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, ddl := range schemaDDL {
		if _, err := s.pool.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("postgres: ensure schema: %w", err)
		}
	}
	return nil
}

func (s *Store) Begin(ctx context.Context) (storage.Tx, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("postgres: begin: %w", err)
	}
	return &Tx{tx: tx}, nil
}

// Tx implements storage.Tx on a pgx transaction.
type Tx struct {
	tx pgx.Tx
}

func (t *Tx) FindOne(ctx context.Context, table string, keyCols []string, keyVals []any, selectCols []string) ([]any, bool, error) {
	q := buildFindOneSQL(table, keyCols, selectCols)

	out := make([]any, len(selectCols))
	scan := make([]any, len(selectCols))
	for i := range out {
		scan[i] = &out[i]
	}

	err := t.tx.QueryRow(ctx, q, keyVals...).Scan(scan...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("postgres: find %s: %w", table, err)
	}
	return out, true, nil
}

func (t *Tx) Insert(ctx context.Context, table string, cols []string, vals []any) (int64, error) {
	q := buildInsertSQL(table, cols, true, nil)

	var id int64
	if err := t.tx.QueryRow(ctx, q, vals...).Scan(&id); err != nil {
		return 0, fmt.Errorf("postgres: insert %s: %w", table, err)
	}
	return id, nil
}

func (t *Tx) InsertIgnore(ctx context.Context, table string, cols []string, vals []any, conflictCols []string) error {
	q := buildInsertSQL(table, cols, false, conflictCols)
	if _, err := t.tx.Exec(ctx, q, vals...); err != nil {
		return fmt.Errorf("postgres: insert ignore %s: %w", table, err)
	}
	return nil
}

func (t *Tx) Commit(ctx context.Context) error { return t.tx.Commit(ctx) }

func (t *Tx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	return err
}

// ---- SQL builders (pure, unit-testable) ----

func pgIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

func buildFindOneSQL(table string, keyCols []string, selectCols []string) string {
	var b strings.Builder
	b.WriteString("SELECT ")
	for i, c := range selectCols {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(pgIdent(c))
	}
	b.WriteString(" FROM ")
	b.WriteString(table)
	b.WriteString(" WHERE ")
	for i, c := range keyCols {
		if i > 0 {
			b.WriteString(" AND ")
		}
		fmt.Fprintf(&b, "%s = $%d", pgIdent(c), i+1)
	}
	b.WriteString(" LIMIT 1")
	return b.String()
}

// buildInsertSQL constructs a single-row INSERT. With returningID it appends
// RETURNING id; with conflictCols it appends ON CONFLICT (...) DO NOTHING,
// which makes the insert idempotent against the matching unique constraint.
func buildInsertSQL(table string, cols []string, returningID bool, conflictCols []string) string {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(table)
	b.WriteString(" (")
	for i, c := range cols {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(pgIdent(c))
	}
	b.WriteString(") VALUES (")
	for i := range cols {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "$%d", i+1)
	}
	b.WriteString(")")

	if len(conflictCols) > 0 {
		b.WriteString(" ON CONFLICT (")
		for i, c := range conflictCols {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(pgIdent(c))
		}
		b.WriteString(") DO NOTHING")
	}
	if returningID {
		b.WriteString(" RETURNING id")
	}
	return b.String()
}
