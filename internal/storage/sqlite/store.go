// Package sqlite implements the storage contract on SQLite.
//
// The pure-Go modernc driver makes this backend suitable both for small
// standalone deployments and for hermetic end-to-end tests. Timestamps and
// dates are stored as TEXT; the loader hands them over pre-formatted, so
// natural-key equality works without driver-specific time handling.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"radioetl/internal/storage"
)

func init() {
	storage.Register("sqlite", New)
}

// Store implements storage.Store for SQLite.
type Store struct {
	db *sql.DB
}

func New(ctx context.Context, cfg storage.Config) (storage.Store, error) {
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, err
	}
	// A single writer connection: the loader is sequential by design and
	// SQLite locks the database per writer anyway.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() { _ = s.db.Close() }

var schemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS genre (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL UNIQUE
);`,
	`CREATE TABLE IF NOT EXISTS radio (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL UNIQUE,
  headquarters TEXT NOT NULL,
  genre_id INTEGER NOT NULL REFERENCES genre(id)
);`,
	`CREATE TABLE IF NOT EXISTS time_slot (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  date TEXT NOT NULL,
  hour INTEGER NOT NULL,
  minute INTEGER NOT NULL,
  second INTEGER NOT NULL,
  day_of_week INTEGER NOT NULL,
  UNIQUE (date, hour, minute, second)
);`,
	`CREATE TABLE IF NOT EXISTS song_session (
  song_session_id TEXT PRIMARY KEY
);`,
	`CREATE TABLE IF NOT EXISTS song (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  title TEXT NOT NULL,
  artists TEXT NOT NULL,
  duration INTEGER,
  release_year INTEGER,
  genre_id INTEGER NOT NULL REFERENCES genre(id),
  song_session_id TEXT NOT NULL REFERENCES song_session(song_session_id)
);`,
	`CREATE TABLE IF NOT EXISTS play_session (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  listener_count INTEGER,
  song_session_id TEXT NOT NULL REFERENCES song_session(song_session_id),
  radio_id INTEGER NOT NULL REFERENCES radio(id),
  time_id INTEGER NOT NULL REFERENCES time_slot(id),
  recorded_at TEXT
);`,
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, ddl := range schemaDDL {
		if _, err := s.db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("sqlite: ensure schema: %w", err)
		}
	}
	return nil
}

func (s *Store) Begin(ctx context.Context) (storage.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlite: begin: %w", err)
	}
	return &Tx{tx: tx}, nil
}

// Tx implements storage.Tx on a database/sql transaction.
type Tx struct {
	tx *sql.Tx
}

func (t *Tx) FindOne(ctx context.Context, table string, keyCols []string, keyVals []any, selectCols []string) ([]any, bool, error) {
	q := buildFindOneSQL(table, keyCols, selectCols)

	out := make([]any, len(selectCols))
	scan := make([]any, len(selectCols))
	for i := range out {
		scan[i] = &out[i]
	}

	err := t.tx.QueryRowContext(ctx, q, keyVals...).Scan(scan...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("sqlite: find %s: %w", table, err)
	}
	return out, true, nil
}

func (t *Tx) Insert(ctx context.Context, table string, cols []string, vals []any) (int64, error) {
	q := buildInsertSQL(table, cols, false)
	res, err := t.tx.ExecContext(ctx, q, vals...)
	if err != nil {
		return 0, fmt.Errorf("sqlite: insert %s: %w", table, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("sqlite: insert %s: last insert id: %w", table, err)
	}
	return id, nil
}

// InsertIgnore relies on INSERT OR IGNORE, which needs a UNIQUE or PK
// constraint covering conflictCols in the destination table. The column list
// itself is not used in the SQL (SQLite resolves the conflict by constraint).
func (t *Tx) InsertIgnore(ctx context.Context, table string, cols []string, vals []any, conflictCols []string) error {
	_ = conflictCols

	q := buildInsertSQL(table, cols, true)
	if _, err := t.tx.ExecContext(ctx, q, vals...); err != nil {
		return fmt.Errorf("sqlite: insert ignore %s: %w", table, err)
	}
	return nil
}

func (t *Tx) Commit(ctx context.Context) error { return t.tx.Commit() }

func (t *Tx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}

// ---- SQL builders ----

func sqlIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

func buildFindOneSQL(table string, keyCols []string, selectCols []string) string {
	var b strings.Builder
	b.WriteString("SELECT ")
	for i, c := range selectCols {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(sqlIdent(c))
	}
	b.WriteString(" FROM ")
	b.WriteString(table)
	b.WriteString(" WHERE ")
	for i, c := range keyCols {
		if i > 0 {
			b.WriteString(" AND ")
		}
		b.WriteString(sqlIdent(c))
		b.WriteString(" = ?")
	}
	b.WriteString(" LIMIT 1")
	return b.String()
}

func buildInsertSQL(table string, cols []string, orIgnore bool) string {
	var b strings.Builder
	if orIgnore {
		b.WriteString("INSERT OR IGNORE INTO ")
	} else {
		b.WriteString("INSERT INTO ")
	}
	b.WriteString(table)
	b.WriteString(" (")
	for i, c := range cols {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(sqlIdent(c))
	}
	b.WriteString(") VALUES (")
	b.WriteString(strings.TrimRight(strings.Repeat("?,", len(cols)), ","))
	b.WriteString(")")
	return b.String()
}
