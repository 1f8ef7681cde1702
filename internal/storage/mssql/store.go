// Package mssql implements the storage contract on Microsoft SQL Server.
//
// Differences from the other backends:
//   - no INSERT ... ON CONFLICT / OR IGNORE: idempotent inserts use an
//     IF NOT EXISTS guard over the conflict columns
//   - generated ids come back through OUTPUT INSERTED.id
//   - placeholders are @p1..@pN
package mssql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/microsoft/go-mssqldb"

	"radioetl/internal/storage"
)

func init() {
	storage.Register("mssql", New)
}

// Store implements storage.Store for SQL Server.
type Store struct {
	db *sql.DB
}

func New(ctx context.Context, cfg storage.Config) (storage.Store, error) {
	db, err := sql.Open("sqlserver", cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() { _ = s.db.Close() }

// schemaDDL uses OBJECT_ID guards since SQL Server has no
// CREATE TABLE IF NOT EXISTS.
var schemaDDL = []string{
	`IF OBJECT_ID(N'genre', N'U') IS NULL
CREATE TABLE genre (
  id BIGINT IDENTITY(1,1) PRIMARY KEY,
  name NVARCHAR(255) NOT NULL UNIQUE
);`,
	`IF OBJECT_ID(N'radio', N'U') IS NULL
CREATE TABLE radio (
  id BIGINT IDENTITY(1,1) PRIMARY KEY,
  name NVARCHAR(255) NOT NULL UNIQUE,
  headquarters NVARCHAR(255) NOT NULL,
  genre_id BIGINT NOT NULL REFERENCES genre(id)
);`,
	`IF OBJECT_ID(N'time_slot', N'U') IS NULL
CREATE TABLE time_slot (
  id BIGINT IDENTITY(1,1) PRIMARY KEY,
  date DATE NOT NULL,
  hour INT NOT NULL,
  minute INT NOT NULL,
  second INT NOT NULL,
  day_of_week INT NOT NULL,
  CONSTRAINT uq_time_slot UNIQUE (date, hour, minute, second)
);`,
	`IF OBJECT_ID(N'song_session', N'U') IS NULL
CREATE TABLE song_session (
  song_session_id NVARCHAR(64) PRIMARY KEY
);`,
	`IF OBJECT_ID(N'song', N'U') IS NULL
CREATE TABLE song (
  id BIGINT IDENTITY(1,1) PRIMARY KEY,
  title NVARCHAR(512) NOT NULL,
  artists NVARCHAR(1024) NOT NULL,
  duration BIGINT,
  release_year BIGINT,
  genre_id BIGINT NOT NULL REFERENCES genre(id),
  song_session_id NVARCHAR(64) NOT NULL REFERENCES song_session(song_session_id)
);`,
	`IF OBJECT_ID(N'play_session', N'U') IS NULL
CREATE TABLE play_session (
  id BIGINT IDENTITY(1,1) PRIMARY KEY,
  listener_count BIGINT,
  song_session_id NVARCHAR(64) NOT NULL REFERENCES song_session(song_session_id),
  radio_id BIGINT NOT NULL REFERENCES radio(id),
  time_id BIGINT NOT NULL REFERENCES time_slot(id),
  recorded_at DATETIME2
);`,
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, ddl := range schemaDDL {
		if _, err := s.db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("mssql: ensure schema: %w", err)
		}
	}
	return nil
}

func (s *Store) Begin(ctx context.Context) (storage.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("mssql: begin: %w", err)
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
		return nil, false, fmt.Errorf("mssql: find %s: %w", table, err)
	}
	return out, true, nil
}

func (t *Tx) Insert(ctx context.Context, table string, cols []string, vals []any) (int64, error) {
	q := buildInsertSQL(table, cols)

	var id int64
	if err := t.tx.QueryRowContext(ctx, q, vals...).Scan(&id); err != nil {
		return 0, fmt.Errorf("mssql: insert %s: %w", table, err)
	}
	return id, nil
}

func (t *Tx) InsertIgnore(ctx context.Context, table string, cols []string, vals []any, conflictCols []string) error {
	q, args, err := buildInsertIgnoreSQL(table, cols, vals, conflictCols)
	if err != nil {
		return fmt.Errorf("mssql: insert ignore %s: %w", table, err)
	}
	if _, err := t.tx.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("mssql: insert ignore %s: %w", table, err)
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

func msIdent(id string) string {
	return "[" + strings.ReplaceAll(id, "]", "]]") + "]"
}

func buildFindOneSQL(table string, keyCols []string, selectCols []string) string {
	var b strings.Builder
	b.WriteString("SELECT TOP 1 ")
	for i, c := range selectCols {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(msIdent(c))
	}
	b.WriteString(" FROM ")
	b.WriteString(table)
	b.WriteString(" WHERE ")
	for i, c := range keyCols {
		if i > 0 {
			b.WriteString(" AND ")
		}
		fmt.Fprintf(&b, "%s = @p%d", msIdent(c), i+1)
	}
	return b.String()
}

func buildInsertSQL(table string, cols []string) string {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(table)
	b.WriteString(" (")
	for i, c := range cols {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(msIdent(c))
	}
	b.WriteString(") OUTPUT INSERTED.id VALUES (")
	for i := range cols {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "@p%d", i+1)
	}
	b.WriteString(")")
	return b.String()
}

// buildInsertIgnoreSQL emulates insert-or-ignore with an IF NOT EXISTS guard.
// The guard predicates over conflictCols, whose values must be present in
// cols/vals; guard parameters are appended after the insert parameters.
func buildInsertIgnoreSQL(table string, cols []string, vals []any, conflictCols []string) (string, []any, error) {
	if len(conflictCols) == 0 {
		return "", nil, fmt.Errorf("conflict columns required")
	}

	pos := make(map[string]int, len(cols))
	for i, c := range cols {
		pos[c] = i
	}

	args := make([]any, 0, len(vals)+len(conflictCols))
	args = append(args, vals...)

	var b strings.Builder
	b.WriteString("IF NOT EXISTS (SELECT 1 FROM ")
	b.WriteString(table)
	b.WriteString(" WHERE ")
	for i, c := range conflictCols {
		vi, ok := pos[c]
		if !ok {
			return "", nil, fmt.Errorf("conflict column %q not in insert columns", c)
		}
		if i > 0 {
			b.WriteString(" AND ")
		}
		fmt.Fprintf(&b, "%s = @p%d", msIdent(c), len(vals)+i+1)
		args = append(args, vals[vi])
	}
	b.WriteString(") INSERT INTO ")
	b.WriteString(table)
	b.WriteString(" (")
	for i, c := range cols {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(msIdent(c))
	}
	b.WriteString(") VALUES (")
	for i := range cols {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "@p%d", i+1)
	}
	b.WriteString(")")
	return b.String(), args, nil
}
