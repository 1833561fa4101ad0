package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const sqliteFileName = "moodboard.sqlite"

// fkColumns maps each collection's index field to its SQL column.
var fkColumns = map[Collection]string{
	Sections: "board_id",
	Items:    "section_id",
}

// SQLite stores each collection in its own table: the record as a JSON blob plus
// an indexed foreign-key column.
type SQLite struct {
	db   *sqlx.DB
	path string

	mu     sync.RWMutex
	closed bool
}

type sqliteRow struct {
	ID   string `db:"id"`
	FK   string `db:"fk"`
	JSON string `db:"json"`
}

func SQLitePath(dir string) string {
	return filepath.Join(filepath.Clean(dir), sqliteFileName)
}

func OpenSQLite(ctx context.Context, dir string) (*SQLite, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, storageErr("open", "", "", err)
	}
	path := SQLitePath(dir)
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, storageErr("open", "", "", err)
	}
	// Pragmas are per connection; a single connection keeps them in force.
	db.SetMaxOpenConns(1)
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, storageErr("open", "", "", err)
		}
	}
	if err := migrateSQLite(ctx, db); err != nil {
		_ = db.Close()
		return nil, storageErr("migrate", "", "", err)
	}
	return &SQLite{db: db, path: path}, nil
}

func migrateSQLite(ctx context.Context, db *sqlx.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS boards (
			id TEXT PRIMARY KEY,
			json TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS sections (
			id TEXT PRIMARY KEY,
			board_id TEXT NOT NULL,
			json TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sections_board ON sections(board_id);`,
		`CREATE TABLE IF NOT EXISTS items (
			id TEXT PRIMARY KEY,
			section_id TEXT NOT NULL,
			json TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_items_section ON items(section_id);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLite) Path() string { return s.path }

func (s *SQLite) live() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrUnavailable
	}
	return nil
}

// selectCols yields "id, <fk> AS fk, json" for the collection.
func selectCols(c Collection) string {
	if col, ok := fkColumns[c]; ok {
		return `id, ` + col + ` AS fk, json`
	}
	return `id, '' AS fk, json`
}

func (s *SQLite) Put(ctx context.Context, c Collection, row Row) error {
	if err := validateRow(c, row); err != nil {
		return storageErr("put", c, row.ID, err)
	}
	if err := s.live(); err != nil {
		return storageErr("put", c, row.ID, err)
	}
	nowMs := time.Now().UTC().UnixMilli()
	var err error
	if col, ok := fkColumns[c]; ok {
		_, err = s.db.ExecContext(ctx,
			`INSERT OR REPLACE INTO `+string(c)+`(id, `+col+`, json, updated_at_unixms) VALUES(?, ?, ?, ?)`,
			row.ID, row.Index[IndexField(c)], string(row.JSON), nowMs)
	} else {
		_, err = s.db.ExecContext(ctx,
			`INSERT OR REPLACE INTO `+string(c)+`(id, json, updated_at_unixms) VALUES(?, ?, ?)`,
			row.ID, string(row.JSON), nowMs)
	}
	return storageErr("put", c, row.ID, err)
}

func (s *SQLite) Get(ctx context.Context, c Collection, id string) (Row, bool, error) {
	if err := checkCollection(c); err != nil {
		return Row{}, false, storageErr("get", c, id, err)
	}
	if err := s.live(); err != nil {
		return Row{}, false, storageErr("get", c, id, err)
	}
	var r sqliteRow
	err := s.db.GetContext(ctx, &r, `SELECT `+selectCols(c)+` FROM `+string(c)+` WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Row{}, false, nil
	}
	if err != nil {
		return Row{}, false, storageErr("get", c, id, err)
	}
	return r.toRow(c), true, nil
}

func (s *SQLite) QueryByIndex(ctx context.Context, c Collection, field, value string) ([]Row, error) {
	if err := checkIndex(c, field); err != nil {
		return nil, storageErr("query", c, "", err)
	}
	if err := s.live(); err != nil {
		return nil, storageErr("query", c, "", err)
	}
	var rs []sqliteRow
	q := `SELECT ` + selectCols(c) + ` FROM ` + string(c) + ` WHERE ` + fkColumns[c] + ` = ? ORDER BY id`
	if err := s.db.SelectContext(ctx, &rs, q, value); err != nil {
		return nil, storageErr("query", c, "", err)
	}
	return toRows(c, rs), nil
}

func (s *SQLite) All(ctx context.Context, c Collection) ([]Row, error) {
	if err := checkCollection(c); err != nil {
		return nil, storageErr("all", c, "", err)
	}
	if err := s.live(); err != nil {
		return nil, storageErr("all", c, "", err)
	}
	var rs []sqliteRow
	if err := s.db.SelectContext(ctx, &rs, `SELECT `+selectCols(c)+` FROM `+string(c)+` ORDER BY id`); err != nil {
		return nil, storageErr("all", c, "", err)
	}
	return toRows(c, rs), nil
}

func (s *SQLite) Delete(ctx context.Context, c Collection, id string) error {
	if err := checkCollection(c); err != nil {
		return storageErr("delete", c, id, err)
	}
	if err := s.live(); err != nil {
		return storageErr("delete", c, id, err)
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM `+string(c)+` WHERE id = ?`, id)
	return storageErr("delete", c, id, err)
}

func (s *SQLite) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func (r sqliteRow) toRow(c Collection) Row {
	out := Row{ID: r.ID, JSON: []byte(r.JSON)}
	if f := IndexField(c); f != "" {
		out.Index = map[string]string{f: r.FK}
	}
	return out
}

func toRows(c Collection, rs []sqliteRow) []Row {
	out := make([]Row, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.toRow(c))
	}
	return out
}
