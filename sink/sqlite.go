package sink

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteTable holds the generated rows.
const SQLiteTable = "contacts"

// sqliteBatch rows are committed per transaction.
const sqliteBatch = 10_000

// SQLite inserts rows into a fresh database file, one TEXT column per schema
// field in order. Committed batches survive a later failure.
type SQLite struct {
	db     *sql.DB
	tx     *sql.Tx
	stmt   *sql.Stmt
	insert string
	n      int
	closed bool
}

// CreateSQLite replaces any existing file at path.
func CreateSQLite(path string) (*SQLite, error) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("cannot open %s: %w", path, err)
	}
	return &SQLite{db: db}, nil
}

func quoteIdent(s string) string { return `"` + strings.ReplaceAll(s, `"`, `""`) + `"` }

// columnNames renames repeated schema fields to name_2, name_3, ... so every
// column is unique. SQLite compares identifiers case-insensitively.
func columnNames(schema []string) []string {
	taken := make(map[string]bool, len(schema))
	for _, name := range schema {
		taken[strings.ToLower(name)] = true
	}
	seen := make(map[string]bool, len(schema))
	out := make([]string, len(schema))
	for i, name := range schema {
		key := strings.ToLower(name)
		if !seen[key] {
			seen[key] = true
			out[i] = name
			continue
		}
		for n := 2; ; n++ {
			alt := fmt.Sprintf("%s_%d", name, n)
			if k := strings.ToLower(alt); !taken[k] {
				taken[k], seen[k] = true, true
				out[i] = alt
				break
			}
		}
	}
	return out
}

func (s *SQLite) WriteHeader(schema []string) error {
	if len(schema) == 0 {
		return errors.New("empty schema")
	}
	cols := make([]string, len(schema))
	marks := make([]string, len(schema))
	for i, name := range columnNames(schema) {
		cols[i] = quoteIdent(name)
		marks[i] = "?"
	}
	ddl := fmt.Sprintf("CREATE TABLE %s (%s TEXT)", quoteIdent(SQLiteTable), strings.Join(cols, " TEXT, "))
	if _, err := s.db.Exec(ddl); err != nil {
		return err
	}
	s.insert = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(SQLiteTable), strings.Join(cols, ", "), strings.Join(marks, ", "))
	return s.begin()
}

func (s *SQLite) begin() error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(s.insert)
	if err != nil {
		tx.Rollback()
		return err
	}
	s.tx, s.stmt = tx, stmt
	return nil
}

func (s *SQLite) commit() error {
	s.stmt.Close()
	err := s.tx.Commit()
	s.tx, s.stmt = nil, nil
	return err
}

func (s *SQLite) WriteRow(row []string) error {
	if s.stmt == nil {
		return errors.New("sqlite: row written before header")
	}
	args := make([]interface{}, len(row))
	for i, v := range row {
		args[i] = v
	}
	if _, err := s.stmt.Exec(args...); err != nil {
		return err
	}
	s.n++
	if s.n%sqliteBatch == 0 {
		if err := s.commit(); err != nil {
			return err
		}
		return s.begin()
	}
	return nil
}

// Close commits the open batch and closes the database.
func (s *SQLite) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	var err error
	if s.tx != nil {
		err = s.commit()
	}
	if cerr := s.db.Close(); err == nil {
		err = cerr
	}
	return err
}
