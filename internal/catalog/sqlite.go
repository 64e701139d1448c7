// Package catalog journals mutating CLI operations (save, restore, clean)
// in a local SQLite database. The journal is an audit trail: the snapshot
// directory tree stays the source of truth for what exists.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"lifeboat/internal/catalog/migrations"
	"lifeboat/internal/life"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteCatalog implements life.Catalog over a SQLite database file.
type SQLiteCatalog struct {
	db *sql.DB
}

// New opens (and if necessary migrates) the catalog at path.
// path can be a file path or ":memory:" for an in-memory catalog.
func New(path string) (*SQLiteCatalog, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}

	// SQLite ships with foreign keys off for backward compatibility.
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating catalog: %w", err)
	}

	return &SQLiteCatalog{db: db}, nil
}

// Begin inserts a new running operation row and returns its ID.
func (c *SQLiteCatalog) Begin(operation, target string, startedAt time.Time) (int64, error) {
	res, err := c.db.ExecContext(context.Background(),
		`INSERT INTO operations (operation, target, status, started_at) VALUES (?, ?, 'running', ?)`,
		operation, target, startedAt.UTC())
	if err != nil {
		return 0, fmt.Errorf("inserting operation: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading operation id: %w", err)
	}
	return id, nil
}

// Finish marks an operation finished with the given status.
func (c *SQLiteCatalog) Finish(id int64, status string, finishedAt time.Time) error {
	_, err := c.db.ExecContext(context.Background(),
		`UPDATE operations SET status = ?, finished_at = ? WHERE id = ?`,
		status, finishedAt.UTC(), id)
	if err != nil {
		return fmt.Errorf("finishing operation %d: %w", id, err)
	}
	return nil
}

// Recent returns the most recent operations, newest first.
func (c *SQLiteCatalog) Recent(limit int) ([]*life.OperationRecord, error) {
	rows, err := c.db.QueryContext(context.Background(),
		`SELECT id, operation, target, status, started_at, finished_at
		 FROM operations ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying operations: %w", err)
	}
	defer rows.Close()

	var ops []*life.OperationRecord
	for rows.Next() {
		var op life.OperationRecord
		var finished sql.NullTime
		if err := rows.Scan(&op.ID, &op.Operation, &op.Target, &op.Status, &op.StartedAt, &finished); err != nil {
			return nil, fmt.Errorf("scanning operation: %w", err)
		}
		if finished.Valid {
			t := finished.Time
			op.FinishedAt = &t
		}
		ops = append(ops, &op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating operations: %w", err)
	}
	return ops, nil
}

// Close closes the catalog database.
func (c *SQLiteCatalog) Close() error {
	return c.db.Close()
}

// Compile-time check that SQLiteCatalog implements life.Catalog
var _ life.Catalog = (*SQLiteCatalog)(nil)
