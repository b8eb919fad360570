// Package dbutil is a small RAII-style wrapper around database/sql for
// callers that want Open/Exec/Query/Close without repeating
// rows.Columns()/rows.Scan() boilerplate at every call site.
package dbutil

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a single *sql.DB opened against the embedded engine.
type DB struct {
	sql *sql.DB
}

// Open opens path with the embedded engine driver.
func Open(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("dbutil: open %s: %w", path, err)
	}
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("dbutil: open %s: %w", path, err)
	}
	return &DB{sql: sqlDB}, nil
}

// Raw returns the underlying *sql.DB, for callers that need to register
// virtual table modules via relhost before issuing queries.
func (d *DB) Raw() *sql.DB { return d.sql }

// Close closes the underlying connection pool.
func (d *DB) Close() error { return d.sql.Close() }

// Exec runs a statement that returns no rows.
func (d *DB) Exec(query string, args ...any) (sql.Result, error) {
	res, err := d.sql.Exec(query, args...)
	if err != nil {
		return nil, fmt.Errorf("dbutil: exec: %w", err)
	}
	return res, nil
}

// Result is a fully materialized query result: the column names and every
// row as a slice of driver-decoded values.
type Result struct {
	Columns []string
	Rows    [][]any
}

// Query runs query and materializes every row into a Result.
func (d *DB) Query(query string, args ...any) (Result, error) {
	rows, err := d.sql.Query(query, args...)
	if err != nil {
		return Result{}, fmt.Errorf("dbutil: query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return Result{}, fmt.Errorf("dbutil: columns: %w", err)
	}

	res := Result{Columns: cols}
	for rows.Next() {
		raw := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return Result{}, fmt.Errorf("dbutil: scan: %w", err)
		}
		res.Rows = append(res.Rows, raw)
	}
	if err := rows.Err(); err != nil {
		return Result{}, fmt.Errorf("dbutil: rows: %w", err)
	}
	return res, nil
}
