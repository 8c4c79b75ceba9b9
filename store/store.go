package store

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// ============================================================================
// SQLITE STORE — query execution + schema description
// ============================================================================
// The store runs model-generated SQL read-only and describes the database
// DDL for the SQL-generation prompt. The prompt never sees row data from
// here — only CREATE TABLE statements.
// ============================================================================

// Store wraps a read-only SQLite database.
type Store struct {
	db   *sql.DB
	path string
	log  *zap.Logger
}

// Open opens the SQLite database at path read-only. A nil logger discards
// diagnostics.
func Open(path string, log *zap.Logger) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}
	if log == nil {
		log = zap.NewNop()
	}

	// modernc.org/sqlite understands URI parameters in a "file:" DSN.
	u := url.URL{Scheme: "file", Path: path}
	q := u.Query()
	q.Set("mode", "ro")
	q.Set("_busy_timeout", "5000")
	u.RawQuery = q.Encode()

	db, err := sql.Open("sqlite", u.String())
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	log.Info("opened database", zap.String("path", path))
	return &Store{db: db, path: path, log: log}, nil
}

// OpenMemory opens an in-memory writable database. Used by tests and demos.
func OpenMemory(log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	return &Store{db: db, path: ":memory:", log: log}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Exec runs a statement directly. Used for fixture setup, not by the
// pipeline.
func (s *Store) Exec(ctx context.Context, sqlText string, args ...any) error {
	_, err := s.db.ExecContext(ctx, sqlText, args...)
	return err
}

// Query runs sqlText and returns each row as a column→value map. []byte
// values are converted to strings so rows marshal cleanly to JSON.
func (s *Store) Query(ctx context.Context, sqlText string) ([]map[string]any, error) {
	rows, err := s.db.QueryContext(ctx, sqlText)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	out := []map[string]any{}
	for rows.Next() {
		values := make([]any, len(columns))
		scans := make([]any, len(columns))
		for i := range values {
			scans[i] = &values[i]
		}
		if err := rows.Scan(scans...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return out, nil
}

// SchemaInfo returns the CREATE TABLE statements of all user tables, newline
// separated, for embedding in the SQL-generation prompt.
func (s *Store) SchemaInfo(ctx context.Context) (string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT sql FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return "", fmt.Errorf("read schema: %w", err)
	}
	defer rows.Close()

	var ddl []string
	for rows.Next() {
		var stmt sql.NullString
		if err := rows.Scan(&stmt); err != nil {
			return "", fmt.Errorf("scan schema row: %w", err)
		}
		if stmt.Valid && stmt.String != "" {
			ddl = append(ddl, stmt.String)
		}
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("iterate schema: %w", err)
	}
	if len(ddl) == 0 {
		return "", fmt.Errorf("database has no tables")
	}

	return strings.Join(ddl, "\n\n"), nil
}
