package store

import (
	"context"
	"strings"
	"testing"
)

// ============================================================================
// STORE TESTS — in-memory sqlite
// ============================================================================

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenMemory(nil)
	if err != nil {
		t.Fatalf("OpenMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()
	stmts := []string{
		`CREATE TABLE Categories (CategoryID INTEGER PRIMARY KEY, CategoryName TEXT)`,
		`CREATE TABLE Sales (CategoryID INTEGER, Amount REAL)`,
		`INSERT INTO Categories VALUES (1, 'Beverages'), (2, 'Produce')`,
		`INSERT INTO Sales VALUES (1, 100.5), (1, 200), (2, 50)`,
	}
	for _, stmt := range stmts {
		if err := s.Exec(ctx, stmt); err != nil {
			t.Fatalf("fixture %q failed: %v", stmt, err)
		}
	}
	return s
}

func TestQueryRowsAsMaps(t *testing.T) {
	s := newTestStore(t)

	rows, err := s.Query(context.Background(),
		`SELECT c.CategoryName AS category, SUM(s.Amount) AS total
		 FROM Sales s JOIN Categories c ON c.CategoryID = s.CategoryID
		 GROUP BY c.CategoryName ORDER BY total DESC`)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0]["category"] != "Beverages" {
		t.Errorf("top category = %v, want Beverages", rows[0]["category"])
	}
	if total, ok := rows[0]["total"].(float64); !ok || total != 300.5 {
		t.Errorf("total = %v, want 300.5", rows[0]["total"])
	}
}

func TestQueryEmptyResult(t *testing.T) {
	s := newTestStore(t)
	rows, err := s.Query(context.Background(), `SELECT * FROM Sales WHERE Amount > 1000`)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if rows == nil || len(rows) != 0 {
		t.Errorf("rows = %v, want non-nil empty slice", rows)
	}
}

func TestQueryBadSQL(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Query(context.Background(), `SELECT * FROM NoSuchTable`); err == nil {
		t.Error("expected error for missing table")
	}
}

func TestSchemaInfo(t *testing.T) {
	s := newTestStore(t)
	info, err := s.SchemaInfo(context.Background())
	if err != nil {
		t.Fatalf("SchemaInfo() error = %v", err)
	}
	for _, want := range []string{"CREATE TABLE Categories", "CREATE TABLE Sales"} {
		if !strings.Contains(info, want) {
			t.Errorf("schema info missing %q:\n%s", want, info)
		}
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  ", nil); err == nil {
		t.Error("expected error for empty path")
	}
}
