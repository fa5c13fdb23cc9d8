//go:build integration
// +build integration

package catalog

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

const catalogSchema = `
CREATE TABLE assessments (
  position         INTEGER PRIMARY KEY,
  url              TEXT NOT NULL DEFAULT '',
  description      TEXT NOT NULL,
  test_type        TEXT[] NOT NULL DEFAULT '{}',
  adaptive_support TEXT NOT NULL,
  remote_support   TEXT NOT NULL,
  duration         TEXT NOT NULL
);
INSERT INTO assessments VALUES
  (2, '', 'Leadership and people management assessment', '{P}', 'No', 'Yes', 'Untimed'),
  (1, 'https://example.com/java/', 'Java developer aptitude test', '{K,A}', 'Yes', 'Yes', '60');
`

func setupPostgres(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("assessrec"),
		postgres.WithUsername("assessrec"),
		postgres.WithPassword("assessrec"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Skipf("Postgres container not available: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}
	if _, err := db.ExecContext(ctx, catalogSchema); err != nil {
		t.Fatalf("failed to seed catalog: %v", err)
	}
	return db
}

func TestPostgresSource_Load(t *testing.T) {
	db := setupPostgres(t)

	src, err := NewPostgresSource(db, "")
	if err != nil {
		t.Fatalf("NewPostgresSource() error = %v", err)
	}
	cat, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cat.Len() != 2 {
		t.Fatalf("expected 2 records, got %d", cat.Len())
	}
	first := cat.At(0)
	if first.Description != "Java developer aptitude test" {
		t.Errorf("expected rows ordered by position, got %q first", first.Description)
	}
	if len(first.TestType) != 2 || first.TestType[0] != "K" {
		t.Errorf("unexpected test types %v", first.TestType)
	}
	if !first.Duration.IsNumeric() {
		t.Errorf("expected numeric duration, got %q", first.Duration)
	}
	if second := cat.At(1); second.Duration.IsNumeric() || second.Duration.String() != "Untimed" {
		t.Errorf("expected text duration, got %q", second.Duration)
	}
}

func TestPostgresSource_MissingTable(t *testing.T) {
	db := setupPostgres(t)

	src, err := NewPostgresSource(db, "no_such_table")
	if err != nil {
		t.Fatalf("NewPostgresSource() error = %v", err)
	}
	if _, err := src.Load(context.Background()); err == nil {
		t.Error("expected error for missing table")
	}
}
