package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/lib/pq"

	"github.com/onnwee/assessrec/internal/tracing"
)

// DefaultTable is the table read by PostgresSource when none is configured.
const DefaultTable = "assessments"

// ErrInvalidTable indicates a table name that is not a plain identifier.
var ErrInvalidTable = errors.New("invalid catalog table name")

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// PostgresSource reads the catalog from a PostgreSQL table ordered by its
// position column.
//
// Expected schema:
//
//	CREATE TABLE assessments (
//	  position         INTEGER PRIMARY KEY,
//	  url              TEXT NOT NULL DEFAULT '',
//	  description      TEXT NOT NULL,
//	  test_type        TEXT[] NOT NULL DEFAULT '{}',
//	  adaptive_support TEXT NOT NULL,
//	  remote_support   TEXT NOT NULL,
//	  duration         TEXT NOT NULL
//	);
type PostgresSource struct {
	db    *sql.DB
	table string
}

// NewPostgresSource creates a source reading from table ("" selects DefaultTable).
func NewPostgresSource(db *sql.DB, table string) (*PostgresSource, error) {
	if table == "" {
		table = DefaultTable
	}
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTable, table)
	}
	return &PostgresSource{db: db, table: table}, nil
}

// Query returns the SELECT statement used by Load.
func (s *PostgresSource) Query() string {
	return `SELECT url, description, test_type, adaptive_support, remote_support, duration FROM ` +
		pq.QuoteIdentifier(s.table) + ` ORDER BY position`
}

// Load reads every row. Durations that parse as numbers are served as numbers.
func (s *PostgresSource) Load(ctx context.Context) (cat *Catalog, err error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, s.table, tracing.DBOperationQuery)
	defer func() { endSpan(err) }()

	rows, err := s.db.QueryContext(ctx, s.Query())
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog: %w", err)
	}
	defer rows.Close()

	var items []Assessment
	for rows.Next() {
		var (
			url, description, adaptive, remote, duration sql.NullString
			testType                                     []string
		)
		if err := rows.Scan(&url, &description, pq.Array(&testType), &adaptive, &remote, &duration); err != nil {
			return nil, fmt.Errorf("failed to scan catalog row %d: %w", len(items), err)
		}
		rec := record{
			Description:     nullable(description),
			TestType:        &testType,
			AdaptiveSupport: nullable(adaptive),
			RemoteSupport:   nullable(remote),
			URL:             nullable(url),
		}
		if duration.Valid {
			d := ParseDuration(duration.String)
			rec.Duration = &d
		}
		a, err := rec.toAssessment()
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrMalformedCatalog, len(items), err)
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate catalog rows: %w", err)
	}

	cat = New(items)
	slog.InfoContext(ctx, "catalog loaded",
		"source", "postgres",
		"table", s.table,
		"records", cat.Len())
	return cat, nil
}

func nullable(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
