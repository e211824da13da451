package geostore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	_ "modernc.org/sqlite"             // pure go sqlite driver
)

// Driver names accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Default connection targets.
const (
	DefaultSQLitePath  = "./geomosaic.db"
	DefaultPostgresDSN = "postgres://localhost/geomosaic?sslmode=disable"
)

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("geostore: not found")

	// ErrIncompleteTransform is returned when a stored geotransform has a
	// NULL coefficient.
	ErrIncompleteTransform = errors.New("geostore: geotransform has missing coefficients")

	// ErrMissingProperties is returned by elevation lookups before any
	// elevation raster has been ingested.
	ErrMissingProperties = errors.New("geostore: elevation properties missing")
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// dialect captures the SQL differences between the supported databases.
type dialect struct {
	name       string
	driver     string
	primaryKey string
	float      string
	maxParams  int
	numbered   bool
}

var (
	sqliteDialect = dialect{
		name:       DriverSQLite,
		driver:     "sqlite",
		primaryKey: "INTEGER PRIMARY KEY AUTOINCREMENT",
		float:      "REAL",
		maxParams:  32766,
	}
	postgresDialect = dialect{
		name:       DriverPostgres,
		driver:     "pgx",
		primaryKey: "SERIAL PRIMARY KEY",
		float:      "DOUBLE PRECISION",
		maxParams:  MaxBindParameters,
		numbered:   true,
	}
)

// placeholder returns the bind marker for the 1-based parameter n.
func (d dialect) placeholder(n int) string {
	if d.numbered {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// Store is a SQL-backed geotransform and elevation store.
type Store struct {
	db      *sql.DB
	dialect dialect

	// chunkRows is the maximum number of rows per INSERT statement.
	chunkRows int
}

// Option customizes a Store.
type Option func(*Store)

// WithMaxBindParameters lowers the number of rows sent per INSERT
// statement. Values above the driver's own limit are clamped to it.
func WithMaxBindParameters(n int) Option {
	return func(s *Store) {
		if n > 0 && n < s.chunkRows {
			s.chunkRows = n
		}
	}
}

// ParseDriver maps a driver name or alias onto DriverSQLite or
// DriverPostgres. Empty selects SQLite.
func ParseDriver(driver string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverSQLite, "sqlite3":
		return DriverSQLite, nil
	case DriverPostgres, "postgresql", "pgx":
		return DriverPostgres, nil
	default:
		return "", fmt.Errorf("unknown store driver %q", driver)
	}
}

// OverrideSQLOpen swaps the sqlOpen function for tests and returns a restore function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
}

// Open connects to the database selected by driver and creates the schema.
//
// Parameters:
//   - driver: DriverSQLite or DriverPostgres, or an alias ParseDriver accepts.
//   - dsn: SQLite file path or PostgreSQL connection string. Empty selects
//     DefaultSQLitePath or DefaultPostgresDSN.
//
// Returns:
//   - *Store: Ready for use. Close it when done.
//   - error: Non-nil for an unknown driver, a failed connection or a failed
//     schema bootstrap.
func Open(ctx context.Context, driver, dsn string, opts ...Option) (*Store, error) {
	name, err := ParseDriver(driver)
	if err != nil {
		return nil, err
	}

	var d dialect
	switch name {
	case DriverSQLite:
		d = sqliteDialect
		if dsn == "" {
			dsn = DefaultSQLitePath
		}
		if err := os.MkdirAll(filepath.Dir(dsn), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	case DriverPostgres:
		d = postgresDialect
		if dsn == "" {
			dsn = DefaultPostgresDSN
		}
	}

	openMu.Lock()
	db, err := sqlOpen(d.driver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", d.name, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", d.name, err)
	}

	s := newStore(db, d, opts...)
	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func newStore(db *sql.DB, d dialect, opts ...Option) *Store {
	s := &Store{db: db, dialect: d, chunkRows: d.maxParams}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) ensureSchema(ctx context.Context) error {
	pk, f := s.dialect.primaryKey, s.dialect.float
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS geotransform (
			id ` + pk + `,
			dataset_name TEXT NOT NULL,
			c0 ` + f + `, c1 ` + f + `, c2 ` + f + `,
			c3 ` + f + `, c4 ` + f + `, c5 ` + f + `
		)`,
		`CREATE TABLE IF NOT EXISTS elevation (
			id ` + pk + `,
			height ` + f + ` NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS elevation_properties (
			id ` + pk + `,
			x_size INTEGER NOT NULL,
			y_size INTEGER NOT NULL
		)`,
	}
	for _, stmt := range ddl {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// Driver returns the driver name the store was opened with.
func (s *Store) Driver() string { return s.dialect.name }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }
