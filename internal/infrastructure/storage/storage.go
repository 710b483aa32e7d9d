package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

// Supported database/sql driver names.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Storage provides SQL database access for transactions, batches, settings
// and match runs. It implements the Repository and MatchCommitter interfaces.
type Storage struct {
	db     *sql.DB
	driver string
	now    func() time.Time
}

// Compile-time checks
var (
	_ Repository     = (*Storage)(nil)
	_ MatchCommitter = (*Storage)(nil)
)

// NewStorage creates a new storage instance with SQLite database
func NewStorage(dbPath string) (*Storage, error) {
	return Open(DriverSQLite, dbPath)
}

// Open connects to the database with the given driver and runs all pending
// migrations.
func Open(driver, dsn string) (*Storage, error) {
	dialect, err := gooseDialect(driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	if driver == DriverSQLite {
		// Enable foreign key constraints (SQLite-specific)
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
		// One writer at a time keeps conditional updates serialized
		db.SetMaxOpenConns(1)
	}

	s := &Storage{
		db:     db,
		driver: driver,
		now:    func() time.Time { return time.Now().UTC() },
	}

	if err := s.runMigrations(dialect); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

// Ping verifies the database connection is alive
func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// runMigrations applies the embedded goose migrations
func (s *Storage) runMigrations(dialect string) error {
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.Up(s.db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func gooseDialect(driver string) (string, error) {
	switch driver {
	case DriverSQLite:
		return "sqlite3", nil
	case DriverPostgres:
		return "postgres", nil
	}
	return "", fmt.Errorf("unsupported storage driver %q", driver)
}

// rebind rewrites ? placeholders to $N for PostgreSQL.
// Queries in this package never contain a literal question mark.
func (s *Storage) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
