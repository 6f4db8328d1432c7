// Package store persists articles and tag batches in SQLite or PostgreSQL.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var (
	// ErrNotFound is returned when a lookup matches no row
	ErrNotFound = errors.New("not found")

	// ErrUnsupportedDriver is returned by Open for unknown driver names
	ErrUnsupportedDriver = errors.New("unsupported database driver")
)

const (
	createArticlesTable = `
	CREATE TABLE IF NOT EXISTS articles (
		id          TEXT PRIMARY KEY,
		title       TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		site_name   TEXT NOT NULL,
		category    TEXT NOT NULL,
		url         TEXT NOT NULL DEFAULT '',
		image       TEXT,
		created_at  TIMESTAMP NOT NULL
	)`

	createArticlesSiteIndex = `
	CREATE INDEX IF NOT EXISTS idx_articles_site_category
	ON articles (site_name, category, created_at)`

	createArticlesCreatedIndex = `
	CREATE INDEX IF NOT EXISTS idx_articles_created_at
	ON articles (created_at)`

	createBatchesTable = `
	CREATE TABLE IF NOT EXISTS tag_batches (
		id            TEXT PRIMARY KEY,
		created_at    TIMESTAMP NOT NULL,
		article_count INTEGER NOT NULL DEFAULT 0,
		tags          TEXT NOT NULL
	)`

	createBatchesCreatedIndex = `
	CREATE INDEX IF NOT EXISTS idx_tag_batches_created_at
	ON tag_batches (created_at)`
)

func init() {
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// Store wraps the database handle
type Store struct {
	db     *sqlx.DB
	driver string
}

// Open connects to the database and creates the schema if missing
func Open(driver, dsn string) (*Store, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}

	if driver == DriverSQLite {
		// every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	s := &Store{db: db, driver: driver}
	if err := s.initSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Driver returns the driver name the store was opened with
func (s *Store) Driver() string {
	return s.driver
}

// Stats returns connection pool statistics
func (s *Store) Stats() sql.DBStats {
	return s.db.Stats()
}

// Ping checks the connection
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) initSchema(ctx context.Context) error {
	queries := []string{
		createArticlesTable,
		createArticlesSiteIndex,
		createArticlesCreatedIndex,
		createBatchesTable,
		createBatchesCreatedIndex,
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	for _, query := range queries {
		if _, err := tx.ExecContext(ctx, query); err != nil {
			tx.Rollback()
			return fmt.Errorf("execute schema query: %w", err)
		}
	}

	return tx.Commit()
}

// dbTime normalizes timestamps so SQLite text comparisons order correctly
func dbTime(t time.Time) time.Time {
	return t.UTC()
}
