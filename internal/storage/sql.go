package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/go-sql-driver/mysql" // mysql driver
	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	_ "modernc.org/sqlite"             // pure go sqlite driver
)

// Dialect holds the statements a SQL engine needs for the bucket table.
type Dialect struct {
	Name        string
	DriverName  string
	createTable string
	selectOne   string
	upsert      string
}

var (
	// SQLite targets modernc.org/sqlite.
	SQLite = Dialect{
		Name:       "sqlite",
		DriverName: "sqlite",
		createTable: `CREATE TABLE IF NOT EXISTS lirio_state (
			bucket TEXT PRIMARY KEY,
			payload TEXT NOT NULL
		)`,
		selectOne: `SELECT payload FROM lirio_state WHERE bucket = ?`,
		upsert:    `INSERT INTO lirio_state(bucket, payload) VALUES(?, ?) ON CONFLICT(bucket) DO UPDATE SET payload = excluded.payload`,
	}

	// Postgres targets pgx through its database/sql adapter.
	Postgres = Dialect{
		Name:       "postgres",
		DriverName: "pgx",
		createTable: `CREATE TABLE IF NOT EXISTS lirio_state (
			bucket TEXT PRIMARY KEY,
			payload TEXT NOT NULL
		)`,
		selectOne: `SELECT payload FROM lirio_state WHERE bucket = $1`,
		upsert:    `INSERT INTO lirio_state(bucket, payload) VALUES($1, $2) ON CONFLICT(bucket) DO UPDATE SET payload = excluded.payload`,
	}

	// MySQL targets go-sql-driver/mysql.
	MySQL = Dialect{
		Name:       "mysql",
		DriverName: "mysql",
		createTable: `CREATE TABLE IF NOT EXISTS lirio_state (
			bucket VARCHAR(191) PRIMARY KEY,
			payload LONGTEXT NOT NULL
		)`,
		selectOne: `SELECT payload FROM lirio_state WHERE bucket = ?`,
		upsert:    `INSERT INTO lirio_state(bucket, payload) VALUES(?, ?) ON DUPLICATE KEY UPDATE payload = VALUES(payload)`,
	}
)

// SQLBackend stores each bucket as one row of the lirio_state table.
type SQLBackend struct {
	db      *sql.DB
	dialect Dialect
}

// OpenSQL opens dsn with the dialect's driver, pings it and ensures the table exists.
func OpenSQL(ctx context.Context, dialect Dialect, dsn string) (*SQLBackend, error) {
	if dialect.Name == SQLite.Name {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}

	db, err := sql.Open(dialect.DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect.Name, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect.Name, err)
	}

	backend, err := NewSQLBackend(ctx, db, dialect)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return backend, nil
}

// NewSQLBackend wraps an open database, creating the bucket table if needed.
func NewSQLBackend(ctx context.Context, db *sql.DB, dialect Dialect) (*SQLBackend, error) {
	if _, err := db.ExecContext(ctx, dialect.createTable); err != nil {
		return nil, fmt.Errorf("create state table: %w", err)
	}
	return &SQLBackend{db: db, dialect: dialect}, nil
}

func (s *SQLBackend) Load(ctx context.Context, bucket string) ([]byte, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, s.dialect.selectOne, bucket).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", bucket, err)
	}
	return []byte(payload), nil
}

func (s *SQLBackend) Save(ctx context.Context, bucket string, payload []byte) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.upsert, bucket, string(payload)); err != nil {
		return fmt.Errorf("upsert %s: %w", bucket, err)
	}
	return nil
}

func (s *SQLBackend) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *SQLBackend) DB() *sql.DB { return s.db }
