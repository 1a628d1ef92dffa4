package storage

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/lirio/internal/config"
)

// Driver identifies a concrete backend implementation.
type Driver string

const (
	DriverMemory   Driver = "memory"   // in-memory only (tests / ephemeral)
	DriverSQLite   Driver = "sqlite"   // embedded sqlite file
	DriverPostgres Driver = "postgres" // PostgreSQL server
	DriverMySQL    Driver = "mysql"    // MySQL server
	DriverMongoDB  Driver = "mongodb"  // MongoDB document per bucket
	DriverNone     Driver = "none"     // no persistence substrate
)

// ErrUnknownDriver is returned by Open for unsupported driver names.
var ErrUnknownDriver = errors.New("unknown storage driver")

// Open selects and connects the backend named by cfg.Storage.Driver.
func Open(ctx context.Context, cfg config.Config, logger *zap.Logger) (Backend, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	driver := Driver(cfg.Storage.Driver)
	var (
		backend Backend
		err     error
	)

	switch driver {
	case DriverMemory:
		backend = NewMemory()
	case DriverNone:
		logger.Warn("no persistence substrate configured, reads are empty and writes are dropped")
		backend = Unavailable{}
	case DriverSQLite:
		backend, err = OpenSQL(ctx, SQLite, cfg.Storage.SQLitePath)
	case DriverPostgres:
		backend, err = OpenSQL(ctx, Postgres, cfg.Storage.PostgresDSN)
	case DriverMySQL:
		backend, err = OpenSQL(ctx, MySQL, cfg.Storage.MySQLDSN)
	case DriverMongoDB:
		backend, err = OpenMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("storage backend ready", zap.String("driver", string(driver)))
	return backend, nil
}
