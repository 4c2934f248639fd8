package storage

import (
	"context"
	"fmt"
)

// Supported STORAGE_DRIVER values.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Options selects and configures a backend.
type Options struct {
	Driver      string
	DataDir     string
	SQLitePath  string
	DatabaseURL string
}

// Open returns the backend named by opts.Driver.
func Open(ctx context.Context, opts Options) (Backend, error) {
	switch opts.Driver {
	case DriverMemory:
		return NewMemory(), nil
	case DriverFile, "":
		return OpenDir(opts.DataDir)
	case DriverSQLite:
		return OpenSQLite(opts.SQLitePath)
	case DriverPostgres:
		return OpenPostgres(ctx, opts.DatabaseURL)
	}
	return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
}
