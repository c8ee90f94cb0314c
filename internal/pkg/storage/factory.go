package storage

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// DriverFile selects the file-per-key backend.
	DriverFile = "file"
	// DriverSQLite selects the SQLite backend.
	DriverSQLite = "sqlite"
	// DriverMemory selects the in-process backend.
	DriverMemory = "memory"
)

// ErrUnknownDriver indicates an unsupported storage driver.
var ErrUnknownDriver = errors.New("storage: unknown driver")

// FactoryOptions groups configuration for storage drivers.
type FactoryOptions struct {
	// File configures the file backend.
	File FileOptions
	// SQLite configures the SQLite backend.
	SQLite SQLiteOptions
}

// NewFromDriver constructs a Storage implementation by driver name.
func NewFromDriver(driver string, opts FactoryOptions) (Storage, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverFile:
		return NewFile(opts.File)
	case DriverSQLite:
		return NewSQLite(opts.SQLite)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}
}
