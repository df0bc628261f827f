package db

import "errors"

// Supported database/sql driver names.
const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite3"
)

var (
	// ErrNotFound is returned when a record does not exist or the
	// identifier is malformed.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a unique value is already taken.
	ErrConflict = errors.New("record already exists")
)
