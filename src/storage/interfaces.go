package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/georgysavva/scany/v2/sqlscan"
)

var (
	// ErrStudentExists is returned when a student_id is already taken.
	ErrStudentExists = errors.New("student already exists")

	// ErrInvalidField is returned for updates to fields that are not editable.
	ErrInvalidField = errors.New("invalid field")
)

// Execer is an interface for executing SQL statements
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// ExecQuerier combines both Execer and sqlscan.Querier interfaces
// for operations that need both SELECT and INSERT/UPDATE/DELETE capabilities
type ExecQuerier interface {
	Execer
	sqlscan.Querier
}
