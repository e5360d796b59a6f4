// Package repository provides Postgres-backed persistence for users and
// feedback records. Sentinel errors let the service layer distinguish
// constraint violations from plain lookup misses (pgx.ErrNoRows).
package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrDuplicate is returned when an insert violates a unique constraint,
// e.g. a username or email that is already registered. The database enforces
// uniqueness even when two registrations race past the existence checks.
var ErrDuplicate = errors.New("duplicate record")

const uniqueViolationCode = "23505"

func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return ErrDuplicate
	}
	return err
}
