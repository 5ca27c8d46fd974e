package db

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the Postgres error code for unique index violations.
const uniqueViolation = "23505"

// IsUniqueViolation reports whether err is a unique-index violation,
// optionally on a specific constraint. The unique indexes are the backstop
// for the handler-level uniqueness check: two concurrent creates can both
// pass the pre-check, and the loser of the insert race lands here.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

// ConstraintName extracts the violated constraint name from a unique-index
// error, or "" when err is not one.
func ConstraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return pgErr.ConstraintName
	}
	return ""
}

// IsNoRows reports whether err means no matching row.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
