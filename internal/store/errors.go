// Package store provides database access for all Lumina entities. Each
// store struct wraps a *sql.DB and exposes typed query methods; mutating
// operations authorize the acting user through the policy package before
// touching any row, and multi-row changes run in a single transaction.
//
// The sentinel errors below are the engine's failure vocabulary. They are
// detected before any write and propagate to the caller unchanged; the
// HTTP layer maps them to status codes with errors.Is.
package store

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrUnauthorized means the actor lacks the seniority or role the
	// operation requires.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden means the actor is valid but the requested state
	// transition is not.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound means a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNoChange means a role change named the role the user already has.
	ErrNoChange = errors.New("role unchanged")

	// ErrDuplicateSlug means a slug uniqueness constraint would be
	// violated.
	ErrDuplicateSlug = errors.New("duplicate slug")

	// ErrDuplicateEmail means an account already exists for the email.
	ErrDuplicateEmail = errors.New("duplicate email")

	// ErrAlreadyInvited means a pending invitation already exists for the
	// email.
	ErrAlreadyInvited = errors.New("already invited")

	// ErrCycle means a reparent would make a category its own ancestor.
	ErrCycle = errors.New("cycle rejected")

	// ErrNotEmpty means a delete is blocked by children or owned content.
	ErrNotEmpty = errors.New("not empty")

	// ErrNotPending means the invitation was already accepted or revoked.
	ErrNotPending = errors.New("invitation not pending")

	// ErrConflict means a concurrent write on the same aggregate won the
	// race; the caller may re-read and retry.
	ErrConflict = errors.New("conflict")
)

// isUniqueViolation reports whether err is a PostgreSQL unique-constraint
// violation (SQLSTATE 23505). Unique indexes on slugs and emails back up
// the pre-write checks; a violation slipping through a race maps onto the
// same sentinel the pre-check would have returned.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
