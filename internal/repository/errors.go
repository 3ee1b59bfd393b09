// Package repository implements the catalog store on MySQL. This file
// defines sentinel errors shared across repositories so handlers can map
// failures onto HTTP statuses without inspecting driver errors. Constraint
// violations raised by the database are translated here and never leak raw
// to the transport layer.
package repository

import (
	"errors"
	"strings"
)

// ErrForbidden is returned when the caller attempts an operation on a
// resource scoped to a branch they do not own. Handlers translate this into
// an HTTP 403 response. Repositories raise it as a second, independent
// enforcement of the policy layer's branch scoping.
var ErrForbidden = errors.New("forbidden")

// ErrEmailExists is returned when registering a profile with an email that
// is already taken.
var ErrEmailExists = errors.New("email already exists")

// ErrDuplicateISBN is returned when a book insert loses the uniqueness race
// on the isbn column. Callers resolve it by re-reading the winning row.
var ErrDuplicateISBN = errors.New("book with this isbn already exists")

// ErrCopyOnLoan is returned when a checkout finds an active loan on the
// copy, or when deleting a copy that is currently out. Handlers translate
// it into HTTP 409.
var ErrCopyOnLoan = errors.New("copy already on loan")

// ErrLoanReturned is returned when returning a loan that is already
// returned. A double return signals a caller bug and maps to HTTP 409; it is
// deliberately not treated as an idempotent success.
var ErrLoanReturned = errors.New("loan already returned")

// Not-found sentinels, one per entity, all mapping to HTTP 404.
var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrBranchNotFound  = errors.New("branch not found")
	ErrBookNotFound    = errors.New("book not found")
	ErrCopyNotFound    = errors.New("copy not found")
	ErrLoanNotFound    = errors.New("loan not found")
)

// isDuplicateKey reports whether err is a MySQL duplicate-key violation
// (error 1062).
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}

// isFKViolation reports whether err is a MySQL foreign-key violation
// (error 1452, inserting a row that references a missing parent).
func isFKViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1452")
}
