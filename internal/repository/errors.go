// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios; for
// example ErrConflict signals that an insert collided with an existing
// row (e.g. a station name/code pair already taken). Authorization is
// decided above this layer by the policy predicates, so no forbidden
// sentinel exists here.
package repository

import (
	"errors"
	"strings"
)

// ErrConflict is returned when an insert or update violates a
// uniqueness constraint, such as registering a station whose
// name/code pair already exists. Handlers should translate this
// into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// isDuplicate reports whether a driver error describes a uniqueness
// violation. MySQL surfaces error 1062 ("Duplicate entry"); the sqlite
// driver used by the tests reports "UNIQUE constraint failed".
func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "1062") ||
		strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "UNIQUE constraint")
}
