package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for well-known failure conditions that cross package
// boundaries.  Callers should use [errors.Is] to match these.
var (
	// ErrNotAuthorized indicates a heartbeat whose id/credential pair did
	// not match a stored node. Unknown id and credential mismatch are
	// deliberately indistinguishable so the registry's membership cannot
	// be enumerated.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrNodeNotFound means the requested node id does not exist. Only
	// administrative operations (which never take a credential) surface
	// this; the heartbeat path collapses it into ErrNotAuthorized.
	ErrNodeNotFound = errors.New("node not found")
)

// ValidationError reports a malformed or missing registration field. The
// record is never created when one of these is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid field %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is (or wraps) a [ValidationError].
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
