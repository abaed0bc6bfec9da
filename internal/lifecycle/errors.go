package lifecycle

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a rejected transition. Every kind is recoverable at
// the caller: refetch and retry, or report to the user.
type ErrorKind string

const (
	KindValidation         ErrorKind = "validation"
	KindPhaseLocked        ErrorKind = "phase_locked"
	KindTerminalState      ErrorKind = "terminal_state"
	KindStateInconsistency ErrorKind = "state_inconsistency"
	KindStaleState         ErrorKind = "stale_state"
	KindNotFound           ErrorKind = "not_found"
	KindAwardConflict      ErrorKind = "award_conflict"
)

// Error is a kind-tagged failure returned across the service boundary.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Errorf builds a kind-tagged error.
func Errorf(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the kind from an error chain, "" for untagged errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
