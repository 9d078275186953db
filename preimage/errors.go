package preimage

import (
	"errors"
	"fmt"
)

// ErrTooManySessions is returned by Init when the registry already holds the
// configured maximum of open sessions.
var ErrTooManySessions = errors.New("too many open preimage sessions")

// UnknownSessionError indicates an id that was never returned by Init, or
// whose session was reaped.
type UnknownSessionError struct {
	ID SessionID
}

func (e UnknownSessionError) Error() string {
	return fmt.Sprintf("unknown preimage session %s", e.ID)
}

// IsUnknownSessionError reports whether err wraps an UnknownSessionError.
func IsUnknownSessionError(err error) bool {
	var errUnknownSession UnknownSessionError
	return errors.As(err, &errUnknownSession)
}

// SessionFinalizedError indicates an operation on a session whose digest was
// already taken. Reusing a session would silently hash a second preimage
// on top of the first.
type SessionFinalizedError struct {
	ID SessionID
}

func (e SessionFinalizedError) Error() string {
	return fmt.Sprintf("preimage session %s already finalized", e.ID)
}

// IsSessionFinalizedError reports whether err wraps a SessionFinalizedError.
func IsSessionFinalizedError(err error) bool {
	var errSessionFinalized SessionFinalizedError
	return errors.As(err, &errSessionFinalized)
}

// PreimageTooLargeError is returned when an update would grow a session past
// the configured maximum preimage size. The session keeps its prior content.
type PreimageTooLargeError struct {
	ID       SessionID
	Absorbed uint64
	Chunk    int
	Limit    uint64
}

func (e PreimageTooLargeError) Error() string {
	return fmt.Sprintf("preimage session %s: chunk of %d bytes after %d absorbed exceeds limit of %d bytes",
		e.ID, e.Chunk, e.Absorbed, e.Limit)
}

// IsPreimageTooLargeError reports whether err wraps a PreimageTooLargeError.
func IsPreimageTooLargeError(err error) bool {
	var errTooLarge PreimageTooLargeError
	return errors.As(err, &errTooLarge)
}
