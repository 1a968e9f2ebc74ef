package failure

import (
	"errors"
	"fmt"
)

// maxTruncatedLen bounds stack traces and error messages persisted into a
// ProcessingLog row, per spec §7 ("Stack traces are truncated to 4 KB").
const maxTruncatedLen = 4096

// StageError pairs a classification Reason with the underlying cause.
// Stage-level code returns one of these instead of a bare error so the
// processor boundary never has to guess at a freeform message.
type StageError struct {
	Reason Reason
	Err    error
}

func (e *StageError) Error() string {
	if e.Err == nil {
		return string(e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Err.Error())
}

func (e *StageError) Unwrap() error { return e.Err }

// New wraps err with a classification reason.
func New(reason Reason, err error) *StageError {
	return &StageError{Reason: reason, Err: err}
}

// Truncate clips s to maxTruncatedLen bytes, the way the processor
// boundary clips stack traces and long driver error messages before they
// are persisted.
func Truncate(s string) string {
	if len(s) <= maxTruncatedLen {
		return s
	}
	return s[:maxTruncatedLen]
}

// AsStageError unwraps err looking for a *StageError, returning
// (ReasonUnexpectedError, err) when none is found — the processor's
// catch-all per spec §4.7.
func AsStageError(err error) (Reason, error) {
	if err == nil {
		return ReasonNone, nil
	}
	var se *StageError
	if errors.As(err, &se) {
		return se.Reason, se.Err
	}
	return ReasonUnexpectedError, err
}
