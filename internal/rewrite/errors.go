package rewrite

import (
	"errors"
	"fmt"

	"github.com/strataml/strata/internal/ir"
)

// PassError represents a conversion failure.
//
// Two failure shapes exist:
//   - Post-condition violation: an illegal operation survived a full
//     driver pass (ErrCodeConversionIncomplete). The error carries a
//     printed dump of the IR at failure time.
//   - Internal invariant violation: a pattern hit an upstream
//     construction bug (ErrCodeInternal) or the rewrite quota tripped
//     (ErrCodeQuotaExceeded). These indicate bugs, not bad input, and
//     are never retried.
type PassError struct {
	// Code identifies the error category.
	Code PassErrorCode

	// Message is a human-readable description.
	Message string

	// Op names the operation kind involved, when known.
	Op ir.OpName

	// Dump holds the printed IR at failure time (post-condition
	// violations only).
	Dump string

	// Err is the underlying error, if any.
	Err error
}

// PassErrorCode categorizes conversion failures.
type PassErrorCode string

const (
	// ErrCodeConversionIncomplete indicates an illegal operation
	// survived the conversion.
	ErrCodeConversionIncomplete PassErrorCode = "CONVERSION_INCOMPLETE"

	// ErrCodeQuotaExceeded indicates the rewrite quota tripped,
	// suggesting a non-terminating pattern set.
	ErrCodeQuotaExceeded PassErrorCode = "QUOTA_EXCEEDED"

	// ErrCodePatternFailed indicates a pattern returned an error.
	ErrCodePatternFailed PassErrorCode = "PATTERN_FAILED"

	// ErrCodeInternal indicates an internal invariant violation.
	ErrCodeInternal PassErrorCode = "INTERNAL"
)

// Error implements the error interface.
func (e *PassError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s (op=%s)", e.Code, e.Message, e.Op)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *PassError) Unwrap() error { return e.Err }

// IsConversionIncomplete reports whether err is a surviving-illegal-op
// failure. Uses errors.As to handle wrapped errors.
func IsConversionIncomplete(err error) bool {
	var pe *PassError
	if errors.As(err, &pe) {
		return pe.Code == ErrCodeConversionIncomplete
	}
	return false
}

// IsInternal reports whether err is an internal invariant violation.
func IsInternal(err error) bool {
	var pe *PassError
	if errors.As(err, &pe) {
		return pe.Code == ErrCodeInternal
	}
	return false
}

// NewInternalError creates a PassError for an internal invariant
// violation inside a pattern.
func NewInternalError(op ir.OpName, format string, args ...any) *PassError {
	return &PassError{
		Code:    ErrCodeInternal,
		Message: fmt.Sprintf(format, args...),
		Op:      op,
	}
}
