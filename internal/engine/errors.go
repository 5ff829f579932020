package engine

import (
	"errors"
	"fmt"
)

// CodeResolutionFailed is the single failure code the engine surfaces.
// Any internal computation fault is caught and converted to this shape;
// the engine never propagates a panic or partial plan to the caller.
const CodeResolutionFailed = "RESOLUTION_FAILED"

// ResolutionError wraps an internal computation fault.
type ResolutionError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ResolutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// IsResolutionError reports whether err is a ResolutionError.
// Uses errors.As to handle wrapped errors.
func IsResolutionError(err error) bool {
	var re *ResolutionError
	return errors.As(err, &re)
}
