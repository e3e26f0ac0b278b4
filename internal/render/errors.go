package render

import (
	"errors"
	"fmt"
)

// ErrHeld is returned by synchronous runs while dispatch is on hold. The
// queue is kept.
var ErrHeld = errors.New("renderer is on hold")

// Run status codes.
const (
	CodeOK        = 0
	CodeFailed    = 1
	CodeCancelled = 2
)

// RunError reports a backend failure for one run.
type RunError struct {
	RunID RunID
	Code  int
	Err   error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("render run %d failed with code %d: %v", e.RunID, e.Code, e.Err)
}

func (e *RunError) Unwrap() error { return e.Err }

// Code extracts the run status code from err: CodeOK for nil, the RunError
// code when present, CodeFailed otherwise.
func Code(err error) int {
	if err == nil {
		return CodeOK
	}
	var re *RunError
	if errors.As(err, &re) {
		return re.Code
	}
	return CodeFailed
}
