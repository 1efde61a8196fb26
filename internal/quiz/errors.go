package quiz

import (
	"errors"
	"fmt"
)

// ErrEmptyTopic is returned when a quiz is requested for a blank topic.
var ErrEmptyTopic = errors.New("quiz: topic is required")

// ErrProviderFormat indicates the generator's output could not be repaired
// into a valid question batch. Raw holds the untouched output.
type ErrProviderFormat struct {
	Raw    string
	Reason string
	Err    error
}

func (e *ErrProviderFormat) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("quiz provider returned invalid format: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("quiz provider returned invalid format: %s", e.Reason)
}

func (e *ErrProviderFormat) Unwrap() error { return e.Err }

// ErrMalformedSubmission indicates a submission that does not match the
// issued quiz, either from a client bug or from tampering.
type ErrMalformedSubmission struct {
	Reason string
}

func (e *ErrMalformedSubmission) Error() string {
	return "malformed quiz submission: " + e.Reason
}

func malformed(format string, args ...any) error {
	return &ErrMalformedSubmission{Reason: fmt.Sprintf(format, args...)}
}
