package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrRateLimit indicates the provider returned a rate limit error (429).
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrInvalidResponse indicates the model returned content that could not be
// used, either because the payload was empty or because it failed a JSON
// Schema check.
type ErrInvalidResponse struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid LLM response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable indicates the provider is down or unreachable.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("LLM provider unavailable: %v", e.Err)
	}
	return "LLM provider unavailable"
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded indicates the response was truncated because it
// hit the MaxTokens limit.
type ErrMaxTokensExceeded struct {
	Text string
}

func (e *ErrMaxTokensExceeded) Error() string {
	return "LLM response truncated: max tokens exceeded"
}

// ErrGenerationUnavailable is the single failure surfaced by a Completer.
// Whatever went wrong underneath (timeout, non-2xx, auth, empty output) is
// kept in Err for diagnostics; callers only need to know the capability
// failed and may be retried later.
type ErrGenerationUnavailable struct {
	Purpose string
	Err     error
}

func (e *ErrGenerationUnavailable) Error() string {
	if e.Purpose != "" {
		return fmt.Sprintf("generation unavailable (%s): %v", e.Purpose, e.Err)
	}
	return fmt.Sprintf("generation unavailable: %v", e.Err)
}

func (e *ErrGenerationUnavailable) Unwrap() error { return e.Err }

// AsUnavailable wraps err in ErrGenerationUnavailable unless it already is one.
// A nil err stays nil.
func AsUnavailable(purpose string, err error) error {
	if err == nil {
		return nil
	}
	var gu *ErrGenerationUnavailable
	if errors.As(err, &gu) {
		return err
	}
	return &ErrGenerationUnavailable{Purpose: purpose, Err: err}
}
