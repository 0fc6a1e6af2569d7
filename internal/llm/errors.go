package llm

import (
	"encoding/json"
	"fmt"
)

// ErrUnavailable indicates the collaborator is down, unreachable, or
// rejected the call (rate limit, server error, timeout).
type ErrUnavailable struct {
	Err error
}

func (e *ErrUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("analysis collaborator unavailable: %v", e.Err)
	}
	return "analysis collaborator unavailable"
}

func (e *ErrUnavailable) Unwrap() error { return e.Err }

// ErrInvalidResponse indicates the collaborator returned content that
// could not be used (no choices, empty transcription payload).
type ErrInvalidResponse struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid collaborator response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }
