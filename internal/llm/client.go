// Package llm is the client boundary for the external analysis
// collaborator: a text-completion capability used for thematic analysis
// and a speech-to-text capability used for think-aloud transcription.
package llm

import (
	"context"
	"encoding/json"
	"io"
)

// Client is the core abstraction for the analysis collaborator.
// Implementations make exactly one network call per method and honor
// context cancellation; callers bound every call with a timeout.
type Client interface {
	// CompleteJSON sends a prompt and returns the model's response,
	// which is requested in JSON object form. The returned bytes are
	// not validated beyond being the raw completion content; callers
	// parse and normalize.
	CompleteJSON(ctx context.Context, req CompletionRequest) (json.RawMessage, error)

	// Transcribe converts recorded audio to plain text.
	Transcribe(ctx context.Context, req TranscriptionRequest) (string, error)

	// ModelID returns the completion model identifier in use.
	ModelID() string
}

// CompletionRequest describes one completion call.
type CompletionRequest struct {
	// System sets the model's role and constraints.
	System string

	// Prompt is the single user message.
	Prompt string

	// MaxTokens caps the response length. 0 means provider default.
	MaxTokens int

	// Temperature controls randomness. Thematic analysis runs low
	// (0.3) for consistent coding across transcripts.
	Temperature float32
}

// TranscriptionRequest carries an audio handle for speech-to-text.
type TranscriptionRequest struct {
	// Filename is the original name of the upload; providers use its
	// extension to detect the container format.
	Filename string

	// Reader streams the audio bytes.
	Reader io.Reader
}
