package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockCompletion is a canned completion for the MockClient.
type MockCompletion struct {
	Content json.RawMessage
	Err     error
}

// MockTranscription is a canned transcription for the MockClient.
type MockTranscription struct {
	Text string
	Err  error
}

// MockClient is a deterministic Client for testing. It returns canned
// responses in FIFO order and records all requests, so tests can assert
// on call counts (e.g. the short-transcript path makes no call at all).
type MockClient struct {
	mu             sync.Mutex
	completions    []MockCompletion
	transcriptions []MockTranscription

	CompletionCalls    []CompletionRequest
	TranscriptionCalls []TranscriptionRequest
}

// NewMockClient creates a MockClient with the given canned completions.
func NewMockClient(completions ...MockCompletion) *MockClient {
	return &MockClient{completions: completions}
}

// CompleteJSON returns the next canned completion or ErrUnavailable when
// the queue is empty.
func (m *MockClient) CompleteJSON(_ context.Context, req CompletionRequest) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CompletionCalls = append(m.CompletionCalls, req)

	if len(m.completions) == 0 {
		return nil, &ErrUnavailable{}
	}

	next := m.completions[0]
	m.completions = m.completions[1:]

	if next.Err != nil {
		return nil, next.Err
	}
	return next.Content, nil
}

// Transcribe returns the next canned transcription or ErrUnavailable
// when the queue is empty.
func (m *MockClient) Transcribe(_ context.Context, req TranscriptionRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TranscriptionCalls = append(m.TranscriptionCalls, req)

	if len(m.transcriptions) == 0 {
		return "", &ErrUnavailable{}
	}

	next := m.transcriptions[0]
	m.transcriptions = m.transcriptions[1:]

	if next.Err != nil {
		return "", next.Err
	}
	return next.Text, nil
}

// ModelID returns "mock".
func (m *MockClient) ModelID() string {
	return "mock"
}

// AddCompletion appends a canned completion to the queue.
func (m *MockClient) AddCompletion(c MockCompletion) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completions = append(m.completions, c)
}

// AddTranscription appends a canned transcription to the queue.
func (m *MockClient) AddTranscription(t MockTranscription) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transcriptions = append(m.transcriptions, t)
}

// CompletionCount returns the number of CompleteJSON calls made.
func (m *MockClient) CompletionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.CompletionCalls)
}
