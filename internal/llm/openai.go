package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/decisiontrace/decisiontrace/internal/config"
)

// OpenAIClient implements Client using the OpenAI SDK. It also supports
// OpenAI-compatible APIs via BaseURL.
type OpenAIClient struct {
	client       *openai.Client
	model        string
	whisperModel string
}

// NewOpenAIClient creates a new OpenAI-backed analysis client.
func NewOpenAIClient(cfg config.AnalysisConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("analysis API key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &OpenAIClient{
		client:       openai.NewClientWithConfig(clientConfig),
		model:        cfg.Model,
		whisperModel: cfg.WhisperModel,
	}, nil
}

// CompleteJSON sends a chat completion request with JSON-object response
// format and returns the raw completion content.
func (c *OpenAIClient) CompleteJSON(ctx context.Context, req CompletionRequest) (json.RawMessage, error) {
	messages := []openai.ChatCompletionMessage{}
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	chatReq := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: req.Temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}
	if req.MaxTokens > 0 {
		chatReq.MaxCompletionTokens = req.MaxTokens
	}

	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, mapOpenAIError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, &ErrInvalidResponse{
			Err: fmt.Errorf("no choices in completion response"),
		}
	}

	return json.RawMessage(resp.Choices[0].Message.Content), nil
}

// Transcribe converts audio to text via the Whisper endpoint.
func (c *OpenAIClient) Transcribe(ctx context.Context, req TranscriptionRequest) (string, error) {
	resp, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.whisperModel,
		FilePath: req.Filename,
		Reader:   req.Reader,
		Format:   openai.AudioResponseFormatText,
	})
	if err != nil {
		return "", mapOpenAIError(err)
	}
	return resp.Text, nil
}

// ModelID returns the configured completion model.
func (c *OpenAIClient) ModelID() string {
	return c.model
}

func mapOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500 {
			return &ErrUnavailable{Err: err}
		}
		return &ErrInvalidResponse{Err: err}
	}
	// Network errors, timeouts, context cancellation.
	return &ErrUnavailable{Err: err}
}
