package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"compliance-backend/internal/llm"
	"compliance-backend/internal/shared/telemetry"
)

// GeminiBaseURL is the OpenAI-compatible endpoint for Gemini models.
const GeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"

// Client implements llm.Grader over an OpenAI-compatible chat completions API.
type Client struct {
	api   *goopenai.Client
	model string
}

// Options configures NewClient. An empty BaseURL selects Gemini.
type Options struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// NewClient constructs a grader client.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.Model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required")
	}
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, fmt.Errorf("llm api key is required")
	}
	cfg := goopenai.DefaultConfig(opts.APIKey)
	cfg.BaseURL = GeminiBaseURL
	if base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"); base != "" {
		cfg.BaseURL = base
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}

	return &Client{api: goopenai.NewClientWithConfig(cfg), model: opts.Model}, nil
}

// Grade sends the form text with the grading system prompt and parses the verdict.
func (c *Client) Grade(ctx context.Context, documentText string) (llm.Verdict, error) {
	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: c.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: llm.SystemPrompt},
			{Role: goopenai.ChatMessageRoleUser, Content: documentText},
		},
		ResponseFormat: &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return llm.Verdict{}, wrapError(err)
	}
	if len(resp.Choices) == 0 {
		return llm.Verdict{}, fmt.Errorf("llm response missing choices")
	}

	telemetry.Info("llm.usage", map[string]any{
		"model":             c.model,
		"prompt_tokens":     resp.Usage.PromptTokens,
		"completion_tokens": resp.Usage.CompletionTokens,
		"total_tokens":      resp.Usage.TotalTokens,
		"duration_ms":       time.Since(start).Milliseconds(),
	})

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return llm.Verdict{}, fmt.Errorf("%w: empty content", llm.ErrSchemaMismatch)
	}
	return llm.ParseVerdict(content)
}

// StatusError carries the provider's HTTP status so retries can inspect it.
type StatusError struct {
	Status int
	Err    error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("llm provider status %d: %v", e.Status, e.Err)
}

func (e *StatusError) Unwrap() error { return e.Err }

// StatusCode implements llm.StatusCoder.
func (e *StatusError) StatusCode() int { return e.Status }

func wrapError(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return &StatusError{Status: apiErr.HTTPStatusCode, Err: err}
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return &StatusError{Status: reqErr.HTTPStatusCode, Err: err}
	}
	return fmt.Errorf("llm request: %w", err)
}
