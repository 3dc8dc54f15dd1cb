package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultLandingAIURL = "https://api.va.landing.ai/v1/tools/agentic-document-analysis"
	maxErrorBody        = 2048
)

// LandingAIClient calls the agentic document analysis API.
type LandingAIClient struct {
	URL        string
	APIKey     string
	HTTPClient *http.Client
}

// NewLandingAIClient validates configuration and applies a request timeout.
func NewLandingAIClient(url, apiKey string, timeout time.Duration) (*LandingAIClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("VISION_AGENT_API_KEY is required")
	}
	if strings.TrimSpace(url) == "" {
		url = DefaultLandingAIURL
	}
	if timeout <= 0 {
		timeout = 180 * time.Second
	}
	return &LandingAIClient{
		URL:        url,
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: timeout},
	}, nil
}

func (c *LandingAIClient) Extract(ctx context.Context, fileName string, data []byte) (json.RawMessage, error) {
	body, contentType, err := buildMultipart(fileName, data)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, body)
	if err != nil {
		return nil, fmt.Errorf("landingai build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Basic "+c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("landingai request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("landingai read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := raw
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		return nil, fmt.Errorf("landingai http status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	if !json.Valid(raw) {
		return nil, errors.New("landingai returned invalid json")
	}
	return json.RawMessage(raw), nil
}

func buildMultipart(fileName string, data []byte) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("pdf", fileName)
	if err != nil {
		return nil, "", fmt.Errorf("landingai form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", fmt.Errorf("landingai form write: %w", err)
	}
	for _, field := range []string{"include_marginalia", "include_metadata_in_markdown"} {
		if err := w.WriteField(field, "true"); err != nil {
			return nil, "", fmt.Errorf("landingai form field %s: %w", field, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("landingai form close: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
