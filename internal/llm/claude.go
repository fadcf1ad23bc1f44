package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Anthropic Messages API endpoint and version header.
const (
	AnthropicMessagesURL = "https://api.anthropic.com/v1/messages"
	AnthropicVersion     = "2023-06-01"
)

// HTTPDoer performs HTTP requests. *http.Client satisfies it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// APIError is a non-success response from the Messages API.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("anthropic API error (status %d, %s): %s", e.StatusCode, e.Type, e.Message)
	}
	return fmt.Sprintf("anthropic API error (status %d): %s", e.StatusCode, e.Message)
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeRequest struct {
	Model       string          `json:"model"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature *float32        `json:"temperature,omitempty"`
	Messages    []claudeMessage `json:"messages"`
}

type claudeResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

type claudeErrorBody struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// ClaudeClient implements Client over the Anthropic Messages API.
type ClaudeClient struct {
	apiKey  string
	config  *Config
	http    HTTPDoer
	baseURL string
}

// NewClaudeClient creates a client. The HTTP client times out after the
// configured request timeout.
func NewClaudeClient(config *Config, apiKey string) (*ClaudeClient, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	if config == nil {
		config = DefaultAnthropicConfig()
	}
	return &ClaudeClient{
		apiKey:  apiKey,
		config:  config,
		http:    &http.Client{Timeout: config.GetTimeout()},
		baseURL: AnthropicMessagesURL,
	}, nil
}

// WithHTTPClient replaces the transport, e.g. with a test server client.
func (c *ClaudeClient) WithHTTPClient(doer HTTPDoer) *ClaudeClient {
	c.http = doer
	return c
}

// WithBaseURL points the client at another Messages endpoint.
func (c *ClaudeClient) WithBaseURL(u string) *ClaudeClient {
	c.baseURL = u
	return c
}

// GenerateContent sends prompt as a single user message.
func (c *ClaudeClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	return c.complete(ctx, prompt, tier, nil)
}

// GenerateJSON is GenerateContent at low temperature with code fences and
// surrounding prose removed from the answer.
func (c *ClaudeClient) GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	temp := float32(0.1)
	text, err := c.complete(ctx, prompt, tier, &temp)
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(text), nil
}

func (c *ClaudeClient) complete(ctx context.Context, prompt string, tier ModelTier, temperature *float32) (string, error) {
	model := c.config.GetModel(tier)
	if model == "" {
		return "", fmt.Errorf("no model configured for tier %s", tier)
	}
	if temperature == nil && c.config.Temperature > 0 {
		t := c.config.Temperature
		temperature = &t
	}

	payload, err := json.Marshal(claudeRequest{
		Model:       model,
		MaxTokens:   c.config.GetMaxTokens(tier),
		Temperature: temperature,
		Messages:    []claudeMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.GetTimeout())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", AnthropicVersion)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call anthropic API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
		var eb claudeErrorBody
		if json.Unmarshal(body, &eb) == nil && eb.Error.Message != "" {
			apiErr.Type = eb.Error.Type
			apiErr.Message = eb.Error.Message
		}
		return "", apiErr
	}

	var out claudeResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	var parts []string
	for _, block := range out.Content {
		if block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("no text content in response")
	}
	return strings.TrimSpace(strings.Join(parts, "")), nil
}

// GetModel returns the model name for a tier
func (c *ClaudeClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close is a no-op; the client holds no connections of its own.
func (c *ClaudeClient) Close() error {
	return nil
}
