// Package openai implements inference.Inferer over the OpenAI and Azure
// OpenAI chat-completions APIs, using json_schema structured output.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aretw0/firebreak/internal/logging"
	"github.com/aretw0/firebreak/pkg/inference"
)

// DefaultAzureAPIVersion is used when no API version is configured.
const DefaultAzureAPIVersion = "2024-12-01-preview"

const systemPrompt = "You are an expert bushfire safety consultant. Always reply with a single JSON object that matches the requested schema."

// Config holds configuration for the client.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration

	// Azure switches to deployment URLs and the api-key header.
	// BaseURL is then the resource endpoint and Model the deployment name.
	Azure      bool
	APIVersion string

	Logger *slog.Logger
}

// DefaultConfig returns defaults for the public OpenAI API.
func DefaultConfig(apiKey string) Config {
	return Config{
		APIKey:  apiKey,
		BaseURL: "https://api.openai.com/v1",
		Model:   "gpt-4o-mini",
		Timeout: 2 * time.Minute,
	}
}

// AzureConfig returns defaults for an Azure OpenAI deployment.
func AzureConfig(endpoint, deployment, apiKey, apiVersion string) Config {
	if apiVersion == "" {
		apiVersion = DefaultAzureAPIVersion
	}
	return Config{
		APIKey:     apiKey,
		BaseURL:    endpoint,
		Model:      deployment,
		Timeout:    2 * time.Minute,
		Azure:      true,
		APIVersion: apiVersion,
	}
}

// Client implements inference.Inferer.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a client.
func New(config Config) (*Client, error) {
	if config.APIKey == "" {
		return nil, errors.New("API key not configured")
	}
	if config.BaseURL == "" {
		return nil, errors.New("endpoint not configured")
	}
	if config.Model == "" {
		return nil, errors.New("model or deployment not configured")
	}
	logger := config.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     logger,
	}, nil
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type jsonSchema struct {
	Name   string         `json:"name"`
	Strict bool           `json:"strict"`
	Schema map[string]any `json:"schema"`
}

type responseFormat struct {
	Type       string      `json:"type"`
	JSONSchema *jsonSchema `json:"json_schema,omitempty"`
}

type chatRequest struct {
	Model          string          `json:"model,omitempty"`
	Messages       []message       `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Infer sends the rendered prompt and parses the reply against req.Schema.
func (c *Client) Infer(ctx context.Context, req inference.Request) (inference.Reply, error) {
	start := time.Now()

	body := chatRequest{
		Messages: []message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: req.Prompt()},
		},
		Temperature: 0,
		ResponseFormat: &responseFormat{
			Type: "json_schema",
			JSONSchema: &jsonSchema{
				Name:   req.Schema.Name,
				Schema: req.Schema.JSONSchema(),
			},
		},
	}
	if !c.config.Azure {
		body.Model = c.config.Model
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.config.Azure {
		httpReq.Header.Set("api-key", c.config.APIKey)
	} else {
		httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("API error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return nil, errors.New("no completion returned")
	}

	c.logger.Debug("inference completed", "schema", req.Schema.Name, "duration", time.Since(start))
	return req.Schema.ParseReply(parsed.Choices[0].Message.Content)
}

func (c *Client) endpoint() string {
	base := strings.TrimRight(c.config.BaseURL, "/")
	if !c.config.Azure {
		return base + "/chat/completions"
	}
	q := url.Values{}
	q.Set("api-version", c.config.APIVersion)
	return fmt.Sprintf("%s/openai/deployments/%s/chat/completions?%s", base, url.PathEscape(c.config.Model), q.Encode())
}
