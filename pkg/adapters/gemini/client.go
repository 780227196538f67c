// Package gemini implements inference.Inferer over the Google Gemini API
// using the genai SDK with a JSON response schema.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"google.golang.org/genai"

	"github.com/aretw0/firebreak/internal/logging"
	"github.com/aretw0/firebreak/pkg/inference"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

const systemPrompt = "You are an expert bushfire safety consultant. Always reply with a single JSON object that matches the requested schema."

// Config holds configuration for the client.
type Config struct {
	APIKey string
	Model  string

	// BaseURL overrides the API endpoint. Used by tests.
	BaseURL string
	Timeout time.Duration
	Logger  *slog.Logger
}

// Client implements inference.Inferer.
type Client struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

// New creates a Gemini client.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("API key not configured")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 2 * time.Minute
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  &http.Client{Timeout: cfg.Timeout},
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &Client{client: client, model: cfg.Model, logger: logger}, nil
}

// Infer sends the rendered prompt and parses the reply against req.Schema.
func (c *Client) Infer(ctx context.Context, req inference.Request) (inference.Reply, error) {
	start := time.Now()
	temperature := float32(0)

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt+"\n\n"+req.Schema.Instructions(), genai.RoleUser),
		Temperature:       &temperature,
		ResponseMIMEType:  "application/json",
		ResponseSchema:    ToSchema(req.Schema),
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(req.Prompt()), config)
	if err != nil {
		return nil, fmt.Errorf("generate content failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return nil, errors.New("empty response from gemini")
	}

	c.logger.Debug("inference completed", "schema", req.Schema.Name, "duration", time.Since(start))
	return req.Schema.ParseReply(text)
}

// ToSchema converts a reply schema into the genai OpenAPI subset.
// String maps have no fixed keys, so they become untyped objects.
func ToSchema(s inference.Schema) *genai.Schema {
	out := &genai.Schema{
		Type:       genai.TypeObject,
		Properties: make(map[string]*genai.Schema, len(s.Fields)),
	}
	for _, f := range s.Fields {
		var prop *genai.Schema
		switch f.Type {
		case inference.TypeStringList:
			prop = &genai.Schema{Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}}
		case inference.TypeStringMap:
			prop = &genai.Schema{Type: genai.TypeObject}
		default:
			prop = &genai.Schema{Type: genai.TypeString}
			if len(f.Enum) > 0 {
				prop.Format = "enum"
				prop.Enum = append([]string{}, f.Enum...)
			}
		}
		prop.Description = f.Description
		out.Properties[f.Name] = prop
		out.PropertyOrdering = append(out.PropertyOrdering, f.Name)
		if f.Required {
			out.Required = append(out.Required, f.Name)
		}
	}
	return out
}
