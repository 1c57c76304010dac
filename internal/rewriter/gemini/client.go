// Package gemini implements the rewrite.Generator contract on top of the
// Gemini API. The dashboard treats the model as an opaque text-generation
// capability; everything past prompt-in/text-out lives in pkg/rewrite.
package gemini

import (
	"context"

	"google.golang.org/genai"

	"github.com/jumpingbeanltd/price-dashboard/pkg/errors"
)

// DefaultModel is the generation model used when none is configured.
const DefaultModel = "gemini-2.0-flash"

// Client generates text via the Gemini API.
type Client struct {
	genai *genai.Client
	model string
}

// New creates a Gemini-backed generator.
func New(ctx context.Context, apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.NewAuthenticationError("gemini", "api_key", "API key not configured", errors.ErrAPIKeyRequired)
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
		APIKey:  apiKey,
	})
	if err != nil {
		return nil, errors.NewConfigError("gemini", "creating client", err)
	}

	return &Client{genai: client, model: model}, nil
}

// Generate implements rewrite.Generator.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.genai.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", errors.WrapAPI("gemini", 0, err)
	}
	return resp.Text(), nil
}
