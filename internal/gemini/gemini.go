// Package gemini implements the generation adapter over the official
// Google Gemini SDK.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/zela-ai/zela/internal/generate"
	"github.com/zela-ai/zela/internal/prompt"
)

// Client invokes the Gemini generative API. It is safe for concurrent use.
type Client struct {
	genai  *genai.Client
	logger *slog.Logger
}

// Compile-time interface check.
var _ generate.Generator = (*Client)(nil)

// NewClient creates a Gemini client for the public Gemini API backend.
func NewClient(ctx context.Context, apiKey string, logger *slog.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: API key is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	return &Client{genai: gc, logger: logger}, nil
}

// Generate sends one composed request to the given upstream model and
// returns the raw generated text.
func (c *Client) Generate(ctx context.Context, req prompt.Request, upstreamModel string) (string, error) {
	parts := []*genai.Part{{Text: req.Text}}
	if req.Image != nil {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{
				MIMEType: canonicalMIME(req.Image.MIMEType),
				Data:     req.Image.Data,
			},
		})
	}

	contents := []*genai.Content{{Role: genai.RoleUser, Parts: parts}}

	resp, err := c.genai.Models.GenerateContent(ctx, upstreamModel, contents, nil)
	if err != nil {
		return "", wrapAPIError(err)
	}

	text := resp.Text()
	if text == "" {
		return "", &generate.UpstreamError{Message: "empty response from " + upstreamModel}
	}

	c.logger.Debug("generation completed",
		"model", upstreamModel,
		"response_chars", len(text),
	)
	return text, nil
}

// canonicalMIME maps the legacy JPEG short form to the identifier the API
// accepts; everything else passes through.
func canonicalMIME(mimeType string) string {
	switch strings.ToLower(strings.TrimSpace(mimeType)) {
	case "image/jpg", "jpg", "jpeg":
		return "image/jpeg"
	case "":
		return "image/jpeg"
	default:
		return strings.ToLower(strings.TrimSpace(mimeType))
	}
}

// wrapAPIError converts SDK failures into the relay's upstream error type.
func wrapAPIError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &generate.UpstreamError{Status: apiErr.Code, Message: apiErr.Message}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &generate.UpstreamError{Message: err.Error()}
}
