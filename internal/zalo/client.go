// Package zalo is a thin HTTP wrapper around the Zalo Bot API plus the
// webhook payload decoding and chunked outbound delivery the relay needs.
// The API mirrors the Telegram Bot API shape: JSON POST per method under
// /bot<token>/, with an ok/result envelope.
package zalo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultBaseURL is the official Zalo Bot API endpoint.
	DefaultBaseURL = "https://bot-api.zapps.me"

	maxResponseBytes = 10 << 20 // prevent unbounded reads from API responses
)

// Client is a thin HTTP wrapper around the Zalo Bot API.
type Client struct {
	token   string
	baseURL string
	http    *http.Client
}

// NewClient creates a Zalo Bot API client. An empty baseURL selects the
// official endpoint.
func NewClient(token, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		token:   token,
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// APIResponse is the Bot API envelope around every method result.
type APIResponse[T any] struct {
	OK          bool   `json:"ok"`
	Result      T      `json:"result"`
	ErrorCode   int    `json:"error_code,omitempty"`
	Description string `json:"description,omitempty"`
}

// APIError is a Bot API failure response.
type APIError struct {
	Code        int
	Description string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("zalo: api error %d: %s", e.Code, e.Description)
}

// do sends a JSON POST request to the given Bot API method and decodes the
// enveloped response.
func do[T any](ctx context.Context, c *Client, method string, payload any) (*T, error) {
	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("zalo: marshal %s request: %w", method, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, fmt.Errorf("zalo: create %s request: %w", method, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// Wrap without the raw error text in the message so the
		// token-bearing URL never leaks into logs. Unwrap still works.
		return nil, fmt.Errorf("zalo: %s request failed: %w", method, err)
	}

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	_ = resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("zalo: read %s response: %w", method, err)
	}

	var apiResp APIResponse[T]
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("zalo: decode %s response: %w", method, err)
	}

	if !apiResp.OK {
		return nil, &APIError{Code: apiResp.ErrorCode, Description: apiResp.Description}
	}

	return &apiResp.Result, nil
}

// User is the bot's own identity as reported by getMe.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	AccountName string `json:"account_name,omitempty"`
}

// SendMessageRequest is the request body for the sendMessage method.
type SendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

// SetWebhookRequest is the request body for the setWebhook method.
type SetWebhookRequest struct {
	URL         string `json:"url"`
	SecretToken string `json:"secret_token,omitempty"`
}

// sendChatActionRequest is the request body for the sendChatAction method.
type sendChatActionRequest struct {
	ChatID string `json:"chat_id"`
	Action string `json:"action"`
}

// GetMe returns the bot's user information. Used to validate the token.
func (c *Client) GetMe(ctx context.Context) (*User, error) {
	return do[User](ctx, c, "getMe", nil)
}

// SendMessage sends a plain-text message to the specified chat.
func (c *Client) SendMessage(ctx context.Context, chatID, text string) error {
	_, err := do[json.RawMessage](ctx, c, "sendMessage", SendMessageRequest{
		ChatID: chatID,
		Text:   text,
	})
	return err
}

// SendChatAction sends a chat action (e.g. "typing") to the specified chat.
func (c *Client) SendChatAction(ctx context.Context, chatID, action string) error {
	_, err := do[json.RawMessage](ctx, c, "sendChatAction", sendChatActionRequest{
		ChatID: chatID,
		Action: action,
	})
	return err
}

// SetWebhook registers the webhook URL and secret with the Bot API.
func (c *Client) SetWebhook(ctx context.Context, url, secretToken string) error {
	_, err := do[json.RawMessage](ctx, c, "setWebhook", SetWebhookRequest{
		URL:         url,
		SecretToken: secretToken,
	})
	return err
}

// DeleteWebhook removes the current webhook registration.
func (c *Client) DeleteWebhook(ctx context.Context) error {
	_, err := do[json.RawMessage](ctx, c, "deleteWebhook", nil)
	return err
}
