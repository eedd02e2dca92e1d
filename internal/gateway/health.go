package gateway

import (
	"encoding/json"
	"net/http"
	"time"
)

// HealthResponse is the JSON response for GET /health.
type HealthResponse struct {
	Status   string `json:"status"`
	Uptime   string `json:"uptime"`
	Sessions int    `json:"sessions"`

	// Configuration flags, mirroring what the operator needs to check
	// after deployment.
	BotTokenConfigured  bool `json:"bot_token_configured"`
	GeminiKeyConfigured bool `json:"gemini_key_configured"`
	WebhookConfigured   bool `json:"webhook_configured"`
}

// handleHealth returns an http.HandlerFunc for GET /health.
func (g *Gateway) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		resp := HealthResponse{
			Status:              "ok",
			Uptime:              time.Since(g.startedAt).Round(time.Second).String(),
			BotTokenConfigured:  g.cfg.BotTokenSet,
			GeminiKeyConfigured: g.cfg.GeminiKeySet,
			WebhookConfigured:   g.cfg.WebhookURL != "",
		}
		if g.cfg.Sessions != nil {
			resp.Sessions = g.cfg.Sessions.Len()
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}
