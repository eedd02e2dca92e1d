package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter constructs the chi mux with all routes wired.
func (g *Gateway) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Public probes.
	r.Get("/health", g.handleHealth())
	if g.cfg.Metrics != nil {
		r.Handle("/metrics", g.cfg.Metrics.Handler())
	}

	// Bot platform delivery, guarded by the secret header.
	r.Post("/webhook", g.handleWebhook())

	// Registration helpers, secret header auth as well.
	r.Post("/setup-webhook", g.handleSetupWebhook())
	r.Delete("/setup-webhook", g.handleDeleteWebhook())

	return r
}
