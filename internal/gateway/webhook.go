package gateway

import (
	"context"
	"crypto/subtle"
	"errors"
	"io"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/zela-ai/zela/internal/zalo"
	"github.com/zela-ai/zela/pkg/message"
)

// secretHeader carries the token the platform echoes on every delivery.
const secretHeader = "X-Bot-Api-Secret-Token"

// maxWebhookBody bounds inbound payload size.
const maxWebhookBody = 1 << 20

// handleWebhook validates the delivery, acknowledges immediately, and
// processes the event in the background. The platform retries on
// non-2xx; a decode failure of an individual update is therefore still
// acknowledged, only authentication failures are rejected.
func (g *Gateway) handleWebhook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !g.authorized(r) {
			if g.cfg.Metrics != nil {
				g.cfg.Metrics.WebhookRejected()
			}
			g.cfg.Logger.Warn("webhook delivery with bad secret token", "remote", r.RemoteAddr)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
		if err != nil {
			http.Error(w, "failed to read body", http.StatusBadRequest)
			return
		}

		ev, err := zalo.DecodeUpdate(body)
		if err != nil {
			if errors.Is(err, zalo.ErrUnsupportedUpdate) {
				g.cfg.Logger.Debug("ignoring unsupported update", "error", err)
			} else {
				g.cfg.Logger.Warn("undecodable update", "error", err)
			}
			writeOK(w)
			return
		}

		g.wg.Add(1)
		go g.process(ev)

		writeOK(w)
	}
}

// process runs one event to completion, detached from the request.
func (g *Gateway) process(ev message.Event) {
	defer g.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), g.cfg.EventTimeout)
	defer cancel()

	ctx, span := otel.Tracer("zela/gateway").Start(ctx, "event.handle")
	span.SetAttributes(
		attribute.String("event.kind", string(ev.Kind)),
		attribute.String("chat.id", ev.ChatID),
	)
	defer span.End()

	if err := g.cfg.Handler.HandleEvent(ctx, ev); err != nil {
		span.SetStatus(codes.Error, err.Error())
		g.cfg.Logger.Error("event processing failed",
			"kind", ev.Kind,
			"chat", ev.ChatID,
			"error", err,
		)
	}
}

// handleSetupWebhook registers the configured public URL with the
// platform.
func (g *Gateway) handleSetupWebhook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !g.authorized(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if g.cfg.Registrar == nil || g.cfg.WebhookURL == "" {
			http.Error(w, "webhook url not configured", http.StatusConflict)
			return
		}
		if err := g.cfg.Registrar.SetWebhook(r.Context(), g.cfg.WebhookURL, g.cfg.SecretToken); err != nil {
			g.cfg.Logger.Error("webhook registration failed", "error", err)
			http.Error(w, "registration failed", http.StatusBadGateway)
			return
		}
		g.cfg.Logger.Info("webhook registered", "url", g.cfg.WebhookURL)
		writeOK(w)
	}
}

// handleDeleteWebhook removes the registration.
func (g *Gateway) handleDeleteWebhook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !g.authorized(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if g.cfg.Registrar == nil {
			http.Error(w, "registrar not configured", http.StatusConflict)
			return
		}
		if err := g.cfg.Registrar.DeleteWebhook(r.Context()); err != nil {
			g.cfg.Logger.Error("webhook removal failed", "error", err)
			http.Error(w, "removal failed", http.StatusBadGateway)
			return
		}
		writeOK(w)
	}
}

// authorized checks the secret header in constant time.
func (g *Gateway) authorized(r *http.Request) bool {
	got := r.Header.Get(secretHeader)
	return subtle.ConstantTimeCompare([]byte(got), []byte(g.cfg.SecretToken)) == 1
}

func writeOK(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"ok":true}`))
}
