// Package gateway exposes the HTTP surface: the bot webhook endpoint,
// health and metrics probes, and webhook registration helpers.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/zela-ai/zela/pkg/message"
)

// EventHandler consumes decoded inbound events. *relay.Handler is the
// production implementation.
type EventHandler interface {
	HandleEvent(ctx context.Context, ev message.Event) error
}

// WebhookRegistrar manages the webhook registration on the bot platform.
// *zalo.Client is the production implementation.
type WebhookRegistrar interface {
	SetWebhook(ctx context.Context, url, secretToken string) error
	DeleteWebhook(ctx context.Context) error
}

// SessionCounter reports the number of active sessions for the health
// probe.
type SessionCounter interface {
	Len() int
}

// Config holds gateway settings and collaborators.
type Config struct {
	Listen          string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// SecretToken must match the X-Bot-Api-Secret-Token header of every
	// inbound webhook delivery.
	SecretToken string

	// WebhookURL is the public endpoint offered to POST /setup-webhook.
	WebhookURL string

	// EventTimeout bounds the background processing of one event.
	EventTimeout time.Duration

	// BotTokenSet and GeminiKeySet feed the health probe's configuration
	// flags.
	BotTokenSet  bool
	GeminiKeySet bool

	Handler   EventHandler
	Registrar WebhookRegistrar
	Sessions  SessionCounter
	Metrics   *Metrics
	Logger    *slog.Logger
}

// Gateway is the HTTP server. Events are acknowledged immediately and
// processed in the background so the platform never retries a slow
// generation.
type Gateway struct {
	cfg       Config
	server    *http.Server
	startedAt time.Time

	// wg tracks in-flight background events for graceful shutdown.
	wg sync.WaitGroup
}

// New creates a Gateway. Handler and SecretToken are required.
func New(cfg Config) (*Gateway, error) {
	if cfg.Handler == nil {
		return nil, errors.New("gateway: event handler is required")
	}
	if cfg.SecretToken == "" {
		return nil, errors.New("gateway: secret token is required")
	}
	if cfg.Listen == "" {
		cfg.Listen = ":8080"
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	if cfg.EventTimeout == 0 {
		cfg.EventTimeout = 90 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Gateway{cfg: cfg}, nil
}

// Start binds the listener and serves in the background.
func (g *Gateway) Start(ctx context.Context) error {
	g.startedAt = time.Now()

	g.server = &http.Server{
		Addr:         g.cfg.Listen,
		Handler:      g.buildRouter(),
		ReadTimeout:  g.cfg.ReadTimeout,
		WriteTimeout: g.cfg.WriteTimeout,
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", g.cfg.Listen)
	if err != nil {
		return fmt.Errorf("gateway: listen on %s: %w", g.cfg.Listen, err)
	}

	go func() {
		g.cfg.Logger.Info("gateway listening", "addr", g.cfg.Listen)
		if err := g.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.cfg.Logger.Error("gateway serve error", "error", err)
		}
	}()

	return nil
}

// Stop shuts the server down gracefully and waits for in-flight events.
func (g *Gateway) Stop(ctx context.Context) error {
	if g.server == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, g.cfg.ShutdownTimeout)
	defer cancel()

	g.cfg.Logger.Info("gateway shutting down")
	err := g.server.Shutdown(shutdownCtx)

	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-shutdownCtx.Done():
		g.cfg.Logger.Warn("shutdown timed out with events still in flight")
	}

	return err
}
