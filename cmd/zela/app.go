package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/zela-ai/zela/internal/config"
	"github.com/zela-ai/zela/internal/gateway"
	"github.com/zela-ai/zela/internal/gemini"
	"github.com/zela-ai/zela/internal/generate"
	"github.com/zela-ai/zela/internal/model"
	"github.com/zela-ai/zela/internal/relay"
	"github.com/zela-ai/zela/internal/session"
	"github.com/zela-ai/zela/internal/telemetry"
	"github.com/zela-ai/zela/internal/zalo"
)

// app holds the wired components for one running instance.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	gateway *gateway.Gateway
	zalo    *zalo.Client

	shutdownTracing func(context.Context) error
}

// newApp loads configuration and wires every component. The upstream
// client is created eagerly so a bad API key fails at startup, not on
// the first message.
func newApp(ctx context.Context, cfgPath string) (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	logger := newLogger(cfg.Logging)

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
		ServiceName:  cfg.Telemetry.ServiceName,
		Insecure:     cfg.Telemetry.Insecure,
	})
	if err != nil {
		return nil, err
	}

	catalog, err := buildCatalog(cfg.Models)
	if err != nil {
		return nil, err
	}

	upstream, err := gemini.NewClient(ctx, cfg.Gemini.APIKey, logger)
	if err != nil {
		return nil, err
	}

	store := session.NewInMemoryStore(cfg.Session.Retention)
	botClient := zalo.NewClient(cfg.Zalo.BotToken, cfg.Zalo.BaseURL)
	sender := zalo.NewSender(botClient, zalo.SenderConfig{
		MaxLength:  cfg.Delivery.MaxLength,
		ChunkDelay: cfg.Delivery.ChunkDelay,
	}, logger)

	metrics := gateway.NewMetrics()

	handler, err := relay.NewHandler(relay.Config{
		Store:         store,
		Catalog:       catalog,
		Classifier:    model.NewClassifier(append(model.DefaultCodeKeywords, cfg.Models.CodeKeywords...)),
		Generator:     generate.NewRetryer(upstream, generate.RetryConfig{MaxAttempts: cfg.Retry.MaxAttempts, Logger: logger}),
		Downloader:    relay.NewHTTPDownloader(),
		Replier:       sender,
		Metrics:       metrics,
		Logger:        logger,
		HistoryWindow: cfg.Session.Window,
	})
	if err != nil {
		return nil, err
	}

	gw, err := gateway.New(gateway.Config{
		Listen:          cfg.Gateway.Listen,
		ReadTimeout:     cfg.Gateway.ReadTimeout,
		WriteTimeout:    cfg.Gateway.WriteTimeout,
		ShutdownTimeout: cfg.Gateway.ShutdownTimeout,
		SecretToken:     cfg.Zalo.SecretToken,
		WebhookURL:      cfg.Zalo.WebhookURL,
		BotTokenSet:     cfg.Zalo.BotToken != "",
		GeminiKeySet:    cfg.Gemini.APIKey != "",
		Handler:         handler,
		Registrar:       botClient,
		Sessions:        store,
		Metrics:         metrics,
		Logger:          logger,
	})
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:             cfg,
		logger:          logger,
		gateway:         gw,
		zalo:            botClient,
		shutdownTracing: shutdownTracing,
	}, nil
}

// run starts the gateway, registers the webhook when a public URL is
// configured, and blocks until the context is cancelled or a signal
// arrives.
func (a *app) run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if me, err := a.zalo.GetMe(ctx); err != nil {
		a.logger.Warn("bot identity check failed", "error", err)
	} else {
		a.logger.Info("bot authenticated", "account", me.AccountName)
	}

	if err := a.gateway.Start(ctx); err != nil {
		return err
	}

	if a.cfg.Zalo.WebhookURL != "" {
		if err := a.zalo.SetWebhook(ctx, a.cfg.Zalo.WebhookURL, a.cfg.Zalo.SecretToken); err != nil {
			a.logger.Error("webhook auto-registration failed", "url", a.cfg.Zalo.WebhookURL, "error", err)
		} else {
			a.logger.Info("webhook registered", "url", a.cfg.Zalo.WebhookURL)
		}
	}

	<-ctx.Done()
	a.logger.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown stops the gateway and flushes telemetry.
func (a *app) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Gateway.ShutdownTimeout)
	defer cancel()

	err := a.gateway.Stop(ctx)
	if terr := a.shutdownTracing(ctx); terr != nil {
		a.logger.Warn("telemetry shutdown failed", "error", terr)
	}
	return err
}

// buildCatalog converts the configuration section into the runtime
// catalog.
func buildCatalog(mc config.ModelsConfig) (*model.Catalog, error) {
	profiles := make([]model.Profile, len(mc.Profiles))
	for i, p := range mc.Profiles {
		profiles[i] = model.Profile{
			Key:          p.Key,
			UpstreamName: p.UpstreamName,
			DisplayLabel: p.DisplayLabel,
			Description:  p.Description,
		}
	}
	return model.NewCatalog(model.CatalogConfig{
		Profiles:      profiles,
		DefaultKey:    mc.DefaultKey,
		CodeKey:       mc.CodeKey,
		VisionKey:     mc.VisionKey,
		FallbackOrder: mc.FallbackOrder,
	})
}

// newLogger builds the slog handler from the logging section.
func newLogger(lc config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch lc.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if lc.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

// resolveConfigPath searches for a config file in standard locations.
// Search order: $XDG_CONFIG_HOME/zela/zela.yaml → ./zela.yaml
func resolveConfigPath() (string, error) {
	var candidates []string

	if xdg, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		candidates = append(candidates, filepath.Join(xdg, "zela", "zela.yaml"))
	} else if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "zela", "zela.yaml"))
	}

	candidates = append(candidates, "zela.yaml")

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("no configuration file found (searched: %v)", candidates)
}
