// Package config handles YAML configuration loading, environment variable
// expansion, defaulting and structural validation for zela.
package config

import "time"

// Config is the top-level configuration structure.
type Config struct {
	Zalo      ZaloConfig      `yaml:"zalo"`
	Gemini    GeminiConfig    `yaml:"gemini"`
	Models    ModelsConfig    `yaml:"models"`
	Session   SessionConfig   `yaml:"session"`
	Delivery  DeliveryConfig  `yaml:"delivery"`
	Retry     RetryConfig     `yaml:"retry"`
	Gateway   GatewayConfig   `yaml:"gateway"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ZaloConfig holds the chat platform credentials and webhook identity.
type ZaloConfig struct {
	// BotToken authenticates outbound Bot API calls.
	BotToken string `yaml:"bot_token"`

	// SecretToken is echoed by the platform in the webhook header and
	// checked on every inbound delivery.
	SecretToken string `yaml:"secret_token"`

	// WebhookURL is the public HTTPS endpoint registered with the
	// platform on startup. Leave empty to skip auto-registration.
	WebhookURL string `yaml:"webhook_url,omitempty"`

	// BaseURL overrides the Bot API origin. Used in tests.
	BaseURL string `yaml:"base_url,omitempty"`
}

// GeminiConfig holds upstream API settings.
type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
}

// ModelsConfig describes the model catalog and automatic selection.
type ModelsConfig struct {
	// Profiles lists the selectable models. Empty selects the built-in
	// flash/lite/pro set.
	Profiles []ProfileConfig `yaml:"profiles,omitempty"`

	DefaultKey string `yaml:"default,omitempty"`
	CodeKey    string `yaml:"code,omitempty"`
	VisionKey  string `yaml:"vision,omitempty"`

	// FallbackOrder is the retry ordering across profiles. Empty means
	// the declaration order of Profiles.
	FallbackOrder []string `yaml:"fallback_order,omitempty"`

	// CodeKeywords extends the built-in keyword list that routes text
	// to the code profile.
	CodeKeywords []string `yaml:"code_keywords,omitempty"`
}

// ProfileConfig is one catalog entry.
type ProfileConfig struct {
	Key          string `yaml:"key"`
	UpstreamName string `yaml:"upstream_name"`
	DisplayLabel string `yaml:"display_label"`
	Description  string `yaml:"description,omitempty"`
}

// SessionConfig bounds per-user conversation state.
type SessionConfig struct {
	// Retention is the stored turn cap per user.
	Retention int `yaml:"retention,omitempty"`

	// Window is the transcript sub-window used for prompt composition.
	Window int `yaml:"window,omitempty"`
}

// DeliveryConfig tunes chunked message delivery.
type DeliveryConfig struct {
	// MaxLength is the per-message character limit of the channel.
	MaxLength int `yaml:"max_length,omitempty"`

	// ChunkDelay is the pause between consecutive chunks.
	ChunkDelay time.Duration `yaml:"chunk_delay,omitempty"`
}

// RetryConfig bounds generation retries.
type RetryConfig struct {
	MaxAttempts int `yaml:"max_attempts,omitempty"`
}

// GatewayConfig holds the HTTP listener settings.
type GatewayConfig struct {
	Listen          string        `yaml:"listen,omitempty"`
	ReadTimeout     time.Duration `yaml:"read_timeout,omitempty"`
	WriteTimeout    time.Duration `yaml:"write_timeout,omitempty"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout,omitempty"`
}

// TelemetryConfig enables optional OTLP trace export.
type TelemetryConfig struct {
	// OTLPEndpoint is the collector host:port. Empty disables tracing.
	OTLPEndpoint string `yaml:"otlp_endpoint,omitempty"`

	// ServiceName overrides the reported service.name resource.
	ServiceName string `yaml:"service_name,omitempty"`

	// Insecure disables TLS toward the collector.
	Insecure bool `yaml:"insecure,omitempty"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level,omitempty"`

	// Format is "text" or "json".
	Format string `yaml:"format,omitempty"`
}

// fillDefaults applies defaults to every zero-valued tunable.
func (c *Config) fillDefaults() {
	if len(c.Models.Profiles) == 0 {
		c.Models.Profiles = []ProfileConfig{
			{Key: "flash", UpstreamName: "gemini-2.5-flash", DisplayLabel: "Gemini 2.5 Flash", Description: "cân bằng, dùng hàng ngày"},
			{Key: "lite", UpstreamName: "gemini-2.5-flash-lite", DisplayLabel: "Gemini 2.5 Flash Lite", Description: "nhanh, câu hỏi kỹ thuật"},
			{Key: "pro", UpstreamName: "gemini-2.5-pro", DisplayLabel: "Gemini 2.5 Pro", Description: "suy luận sâu"},
		}
		// The built-in set routes code/math questions to the low-latency
		// profile.
		if c.Models.CodeKey == "" {
			c.Models.CodeKey = "lite"
		}
	}
	if c.Models.DefaultKey == "" {
		c.Models.DefaultKey = c.Models.Profiles[0].Key
	}
	if c.Models.CodeKey == "" {
		c.Models.CodeKey = c.Models.DefaultKey
	}
	if c.Models.VisionKey == "" {
		c.Models.VisionKey = c.Models.DefaultKey
	}
	if len(c.Models.FallbackOrder) == 0 {
		for _, p := range c.Models.Profiles {
			c.Models.FallbackOrder = append(c.Models.FallbackOrder, p.Key)
		}
	}

	if c.Session.Retention == 0 {
		c.Session.Retention = 20
	}
	if c.Session.Window == 0 {
		c.Session.Window = 10
	}

	if c.Delivery.MaxLength == 0 {
		c.Delivery.MaxLength = 2000
	}
	if c.Delivery.ChunkDelay == 0 {
		c.Delivery.ChunkDelay = 500 * time.Millisecond
	}

	if c.Retry.MaxAttempts == 0 {
		c.Retry.MaxAttempts = 3
	}

	if c.Gateway.Listen == "" {
		c.Gateway.Listen = ":8080"
	}
	if c.Gateway.ReadTimeout == 0 {
		c.Gateway.ReadTimeout = 15 * time.Second
	}
	if c.Gateway.WriteTimeout == 0 {
		c.Gateway.WriteTimeout = 30 * time.Second
	}
	if c.Gateway.ShutdownTimeout == 0 {
		c.Gateway.ShutdownTimeout = 10 * time.Second
	}

	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = "zela"
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}
