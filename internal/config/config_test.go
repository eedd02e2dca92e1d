package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

const minimalYAML = `
zalo:
  bot_token: "tok-123"
  secret_token: "sec-456"
gemini:
  api_key: "key-789"
`

func TestLoad_Minimal(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Zalo.BotToken != "tok-123" {
		t.Errorf("bot token = %q", cfg.Zalo.BotToken)
	}

	// Defaults fill every tunable.
	if got := len(cfg.Models.Profiles); got != 3 {
		t.Errorf("default profiles = %d, want 3", got)
	}
	if cfg.Models.DefaultKey != "flash" || cfg.Models.CodeKey != "lite" || cfg.Models.VisionKey != "flash" {
		t.Errorf("model roles = %q/%q/%q", cfg.Models.DefaultKey, cfg.Models.CodeKey, cfg.Models.VisionKey)
	}
	if cfg.Session.Retention != 20 || cfg.Session.Window != 10 {
		t.Errorf("session = %d/%d", cfg.Session.Retention, cfg.Session.Window)
	}
	if cfg.Delivery.MaxLength != 2000 || cfg.Delivery.ChunkDelay != 500*time.Millisecond {
		t.Errorf("delivery = %d/%s", cfg.Delivery.MaxLength, cfg.Delivery.ChunkDelay)
	}
	if cfg.Retry.MaxAttempts != 3 {
		t.Errorf("retry attempts = %d", cfg.Retry.MaxAttempts)
	}
	if cfg.Gateway.Listen != ":8080" {
		t.Errorf("listen = %q", cfg.Gateway.Listen)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "text" {
		t.Errorf("logging = %q/%q", cfg.Logging.Level, cfg.Logging.Format)
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_BOT_TOKEN", "from-env")

	cfg, err := Load(writeConfig(t, `
zalo:
  bot_token: "${TEST_BOT_TOKEN}"
  secret_token: "${TEST_MISSING_SECRET:-fallback-secret}"
gemini:
  api_key: "key"
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Zalo.BotToken != "from-env" {
		t.Errorf("bot token = %q, want from-env", cfg.Zalo.BotToken)
	}
	if cfg.Zalo.SecretToken != "fallback-secret" {
		t.Errorf("secret token = %q, want the default", cfg.Zalo.SecretToken)
	}
}

func TestLoad_UnresolvedVariable(t *testing.T) {
	_, err := Load(writeConfig(t, `
zalo:
  bot_token: "${TEST_NO_SUCH_VAR}"
  secret_token: "s"
gemini:
  api_key: "k"
`))
	if err == nil || !strings.Contains(err.Error(), "unresolved variable: TEST_NO_SUCH_VAR") {
		t.Fatalf("err = %v, want unresolved variable", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for a missing file")
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		cfg.Zalo.BotToken = "t"
		cfg.Zalo.SecretToken = "s"
		cfg.Gemini.APIKey = "k"
		cfg.fillDefaults()
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(*Config) {},
		},
		{
			name:    "missing bot token",
			mutate:  func(c *Config) { c.Zalo.BotToken = "" },
			wantErr: "zalo.bot_token is required",
		},
		{
			name:    "missing secret token",
			mutate:  func(c *Config) { c.Zalo.SecretToken = "" },
			wantErr: "zalo.secret_token is required",
		},
		{
			name:    "missing api key",
			mutate:  func(c *Config) { c.Gemini.APIKey = "" },
			wantErr: "gemini.api_key is required",
		},
		{
			name:    "plain http webhook",
			mutate:  func(c *Config) { c.Zalo.WebhookURL = "http://example.com/webhook" },
			wantErr: "must be a valid https URL",
		},
		{
			name:   "https webhook",
			mutate: func(c *Config) { c.Zalo.WebhookURL = "https://example.com/webhook" },
		},
		{
			name: "duplicate profile key",
			mutate: func(c *Config) {
				c.Models.Profiles = append(c.Models.Profiles, ProfileConfig{Key: "flash", UpstreamName: "x"})
			},
			wantErr: `duplicate key "flash"`,
		},
		{
			name: "reserved auto key",
			mutate: func(c *Config) {
				c.Models.Profiles = append(c.Models.Profiles, ProfileConfig{Key: "auto", UpstreamName: "x"})
			},
			wantErr: "reserved",
		},
		{
			name:    "unknown default role",
			mutate:  func(c *Config) { c.Models.DefaultKey = "ultra" },
			wantErr: `models.default references unknown profile "ultra"`,
		},
		{
			name:    "unknown fallback entry",
			mutate:  func(c *Config) { c.Models.FallbackOrder = append(c.Models.FallbackOrder, "ultra") },
			wantErr: "fallback_order[3] references unknown profile",
		},
		{
			name:    "bad logging level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: `logging.level "verbose"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("err = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}
