package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate checks the structural validity of a Config. Credentials must
// be present, the model section must be internally consistent, and the
// webhook URL, when set, must be HTTPS.
func (c *Config) Validate() error {
	var errs []error

	if c.Zalo.BotToken == "" {
		errs = append(errs, errors.New("config: zalo.bot_token is required"))
	}
	if c.Zalo.SecretToken == "" {
		errs = append(errs, errors.New("config: zalo.secret_token is required"))
	}
	if c.Zalo.WebhookURL != "" {
		u, err := url.Parse(c.Zalo.WebhookURL)
		if err != nil || u.Scheme != "https" || u.Host == "" {
			errs = append(errs, fmt.Errorf("config: zalo.webhook_url must be a valid https URL, got %q", c.Zalo.WebhookURL))
		}
	}

	if c.Gemini.APIKey == "" {
		errs = append(errs, errors.New("config: gemini.api_key is required"))
	}

	errs = append(errs, c.validateModels()...)

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("config: logging.level %q is not one of debug, info, warn, error", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("config: logging.format %q is not one of text, json", c.Logging.Format))
	}

	return errors.Join(errs...)
}

func (c *Config) validateModels() []error {
	var errs []error

	keys := make(map[string]bool, len(c.Models.Profiles))
	for i, p := range c.Models.Profiles {
		if p.Key == "" {
			errs = append(errs, fmt.Errorf("config: models.profiles[%d]: key is required", i))
			continue
		}
		if strings.EqualFold(p.Key, "auto") {
			errs = append(errs, fmt.Errorf("config: models.profiles[%d]: key %q is reserved", i, p.Key))
		}
		if keys[p.Key] {
			errs = append(errs, fmt.Errorf("config: models.profiles[%d]: duplicate key %q", i, p.Key))
		}
		keys[p.Key] = true
		if p.UpstreamName == "" {
			errs = append(errs, fmt.Errorf("config: models.profiles[%d]: upstream_name is required", i))
		}
	}

	for _, role := range []struct{ name, key string }{
		{"models.default", c.Models.DefaultKey},
		{"models.code", c.Models.CodeKey},
		{"models.vision", c.Models.VisionKey},
	} {
		if key := role.key; key != "" && !keys[key] {
			errs = append(errs, fmt.Errorf("config: %s references unknown profile %q", role.name, key))
		}
	}

	for i, key := range c.Models.FallbackOrder {
		if !keys[key] {
			errs = append(errs, fmt.Errorf("config: models.fallback_order[%d] references unknown profile %q", i, key))
		}
	}

	return errs
}
