// Package main is the entry point for the zela CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/zela-ai/zela/internal/config"
	"github.com/zela-ai/zela/internal/zalo"
)

// Set by goreleaser ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Local .env files feed the ${VAR} expansion in the YAML config.
	_ = godotenv.Load()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "zela",
		Short:         "A Zalo chat bot backed by Gemini models",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(versionCmd(), startCmd(), configCmd(), webhookCmd(), serviceCmd())
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("zela %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

func startCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the webhook gateway and message relay",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfgPath, err := configPathFlag(cmd)
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), cfgPath)
			if err != nil {
				return err
			}
			return a.run(cmd.Context())
		},
	}
	cmd.Flags().StringP("config", "c", "", "Path to configuration file")
	return cmd
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "check <path>",
		Short: "Validate configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := config.Load(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Configuration OK (%d model profiles)\n", len(cfg.Models.Profiles))
			for _, p := range cfg.Models.Profiles {
				fmt.Printf("  %s -> %s\n", p.Key, p.UpstreamName)
			}
			return nil
		},
	})
	return cmd
}

func webhookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webhook",
		Short: "Manage the Bot API webhook registration",
	}

	set := &cobra.Command{
		Use:   "set",
		Short: "Register the configured public URL with the platform",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadFromFlag(cmd)
			if err != nil {
				return err
			}
			if cfg.Zalo.WebhookURL == "" {
				return fmt.Errorf("zalo.webhook_url is not configured")
			}
			client := zalo.NewClient(cfg.Zalo.BotToken, cfg.Zalo.BaseURL)
			if err := client.SetWebhook(cmd.Context(), cfg.Zalo.WebhookURL, cfg.Zalo.SecretToken); err != nil {
				return err
			}
			fmt.Printf("Webhook registered: %s\n", cfg.Zalo.WebhookURL)
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete",
		Short: "Remove the webhook registration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadFromFlag(cmd)
			if err != nil {
				return err
			}
			client := zalo.NewClient(cfg.Zalo.BotToken, cfg.Zalo.BaseURL)
			if err := client.DeleteWebhook(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("Webhook removed")
			return nil
		},
	}

	for _, c := range []*cobra.Command{set, del} {
		c.Flags().StringP("config", "c", "", "Path to configuration file")
		cmd.AddCommand(c)
	}
	return cmd
}

// configPathFlag resolves the --config flag, falling back to the
// standard search locations.
func configPathFlag(cmd *cobra.Command) (string, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	if cfgPath != "" {
		return cfgPath, nil
	}
	return resolveConfigPath()
}

func loadFromFlag(cmd *cobra.Command) (*config.Config, error) {
	cfgPath, err := configPathFlag(cmd)
	if err != nil {
		return nil, err
	}
	return config.Load(cfgPath)
}
