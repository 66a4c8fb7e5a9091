package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"dnsmonitor/internal/app"
	"dnsmonitor/internal/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "dnsmonitor",
		Short:   "Monitor the DNS records of a domain",
		Long:    "Resolve a domain, compare it with the stored snapshot history and report additions, removals and modifications.",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Show help by default when no subcommand is provided.
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("config", os.Getenv("CONFIG_FILE"), "YAML config file overlaid on the environment (env CONFIG_FILE)")
	cmd.PersistentFlags().String("domain", "", "Domain to monitor (overrides MONITOR_DOMAIN)")
	cmd.PersistentFlags().String("log-format", "console", "Log format (console|json)")
	cmd.PersistentFlags().String("log-level", "info", "Log level (debug|info|warn|error)")

	cmd.PersistentPreRunE = func(c *cobra.Command, _ []string) error {
		format, _ := c.Flags().GetString("log-format")
		level, _ := c.Flags().GetString("log-level")
		return setupLogging(format, level)
	}

	cmd.AddCommand(newCmdVersion())
	cmd.AddCommand(newCmdCheck())
	cmd.AddCommand(newCmdSnapshots())
	cmd.AddCommand(newCmdServeDNS())
	cmd.AddCommand(newCmdWatch())
	return cmd
}

func setupLogging(format, level string) error {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(lvl)

	switch format {
	case "console", "human":
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	case "json":
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	default:
		return fmt.Errorf("invalid log format %q", format)
	}
	return nil
}

// loadConfig builds the configuration from the environment, the --config file
// and the --domain flag, in that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.LoadConfig()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		var err error
		if cfg, err = config.LoadFile(path); err != nil {
			return nil, err
		}
	}
	if domain, _ := cmd.Flags().GetString("domain"); domain != "" {
		cfg.Monitor.Domain = domain
	}
	return cfg, nil
}

// withApp wires the application for one command run
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}
