// Package cli implements the teakeys command line.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"teakeys/internal/config"
	"teakeys/internal/logger"
)

type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "teakeys",
		Short:        "Extract, clean and apply column keys from HTML reference pages",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (.yaml, .yml or .toml)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug|info|warn|error (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "log format: text|json (overrides config)")

	cmd.AddCommand(
		initCmd(opts),
		scrapeCmd(opts),
		cleanCmd(opts),
		remapCmd(opts),
		showCmd(opts),
		runCmd(opts),
	)

	return cmd
}

// load resolves the config file (or defaults) and builds the logger.
func (o *rootOptions) load(cmd *cobra.Command) (*config.Config, *logger.Logger, error) {
	cfg := config.Default()

	if o.configPath != "" {
		loaded, err := config.LoadConfig(o.configPath)
		if err != nil {
			return nil, nil, err
		}

		cfg = loaded
	}

	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}

	if o.logFormat != "" {
		cfg.Logging.Format = o.logFormat
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	log := logger.New(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
	log.Debug("configuration loaded", "config", cfg.String())

	return cfg, log, nil
}
