package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leofalp/intake/internal/config"
	obslog "github.com/leofalp/intake/providers/observability/slog"
)

type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "intake",
		Short:         "Fill patient intake forms from free text with a local LLM",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "path to a YAML config file")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: DEBUG, INFO, WARN or ERROR")
	flags.StringVar(&opts.logFormat, "log-format", "", "log format: text, json or compact")

	cmd.AddCommand(
		newExtractCmd(opts),
		newServeCmd(opts),
		newMCPCmd(opts),
		newSchemaCmd(),
	)
	return cmd
}

// load resolves the configuration and the logger, with flags taking
// precedence over the file and the environment.
func (o *rootOptions) load() (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Log.Format = o.logFormat
	}

	level, err := obslog.LookupLogLevel(cfg.Log.Level)
	if err != nil {
		return config.Config{}, nil, err
	}
	logger := obslog.NewLogger(nil, level, obslog.ParseFormat(cfg.Log.Format))
	return cfg, logger, nil
}
