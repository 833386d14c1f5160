package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/FreePeak/acceptance-mcp-server/internal/builder"
	"github.com/FreePeak/acceptance-mcp-server/internal/config"
	"github.com/FreePeak/acceptance-mcp-server/internal/infrastructure/logging"
	"github.com/FreePeak/acceptance-mcp-server/internal/infrastructure/metrics"
)

type flags struct {
	envFile       string
	transport     string
	addr          string
	schemaPath    string
	noSchemaCache bool
	logLevel      string
	logDev        bool
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:           "acceptance-mcp-server",
		Short:         "MCP server validating acceptance criteria against a JSON Schema",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(f.envFile)
			if err != nil {
				return err
			}
			applyFlags(cmd, f, &cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&f.envFile, "env-file", ".env", "optional .env file loaded before the environment")
	cmd.Flags().StringVar(&f.transport, "transport", config.TransportStdio, "transport to serve on (stdio or http)")
	cmd.Flags().StringVar(&f.addr, "addr", ":8080", "HTTP listen address")
	cmd.Flags().StringVar(&f.schemaPath, "schema", "resources/story.schema.json", "story schema path, relative to the working directory")
	cmd.Flags().BoolVar(&f.noSchemaCache, "no-schema-cache", false, "reload the schema on every request")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	cmd.Flags().BoolVar(&f.logDev, "log-dev", false, "development logging")
	return cmd
}

// applyFlags lets explicitly set flags win over the environment.
func applyFlags(cmd *cobra.Command, f flags, cfg *config.Config) {
	changed := cmd.Flags().Changed
	if changed("transport") {
		cfg.Server.Transport = f.transport
	}
	if changed("addr") {
		cfg.Server.HTTPAddr = f.addr
	}
	if changed("schema") {
		cfg.Schema.Path = f.schemaPath
	}
	if changed("no-schema-cache") {
		cfg.Schema.Cache = !f.noSchemaCache
	}
	if changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if changed("log-dev") {
		cfg.Log.Development = f.logDev
	}
}

func run(parent context.Context, cfg config.Config) error {
	logCfg := logging.DefaultConfig()
	logCfg.Level = logging.ParseLevel(cfg.Log.Level)
	logCfg.Development = cfg.Log.Development
	logCfg.InitialFields = logging.Fields{"service": cfg.Server.Name}

	logger, err := logging.New(logCfg)
	if err != nil {
		return errors.Wrap(err, "creating logger")
	}
	defer func() { _ = logger.Sync() }()
	logging.SetDefault(logger)

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	b := newBuilder(cfg, logger)

	logger.Info("starting MCP server", logging.Fields{
		"transport": cfg.Server.Transport,
		"schema":    cfg.Schema.Path,
	})

	if cfg.Server.Transport == config.TransportHTTP {
		logger.Info("listening", logging.Fields{"addr": cfg.Server.HTTPAddr})
		return b.ServeHTTP(ctx)
	}
	return b.ServeStdio(ctx)
}

// newBuilder configures the server for cfg. Metrics are only collected on
// the HTTP transport, the only one that serves /metrics.
func newBuilder(cfg config.Config, logger *logging.Logger) *builder.ServerBuilder {
	b := builder.NewServerBuilder().
		FromConfig(cfg).
		WithLogger(logger)
	if cfg.Server.Transport == config.TransportHTTP {
		b.WithMetrics(metrics.New())
	}
	return b
}
