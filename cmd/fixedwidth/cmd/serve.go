/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ssargent/fixedwidth/pkg/api"
	"github.com/ssargent/fixedwidth/pkg/config"
	"github.com/ssargent/fixedwidth/pkg/logging"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start the fixedwidth REST API server.

Every spec in the configured layouts directory is compiled at startup and
served under /api/v1/layouts/{name}, where name is the file name without its
extension. Requests must carry the client API key in X-API-Key.

Examples:
  fixedwidth serve
  fixedwidth serve --config ./fixedwidth.yaml --port 9000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		if configPath == "" {
			configPath = config.GetDefaultConfigPath()
		}

		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config (run 'fixedwidth init' first): %w", err)
		}
		applyServeFlags(cmd, cfg)

		// The config's logging section applies unless --log-level was given
		if !cmd.Flags().Changed("log-level") {
			logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}
			logging.SetLogger(logger)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return serve(ctx, cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("config", "", "Path to config file (default: OS-specific location)")
	serveCmd.Flags().IntP("port", "p", 0, "Port to listen on (overrides config)")
	serveCmd.Flags().String("bind", "", "Address to bind server to (overrides config)")
	serveCmd.Flags().String("layouts-dir", "", "Directory holding layout specs (overrides config)")
}

// applyServeFlags overrides config values with explicitly set flags
func applyServeFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("port") {
		cfg.Port, _ = cmd.Flags().GetInt("port")
	}
	if cmd.Flags().Changed("bind") {
		cfg.Bind, _ = cmd.Flags().GetString("bind")
	}
	if cmd.Flags().Changed("layouts-dir") {
		cfg.LayoutsDir, _ = cmd.Flags().GetString("layouts-dir")
	}
}

// serve loads the catalog and runs the API server until ctx is done
func serve(ctx context.Context, cfg *config.Config) error {
	if container == nil {
		return fmt.Errorf("dependency container not initialized")
	}
	if cfg.Security.ClientAPIKey == "" || cfg.Security.ClientAPIKey == "auto" {
		return fmt.Errorf("client API key is not set (run 'fixedwidth init' first)")
	}

	logger := logging.Logger()

	catalog, err := container.GetCatalogLoader()(cfg.LayoutsDir)
	if err != nil {
		return fmt.Errorf("failed to load layouts: %w", err)
	}
	logger.Info("layouts loaded",
		zap.String("dir", cfg.LayoutsDir),
		zap.Int("count", catalog.Len()),
	)

	serverStarter := container.GetServerFactory().CreateServerStarter()
	serverConfig := api.ServerConfig{
		Port:         cfg.Port,
		Bind:         cfg.Bind,
		APIKey:       cfg.Security.ClientAPIKey,
		MaxBodyBytes: cfg.Limits.MaxBodyBytes,
	}

	if err := serverStarter.StartServer(ctx, catalog, serverConfig, logger); err != nil {
		return fmt.Errorf("error starting server: %w", err)
	}
	return nil
}
