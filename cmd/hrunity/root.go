package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"hrunity/internal/app/server"
	"hrunity/internal/platform/config"
	"hrunity/internal/platform/logging"
)

// Version is set at build time via ldflags: -ldflags "-X main.Version=1.0.0"
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:          "hrunity",
	Short:        "hrunity - quarterly performance reviews",
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (default command)",
	RunE:  runServe,
}

func init() {
	rootCmd.Version = Version
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(storageCmd)
	rootCmd.AddCommand(emailCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves configuration and installs the process logger.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	logging.Setup(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	slog.Info("configuration loaded", "version", Version, "storage", cfg.StorageDriver)
	return server.Run(ctx, cfg)
}

// openApp builds the app for a maintenance command. Background jobs are
// not started.
func openApp(ctx context.Context) (*server.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return server.New(ctx, cfg)
}
