package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Alexander-D-Karpov/sonicflow/internal/config"
	"github.com/Alexander-D-Karpov/sonicflow/internal/logging"
	"github.com/Alexander-D-Karpov/sonicflow/internal/ui"
)

var Version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		debug      bool
	)

	cmd := &cobra.Command{
		Use:           "sonicflow",
		Short:         "Discover live music events and play their previews",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), configPath, debug)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to configuration file")
	cmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging for all components")

	return cmd
}

func run(ctx context.Context, configPath string, debug bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return err
	}
	if debug {
		cfg.Debug = true
	}

	logger, err := logging.New(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Debug("configuration loaded",
		zap.String("version", Version),
		zap.String("api_base_url", cfg.API.BaseURL),
		zap.Bool("firestore", cfg.API.ProjectID != ""),
		zap.String("database", cfg.Storage.DatabasePath),
		zap.String("cache_dir", cfg.Storage.CacheDir),
		zap.String("theme", cfg.UI.Theme),
		zap.Int("window_width", cfg.UI.WindowWidth),
		zap.Int("window_height", cfg.UI.WindowHeight),
		zap.String("end_policy", cfg.Player.EndPolicy))

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fyneApp := app.NewWithID("io.sonicflow.desktop")

	sonicApp, err := ui.NewApp(ctx, fyneApp, cfg, logger)
	if err != nil {
		logger.Error("failed to create app", zap.Error(err))
		return err
	}

	setupGracefulShutdown(cancel, fyneApp, logger)
	sonicApp.ShowAndRun()
	return nil
}

// setupGracefulShutdown quits the fyne loop on SIGINT/SIGTERM; closing the
// window releases the player and the database.
func setupGracefulShutdown(cancel context.CancelFunc, fyneApp fyne.App, logger *zap.Logger) {
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)

		sig := <-c
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))

		cancel()
		fyne.Do(fyneApp.Quit)
	}()
}
