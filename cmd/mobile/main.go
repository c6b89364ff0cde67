package main

import (
	"context"
	"log"

	"fyne.io/fyne/v2/app"
	"go.uber.org/zap"

	"github.com/Alexander-D-Karpov/sonicflow/internal/config"
	"github.com/Alexander-D-Karpov/sonicflow/internal/logging"
	"github.com/Alexander-D-Karpov/sonicflow/internal/ui"
)

func main() {
	cfg := config.DefaultMobileConfig()
	cfg.Debug = false

	logger, err := logging.New(cfg.Debug)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	fyneApp := app.NewWithID("io.sonicflow.mobile")

	sonicApp, err := ui.NewApp(context.Background(), fyneApp, cfg, logger)
	if err != nil {
		logger.Fatal("failed to create app", zap.Error(err))
	}

	sonicApp.ShowAndRun()
}
