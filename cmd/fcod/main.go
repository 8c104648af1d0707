// ====================================
// File: cmd/fcod/main.go
// ====================================
package main

import (
	"context"
	"flag"
	"os"

	"go.uber.org/zap"

	"github.com/TokenRevolution/FCOtoken/internal/app"
	"github.com/TokenRevolution/FCOtoken/internal/config"
	"github.com/TokenRevolution/FCOtoken/internal/logger"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		zap.NewExample().Fatal("Failed to load config", zap.Error(err))
	}

	log, err := logger.New(&logger.Config{
		LogFile:     cfg.LogFile,
		MaxSize:     100,
		MaxAge:      7,
		MaxBackups:  3,
		Compress:    true,
		Development: cfg.DebugLogging,
	})
	if err != nil {
		zap.NewExample().Fatal("Failed to build logger", zap.Error(err))
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting FCO token engine")

	runner, err := app.NewRunner(cfg, log.Logger)
	if err != nil {
		log.Fatal("Failed to assemble engine", zap.Error(err))
	}

	if err := runner.Run(context.Background()); err != nil {
		log.Error("Engine stopped with error", zap.Error(err))
		runner.Shutdown()
		os.Exit(1)
	}

	runner.Shutdown()
}
