// Package main is the entry point for the PlanetLOD terrain demo.
package main

import (
	"fmt"
	"os"

	"github.com/sqweek/dialog"
	"go.uber.org/zap"

	"github.com/Faultbox/planetlod/internal/app"
	"github.com/Faultbox/planetlod/internal/config"
	"github.com/Faultbox/planetlod/internal/logger"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if path := config.WriteConfigPath(); path != "" {
		if err := cfg.SaveTo(path); err != nil {
			fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("config written to %s\n", path)
		return
	}

	// Initialize logger
	if err := logger.Setup(loggerOptions(cfg.Logging)); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== PlanetLOD ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	a, err := app.New(cfg, fatal)
	if err != nil {
		logger.Error("failed to create app", zap.Error(err))
		os.Exit(1)
	}
	defer a.Close()

	if err := a.Run(); err != nil {
		logger.Error("app error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("app closed normally")
}

// fatal reports a GPU construction failure from the loading worker. The
// process cannot continue with a missing chunk, so it shows the error and
// exits.
func fatal(err error) {
	logger.Error("fatal renderer error", zap.Error(err))
	logger.Sync()
	dialog.Message("%s", err.Error()).Title("PlanetLOD").Error()
	os.Exit(1)
}

func loggerOptions(c config.LoggingConfig) logger.Options {
	opts := logger.Options{Level: c.Level, Console: true, JSON: c.JSON}
	if c.LogFile != "" {
		opts.File = logger.FileConfig{
			Path:       c.LogFile,
			MaxSizeMB:  c.MaxSizeMB,
			MaxBackups: c.MaxBackups,
			MaxAgeDays: c.MaxAgeDays,
			Compress:   c.Compress,
		}
	}
	return opts
}
