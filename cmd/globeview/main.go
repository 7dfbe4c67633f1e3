// Package main is the entry point for the Midgard globe viewer.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-globe/internal/config"
	"github.com/Faultbox/midgard-globe/internal/engine/imagery"
	"github.com/Faultbox/midgard-globe/internal/logger"
	"github.com/Faultbox/midgard-globe/internal/tilestore"
	"github.com/Faultbox/midgard-globe/internal/viewer"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Config error:")
		for _, e := range config.Errors(err) {
			fmt.Fprintf(os.Stderr, "  %v\n", e)
		}
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== Midgard Globe ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		source  imagery.Retriever
		closers []io.Closer
	)
	if cfg.Imagery.Enabled {
		store, err := tilestore.Open(cfg.Imagery.StorePath)
		if err != nil {
			logger.Error("failed to open tile store", zap.String("path", cfg.Imagery.StorePath), zap.Error(err))
			os.Exit(1)
		}
		source = store.Dataset(cfg.Imagery.Dataset)
		closers = append(closers, store)
	}

	// Create and run viewer
	v, err := viewer.New(cfg, source, closers...)
	if err != nil {
		logger.Error("failed to create viewer", zap.Error(err))
		for _, c := range closers {
			c.Close()
		}
		os.Exit(1)
	}

	// Run the frame loop
	runErr := v.Run(ctx)
	if err := v.Close(); err != nil {
		logger.Warn("viewer closed with errors", zap.Error(err))
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		logger.Error("viewer error", zap.Error(runErr))
		os.Exit(1)
	}

	logger.Info("viewer closed normally")
}
