package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/notedraft/internal/config"
	"github.com/fyrsmithlabs/notedraft/internal/draftstore"
	"github.com/fyrsmithlabs/notedraft/internal/logging"
	"github.com/fyrsmithlabs/notedraft/internal/telemetry"
)

const shutdownTimeout = 5 * time.Second

// app holds the dependencies shared by every command.
type app struct {
	cfg    *config.Config
	logger *logging.Logger
	tel    *telemetry.Telemetry
	store  draftstore.Store
	pageID string
}

// newApp loads configuration and initializes telemetry, the logger and the
// draft store. interactive commands own the terminal, so they never log to
// stdout or stderr.
func newApp(ctx context.Context, interactive bool) (*app, error) {
	cfg, err := config.LoadWithFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	tel, err := telemetry.New(ctx, telemetry.FromSettings(cfg.Telemetry, version))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	logger, err := initLogger(cfg.Logging, tel, interactive)
	if err != nil {
		_ = tel.Shutdown(ctx)
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if h := tel.Health(); h.Degraded {
		logger.Warn(ctx, "telemetry degraded", zap.String("reason", h.Reason))
	}

	a := &app{
		cfg:    cfg,
		logger: logger,
		tel:    tel,
		pageID: uuid.NewString(),
	}

	store, err := draftstore.Open(ctx, cfg, logger.Underlying())
	if err != nil {
		a.Close()
		return nil, err
	}
	a.store = store

	return a, nil
}

// Context returns ctx tagged with the app's page id and logger.
func (a *app) Context(ctx context.Context) context.Context {
	ctx = logging.WithPageID(ctx, a.pageID)
	return logging.WithLogger(ctx, a.logger)
}

// Close releases the store, flushes telemetry and syncs the logger.
func (a *app) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if a.store != nil {
		if err := draftstore.Close(a.store); err != nil {
			a.logger.Warn(ctx, "closing draft store failed", zap.Error(err))
		}
	}
	if a.tel != nil {
		if err := a.tel.Shutdown(ctx); err != nil {
			a.logger.Warn(ctx, "telemetry shutdown failed", zap.Error(err))
		}
	}
	_ = a.logger.Sync() // Best-effort sync on shutdown
}

// loggingConfig maps user settings onto a logging configuration.
func loggingConfig(settings config.LoggingConfig, otel, interactive bool) (*logging.Config, error) {
	cfg := logging.NewDefaultConfig()

	level, err := logging.LevelFromString(settings.Level)
	if err != nil {
		return nil, err
	}
	cfg.Level = level
	cfg.Format = settings.Format
	cfg.Fields["version"] = version

	cfg.Output.Stdout = false
	cfg.Output.Stderr = !interactive
	cfg.Output.File = settings.File
	cfg.Output.OTEL = otel

	return cfg, nil
}

// initLogger builds the logger. An interactive command with no log file and
// no telemetry gets a logger that discards everything.
func initLogger(settings config.LoggingConfig, tel *telemetry.Telemetry, interactive bool) (*logging.Logger, error) {
	cfg, err := loggingConfig(settings, tel.IsEnabled(), interactive)
	if err != nil {
		return nil, err
	}
	if !cfg.Output.Stderr && cfg.Output.File == "" && !cfg.Output.OTEL {
		return logging.Nop(), nil
	}
	return logging.NewLogger(cfg, tel.LoggerProvider())
}
