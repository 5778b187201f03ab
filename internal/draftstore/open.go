package draftstore

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/notedraft/internal/config"
)

// Open builds the backend selected by cfg.Store, wrapped with metrics.
// Release it with Close.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("draftstore").With(
		zap.String("backend", cfg.Store.Backend),
		zap.String("origin", cfg.Store.Origin),
	)

	var (
		s   Store
		err error
	)
	switch cfg.Store.Backend {
	case config.BackendMemory:
		s = NewMemoryStore(WithQuota(cfg.Store.QuotaBytes.Int64()))
	case config.BackendFile:
		s, err = NewFileStore(cfg.Store.Path, cfg.Store.Origin,
			WithFileQuota(cfg.Store.QuotaBytes.Int64()),
			WithFileLogger(logger),
		)
	case config.BackendNATS:
		openCtx, cancel := context.WithTimeout(ctx, cfg.NATS.Timeout.Duration())
		defer cancel()
		s, err = ConnectKV(openCtx, cfg.NATS, cfg.Store.Origin, cfg.Store.QuotaBytes.Int64(), logger)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", cfg.Store.Backend, err)
	}

	logger.Debug("draft store opened")
	return Instrument(cfg.Store.Backend, s), nil
}
