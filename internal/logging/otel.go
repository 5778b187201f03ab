// internal/logging/otel.go
package logging

import (
	"fmt"
	"os"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel/log"
	"go.uber.org/zap/zapcore"
)

// newCore creates a core writing to stdout, stderr, a file and/or OTEL.
func newCore(cfg *Config, otelProvider log.LoggerProvider) (zapcore.Core, error) {
	cores := make([]zapcore.Core, 0, 4)

	if cfg.Output.Stdout || cfg.Output.Stderr || cfg.Output.File != "" {
		encoder, err := NewRedactingEncoder(newEncoder(cfg.Format), cfg.Redaction)
		if err != nil {
			return nil, fmt.Errorf("failed to create redacting encoder: %w", err)
		}

		if cfg.Output.Stdout {
			cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), cfg.Level))
		}
		if cfg.Output.Stderr {
			cores = append(cores, zapcore.NewCore(encoder.Clone(), zapcore.Lock(os.Stderr), cfg.Level))
		}
		if cfg.Output.File != "" {
			f, err := os.OpenFile(cfg.Output.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
			if err != nil {
				return nil, fmt.Errorf("failed to open log file: %w", err)
			}
			cores = append(cores, zapcore.NewCore(encoder.Clone(), zapcore.AddSync(f), cfg.Level))
		}
	}

	if cfg.Output.OTEL && otelProvider != nil {
		cores = append(cores, otelzap.NewCore("notedraft",
			otelzap.WithLoggerProvider(otelProvider),
		))
	}

	if len(cores) == 0 {
		return nil, fmt.Errorf("at least one output must be enabled and available")
	}

	var core zapcore.Core
	if len(cores) == 1 {
		core = cores[0]
	} else {
		core = zapcore.NewTee(cores...)
	}

	return newSampledCore(core, cfg.Sampling), nil
}
