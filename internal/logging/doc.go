// Package logging provides structured logging for notedraft.
//
// # Overview
//
// Logger wraps Zap with:
//   - Custom Trace level (-2, below Debug)
//   - Stdout and optional OpenTelemetry output
//   - Automatic context fields (trace_id, page.id, form.id, field.id)
//   - Redaction of note text and credentials
//   - Level-aware sampling (errors never sampled)
//
// # Usage
//
//	cfg := logging.NewDefaultConfig()
//	logger, err := logging.NewLogger(cfg, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer logger.Sync()
//
//	ctx = logging.WithPageID(ctx, pageID)
//	ctx = logging.WithFieldID(ctx, "notes")
//	logger.Info(ctx, "draft saved", zap.Int("bytes", n))
//
// # Redaction
//
// Draft content is user text and never belongs in logs. The default config
// redacts the "content", "draft" and "value" keys along with the usual
// credential names. Use Content to log only the size of a text:
//
//	logger.Debug(ctx, "tick", logging.Content("content", value))
//
// # Testing
//
//	tl := logging.NewTestLogger()
//	tl.Info(ctx, "draft saved")
//	tl.AssertLogged(t, zapcore.InfoLevel, "draft saved")
package logging
