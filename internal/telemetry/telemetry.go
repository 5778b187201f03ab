package telemetry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/trace"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Telemetry owns the tracer and meter providers of one notedraft process.
type Telemetry struct {
	config *Config
	logger *zap.Logger

	tracerProvider *trace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider

	healthy  atomic.Bool
	degraded atomic.Bool

	mu     sync.Mutex
	reason string
}

// Option configures New.
type Option func(*options)

type options struct {
	logger     *zap.Logger
	spanExp    trace.SpanExporter
	metricExp  sdkmetric.Exporter
	setGlobals bool
}

// WithLogger sets the logger used to report degradation.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithTraceExporter overrides the OTLP span exporter.
func WithTraceExporter(exp trace.SpanExporter) Option {
	return func(o *options) { o.spanExp = exp }
}

// WithMetricExporter overrides the OTLP metric exporter.
func WithMetricExporter(exp sdkmetric.Exporter) Option {
	return func(o *options) { o.metricExp = exp }
}

// WithoutGlobals keeps the providers out of the otel global registry.
func WithoutGlobals() Option {
	return func(o *options) { o.setGlobals = false }
}

// New validates cfg and builds the providers.
//
// A disabled config yields an instance whose Tracer and Meter delegate to the
// global providers. Provider errors degrade the instance instead of failing.
func New(ctx context.Context, cfg *Config, opts ...Option) (*Telemetry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid telemetry config: %w", err)
	}

	o := options{setGlobals: true}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	t := &Telemetry{config: cfg, logger: o.logger}
	t.healthy.Store(true)

	if !cfg.Enabled {
		return t, nil
	}

	res := newResource(cfg)

	tp, err := newTracerProvider(ctx, cfg, res, o.spanExp)
	if err != nil {
		t.setDegraded("tracer provider", err)
	} else {
		t.tracerProvider = tp
		if o.setGlobals {
			otel.SetTracerProvider(tp)
		}
	}

	mp, err := newMeterProvider(ctx, cfg, res, o.metricExp)
	if err != nil {
		t.setDegraded("meter provider", err)
	} else if mp != nil {
		t.meterProvider = mp
		if o.setGlobals {
			otel.SetMeterProvider(mp)
		}
	}

	if o.setGlobals {
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))
	}

	return t, nil
}

// TracerProvider returns the SDK provider, or the global one when not configured.
func (t *Telemetry) TracerProvider() oteltrace.TracerProvider {
	if t == nil || t.tracerProvider == nil {
		return otel.GetTracerProvider()
	}
	return t.tracerProvider
}

// MeterProvider returns the SDK provider, or the global one when not configured.
func (t *Telemetry) MeterProvider() metric.MeterProvider {
	if t == nil || t.meterProvider == nil {
		return otel.GetMeterProvider()
	}
	return t.meterProvider
}

// Tracer returns a tracer for the given instrumentation scope.
func (t *Telemetry) Tracer(name string, opts ...oteltrace.TracerOption) oteltrace.Tracer {
	return t.TracerProvider().Tracer(name, opts...)
}

// Meter returns a meter for the given instrumentation scope.
func (t *Telemetry) Meter(name string, opts ...metric.MeterOption) metric.Meter {
	return t.MeterProvider().Meter(name, opts...)
}

// LoggerProvider returns the provider for the otelzap bridge, or nil when
// telemetry is disabled.
func (t *Telemetry) LoggerProvider() log.LoggerProvider {
	if !t.IsEnabled() {
		return nil
	}
	return global.GetLoggerProvider()
}

// Shutdown flushes and stops all providers. Without a deadline on ctx the
// configured shutdown timeout applies.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}

	if _, ok := ctx.Deadline(); !ok && t.config != nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.config.Shutdown.Timeout.Duration())
		defer cancel()
	}

	var errs []error
	if t.tracerProvider != nil {
		if err := t.tracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("trace provider shutdown: %w", err))
		}
	}
	if t.meterProvider != nil {
		if err := t.meterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	t.healthy.Store(false)
	return errors.Join(errs...)
}

// ForceFlush exports all pending telemetry.
func (t *Telemetry) ForceFlush(ctx context.Context) error {
	if t == nil {
		return nil
	}

	var errs []error
	if t.tracerProvider != nil {
		if err := t.tracerProvider.ForceFlush(ctx); err != nil {
			errs = append(errs, fmt.Errorf("trace flush: %w", err))
		}
	}
	if t.meterProvider != nil {
		if err := t.meterProvider.ForceFlush(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter flush: %w", err))
		}
	}
	return errors.Join(errs...)
}

// HealthStatus reports whether providers are running.
type HealthStatus struct {
	Healthy  bool
	Degraded bool
	Reason   string
}

// Health returns the current telemetry health status.
func (t *Telemetry) Health() HealthStatus {
	if t == nil {
		return HealthStatus{Healthy: false, Degraded: true}
	}
	t.mu.Lock()
	reason := t.reason
	t.mu.Unlock()
	return HealthStatus{
		Healthy:  t.healthy.Load(),
		Degraded: t.degraded.Load(),
		Reason:   reason,
	}
}

// IsEnabled returns true if telemetry is enabled and not shut down.
func (t *Telemetry) IsEnabled() bool {
	if t == nil || t.config == nil {
		return false
	}
	return t.config.Enabled && t.healthy.Load()
}

func (t *Telemetry) setDegraded(what string, err error) {
	t.degraded.Store(true)
	t.mu.Lock()
	t.reason = fmt.Sprintf("%s: %v", what, err)
	t.mu.Unlock()
	t.logger.Warn("telemetry degraded", zap.String("component", what), zap.Error(err))
}
