package autosave

import (
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fyrsmithlabs/notedraft/internal/config"
	"github.com/fyrsmithlabs/notedraft/internal/logging"
)

// DefaultInterval is the autosave period used when none is configured.
const DefaultInterval = config.DefaultAutosaveInterval

// SaveEvent describes a successful autosave.
type SaveEvent struct {
	FieldID string
	Bytes   int
	At      time.Time
}

type options struct {
	interval       time.Duration
	logger         *logging.Logger
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	onSaved        func(SaveEvent)
}

func defaultOptions() options {
	return options{interval: DefaultInterval}
}

// Option configures a Controller or a Registrar.
type Option func(*options)

// WithInterval sets the delay between ticks. Non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.interval = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithTracerProvider sets the provider for autosave spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tracerProvider = tp }
}

// WithMeterProvider sets the provider for autosave counters.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) { o.meterProvider = mp }
}

// WithSavedHook registers fn to be called after every successful save.
// fn runs on the saving goroutine, outside the controller lock, and must not
// call Stop or Clear on the same controller.
func WithSavedHook(fn func(SaveEvent)) Option {
	return func(o *options) { o.onSaved = fn }
}
