package autosave

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/notedraft/internal/logging"
)

const instrumentationName = "github.com/fyrsmithlabs/notedraft/internal/autosave"

// instruments holds the tracer and counters shared by controllers.
type instruments struct {
	tracer          trace.Tracer
	saveCounter     metric.Int64Counter
	recoveryCounter metric.Int64Counter
	clearCounter    metric.Int64Counter
}

func newInstruments(o options, logger *logging.Logger) *instruments {
	tp := o.tracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	mp := o.meterProvider
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(instrumentationName)

	ins := &instruments{tracer: tp.Tracer(instrumentationName)}

	var err error
	ins.saveCounter, err = meter.Int64Counter(
		"notedraft.autosave.saves_total",
		metric.WithDescription("Total number of autosave write attempts"),
		metric.WithUnit("{save}"),
	)
	if err != nil {
		logger.Warn(context.Background(), "failed to create save counter", zap.Error(err))
	}

	ins.recoveryCounter, err = meter.Int64Counter(
		"notedraft.autosave.recoveries_total",
		metric.WithDescription("Total number of draft recovery prompts by outcome"),
		metric.WithUnit("{prompt}"),
	)
	if err != nil {
		logger.Warn(context.Background(), "failed to create recovery counter", zap.Error(err))
	}

	ins.clearCounter, err = meter.Int64Counter(
		"notedraft.autosave.clears_total",
		metric.WithDescription("Total number of drafts cleared on submit"),
		metric.WithUnit("{clear}"),
	)
	if err != nil {
		logger.Warn(context.Background(), "failed to create clear counter", zap.Error(err))
	}

	return ins
}

func (i *instruments) countSave(ctx context.Context, fieldID, result string) {
	if i.saveCounter != nil {
		i.saveCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String("field.id", fieldID),
			attribute.String("result", result),
		))
	}
}

func (i *instruments) countRecovery(ctx context.Context, fieldID, outcome string) {
	if i.recoveryCounter != nil {
		i.recoveryCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String("field.id", fieldID),
			attribute.String("outcome", outcome),
		))
	}
}

func (i *instruments) countClear(ctx context.Context, fieldID string) {
	if i.clearCounter != nil {
		i.clearCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("field.id", fieldID)))
	}
}
