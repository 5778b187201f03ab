package draftstore

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OperationsTotal counts store operations.
	// Labels: backend, op (get, set, remove, keys), result (ok, miss, quota, unavailable, error)
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "notedraft",
			Subsystem: "draftstore",
			Name:      "operations_total",
			Help:      "Total number of draft store operations",
		},
		[]string{"backend", "op", "result"},
	)

	// OperationDuration tracks how long store operations take.
	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "notedraft",
			Subsystem: "draftstore",
			Name:      "operation_duration_seconds",
			Help:      "Duration of draft store operations in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"backend", "op"},
	)

	// StoredBytes is the size of the last content written, per backend.
	StoredBytes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "notedraft",
			Subsystem: "draftstore",
			Name:      "last_write_bytes",
			Help:      "Size in bytes of the most recent successful draft write",
		},
		[]string{"backend"},
	)
)

// Instrument wraps s so every operation is recorded in the package metrics
// under the given backend label.
func Instrument(backend string, s Store) Store {
	return &instrumented{backend: backend, next: s}
}

type instrumented struct {
	backend string
	next    Store
}

func (i *instrumented) observe(op string, start time.Time, result string) {
	OperationDuration.WithLabelValues(i.backend, op).Observe(time.Since(start).Seconds())
	OperationsTotal.WithLabelValues(i.backend, op, result).Inc()
}

func (i *instrumented) Get(ctx context.Context, key string) (string, bool, error) {
	start := time.Now()
	content, ok, err := i.next.Get(ctx, key)
	result := resultLabel(err)
	if err == nil && !ok {
		result = "miss"
	}
	i.observe("get", start, result)
	return content, ok, err
}

func (i *instrumented) Set(ctx context.Context, key, content string) error {
	start := time.Now()
	err := i.next.Set(ctx, key, content)
	i.observe("set", start, resultLabel(err))
	if err == nil {
		StoredBytes.WithLabelValues(i.backend).Set(float64(len(content)))
	}
	return err
}

func (i *instrumented) Remove(ctx context.Context, key string) error {
	start := time.Now()
	err := i.next.Remove(ctx, key)
	i.observe("remove", start, resultLabel(err))
	return err
}

func (i *instrumented) Keys(ctx context.Context) ([]string, error) {
	start := time.Now()
	keys, err := Keys(ctx, i.next)
	i.observe("keys", start, resultLabel(err))
	return keys, err
}

func (i *instrumented) Close() error {
	return Close(i.next)
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrQuotaExceeded):
		return "quota"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}
