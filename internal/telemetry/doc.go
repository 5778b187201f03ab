// Package telemetry wires OpenTelemetry tracing and metrics for notedraft.
//
// Telemetry is disabled by default. When enabled, spans and metrics are sent to
// an OTLP collector over gRPC (default) or HTTP/protobuf:
//
//	telemetry:
//	  enabled: true
//	  endpoint: "localhost:4317"
//	  protocol: grpc
//
// Failures never stop the editor. A provider that cannot be built leaves the
// instance degraded and Tracer/Meter fall back to the global no-op providers.
//
// Tests use TestTelemetry, which records spans and metrics in memory:
//
//	tt := telemetry.NewTestTelemetry()
//	ctrl, _ := autosave.NewController(ctx, field, store, prompt,
//	    autosave.WithTracerProvider(tt.TracerProvider()),
//	    autosave.WithMeterProvider(tt.MeterProvider()))
//	tt.AssertSpanExists(t, "autosave.save")
package telemetry
