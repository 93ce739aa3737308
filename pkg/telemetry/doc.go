// Package telemetry instruments element render cycles.
//
// A Recorder is notified when a render cycle starts and finishes, when an
// update request is deferred and when an event is dispatched. Prometheus
// collects counters and histograms; Tracing opens one OpenTelemetry span
// per render cycle. Multi fans out to several recorders and Nop does
// nothing.
//
//	reg := prometheus.NewRegistry()
//	rec := telemetry.Multi(
//	    telemetry.NewPrometheus(telemetry.WithRegistry(reg)),
//	    telemetry.NewTracing(),
//	)
package telemetry
