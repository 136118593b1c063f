package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	attrOp     = "op"
	attrStatus = "status"
)

//nolint:gochecknoglobals // instrument catalog.
var (
	redRequests = instrument{name: "codefix.requests.total", desc: "Total number of requests", unit: "{request}"}
	redDuration = instrument{name: "codefix.request.duration.seconds", desc: "Request duration in seconds", unit: "s"}
	redErrors   = instrument{name: "codefix.errors.total", desc: "Total number of errors", unit: "{error}"}
	redInflight = instrument{name: "codefix.inflight.requests", desc: "Number of in-flight requests", unit: "{request}"}
)

// Request statuses.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// durationBucketBoundaries covers 1ms to 30s: code action requests are
// interactive.
var durationBucketBoundaries = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30} //nolint:gochecknoglobals // histogram layout.

// REDMetrics holds the Rate, Error, Duration instruments for protocol
// requests. A nil *REDMetrics records nothing.
type REDMetrics struct {
	requestsTotal    metric.Int64Counter
	requestDuration  metric.Float64Histogram
	errorsTotal      metric.Int64Counter
	inflightRequests metric.Int64UpDownCounter
}

// NewREDMetrics creates RED instruments from the meter.
func NewREDMetrics(mt metric.Meter) (*REDMetrics, error) {
	b := newMetricBuilder(mt)

	rm := &REDMetrics{
		requestsTotal:    b.counter(redRequests),
		requestDuration:  b.histogram(redDuration, durationBucketBoundaries),
		errorsTotal:      b.counter(redErrors),
		inflightRequests: b.upDownCounter(redInflight),
	}

	if b.err != nil {
		return nil, b.err
	}

	return rm, nil
}

// RecordRequest records a completed request.
func (rm *REDMetrics) RecordRequest(ctx context.Context, op, status string, duration time.Duration) {
	if rm == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrOp, op),
		attribute.String(attrStatus, status),
	)

	rm.requestsTotal.Add(ctx, 1, attrs)
	rm.requestDuration.Record(ctx, duration.Seconds(), attrs)

	if status == StatusError {
		rm.errorsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrOp, op)))
	}
}

// TrackInflight increments the in-flight gauge and returns its decrement.
func (rm *REDMetrics) TrackInflight(ctx context.Context, op string) func() {
	if rm == nil {
		return func() {}
	}

	attrs := metric.WithAttributes(attribute.String(attrOp, op))
	rm.inflightRequests.Add(ctx, 1, attrs)

	return func() {
		rm.inflightRequests.Add(ctx, -1, attrs)
	}
}

// Observe tracks one request of kind op: call the returned function with the
// request's error when it completes.
func (rm *REDMetrics) Observe(ctx context.Context, op string) func(err error) {
	start := time.Now()
	done := rm.TrackInflight(ctx, op)

	return func(err error) {
		done()

		status := StatusOK
		if err != nil {
			status = StatusError
		}

		rm.RecordRequest(ctx, op, status, time.Since(start))
	}
}
