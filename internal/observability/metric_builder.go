package observability

import (
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

// instrument names and describes one OTel instrument.
type instrument struct {
	name string
	desc string
	unit string
}

// metricBuilder creates instruments from one meter and remembers the first
// failure, so callers check once after the whole batch.
type metricBuilder struct {
	meter metric.Meter
	err   error
}

func newMetricBuilder(mt metric.Meter) *metricBuilder {
	return &metricBuilder{meter: mt}
}

func (b *metricBuilder) counter(in instrument) metric.Int64Counter {
	c, err := b.meter.Int64Counter(in.name, metric.WithDescription(in.desc), metric.WithUnit(in.unit))
	b.fail(in, err)

	return c
}

func (b *metricBuilder) histogram(in instrument, bounds []float64) metric.Float64Histogram {
	h, err := b.meter.Float64Histogram(in.name,
		metric.WithDescription(in.desc),
		metric.WithUnit(in.unit),
		metric.WithExplicitBucketBoundaries(bounds...),
	)
	b.fail(in, err)

	return h
}

func (b *metricBuilder) upDownCounter(in instrument) metric.Int64UpDownCounter {
	c, err := b.meter.Int64UpDownCounter(in.name, metric.WithDescription(in.desc), metric.WithUnit(in.unit))
	b.fail(in, err)

	return c
}

func (b *metricBuilder) gauge(in instrument, callback metric.Int64Callback) {
	_, err := b.meter.Int64ObservableGauge(in.name,
		metric.WithDescription(in.desc),
		metric.WithUnit(in.unit),
		metric.WithInt64Callback(callback),
	)
	b.fail(in, err)
}

func (b *metricBuilder) fail(in instrument, err error) {
	if err != nil && b.err == nil {
		b.err = fmt.Errorf("create %s: %w", in.name, err)
	}
}
