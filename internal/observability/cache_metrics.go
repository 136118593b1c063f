package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const attrCache = "cache"

//nolint:gochecknoglobals // instrument catalog.
var (
	cacheHits   = instrument{name: "codefix.cache.hits", desc: "Cache hit count", unit: "{hit}"}
	cacheMisses = instrument{name: "codefix.cache.misses", desc: "Cache miss count", unit: "{miss}"}
)

// CacheStats exposes cache hit and miss counters for export.
type CacheStats interface {
	CacheHits() int64
	CacheMisses() int64
}

// RegisterCacheMetrics reports each named cache as observable gauges.
func RegisterCacheMetrics(mt metric.Meter, caches map[string]CacheStats) error {
	if len(caches) == 0 {
		return nil
	}

	observe := func(read func(CacheStats) int64) metric.Int64Callback {
		return func(_ context.Context, o metric.Int64Observer) error {
			for name, stats := range caches {
				o.Observe(read(stats), metric.WithAttributes(attribute.String(attrCache, name)))
			}

			return nil
		}
	}

	b := newMetricBuilder(mt)
	b.gauge(cacheHits, observe(CacheStats.CacheHits))
	b.gauge(cacheMisses, observe(CacheStats.CacheMisses))

	return b.err
}
