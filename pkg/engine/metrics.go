package engine

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/Sumatoshi-tech/codefix/pkg/semantic"
)

const (
	metricActionsTotal  = "codefix.provider.actions.total"
	metricDeclinesTotal = "codefix.provider.declines.total"
	metricFaultsTotal   = "codefix.provider.faults.total"

	attrProvider = "provider.id"
	attrReason   = "reason"
)

// Decline reasons.
const (
	ReasonNoCandidate      = "no_candidate"
	ReasonSemanticRejected = "semantic_rejected"
	ReasonUnresolved       = "unresolved"
	ReasonCanceled         = "canceled"
)

// Metrics holds the provider instruments. A nil *Metrics records nothing.
type Metrics struct {
	actions  metric.Int64Counter
	declines metric.Int64Counter
	faults   metric.Int64Counter
}

// NewMetrics creates provider instruments from the meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	actions, err := meter.Int64Counter(metricActionsTotal,
		metric.WithDescription("Actions registered by providers"), metric.WithUnit("{action}"))
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricActionsTotal, err)
	}

	declines, err := meter.Int64Counter(metricDeclinesTotal,
		metric.WithDescription("Provider runs that declined"), metric.WithUnit("{decline}"))
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricDeclinesTotal, err)
	}

	faults, err := meter.Int64Counter(metricFaultsTotal,
		metric.WithDescription("Provider runs that faulted"), metric.WithUnit("{fault}"))
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricFaultsTotal, err)
	}

	return &Metrics{actions: actions, declines: declines, faults: faults}, nil
}

func (m *Metrics) recordActions(ctx context.Context, providerID string, count int) {
	if m == nil || count == 0 {
		return
	}

	m.actions.Add(ctx, int64(count), metric.WithAttributes(attribute.String(attrProvider, providerID)))
}

func (m *Metrics) recordDecline(ctx context.Context, providerID, reason string) {
	if m == nil {
		return
	}

	m.declines.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrProvider, providerID),
		attribute.String(attrReason, reason),
	))
}

func (m *Metrics) recordFault(ctx context.Context, providerID string) {
	if m == nil {
		return
	}

	m.faults.Add(ctx, 1, metric.WithAttributes(attribute.String(attrProvider, providerID)))
}

func declineReason(err error) string {
	switch {
	case errors.Is(err, ErrNoCandidate):
		return ReasonNoCandidate
	case errors.Is(err, ErrSemanticRejected):
		return ReasonSemanticRejected
	case errors.Is(err, semantic.ErrUnresolved):
		return ReasonUnresolved
	default:
		return ReasonCanceled
	}
}
