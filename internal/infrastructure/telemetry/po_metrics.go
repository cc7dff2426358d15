package telemetry

import (
	"context"
	"fmt"

	"github.com/roofpo/backend/internal/domain/procurement"
	"github.com/roofpo/backend/internal/domain/shared"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const poMeterName = "github.com/roofpo/backend/procurement"

// orderValueBuckets line up with the approval thresholds
var orderValueBuckets = []float64{100, 500, 1000, 5000, 10000, 25000, 50000, 100000}

var varianceBuckets = []float64{-500, -100, -25, -5, 0, 5, 25, 100, 500}

// POMetrics records purchase order lifecycle metrics from domain events
type POMetrics struct {
	transitions   *Counter
	invoices      *Counter
	approvedValue *Histogram
	paidVariance  *Histogram
}

// NewPOMetrics creates the lifecycle instruments on meter
func NewPOMetrics(meter metric.Meter) (*POMetrics, error) {
	transitions, err := NewCounter(meter, "po.transitions", "Purchase order status transitions", "{transition}")
	if err != nil {
		return nil, err
	}
	invoices, err := NewCounter(meter, "po.invoices", "Invoices recorded or voided", "{invoice}")
	if err != nil {
		return nil, err
	}
	approvedValue, err := NewHistogram(meter, "po.approved.value", "Total of approved purchase orders", "USD", orderValueBuckets...)
	if err != nil {
		return nil, err
	}
	paidVariance, err := NewHistogram(meter, "po.paid.variance", "Invoiced minus expected at payment", "USD", varianceBuckets...)
	if err != nil {
		return nil, err
	}
	return &POMetrics{
		transitions:   transitions,
		invoices:      invoices,
		approvedValue: approvedValue,
		paidVariance:  paidVariance,
	}, nil
}

// NewPOMetricsFromProvider creates the instruments on the module meter
func NewPOMetricsFromProvider(mp *MeterProvider) (*POMetrics, error) {
	m, err := NewPOMetrics(mp.Meter(poMeterName))
	if err != nil {
		return nil, fmt.Errorf("po metrics: %w", err)
	}
	return m, nil
}

// EventTypes subscribes to every purchase order and invoice event
func (m *POMetrics) EventTypes() []string {
	return append(procurement.PurchaseOrderEventTypes(),
		procurement.EventTypeInvoiceRecorded,
		procurement.EventTypeInvoiceVoided,
	)
}

// Handle records the event; it never fails
func (m *POMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *procurement.InvoiceRecordedEvent:
		m.invoices.Inc(ctx, attribute.String("action", "recorded"))
		return nil
	case *procurement.InvoiceVoidedEvent:
		m.invoices.Inc(ctx, attribute.String("action", "voided"))
		return nil
	case *procurement.PurchaseOrderApprovedEvent:
		m.approvedValue.Record(ctx, e.Total.InexactFloat64(), attribute.Bool("auto_approved", e.AutoApproved))
	case *procurement.PurchaseOrderPaidEvent:
		m.paidVariance.Record(ctx, e.Variance.InexactFloat64(), attribute.Bool("overridden", e.VarianceOverridden))
	}

	if audited, ok := event.(procurement.AuditedEvent); ok {
		from, to := audited.Transition()
		if from != to {
			m.transitions.Inc(ctx,
				attribute.String("from", string(from)),
				attribute.String("to", string(to)),
			)
		}
	}
	return nil
}

var _ shared.EventHandler = (*POMetrics)(nil)
