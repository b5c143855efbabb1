package telemetry

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when a metrics recorder is built without a meter
var ErrMeterNil = errors.New("telemetry: meter is nil")

// LedgerMetrics records sale and payment activity
type LedgerMetrics struct {
	salesCreated   *Counter
	salesCancelled *Counter
	saleAmount     *Histogram
	saleItems      *Histogram
	payments       *Counter
	paymentAmount  *Histogram
}

// NewLedgerMetrics creates the instruments under prefix, e.g. "ledger"
func NewLedgerMetrics(meter metric.Meter, prefix string) (*LedgerMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	if prefix == "" {
		prefix = "ledger"
	}
	name := func(s string) string { return prefix + "_" + s }

	m := &LedgerMetrics{}
	var err error
	if m.salesCreated, err = NewCounter(meter, name("sales_created_total"), "Sales created", "{sale}"); err != nil {
		return nil, err
	}
	if m.salesCancelled, err = NewCounter(meter, name("sales_cancelled_total"), "Sales cancelled", "{sale}"); err != nil {
		return nil, err
	}
	if m.saleAmount, err = NewHistogram(meter, HistogramOpts{
		Name:        name("sale_amount"),
		Description: "Total amount of created sales",
		Unit:        "{currency}",
		Boundaries:  AmountBuckets,
	}); err != nil {
		return nil, err
	}
	if m.saleItems, err = NewHistogram(meter, HistogramOpts{
		Name:        name("sale_items"),
		Description: "Lines per created sale",
		Unit:        "{item}",
		Boundaries:  ItemCountBuckets,
	}); err != nil {
		return nil, err
	}
	if m.payments, err = NewCounter(meter, name("payments_total"), "Payments recorded", "{payment}"); err != nil {
		return nil, err
	}
	if m.paymentAmount, err = NewHistogram(meter, HistogramOpts{
		Name:        name("payment_amount"),
		Description: "Amount of recorded payments",
		Unit:        "{currency}",
		Boundaries:  AmountBuckets,
	}); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordSaleCreated counts a new sale with its total and line count
func (m *LedgerMetrics) RecordSaleCreated(ctx context.Context, tenantID uuid.UUID, total decimal.Decimal, items int) {
	tenant := AttrTenantID.String(tenantID.String())
	m.salesCreated.Inc(ctx, tenant)
	m.saleAmount.Record(ctx, total.InexactFloat64(), tenant)
	m.saleItems.Record(ctx, float64(items), tenant)
}

// RecordSaleCancelled counts a cancellation
func (m *LedgerMetrics) RecordSaleCancelled(ctx context.Context, tenantID uuid.UUID) {
	m.salesCancelled.Inc(ctx, AttrTenantID.String(tenantID.String()))
}

// RecordPayment counts a payment by type along with its amount
func (m *LedgerMetrics) RecordPayment(ctx context.Context, tenantID uuid.UUID, paymentType string, amount decimal.Decimal) {
	attrs := []attribute.KeyValue{
		AttrTenantID.String(tenantID.String()),
		AttrPaymentType.String(paymentType),
	}
	m.payments.Inc(ctx, attrs...)
	m.paymentAmount.Record(ctx, amount.InexactFloat64(), attrs...)
}
