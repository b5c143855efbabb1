package telemetry

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMeter(t *testing.T) (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	return reader, provider
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumValue(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestNewLedgerMetrics(t *testing.T) {
	t.Run("nil meter", func(t *testing.T) {
		m, err := NewLedgerMetrics(nil, "")
		assert.ErrorIs(t, err, ErrMeterNil)
		assert.Nil(t, m)
	})

	t.Run("records sales and payments", func(t *testing.T) {
		reader, provider := newTestMeter(t)
		m, err := NewLedgerMetrics(provider.Meter("test"), "")
		require.NoError(t, err)

		ctx := context.Background()
		tenantID := uuid.New()
		m.RecordSaleCreated(ctx, tenantID, decimal.NewFromInt(32), 2)
		m.RecordSaleCreated(ctx, tenantID, decimal.NewFromInt(8), 1)
		m.RecordSaleCancelled(ctx, tenantID)
		m.RecordPayment(ctx, tenantID, "INCOME", decimal.NewFromInt(12))

		metrics := collect(t, reader)
		assert.Equal(t, int64(2), sumValue(t, metrics["ledger_sales_created_total"]))
		assert.Equal(t, int64(1), sumValue(t, metrics["ledger_sales_cancelled_total"]))
		assert.Equal(t, int64(1), sumValue(t, metrics["ledger_payments_total"]))

		hist, ok := metrics["ledger_sale_amount"].Data.(metricdata.Histogram[float64])
		require.True(t, ok)
		require.Len(t, hist.DataPoints, 1)
		assert.Equal(t, uint64(2), hist.DataPoints[0].Count)
		assert.InDelta(t, 40.0, hist.DataPoints[0].Sum, 0.0001)

		payments := metrics["ledger_payments_total"].Data.(metricdata.Sum[int64])
		require.Len(t, payments.DataPoints, 1)
		v, ok := payments.DataPoints[0].Attributes.Value(attribute.Key("payment_type"))
		require.True(t, ok)
		assert.Equal(t, "INCOME", v.AsString())
	})

	t.Run("custom prefix", func(t *testing.T) {
		reader, provider := newTestMeter(t)
		m, err := NewLedgerMetrics(provider.Meter("test"), "shop")
		require.NoError(t, err)
		m.RecordSaleCancelled(context.Background(), uuid.New())

		metrics := collect(t, reader)
		_, ok := metrics["shop_sales_cancelled_total"]
		assert.True(t, ok)
	})
}
