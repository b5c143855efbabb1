package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
)

func TestRegisterDBTracing(t *testing.T) {
	t.Run("disabled registers nothing", func(t *testing.T) {
		db := newSQLiteDB(t)
		require.NoError(t, RegisterDBTracing(db, DBTracingConfig{Enabled: false}, zap.NewNop()))
		assert.Nil(t, db.Callback().Query().Get("ledger_tracing:after_query"))
	})

	t.Run("records spans for queries", func(t *testing.T) {
		db := newSQLiteDB(t)
		recorder := tracetest.NewSpanRecorder()
		tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
		t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

		err := RegisterDBTracing(db, DBTracingConfig{
			Enabled:         true,
			SlowQueryThresh: time.Nanosecond,
			DBName:          "sqlite",
			TracerProvider:  tp,
		}, zap.NewNop())
		require.NoError(t, err)

		ctx, parent := tp.Tracer("test").Start(context.Background(), "parent")
		require.NoError(t, db.WithContext(ctx).Create(&widget{Name: "traced"}).Error)
		parent.End()

		spans := recorder.Ended()
		require.GreaterOrEqual(t, len(spans), 2)

		var slow bool
		for _, s := range spans {
			for _, kv := range s.Attributes() {
				if kv.Key == "db.slow_query" && kv.Value.AsBool() {
					slow = true
				}
			}
		}
		assert.True(t, slow)
	})
}
