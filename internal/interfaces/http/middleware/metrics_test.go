package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)

	reg := prometheus.NewRegistry()
	m, err := NewHTTPMetrics(reg, "ledger")
	require.NoError(t, err)

	router := gin.New()
	router.Use(m.Middleware())
	router.GET("/stocks/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/metrics", MetricsHandler(reg))

	for _, id := range []string{"a", "b", "c"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/stocks/"+id, nil))
	}
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, 3.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/stocks/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.inFlight))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "ledger_http_requests_total"))
	assert.True(t, strings.Contains(w.Body.String(), "ledger_http_request_duration_seconds_bucket"))

	t.Run("double registration fails", func(t *testing.T) {
		_, err := NewHTTPMetrics(reg, "ledger")
		assert.Error(t, err)
	})
}
