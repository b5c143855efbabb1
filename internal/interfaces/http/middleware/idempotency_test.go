package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockIdempotencyStore struct {
	mock.Mock
}

func (m *mockIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *mockIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *mockIdempotencyStore) Release(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *mockIdempotencyStore) Close() error {
	return nil
}

func TestIdempotency(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tenantID := uuid.New()
	scoped := tenantID.String() + ":POST:/sales:key-1"

	newRouter := func(store *mockIdempotencyStore, status int) (*gin.Engine, *int) {
		calls := 0
		router := gin.New()
		router.Use(RequestID(), Tenant(TenantConfig{}))
		router.POST("/sales", Idempotency(store, time.Hour), func(c *gin.Context) {
			calls++
			c.Status(status)
		})
		return router, &calls
	}
	send := func(router *gin.Engine, key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/sales", nil)
		req.Header.Set(TenantHeader, tenantID.String())
		if key != "" {
			req.Header.Set(IdempotencyKeyHeader, key)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("no header passes through", func(t *testing.T) {
		store := new(mockIdempotencyStore)
		router, calls := newRouter(store, http.StatusCreated)

		w := send(router, "")
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, 1, *calls)
		store.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("first request claims the key", func(t *testing.T) {
		store := new(mockIdempotencyStore)
		store.On("MarkProcessed", mock.Anything, scoped, time.Hour).Return(true, nil)
		router, calls := newRouter(store, http.StatusCreated)

		w := send(router, "key-1")
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, 1, *calls)
		store.AssertNotCalled(t, "Release", mock.Anything, mock.Anything)
	})

	t.Run("repeat is rejected without running the handler", func(t *testing.T) {
		store := new(mockIdempotencyStore)
		store.On("MarkProcessed", mock.Anything, scoped, time.Hour).Return(false, nil)
		router, calls := newRouter(store, http.StatusCreated)

		w := send(router, "key-1")
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_DUPLICATE_REQUEST")
		assert.Equal(t, 0, *calls)
	})

	t.Run("failed request releases the key", func(t *testing.T) {
		store := new(mockIdempotencyStore)
		store.On("MarkProcessed", mock.Anything, scoped, time.Hour).Return(true, nil)
		store.On("Release", mock.Anything, scoped).Return(nil)
		router, _ := newRouter(store, http.StatusUnprocessableEntity)

		w := send(router, "key-1")
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		store.AssertExpectations(t)
	})

	t.Run("store failure does not block", func(t *testing.T) {
		store := new(mockIdempotencyStore)
		store.On("MarkProcessed", mock.Anything, scoped, time.Hour).Return(false, errors.New("redis down"))
		router, calls := newRouter(store, http.StatusCreated)

		w := send(router, "key-1")
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, 1, *calls)
	})

	t.Run("oversized key", func(t *testing.T) {
		store := new(mockIdempotencyStore)
		router, _ := newRouter(store, http.StatusCreated)

		w := send(router, strings.Repeat("k", 300))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
