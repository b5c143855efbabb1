package testutil

import (
	"net/http"
	"testing"

	"github.com/erp/ledger/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMockDB(t *testing.T) {
	mockDB := NewMockDB(t)

	assert.NotNil(t, mockDB.DB)
	assert.NotNil(t, mockDB.Mock)
	mockDB.ExpectationsWereMet(t)
}

type widget struct {
	ID   uint
	Name string
}

func TestNewSQLiteDB(t *testing.T) {
	db := NewSQLiteDB(t, &widget{})

	require.NoError(t, db.Create(&widget{Name: "bolt"}).Error)

	var count int64
	require.NoError(t, db.Model(&widget{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestNewTestUUID(t *testing.T) {
	assert.Equal(t, NewTestUUID("a"), NewTestUUID("a"))
	assert.NotEqual(t, NewTestUUID("a"), NewTestUUID("b"))
	assert.Equal(t, NewTestUUID("test-tenant"), TestTenantID())
}

func TestDec(t *testing.T) {
	assert.Equal(t, "12.50", Dec("12.5").StringFixed(2))
	assert.Panics(t, func() { Dec("twelve") })
}

func TestDoJSONAndDecode(t *testing.T) {
	engine := gin.New()
	engine.POST("/echo", func(c *gin.Context) {
		var body map[string]string
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(dto.ErrCodeInvalidJSON, err.Error(), c.GetHeader("X-Request-ID")))
			return
		}
		c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(body, 1, 1, 20))
	})

	t.Run("success", func(t *testing.T) {
		w := DoJSON(t, engine, http.MethodPost, "/echo", map[string]string{"code": "BOLT"}, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		var got map[string]string
		env := DecodeEnvelope(t, w, &got)
		assert.True(t, env.Success)
		assert.Equal(t, "BOLT", got["code"])
		require.NotNil(t, env.Meta)
		assert.Equal(t, int64(1), env.Meta.Total)
	})

	t.Run("error", func(t *testing.T) {
		w := DoJSON(t, engine, http.MethodPost, "/echo", nil, map[string]string{"X-Request-ID": "r-1"})

		env := AssertErrorResponse(t, w, http.StatusBadRequest, dto.ErrCodeInvalidJSON)
		assert.Equal(t, "r-1", env.Error.RequestID)
	})
}
