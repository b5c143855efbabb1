package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Is(t *testing.T) {
	t.Run("descriptive instance matches sentinel", func(t *testing.T) {
		err := NewDomainError(CodeInsufficientStock, "Insufficient stock for product P-1 (Widget)")
		assert.True(t, errors.Is(err, ErrInsufficientStock))
		assert.False(t, errors.Is(err, ErrNotFound))
	})

	t.Run("wrapped instance matches sentinel", func(t *testing.T) {
		err := fmt.Errorf("create sale: %w", NewDomainError(CodeStockInactive, "Stock P-2 is inactive"))
		assert.True(t, errors.Is(err, ErrStockInactive))
	})

	t.Run("non domain target never matches", func(t *testing.T) {
		assert.False(t, errors.Is(ErrConflict, errors.New("CONFLICT")))
	})
}

func TestIsValidationError(t *testing.T) {
	assert.True(t, IsValidationError(NewDomainError("INVALID_DISCOUNT", "too large")))
	assert.True(t, IsValidationError(fmt.Errorf("wrap: %w", ErrValidation)))
	assert.False(t, IsValidationError(ErrNotFound))
	assert.False(t, IsValidationError(errors.New("boom")))
}

func TestFilter_Normalize(t *testing.T) {
	f := Filter{Page: 0, PageSize: 500}.Normalize()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 100, f.PageSize)
	assert.NotNil(t, f.Filters)

	f = Filter{Page: 3, PageSize: 10}.Normalize()
	assert.Equal(t, 20, f.Offset())
}

func TestNewPaginated(t *testing.T) {
	p := NewPaginated([]int{1, 2}, 21, 1, 10)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, int64(21), p.Total)

	empty := NewPaginated([]int{}, 0, 1, 0)
	assert.Equal(t, 0, empty.TotalPages)
}
