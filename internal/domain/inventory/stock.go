package inventory

import (
	"fmt"
	"strings"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Stock is a sellable product line held by a tenant.
// Quantity never drops below zero; an inactive stock is soft deleted and cannot be sold.
type Stock struct {
	shared.TenantAggregateRoot
	Code          string
	Name          string
	Quantity      decimal.Decimal
	PurchasePrice decimal.Decimal
	SalePrice     decimal.Decimal
	MinQuantity   *decimal.Decimal
	IsActive      bool
}

// NewStock creates an active stock with the given opening quantity
func NewStock(tenantID uuid.UUID, code, name string, quantity, purchasePrice, salePrice decimal.Decimal) (*Stock, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	s := &Stock{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		IsActive:            true,
	}
	if err := s.setDetails(code, name, purchasePrice, salePrice); err != nil {
		return nil, err
	}
	quantity = valueobject.RoundQuantity(quantity)
	if quantity.IsNegative() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}
	s.Quantity = quantity
	return s, nil
}

// Update replaces the descriptive fields and prices
func (s *Stock) Update(code, name string, purchasePrice, salePrice decimal.Decimal, minQuantity *decimal.Decimal) error {
	if err := s.setDetails(code, name, purchasePrice, salePrice); err != nil {
		return err
	}
	if err := s.SetMinQuantity(minQuantity); err != nil {
		return err
	}
	s.Touch()
	return nil
}

func (s *Stock) setDetails(code, name string, purchasePrice, salePrice decimal.Decimal) error {
	code = strings.TrimSpace(code)
	name = strings.TrimSpace(name)
	if code == "" || len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Stock code must be 1-50 characters")
	}
	if name == "" || len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Stock name must be 1-200 characters")
	}
	if purchasePrice.IsNegative() || salePrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Prices cannot be negative")
	}
	s.Code = code
	s.Name = name
	s.PurchasePrice = valueobject.RoundMoney(purchasePrice)
	s.SalePrice = valueobject.RoundMoney(salePrice)
	return nil
}

// SetMinQuantity sets the low stock threshold; nil clears it
func (s *Stock) SetMinQuantity(minQuantity *decimal.Decimal) error {
	if minQuantity == nil {
		s.MinQuantity = nil
		return nil
	}
	if minQuantity.IsNegative() {
		return shared.NewDomainError("INVALID_QUANTITY", "Minimum quantity cannot be negative")
	}
	m := valueobject.RoundQuantity(*minQuantity)
	s.MinQuantity = &m
	return nil
}

// Label identifies the stock in error messages
func (s *Stock) Label() string {
	return fmt.Sprintf("%s (%s)", s.Code, s.Name)
}

// CheckAvailable verifies the stock can supply quantity
func (s *Stock) CheckAvailable(quantity decimal.Decimal) error {
	if !s.IsActive {
		return shared.NewDomainError(shared.CodeStockInactive,
			fmt.Sprintf("Stock %s is inactive", s.Label()))
	}
	if quantity.IsNegative() {
		return shared.NewDomainError("INVALID_QUANTITY",
			fmt.Sprintf("Quantity for %s cannot be negative", s.Label()))
	}
	if quantity.GreaterThan(s.Quantity) {
		return shared.NewDomainError(shared.CodeInsufficientStock,
			fmt.Sprintf("Insufficient stock for %s: requested %s, available %s",
				s.Label(), quantity.String(), s.Quantity.String()))
	}
	return nil
}

// Decrease removes quantity from an active stock
func (s *Stock) Decrease(quantity decimal.Decimal) error {
	quantity = valueobject.RoundQuantity(quantity)
	if err := s.CheckAvailable(quantity); err != nil {
		return err
	}
	s.Quantity = s.Quantity.Sub(quantity)
	s.Touch()
	return nil
}

// Adjust applies a signed delta, refusing to go below zero
func (s *Stock) Adjust(delta decimal.Decimal) error {
	delta = valueobject.RoundQuantity(delta)
	next := s.Quantity.Add(delta)
	if next.IsNegative() {
		return shared.NewDomainError(shared.CodeInsufficientStock,
			fmt.Sprintf("Adjustment of %s would leave %s below zero", delta.String(), s.Label()))
	}
	s.Quantity = next
	s.Touch()
	return nil
}

// Deactivate soft deletes the stock
func (s *Stock) Deactivate() error {
	if !s.IsActive {
		return shared.NewDomainError(shared.CodeInvalidState, "Stock is already inactive")
	}
	s.IsActive = false
	s.Touch()
	return nil
}

// IsLowStock reports whether quantity is at or below the minimum threshold
func (s *Stock) IsLowStock() bool {
	return s.MinQuantity != nil && s.Quantity.LessThanOrEqual(*s.MinQuantity)
}
