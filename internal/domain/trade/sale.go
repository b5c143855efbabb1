package trade

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus represents how far a sale has been settled
type PaymentStatus string

const (
	PaymentStatusPending     PaymentStatus = "PENDING"
	PaymentStatusPartialPaid PaymentStatus = "PARTIAL_PAID"
	PaymentStatusPaid        PaymentStatus = "PAID"
	PaymentStatusCancelled   PaymentStatus = "CANCELLED"
)

// IsValid checks if the status is a known value
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPartialPaid, PaymentStatusPaid, PaymentStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// Customer holds the buyer details captured on a sale
type Customer struct {
	Name    string
	Phone   string
	Email   string
	Address string
}

// SaleItem is a priced line of a sale. Product name and code are
// snapshotted from the stock at sale time and never change afterwards.
type SaleItem struct {
	ID           uuid.UUID
	SaleID       uuid.UUID
	StockID      uuid.UUID
	ProductCode  string
	ProductName  string
	Quantity     decimal.Decimal
	UnitPrice    decimal.Decimal
	TaxRate      decimal.Decimal
	DiscountRate decimal.Decimal
	TaxAmount    decimal.Decimal
	LineTotal    decimal.Decimal
	CreatedAt    time.Time
}

// Subtotal returns the line amount after discount and before tax
func (i *SaleItem) Subtotal() decimal.Decimal {
	return i.LineTotal.Sub(i.TaxAmount)
}

// LineInput describes a line to add to a sale
type LineInput struct {
	StockID      uuid.UUID
	ProductCode  string
	ProductName  string
	Quantity     decimal.Decimal
	UnitPrice    decimal.Decimal
	TaxRate      decimal.Decimal
	DiscountRate decimal.Decimal
}

// Sale is the aggregate root for a sale and its items
type Sale struct {
	shared.TenantAggregateRoot
	SaleNumber     string
	SaleDate       time.Time
	Customer       Customer
	Subtotal       decimal.Decimal
	TaxAmount      decimal.Decimal
	DiscountAmount decimal.Decimal
	TotalAmount    decimal.Decimal
	PaymentStatus  PaymentStatus
	Notes          string
	CancelledAt    *time.Time
	Items          []SaleItem
}

// NewSale starts an empty pending sale
func NewSale(tenantID uuid.UUID, saleNumber string, saleDate time.Time, customer Customer) (*Sale, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if saleNumber == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Sale number cannot be empty")
	}
	if saleDate.IsZero() {
		saleDate = time.Now()
	}
	return &Sale{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		SaleNumber:          saleNumber,
		SaleDate:            saleDate,
		Customer:            customer,
		Subtotal:            decimal.Zero,
		TaxAmount:           decimal.Zero,
		DiscountAmount:      decimal.Zero,
		TotalAmount:         decimal.Zero,
		PaymentStatus:       PaymentStatusPending,
		Items:               make([]SaleItem, 0),
	}, nil
}

// AddItem prices a line and accumulates it into the sale totals
func (s *Sale) AddItem(in LineInput) (*SaleItem, error) {
	label := fmt.Sprintf("%s (%s)", in.ProductCode, in.ProductName)
	qty := valueobject.RoundQuantity(in.Quantity)
	if qty.IsNegative() {
		return nil, shared.NewDomainError("INVALID_QUANTITY",
			fmt.Sprintf("Quantity for %s cannot be negative", label))
	}
	if in.UnitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE",
			fmt.Sprintf("Unit price for %s cannot be negative", label))
	}
	if !valueobject.IsValidRate(in.TaxRate) {
		return nil, shared.NewDomainError("INVALID_RATE",
			fmt.Sprintf("Tax rate for %s must be between 0 and 100", label))
	}
	if !valueobject.IsValidRate(in.DiscountRate) {
		return nil, shared.NewDomainError("INVALID_RATE",
			fmt.Sprintf("Discount rate for %s must be between 0 and 100", label))
	}

	price := valueobject.RoundMoney(in.UnitPrice)
	amounts := valueobject.PriceLine(qty, price, in.TaxRate, in.DiscountRate)

	item := SaleItem{
		ID:           uuid.New(),
		SaleID:       s.ID,
		StockID:      in.StockID,
		ProductCode:  in.ProductCode,
		ProductName:  in.ProductName,
		Quantity:     qty,
		UnitPrice:    price,
		TaxRate:      in.TaxRate,
		DiscountRate: in.DiscountRate,
		TaxAmount:    amounts.Tax,
		LineTotal:    amounts.Total,
		CreatedAt:    time.Now(),
	}
	s.Items = append(s.Items, item)
	s.Subtotal = s.Subtotal.Add(amounts.AfterDiscount)
	s.TaxAmount = s.TaxAmount.Add(amounts.Tax)
	return &s.Items[len(s.Items)-1], nil
}

// SetDiscount sets the sale-level discount amount
func (s *Sale) SetDiscount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount amount cannot be negative")
	}
	s.DiscountAmount = valueobject.RoundMoney(amount)
	return nil
}

// Finalize computes the total. A sale needs at least one item and
// its discount cannot exceed subtotal plus tax.
func (s *Sale) Finalize() error {
	if len(s.Items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Sale must have at least one item")
	}
	gross := s.Subtotal.Add(s.TaxAmount)
	if s.DiscountAmount.GreaterThan(gross) {
		return shared.NewDomainError("INVALID_DISCOUNT",
			fmt.Sprintf("Discount %s exceeds sale amount %s", s.DiscountAmount.StringFixed(2), gross.StringFixed(2)))
	}
	s.TotalAmount = gross.Sub(s.DiscountAmount)
	return nil
}

// IsCancelled reports whether the sale has been cancelled
func (s *Sale) IsCancelled() bool {
	return s.PaymentStatus == PaymentStatusCancelled
}

// ApplyIncomeTotal derives the payment status from the income received.
// It reports whether the status changed. Cancelled sales are left untouched.
func (s *Sale) ApplyIncomeTotal(paid decimal.Decimal) bool {
	if s.IsCancelled() {
		return false
	}
	next := PaymentStatusPending
	switch {
	case paid.GreaterThanOrEqual(s.TotalAmount):
		next = PaymentStatusPaid
	case paid.IsPositive():
		next = PaymentStatusPartialPaid
	}
	if next == s.PaymentStatus {
		return false
	}
	s.PaymentStatus = next
	s.Touch()
	return true
}

// Cancel marks the sale cancelled. A paid sale cannot be cancelled.
// Cancelling twice is a no-op that reports alreadyCancelled.
func (s *Sale) Cancel() (alreadyCancelled bool, err error) {
	switch s.PaymentStatus {
	case PaymentStatusCancelled:
		return true, nil
	case PaymentStatusPaid:
		return false, shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Sale %s is paid and cannot be cancelled", s.SaleNumber))
	}
	now := time.Now()
	s.PaymentStatus = PaymentStatusCancelled
	s.CancelledAt = &now
	s.UpdatedAt = now
	return false, nil
}

// SaleNumberPrefix returns the per-day prefix, e.g. S20240315
func SaleNumberPrefix(saleDate time.Time) string {
	return "S" + saleDate.Format("20060102")
}

// NextSaleNumber returns the number following last within prefix.
// An empty last starts the day at 0001.
func NextSaleNumber(prefix, last string) (string, error) {
	if last == "" {
		return prefix + "0001", nil
	}
	if !strings.HasPrefix(last, prefix) {
		return "", fmt.Errorf("sale number %q does not carry prefix %q", last, prefix)
	}
	seq, err := strconv.Atoi(strings.TrimPrefix(last, prefix))
	if err != nil {
		return "", fmt.Errorf("parse sale number %q: %w", last, err)
	}
	return fmt.Sprintf("%s%04d", prefix, seq+1), nil
}
