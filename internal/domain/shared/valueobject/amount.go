// Package valueobject holds the decimal conventions shared by the ledger:
// money carries 2 decimal places and quantities carry 3.
package valueobject

import (
	"github.com/shopspring/decimal"
)

const (
	// MoneyScale is the number of decimal places kept for monetary amounts
	MoneyScale int32 = 2
	// QuantityScale is the number of decimal places kept for stock quantities
	QuantityScale int32 = 3
)

var hundred = decimal.NewFromInt(100)

// RoundMoney rounds half away from zero to 2 decimal places
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// RoundQuantity rounds half away from zero to 3 decimal places
func RoundQuantity(d decimal.Decimal) decimal.Decimal {
	return d.Round(QuantityScale)
}

// IsValidRate reports whether rate is a percentage within [0, 100]
func IsValidRate(rate decimal.Decimal) bool {
	return !rate.IsNegative() && rate.LessThanOrEqual(hundred)
}

// LineAmounts is the priced breakdown of one sale line
type LineAmounts struct {
	AfterDiscount decimal.Decimal
	Tax           decimal.Decimal
	Total         decimal.Decimal
}

// PriceLine prices quantity x unitPrice with the discount rate applied first
// and the tax rate on top. Total is rounded once from the exact product:
//
//	Total = round2(qty * price * (1 - discount/100) * (1 + tax/100))
//
// AfterDiscount is the rounded post-discount amount and Tax is the remainder,
// so Total == AfterDiscount + Tax always holds.
func PriceLine(quantity, unitPrice, taxRate, discountRate decimal.Decimal) LineAmounts {
	one := decimal.NewFromInt(1)
	after := quantity.Mul(unitPrice).Mul(one.Sub(discountRate.Div(hundred)))
	total := RoundMoney(after.Mul(one.Add(taxRate.Div(hundred))))
	afterRounded := RoundMoney(after)
	return LineAmounts{
		AfterDiscount: afterRounded,
		Tax:           total.Sub(afterRounded),
		Total:         total,
	}
}
