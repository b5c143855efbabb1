// Package scope defines the unit of work shared by the ledger services.
package scope

import (
	"context"

	"github.com/erp/ledger/internal/domain/finance"
	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/trade"
)

// TransactionScope runs a function inside one database transaction.
// If the function returns an error the transaction is rolled back,
// otherwise it is committed.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}

// Repositories gives access to every ledger repository bound to the
// same underlying transaction.
type Repositories interface {
	Stocks() inventory.StockRepository
	Sales() trade.SaleRepository
	Payments() finance.PaymentRepository
}

// NoOpTransactionScope runs the function directly against the given
// repositories. It is meant for tests and single-statement callers.
type NoOpTransactionScope struct {
	stocks   inventory.StockRepository
	sales    trade.SaleRepository
	payments finance.PaymentRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope
func NewNoOpTransactionScope(
	stocks inventory.StockRepository,
	sales trade.SaleRepository,
	payments finance.PaymentRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		stocks:   stocks,
		sales:    sales,
		payments: payments,
	}
}

// Execute runs fn without a transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos Repositories) error) error {
	return fn(s)
}

// Stocks returns the stock repository
func (s *NoOpTransactionScope) Stocks() inventory.StockRepository {
	return s.stocks
}

// Sales returns the sale repository
func (s *NoOpTransactionScope) Sales() trade.SaleRepository {
	return s.sales
}

// Payments returns the payment repository
func (s *NoOpTransactionScope) Payments() finance.PaymentRepository {
	return s.payments
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ Repositories = (*NoOpTransactionScope)(nil)
