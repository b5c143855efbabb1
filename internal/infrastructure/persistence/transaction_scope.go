package persistence

import (
	"context"

	"github.com/erp/ledger/internal/application/scope"
	"github.com/erp/ledger/internal/domain/finance"
	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/trade"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn in one database transaction. Row locks taken through the
// repositories are held until fn returns. An error from fn rolls back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos scope.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepositories{tx: tx})
	})
}

// gormRepositories binds every repository to one transaction
type gormRepositories struct {
	tx *gorm.DB
}

func (r *gormRepositories) Stocks() inventory.StockRepository {
	return NewGormStockRepository(r.tx)
}

func (r *gormRepositories) Sales() trade.SaleRepository {
	return NewGormSaleRepository(r.tx)
}

func (r *gormRepositories) Payments() finance.PaymentRepository {
	return NewGormPaymentRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ scope.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormRepositories implements Repositories
var _ scope.Repositories = (*gormRepositories)(nil)
