package testutil

import (
	"context"

	"github.com/erp/ledger/internal/domain/finance"
	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockStockRepository is a testify mock of inventory.StockRepository
type MockStockRepository struct {
	mock.Mock
}

func (m *MockStockRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*inventory.Stock, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Stock), args.Error(1)
}

func (m *MockStockRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*inventory.Stock, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Stock), args.Error(1)
}

func (m *MockStockRepository) FindByIDsForUpdate(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]inventory.Stock, error) {
	args := m.Called(ctx, tenantID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.Stock), args.Error(1)
}

func (m *MockStockRepository) ExistsActiveCode(ctx context.Context, tenantID uuid.UUID, code string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, code, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStockRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]inventory.Stock, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.Stock), args.Error(1)
}

func (m *MockStockRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStockRepository) FindBelowMinimum(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]inventory.Stock, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.Stock), args.Error(1)
}

func (m *MockStockRepository) Save(ctx context.Context, stock *inventory.Stock) error {
	args := m.Called(ctx, stock)
	return args.Error(0)
}

func (m *MockStockRepository) DecreaseQuantity(ctx context.Context, tenantID, id uuid.UUID, quantity decimal.Decimal) (bool, error) {
	args := m.Called(ctx, tenantID, id, quantity)
	return args.Bool(0), args.Error(1)
}

func (m *MockStockRepository) IncreaseQuantity(ctx context.Context, tenantID, id uuid.UUID, quantity decimal.Decimal) (bool, error) {
	args := m.Called(ctx, tenantID, id, quantity)
	return args.Bool(0), args.Error(1)
}

// MockSaleRepository is a testify mock of trade.SaleRepository
type MockSaleRepository struct {
	mock.Mock
}

func (m *MockSaleRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*trade.Sale, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Sale), args.Error(1)
}

func (m *MockSaleRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*trade.Sale, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Sale), args.Error(1)
}

func (m *MockSaleRepository) FindBySaleNumber(ctx context.Context, tenantID uuid.UUID, saleNumber string) (*trade.Sale, error) {
	args := m.Called(ctx, tenantID, saleNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Sale), args.Error(1)
}

func (m *MockSaleRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]trade.Sale, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]trade.Sale), args.Error(1)
}

func (m *MockSaleRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSaleRepository) LastSaleNumber(ctx context.Context, tenantID uuid.UUID, prefix string) (string, error) {
	args := m.Called(ctx, tenantID, prefix)
	return args.String(0), args.Error(1)
}

func (m *MockSaleRepository) Create(ctx context.Context, sale *trade.Sale) error {
	args := m.Called(ctx, sale)
	return args.Error(0)
}

func (m *MockSaleRepository) UpdateStatus(ctx context.Context, sale *trade.Sale) error {
	args := m.Called(ctx, sale)
	return args.Error(0)
}

// MockPaymentRepository is a testify mock of finance.PaymentRepository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*finance.Payment, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter finance.PaymentFilter) ([]finance.Payment, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]finance.Payment), args.Error(1)
}

func (m *MockPaymentRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter finance.PaymentFilter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPaymentRepository) FindBySale(ctx context.Context, tenantID, saleID uuid.UUID) ([]finance.Payment, error) {
	args := m.Called(ctx, tenantID, saleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]finance.Payment), args.Error(1)
}

func (m *MockPaymentRepository) SumIncomeBySale(ctx context.Context, tenantID, saleID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, saleID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockPaymentRepository) SumByType(ctx context.Context, tenantID uuid.UUID, filter finance.PaymentFilter) (finance.PaymentTotals, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(finance.PaymentTotals), args.Error(1)
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *finance.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

var (
	_ inventory.StockRepository = (*MockStockRepository)(nil)
	_ trade.SaleRepository      = (*MockSaleRepository)(nil)
	_ finance.PaymentRepository = (*MockPaymentRepository)(nil)
)
