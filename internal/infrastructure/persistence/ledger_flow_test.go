package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	appfinance "github.com/erp/ledger/internal/application/finance"
	appinventory "github.com/erp/ledger/internal/application/inventory"
	apptrade "github.com/erp/ledger/internal/application/trade"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ledger struct {
	stocks   *appinventory.StockService
	sales    *apptrade.SaleService
	payments *appfinance.PaymentService
}

func newLedger(t *testing.T) *ledger {
	t.Helper()
	db := newSQLiteDB(t)
	txScope := NewGormTransactionScope(db)

	stocks := appinventory.NewStockService(NewGormStockRepository(db), txScope, nil)
	sales := apptrade.NewSaleService(NewGormSaleRepository(db), txScope, stocks, nil)
	payments := appfinance.NewPaymentService(NewGormPaymentRepository(db), txScope, sales, nil)
	return &ledger{stocks: stocks, sales: sales, payments: payments}
}

func (l *ledger) stock(t *testing.T, tenantID uuid.UUID, code, qty, price string) uuid.UUID {
	t.Helper()
	resp, err := l.stocks.Create(context.Background(), tenantID, appinventory.CreateStockRequest{
		Code:      code,
		Name:      "Product " + code,
		Quantity:  dec(qty),
		SalePrice: dec(price),
	})
	require.NoError(t, err)
	return resp.ID
}

func (l *ledger) quantity(t *testing.T, tenantID, stockID uuid.UUID) decimal.Decimal {
	t.Helper()
	resp, err := l.stocks.GetByID(context.Background(), tenantID, stockID)
	require.NoError(t, err)
	return resp.Quantity
}

func (l *ledger) pay(t *testing.T, tenantID, saleID uuid.UUID, amount string) uuid.UUID {
	t.Helper()
	resp, err := l.payments.CreatePayment(context.Background(), tenantID, appfinance.CreatePaymentRequest{
		SaleID: &saleID,
		Amount: dec(amount),
		Type:   "INCOME",
		Method: "CASH",
	})
	require.NoError(t, err)
	return resp.ID
}

func (l *ledger) status(t *testing.T, tenantID, saleID uuid.UUID) string {
	t.Helper()
	resp, err := l.sales.GetByID(context.Background(), tenantID, saleID)
	require.NoError(t, err)
	return resp.PaymentStatus
}

func errorCode(err error) string {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

func TestLedgerFlow_SaleLifecycle(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)
	tenantID := uuid.New()
	saleDate := time.Date(2024, 3, 15, 14, 0, 0, 0, time.UTC)

	bolts := l.stock(t, tenantID, "BOLT", "10", "10.00")
	nuts := l.stock(t, tenantID, "NUT", "100", "0.50")

	sale, err := l.sales.CreateSale(ctx, tenantID, apptrade.CreateSaleRequest{
		SaleDate:     &saleDate,
		CustomerName: "Acme",
		Items: []apptrade.CreateSaleItemInput{
			{StockID: bolts, Quantity: dec("2"), TaxRate: dec("10")},
			{StockID: nuts, Quantity: dec("20")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "S202403150001", sale.SaleNumber)
	assert.Equal(t, "30.00", sale.Subtotal.StringFixed(2))
	assert.Equal(t, "2.00", sale.TaxAmount.StringFixed(2))
	assert.Equal(t, "32.00", sale.TotalAmount.StringFixed(2))
	assert.Equal(t, "PENDING", sale.PaymentStatus)
	assert.True(t, dec("8").Equal(l.quantity(t, tenantID, bolts)))
	assert.True(t, dec("80").Equal(l.quantity(t, tenantID, nuts)))

	t.Run("next sale of the day is numbered in sequence", func(t *testing.T) {
		next, err := l.sales.CreateSale(ctx, tenantID, apptrade.CreateSaleRequest{
			SaleDate: &saleDate,
			Items:    []apptrade.CreateSaleItemInput{{StockID: nuts, Quantity: dec("1")}},
		})
		require.NoError(t, err)
		assert.Equal(t, "S202403150002", next.SaleNumber)
	})

	t.Run("payments move the status and deletion reverts it", func(t *testing.T) {
		first := l.pay(t, tenantID, sale.ID, "12")
		assert.Equal(t, "PARTIAL_PAID", l.status(t, tenantID, sale.ID))

		second := l.pay(t, tenantID, sale.ID, "20")
		assert.Equal(t, "PAID", l.status(t, tenantID, sale.ID))

		found, err := l.payments.DeletePayment(ctx, tenantID, second)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "PARTIAL_PAID", l.status(t, tenantID, sale.ID))

		found, err = l.payments.DeletePayment(ctx, tenantID, first)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "PENDING", l.status(t, tenantID, sale.ID))
	})

	t.Run("cancel restores stock once", func(t *testing.T) {
		found, err := l.sales.Cancel(ctx, tenantID, sale.ID)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "CANCELLED", l.status(t, tenantID, sale.ID))
		assert.True(t, dec("10").Equal(l.quantity(t, tenantID, bolts)))
		assert.True(t, dec("99").Equal(l.quantity(t, tenantID, nuts)))

		found, err = l.sales.Cancel(ctx, tenantID, sale.ID)
		require.NoError(t, err)
		assert.True(t, found)
		assert.True(t, dec("10").Equal(l.quantity(t, tenantID, bolts)))
	})

	t.Run("payment on a cancelled sale keeps it cancelled", func(t *testing.T) {
		l.pay(t, tenantID, sale.ID, "32")
		assert.Equal(t, "CANCELLED", l.status(t, tenantID, sale.ID))
	})

	t.Run("unknown sale cancels as not found", func(t *testing.T) {
		found, err := l.sales.Cancel(ctx, tenantID, uuid.New())
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestLedgerFlow_FailedSaleRollsBack(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)
	tenantID := uuid.New()

	plenty := l.stock(t, tenantID, "PLENTY", "50", "1")
	scarce := l.stock(t, tenantID, "SCARCE", "1", "1")

	_, err := l.sales.CreateSale(ctx, tenantID, apptrade.CreateSaleRequest{
		Items: []apptrade.CreateSaleItemInput{
			{StockID: plenty, Quantity: dec("5")},
			{StockID: scarce, Quantity: dec("2")},
		},
	})
	require.Error(t, err)
	assert.Equal(t, shared.CodeInsufficientStock, errorCode(err))
	assert.True(t, dec("50").Equal(l.quantity(t, tenantID, plenty)))
	assert.True(t, dec("1").Equal(l.quantity(t, tenantID, scarce)))

	sales, total, err := l.sales.List(ctx, tenantID, apptrade.SaleListFilter{})
	require.NoError(t, err)
	assert.Empty(t, sales)
	assert.Zero(t, total)

	t.Run("same stock on two lines counts against one balance", func(t *testing.T) {
		_, err := l.sales.CreateSale(ctx, tenantID, apptrade.CreateSaleRequest{
			Items: []apptrade.CreateSaleItemInput{
				{StockID: scarce, Quantity: dec("1")},
				{StockID: scarce, Quantity: dec("1")},
			},
		})
		assert.Equal(t, shared.CodeInsufficientStock, errorCode(err))
		assert.True(t, dec("1").Equal(l.quantity(t, tenantID, scarce)))
	})

	t.Run("inactive stock", func(t *testing.T) {
		require.NoError(t, l.stocks.Deactivate(ctx, tenantID, plenty))
		_, err := l.sales.CreateSale(ctx, tenantID, apptrade.CreateSaleRequest{
			Items: []apptrade.CreateSaleItemInput{{StockID: plenty, Quantity: dec("1")}},
		})
		assert.Equal(t, shared.CodeStockInactive, errorCode(err))
	})

	t.Run("other tenant's stock is not found", func(t *testing.T) {
		_, err := l.sales.CreateSale(ctx, uuid.New(), apptrade.CreateSaleRequest{
			Items: []apptrade.CreateSaleItemInput{{StockID: scarce, Quantity: dec("1")}},
		})
		assert.Equal(t, shared.CodeNotFound, errorCode(err))
	})
}

func TestLedgerFlow_StockMaintenance(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)
	tenantID := uuid.New()

	id := l.stock(t, tenantID, "GEAR", "4", "12")

	t.Run("duplicate active code", func(t *testing.T) {
		_, err := l.stocks.Create(ctx, tenantID, appinventory.CreateStockRequest{Code: "GEAR", Name: "Other"})
		assert.Equal(t, "DUPLICATE_CODE", errorCode(err))
	})

	t.Run("adjust up and down", func(t *testing.T) {
		found, err := l.stocks.Adjust(ctx, tenantID, id, dec("1.5"))
		require.NoError(t, err)
		assert.True(t, found)

		found, err = l.stocks.Adjust(ctx, tenantID, id, dec("-10"))
		assert.True(t, found)
		assert.Equal(t, shared.CodeInsufficientStock, errorCode(err))
		assert.True(t, dec("5.5").Equal(l.quantity(t, tenantID, id)))

		found, err = l.stocks.Adjust(ctx, tenantID, uuid.New(), dec("1"))
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("code is free again after deactivation", func(t *testing.T) {
		require.NoError(t, l.stocks.Deactivate(ctx, tenantID, id))
		l.stock(t, tenantID, "GEAR", "1", "12")
	})
}

func TestLedgerFlow_PaymentSummary(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)
	tenantID := uuid.New()

	stockID := l.stock(t, tenantID, "PIPE", "10", "25")
	sale, err := l.sales.CreateSale(ctx, tenantID, apptrade.CreateSaleRequest{
		Items: []apptrade.CreateSaleItemInput{{StockID: stockID, Quantity: dec("2")}},
	})
	require.NoError(t, err)
	l.pay(t, tenantID, sale.ID, "50")

	_, err = l.payments.CreatePayment(ctx, tenantID, appfinance.CreatePaymentRequest{
		Amount: dec("20"), Type: "EXPENSE", Method: "BANK_TRANSFER", Counterparty: "Supplier",
	})
	require.NoError(t, err)

	_, err = l.payments.CreatePayment(ctx, uuid.New(), appfinance.CreatePaymentRequest{
		SaleID: &sale.ID, Amount: dec("5"), Type: "INCOME", Method: "CASH",
	})
	assert.Equal(t, shared.CodeNotFound, errorCode(err))

	summary, err := l.payments.Summary(ctx, tenantID, appfinance.PaymentListFilter{})
	require.NoError(t, err)
	assert.Equal(t, "50.00", summary.Income.StringFixed(2))
	assert.Equal(t, "20.00", summary.Expense.StringFixed(2))
	assert.Equal(t, "30.00", summary.Net.StringFixed(2))

	bySale, err := l.payments.GetBySale(ctx, tenantID, sale.ID)
	require.NoError(t, err)
	assert.Len(t, bySale, 1)
	assert.Equal(t, "PAID", l.status(t, tenantID, sale.ID))
}
