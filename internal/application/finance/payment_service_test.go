package finance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erp/ledger/internal/application/scope"
	apptrade "github.com/erp/ledger/internal/application/trade"
	"github.com/erp/ledger/internal/domain/finance"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/trade"
	"github.com/erp/ledger/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type paymentFixture struct {
	sales    *testutil.MockSaleRepository
	payments *testutil.MockPaymentRepository
	svc      *PaymentService
	recorded []string
}

type recordingMetrics struct {
	f *paymentFixture
}

func (r recordingMetrics) RecordPayment(_ context.Context, _ uuid.UUID, paymentType string, _ decimal.Decimal) {
	r.f.recorded = append(r.f.recorded, paymentType)
}

func newPaymentFixture() *paymentFixture {
	f := &paymentFixture{
		sales:    new(testutil.MockSaleRepository),
		payments: new(testutil.MockPaymentRepository),
	}
	txScope := scope.NewNoOpTransactionScope(nil, f.sales, f.payments)
	saleSvc := apptrade.NewSaleService(f.sales, txScope, nil, nil)
	f.svc = NewPaymentService(f.payments, txScope, saleSvc, nil)
	f.svc.SetMetrics(recordingMetrics{f: f})
	return f
}

func saleWithTotal(t *testing.T, tenantID uuid.UUID, total int64) *trade.Sale {
	t.Helper()
	sale, err := trade.NewSale(tenantID, "S202403150001", time.Now(), trade.Customer{})
	require.NoError(t, err)
	_, err = sale.AddItem(trade.LineInput{
		StockID: uuid.New(), ProductCode: "P", ProductName: "N",
		Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(total),
	})
	require.NoError(t, err)
	require.NoError(t, sale.Finalize())
	return sale
}

func TestPaymentService_CreatePayment(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("income on sale recomputes status", func(t *testing.T) {
		f := newPaymentFixture()
		sale := saleWithTotal(t, tenantID, 100)
		f.sales.On("FindByIDForUpdate", ctx, tenantID, sale.ID).Return(sale, nil)
		f.payments.On("Create", ctx, mock.AnythingOfType("*finance.Payment")).Return(nil)
		f.payments.On("SumIncomeBySale", ctx, tenantID, sale.ID).Return(decimal.NewFromInt(60), nil)
		f.sales.On("UpdateStatus", ctx, sale).Return(nil)

		resp, err := f.svc.CreatePayment(ctx, tenantID, CreatePaymentRequest{
			SaleID: &sale.ID, Amount: decimal.NewFromInt(60), Type: "INCOME", Method: "CASH",
		})
		require.NoError(t, err)
		assert.Equal(t, "INCOME", resp.Type)
		assert.Equal(t, trade.PaymentStatusPartialPaid, sale.PaymentStatus)
		assert.Equal(t, []string{"INCOME"}, f.recorded)
		f.sales.AssertExpectations(t)
		f.payments.AssertExpectations(t)
	})

	t.Run("expense on sale does not recompute", func(t *testing.T) {
		f := newPaymentFixture()
		sale := saleWithTotal(t, tenantID, 100)
		f.sales.On("FindByIDForUpdate", ctx, tenantID, sale.ID).Return(sale, nil).Once()
		f.payments.On("Create", ctx, mock.AnythingOfType("*finance.Payment")).Return(nil)

		_, err := f.svc.CreatePayment(ctx, tenantID, CreatePaymentRequest{
			SaleID: &sale.ID, Amount: decimal.NewFromInt(5), Type: "EXPENSE", Method: "BANK_TRANSFER",
		})
		require.NoError(t, err)
		assert.Equal(t, trade.PaymentStatusPending, sale.PaymentStatus)
		f.payments.AssertNotCalled(t, "SumIncomeBySale", mock.Anything, mock.Anything, mock.Anything)
		f.sales.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything)
	})

	t.Run("sale is locked before the payment is inserted", func(t *testing.T) {
		f := newPaymentFixture()
		sale := saleWithTotal(t, tenantID, 100)
		var calls []string
		f.sales.On("FindByIDForUpdate", ctx, tenantID, sale.ID).Return(sale, nil).
			Run(func(mock.Arguments) { calls = append(calls, "lock sale") })
		f.payments.On("Create", ctx, mock.AnythingOfType("*finance.Payment")).Return(nil).
			Run(func(mock.Arguments) { calls = append(calls, "insert payment") })
		f.payments.On("SumIncomeBySale", ctx, tenantID, sale.ID).Return(decimal.NewFromInt(100), nil)
		f.sales.On("UpdateStatus", ctx, sale).Return(nil)

		_, err := f.svc.CreatePayment(ctx, tenantID, CreatePaymentRequest{
			SaleID: &sale.ID, Amount: decimal.NewFromInt(100), Type: "INCOME", Method: "CASH",
		})
		require.NoError(t, err)
		require.NotEmpty(t, calls)
		assert.Equal(t, "lock sale", calls[0])
		assert.Contains(t, calls, "insert payment")
		assert.Equal(t, trade.PaymentStatusPaid, sale.PaymentStatus)
	})

	t.Run("unlinked payment", func(t *testing.T) {
		f := newPaymentFixture()
		f.payments.On("Create", ctx, mock.AnythingOfType("*finance.Payment")).Return(nil)

		resp, err := f.svc.CreatePayment(ctx, tenantID, CreatePaymentRequest{
			Amount: decimal.NewFromInt(5), Type: "INCOME", Method: "CHECK", CheckNumber: "0042",
		})
		require.NoError(t, err)
		assert.Nil(t, resp.SaleID)
		assert.Equal(t, "0042", resp.CheckNumber)
		f.sales.AssertNotCalled(t, "FindByIDForUpdate", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown sale", func(t *testing.T) {
		f := newPaymentFixture()
		saleID := uuid.New()
		f.sales.On("FindByIDForUpdate", ctx, tenantID, saleID).Return(nil, shared.ErrNotFound)

		_, err := f.svc.CreatePayment(ctx, tenantID, CreatePaymentRequest{
			SaleID: &saleID, Amount: decimal.NewFromInt(5), Type: "INCOME", Method: "CASH",
		})
		assert.True(t, errors.Is(err, shared.ErrNotFound))
		f.payments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		assert.Empty(t, f.recorded)
	})

	t.Run("cancelled sale keeps status", func(t *testing.T) {
		f := newPaymentFixture()
		sale := saleWithTotal(t, tenantID, 100)
		_, err := sale.Cancel()
		require.NoError(t, err)
		f.sales.On("FindByIDForUpdate", ctx, tenantID, sale.ID).Return(sale, nil)
		f.payments.On("Create", ctx, mock.AnythingOfType("*finance.Payment")).Return(nil)

		_, err = f.svc.CreatePayment(ctx, tenantID, CreatePaymentRequest{
			SaleID: &sale.ID, Amount: decimal.NewFromInt(100), Type: "INCOME", Method: "CASH",
		})
		require.NoError(t, err)
		assert.Equal(t, trade.PaymentStatusCancelled, sale.PaymentStatus)
		f.payments.AssertNotCalled(t, "SumIncomeBySale", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("invalid amount", func(t *testing.T) {
		f := newPaymentFixture()
		_, err := f.svc.CreatePayment(ctx, tenantID, CreatePaymentRequest{
			Amount: decimal.Zero, Type: "INCOME", Method: "CASH",
		})
		assert.True(t, shared.IsValidationError(err))
	})
}

func TestPaymentService_DeletePayment(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("missing payment returns false", func(t *testing.T) {
		f := newPaymentFixture()
		id := uuid.New()
		f.payments.On("FindByIDForTenant", ctx, tenantID, id).Return(nil, shared.ErrNotFound)

		ok, err := f.svc.DeletePayment(ctx, tenantID, id)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("deleting income reverts sale status", func(t *testing.T) {
		f := newPaymentFixture()
		sale := saleWithTotal(t, tenantID, 100)
		sale.PaymentStatus = trade.PaymentStatusPaid
		payment, err := finance.NewPayment(tenantID, finance.PaymentInput{
			SaleID: &sale.ID, Amount: decimal.NewFromInt(100), Type: finance.PaymentTypeIncome, Method: finance.PaymentMethodCash,
		})
		require.NoError(t, err)

		f.payments.On("FindByIDForTenant", ctx, tenantID, payment.ID).Return(payment, nil)
		f.payments.On("DeleteForTenant", ctx, tenantID, payment.ID).Return(nil)
		f.sales.On("FindByIDForUpdate", ctx, tenantID, sale.ID).Return(sale, nil)
		f.payments.On("SumIncomeBySale", ctx, tenantID, sale.ID).Return(decimal.Zero, nil)
		f.sales.On("UpdateStatus", ctx, sale).Return(nil)

		ok, err := f.svc.DeletePayment(ctx, tenantID, payment.ID)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, trade.PaymentStatusPending, sale.PaymentStatus)
	})
}

func TestPaymentService_Reads(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("GetByType rejects unknown type", func(t *testing.T) {
		f := newPaymentFixture()
		_, _, err := f.svc.GetByType(ctx, tenantID, "REFUND", PaymentListFilter{})
		assert.True(t, shared.IsValidationError(err))
	})

	t.Run("GetPayments builds inclusive range", func(t *testing.T) {
		f := newPaymentFixture()
		f.payments.On("FindAllForTenant", ctx, tenantID, mock.AnythingOfType("finance.PaymentFilter")).Return([]finance.Payment{}, nil)
		f.payments.On("CountForTenant", ctx, tenantID, mock.AnythingOfType("finance.PaymentFilter")).Return(int64(0), nil)

		start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
		_, _, err := f.svc.GetByType(ctx, tenantID, "EXPENSE", PaymentListFilter{StartDate: &start, EndDate: &end})
		require.NoError(t, err)

		filter := f.payments.Calls[0].Arguments.Get(2).(finance.PaymentFilter)
		assert.Equal(t, finance.PaymentTypeExpense, filter.Type)
		assert.Equal(t, start, *filter.From)
		assert.True(t, filter.To.After(end))
		assert.Equal(t, 31, filter.To.Day())
	})

	t.Run("Summary", func(t *testing.T) {
		f := newPaymentFixture()
		f.payments.On("SumByType", ctx, tenantID, mock.AnythingOfType("finance.PaymentFilter")).
			Return(finance.PaymentTotals{Income: decimal.NewFromInt(300), Expense: decimal.NewFromInt(120)}, nil)

		sum, err := f.svc.Summary(ctx, tenantID, PaymentListFilter{})
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(180).Equal(sum.Net))
	})
}
