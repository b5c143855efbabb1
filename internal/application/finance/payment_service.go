package finance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/ledger/internal/application/scope"
	"github.com/erp/ledger/internal/domain/finance"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SaleStatusRecomputer re-derives a sale's payment status inside a transaction
type SaleStatusRecomputer interface {
	RecomputeInScope(ctx context.Context, repos scope.Repositories, tenantID, saleID uuid.UUID) error
}

// PaymentMetrics records payment business metrics
type PaymentMetrics interface {
	RecordPayment(ctx context.Context, tenantID uuid.UUID, paymentType string, amount decimal.Decimal)
}

// PaymentService records payments and keeps linked sales' status in step
type PaymentService struct {
	paymentRepo finance.PaymentRepository
	txScope     scope.TransactionScope
	sales       SaleStatusRecomputer
	metrics     PaymentMetrics
	logger      *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(paymentRepo finance.PaymentRepository, txScope scope.TransactionScope, sales SaleStatusRecomputer, logger *zap.Logger) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{
		paymentRepo: paymentRepo,
		txScope:     txScope,
		sales:       sales,
		logger:      logger,
	}
}

// SetMetrics sets the business metrics recorder
func (s *PaymentService) SetMetrics(metrics PaymentMetrics) {
	s.metrics = metrics
}

// CreatePayment records a payment. When it is income against a sale, the
// sale's payment status is recomputed in the same transaction.
func (s *PaymentService) CreatePayment(ctx context.Context, tenantID uuid.UUID, req CreatePaymentRequest) (*PaymentResponse, error) {
	in := finance.PaymentInput{
		SaleID:          req.SaleID,
		Counterparty:    req.Counterparty,
		Amount:          req.Amount,
		Type:            finance.PaymentType(req.Type),
		Method:          finance.PaymentMethod(req.Method),
		CheckNumber:     req.CheckNumber,
		CheckDate:       req.CheckDate,
		BankName:        req.BankName,
		ReferenceNumber: req.ReferenceNumber,
		Notes:           req.Notes,
	}
	if req.PaymentDate != nil {
		in.PaymentDate = *req.PaymentDate
	}
	payment, err := finance.NewPayment(tenantID, in)
	if err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos scope.Repositories) error {
		if payment.SaleID != nil {
			if err := lockSale(ctx, repos, tenantID, *payment.SaleID); err != nil {
				return err
			}
		}
		if err := repos.Payments().Create(ctx, payment); err != nil {
			return err
		}
		if payment.SettlesSale() {
			return s.sales.RecomputeInScope(ctx, repos, tenantID, *payment.SaleID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment recorded",
		zap.String("tenant_id", tenantID.String()),
		zap.String("payment_id", payment.ID.String()),
		zap.String("type", string(payment.Type)),
		zap.String("amount", payment.Amount.String()),
	)
	if s.metrics != nil {
		s.metrics.RecordPayment(ctx, tenantID, string(payment.Type), payment.Amount)
	}

	response := ToPaymentResponse(payment)
	return &response, nil
}

// DeletePayment removes a payment and recomputes its sale's status.
// It returns false if the payment does not exist.
func (s *PaymentService) DeletePayment(ctx context.Context, tenantID, paymentID uuid.UUID) (bool, error) {
	found := true
	err := s.txScope.Execute(ctx, func(repos scope.Repositories) error {
		payment, err := repos.Payments().FindByIDForTenant(ctx, tenantID, paymentID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				found = false
				return nil
			}
			return err
		}
		if payment.SaleID == nil {
			return repos.Payments().DeleteForTenant(ctx, tenantID, paymentID)
		}
		if err := lockSale(ctx, repos, tenantID, *payment.SaleID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return repos.Payments().DeleteForTenant(ctx, tenantID, paymentID)
			}
			return err
		}
		if err := repos.Payments().DeleteForTenant(ctx, tenantID, paymentID); err != nil {
			return err
		}
		return s.sales.RecomputeInScope(ctx, repos, tenantID, *payment.SaleID)
	})
	if err != nil {
		return false, err
	}
	if found {
		s.logger.Info("payment deleted",
			zap.String("tenant_id", tenantID.String()),
			zap.String("payment_id", paymentID.String()),
		)
	}
	return found, nil
}

// GetPayment retrieves a payment
func (s *PaymentService) GetPayment(ctx context.Context, tenantID, paymentID uuid.UUID) (*PaymentResponse, error) {
	payment, err := s.paymentRepo.FindByIDForTenant(ctx, tenantID, paymentID)
	if err != nil {
		return nil, err
	}
	response := ToPaymentResponse(payment)
	return &response, nil
}

// GetPayments lists payments in a date range, optionally of one type
func (s *PaymentService) GetPayments(ctx context.Context, tenantID uuid.UUID, filter PaymentListFilter) ([]PaymentResponse, int64, error) {
	f := toPaymentFilter(filter)
	payments, err := s.paymentRepo.FindAllForTenant(ctx, tenantID, f)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.paymentRepo.CountForTenant(ctx, tenantID, f)
	if err != nil {
		return nil, 0, err
	}
	return ToPaymentResponses(payments), total, nil
}

// GetBySale lists every payment linked to a sale
func (s *PaymentService) GetBySale(ctx context.Context, tenantID, saleID uuid.UUID) ([]PaymentResponse, error) {
	payments, err := s.paymentRepo.FindBySale(ctx, tenantID, saleID)
	if err != nil {
		return nil, err
	}
	return ToPaymentResponses(payments), nil
}

// GetByType lists payments of one type
func (s *PaymentService) GetByType(ctx context.Context, tenantID uuid.UUID, paymentType string, filter PaymentListFilter) ([]PaymentResponse, int64, error) {
	if !finance.PaymentType(paymentType).IsValid() {
		return nil, 0, shared.NewDomainError("INVALID_TYPE", "Payment type must be INCOME or EXPENSE")
	}
	filter.Type = paymentType
	return s.GetPayments(ctx, tenantID, filter)
}

// Summary totals income and expense over the filter
func (s *PaymentService) Summary(ctx context.Context, tenantID uuid.UUID, filter PaymentListFilter) (*PaymentSummaryResponse, error) {
	totals, err := s.paymentRepo.SumByType(ctx, tenantID, toPaymentFilter(filter))
	if err != nil {
		return nil, err
	}
	return &PaymentSummaryResponse{
		Income:  totals.Income,
		Expense: totals.Expense,
		Net:     totals.Net(),
	}, nil
}

func toPaymentFilter(filter PaymentListFilter) finance.PaymentFilter {
	f := shared.DefaultFilter()
	f.Page = filter.Page
	f.PageSize = filter.PageSize
	f.Search = filter.Search
	f.OrderBy = "payment_date"
	if filter.OrderBy != "" {
		f.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		f.OrderDir = filter.OrderDir
	}
	f.From = filter.StartDate
	if filter.EndDate != nil {
		y, m, d := filter.EndDate.Date()
		end := time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), filter.EndDate.Location())
		f.To = &end
	}
	pf := finance.PaymentFilter{
		Filter: f.Normalize(),
		Type:   finance.PaymentType(filter.Type),
		Method: finance.PaymentMethod(filter.Method),
	}
	if saleID, err := uuid.Parse(filter.SaleID); err == nil {
		pf.SaleID = &saleID
	}
	return pf
}

// lockSale takes the sale row lock before any payment row referencing it is
// written. Inserting a payment first would hold KEY SHARE on the sale, and two
// such transactions then deadlock upgrading to FOR UPDATE in RecomputeInScope.
func lockSale(ctx context.Context, repos scope.Repositories, tenantID, saleID uuid.UUID) error {
	if _, err := repos.Sales().FindByIDForUpdate(ctx, tenantID, saleID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError(shared.CodeNotFound, fmt.Sprintf("Sale %s not found", saleID))
		}
		return err
	}
	return nil
}
