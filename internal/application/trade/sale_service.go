package trade

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/erp/ledger/internal/application/scope"
	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// saleNumberRetries is how many times a sale-number collision is retried
const saleNumberRetries = 1

// StockLedger is the subset of stock operations a sale needs
type StockLedger interface {
	CheckAndReserve(ctx context.Context, repos scope.Repositories, tenantID, stockID uuid.UUID, quantity decimal.Decimal) (*inventory.Stock, error)
	Deduct(ctx context.Context, repos scope.Repositories, stock *inventory.Stock, quantity decimal.Decimal) error
	Restore(ctx context.Context, repos scope.Repositories, tenantID, stockID uuid.UUID, quantity decimal.Decimal) error
}

// SaleMetrics records sale business metrics
type SaleMetrics interface {
	RecordSaleCreated(ctx context.Context, tenantID uuid.UUID, total decimal.Decimal, items int)
	RecordSaleCancelled(ctx context.Context, tenantID uuid.UUID)
}

// SaleService builds sales and drives their lifecycle
type SaleService struct {
	saleRepo trade.SaleRepository
	txScope  scope.TransactionScope
	stocks   StockLedger
	metrics  SaleMetrics
	logger   *zap.Logger
	now      func() time.Time
}

// NewSaleService creates a new SaleService
func NewSaleService(saleRepo trade.SaleRepository, txScope scope.TransactionScope, stocks StockLedger, logger *zap.Logger) *SaleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SaleService{
		saleRepo: saleRepo,
		txScope:  txScope,
		stocks:   stocks,
		logger:   logger,
		now:      time.Now,
	}
}

// SetMetrics sets the business metrics recorder
func (s *SaleService) SetMetrics(metrics SaleMetrics) {
	s.metrics = metrics
}

// CreateSale builds a sale from stock in one transaction: it numbers the sale,
// reserves and deducts stock per line, prices the lines and stores the result.
// A sale-number collision is retried once before surfacing as CONFLICT.
func (s *SaleService) CreateSale(ctx context.Context, tenantID uuid.UUID, req CreateSaleRequest) (*SaleResponse, error) {
	if len(req.Items) == 0 {
		return nil, shared.NewDomainError("NO_ITEMS", "Sale must have at least one item")
	}
	saleDate := s.now()
	if req.SaleDate != nil && !req.SaleDate.IsZero() {
		saleDate = *req.SaleDate
	}

	var sale *trade.Sale
	var err error
	for attempt := 0; ; attempt++ {
		sale, err = s.createOnce(ctx, tenantID, saleDate, req)
		if err == nil {
			break
		}
		if !errors.Is(err, shared.ErrConflict) || attempt >= saleNumberRetries {
			return nil, err
		}
		s.logger.Warn("sale number collision, retrying",
			zap.String("tenant_id", tenantID.String()),
			zap.Int("attempt", attempt+1),
		)
	}

	s.logger.Info("sale created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("sale_id", sale.ID.String()),
		zap.String("sale_number", sale.SaleNumber),
		zap.String("total_amount", sale.TotalAmount.String()),
		zap.Int("items", len(sale.Items)),
	)
	if s.metrics != nil {
		s.metrics.RecordSaleCreated(ctx, tenantID, sale.TotalAmount, len(sale.Items))
	}

	response := ToSaleResponse(sale)
	return &response, nil
}

func (s *SaleService) createOnce(ctx context.Context, tenantID uuid.UUID, saleDate time.Time, req CreateSaleRequest) (*trade.Sale, error) {
	var sale *trade.Sale
	err := s.txScope.Execute(ctx, func(repos scope.Repositories) error {
		// Lock every referenced stock up front in a stable order. Sales sharing
		// a stock then also number themselves one after the other.
		if _, err := repos.Stocks().FindByIDsForUpdate(ctx, tenantID, lockOrder(req.Items)); err != nil {
			return err
		}

		prefix := trade.SaleNumberPrefix(saleDate)
		last, err := repos.Sales().LastSaleNumber(ctx, tenantID, prefix)
		if err != nil {
			return err
		}
		number, err := trade.NextSaleNumber(prefix, last)
		if err != nil {
			return err
		}

		sale, err = trade.NewSale(tenantID, number, saleDate, trade.Customer{
			Name:    req.CustomerName,
			Phone:   req.CustomerPhone,
			Email:   req.CustomerEmail,
			Address: req.CustomerAddress,
		})
		if err != nil {
			return err
		}
		sale.Notes = req.Notes

		for _, line := range req.Items {
			stock, err := s.stocks.CheckAndReserve(ctx, repos, tenantID, line.StockID, line.Quantity)
			if err != nil {
				return err
			}
			unitPrice := stock.SalePrice
			if line.UnitPrice != nil {
				unitPrice = *line.UnitPrice
			}
			item, err := sale.AddItem(trade.LineInput{
				StockID:      stock.ID,
				ProductCode:  stock.Code,
				ProductName:  stock.Name,
				Quantity:     line.Quantity,
				UnitPrice:    unitPrice,
				TaxRate:      line.TaxRate,
				DiscountRate: line.DiscountRate,
			})
			if err != nil {
				return err
			}
			if err := s.stocks.Deduct(ctx, repos, stock, item.Quantity); err != nil {
				return err
			}
		}

		if req.DiscountAmount != nil {
			if err := sale.SetDiscount(*req.DiscountAmount); err != nil {
				return err
			}
		}
		if err := sale.Finalize(); err != nil {
			return err
		}
		return repos.Sales().Create(ctx, sale)
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// lockOrder returns the distinct stock IDs in ascending order
func lockOrder(items []CreateSaleItemInput) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.StockID)
	}
	slices.SortFunc(ids, func(a, b uuid.UUID) int {
		return bytes.Compare(a[:], b[:])
	})
	return slices.Compact(ids)
}

// RecomputePaymentStatus derives the sale's payment status from its income
// payments in its own transaction
func (s *SaleService) RecomputePaymentStatus(ctx context.Context, tenantID, saleID uuid.UUID) error {
	return s.txScope.Execute(ctx, func(repos scope.Repositories) error {
		return s.RecomputeInScope(ctx, repos, tenantID, saleID)
	})
}

// RecomputeInScope derives the payment status inside an existing transaction.
// The sale row stays locked until the transaction ends. Cancelled sales are left as they are.
func (s *SaleService) RecomputeInScope(ctx context.Context, repos scope.Repositories, tenantID, saleID uuid.UUID) error {
	sale, err := repos.Sales().FindByIDForUpdate(ctx, tenantID, saleID)
	if err != nil {
		return err
	}
	if sale.IsCancelled() {
		return nil
	}
	paid, err := repos.Payments().SumIncomeBySale(ctx, tenantID, saleID)
	if err != nil {
		return err
	}
	if !sale.ApplyIncomeTotal(paid) {
		return nil
	}
	s.logger.Debug("sale payment status changed",
		zap.String("sale_id", saleID.String()),
		zap.String("status", sale.PaymentStatus.String()),
		zap.String("paid", paid.String()),
	)
	return repos.Sales().UpdateStatus(ctx, sale)
}

// Cancel cancels a sale and puts its stock back. It returns false if the
// sale does not exist; cancelling an already cancelled sale is a no-op.
func (s *SaleService) Cancel(ctx context.Context, tenantID, saleID uuid.UUID) (bool, error) {
	found := true
	restored := false
	err := s.txScope.Execute(ctx, func(repos scope.Repositories) error {
		sale, err := repos.Sales().FindByIDForUpdate(ctx, tenantID, saleID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				found = false
				return nil
			}
			return err
		}
		already, err := sale.Cancel()
		if err != nil {
			return err
		}
		if already {
			return nil
		}
		for _, r := range restorations(sale.Items) {
			if err := s.stocks.Restore(ctx, repos, tenantID, r.stockID, r.quantity); err != nil {
				return err
			}
		}
		restored = true
		return repos.Sales().UpdateStatus(ctx, sale)
	})
	if err != nil {
		return false, err
	}
	if restored {
		s.logger.Info("sale cancelled",
			zap.String("tenant_id", tenantID.String()),
			zap.String("sale_id", saleID.String()),
		)
		if s.metrics != nil {
			s.metrics.RecordSaleCancelled(ctx, tenantID)
		}
	}
	return found, nil
}

type restoration struct {
	stockID  uuid.UUID
	quantity decimal.Decimal
}

// restorations sums item quantities per stock in ascending stock order
func restorations(items []trade.SaleItem) []restoration {
	byStock := make(map[uuid.UUID]decimal.Decimal, len(items))
	ids := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		q, ok := byStock[it.StockID]
		if !ok {
			ids = append(ids, it.StockID)
			q = decimal.Zero
		}
		byStock[it.StockID] = q.Add(it.Quantity)
	}
	slices.SortFunc(ids, func(a, b uuid.UUID) int {
		return bytes.Compare(a[:], b[:])
	})
	out := make([]restoration, len(ids))
	for i, id := range ids {
		out[i] = restoration{stockID: id, quantity: byStock[id]}
	}
	return out
}

// GetByID retrieves a sale with its items
func (s *SaleService) GetByID(ctx context.Context, tenantID, saleID uuid.UUID) (*SaleResponse, error) {
	sale, err := s.saleRepo.FindByIDForTenant(ctx, tenantID, saleID)
	if err != nil {
		return nil, err
	}
	response := ToSaleResponse(sale)
	return &response, nil
}

// GetBySaleNumber retrieves a sale by its number
func (s *SaleService) GetBySaleNumber(ctx context.Context, tenantID uuid.UUID, saleNumber string) (*SaleResponse, error) {
	sale, err := s.saleRepo.FindBySaleNumber(ctx, tenantID, saleNumber)
	if err != nil {
		return nil, err
	}
	response := ToSaleResponse(sale)
	return &response, nil
}

// List retrieves sales with filtering and pagination
func (s *SaleService) List(ctx context.Context, tenantID uuid.UUID, filter SaleListFilter) ([]SaleListItemResponse, int64, error) {
	f := shared.DefaultFilter()
	f.Page = filter.Page
	f.PageSize = filter.PageSize
	f.Search = filter.Search
	f.OrderBy = "sale_date"
	if filter.OrderBy != "" {
		f.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		f.OrderDir = filter.OrderDir
	}
	f.From = filter.StartDate
	if filter.EndDate != nil {
		end := endOfDay(*filter.EndDate)
		f.To = &end
	}
	f = f.Normalize()
	if filter.Status != "" {
		status := trade.PaymentStatus(filter.Status)
		if !status.IsValid() {
			return nil, 0, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Unknown payment status %q", filter.Status))
		}
		f.Filters["payment_status"] = string(status)
	}

	sales, err := s.saleRepo.FindAllForTenant(ctx, tenantID, f)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.saleRepo.CountForTenant(ctx, tenantID, f)
	if err != nil {
		return nil, 0, err
	}

	items := make([]SaleListItemResponse, len(sales))
	for i := range sales {
		items[i] = ToSaleListItemResponse(&sales[i])
	}
	return items, total, nil
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
