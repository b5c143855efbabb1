package inventory

import (
	"context"

	"github.com/erp/ledger/internal/application/scope"
	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StockService manages stocks and implements the stock ledger used by
// sales and cancellations.
type StockService struct {
	stockRepo inventory.StockRepository
	txScope   scope.TransactionScope
	logger    *zap.Logger
}

// NewStockService creates a new StockService
func NewStockService(stockRepo inventory.StockRepository, txScope scope.TransactionScope, logger *zap.Logger) *StockService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockService{
		stockRepo: stockRepo,
		txScope:   txScope,
		logger:    logger,
	}
}

// Create creates a stock. The code must be unused among the tenant's active stocks.
func (s *StockService) Create(ctx context.Context, tenantID uuid.UUID, req CreateStockRequest) (*StockResponse, error) {
	stock, err := inventory.NewStock(tenantID, req.Code, req.Name, req.Quantity, req.PurchasePrice, req.SalePrice)
	if err != nil {
		return nil, err
	}
	if err := stock.SetMinQuantity(req.MinQuantity); err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos scope.Repositories) error {
		exists, err := repos.Stocks().ExistsActiveCode(ctx, tenantID, stock.Code, nil)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewDomainError("DUPLICATE_CODE", "Stock code already exists: "+stock.Code)
		}
		return repos.Stocks().Save(ctx, stock)
	})
	if err != nil {
		return nil, err
	}

	response := ToStockResponse(stock)
	return &response, nil
}

// Update changes a stock's descriptive fields and prices. Quantity is changed only through Adjust.
func (s *StockService) Update(ctx context.Context, tenantID, stockID uuid.UUID, req UpdateStockRequest) (*StockResponse, error) {
	var stock *inventory.Stock
	err := s.txScope.Execute(ctx, func(repos scope.Repositories) error {
		var err error
		stock, err = repos.Stocks().FindByIDForUpdate(ctx, tenantID, stockID)
		if err != nil {
			return err
		}
		if err := stock.Update(req.Code, req.Name, req.PurchasePrice, req.SalePrice, req.MinQuantity); err != nil {
			return err
		}
		if stock.IsActive {
			exists, err := repos.Stocks().ExistsActiveCode(ctx, tenantID, stock.Code, &stock.ID)
			if err != nil {
				return err
			}
			if exists {
				return shared.NewDomainError("DUPLICATE_CODE", "Stock code already exists: "+stock.Code)
			}
		}
		return repos.Stocks().Save(ctx, stock)
	})
	if err != nil {
		return nil, err
	}

	response := ToStockResponse(stock)
	return &response, nil
}

// Deactivate soft deletes a stock. Existing sale items keep referencing it.
func (s *StockService) Deactivate(ctx context.Context, tenantID, stockID uuid.UUID) error {
	return s.txScope.Execute(ctx, func(repos scope.Repositories) error {
		stock, err := repos.Stocks().FindByIDForUpdate(ctx, tenantID, stockID)
		if err != nil {
			return err
		}
		if err := stock.Deactivate(); err != nil {
			return err
		}
		return repos.Stocks().Save(ctx, stock)
	})
}

// GetByID retrieves a stock
func (s *StockService) GetByID(ctx context.Context, tenantID, stockID uuid.UUID) (*StockResponse, error) {
	stock, err := s.stockRepo.FindByIDForTenant(ctx, tenantID, stockID)
	if err != nil {
		return nil, err
	}
	response := ToStockResponse(stock)
	return &response, nil
}

// List retrieves stocks with filtering and pagination
func (s *StockService) List(ctx context.Context, tenantID uuid.UUID, filter StockListFilter) ([]StockResponse, int64, error) {
	f := toDomainFilter(filter)
	stocks, err := s.stockRepo.FindAllForTenant(ctx, tenantID, f)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.stockRepo.CountForTenant(ctx, tenantID, f)
	if err != nil {
		return nil, 0, err
	}
	return ToStockResponses(stocks), total, nil
}

// ListLowStock retrieves active stocks at or below their minimum quantity
func (s *StockService) ListLowStock(ctx context.Context, tenantID uuid.UUID, filter StockListFilter) ([]StockResponse, error) {
	stocks, err := s.stockRepo.FindBelowMinimum(ctx, tenantID, toDomainFilter(filter))
	if err != nil {
		return nil, err
	}
	return ToStockResponses(stocks), nil
}

func toDomainFilter(filter StockListFilter) shared.Filter {
	f := shared.DefaultFilter()
	f.Page = filter.Page
	f.PageSize = filter.PageSize
	f.Search = filter.Search
	f.OrderBy = "code"
	f.OrderDir = "asc"
	if filter.OrderBy != "" {
		f.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		f.OrderDir = filter.OrderDir
	}
	f = f.Normalize()
	if filter.IncludeInactive {
		f.Filters["include_inactive"] = true
	}
	return f
}
