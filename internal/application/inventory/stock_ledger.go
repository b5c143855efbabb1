package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/ledger/internal/application/scope"
	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CheckAndReserve loads and locks a stock inside the caller's transaction and
// verifies it can supply quantity. It does not write; the caller deducts in
// the same transaction with Deduct.
func (s *StockService) CheckAndReserve(ctx context.Context, repos scope.Repositories, tenantID, stockID uuid.UUID, quantity decimal.Decimal) (*inventory.Stock, error) {
	stock, err := repos.Stocks().FindByIDForUpdate(ctx, tenantID, stockID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError(shared.CodeNotFound,
				fmt.Sprintf("Stock %s not found", stockID))
		}
		return nil, err
	}
	if err := stock.CheckAvailable(valueobject.RoundQuantity(quantity)); err != nil {
		return nil, err
	}
	return stock, nil
}

// Deduct removes quantity from a reserved stock with a guarded update.
// A lost race surfaces as INSUFFICIENT_STOCK rather than a negative balance.
func (s *StockService) Deduct(ctx context.Context, repos scope.Repositories, stock *inventory.Stock, quantity decimal.Decimal) error {
	quantity = valueobject.RoundQuantity(quantity)
	ok, err := repos.Stocks().DecreaseQuantity(ctx, stock.TenantID, stock.ID, quantity)
	if err != nil {
		return fmt.Errorf("decrease stock %s: %w", stock.Code, err)
	}
	if !ok {
		return shared.NewDomainError(shared.CodeInsufficientStock,
			fmt.Sprintf("Insufficient stock for %s", stock.Label()))
	}
	return stock.Decrease(quantity)
}

// Restore returns quantity to a stock. A missing stock is logged and skipped.
func (s *StockService) Restore(ctx context.Context, repos scope.Repositories, tenantID, stockID uuid.UUID, quantity decimal.Decimal) error {
	ok, err := repos.Stocks().IncreaseQuantity(ctx, tenantID, stockID, valueobject.RoundQuantity(quantity))
	if err != nil {
		return fmt.Errorf("restore stock %s: %w", stockID, err)
	}
	if !ok {
		s.logger.Warn("stock missing during restore, skipping",
			zap.String("tenant_id", tenantID.String()),
			zap.String("stock_id", stockID.String()),
			zap.String("quantity", quantity.String()),
		)
	}
	return nil
}

// Adjust applies a signed delta in its own transaction.
// It returns false if the stock does not exist.
func (s *StockService) Adjust(ctx context.Context, tenantID, stockID uuid.UUID, delta decimal.Decimal) (bool, error) {
	var found bool
	err := s.txScope.Execute(ctx, func(repos scope.Repositories) error {
		var err error
		found, err = s.AdjustInScope(ctx, repos, tenantID, stockID, delta)
		return err
	})
	if err != nil {
		return false, err
	}
	if found {
		s.logger.Info("stock adjusted",
			zap.String("tenant_id", tenantID.String()),
			zap.String("stock_id", stockID.String()),
			zap.String("delta", delta.String()),
		)
	}
	return found, nil
}

// AdjustInScope applies a signed delta inside an existing transaction
func (s *StockService) AdjustInScope(ctx context.Context, repos scope.Repositories, tenantID, stockID uuid.UUID, delta decimal.Decimal) (bool, error) {
	stock, err := repos.Stocks().FindByIDForUpdate(ctx, tenantID, stockID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if err := stock.Adjust(delta); err != nil {
		return true, err
	}
	if err := repos.Stocks().Save(ctx, stock); err != nil {
		return true, err
	}
	return true, nil
}
