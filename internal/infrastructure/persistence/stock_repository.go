package persistence

import (
	"context"
	"time"

	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/persistence/models"
	"github.com/erp/ledger/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStockRepository implements StockRepository using GORM
type GormStockRepository struct {
	db *gorm.DB
}

// NewGormStockRepository creates a new GormStockRepository
func NewGormStockRepository(db *gorm.DB) *GormStockRepository {
	return &GormStockRepository{db: db}
}

func (r *GormStockRepository) scoped(ctx context.Context, tenantID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.StockModel{}).Scopes(tenant.Scope(tenantID))
}

// FindByIDForTenant finds a stock by ID within a tenant
func (r *GormStockRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*inventory.Stock, error) {
	var model models.StockModel
	if err := r.scoped(ctx, tenantID).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a stock and locks its row until the transaction ends
func (r *GormStockRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*inventory.Stock, error) {
	var model models.StockModel
	if err := r.scoped(ctx, tenantID).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByIDsForUpdate locks the given stocks in ascending id order
func (r *GormStockRepository) FindByIDsForUpdate(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]inventory.Stock, error) {
	if len(ids) == 0 {
		return []inventory.Stock{}, nil
	}
	var rows []models.StockModel
	if err := r.scoped(ctx, tenantID).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, translateError(err)
	}
	return stocksToDomain(rows), nil
}

// ExistsActiveCode checks whether an active stock of the tenant already uses code
func (r *GormStockRepository) ExistsActiveCode(ctx context.Context, tenantID uuid.UUID, code string, excludeID *uuid.UUID) (bool, error) {
	query := r.scoped(ctx, tenantID).Where("code = ? AND is_active = ?", code, true)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindAllForTenant lists stocks matching the filter
func (r *GormStockRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]inventory.Stock, error) {
	var rows []models.StockModel
	if err := r.applyFilter(r.scoped(ctx, tenantID), filter).
		Scopes(ordered(filter, StockSortFields, "code"), paginated(filter)).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return stocksToDomain(rows), nil
}

// CountForTenant counts stocks matching the filter
func (r *GormStockRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.scoped(ctx, tenantID), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindBelowMinimum lists active stocks at or below their minimum quantity
func (r *GormStockRepository) FindBelowMinimum(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]inventory.Stock, error) {
	var rows []models.StockModel
	if err := r.scoped(ctx, tenantID).
		Where("is_active = ? AND min_quantity IS NOT NULL AND quantity <= min_quantity", true).
		Scopes(ordered(filter, StockSortFields, "code"), paginated(filter)).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return stocksToDomain(rows), nil
}

// Save creates or updates a stock
func (r *GormStockRepository) Save(ctx context.Context, stock *inventory.Stock) error {
	return translateError(r.db.WithContext(ctx).Save(models.StockModelFromDomain(stock)).Error)
}

// DecreaseQuantity subtracts quantity only while at least that much remains.
// The guard makes concurrent decrements safe even without a prior row lock.
func (r *GormStockRepository) DecreaseQuantity(ctx context.Context, tenantID, id uuid.UUID, quantity decimal.Decimal) (bool, error) {
	result := r.scoped(ctx, tenantID).
		Where("id = ? AND quantity >= ?", id, quantity).
		Updates(map[string]interface{}{
			"quantity":   gorm.Expr("quantity - ?", quantity),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return false, translateError(result.Error)
	}
	return result.RowsAffected > 0, nil
}

// IncreaseQuantity adds quantity. Returns false if the stock does not exist.
func (r *GormStockRepository) IncreaseQuantity(ctx context.Context, tenantID, id uuid.UUID, quantity decimal.Decimal) (bool, error) {
	result := r.scoped(ctx, tenantID).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"quantity":   gorm.Expr("quantity + ?", quantity),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return false, translateError(result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *GormStockRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if includeInactive, _ := filter.Filters["include_inactive"].(bool); !includeInactive {
		query = query.Where("is_active = ?", true)
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where(`LOWER(code) LIKE ? ESCAPE '\' OR LOWER(name) LIKE ? ESCAPE '\'`, pattern, pattern)
	}
	return query
}

func stocksToDomain(rows []models.StockModel) []inventory.Stock {
	stocks := make([]inventory.Stock, len(rows))
	for i := range rows {
		stocks[i] = *rows[i].ToDomain()
	}
	return stocks
}

// Ensure GormStockRepository implements StockRepository
var _ inventory.StockRepository = (*GormStockRepository)(nil)
