package persistence

import (
	"context"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/trade"
	"github.com/erp/ledger/internal/infrastructure/persistence/models"
	"github.com/erp/ledger/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSaleRepository implements SaleRepository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

func (r *GormSaleRepository) scoped(ctx context.Context, tenantID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.SaleModel{}).Scopes(tenant.Scope(tenantID))
}

// FindByIDForTenant finds a sale with its items
func (r *GormSaleRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*trade.Sale, error) {
	var model models.SaleModel
	if err := r.scoped(ctx, tenantID).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return r.withItems(ctx, &model)
}

// FindByIDForUpdate locks the sale row, then loads its items
func (r *GormSaleRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*trade.Sale, error) {
	var model models.SaleModel
	if err := r.scoped(ctx, tenantID).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return r.withItems(ctx, &model)
}

// FindBySaleNumber finds a sale by its number for a tenant
func (r *GormSaleRepository) FindBySaleNumber(ctx context.Context, tenantID uuid.UUID, saleNumber string) (*trade.Sale, error) {
	var model models.SaleModel
	if err := r.scoped(ctx, tenantID).Where("sale_number = ?", saleNumber).First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return r.withItems(ctx, &model)
}

func (r *GormSaleRepository) withItems(ctx context.Context, model *models.SaleModel) (*trade.Sale, error) {
	if err := r.db.WithContext(ctx).
		Where("sale_id = ?", model.ID).
		Order("line_no ASC").
		Find(&model.Items).Error; err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists sale headers matching the filter
func (r *GormSaleRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]trade.Sale, error) {
	var rows []models.SaleModel
	if err := r.applyFilter(r.scoped(ctx, tenantID), filter).
		Scopes(ordered(filter, SaleSortFields, "sale_date"), paginated(filter)).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	sales := make([]trade.Sale, len(rows))
	for i := range rows {
		sales[i] = *rows[i].ToDomain()
	}
	return sales, nil
}

// CountForTenant counts sales matching the filter
func (r *GormSaleRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.scoped(ctx, tenantID), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// LastSaleNumber returns the highest sale number starting with prefix, or "".
// Sequences are zero padded to four digits and grow past that, so a longer
// number is always the higher one.
func (r *GormSaleRepository) LastSaleNumber(ctx context.Context, tenantID uuid.UUID, prefix string) (string, error) {
	var numbers []string
	if err := r.scoped(ctx, tenantID).
		Where("sale_number LIKE ?", prefix+"%").
		Order("LENGTH(sale_number) DESC").
		Order("sale_number DESC").
		Limit(1).
		Pluck("sale_number", &numbers).Error; err != nil {
		return "", err
	}
	if len(numbers) == 0 {
		return "", nil
	}
	return numbers[0], nil
}

// Create inserts the sale header and its items.
// A duplicate sale number surfaces as a CONFLICT domain error.
func (r *GormSaleRepository) Create(ctx context.Context, sale *trade.Sale) error {
	model := models.SaleModelFromDomain(sale)
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(model).Error; err != nil {
		return translateError(err)
	}
	if len(model.Items) == 0 {
		return nil
	}
	return translateError(db.Create(&model.Items).Error)
}

// UpdateStatus persists payment status and cancellation time
func (r *GormSaleRepository) UpdateStatus(ctx context.Context, sale *trade.Sale) error {
	result := r.scoped(ctx, sale.TenantID).
		Where("id = ?", sale.ID).
		Updates(map[string]interface{}{
			"payment_status": string(sale.PaymentStatus),
			"cancelled_at":   sale.CancelledAt,
			"updated_at":     time.Now().UTC(),
		})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormSaleRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if status, ok := filter.Filters["payment_status"].(string); ok && status != "" {
		query = query.Where("payment_status = ?", status)
	}
	if filter.From != nil {
		query = query.Where("sale_date >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		query = query.Where("sale_date <= ?", filter.To.UTC())
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where(`LOWER(sale_number) LIKE ? ESCAPE '\' OR LOWER(customer_name) LIKE ? ESCAPE '\'`, pattern, pattern)
	}
	return query
}

// Ensure GormSaleRepository implements SaleRepository
var _ trade.SaleRepository = (*GormSaleRepository)(nil)
