package persistence

import (
	"context"

	"github.com/erp/ledger/internal/domain/finance"
	"github.com/erp/ledger/internal/domain/shared/valueobject"
	"github.com/erp/ledger/internal/infrastructure/persistence/models"
	"github.com/erp/ledger/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormPaymentRepository implements PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

func (r *GormPaymentRepository) scoped(ctx context.Context, tenantID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.PaymentModel{}).Scopes(tenant.Scope(tenantID))
}

// FindByIDForTenant finds a payment by ID within a tenant
func (r *GormPaymentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*finance.Payment, error) {
	var model models.PaymentModel
	if err := r.scoped(ctx, tenantID).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists payments matching the filter
func (r *GormPaymentRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter finance.PaymentFilter) ([]finance.Payment, error) {
	var rows []models.PaymentModel
	if err := r.applyFilter(r.scoped(ctx, tenantID), filter).
		Scopes(ordered(filter.Filter, PaymentSortFields, "payment_date"), paginated(filter.Filter)).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return paymentsToDomain(rows), nil
}

// CountForTenant counts payments matching the filter
func (r *GormPaymentRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter finance.PaymentFilter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.scoped(ctx, tenantID), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindBySale lists every payment linked to a sale, oldest first
func (r *GormPaymentRepository) FindBySale(ctx context.Context, tenantID, saleID uuid.UUID) ([]finance.Payment, error) {
	var rows []models.PaymentModel
	if err := r.scoped(ctx, tenantID).
		Where("sale_id = ?", saleID).
		Order("payment_date ASC").Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return paymentsToDomain(rows), nil
}

// SumIncomeBySale totals the income payments linked to a sale
func (r *GormPaymentRepository) SumIncomeBySale(ctx context.Context, tenantID, saleID uuid.UUID) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	if err := r.scoped(ctx, tenantID).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("sale_id = ? AND type = ?", saleID, string(finance.PaymentTypeIncome)).
		Scan(&row).Error; err != nil {
		return decimal.Zero, err
	}
	return valueobject.RoundMoney(row.Total), nil
}

// SumByType totals income and expense over the filter, ignoring pagination
func (r *GormPaymentRepository) SumByType(ctx context.Context, tenantID uuid.UUID, filter finance.PaymentFilter) (finance.PaymentTotals, error) {
	var rows []struct {
		Type  string
		Total decimal.Decimal
	}
	if err := r.applyFilter(r.scoped(ctx, tenantID), filter).
		Select("type, COALESCE(SUM(amount), 0) AS total").
		Group("type").
		Scan(&rows).Error; err != nil {
		return finance.PaymentTotals{}, err
	}

	totals := finance.PaymentTotals{Income: decimal.Zero, Expense: decimal.Zero}
	for _, row := range rows {
		switch finance.PaymentType(row.Type) {
		case finance.PaymentTypeIncome:
			totals.Income = valueobject.RoundMoney(row.Total)
		case finance.PaymentTypeExpense:
			totals.Expense = valueobject.RoundMoney(row.Total)
		}
	}
	return totals, nil
}

// Create inserts a payment
func (r *GormPaymentRepository) Create(ctx context.Context, payment *finance.Payment) error {
	return translateError(r.db.WithContext(ctx).Create(models.PaymentModelFromDomain(payment)).Error)
}

// DeleteForTenant deletes a payment within a tenant
func (r *GormPaymentRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("id = ?", id).
		Delete(&models.PaymentModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return translateError(gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *GormPaymentRepository) applyFilter(query *gorm.DB, filter finance.PaymentFilter) *gorm.DB {
	if filter.Type != "" {
		query = query.Where("type = ?", string(filter.Type))
	}
	if filter.Method != "" {
		query = query.Where("method = ?", string(filter.Method))
	}
	if filter.SaleID != nil {
		query = query.Where("sale_id = ?", *filter.SaleID)
	}
	if filter.From != nil {
		query = query.Where("payment_date >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		query = query.Where("payment_date <= ?", filter.To.UTC())
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where(`LOWER(counterparty) LIKE ? ESCAPE '\' OR LOWER(reference_number) LIKE ? ESCAPE '\'`, pattern, pattern)
	}
	return query
}

func paymentsToDomain(rows []models.PaymentModel) []finance.Payment {
	payments := make([]finance.Payment, len(rows))
	for i := range rows {
		payments[i] = *rows[i].ToDomain()
	}
	return payments
}

// Ensure GormPaymentRepository implements PaymentRepository
var _ finance.PaymentRepository = (*GormPaymentRepository)(nil)
