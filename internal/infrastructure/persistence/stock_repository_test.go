package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func saveStock(t *testing.T, repo *GormStockRepository, tenantID uuid.UUID, code, qty string) *inventory.Stock {
	t.Helper()
	stock, err := inventory.NewStock(tenantID, code, "Product "+code, dec(qty), dec("3.00"), dec("5.00"))
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), stock))
	return stock
}

func TestGormStockRepository_SaveAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewGormStockRepository(newSQLiteDB(t))
	tenantID := uuid.New()

	stock := saveStock(t, repo, tenantID, "A-1", "12.5")
	minQty := dec("2")
	require.NoError(t, stock.SetMinQuantity(&minQty))
	require.NoError(t, repo.Save(ctx, stock))

	t.Run("finds within tenant", func(t *testing.T) {
		found, err := repo.FindByIDForTenant(ctx, tenantID, stock.ID)
		require.NoError(t, err)
		assert.Equal(t, "A-1", found.Code)
		assert.True(t, dec("12.5").Equal(found.Quantity))
		assert.True(t, dec("5").Equal(found.SalePrice))
		require.NotNil(t, found.MinQuantity)
		assert.True(t, minQty.Equal(*found.MinQuantity))
		assert.True(t, found.IsActive)
	})

	t.Run("other tenant sees nothing", func(t *testing.T) {
		_, err := repo.FindByIDForTenant(ctx, uuid.New(), stock.ID)
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("locked read works without row locks on sqlite", func(t *testing.T) {
		found, err := repo.FindByIDForUpdate(ctx, tenantID, stock.ID)
		require.NoError(t, err)
		assert.Equal(t, stock.ID, found.ID)
	})
}

func TestGormStockRepository_QuantityGuards(t *testing.T) {
	ctx := context.Background()
	repo := NewGormStockRepository(newSQLiteDB(t))
	tenantID := uuid.New()
	stock := saveStock(t, repo, tenantID, "Q-1", "5")

	ok, err := repo.DecreaseQuantity(ctx, tenantID, stock.ID, dec("3"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.DecreaseQuantity(ctx, tenantID, stock.ID, dec("2.001"))
	require.NoError(t, err)
	assert.False(t, ok, "guard must refuse to go negative")

	ok, err = repo.DecreaseQuantity(ctx, tenantID, stock.ID, dec("2"))
	require.NoError(t, err)
	assert.True(t, ok)

	found, err := repo.FindByIDForTenant(ctx, tenantID, stock.ID)
	require.NoError(t, err)
	assert.True(t, found.Quantity.IsZero())

	ok, err = repo.IncreaseQuantity(ctx, tenantID, stock.ID, dec("1.25"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.IncreaseQuantity(ctx, tenantID, uuid.New(), dec("1"))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.DecreaseQuantity(ctx, uuid.New(), stock.ID, dec("1"))
	require.NoError(t, err)
	assert.False(t, ok, "other tenants cannot touch the row")

	found, err = repo.FindByIDForTenant(ctx, tenantID, stock.ID)
	require.NoError(t, err)
	assert.True(t, dec("1.25").Equal(found.Quantity))
}

func TestGormStockRepository_Listing(t *testing.T) {
	ctx := context.Background()
	repo := NewGormStockRepository(newSQLiteDB(t))
	tenantID := uuid.New()

	a := saveStock(t, repo, tenantID, "BOLT", "1")
	saveStock(t, repo, tenantID, "NUT", "50")
	c := saveStock(t, repo, tenantID, "WASHER", "3")
	saveStock(t, repo, uuid.New(), "BOLT", "9")

	minQty := dec("1")
	require.NoError(t, a.SetMinQuantity(&minQty))
	require.NoError(t, repo.Save(ctx, a))
	require.NoError(t, c.Deactivate())
	require.NoError(t, repo.Save(ctx, c))

	t.Run("active only by default, ordered by code", func(t *testing.T) {
		f := shared.DefaultFilter()
		f.OrderBy = "code"
		f.OrderDir = "asc"
		stocks, err := repo.FindAllForTenant(ctx, tenantID, f)
		require.NoError(t, err)
		require.Len(t, stocks, 2)
		assert.Equal(t, "BOLT", stocks[0].Code)
		assert.Equal(t, "NUT", stocks[1].Code)

		count, err := repo.CountForTenant(ctx, tenantID, f)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("include inactive", func(t *testing.T) {
		f := shared.DefaultFilter()
		f.Filters["include_inactive"] = true
		count, err := repo.CountForTenant(ctx, tenantID, f)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})

	t.Run("search matches code or name case-insensitively", func(t *testing.T) {
		f := shared.DefaultFilter()
		f.Search = "product n"
		stocks, err := repo.FindAllForTenant(ctx, tenantID, f)
		require.NoError(t, err)
		require.Len(t, stocks, 1)
		assert.Equal(t, "NUT", stocks[0].Code)
	})

	t.Run("low stock", func(t *testing.T) {
		stocks, err := repo.FindBelowMinimum(ctx, tenantID, shared.DefaultFilter())
		require.NoError(t, err)
		require.Len(t, stocks, 1)
		assert.Equal(t, a.ID, stocks[0].ID)
	})

	t.Run("active code check ignores inactive rows and excluded id", func(t *testing.T) {
		exists, err := repo.ExistsActiveCode(ctx, tenantID, "WASHER", nil)
		require.NoError(t, err)
		assert.False(t, exists)

		exists, err = repo.ExistsActiveCode(ctx, tenantID, "BOLT", nil)
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsActiveCode(ctx, tenantID, "BOLT", &a.ID)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("inactive code can be reused", func(t *testing.T) {
		saveStock(t, repo, tenantID, "WASHER", "10")
	})

	t.Run("lock several in id order", func(t *testing.T) {
		stocks, err := repo.FindByIDsForUpdate(ctx, tenantID, []uuid.UUID{c.ID, a.ID, uuid.New()})
		require.NoError(t, err)
		require.Len(t, stocks, 2)
		assert.True(t, stocks[0].ID.String() < stocks[1].ID.String())
	})
}

func TestGormStockRepository_SQL(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	stockID := uuid.New()

	t.Run("FindByIDForUpdate takes a row lock", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "stocks" WHERE .*id = .*tenant_id = .*FOR UPDATE`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "code", "name", "quantity", "is_active"}).
				AddRow(stockID.String(), tenantID.String(), "A", "Alpha", "4.000", true))

		stock, err := NewGormStockRepository(db).FindByIDForUpdate(ctx, tenantID, stockID)
		require.NoError(t, err)
		assert.True(t, dec("4").Equal(stock.Quantity))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("FindByIDsForUpdate orders by id before locking", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "stocks" WHERE id IN .*tenant_id = .* ORDER BY id ASC FOR UPDATE`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := NewGormStockRepository(db).FindByIDsForUpdate(ctx, tenantID, []uuid.UUID{stockID})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DecreaseQuantity is a guarded update", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()

		mock.ExpectExec(`UPDATE "stocks" SET "quantity"=quantity - \$1,"updated_at"=\$2 WHERE \(id = \$3 AND quantity >= \$4\) AND tenant_id = \$5`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := NewGormStockRepository(db).DecreaseQuantity(ctx, tenantID, stockID, dec("2"))
		require.NoError(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no query without tenant", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()

		_, err := NewGormStockRepository(db).FindByIDForTenant(ctx, uuid.Nil, stockID)
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
