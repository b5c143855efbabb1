package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSale(t *testing.T, tenantID uuid.UUID, number string, saleDate time.Time, customer string, lines ...trade.LineInput) *trade.Sale {
	t.Helper()
	sale, err := trade.NewSale(tenantID, number, saleDate, trade.Customer{Name: customer})
	require.NoError(t, err)
	for _, line := range lines {
		_, err := sale.AddItem(line)
		require.NoError(t, err)
	}
	require.NoError(t, sale.Finalize())
	return sale
}

func line(code, qty, price string) trade.LineInput {
	return trade.LineInput{
		StockID:     uuid.New(),
		ProductCode: code,
		ProductName: "Product " + code,
		Quantity:    dec(qty),
		UnitPrice:   dec(price),
	}
}

func TestGormSaleRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewGormSaleRepository(newSQLiteDB(t))
	tenantID := uuid.New()
	saleDate := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

	sale := buildSale(t, tenantID, "S202403150001", saleDate, "Acme",
		line("C", "1", "3"), line("A", "2", "10"), line("B", "0.5", "4"))
	require.NoError(t, repo.Create(ctx, sale))

	t.Run("items come back in line order", func(t *testing.T) {
		found, err := repo.FindByIDForTenant(ctx, tenantID, sale.ID)
		require.NoError(t, err)
		require.Len(t, found.Items, 3)
		assert.Equal(t, "C", found.Items[0].ProductCode)
		assert.Equal(t, "A", found.Items[1].ProductCode)
		assert.Equal(t, "B", found.Items[2].ProductCode)
		assert.True(t, dec("25").Equal(found.TotalAmount))
		assert.True(t, dec("0.5").Equal(found.Items[2].Quantity))
		assert.Equal(t, trade.PaymentStatusPending, found.PaymentStatus)
		assert.True(t, saleDate.Equal(found.SaleDate))
	})

	t.Run("by number", func(t *testing.T) {
		found, err := repo.FindBySaleNumber(ctx, tenantID, "S202403150001")
		require.NoError(t, err)
		assert.Equal(t, sale.ID, found.ID)
		assert.Len(t, found.Items, 3)

		_, err = repo.FindBySaleNumber(ctx, uuid.New(), "S202403150001")
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("locked read loads items", func(t *testing.T) {
		found, err := repo.FindByIDForUpdate(ctx, tenantID, sale.ID)
		require.NoError(t, err)
		assert.Len(t, found.Items, 3)
	})

	t.Run("locked read is tenant scoped", func(t *testing.T) {
		_, err := repo.FindByIDForUpdate(ctx, uuid.New(), sale.ID)
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("status update", func(t *testing.T) {
		_, err := sale.Cancel()
		require.NoError(t, err)
		require.NoError(t, repo.UpdateStatus(ctx, sale))

		found, err := repo.FindByIDForTenant(ctx, tenantID, sale.ID)
		require.NoError(t, err)
		assert.Equal(t, trade.PaymentStatusCancelled, found.PaymentStatus)
		assert.NotNil(t, found.CancelledAt)
	})

	t.Run("status update of a missing sale", func(t *testing.T) {
		ghost := buildSale(t, tenantID, "S202403159999", saleDate, "", line("X", "1", "1"))
		err := repo.UpdateStatus(ctx, ghost)
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})
}

func TestGormSaleRepository_LastSaleNumber(t *testing.T) {
	ctx := context.Background()
	repo := NewGormSaleRepository(newSQLiteDB(t))
	tenantID := uuid.New()
	day := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

	last, err := repo.LastSaleNumber(ctx, tenantID, "S20240315")
	require.NoError(t, err)
	assert.Empty(t, last)

	for _, n := range []string{"S202403150002", "S202403150010", "S202403150009", "S202403160001"} {
		require.NoError(t, repo.Create(ctx, buildSale(t, tenantID, n, day, "", line("A", "1", "1"))))
	}
	require.NoError(t, repo.Create(ctx, buildSale(t, uuid.New(), "S202403150099", day, "", line("A", "1", "1"))))

	last, err = repo.LastSaleNumber(ctx, tenantID, "S20240315")
	require.NoError(t, err)
	assert.Equal(t, "S202403150010", last)

	t.Run("five digit sequence sorts after four", func(t *testing.T) {
		for _, n := range []string{"S202403159999", "S2024031510000", "S2024031510001"} {
			require.NoError(t, repo.Create(ctx, buildSale(t, tenantID, n, day, "", line("A", "1", "1"))))
		}

		last, err := repo.LastSaleNumber(ctx, tenantID, "S20240315")
		require.NoError(t, err)
		assert.Equal(t, "S2024031510001", last)

		next, err := trade.NextSaleNumber("S20240315", last)
		require.NoError(t, err)
		assert.Equal(t, "S2024031510002", next)
	})
}

func TestGormSaleRepository_List(t *testing.T) {
	ctx := context.Background()
	repo := NewGormSaleRepository(newSQLiteDB(t))
	tenantID := uuid.New()

	march := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	april := time.Date(2024, 4, 2, 12, 0, 0, 0, time.UTC)
	first := buildSale(t, tenantID, "S202403150001", march, "Acme Corp", line("A", "1", "10"))
	second := buildSale(t, tenantID, "S202404020001", april, "Globex", line("A", "1", "20"))
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))
	second.ApplyIncomeTotal(dec("20"))
	require.NoError(t, repo.UpdateStatus(ctx, second))

	t.Run("newest sale date first by default", func(t *testing.T) {
		f := shared.DefaultFilter()
		f.OrderBy = ""
		sales, err := repo.FindAllForTenant(ctx, tenantID, f)
		require.NoError(t, err)
		require.Len(t, sales, 2)
		assert.Equal(t, second.ID, sales[0].ID)
		assert.Empty(t, sales[0].Items)
	})

	t.Run("status filter", func(t *testing.T) {
		f := shared.DefaultFilter()
		f.Filters["payment_status"] = "PAID"
		count, err := repo.CountForTenant(ctx, tenantID, f)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("date range", func(t *testing.T) {
		from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC)
		f := shared.DefaultFilter()
		f.From = &from
		f.To = &to
		sales, err := repo.FindAllForTenant(ctx, tenantID, f)
		require.NoError(t, err)
		require.Len(t, sales, 1)
		assert.Equal(t, first.ID, sales[0].ID)
	})

	t.Run("search by customer", func(t *testing.T) {
		f := shared.DefaultFilter()
		f.Search = "ACME"
		sales, err := repo.FindAllForTenant(ctx, tenantID, f)
		require.NoError(t, err)
		require.Len(t, sales, 1)
		assert.Equal(t, "Acme Corp", sales[0].Customer.Name)
	})

	t.Run("pagination", func(t *testing.T) {
		f := shared.DefaultFilter()
		f.PageSize = 1
		f.Page = 2
		sales, err := repo.FindAllForTenant(ctx, tenantID, f)
		require.NoError(t, err)
		assert.Len(t, sales, 1)
	})
}

func TestGormSaleRepository_SQL(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("duplicate sale number is a conflict", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()

		mock.ExpectExec(`INSERT INTO "sales"`).
			WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})

		sale := buildSale(t, tenantID, "S202403150001", time.Now(), "", line("A", "1", "1"))
		err := NewGormSaleRepository(db).Create(ctx, sale)
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrConflict))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("header then items", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()

		mock.ExpectExec(`INSERT INTO "sales"`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO "sale_items"`).WillReturnResult(sqlmock.NewResult(0, 2))

		sale := buildSale(t, tenantID, "S202403150001", time.Now(), "", line("A", "1", "1"), line("B", "1", "1"))
		require.NoError(t, NewGormSaleRepository(db).Create(ctx, sale))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("last number query", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT "sale_number" FROM "sales" WHERE sale_number LIKE \$1 AND tenant_id = \$2 ORDER BY LENGTH\(sale_number\) DESC,sale_number DESC LIMIT`).
			WillReturnRows(sqlmock.NewRows([]string{"sale_number"}).AddRow("S202403150007"))

		last, err := NewGormSaleRepository(db).LastSaleNumber(ctx, tenantID, "S20240315")
		require.NoError(t, err)
		assert.Equal(t, "S202403150007", last)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
