package tenant

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type testModel struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name     string    `gorm:"size:100"`
}

func (testModel) TableName() string {
	return "test_models"
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func TestScope(t *testing.T) {
	tenantID := uuid.New()

	t.Run("applies tenant filter to query", func(t *testing.T) {
		db, mock, mockDB := setupMockDB(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "test_models" WHERE tenant_id = \$1`).
			WithArgs(tenantID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "name"}))

		var results []testModel
		err := db.Scopes(Scope(tenantID)).Find(&results).Error
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nil tenant fails without querying", func(t *testing.T) {
		db, mock, mockDB := setupMockDB(t)
		defer mockDB.Close()

		var results []testModel
		err := db.Scopes(Scope(uuid.Nil)).Find(&results).Error
		assert.ErrorIs(t, err, ErrTenantIDRequired)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestScopeTable(t *testing.T) {
	tenantID := uuid.New()
	db, mock, mockDB := setupMockDB(t)
	defer mockDB.Close()

	mock.ExpectQuery(`SELECT \* FROM "test_models" WHERE test_models.tenant_id = \$1`).
		WithArgs(tenantID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "name"}))

	var results []testModel
	require.NoError(t, db.Scopes(ScopeTable("test_models", tenantID)).Find(&results).Error)
	assert.NoError(t, mock.ExpectationsWereMet())
}
