package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fieldsales/backend/internal/domain/sales"
	"github.com/fieldsales/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var testColumns = []string{
	sales.ColDate, sales.ColChannel, sales.ColOutletType, sales.ColModelCode,
	sales.ColSalesType, sales.ColMTDVolume, sales.ColMTDValue, "ASM", "TSE",
}

// setupSalesTestDB opens an in-memory SQLite database with every table migrated
func setupSalesTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// A second pooled connection would see an empty in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.SalesRecordModel{},
		&models.EmployeeModel{},
		&models.ModelReferenceModel{},
		&models.ChannelTargetModel{},
	))
	return db
}

func newTestRecord(t *testing.T, line int, values ...string) *sales.Record {
	t.Helper()
	admitted, ok := sales.ShouldAdmit(sales.NewRawRow(line, testColumns, values), nil)
	require.True(t, ok)
	rec := sales.NewRecordFromRow(admitted)
	rec.CreatedAt = time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC)
	return rec
}

func TestGormSalesRecordRepository_InsertIfAbsent(t *testing.T) {
	db := setupSalesTestDB(t)
	repo := NewGormSalesRecordRepository(db)
	ctx := context.Background()

	first := []*sales.Record{
		newTestRecord(t, 2, "3/10/2024", "North", "DCM", "M1", "Sell Out", "5", "500", "Ravi", "Anu"),
		newTestRecord(t, 3, "3/11/2024", "North", "PC", "M2", "Sell Out", "2", "200", "Ravi", "Anu"),
	}

	t.Run("inserts new records", func(t *testing.T) {
		inserted, err := repo.InsertIfAbsent(ctx, first)
		require.NoError(t, err)
		assert.Equal(t, int64(2), inserted)
	})

	t.Run("skips identities already stored", func(t *testing.T) {
		again := []*sales.Record{
			newTestRecord(t, 2, "3/10/2024", "North", "DCM", "M1", "Sell Out", "5", "500", "Ravi", "Anu"),
			newTestRecord(t, 4, "3/12/2024", "North", "SES", "M3", "Sell In", "1", "100", "Ravi", "Anu"),
		}
		inserted, err := repo.InsertIfAbsent(ctx, again)
		require.NoError(t, err)
		assert.Equal(t, int64(1), inserted)

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})

	t.Run("empty input is a no-op", func(t *testing.T) {
		inserted, err := repo.InsertIfAbsent(ctx, nil)
		require.NoError(t, err)
		assert.Zero(t, inserted)
	})
}

func TestGormSalesRecordRepository_ExistingHashes(t *testing.T) {
	db := setupSalesTestDB(t)
	repo := NewGormSalesRecordRepository(db)
	ctx := context.Background()

	stored := newTestRecord(t, 2, "3/10/2024", "North", "DCM", "M1", "Sell Out", "5", "500", "Ravi", "Anu")
	_, err := repo.InsertIfAbsent(ctx, []*sales.Record{stored})
	require.NoError(t, err)

	found, err := repo.ExistingHashes(ctx, []string{stored.IdentityHash, sales.HashIdentity("other")})
	require.NoError(t, err)
	assert.Len(t, found, 1)
	assert.True(t, found.Contains(stored.IdentityHash))

	empty, err := repo.ExistingHashes(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestGormSalesRecordRepository_FindInRange(t *testing.T) {
	db := setupSalesTestDB(t)
	repo := NewGormSalesRecordRepository(db)
	ctx := context.Background()

	_, err := repo.InsertIfAbsent(ctx, []*sales.Record{
		newTestRecord(t, 2, "3/10/2024", "North", "DCM", "M1", "Sell Out", "5", "500", "Ravi", "Anu"),
		newTestRecord(t, 3, "3/11/2024", "North", "PC", "M2", "Sell Out", "2", "200", "Ravi", "Bala"),
		newTestRecord(t, 4, "3/12/2024", "South", "SES", "M3", "Sell In", "1", "100", "Mani", "Chitra"),
		newTestRecord(t, 5, "2/12/2024", "North", "DCM", "M1", "Sell Out", "7", "700", "Ravi", "Anu"),
		newTestRecord(t, 6, "not a date", "North", "DCM", "M1", "Sell Out", "9", "900", "Ravi", "Anu"),
	})
	require.NoError(t, err)

	march := sales.RecordQuery{
		From: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC),
	}

	t.Run("bounds are inclusive", func(t *testing.T) {
		records, err := repo.FindInRange(ctx, march)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "DCM", records[0].OutletType)
		assert.Equal(t, "PC", records[1].OutletType)
		assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), *records[0].SaleDate)
	})

	t.Run("filters by hierarchy scope", func(t *testing.T) {
		q := march
		q.Scope = &sales.Scope{Level: sales.LevelTSE, Name: "Bala"}
		records, err := repo.FindInRange(ctx, q)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "M2", records[0].ModelCode)
		assert.Equal(t, "Ravi", sales.FieldFor(sales.LevelASM, records[0]))
	})

	t.Run("filters by sales type", func(t *testing.T) {
		records, err := repo.FindInRange(ctx, sales.RecordQuery{SalesType: sales.SalesTypeSellIn})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "SES", records[0].OutletType)
	})

	t.Run("unparseable dates never match", func(t *testing.T) {
		records, err := repo.FindInRange(ctx, sales.RecordQuery{})
		require.NoError(t, err)
		assert.Len(t, records, 4)
		for _, r := range records {
			assert.NotNil(t, r.SaleDate)
		}
	})
}

func TestGormSalesRecordRepository_InsertIfAbsentSQL(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func(db *sql.DB) { _ = db.Close() }(mockDB)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: mockDB, DriverName: "postgres"}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	repo := NewGormSalesRecordRepository(gormDB)

	rec := newTestRecord(t, 2, "3/10/2024", "North", "DCM", "M1", "Sell Out", "5", "500", "Ravi", "Anu")
	rec.ID = uuid.New()

	mock.ExpectExec(`INSERT INTO "sales_records" .* ON CONFLICT \("identity_hash"\) DO NOTHING`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	inserted, err := repo.InsertIfAbsent(context.Background(), []*sales.Record{rec})
	require.NoError(t, err)
	assert.Zero(t, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}
