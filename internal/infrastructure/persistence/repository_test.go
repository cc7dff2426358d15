package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/roofpo/backend/internal/domain/identity"
	"github.com/roofpo/backend/internal/domain/procurement"
	"github.com/roofpo/backend/internal/domain/report"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormVendorRepository_FindByIDs(t *testing.T) {
	t.Run("empty input skips the query", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGorm(t)
		defer mockDB.Close()
		repo := NewGormVendorRepository(gormDB)

		vendors, err := repo.FindByIDs(context.Background(), nil)

		require.NoError(t, err)
		assert.Empty(t, vendors)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("keys vendors by id", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGorm(t)
		defer mockDB.Close()
		repo := NewGormVendorRepository(gormDB)

		known, unknown := uuid.New(), uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "vendors" WHERE id IN \(\$1,\$2\)`).
			WithArgs(known, unknown).
			WillReturnRows(sqlmock.NewRows([]string{"id", "code", "name", "payment_terms", "active"}).
				AddRow(known.String(), "ABC", "ABC Supply", "NET30", true))

		vendors, err := repo.FindByIDs(context.Background(), []uuid.UUID{known, unknown})

		require.NoError(t, err)
		require.Len(t, vendors, 1)
		assert.Equal(t, "ABC Supply", vendors[known].Name)
		assert.NotContains(t, vendors, unknown)
	})
}

func TestGormUserRepository_FindByEmail(t *testing.T) {
	gormDB, mock, mockDB := newMockGorm(t)
	defer mockDB.Close()
	repo := NewGormUserRepository(gormDB)

	userID := uuid.New()
	divisionID := uuid.New()
	leaderID := "01"
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = \$1`).
		WithArgs("pat@roofing.test", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "display_name", "role", "leader_id", "active"}).
			AddRow(userID.String(), "pat@roofing.test", "Pat", "DIVISION_LEADER", leaderID, true))
	mock.ExpectQuery(`SELECT \* FROM "user_divisions" WHERE user_id = \$1`).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "division_id"}).AddRow(userID.String(), divisionID.String()))

	user, err := repo.FindByEmail(context.Background(), "  Pat@Roofing.test ")

	require.NoError(t, err)
	assert.Equal(t, identity.RoleDivisionLeader, user.Role)
	assert.Equal(t, "01", user.LeaderID)
	assert.Equal(t, []uuid.UUID{divisionID}, user.DivisionIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormUserRepository_ExistsByLeaderID(t *testing.T) {
	gormDB, mock, mockDB := newMockGorm(t)
	defer mockDB.Close()
	repo := NewGormUserRepository(gormDB)

	self := uuid.New()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "users" WHERE leader_id = \$1 AND id <> \$2`).
		WithArgs("A7", self).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	exists, err := repo.ExistsByLeaderID(context.Background(), "a7", self)

	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGormInvoiceRepository_ExistsByVendorNumber(t *testing.T) {
	gormDB, mock, mockDB := newMockGorm(t)
	defer mockDB.Close()
	repo := NewGormInvoiceRepository(gormDB)

	vendorID := uuid.New()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "invoices" WHERE vendor_id = \$1 AND UPPER\(number\) = \$2`).
		WithArgs(vendorID, "INV-1001").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	exists, err := repo.ExistsByVendorNumber(context.Background(), vendorID, " inv-1001")

	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormInvoiceRepository_FindByPurchaseOrder(t *testing.T) {
	gormDB, mock, mockDB := newMockGorm(t)
	defer mockDB.Close()
	repo := NewGormInvoiceRepository(gormDB)

	poID := uuid.New()
	mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE purchase_order_id = \$1 ORDER BY invoice_date ASC, created_at ASC`).
		WithArgs(poID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "purchase_order_id", "number", "amount", "status"}).
			AddRow(uuid.New().String(), poID.String(), "INV-1", "400.00", "RECORDED").
			AddRow(uuid.New().String(), poID.String(), "INV-2", "12.50", "VOID"))

	invoices, err := repo.FindByPurchaseOrder(context.Background(), poID)

	require.NoError(t, err)
	require.Len(t, invoices, 2)
	assert.True(t, invoices[0].Amount.Equal(decimal.NewFromInt(400)))
	assert.Equal(t, procurement.InvoiceStatus("VOID"), invoices[1].Status)
}

func TestGormHistoryRepository_Append(t *testing.T) {
	gormDB, mock, mockDB := newMockGorm(t)
	defer mockDB.Close()
	repo := NewGormHistoryRepository(gormDB)

	entry := &procurement.HistoryEntry{
		ID:              uuid.New(),
		PurchaseOrderID: uuid.New(),
		EventID:         uuid.New(),
		EventType:       "PurchaseOrderSubmitted",
		FromStatus:      procurement.StatusDraft,
		ToStatus:        procurement.StatusSubmitted,
		OccurredAt:      time.Now(),
	}
	mock.ExpectExec(`INSERT INTO "po_history" .* ON CONFLICT \("event_id"\) DO NOTHING`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Append(context.Background(), entry))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormSpendReportRepository_GetTopVendors(t *testing.T) {
	gormDB, mock, mockDB := newMockGorm(t)
	defer mockDB.Close()
	repo := NewGormSpendReportRepository(gormDB)

	mock.ExpectQuery(`SELECT .* FROM purchase_orders po JOIN vendors v ON v.id = po.vendor_id WHERE .* GROUP BY po.vendor_id, v.code, v.name ORDER BY committed_spend DESC LIMIT \$\d+`).
		WillReturnRows(sqlmock.NewRows([]string{"vendor_id", "vendor_code", "vendor_name", "order_count", "committed_spend"}).
			AddRow(uuid.New().String(), "ABC", "ABC Supply", 7, "48000.00").
			AddRow(uuid.New().String(), "GAF", "GAF Materials", 3, "12250.00"))

	filter := report.SpendFilter{
		StartDate: time.Now().AddDate(0, -1, 0),
		EndDate:   time.Now(),
	}
	vendors, err := repo.GetTopVendors(context.Background(), filter)

	require.NoError(t, err)
	require.Len(t, vendors, 2)
	assert.Equal(t, 1, vendors[0].Rank)
	assert.Equal(t, 2, vendors[1].Rank)
	assert.Equal(t, "GAF", vendors[1].VendorCode)
}

func TestBucketAging(t *testing.T) {
	now := time.Date(2026, 6, 30, 12, 0, 0, 0, time.UTC)
	rows := []openOrderRow{
		{ID: uuid.New(), IssuedAt: now.AddDate(0, 0, -2), Outstanding: decimal.NewFromInt(100)},
		{ID: uuid.New(), IssuedAt: now.AddDate(0, 0, -7), Outstanding: decimal.NewFromInt(50)},
		{ID: uuid.New(), IssuedAt: now.AddDate(0, 0, -8), Outstanding: decimal.NewFromInt(25)},
		{ID: uuid.New(), IssuedAt: now.AddDate(0, 0, -45), Outstanding: decimal.NewFromInt(10)},
		{ID: uuid.New(), IssuedAt: now.AddDate(0, 0, -90), Outstanding: decimal.NewFromInt(1)},
	}

	buckets := bucketAging(rows, now)

	require.Len(t, buckets, len(report.AgingBuckets))
	assert.Equal(t, "0-7", buckets[0].Bucket)
	assert.Equal(t, 2, int(buckets[0].OrderCount))
	assert.True(t, buckets[0].Outstanding.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, 1, int(buckets[1].OrderCount))
	assert.Equal(t, 1, int(buckets[2].OrderCount))
	assert.Equal(t, "60+", buckets[3].Bucket)
	assert.True(t, buckets[3].Outstanding.Equal(decimal.NewFromInt(1)))
}

func TestBucketAging_NoRows(t *testing.T) {
	buckets := bucketAging(nil, time.Now())
	for _, b := range buckets {
		assert.Zero(t, b.OrderCount)
		assert.True(t, b.Outstanding.IsZero())
	}
}
