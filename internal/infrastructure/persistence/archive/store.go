// Package archive keeps closed purchase orders in a local SQLite database so
// the primary PostgreSQL tables only carry live work.
package archive

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/roofpo/backend/internal/domain/procurement"
	"github.com/roofpo/backend/internal/domain/shared"
	"github.com/roofpo/backend/internal/infrastructure/persistence"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// MemoryPath opens a private in-memory archive
const MemoryPath = ":memory:"

type archivedOrderModel struct {
	ID           string `gorm:"primaryKey;type:text"`
	PONumber     string `gorm:"not null;index"`
	LegacyNumber string `gorm:"index"`
	DivisionID   string `gorm:"not null;index"`
	ProjectID    string
	WorkOrderID  string
	VendorID     string `gorm:"index"`
	RequestedBy  string
	Description  string
	Status       string    `gorm:"not null"`
	Total        string    `gorm:"not null"`
	ClosedAt     time.Time `gorm:"not null;index"`
	ArchivedAt   time.Time `gorm:"not null"`
	Snapshot     string    `gorm:"type:text;not null"`
}

func (archivedOrderModel) TableName() string {
	return "archived_purchase_orders"
}

func (m *archivedOrderModel) toDomain() procurement.ArchivedOrder {
	return procurement.ArchivedOrder{
		ID:           uuid.MustParse(m.ID),
		PONumber:     m.PONumber,
		LegacyNumber: m.LegacyNumber,
		DivisionID:   parseUUID(m.DivisionID),
		ProjectID:    parseUUID(m.ProjectID),
		WorkOrderID:  parseUUID(m.WorkOrderID),
		VendorID:     parseUUID(m.VendorID),
		RequestedBy:  parseUUID(m.RequestedBy),
		Description:  m.Description,
		Status:       procurement.Status(m.Status),
		Total:        m.Total,
		ClosedAt:     m.ClosedAt,
		ArchivedAt:   m.ArchivedAt,
		Snapshot:     m.Snapshot,
	}
}

func fromDomain(o procurement.ArchivedOrder) archivedOrderModel {
	return archivedOrderModel{
		ID:           o.ID.String(),
		PONumber:     o.PONumber,
		LegacyNumber: o.LegacyNumber,
		DivisionID:   o.DivisionID.String(),
		ProjectID:    o.ProjectID.String(),
		WorkOrderID:  o.WorkOrderID.String(),
		VendorID:     o.VendorID.String(),
		RequestedBy:  o.RequestedBy.String(),
		Description:  o.Description,
		Status:       string(o.Status),
		Total:        o.Total,
		ClosedAt:     o.ClosedAt.UTC(),
		ArchivedAt:   o.ArchivedAt.UTC(),
		Snapshot:     o.Snapshot,
	}
}

func parseUUID(s string) uuid.UUID {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil
	}
	return id
}

// SQLiteStore implements procurement.ArchiveStore on SQLite
type SQLiteStore struct {
	db *gorm.DB
}

// Open opens (creating if needed) the archive database at path and migrates its schema
func Open(path string, log gormlogger.Interface) (*SQLiteStore, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create archive directory: %w", err)
		}
	}
	if log == nil {
		log = gormlogger.Default.LogMode(gormlogger.Silent)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: log})
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}

	// SQLite allows a single writer; an in-memory database also exists per connection
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get archive connection: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&archivedOrderModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate archive: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the archive database
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Store writes orders into the archive. Archiving an order again replaces its copy.
func (s *SQLiteStore) Store(ctx context.Context, orders []procurement.ArchivedOrder) error {
	if len(orders) == 0 {
		return nil
	}
	rows := make([]archivedOrderModel, len(orders))
	for i, o := range orders {
		rows[i] = fromDomain(o)
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		CreateInBatches(&rows, 100).Error
}

// Find returns the archived copy of an order
func (s *SQLiteStore) Find(ctx context.Context, id uuid.UUID) (*procurement.ArchivedOrder, error) {
	var row archivedOrderModel
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id.String()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	o := row.toDomain()
	return &o, nil
}

// Search returns one page of archived orders and the total match count
func (s *SQLiteStore) Search(ctx context.Context, filter procurement.ArchiveFilter) ([]procurement.ArchivedOrder, int64, error) {
	query := s.db.WithContext(ctx).Model(&archivedOrderModel{})
	if len(filter.DivisionIDs) > 0 {
		ids := make([]string, len(filter.DivisionIDs))
		for i, id := range filter.DivisionIDs {
			ids[i] = id.String()
		}
		query = query.Where("division_id IN ?", ids)
	}
	if filter.VendorID != nil {
		query = query.Where("vendor_id = ?", filter.VendorID.String())
	}
	if filter.ClosedFrom != nil {
		query = query.Where("closed_at >= ?", filter.ClosedFrom.UTC())
	}
	if filter.ClosedTo != nil {
		query = query.Where("closed_at <= ?", filter.ClosedTo.UTC())
	}
	if filter.Search != "" {
		searchPattern := "%" + strings.ToUpper(filter.Search) + "%"
		query = query.Where("UPPER(po_number) LIKE ? OR UPPER(legacy_number) LIKE ? OR UPPER(description) LIKE ?",
			searchPattern, searchPattern, searchPattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	field := persistence.ValidateSortField(filter.OrderBy, persistence.ArchiveSortFields, "closed_at")
	query = query.Order(field + " " + persistence.ValidateSortOrder(filter.OrderDir))
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	var rows []archivedOrderModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	orders := make([]procurement.ArchivedOrder, len(rows))
	for i := range rows {
		orders[i] = rows[i].toDomain()
	}
	return orders, total, nil
}
