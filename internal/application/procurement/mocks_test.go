package procurement

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/roofpo/backend/internal/domain/organization"
	"github.com/roofpo/backend/internal/domain/partner"
	"github.com/roofpo/backend/internal/domain/procurement"
	"github.com/roofpo/backend/internal/domain/procurement/ponumber"
	"github.com/roofpo/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// MockPurchaseOrderRepository is a mock implementation of PurchaseOrderRepository
type MockPurchaseOrderRepository struct {
	mock.Mock
}

func (m *MockPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.PurchaseOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurement.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) FindByNumber(ctx context.Context, number string) (*procurement.PurchaseOrder, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurement.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) FindByComponents(ctx context.Context, n ponumber.Number) (*procurement.PurchaseOrder, error) {
	args := m.Called(ctx, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurement.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) FindAll(ctx context.Context, filter procurement.PurchaseOrderFilter) ([]procurement.PurchaseOrder, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]procurement.PurchaseOrder), args.Get(1).(int64), args.Error(2)
}

func (m *MockPurchaseOrderRepository) Save(ctx context.Context, po *procurement.PurchaseOrder) error {
	args := m.Called(ctx, po)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) SaveWithLock(ctx context.Context, po *procurement.PurchaseOrder) error {
	args := m.Called(ctx, po)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) SettleWithLock(ctx context.Context, po *procurement.PurchaseOrder, invoices []*procurement.Invoice) error {
	args := m.Called(ctx, po, invoices)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) CountByStatus(ctx context.Context, divisionIDs []uuid.UUID) (map[procurement.Status]int64, error) {
	args := m.Called(ctx, divisionIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[procurement.Status]int64), args.Error(1)
}

func (m *MockPurchaseOrderRepository) PendingApproval(ctx context.Context, divisionIDs []uuid.UUID) ([]procurement.PurchaseOrder, error) {
	args := m.Called(ctx, divisionIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]procurement.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) FindArchivable(ctx context.Context, cutoff time.Time, limit int) ([]procurement.PurchaseOrder, error) {
	args := m.Called(ctx, cutoff, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]procurement.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) MarkArchived(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	args := m.Called(ctx, ids, at)
	return args.Error(0)
}

// MockInvoiceRepository is a mock implementation of InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurement.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByPurchaseOrder(ctx context.Context, purchaseOrderID uuid.UUID) ([]procurement.Invoice, error) {
	args := m.Called(ctx, purchaseOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]procurement.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAll(ctx context.Context, filter procurement.InvoiceFilter) ([]procurement.Invoice, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]procurement.Invoice), args.Get(1).(int64), args.Error(2)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, inv *procurement.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockInvoiceRepository) ExistsByVendorNumber(ctx context.Context, vendorID uuid.UUID, number string) (bool, error) {
	args := m.Called(ctx, vendorID, number)
	return args.Bool(0), args.Error(1)
}

// MockHistoryRepository is a mock implementation of HistoryRepository
type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) Append(ctx context.Context, entry *procurement.HistoryEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockHistoryRepository) FindByPurchaseOrder(ctx context.Context, purchaseOrderID uuid.UUID) ([]procurement.HistoryEntry, error) {
	args := m.Called(ctx, purchaseOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]procurement.HistoryEntry), args.Error(1)
}

// MockDivisionRepository is a mock implementation of DivisionRepository
type MockDivisionRepository struct {
	mock.Mock
}

func (m *MockDivisionRepository) FindByID(ctx context.Context, id uuid.UUID) (*organization.Division, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*organization.Division), args.Error(1)
}

func (m *MockDivisionRepository) FindByCode(ctx context.Context, code string) (*organization.Division, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*organization.Division), args.Error(1)
}

func (m *MockDivisionRepository) FindAll(ctx context.Context, filter shared.Filter) ([]organization.Division, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]organization.Division), args.Get(1).(int64), args.Error(2)
}

func (m *MockDivisionRepository) Save(ctx context.Context, division *organization.Division) error {
	args := m.Called(ctx, division)
	return args.Error(0)
}

func (m *MockDivisionRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

// MockProjectRepository is a mock implementation of ProjectRepository
type MockProjectRepository struct {
	mock.Mock
}

func (m *MockProjectRepository) FindByID(ctx context.Context, id uuid.UUID) (*organization.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*organization.Project), args.Error(1)
}

func (m *MockProjectRepository) FindAll(ctx context.Context, filter organization.ProjectFilter) ([]organization.Project, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]organization.Project), args.Get(1).(int64), args.Error(2)
}

func (m *MockProjectRepository) Save(ctx context.Context, project *organization.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *MockProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProjectRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

// MockWorkOrderRepository is a mock implementation of WorkOrderRepository
type MockWorkOrderRepository struct {
	mock.Mock
}

func (m *MockWorkOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*organization.WorkOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*organization.WorkOrder), args.Error(1)
}

func (m *MockWorkOrderRepository) FindByNumber(ctx context.Context, divisionID uuid.UUID, number int) (*organization.WorkOrder, error) {
	args := m.Called(ctx, divisionID, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*organization.WorkOrder), args.Error(1)
}

func (m *MockWorkOrderRepository) FindAll(ctx context.Context, filter organization.WorkOrderFilter) ([]organization.WorkOrder, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]organization.WorkOrder), args.Get(1).(int64), args.Error(2)
}

func (m *MockWorkOrderRepository) Save(ctx context.Context, workOrder *organization.WorkOrder) error {
	args := m.Called(ctx, workOrder)
	return args.Error(0)
}

func (m *MockWorkOrderRepository) SaveWithLock(ctx context.Context, workOrder *organization.WorkOrder) error {
	args := m.Called(ctx, workOrder)
	return args.Error(0)
}

func (m *MockWorkOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockWorkOrderRepository) NextNumber(ctx context.Context, divisionID uuid.UUID) (int, error) {
	args := m.Called(ctx, divisionID)
	return args.Int(0), args.Error(1)
}

// MockVendorRepository is a mock implementation of VendorRepository
type MockVendorRepository struct {
	mock.Mock
}

func (m *MockVendorRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Vendor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Vendor), args.Error(1)
}

func (m *MockVendorRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*partner.Vendor, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]*partner.Vendor), args.Error(1)
}

func (m *MockVendorRepository) FindAll(ctx context.Context, filter partner.VendorFilter) ([]partner.Vendor, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]partner.Vendor), args.Get(1).(int64), args.Error(2)
}

func (m *MockVendorRepository) Save(ctx context.Context, vendor *partner.Vendor) error {
	args := m.Called(ctx, vendor)
	return args.Error(0)
}

func (m *MockVendorRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// MockAttachmentStorage is a mock implementation of AttachmentStorage
type MockAttachmentStorage struct {
	mock.Mock
}

func (m *MockAttachmentStorage) Upload(ctx context.Context, storageKey string, body io.Reader, size int64, contentType string) error {
	args := m.Called(ctx, storageKey, body, size, contentType)
	return args.Error(0)
}

func (m *MockAttachmentStorage) GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, storageKey, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockAttachmentStorage) DeleteObject(ctx context.Context, storageKey string) error {
	args := m.Called(ctx, storageKey)
	return args.Error(0)
}

// MockArchiveStore is a mock implementation of ArchiveStore
type MockArchiveStore struct {
	mock.Mock
}

func (m *MockArchiveStore) Store(ctx context.Context, orders []procurement.ArchivedOrder) error {
	args := m.Called(ctx, orders)
	return args.Error(0)
}

func (m *MockArchiveStore) Find(ctx context.Context, id uuid.UUID) (*procurement.ArchivedOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurement.ArchivedOrder), args.Error(1)
}

func (m *MockArchiveStore) Search(ctx context.Context, filter procurement.ArchiveFilter) ([]procurement.ArchivedOrder, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]procurement.ArchivedOrder), args.Get(1).(int64), args.Error(2)
}
