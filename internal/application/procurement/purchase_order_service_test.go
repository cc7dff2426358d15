package procurement

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/roofpo/backend/internal/domain/identity"
	"github.com/roofpo/backend/internal/domain/organization"
	"github.com/roofpo/backend/internal/domain/partner"
	"github.com/roofpo/backend/internal/domain/procurement"
	"github.com/roofpo/backend/internal/domain/procurement/ponumber"
	"github.com/roofpo/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type poServiceFixture struct {
	orders     *MockPurchaseOrderRepository
	invoices   *MockInvoiceRepository
	history    *MockHistoryRepository
	divisions  *MockDivisionRepository
	projects   *MockProjectRepository
	workOrders *MockWorkOrderRepository
	vendors    *MockVendorRepository
	events     *MockEventPublisher
	service    *PurchaseOrderService
}

func newPOServiceFixture() *poServiceFixture {
	f := &poServiceFixture{
		orders:     new(MockPurchaseOrderRepository),
		invoices:   new(MockInvoiceRepository),
		history:    new(MockHistoryRepository),
		divisions:  new(MockDivisionRepository),
		projects:   new(MockProjectRepository),
		workOrders: new(MockWorkOrderRepository),
		vendors:    new(MockVendorRepository),
		events:     new(MockEventPublisher),
	}
	f.service = NewPurchaseOrderService(Repositories{
		Orders:     f.orders,
		Invoices:   f.invoices,
		History:    f.history,
		Divisions:  f.divisions,
		Projects:   f.projects,
		WorkOrders: f.workOrders,
		Vendors:    f.vendors,
	}, procurement.DefaultApprovalPolicy(), procurement.DefaultTolerance(), nil)
	f.service.SetEventPublisher(f.events)
	return f
}

// jobSetup is a division, active project and open work order 12 with two POs already raised
type jobSetup struct {
	division  *organization.Division
	project   *organization.Project
	workOrder *organization.WorkOrder
	vendor    *partner.Vendor
}

func newJobSetup(t *testing.T) jobSetup {
	t.Helper()
	division, err := organization.NewDivision("CP", "Commercial Projects")
	require.NoError(t, err)
	project, err := organization.NewProject(division.ID, "MILLER", "Miller re-roof")
	require.NoError(t, err)
	wo, err := organization.NewWorkOrder(project, 12, "Tear-off and shingles")
	require.NoError(t, err)
	wo.LastPurchaseSequence = 2
	vendor, err := partner.NewVendor("ABC", "abc supply")
	require.NoError(t, err)
	return jobSetup{division: division, project: project, workOrder: wo, vendor: vendor}
}

func leaderActor(divisionID uuid.UUID) identity.Actor {
	return identity.Actor{
		UserID:      uuid.New(),
		Role:        identity.RoleDivisionLeader,
		LeaderID:    "07",
		DivisionIDs: []uuid.UUID{divisionID},
	}
}

func testOrder(t *testing.T, divisionID uuid.UUID, lines ...string) *procurement.PurchaseOrder {
	t.Helper()
	po, err := procurement.NewPurchaseOrder(procurement.NewPurchaseOrderParams{
		Number:      ponumber.Number{LeaderID: "07", DivisionCode: "CP", WorkOrderNumber: 12, PurchaseSequence: 1},
		DivisionID:  divisionID,
		ProjectID:   uuid.New(),
		WorkOrderID: uuid.New(),
		VendorID:    uuid.New(),
		RequestedBy: uuid.New(),
		Description: "Shingles for the Miller re-roof",
	})
	require.NoError(t, err)
	for _, price := range lines {
		_, err := po.AddLineItem(procurement.LineItemInput{
			Description: "Architectural shingles",
			Unit:        "bundle",
			Quantity:    decimal.NewFromInt(1),
			UnitPrice:   decimal.RequireFromString(price),
		})
		require.NoError(t, err)
	}
	po.Version = 1
	po.PullDomainEvents()
	return po
}

func assertDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	var de *shared.DomainError
	require.True(t, errors.As(err, &de), "expected a domain error, got %v", err)
	assert.Equal(t, code, de.Code)
}

func TestPurchaseOrderService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns the next number on the work order", func(t *testing.T) {
		f := newPOServiceFixture()
		job := newJobSetup(t)
		actor := leaderActor(job.division.ID)

		f.workOrders.On("FindByID", ctx, job.workOrder.ID).Return(job.workOrder, nil)
		f.projects.On("FindByID", ctx, job.project.ID).Return(job.project, nil)
		f.divisions.On("FindByID", ctx, job.division.ID).Return(job.division, nil)
		f.vendors.On("FindByID", ctx, job.vendor.ID).Return(job.vendor, nil)
		f.workOrders.On("SaveWithLock", ctx, job.workOrder).Return(nil)
		f.orders.On("Save", ctx, mock.AnythingOfType("*procurement.PurchaseOrder")).Return(nil)
		f.events.On("Publish", ctx, mock.Anything).Return(nil)

		tax := decimal.RequireFromString("12.50")
		resp, err := f.service.Create(ctx, actor, CreatePurchaseOrderRequest{
			WorkOrderID: job.workOrder.ID,
			VendorID:    job.vendor.ID,
			Description: "Ridge vents",
			TaxAmount:   &tax,
			Lines: []LineItemRequest{
				{Description: "Ridge vent", Unit: "ea", Quantity: decimal.NewFromInt(10), UnitPrice: decimal.RequireFromString("18.75")},
			},
		})

		require.NoError(t, err)
		assert.Equal(t, "07CP0012-3", resp.PONumber)
		assert.Equal(t, procurement.StatusDraft, resp.Status)
		assert.Equal(t, 1, resp.Version)
		assert.True(t, resp.Total.Equal(decimal.RequireFromString("200.00")))
		assert.Equal(t, 3, job.workOrder.LastPurchaseSequence)
		f.orders.AssertExpectations(t)
		f.events.AssertExpectations(t)
	})

	t.Run("retries the sequence after a concurrent reservation", func(t *testing.T) {
		f := newPOServiceFixture()
		job := newJobSetup(t)
		actor := leaderActor(job.division.ID)

		fresh := *job.workOrder
		fresh.LastPurchaseSequence = 5

		f.workOrders.On("FindByID", ctx, job.workOrder.ID).Return(job.workOrder, nil).Once()
		f.projects.On("FindByID", ctx, job.project.ID).Return(job.project, nil)
		f.divisions.On("FindByID", ctx, job.division.ID).Return(job.division, nil)
		f.vendors.On("FindByID", ctx, job.vendor.ID).Return(job.vendor, nil)
		f.workOrders.On("SaveWithLock", ctx, job.workOrder).Return(shared.ErrConcurrencyConflict).Once()
		f.workOrders.On("FindByID", ctx, job.workOrder.ID).Return(&fresh, nil).Once()
		f.workOrders.On("SaveWithLock", ctx, &fresh).Return(nil).Once()
		f.orders.On("Save", ctx, mock.Anything).Return(nil)
		f.events.On("Publish", ctx, mock.Anything).Return(nil)

		resp, err := f.service.Create(ctx, actor, CreatePurchaseOrderRequest{
			WorkOrderID: job.workOrder.ID,
			VendorID:    job.vendor.ID,
			Description: "Underlayment",
		})

		require.NoError(t, err)
		assert.Equal(t, "07CP0012-6", resp.PONumber)
		f.workOrders.AssertExpectations(t)
	})

	t.Run("requires a leader ID", func(t *testing.T) {
		f := newPOServiceFixture()
		actor := leaderActor(uuid.New())
		actor.LeaderID = ""

		_, err := f.service.Create(ctx, actor, CreatePurchaseOrderRequest{WorkOrderID: uuid.New()})

		assertDomainCode(t, err, "LEADER_ID_REQUIRED")
		f.workOrders.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("hides work orders of other divisions", func(t *testing.T) {
		f := newPOServiceFixture()
		job := newJobSetup(t)
		actor := leaderActor(uuid.New())

		f.workOrders.On("FindByID", ctx, job.workOrder.ID).Return(job.workOrder, nil)

		_, err := f.service.Create(ctx, actor, CreatePurchaseOrderRequest{WorkOrderID: job.workOrder.ID, VendorID: job.vendor.ID})

		assert.ErrorIs(t, err, shared.ErrNotFound)
		f.orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects inactive vendors", func(t *testing.T) {
		f := newPOServiceFixture()
		job := newJobSetup(t)
		require.NoError(t, job.vendor.Deactivate())
		actor := leaderActor(job.division.ID)

		f.workOrders.On("FindByID", ctx, job.workOrder.ID).Return(job.workOrder, nil)
		f.projects.On("FindByID", ctx, job.project.ID).Return(job.project, nil)
		f.divisions.On("FindByID", ctx, job.division.ID).Return(job.division, nil)
		f.vendors.On("FindByID", ctx, job.vendor.ID).Return(job.vendor, nil)

		_, err := f.service.Create(ctx, actor, CreatePurchaseOrderRequest{
			WorkOrderID: job.workOrder.ID,
			VendorID:    job.vendor.ID,
			Description: "Flashing",
		})

		assertDomainCode(t, err, "VENDOR_INACTIVE")
		f.workOrders.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})
}

func TestPurchaseOrderService_Get(t *testing.T) {
	ctx := context.Background()
	f := newPOServiceFixture()
	po := testOrder(t, uuid.New(), "100")
	f.orders.On("FindByID", ctx, po.ID).Return(po, nil)

	t.Run("visible in own division", func(t *testing.T) {
		resp, err := f.service.Get(ctx, leaderActor(po.DivisionID), po.ID)
		require.NoError(t, err)
		assert.Equal(t, po.PONumber(), resp.PONumber)
	})

	t.Run("not found outside own division", func(t *testing.T) {
		_, err := f.service.Get(ctx, leaderActor(uuid.New()), po.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("company-wide roles see everything", func(t *testing.T) {
		_, err := f.service.Get(ctx, identity.Actor{UserID: uuid.New(), Role: identity.RoleExecutive}, po.ID)
		assert.NoError(t, err)
	})
}

func TestPurchaseOrderService_GetByNumber(t *testing.T) {
	ctx := context.Background()

	t.Run("accepts legacy numbers", func(t *testing.T) {
		f := newPOServiceFixture()
		po := testOrder(t, uuid.New(), "100")
		f.orders.On("FindByComponents", ctx, po.Number).Return(po, nil)

		resp, err := f.service.GetByNumber(ctx, leaderActor(po.DivisionID), "07CP0012-1ab12")

		require.NoError(t, err)
		assert.Equal(t, po.ID, resp.ID)
	})

	t.Run("legacy number of an issued order resolves to that order", func(t *testing.T) {
		f := newPOServiceFixture()
		po := testOrder(t, uuid.New(), "100")
		po.Status = procurement.StatusApproved
		require.Error(t, po.Issue("1234", po.RequestedBy))
		require.NoError(t, po.Issue("1a23", po.RequestedBy))
		legacy, ok := po.LegacyNumber()
		require.True(t, ok)
		assert.Equal(t, "07CP0012-11a23", legacy)
		f.orders.On("FindByComponents", ctx, po.Number).Return(po, nil)

		resp, err := f.service.GetByNumber(ctx, leaderActor(po.DivisionID), legacy)

		require.NoError(t, err)
		assert.Equal(t, po.ID, resp.ID)
		f.orders.AssertExpectations(t)
	})

	t.Run("rejects malformed numbers", func(t *testing.T) {
		f := newPOServiceFixture()

		_, err := f.service.GetByNumber(ctx, leaderActor(uuid.New()), "not-a-po")

		assertDomainCode(t, err, "INVALID_PO_NUMBER")
		f.orders.AssertNotCalled(t, "FindByComponents", mock.Anything, mock.Anything)
	})
}

func TestPurchaseOrderService_List_ScopesToDivisions(t *testing.T) {
	ctx := context.Background()
	f := newPOServiceFixture()
	divisionID := uuid.New()
	po := testOrder(t, divisionID, "100")

	f.orders.On("FindAll", ctx, mock.MatchedBy(func(filter procurement.PurchaseOrderFilter) bool {
		return len(filter.DivisionIDs) == 1 && filter.DivisionIDs[0] == divisionID &&
			filter.Page == 1 && filter.PageSize == 20 && filter.OrderBy == "created_at"
	})).Return([]procurement.PurchaseOrder{*po}, int64(1), nil)

	items, total, err := f.service.List(ctx, leaderActor(divisionID), PurchaseOrderListFilter{})

	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, po.PONumber(), items[0].PONumber)
	f.orders.AssertExpectations(t)
}

func TestPurchaseOrderService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("stale version is rejected", func(t *testing.T) {
		f := newPOServiceFixture()
		po := testOrder(t, uuid.New(), "100")
		po.Version = 4
		f.orders.On("FindByID", ctx, po.ID).Return(po, nil)

		desc := "Changed"
		_, err := f.service.Update(ctx, leaderActor(po.DivisionID), po.ID, UpdatePurchaseOrderRequest{Version: 3, Description: &desc})

		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		f.orders.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("several edits are one revision", func(t *testing.T) {
		f := newPOServiceFixture()
		po := testOrder(t, uuid.New(), "100")
		f.orders.On("FindByID", ctx, po.ID).Return(po, nil)
		f.orders.On("SaveWithLock", ctx, po).Return(nil)

		desc := "Ice and water shield"
		tax := decimal.RequireFromString("8.25")
		resp, err := f.service.Update(ctx, leaderActor(po.DivisionID), po.ID, UpdatePurchaseOrderRequest{
			Version:     1,
			Description: &desc,
			TaxAmount:   &tax,
		})

		require.NoError(t, err)
		assert.Equal(t, 2, resp.Version)
		assert.Equal(t, desc, resp.Description)
		assert.True(t, resp.Total.Equal(decimal.RequireFromString("108.25")))
	})
}

func TestPurchaseOrderService_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("small orders approve on submission", func(t *testing.T) {
		f := newPOServiceFixture()
		po := testOrder(t, uuid.New(), "450")
		actor := leaderActor(po.DivisionID)
		f.orders.On("FindByID", ctx, po.ID).Return(po, nil)
		f.orders.On("SaveWithLock", ctx, po).Return(nil)
		f.events.On("Publish", ctx, mock.MatchedBy(func(events []shared.DomainEvent) bool {
			return len(events) > 0
		})).Return(nil)

		resp, err := f.service.Submit(ctx, actor, po.ID)

		require.NoError(t, err)
		assert.Equal(t, procurement.StatusApproved, resp.Status)
		assert.Empty(t, po.GetDomainEvents())
		f.events.AssertExpectations(t)
	})

	t.Run("publish failure does not fail the call", func(t *testing.T) {
		f := newPOServiceFixture()
		po := testOrder(t, uuid.New(), "6000")
		f.orders.On("FindByID", ctx, po.ID).Return(po, nil)
		f.orders.On("SaveWithLock", ctx, po).Return(nil)
		f.events.On("Publish", ctx, mock.Anything).Return(errors.New("bus down"))

		resp, err := f.service.Submit(ctx, leaderActor(po.DivisionID), po.ID)

		require.NoError(t, err)
		assert.Equal(t, procurement.StatusSubmitted, resp.Status)
		assert.Len(t, resp.ApprovalStages, 2)
	})

	t.Run("save conflict is surfaced", func(t *testing.T) {
		f := newPOServiceFixture()
		po := testOrder(t, uuid.New(), "100")
		f.orders.On("FindByID", ctx, po.ID).Return(po, nil)
		f.orders.On("SaveWithLock", ctx, po).Return(shared.ErrConcurrencyConflict)

		_, err := f.service.Submit(ctx, leaderActor(po.DivisionID), po.ID)

		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		f.events.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})
}

func TestPurchaseOrderService_Approve(t *testing.T) {
	ctx := context.Background()

	t.Run("requester cannot approve", func(t *testing.T) {
		f := newPOServiceFixture()
		po := testOrder(t, uuid.New(), "1200")
		require.NoError(t, po.Submit(procurement.DefaultApprovalPolicy(), po.RequestedBy))
		po.PullDomainEvents()
		f.orders.On("FindByID", ctx, po.ID).Return(po, nil)

		actor := leaderActor(po.DivisionID)
		actor.UserID = po.RequestedBy
		_, err := f.service.Approve(ctx, actor, po.ID, "ok")

		assertDomainCode(t, err, "SELF_APPROVAL")
		f.orders.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("division leader clears the only stage", func(t *testing.T) {
		f := newPOServiceFixture()
		po := testOrder(t, uuid.New(), "1200")
		require.NoError(t, po.Submit(procurement.DefaultApprovalPolicy(), po.RequestedBy))
		po.PullDomainEvents()
		f.orders.On("FindByID", ctx, po.ID).Return(po, nil)
		f.orders.On("SaveWithLock", ctx, po).Return(nil)
		f.events.On("Publish", ctx, mock.Anything).Return(nil)

		resp, err := f.service.Approve(ctx, leaderActor(po.DivisionID), po.ID, "ok")

		require.NoError(t, err)
		assert.Equal(t, procurement.StatusApproved, resp.Status)
		require.Len(t, resp.Approvals, 1)
	})
}

func TestPurchaseOrderService_Pay(t *testing.T) {
	ctx := context.Background()
	accounting := identity.Actor{UserID: uuid.New(), Role: identity.RoleAccounting}

	receivedOrder := func(t *testing.T) *procurement.PurchaseOrder {
		po := testOrder(t, uuid.New(), "300")
		require.NoError(t, po.Submit(procurement.DefaultApprovalPolicy(), po.RequestedBy))
		require.NoError(t, po.Issue("", po.RequestedBy))
		_, err := po.Receive([]procurement.ReceiveLine{{ItemID: po.Items[0].ID, Quantity: decimal.NewFromInt(1)}}, uuid.New(), "PS-1", "")
		require.NoError(t, err)
		po.PullDomainEvents()
		return po
	}
	invoiceFor := func(t *testing.T, po *procurement.PurchaseOrder, amount string) procurement.Invoice {
		inv, err := procurement.NewInvoice(po, procurement.NewInvoiceParams{
			Number:      "INV-" + amount,
			Amount:      decimal.RequireFromString(amount),
			InvoiceDate: time.Now(),
			RecordedBy:  uuid.New(),
		})
		require.NoError(t, err)
		return *inv
	}

	t.Run("override requires permission", func(t *testing.T) {
		f := newPOServiceFixture()
		actor := leaderActor(uuid.New())

		_, err := f.service.Pay(ctx, actor, uuid.New(), PayRequest{OverrideVariance: true})

		assertDomainCode(t, err, "FORBIDDEN")
		f.orders.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("matched invoice closes the order and settles the invoice", func(t *testing.T) {
		f := newPOServiceFixture()
		po := receivedOrder(t)
		inv := invoiceFor(t, po, "302.00")
		f.orders.On("FindByID", ctx, po.ID).Return(po, nil)
		f.invoices.On("FindByPurchaseOrder", ctx, po.ID).Return([]procurement.Invoice{inv}, nil)
		f.orders.On("SettleWithLock", ctx, po, mock.MatchedBy(func(settled []*procurement.Invoice) bool {
			return len(settled) == 1 && settled[0].ID == inv.ID && settled[0].Status == procurement.InvoiceStatusPaid
		})).Return(nil)
		f.events.On("Publish", ctx, mock.Anything).Return(nil)

		resp, err := f.service.Pay(ctx, accounting, po.ID, PayRequest{Reference: "CHK-1001"})

		require.NoError(t, err)
		assert.Equal(t, procurement.StatusPaid, resp.Status)
		f.orders.AssertExpectations(t)
		f.invoices.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("void invoices are left out of the settlement", func(t *testing.T) {
		f := newPOServiceFixture()
		po := receivedOrder(t)
		inv := invoiceFor(t, po, "302.00")
		voided := invoiceFor(t, po, "50.00")
		require.NoError(t, voided.Void("Duplicate bill", uuid.New()))
		f.orders.On("FindByID", ctx, po.ID).Return(po, nil)
		f.invoices.On("FindByPurchaseOrder", ctx, po.ID).Return([]procurement.Invoice{inv, voided}, nil)
		f.orders.On("SettleWithLock", ctx, po, mock.MatchedBy(func(settled []*procurement.Invoice) bool {
			return len(settled) == 1 && settled[0].ID == inv.ID
		})).Return(nil)
		f.events.On("Publish", ctx, mock.Anything).Return(nil)

		_, err := f.service.Pay(ctx, accounting, po.ID, PayRequest{})

		require.NoError(t, err)
		f.orders.AssertExpectations(t)
	})

	t.Run("failed settlement leaves nothing published", func(t *testing.T) {
		f := newPOServiceFixture()
		po := receivedOrder(t)
		inv := invoiceFor(t, po, "302.00")
		f.orders.On("FindByID", ctx, po.ID).Return(po, nil)
		f.invoices.On("FindByPurchaseOrder", ctx, po.ID).Return([]procurement.Invoice{inv}, nil)
		f.orders.On("SettleWithLock", ctx, po, mock.Anything).Return(errors.New("connection reset"))

		_, err := f.service.Pay(ctx, accounting, po.ID, PayRequest{})

		require.Error(t, err)
		f.events.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("variance beyond tolerance blocks payment", func(t *testing.T) {
		f := newPOServiceFixture()
		po := receivedOrder(t)
		inv := invoiceFor(t, po, "340.00")
		f.orders.On("FindByID", ctx, po.ID).Return(po, nil)
		f.invoices.On("FindByPurchaseOrder", ctx, po.ID).Return([]procurement.Invoice{inv}, nil)

		_, err := f.service.Pay(ctx, accounting, po.ID, PayRequest{})

		assertDomainCode(t, err, "VARIANCE_EXCEEDS_TOLERANCE")
		f.orders.AssertNotCalled(t, "SettleWithLock", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestPurchaseOrderService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("drafts can be deleted", func(t *testing.T) {
		f := newPOServiceFixture()
		po := testOrder(t, uuid.New(), "100")
		f.orders.On("FindByID", ctx, po.ID).Return(po, nil)
		f.orders.On("Delete", ctx, po.ID).Return(nil)

		require.NoError(t, f.service.Delete(ctx, leaderActor(po.DivisionID), po.ID))
		f.orders.AssertExpectations(t)
	})

	t.Run("approved orders cannot", func(t *testing.T) {
		f := newPOServiceFixture()
		po := testOrder(t, uuid.New(), "100")
		require.NoError(t, po.Submit(procurement.DefaultApprovalPolicy(), po.RequestedBy))
		f.orders.On("FindByID", ctx, po.ID).Return(po, nil)

		err := f.service.Delete(ctx, leaderActor(po.DivisionID), po.ID)

		assertDomainCode(t, err, "INVALID_STATE")
		f.orders.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestPurchaseOrderService_PendingApprovals(t *testing.T) {
	ctx := context.Background()
	f := newPOServiceFixture()
	divisionID := uuid.New()
	actor := leaderActor(divisionID)

	mine := testOrder(t, divisionID, "1200")
	require.NoError(t, mine.Submit(procurement.DefaultApprovalPolicy(), mine.RequestedBy))
	ownRequest := testOrder(t, divisionID, "1300")
	ownRequest.RequestedBy = actor.UserID
	require.NoError(t, ownRequest.Submit(procurement.DefaultApprovalPolicy(), actor.UserID))

	f.orders.On("PendingApproval", ctx, []uuid.UUID{divisionID}).
		Return([]procurement.PurchaseOrder{*mine, *ownRequest}, nil)

	items, err := f.service.PendingApprovals(ctx, actor)

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, mine.ID, items[0].ID)
}
