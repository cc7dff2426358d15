package procurement

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/roofpo/backend/internal/domain/identity"
	"github.com/roofpo/backend/internal/domain/organization"
	"github.com/roofpo/backend/internal/domain/partner"
	"github.com/roofpo/backend/internal/domain/procurement"
	"github.com/roofpo/backend/internal/domain/procurement/ponumber"
	"github.com/roofpo/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// maxSequenceAttempts bounds retries when two drafts race for the same work order sequence
const maxSequenceAttempts = 3

// Repositories groups the stores the purchase order service reads and writes
type Repositories struct {
	Orders     procurement.PurchaseOrderRepository
	Invoices   procurement.InvoiceRepository
	History    procurement.HistoryRepository
	Divisions  organization.DivisionRepository
	Projects   organization.ProjectRepository
	WorkOrders organization.WorkOrderRepository
	Vendors    partner.VendorRepository
}

// PurchaseOrderService handles purchase order business operations
type PurchaseOrderService struct {
	repos     Repositories
	policy    procurement.ApprovalPolicy
	tolerance procurement.Tolerance
	events    shared.EventPublisher
	logger    *zap.Logger
}

// NewPurchaseOrderService creates a new PurchaseOrderService
func NewPurchaseOrderService(
	repos Repositories,
	policy procurement.ApprovalPolicy,
	tolerance procurement.Tolerance,
	logger *zap.Logger,
) *PurchaseOrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PurchaseOrderService{
		repos:     repos,
		policy:    policy,
		tolerance: tolerance,
		logger:    logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *PurchaseOrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.events = publisher
}

// Create opens a draft on a work order and assigns its PO number
func (s *PurchaseOrderService) Create(ctx context.Context, actor identity.Actor, req CreatePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	if actor.LeaderID == "" {
		return nil, shared.NewDomainError("LEADER_ID_REQUIRED", "A leader ID must be assigned before raising purchase orders")
	}

	wo, err := s.repos.WorkOrders.FindByID(ctx, req.WorkOrderID)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccessDivision(wo.DivisionID) {
		return nil, shared.ErrNotFound
	}
	if !wo.IsOpen() {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot raise purchase orders on a closed work order")
	}

	project, err := s.repos.Projects.FindByID(ctx, wo.ProjectID)
	if err != nil {
		return nil, err
	}
	if !project.AcceptsPurchases() {
		return nil, shared.NewDomainError("INVALID_STATE", "Purchase orders can only be raised on active projects")
	}

	division, err := s.repos.Divisions.FindByID(ctx, wo.DivisionID)
	if err != nil {
		return nil, err
	}
	if !division.Active {
		return nil, shared.NewDomainError("INVALID_STATE", "Division is inactive")
	}

	if err := s.requireActiveVendor(ctx, req.VendorID); err != nil {
		return nil, err
	}

	sequence, err := s.reserveSequence(ctx, wo)
	if err != nil {
		return nil, err
	}

	po, err := procurement.NewPurchaseOrder(procurement.NewPurchaseOrderParams{
		Number: ponumber.Number{
			LeaderID:         actor.LeaderID,
			DivisionCode:     division.Code,
			WorkOrderNumber:  wo.Number,
			PurchaseSequence: sequence,
		},
		DivisionID:      wo.DivisionID,
		ProjectID:       wo.ProjectID,
		WorkOrderID:     wo.ID,
		VendorID:        req.VendorID,
		RequestedBy:     actor.UserID,
		Description:     req.Description,
		DeliveryAddress: req.DeliveryAddress,
		NeededBy:        req.NeededBy,
	})
	if err != nil {
		return nil, err
	}

	for _, line := range req.Lines {
		if _, err := po.AddLineItem(line.toInput()); err != nil {
			return nil, err
		}
	}
	if req.TaxAmount != nil {
		if err := po.SetTax(*req.TaxAmount); err != nil {
			return nil, err
		}
	}
	// the draft is new, line edits above must not count as stored revisions
	po.Version = 1

	if err := s.repos.Orders.Save(ctx, po); err != nil {
		return nil, err
	}
	s.publish(ctx, po)

	s.logger.Info("Purchase order created",
		zap.String("po_number", po.PONumber()),
		zap.String("order_id", po.ID.String()),
		zap.String("actor_id", actor.UserID.String()))

	response := ToPurchaseOrderResponse(po)
	return &response, nil
}

// reserveSequence persists the next purchase sequence of the work order,
// reloading and retrying when another writer got there first
func (s *PurchaseOrderService) reserveSequence(ctx context.Context, wo *organization.WorkOrder) (int, error) {
	for attempt := 1; ; attempt++ {
		sequence, err := wo.NextPurchaseSequence()
		if err != nil {
			return 0, err
		}
		err = s.repos.WorkOrders.SaveWithLock(ctx, wo)
		if err == nil {
			return sequence, nil
		}
		if !errors.Is(err, shared.ErrConcurrencyConflict) || attempt >= maxSequenceAttempts {
			return 0, err
		}
		s.logger.Debug("Purchase sequence conflict, retrying",
			zap.String("work_order_id", wo.ID.String()),
			zap.Int("attempt", attempt))
		if wo, err = s.repos.WorkOrders.FindByID(ctx, wo.ID); err != nil {
			return 0, err
		}
	}
}

func (s *PurchaseOrderService) requireActiveVendor(ctx context.Context, vendorID uuid.UUID) error {
	vendor, err := s.repos.Vendors.FindByID(ctx, vendorID)
	if err != nil {
		return err
	}
	if !vendor.Active {
		return shared.NewDomainError("VENDOR_INACTIVE", "Purchase orders cannot be raised against an inactive vendor")
	}
	return nil
}

// Get retrieves a purchase order by ID
func (s *PurchaseOrderService) Get(ctx context.Context, actor identity.Actor, orderID uuid.UUID) (*PurchaseOrderResponse, error) {
	po, err := s.load(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}
	response := ToPurchaseOrderResponse(po)
	return &response, nil
}

// GetByNumber retrieves a purchase order by its current or legacy number
func (s *PurchaseOrderService) GetByNumber(ctx context.Context, actor identity.Actor, number string) (*PurchaseOrderResponse, error) {
	decoded, ok := ponumber.Inspect(strings.TrimSpace(number))
	if !ok {
		return nil, shared.NewDomainError("INVALID_PO_NUMBER", fmt.Sprintf("%q is not a purchase order number", number))
	}
	po, err := s.repos.Orders.FindByComponents(ctx, decoded.Number)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccessDivision(po.DivisionID) {
		return nil, shared.ErrNotFound
	}
	response := ToPurchaseOrderResponse(po)
	return &response, nil
}

// List retrieves one page of orders visible to the actor
func (s *PurchaseOrderService) List(ctx context.Context, actor identity.Actor, filter PurchaseOrderListFilter) ([]PurchaseOrderListItemResponse, int64, error) {
	orders, total, err := s.repos.Orders.FindAll(ctx, s.domainFilter(actor, filter))
	if err != nil {
		return nil, 0, err
	}
	return ToPurchaseOrderListItemResponses(orders), total, nil
}

// Search returns every order matching the filter up to limit, aggregates included
func (s *PurchaseOrderService) Search(ctx context.Context, actor identity.Actor, filter PurchaseOrderListFilter, limit int) ([]procurement.PurchaseOrder, error) {
	filter.Page = 1
	filter.PageSize = limit
	orders, _, err := s.repos.Orders.FindAll(ctx, s.domainFilter(actor, filter))
	return orders, err
}

func (s *PurchaseOrderService) domainFilter(actor identity.Actor, filter PurchaseOrderListFilter) procurement.PurchaseOrderFilter {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	return procurement.PurchaseOrderFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		},
		Statuses:    filter.Statuses,
		DivisionIDs: actor.DivisionScope(),
		DivisionID:  filter.DivisionID,
		ProjectID:   filter.ProjectID,
		WorkOrderID: filter.WorkOrderID,
		VendorID:    filter.VendorID,
		RequestedBy: filter.RequestedBy,
		CreatedFrom: filter.CreatedFrom,
		CreatedTo:   filter.CreatedTo,
	}
}

// Update changes the header fields of a draft
func (s *PurchaseOrderService) Update(ctx context.Context, actor identity.Actor, orderID uuid.UUID, req UpdatePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	return s.mutate(ctx, actor, orderID, func(po *procurement.PurchaseOrder) error {
		if req.Version != 0 && req.Version != po.Version {
			return shared.ErrConcurrencyConflict
		}

		details := procurement.Details{
			VendorID:        po.VendorID,
			Description:     po.Description,
			DeliveryAddress: po.DeliveryAddress,
			NeededBy:        po.NeededBy,
		}
		if req.VendorID != nil && *req.VendorID != po.VendorID {
			if err := s.requireActiveVendor(ctx, *req.VendorID); err != nil {
				return err
			}
			details.VendorID = *req.VendorID
		}
		if req.Description != nil {
			details.Description = *req.Description
		}
		if req.DeliveryAddress != nil {
			details.DeliveryAddress = *req.DeliveryAddress
		}
		if req.NeededBy != nil {
			details.NeededBy = req.NeededBy
		}

		if err := po.UpdateDetails(details); err != nil {
			return err
		}
		if req.TaxAmount != nil {
			return po.SetTax(*req.TaxAmount)
		}
		return nil
	})
}

// AddLine appends a line to a draft
func (s *PurchaseOrderService) AddLine(ctx context.Context, actor identity.Actor, orderID uuid.UUID, req LineItemRequest) (*PurchaseOrderResponse, error) {
	return s.mutate(ctx, actor, orderID, func(po *procurement.PurchaseOrder) error {
		_, err := po.AddLineItem(req.toInput())
		return err
	})
}

// UpdateLine replaces a line of a draft
func (s *PurchaseOrderService) UpdateLine(ctx context.Context, actor identity.Actor, orderID, lineID uuid.UUID, req LineItemRequest) (*PurchaseOrderResponse, error) {
	return s.mutate(ctx, actor, orderID, func(po *procurement.PurchaseOrder) error {
		return po.UpdateLineItem(lineID, req.toInput())
	})
}

// RemoveLine deletes a line from a draft
func (s *PurchaseOrderService) RemoveLine(ctx context.Context, actor identity.Actor, orderID, lineID uuid.UUID) (*PurchaseOrderResponse, error) {
	return s.mutate(ctx, actor, orderID, func(po *procurement.PurchaseOrder) error {
		return po.RemoveLineItem(lineID)
	})
}

// Submit sends a draft into the approval chain
func (s *PurchaseOrderService) Submit(ctx context.Context, actor identity.Actor, orderID uuid.UUID) (*PurchaseOrderResponse, error) {
	return s.mutate(ctx, actor, orderID, func(po *procurement.PurchaseOrder) error {
		return po.Submit(s.policy, actor.UserID)
	})
}

// Approve signs off the pending stage
func (s *PurchaseOrderService) Approve(ctx context.Context, actor identity.Actor, orderID uuid.UUID, comment string) (*PurchaseOrderResponse, error) {
	return s.mutate(ctx, actor, orderID, func(po *procurement.PurchaseOrder) error {
		return po.Approve(approverFor(actor), comment)
	})
}

// Reject turns a submitted order back to its requester
func (s *PurchaseOrderService) Reject(ctx context.Context, actor identity.Actor, orderID uuid.UUID, reason string) (*PurchaseOrderResponse, error) {
	return s.mutate(ctx, actor, orderID, func(po *procurement.PurchaseOrder) error {
		return po.Reject(approverFor(actor), reason)
	})
}

// Reopen returns a rejected order to draft
func (s *PurchaseOrderService) Reopen(ctx context.Context, actor identity.Actor, orderID uuid.UUID) (*PurchaseOrderResponse, error) {
	return s.mutate(ctx, actor, orderID, func(po *procurement.PurchaseOrder) error {
		return po.Reopen(actor.UserID)
	})
}

// Issue sends an approved order to the vendor
func (s *PurchaseOrderService) Issue(ctx context.Context, actor identity.Actor, orderID uuid.UUID, confirmation string) (*PurchaseOrderResponse, error) {
	return s.mutate(ctx, actor, orderID, func(po *procurement.PurchaseOrder) error {
		return po.Issue(confirmation, actor.UserID)
	})
}

// Receive records a delivery against an issued order
func (s *PurchaseOrderService) Receive(ctx context.Context, actor identity.Actor, orderID uuid.UUID, req ReceiveRequest) (*ReceiveResultResponse, error) {
	var receipt *procurement.Receipt
	resp, err := s.mutate(ctx, actor, orderID, func(po *procurement.PurchaseOrder) error {
		var err error
		receipt, err = po.Receive(req.Lines, actor.UserID, req.PackingSlip, req.Note)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &ReceiveResultResponse{
		Order:           *resp,
		Receipt:         toReceiptResponse(receipt),
		IsFullyReceived: resp.Status == procurement.StatusReceived,
	}, nil
}

// Pay closes a received order after reconciling its invoices
func (s *PurchaseOrderService) Pay(ctx context.Context, actor identity.Actor, orderID uuid.UUID, req PayRequest) (*PurchaseOrderResponse, error) {
	if req.OverrideVariance && !actor.HasPermission(identity.PermPOOverrideVariance) {
		return nil, shared.NewDomainError("FORBIDDEN", "Overriding an invoice variance requires the variance override permission")
	}

	var settled []*procurement.Invoice
	settle := func(ctx context.Context, po *procurement.PurchaseOrder) error {
		return s.repos.Orders.SettleWithLock(ctx, po, settled)
	}
	return s.mutateWith(ctx, actor, orderID, settle, func(po *procurement.PurchaseOrder) error {
		invoices, err := s.repos.Invoices.FindByPurchaseOrder(ctx, po.ID)
		if err != nil {
			return err
		}
		rec := procurement.Reconcile(po, invoices, s.tolerance)
		if err := po.MarkPaid(rec, req.OverrideVariance, req.Reference, actor.UserID); err != nil {
			return err
		}
		for i := range invoices {
			inv := &invoices[i]
			if inv.Status != procurement.InvoiceStatusRecorded {
				continue
			}
			if err := inv.MarkPaid(); err != nil {
				return err
			}
			settled = append(settled, inv)
		}
		return nil
	})
}

// Cancel abandons an order
func (s *PurchaseOrderService) Cancel(ctx context.Context, actor identity.Actor, orderID uuid.UUID, reason string) (*PurchaseOrderResponse, error) {
	return s.mutate(ctx, actor, orderID, func(po *procurement.PurchaseOrder) error {
		return po.Cancel(reason, actor.UserID)
	})
}

// Delete soft-deletes a draft, rejected or cancelled order
func (s *PurchaseOrderService) Delete(ctx context.Context, actor identity.Actor, orderID uuid.UUID) error {
	po, err := s.load(ctx, actor, orderID)
	if err != nil {
		return err
	}
	if !po.CanDelete() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot delete a %s purchase order", po.Status))
	}
	if err := s.repos.Orders.Delete(ctx, po.ID); err != nil {
		return err
	}
	s.logger.Info("Purchase order deleted",
		zap.String("po_number", po.PONumber()),
		zap.String("actor_id", actor.UserID.String()))
	return nil
}

// History returns the audit trail of an order
func (s *PurchaseOrderService) History(ctx context.Context, actor identity.Actor, orderID uuid.UUID) ([]procurement.HistoryEntry, error) {
	po, err := s.load(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}
	return s.repos.History.FindByPurchaseOrder(ctx, po.ID)
}

// PendingApprovals returns the submitted orders the actor can sign off now
func (s *PurchaseOrderService) PendingApprovals(ctx context.Context, actor identity.Actor) ([]PurchaseOrderListItemResponse, error) {
	orders, err := s.repos.Orders.PendingApproval(ctx, actor.DivisionScope())
	if err != nil {
		return nil, err
	}
	approver := approverFor(actor)
	out := make([]PurchaseOrderListItemResponse, 0, len(orders))
	for i := range orders {
		if orders[i].CanBeApprovedBy(approver) {
			out = append(out, ToPurchaseOrderListItemResponse(&orders[i]))
		}
	}
	return out, nil
}

// load fetches an order, hiding orders outside the actor's divisions
func (s *PurchaseOrderService) load(ctx context.Context, actor identity.Actor, orderID uuid.UUID) (*procurement.PurchaseOrder, error) {
	po, err := s.repos.Orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccessDivision(po.DivisionID) {
		return nil, shared.ErrNotFound
	}
	return po, nil
}

// mutate loads an order, applies fn and saves it with optimistic locking
func (s *PurchaseOrderService) mutate(ctx context.Context, actor identity.Actor, orderID uuid.UUID, fn func(*procurement.PurchaseOrder) error) (*PurchaseOrderResponse, error) {
	return s.mutateWith(ctx, actor, orderID, s.repos.Orders.SaveWithLock, fn)
}

func (s *PurchaseOrderService) mutateWith(ctx context.Context, actor identity.Actor, orderID uuid.UUID, save func(context.Context, *procurement.PurchaseOrder) error, fn func(*procurement.PurchaseOrder) error) (*PurchaseOrderResponse, error) {
	po, err := s.load(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}
	version := po.Version
	if err := fn(po); err != nil {
		return nil, err
	}
	// one call is one stored revision however many domain steps it took
	po.Version = version + 1
	if err := save(ctx, po); err != nil {
		return nil, err
	}
	s.publish(ctx, po)

	response := ToPurchaseOrderResponse(po)
	return &response, nil
}

// publish hands the aggregate's pending events to the bus once its state is stored
func (s *PurchaseOrderService) publish(ctx context.Context, po *procurement.PurchaseOrder) {
	events := po.PullDomainEvents()
	if s.events == nil || len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish purchase order events",
			zap.String("order_id", po.ID.String()),
			zap.Error(err))
	}
}

func approverFor(actor identity.Actor) procurement.Approver {
	return procurement.Approver{
		UserID:      actor.UserID,
		Role:        actor.Role,
		DivisionIDs: actor.DivisionIDs,
	}
}
