package procurement

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/roofpo/backend/internal/domain/identity"
	"github.com/roofpo/backend/internal/domain/partner"
	"github.com/roofpo/backend/internal/domain/procurement"
	"github.com/roofpo/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// MaxAttachmentSize caps uploaded invoice documents
const MaxAttachmentSize int64 = 20 << 20

var allowedAttachmentTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
	"image/tiff":      true,
}

// InvoiceService records vendor invoices and reconciles them against receipts
type InvoiceService struct {
	orders    procurement.PurchaseOrderRepository
	invoices  procurement.InvoiceRepository
	vendors   partner.VendorRepository
	storage   AttachmentStorage
	tolerance procurement.Tolerance
	urlTTL    time.Duration
	events    shared.EventPublisher
	logger    *zap.Logger
}

// NewInvoiceService creates a new InvoiceService. storage may be nil when
// object storage is not configured, in which case uploads are rejected.
func NewInvoiceService(
	orders procurement.PurchaseOrderRepository,
	invoices procurement.InvoiceRepository,
	vendors partner.VendorRepository,
	storage AttachmentStorage,
	tolerance procurement.Tolerance,
	urlTTL time.Duration,
	logger *zap.Logger,
) *InvoiceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if urlTTL <= 0 {
		urlTTL = 15 * time.Minute
	}
	return &InvoiceService{
		orders:    orders,
		invoices:  invoices,
		vendors:   vendors,
		storage:   storage,
		tolerance: tolerance,
		urlTTL:    urlTTL,
		logger:    logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *InvoiceService) SetEventPublisher(publisher shared.EventPublisher) {
	s.events = publisher
}

// Record enters a vendor invoice against an issued or received order
func (s *InvoiceService) Record(ctx context.Context, actor identity.Actor, orderID uuid.UUID, req RecordInvoiceRequest) (*InvoiceResponse, error) {
	po, err := s.loadOrder(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}

	if req.Attachment != nil {
		if err := s.validateAttachment(req.Attachment); err != nil {
			return nil, err
		}
	}

	exists, err := s.invoices.ExistsByVendorNumber(ctx, po.VendorID, strings.TrimSpace(req.Number))
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS",
			fmt.Sprintf("Invoice %s has already been recorded for this vendor", req.Number))
	}

	termsDays := 0
	if req.DueDate == nil {
		vendor, err := s.vendors.FindByID(ctx, po.VendorID)
		if err != nil {
			return nil, err
		}
		termsDays = vendor.PaymentTerms.Days()
	}

	inv, err := procurement.NewInvoice(po, procurement.NewInvoiceParams{
		Number:      req.Number,
		Amount:      req.Amount,
		InvoiceDate: req.InvoiceDate,
		DueDate:     req.DueDate,
		TermsDays:   termsDays,
		RecordedBy:  actor.UserID,
		Notes:       req.Notes,
	})
	if err != nil {
		return nil, err
	}

	var uploadedKey string
	if req.Attachment != nil {
		key := attachmentKey(po.ID, inv.ID, req.Attachment.FileName)
		if err := s.storage.Upload(ctx, key, req.Attachment.Body, req.Attachment.Size, req.Attachment.ContentType); err != nil {
			s.logger.Error("Failed to upload invoice document",
				zap.String("order_id", po.ID.String()),
				zap.String("storage_key", key),
				zap.Error(err))
			return nil, shared.NewDomainError("STORAGE_ERROR", "Failed to store invoice document")
		}
		inv.AttachDocument(key)
		uploadedKey = key
	}

	if err := s.invoices.Save(ctx, inv); err != nil {
		if uploadedKey != "" {
			if delErr := s.storage.DeleteObject(ctx, uploadedKey); delErr != nil {
				s.logger.Warn("Failed to remove orphaned invoice document",
					zap.String("storage_key", uploadedKey),
					zap.Error(delErr))
			}
		}
		return nil, err
	}
	s.publish(ctx, inv)

	s.logger.Info("Invoice recorded",
		zap.String("po_number", po.PONumber()),
		zap.String("invoice_number", inv.Number),
		zap.String("amount", inv.Amount.StringFixed(2)))

	response := ToInvoiceResponse(inv)
	return &response, nil
}

// List returns the invoices of an order
func (s *InvoiceService) List(ctx context.Context, actor identity.Actor, orderID uuid.UUID) ([]InvoiceResponse, error) {
	po, err := s.loadOrder(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}
	invoices, err := s.invoices.FindByPurchaseOrder(ctx, po.ID)
	if err != nil {
		return nil, err
	}
	out := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		out[i] = ToInvoiceResponse(&invoices[i])
	}
	return out, nil
}

// Void cancels a recorded invoice so it no longer counts in reconciliation
func (s *InvoiceService) Void(ctx context.Context, actor identity.Actor, invoiceID uuid.UUID, reason string) (*InvoiceResponse, error) {
	inv, err := s.loadInvoice(ctx, actor, invoiceID)
	if err != nil {
		return nil, err
	}
	if err := inv.Void(reason, actor.UserID); err != nil {
		return nil, err
	}
	if err := s.invoices.Save(ctx, inv); err != nil {
		return nil, err
	}
	s.publish(ctx, inv)

	response := ToInvoiceResponse(inv)
	return &response, nil
}

// Reconciliation compares the order's invoices with what was received
func (s *InvoiceService) Reconciliation(ctx context.Context, actor identity.Actor, orderID uuid.UUID) (*procurement.Reconciliation, error) {
	po, err := s.loadOrder(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}
	invoices, err := s.invoices.FindByPurchaseOrder(ctx, po.ID)
	if err != nil {
		return nil, err
	}
	rec := procurement.Reconcile(po, invoices, s.tolerance)
	return &rec, nil
}

// AttachmentURL issues a short-lived download link for the invoice document
func (s *InvoiceService) AttachmentURL(ctx context.Context, actor identity.Actor, invoiceID uuid.UUID) (*AttachmentURLResponse, error) {
	inv, err := s.loadInvoice(ctx, actor, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv.AttachmentKey == "" {
		return nil, shared.NewDomainError("NOT_FOUND", "Invoice has no attached document")
	}
	if s.storage == nil {
		return nil, shared.NewDomainError("STORAGE_UNAVAILABLE", "Document storage is not configured")
	}
	url, expiresAt, err := s.storage.GenerateDownloadURL(ctx, inv.AttachmentKey, s.urlTTL)
	if err != nil {
		return nil, err
	}
	return &AttachmentURLResponse{URL: url, ExpiresAt: expiresAt}, nil
}

func (s *InvoiceService) validateAttachment(a *AttachmentUpload) error {
	if s.storage == nil {
		return shared.NewDomainError("STORAGE_UNAVAILABLE", "Document storage is not configured")
	}
	if a.Size <= 0 || a.Size > MaxAttachmentSize {
		return shared.NewDomainError("INVALID_ATTACHMENT",
			fmt.Sprintf("Invoice document must be between 1 byte and %d MB", MaxAttachmentSize>>20))
	}
	if !allowedAttachmentTypes[a.ContentType] {
		return shared.NewDomainError("INVALID_ATTACHMENT", "Invoice document must be a PDF or an image")
	}
	return nil
}

func (s *InvoiceService) loadOrder(ctx context.Context, actor identity.Actor, orderID uuid.UUID) (*procurement.PurchaseOrder, error) {
	po, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccessDivision(po.DivisionID) {
		return nil, shared.ErrNotFound
	}
	return po, nil
}

// loadInvoice checks visibility through the owning order
func (s *InvoiceService) loadInvoice(ctx context.Context, actor identity.Actor, invoiceID uuid.UUID) (*procurement.Invoice, error) {
	inv, err := s.invoices.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if _, err := s.loadOrder(ctx, actor, inv.PurchaseOrderID); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *InvoiceService) publish(ctx context.Context, inv *procurement.Invoice) {
	events := inv.PullDomainEvents()
	if s.events == nil || len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish invoice events",
			zap.String("invoice_id", inv.ID.String()),
			zap.Error(err))
	}
}

// attachmentKey builds invoices/<order>/<invoice>/<file>, keeping only the base name
func attachmentKey(orderID, invoiceID uuid.UUID, fileName string) string {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(fileName), "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "document"
	}
	return fmt.Sprintf("invoices/%s/%s/%s", orderID, invoiceID, name)
}
