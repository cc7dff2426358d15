package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
	appprocurement "github.com/roofpo/backend/internal/application/procurement"
	"github.com/roofpo/backend/internal/domain/identity"
	"github.com/roofpo/backend/internal/domain/partner"
	"github.com/roofpo/backend/internal/domain/procurement"
	"github.com/roofpo/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// MaxExportRows caps a single purchase order export
const MaxExportRows = 10000

var purchaseOrderColumns = []string{
	"po_number", "legacy_number", "status", "division", "work_order", "leader_id",
	"vendor_code", "vendor_name", "description", "subtotal", "tax", "total",
	"received_value", "created_at", "submitted_at", "approved_at", "issued_at",
	"received_at", "paid_at", "cancelled_at", "payment_reference",
}

// OrderSearcher finds purchase orders visible to an actor
type OrderSearcher interface {
	Search(ctx context.Context, actor identity.Actor, filter appprocurement.PurchaseOrderListFilter, limit int) ([]procurement.PurchaseOrder, error)
}

// ExportService writes purchase orders and spend reports as CSV
type ExportService struct {
	orders  OrderSearcher
	vendors partner.VendorRepository
	reports *ReportService
	logger  *zap.Logger
}

// NewExportService creates a new ExportService
func NewExportService(orders OrderSearcher, vendors partner.VendorRepository, reports *ReportService, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{orders: orders, vendors: vendors, reports: reports, logger: logger}
}

// ExportPurchaseOrders writes every order matching the filter. Nothing is written
// when the result exceeds MaxExportRows.
func (s *ExportService) ExportPurchaseOrders(ctx context.Context, actor identity.Actor, filter appprocurement.PurchaseOrderListFilter, w io.Writer) (int, error) {
	orders, err := s.orders.Search(ctx, actor, filter, MaxExportRows+1)
	if err != nil {
		return 0, err
	}
	if len(orders) > MaxExportRows {
		return 0, shared.NewDomainError("EXPORT_TOO_LARGE",
			fmt.Sprintf("Export is limited to %d purchase orders; narrow the filter", MaxExportRows))
	}

	vendorIDs := make([]uuid.UUID, 0, len(orders))
	seen := make(map[uuid.UUID]bool, len(orders))
	for i := range orders {
		if id := orders[i].VendorID; !seen[id] {
			seen[id] = true
			vendorIDs = append(vendorIDs, id)
		}
	}
	vendors, err := s.vendors.FindByIDs(ctx, vendorIDs)
	if err != nil {
		return 0, err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(purchaseOrderColumns); err != nil {
		return 0, err
	}
	for i := range orders {
		po := &orders[i]
		vendor, ok := vendors[po.VendorID]
		if !ok {
			vendor = &partner.Vendor{}
		}
		legacy, _ := po.LegacyNumber()
		row := []string{
			po.PONumber(),
			legacy,
			po.Status.String(),
			po.Number.DivisionCode,
			strconv.Itoa(po.Number.WorkOrderNumber),
			po.Number.LeaderID,
			csvSafe(vendor.Code),
			csvSafe(vendor.Name),
			csvSafe(po.Description),
			po.Subtotal.StringFixed(2),
			po.TaxAmount.StringFixed(2),
			po.Total.StringFixed(2),
			po.ReceivedSubtotal().StringFixed(2),
			formatTime(&po.CreatedAt),
			formatTime(po.SubmittedAt),
			formatTime(po.ApprovedAt),
			formatTime(po.IssuedAt),
			formatTime(po.ReceivedAt),
			formatTime(po.PaidAt),
			formatTime(po.CancelledAt),
			csvSafe(po.PaymentReference),
		}
		if err := cw.Write(row); err != nil {
			return 0, err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, err
	}

	s.logger.Info("Purchase orders exported",
		zap.String("user_id", actor.UserID.String()),
		zap.Int("rows", len(orders)))
	return len(orders), nil
}

// ExportSpend writes the spend report as one CSV with a section column
func (s *ExportService) ExportSpend(ctx context.Context, actor identity.Actor, filter SpendReportFilter, w io.Writer) error {
	rep, err := s.reports.Spend(ctx, actor, filter)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	rows := [][]string{
		{"section", "key", "name", "order_count", "committed_spend", "paid_spend"},
		{"summary", rep.Summary.PeriodStart.Format(time.DateOnly) + "/" + rep.Summary.PeriodEnd.Format(time.DateOnly), "",
			strconv.FormatInt(rep.Summary.OrderCount, 10),
			rep.Summary.CommittedSpend.StringFixed(2), rep.Summary.PaidSpend.StringFixed(2)},
	}
	for _, d := range rep.ByDivision {
		rows = append(rows, []string{"division", csvSafe(d.DivisionCode), csvSafe(d.DivisionName),
			strconv.FormatInt(d.OrderCount, 10), d.CommittedSpend.StringFixed(2), ""})
	}
	for _, v := range rep.TopVendors {
		rows = append(rows, []string{"vendor", csvSafe(v.VendorCode), csvSafe(v.VendorName),
			strconv.FormatInt(v.OrderCount, 10), v.CommittedSpend.StringFixed(2), ""})
	}
	for _, m := range rep.Monthly {
		rows = append(rows, []string{"month", m.Month.Format("2006-01"), "",
			strconv.FormatInt(m.OrderCount, 10), m.CommittedSpend.StringFixed(2), ""})
	}
	return cw.WriteAll(rows)
}

// csvSafe defuses values a spreadsheet would evaluate as a formula
func csvSafe(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
