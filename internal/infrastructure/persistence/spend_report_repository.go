package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/roofpo/backend/internal/domain/procurement"
	"github.com/roofpo/backend/internal/domain/report"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormSpendReportRepository implements SpendReportRepository using GORM
type GormSpendReportRepository struct {
	db *gorm.DB
}

// NewGormSpendReportRepository creates a new GormSpendReportRepository
func NewGormSpendReportRepository(db *gorm.DB) *GormSpendReportRepository {
	return &GormSpendReportRepository{db: db}
}

// committed scopes a query over purchase_orders aliased po to committed, live orders in the period
func (r *GormSpendReportRepository) committed(ctx context.Context, filter report.SpendFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Table("purchase_orders po").
		Where("po.deleted_at IS NULL").
		Where("po.status IN ?", procurement.CommittedStatuses()).
		Where("po.approved_at BETWEEN ? AND ?", filter.StartDate, filter.EndDate)
	return scopeDivisions(query, filter)
}

func scopeDivisions(query *gorm.DB, filter report.SpendFilter) *gorm.DB {
	if len(filter.DivisionIDs) > 0 {
		query = query.Where("po.division_id IN ?", filter.DivisionIDs)
	}
	if filter.DivisionID != nil {
		query = query.Where("po.division_id = ?", *filter.DivisionID)
	}
	return query
}

// GetSpendSummary returns committed and paid spend for the period
func (r *GormSpendReportRepository) GetSpendSummary(ctx context.Context, filter report.SpendFilter) (*report.SpendSummary, error) {
	type summaryResult struct {
		OrderCount     int64
		CommittedSpend decimal.Decimal
		PaidSpend      decimal.Decimal
	}

	var result summaryResult
	err := r.committed(ctx, filter).
		Select(`
			COUNT(po.id) as order_count,
			COALESCE(SUM(po.total), 0) as committed_spend,
			COALESCE(SUM(CASE WHEN po.status = ? THEN po.total ELSE 0 END), 0) as paid_spend
		`, procurement.StatusPaid).
		Scan(&result).Error
	if err != nil {
		return nil, err
	}

	var avg decimal.Decimal
	if result.OrderCount > 0 {
		avg = result.CommittedSpend.Div(decimal.NewFromInt(result.OrderCount)).Round(2)
	}

	return &report.SpendSummary{
		PeriodStart:    filter.StartDate,
		PeriodEnd:      filter.EndDate,
		OrderCount:     result.OrderCount,
		CommittedSpend: result.CommittedSpend,
		PaidSpend:      result.PaidSpend,
		AvgOrderValue:  avg,
	}, nil
}

// GetSpendByDivision returns committed spend per division, largest first
func (r *GormSpendReportRepository) GetSpendByDivision(ctx context.Context, filter report.SpendFilter) ([]report.DivisionSpend, error) {
	var results []report.DivisionSpend
	err := r.committed(ctx, filter).
		Select(`
			po.division_id as division_id,
			d.code as division_code,
			d.name as division_name,
			COUNT(po.id) as order_count,
			COALESCE(SUM(po.total), 0) as committed_spend
		`).
		Joins("JOIN divisions d ON d.id = po.division_id").
		Group("po.division_id, d.code, d.name").
		Order("committed_spend DESC").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// GetTopVendors ranks vendors by committed spend
func (r *GormSpendReportRepository) GetTopVendors(ctx context.Context, filter report.SpendFilter) ([]report.VendorSpend, error) {
	topN := filter.TopN
	if topN <= 0 {
		topN = 10
	}

	var results []report.VendorSpend
	err := r.committed(ctx, filter).
		Select(`
			po.vendor_id as vendor_id,
			v.code as vendor_code,
			v.name as vendor_name,
			COUNT(po.id) as order_count,
			COALESCE(SUM(po.total), 0) as committed_spend
		`).
		Joins("JOIN vendors v ON v.id = po.vendor_id").
		Group("po.vendor_id, v.code, v.name").
		Order("committed_spend DESC").
		Limit(topN).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}
	for i := range results {
		results[i].Rank = i + 1
	}
	return results, nil
}

// GetMonthlySpend returns committed spend per calendar month of approval
func (r *GormSpendReportRepository) GetMonthlySpend(ctx context.Context, filter report.SpendFilter) ([]report.MonthlySpend, error) {
	var results []report.MonthlySpend
	err := r.committed(ctx, filter).
		Select(`
			DATE_TRUNC('month', po.approved_at) as month,
			COUNT(po.id) as order_count,
			COALESCE(SUM(po.total), 0) as committed_spend
		`).
		Group("DATE_TRUNC('month', po.approved_at)").
		Order("month ASC").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// GetReceiptAging buckets issued orders still waiting on deliveries by age since issue.
// Outstanding is the ordered value not yet received.
func (r *GormSpendReportRepository) GetReceiptAging(ctx context.Context, filter report.SpendFilter) ([]report.ReceiptAging, error) {
	query := r.db.WithContext(ctx).Table("purchase_orders po").
		Select(`
			po.id as id,
			po.issued_at as issued_at,
			COALESCE(SUM((i.quantity - i.received_quantity) * i.unit_price), 0) as outstanding
		`).
		Joins("JOIN purchase_order_items i ON i.purchase_order_id = po.id").
		Where("po.deleted_at IS NULL").
		Where("po.status IN ?", []procurement.Status{procurement.StatusIssued, procurement.StatusPartiallyReceived}).
		Group("po.id, po.issued_at")
	query = scopeDivisions(query, filter)

	var rows []openOrderRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return bucketAging(rows, time.Now()), nil
}

type openOrderRow struct {
	ID          uuid.UUID
	IssuedAt    time.Time
	Outstanding decimal.Decimal
}

func bucketAging(rows []openOrderRow, now time.Time) []report.ReceiptAging {
	buckets := make([]report.ReceiptAging, len(report.AgingBuckets))
	for i, name := range report.AgingBuckets {
		buckets[i] = report.ReceiptAging{Bucket: name, Outstanding: decimal.Zero}
	}
	for _, row := range rows {
		days := int(now.Sub(row.IssuedAt).Hours() / 24)
		idx := 3
		switch {
		case days <= 7:
			idx = 0
		case days <= 30:
			idx = 1
		case days <= 60:
			idx = 2
		}
		buckets[idx].OrderCount++
		buckets[idx].Outstanding = buckets[idx].Outstanding.Add(row.Outstanding)
	}
	return buckets
}
