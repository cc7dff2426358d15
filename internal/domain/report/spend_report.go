package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SpendFilter defines filtering options for purchasing spend reports
type SpendFilter struct {
	// DivisionIDs scopes the report to the caller's divisions, empty means all
	DivisionIDs []uuid.UUID `json:"-"`
	DivisionID  *uuid.UUID  `json:"division_id,omitempty"`
	StartDate   time.Time   `json:"start_date"`
	EndDate     time.Time   `json:"end_date"`
	TopN        int         `json:"top_n,omitempty"`
}

// SpendSummary is the committed and paid spend over a period
type SpendSummary struct {
	PeriodStart    time.Time       `json:"period_start"`
	PeriodEnd      time.Time       `json:"period_end"`
	OrderCount     int64           `json:"order_count"`
	CommittedSpend decimal.Decimal `json:"committed_spend"`
	PaidSpend      decimal.Decimal `json:"paid_spend"`
	AvgOrderValue  decimal.Decimal `json:"avg_order_value"`
}

// DivisionSpend is committed spend grouped by division
type DivisionSpend struct {
	DivisionID     uuid.UUID       `json:"division_id"`
	DivisionCode   string          `json:"division_code"`
	DivisionName   string          `json:"division_name"`
	OrderCount     int64           `json:"order_count"`
	CommittedSpend decimal.Decimal `json:"committed_spend"`
}

// VendorSpend ranks vendors by committed spend
type VendorSpend struct {
	Rank           int             `json:"rank"`
	VendorID       uuid.UUID       `json:"vendor_id"`
	VendorCode     string          `json:"vendor_code"`
	VendorName     string          `json:"vendor_name"`
	OrderCount     int64           `json:"order_count"`
	CommittedSpend decimal.Decimal `json:"committed_spend"`
}

// MonthlySpend is one point of the spend trend
type MonthlySpend struct {
	Month          time.Time       `json:"month"`
	OrderCount     int64           `json:"order_count"`
	CommittedSpend decimal.Decimal `json:"committed_spend"`
}

// ReceiptAging buckets issued orders still waiting on deliveries by days since issue
type ReceiptAging struct {
	Bucket      string          `json:"bucket"` // 0-7, 8-30, 31-60, 60+
	OrderCount  int64           `json:"order_count"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

// AgingBuckets lists receipt aging buckets in display order
var AgingBuckets = []string{"0-7", "8-30", "31-60", "60+"}

// SpendReportRepository defines the queries behind the dashboard and spend reports
type SpendReportRepository interface {
	GetSpendSummary(ctx context.Context, filter SpendFilter) (*SpendSummary, error)
	GetSpendByDivision(ctx context.Context, filter SpendFilter) ([]DivisionSpend, error)
	GetTopVendors(ctx context.Context, filter SpendFilter) ([]VendorSpend, error)
	GetMonthlySpend(ctx context.Context, filter SpendFilter) ([]MonthlySpend, error)
	// GetReceiptAging looks at open orders as of now regardless of the period
	GetReceiptAging(ctx context.Context, filter SpendFilter) ([]ReceiptAging, error)
}
