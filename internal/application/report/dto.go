package report

import (
	"time"

	"github.com/google/uuid"
	"github.com/roofpo/backend/internal/domain/report"
	"github.com/shopspring/decimal"
)

// SpendReportFilter defines the request filter for spend reports
type SpendReportFilter struct {
	StartDate  time.Time
	EndDate    time.Time
	DivisionID *uuid.UUID
	TopN       int
}

// SpendReportResponse is the full spend report for a period
type SpendReportResponse struct {
	Summary    report.SpendSummary    `json:"summary"`
	ByDivision []report.DivisionSpend `json:"by_division"`
	TopVendors []report.VendorSpend   `json:"top_vendors"`
	Monthly    []report.MonthlySpend  `json:"monthly"`
}

// StatusCount is the number of live orders in one status
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// DashboardSummary is the landing page view for a user
type DashboardSummary struct {
	GeneratedAt      time.Time              `json:"generated_at"`
	PeriodStart      time.Time              `json:"period_start"`
	PeriodEnd        time.Time              `json:"period_end"`
	StatusCounts     []StatusCount          `json:"status_counts"`
	OpenOrders       int64                  `json:"open_orders"`
	CommittedSpend   decimal.Decimal        `json:"committed_spend"`
	PaidSpend        decimal.Decimal        `json:"paid_spend"`
	SpendByDivision  []report.DivisionSpend `json:"spend_by_division"`
	TopVendors       []report.VendorSpend   `json:"top_vendors"`
	ReceiptAging     []report.ReceiptAging  `json:"receipt_aging"`
	MonthlyTrend     []report.MonthlySpend  `json:"monthly_trend"`
	PendingApprovals int                    `json:"pending_my_approval"`
}
