package handler

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	appprocurement "github.com/roofpo/backend/internal/application/procurement"
	appreport "github.com/roofpo/backend/internal/application/report"
	"github.com/roofpo/backend/internal/domain/identity"
	"github.com/roofpo/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

type reportService interface {
	Spend(ctx context.Context, actor identity.Actor, filter appreport.SpendReportFilter) (*appreport.SpendReportResponse, error)
}

type dashboardService interface {
	Summary(ctx context.Context, actor identity.Actor) (*appreport.DashboardSummary, error)
}

type exportService interface {
	ExportPurchaseOrders(ctx context.Context, actor identity.Actor, filter appprocurement.PurchaseOrderListFilter, w io.Writer) (int, error)
	ExportSpend(ctx context.Context, actor identity.Actor, filter appreport.SpendReportFilter, w io.Writer) error
}

// ReportHandler serves the dashboard, spend reports and CSV exports
type ReportHandler struct {
	BaseHandler
	reportService    reportService
	dashboardService dashboardService
	exportService    exportService
	now              func() time.Time
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reports reportService, dashboard dashboardService, exports exportService) *ReportHandler {
	return &ReportHandler{
		reportService:    reports,
		dashboardService: dashboard,
		exportService:    exports,
		now:              time.Now,
	}
}

// SpendReportQuery defines the filter for spend reports. Missing dates
// default to the trailing twelve months.
type SpendReportQuery struct {
	StartDate  string `form:"start_date" example:"2026-01-01"`
	EndDate    string `form:"end_date" example:"2026-06-30"`
	DivisionID string `form:"division_id" binding:"omitempty,uuid"`
	TopN       int    `form:"top_n" binding:"omitempty,min=1,max=100" example:"10"`
}

func (q SpendReportQuery) toFilter() (appreport.SpendReportFilter, error) {
	var filter appreport.SpendReportFilter
	start, err := parseOptionalTime(q.StartDate, "start_date")
	if err != nil {
		return filter, err
	}
	end, err := parseOptionalTime(q.EndDate, "end_date")
	if err != nil {
		return filter, err
	}
	divisionID, err := parseOptionalUUID(q.DivisionID, "division_id")
	if err != nil {
		return filter, err
	}
	if start != nil {
		filter.StartDate = *start
	}
	if end != nil {
		filter.EndDate = *end
	}
	filter.DivisionID = divisionID
	filter.TopN = q.TopN
	return filter, nil
}

// Dashboard godoc
// @ID           getDashboard
// @Summary      Dashboard summary
// @Description  Status counts, spend, receipt aging and the orders waiting on the caller, scoped to the caller's divisions
// @Tags         reports
// @Produce      json
// @Success      200 {object} APIResponse[appreport.DashboardSummary]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /dashboard/summary [get]
func (h *ReportHandler) Dashboard(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	summary, err := h.dashboardService.Summary(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}

// Spend godoc
// @ID           getSpendReport
// @Summary      Spend report
// @Description  Committed and paid spend by division, vendor and month
// @Tags         reports
// @Produce      json
// @Param        start_date query string false "Start date (YYYY-MM-DD)"
// @Param        end_date query string false "End date (YYYY-MM-DD)"
// @Param        division_id query string false "Division ID" format(uuid)
// @Param        top_n query int false "Number of top vendors" default(10)
// @Success      200 {object} APIResponse[appreport.SpendReportResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reports/spend [get]
func (h *ReportHandler) Spend(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var query SpendReportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.ValidationError(c, err)
		return
	}
	filter, err := query.toFilter()
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	report, err := h.reportService.Spend(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, report)
}

// ExportSpend godoc
// @ID           exportSpendReport
// @Summary      Export the spend report as CSV
// @Tags         reports
// @Produce      text/csv
// @Param        start_date query string false "Start date (YYYY-MM-DD)"
// @Param        end_date query string false "End date (YYYY-MM-DD)"
// @Param        division_id query string false "Division ID" format(uuid)
// @Success      200 {file} file
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reports/spend/export [get]
func (h *ReportHandler) ExportSpend(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var query SpendReportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.ValidationError(c, err)
		return
	}
	filter, err := query.toFilter()
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var buf bytes.Buffer
	if err := h.exportService.ExportSpend(c.Request.Context(), actor, filter, &buf); err != nil {
		h.HandleError(c, err)
		return
	}

	h.sendCSV(c, "spend-report", buf.Bytes())
}

// ExportPurchaseOrders godoc
// @ID           exportPurchaseOrders
// @Summary      Export purchase orders as CSV
// @Description  Accepts the same filters as the purchase order listing
// @Tags         reports
// @Produce      text/csv
// @Param        status query string false "Comma separated statuses"
// @Param        division_id query string false "Division ID" format(uuid)
// @Param        vendor_id query string false "Vendor ID" format(uuid)
// @Param        created_from query string false "Created on or after (YYYY-MM-DD)"
// @Param        created_to query string false "Created on or before (YYYY-MM-DD)"
// @Success      200 {file} file
// @Failure      400 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse "More rows than a single export allows"
// @Security     BearerAuth
// @Router       /purchase-orders/export [get]
func (h *ReportHandler) ExportPurchaseOrders(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var query PurchaseOrderListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.ValidationError(c, err)
		return
	}
	filter, err := query.toFilter()
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	// Buffer so a failed export still gets a JSON error instead of a truncated file
	var buf bytes.Buffer
	rows, err := h.exportService.ExportPurchaseOrders(c.Request.Context(), actor, filter, &buf)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	logger.GetGinLogger(c).Info("Purchase orders exported", zap.Int("rows", rows))
	c.Header("X-Total-Count", strconv.Itoa(rows))
	h.sendCSV(c, "purchase-orders", buf.Bytes())
}

func (h *ReportHandler) sendCSV(c *gin.Context, prefix string, body []byte) {
	c.Header("Content-Disposition", `attachment; filename="`+csvFilename(prefix, h.now())+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", body)
}
