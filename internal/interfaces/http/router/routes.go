package router

import (
	"github.com/gin-gonic/gin"
	"github.com/roofpo/backend/internal/domain/identity"
	"github.com/roofpo/backend/internal/interfaces/http/handler"
	"github.com/roofpo/backend/internal/interfaces/http/middleware"
)

// Handlers bundles the endpoint handlers mounted under the API prefix
type Handlers struct {
	Auth          *handler.AuthHandler
	PurchaseOrder *handler.PurchaseOrderHandler
	Invoice       *handler.InvoiceHandler
	Vendor        *handler.VendorHandler
	Division      *handler.DivisionHandler
	Project       *handler.ProjectHandler
	WorkOrder     *handler.WorkOrderHandler
	User          *handler.UserHandler
	Report        *handler.ReportHandler
	Archive       *handler.ArchiveHandler
	System        *handler.SystemHandler
}

// Guards holds the per-route middleware. Nil entries are skipped.
type Guards struct {
	// Permission builds the check for a route; defaults to
	// middleware.RequireAnyPermission
	Permission func(permissions ...string) gin.HandlerFunc
	// AuthLimit throttles login and token refresh
	AuthLimit gin.HandlerFunc
	// ReadLimit, WriteLimit and ReportLimit are the per-route request budgets
	ReadLimit   gin.HandlerFunc
	WriteLimit  gin.HandlerFunc
	ReportLimit gin.HandlerFunc
	// Idempotency deduplicates create requests carrying an Idempotency-Key
	Idempotency gin.HandlerFunc
}

func (g Guards) need(permissions ...string) gin.HandlerFunc {
	if g.Permission == nil {
		return middleware.RequireAnyPermission(permissions...)
	}
	return g.Permission(permissions...)
}

func (g Guards) read(endpoint gin.HandlerFunc, permissions ...string) []gin.HandlerFunc {
	return chain(endpoint, g.ReadLimit, g.need(permissions...))
}

func (g Guards) write(endpoint gin.HandlerFunc, permissions ...string) []gin.HandlerFunc {
	return chain(endpoint, g.WriteLimit, g.need(permissions...))
}

func (g Guards) report(endpoint gin.HandlerFunc, permissions ...string) []gin.HandlerFunc {
	return chain(endpoint, g.ReportLimit, g.need(permissions...))
}

// chain drops nil middleware and appends the endpoint
func chain(endpoint gin.HandlerFunc, mw ...gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(mw)+1)
	for _, m := range mw {
		if m != nil {
			out = append(out, m)
		}
	}
	return append(out, endpoint)
}

// Groups builds the domain groups for the purchase order API
func Groups(h Handlers, g Guards) []RouteRegistrar {
	auth := NewDomainGroup("auth", "/auth")
	auth.POST("/login", chain(h.Auth.Login, g.AuthLimit)...)
	auth.POST("/refresh", chain(h.Auth.RefreshToken, g.AuthLimit)...)
	auth.POST("/logout", h.Auth.Logout)
	auth.GET("/me", h.Auth.GetCurrentUser)
	auth.PUT("/password", h.Auth.ChangePassword)

	po := NewDomainGroup("purchase-orders", "/purchase-orders")
	po.POST("", chain(h.PurchaseOrder.Create, g.WriteLimit, g.need(identity.PermPOCreate), g.Idempotency)...)
	po.GET("", g.read(h.PurchaseOrder.List, identity.PermPORead)...)
	po.GET("/export", g.report(h.Report.ExportPurchaseOrders, identity.PermReportExport)...)
	po.GET("/pending-approval", g.read(h.PurchaseOrder.PendingApproval, identity.PermPOApprove)...)
	po.GET("/by-number/:number", g.read(h.PurchaseOrder.GetByNumber, identity.PermPORead)...)
	po.GET("/:id", g.read(h.PurchaseOrder.GetByID, identity.PermPORead)...)
	po.PUT("/:id", g.write(h.PurchaseOrder.Update, identity.PermPOUpdate)...)
	po.DELETE("/:id", g.write(h.PurchaseOrder.Delete, identity.PermPODelete)...)
	po.GET("/:id/history", g.read(h.PurchaseOrder.History, identity.PermPORead)...)
	po.POST("/:id/lines", g.write(h.PurchaseOrder.AddLine, identity.PermPOUpdate)...)
	po.PUT("/:id/lines/:lineId", g.write(h.PurchaseOrder.UpdateLine, identity.PermPOUpdate)...)
	po.DELETE("/:id/lines/:lineId", g.write(h.PurchaseOrder.RemoveLine, identity.PermPOUpdate)...)
	po.POST("/:id/submit", g.write(h.PurchaseOrder.Submit, identity.PermPOSubmit)...)
	po.POST("/:id/approve", g.write(h.PurchaseOrder.Approve, identity.PermPOApprove)...)
	po.POST("/:id/reject", g.write(h.PurchaseOrder.Reject, identity.PermPOApprove)...)
	po.POST("/:id/cancel", g.write(h.PurchaseOrder.Cancel, identity.PermPOCancel)...)
	po.POST("/:id/reopen", g.write(h.PurchaseOrder.Reopen, identity.PermPOUpdate)...)
	po.POST("/:id/issue", g.write(h.PurchaseOrder.Issue, identity.PermPOIssue)...)
	po.POST("/:id/receive", g.write(h.PurchaseOrder.Receive, identity.PermPOReceive)...)
	po.POST("/:id/pay", g.write(h.PurchaseOrder.Pay, identity.PermPOPay)...)
	po.POST("/:id/invoices", chain(h.Invoice.Record, g.WriteLimit, g.need(identity.PermInvoiceCreate), g.Idempotency)...)
	po.GET("/:id/invoices", g.read(h.Invoice.List, identity.PermInvoiceRead)...)
	po.GET("/:id/reconciliation", g.read(h.Invoice.Reconciliation, identity.PermInvoiceRead)...)

	invoices := NewDomainGroup("invoices", "/invoices")
	invoices.POST("/:id/void", g.write(h.Invoice.Void, identity.PermInvoiceVoid)...)
	invoices.GET("/:id/attachment", g.read(h.Invoice.Attachment, identity.PermInvoiceRead)...)

	vendors := NewDomainGroup("vendors", "/vendors")
	vendors.POST("", g.write(h.Vendor.Create, identity.PermVendorWrite)...)
	vendors.GET("", g.read(h.Vendor.List, identity.PermVendorRead)...)
	vendors.GET("/:id", g.read(h.Vendor.GetByID, identity.PermVendorRead)...)
	vendors.PUT("/:id", g.write(h.Vendor.Update, identity.PermVendorWrite)...)
	vendors.DELETE("/:id", g.write(h.Vendor.Deactivate, identity.PermVendorWrite)...)
	vendors.POST("/:id/activate", g.write(h.Vendor.Activate, identity.PermVendorWrite)...)

	divisions := NewDomainGroup("divisions", "/divisions")
	divisions.POST("", g.write(h.Division.Create, identity.PermDivisionWrite)...)
	divisions.GET("", g.read(h.Division.List, identity.PermDivisionRead)...)
	divisions.GET("/:id", g.read(h.Division.GetByID, identity.PermDivisionRead)...)
	divisions.PUT("/:id", g.write(h.Division.Update, identity.PermDivisionWrite)...)
	divisions.DELETE("/:id", g.write(h.Division.Deactivate, identity.PermDivisionWrite)...)
	divisions.POST("/:id/activate", g.write(h.Division.Activate, identity.PermDivisionWrite)...)

	projects := NewDomainGroup("projects", "/projects")
	projects.POST("", g.write(h.Project.Create, identity.PermProjectWrite)...)
	projects.GET("", g.read(h.Project.List, identity.PermProjectRead)...)
	projects.GET("/:id", g.read(h.Project.GetByID, identity.PermProjectRead)...)
	projects.PUT("/:id", g.write(h.Project.Update, identity.PermProjectWrite)...)
	projects.DELETE("/:id", g.write(h.Project.Delete, identity.PermProjectWrite)...)

	workOrders := NewDomainGroup("work-orders", "/work-orders")
	workOrders.POST("", g.write(h.WorkOrder.Create, identity.PermWorkOrderWrite)...)
	workOrders.GET("", g.read(h.WorkOrder.List, identity.PermWorkOrderRead)...)
	workOrders.GET("/:id", g.read(h.WorkOrder.GetByID, identity.PermWorkOrderRead)...)
	workOrders.PUT("/:id", g.write(h.WorkOrder.Update, identity.PermWorkOrderWrite)...)
	workOrders.DELETE("/:id", g.write(h.WorkOrder.Delete, identity.PermWorkOrderWrite)...)
	workOrders.POST("/:id/close", g.write(h.WorkOrder.Close, identity.PermWorkOrderWrite)...)
	workOrders.POST("/:id/reopen", g.write(h.WorkOrder.Reopen, identity.PermWorkOrderWrite)...)

	users := NewDomainGroup("users", "/users")
	users.POST("", g.write(h.User.Create, identity.PermUserWrite)...)
	users.GET("", g.read(h.User.List, identity.PermUserRead, identity.PermUserWrite)...)
	users.GET("/:id", g.read(h.User.GetByID, identity.PermUserRead, identity.PermUserWrite)...)
	users.PUT("/:id", g.write(h.User.Update, identity.PermUserWrite)...)
	users.DELETE("/:id", g.write(h.User.Deactivate, identity.PermUserWrite)...)
	users.POST("/:id/activate", g.write(h.User.Activate, identity.PermUserWrite)...)
	users.POST("/:id/reset-password", g.write(h.User.ResetPassword, identity.PermUserWrite)...)

	dashboard := NewDomainGroup("dashboard", "/dashboard")
	dashboard.GET("/summary", g.report(h.Report.Dashboard, identity.PermReportRead)...)

	reports := NewDomainGroup("reports", "/reports")
	reports.GET("/spend", g.report(h.Report.Spend, identity.PermReportRead)...)
	reports.GET("/spend/export", g.report(h.Report.ExportSpend, identity.PermReportExport)...)

	archive := NewDomainGroup("archive", "/archive")
	archive.GET("/purchase-orders", g.read(h.Archive.Search, identity.PermArchiveRead)...)
	archive.GET("/purchase-orders/:id", g.read(h.Archive.GetByID, identity.PermArchiveRead)...)

	system := NewDomainGroup("system", "/system")
	system.GET("/info", h.System.GetSystemInfo)
	system.GET("/ping", h.System.Ping)

	return []RouteRegistrar{
		auth, po, invoices, vendors, divisions, projects,
		workOrders, users, dashboard, reports, archive, system,
	}
}
