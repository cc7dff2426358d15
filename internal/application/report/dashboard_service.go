package report

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	appprocurement "github.com/roofpo/backend/internal/application/procurement"
	"github.com/roofpo/backend/internal/domain/identity"
	"github.com/roofpo/backend/internal/domain/procurement"
	"github.com/roofpo/backend/internal/domain/report"
	"github.com/roofpo/backend/internal/domain/shared"
	"github.com/roofpo/backend/internal/infrastructure/cache"
	"go.uber.org/zap"
)

// PendingApprovalLister lists the submitted orders an actor may approve next
type PendingApprovalLister interface {
	PendingApprovals(ctx context.Context, actor identity.Actor) ([]appprocurement.PurchaseOrderListItemResponse, error)
}

// StatusCounter counts live orders per status, optionally scoped to divisions
type StatusCounter interface {
	CountByStatus(ctx context.Context, divisionIDs []uuid.UUID) (map[procurement.Status]int64, error)
}

// DashboardService builds the landing page summary
type DashboardService struct {
	spendRepo report.SpendReportRepository
	orders    StatusCounter
	pending   PendingApprovalLister
	results   resultCache
	now       func() time.Time
	logger    *zap.Logger
}

// NewDashboardService creates a new DashboardService. A nil cache disables caching.
func NewDashboardService(
	spendRepo report.SpendReportRepository,
	orders StatusCounter,
	pending PendingApprovalLister,
	c cache.JSONCache,
	ttl time.Duration,
	logger *zap.Logger,
) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		spendRepo: spendRepo,
		orders:    orders,
		pending:   pending,
		results:   newResultCache(c, ttl, logger),
		now:       time.Now,
		logger:    logger,
	}
}

// Summary returns the dashboard for the trailing twelve months. Everything but the
// actor's own approval queue is cached per division scope.
func (s *DashboardService) Summary(ctx context.Context, actor identity.Actor) (*DashboardSummary, error) {
	now := s.now().UTC()
	scope := actor.DivisionScope()
	key := fmt.Sprintf("dashboard:%s:%s", scopeKey(scope), now.Format("2006-01-02"))

	var out DashboardSummary
	if !s.results.get(ctx, key, &out) {
		computed, err := s.compute(ctx, scope, now)
		if err != nil {
			return nil, err
		}
		out = *computed
		s.results.put(ctx, key, &out)
	}

	if s.pending != nil && actor.HasPermission(identity.PermPOApprove) {
		queue, err := s.pending.PendingApprovals(ctx, actor)
		if err != nil {
			return nil, err
		}
		out.PendingApprovals = len(queue)
	}
	return &out, nil
}

func (s *DashboardService) compute(ctx context.Context, scope []uuid.UUID, now time.Time) (*DashboardSummary, error) {
	end := now.Truncate(24*time.Hour).Add(24*time.Hour - time.Nanosecond)
	filter := report.SpendFilter{
		DivisionIDs: scope,
		StartDate:   monthStart(now).AddDate(0, -11, 0),
		EndDate:     end,
		TopN:        5,
	}

	counts, err := s.orders.CountByStatus(ctx, scope)
	if err != nil {
		return nil, err
	}
	summary, err := s.spendRepo.GetSpendSummary(ctx, filter)
	if err != nil {
		return nil, err
	}
	byDivision, err := s.spendRepo.GetSpendByDivision(ctx, filter)
	if err != nil {
		return nil, err
	}
	topVendors, err := s.spendRepo.GetTopVendors(ctx, filter)
	if err != nil {
		return nil, err
	}
	aging, err := s.spendRepo.GetReceiptAging(ctx, filter)
	if err != nil {
		return nil, err
	}
	monthly, err := s.spendRepo.GetMonthlySpend(ctx, filter)
	if err != nil {
		return nil, err
	}

	out := &DashboardSummary{
		GeneratedAt:     now,
		PeriodStart:     filter.StartDate,
		PeriodEnd:       filter.EndDate,
		StatusCounts:    make([]StatusCount, 0, len(procurement.AllStatuses())),
		CommittedSpend:  summary.CommittedSpend,
		PaidSpend:       summary.PaidSpend,
		SpendByDivision: byDivision,
		TopVendors:      topVendors,
		ReceiptAging:    aging,
		MonthlyTrend:    monthly,
	}
	for _, status := range procurement.AllStatuses() {
		count := counts[status]
		out.StatusCounts = append(out.StatusCounts, StatusCount{Status: status.String(), Count: count})
		if !status.IsTerminal() {
			out.OpenOrders += count
		}
	}
	return out, nil
}

// CacheInvalidator drops cached dashboards and reports when orders or invoices change
type CacheInvalidator struct {
	cache  cache.JSONCache
	logger *zap.Logger
}

// NewCacheInvalidator creates a new CacheInvalidator
func NewCacheInvalidator(c cache.JSONCache, logger *zap.Logger) *CacheInvalidator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheInvalidator{cache: c, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *CacheInvalidator) EventTypes() []string {
	return append(procurement.PurchaseOrderEventTypes(),
		procurement.EventTypeInvoiceRecorded,
		procurement.EventTypeInvoiceVoided,
	)
}

// Handle clears every cached report. Report keys are scoped by division sets,
// so one change can touch many entries.
func (h *CacheInvalidator) Handle(ctx context.Context, event shared.DomainEvent) error {
	if err := h.cache.DeletePrefix(ctx, ""); err != nil {
		h.logger.Warn("Failed to invalidate report cache",
			zap.String("event_type", event.EventType()),
			zap.Error(err))
		return err
	}
	return nil
}
