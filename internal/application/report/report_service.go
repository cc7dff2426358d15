package report

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/roofpo/backend/internal/domain/identity"
	"github.com/roofpo/backend/internal/domain/report"
	"github.com/roofpo/backend/internal/domain/shared"
	"github.com/roofpo/backend/internal/infrastructure/cache"
	"go.uber.org/zap"
)

const (
	defaultTopN = 10
	maxTopN     = 50
	// maxReportSpan bounds the period of an ad-hoc spend report
	maxReportSpan = 5 * 366 * 24 * time.Hour
)

// ReportService answers spend reports, caching results per division scope
type ReportService struct {
	spendRepo report.SpendReportRepository
	results   resultCache
	now       func() time.Time
	logger    *zap.Logger
}

// NewReportService creates a new ReportService. A nil cache disables caching.
func NewReportService(spendRepo report.SpendReportRepository, c cache.JSONCache, ttl time.Duration, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		spendRepo: spendRepo,
		results:   newResultCache(c, ttl, logger),
		now:       time.Now,
		logger:    logger,
	}
}

// Spend returns the spend report for the period, limited to the actor's divisions
func (s *ReportService) Spend(ctx context.Context, actor identity.Actor, filter SpendReportFilter) (*SpendReportResponse, error) {
	domainFilter, err := s.spendFilter(actor, filter)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("spend:%s:%s:%s:%s:%d",
		scopeKey(actor.DivisionScope()), optionalID(domainFilter.DivisionID),
		domainFilter.StartDate.Format(time.RFC3339), domainFilter.EndDate.Format(time.RFC3339), domainFilter.TopN)

	var out SpendReportResponse
	if s.results.get(ctx, key, &out) {
		return &out, nil
	}

	summary, err := s.spendRepo.GetSpendSummary(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	byDivision, err := s.spendRepo.GetSpendByDivision(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	topVendors, err := s.spendRepo.GetTopVendors(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	monthly, err := s.spendRepo.GetMonthlySpend(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	out = SpendReportResponse{
		Summary:    *summary,
		ByDivision: byDivision,
		TopVendors: topVendors,
		Monthly:    monthly,
	}
	s.results.put(ctx, key, &out)
	return &out, nil
}

// spendFilter applies defaults and the caller's division scope
func (s *ReportService) spendFilter(actor identity.Actor, filter SpendReportFilter) (report.SpendFilter, error) {
	now := s.now().UTC()
	if filter.EndDate.IsZero() {
		filter.EndDate = now.Truncate(24 * time.Hour)
	}
	if isMidnight(filter.EndDate) {
		// a bare end date covers the whole day
		filter.EndDate = filter.EndDate.Add(24*time.Hour - time.Nanosecond)
	}
	if filter.StartDate.IsZero() {
		filter.StartDate = monthStart(filter.EndDate).AddDate(0, -11, 0)
	}
	if filter.EndDate.Before(filter.StartDate) {
		return report.SpendFilter{}, shared.NewDomainError("INVALID_DATE_RANGE", "End date must not be before start date")
	}
	if filter.EndDate.Sub(filter.StartDate) > maxReportSpan {
		return report.SpendFilter{}, shared.NewDomainError("INVALID_DATE_RANGE", "Report period cannot exceed five years")
	}

	if filter.TopN <= 0 {
		filter.TopN = defaultTopN
	}
	filter.TopN = min(filter.TopN, maxTopN)

	if filter.DivisionID != nil && !actor.CanAccessDivision(*filter.DivisionID) {
		return report.SpendFilter{}, shared.ErrNotFound
	}

	return report.SpendFilter{
		DivisionIDs: actor.DivisionScope(),
		DivisionID:  filter.DivisionID,
		StartDate:   filter.StartDate,
		EndDate:     filter.EndDate,
		TopN:        filter.TopN,
	}, nil
}

// resultCache stores computed reports; a nil cache makes every lookup a miss
type resultCache struct {
	cache  cache.JSONCache
	ttl    time.Duration
	logger *zap.Logger
}

func newResultCache(c cache.JSONCache, ttl time.Duration, logger *zap.Logger) resultCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return resultCache{cache: c, ttl: ttl, logger: logger}
}

func (r resultCache) get(ctx context.Context, key string, dest any) bool {
	if r.cache == nil {
		return false
	}
	hit, err := r.cache.Get(ctx, key, dest)
	if err != nil {
		r.logger.Warn("Report cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return hit
}

func (r resultCache) put(ctx context.Context, key string, value any) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Set(ctx, key, value, r.ttl); err != nil {
		r.logger.Warn("Report cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// scopeKey renders a division scope so equal scopes share cache entries
func scopeKey(divisionIDs []uuid.UUID) string {
	if divisionIDs == nil {
		return "all"
	}
	ids := make([]string, len(divisionIDs))
	for i, id := range divisionIDs {
		ids[i] = id.String()
	}
	slices.Sort(ids)
	return strings.Join(ids, ",")
}

func optionalID(id *uuid.UUID) string {
	if id == nil {
		return "-"
	}
	return id.String()
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func isMidnight(t time.Time) bool {
	h, m, sec := t.Clock()
	return h == 0 && m == 0 && sec == 0 && t.Nanosecond() == 0
}
