package telemetry

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	queryStartKey             = "roofpo:query_start"
	defaultSlowQueryThreshold = 200 * time.Millisecond
)

var dbDurationBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}

// DBMetricsPlugin is a gorm plugin timing every statement.
// Statements slower than the threshold are logged and flagged on the active span.
type DBMetricsPlugin struct {
	queries       *Counter
	duration      *Histogram
	slowQueries   *Counter
	slowThreshold time.Duration
	logger        *zap.Logger
}

// NewDBMetricsPlugin creates the query instruments on meter
func NewDBMetricsPlugin(meter metric.Meter, slowThreshold time.Duration, logger *zap.Logger) (*DBMetricsPlugin, error) {
	if slowThreshold <= 0 {
		slowThreshold = defaultSlowQueryThreshold
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	queries, err := NewCounter(meter, "db.queries", "Database statements by operation", "{query}")
	if err != nil {
		return nil, err
	}
	duration, err := NewHistogram(meter, "db.query.duration", "Database statement latency", "s", dbDurationBuckets...)
	if err != nil {
		return nil, err
	}
	slowQueries, err := NewCounter(meter, "db.slow_queries", "Statements over the slow threshold", "{query}")
	if err != nil {
		return nil, err
	}
	return &DBMetricsPlugin{
		queries:       queries,
		duration:      duration,
		slowQueries:   slowQueries,
		slowThreshold: slowThreshold,
		logger:        logger,
	}, nil
}

// Name implements gorm.Plugin
func (p *DBMetricsPlugin) Name() string {
	return "roofpo:db_metrics"
}

// Initialize implements gorm.Plugin
func (p *DBMetricsPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	register := []func() error{
		func() error { return cb.Create().Before("gorm:create").Register("db_metrics:before_create", p.before) },
		func() error { return cb.Query().Before("gorm:query").Register("db_metrics:before_query", p.before) },
		func() error { return cb.Update().Before("gorm:update").Register("db_metrics:before_update", p.before) },
		func() error { return cb.Delete().Before("gorm:delete").Register("db_metrics:before_delete", p.before) },
		func() error { return cb.Row().Before("gorm:row").Register("db_metrics:before_row", p.before) },
		func() error { return cb.Raw().Before("gorm:raw").Register("db_metrics:before_raw", p.before) },
		func() error { return cb.Create().After("gorm:create").Register("db_metrics:after_create", p.after("create")) },
		func() error { return cb.Query().After("gorm:query").Register("db_metrics:after_query", p.after("select")) },
		func() error { return cb.Update().After("gorm:update").Register("db_metrics:after_update", p.after("update")) },
		func() error { return cb.Delete().After("gorm:delete").Register("db_metrics:after_delete", p.after("delete")) },
		func() error { return cb.Row().After("gorm:row").Register("db_metrics:after_row", p.after("row")) },
		func() error { return cb.Raw().After("gorm:raw").Register("db_metrics:after_raw", p.after("raw")) },
	}
	for _, fn := range register {
		if err := fn(); err != nil {
			return err
		}
	}
	return nil
}

func (p *DBMetricsPlugin) before(db *gorm.DB) {
	db.InstanceSet(queryStartKey, time.Now())
}

func (p *DBMetricsPlugin) after(operation string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		v, ok := db.InstanceGet(queryStartKey)
		if !ok {
			return
		}
		start, ok := v.(time.Time)
		if !ok {
			return
		}
		elapsed := time.Since(start)

		ctx := db.Statement.Context
		if ctx == nil {
			ctx = context.Background()
		}
		status := "ok"
		if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
			status = "error"
		}
		attrs := []attribute.KeyValue{
			attribute.String("db.operation", operation),
			attribute.String("db.table", db.Statement.Table),
			attribute.String("status", status),
		}
		p.queries.Inc(ctx, attrs...)
		p.duration.Record(ctx, elapsed.Seconds(), attrs...)

		if elapsed < p.slowThreshold {
			return
		}
		p.slowQueries.Inc(ctx, attrs[:2]...)
		trace.SpanFromContext(ctx).SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
		p.logger.Warn("Slow query",
			zap.String("operation", operation),
			zap.String("table", db.Statement.Table),
			zap.Duration("elapsed", elapsed),
			zap.Int64("rows", db.Statement.RowsAffected),
		)
	}
}

// ObservePool reports sql.DB pool statistics as observable gauges
func ObservePool(meter metric.Meter, sqlDB *sql.DB) error {
	open, err := meter.Int64ObservableGauge("db.pool.connections",
		metric.WithDescription("Connections in the pool by state"), metric.WithUnit("{connection}"))
	if err != nil {
		return err
	}
	maxOpen, err := meter.Int64ObservableGauge("db.pool.connections.max",
		metric.WithDescription("Maximum open connections"), metric.WithUnit("{connection}"))
	if err != nil {
		return err
	}
	waits, err := meter.Int64ObservableCounter("db.pool.wait_count",
		metric.WithDescription("Connections waited for"), metric.WithUnit("{wait}"))
	if err != nil {
		return err
	}

	_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := sqlDB.Stats()
		o.ObserveInt64(open, int64(stats.InUse), metric.WithAttributes(attribute.String("state", "in_use")))
		o.ObserveInt64(open, int64(stats.Idle), metric.WithAttributes(attribute.String("state", "idle")))
		o.ObserveInt64(maxOpen, int64(stats.MaxOpenConnections))
		o.ObserveInt64(waits, stats.WaitCount)
		return nil
	}, open, maxOpen, waits)
	return err
}

var _ gorm.Plugin = (*DBMetricsPlugin)(nil)
