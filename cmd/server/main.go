package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	identityapp "github.com/roofpo/backend/internal/application/identity"
	orgapp "github.com/roofpo/backend/internal/application/organization"
	partnerapp "github.com/roofpo/backend/internal/application/partner"
	procurementapp "github.com/roofpo/backend/internal/application/procurement"
	reportapp "github.com/roofpo/backend/internal/application/report"
	"github.com/roofpo/backend/internal/domain/procurement"
	"github.com/roofpo/backend/internal/infrastructure/auth"
	"github.com/roofpo/backend/internal/infrastructure/cache"
	"github.com/roofpo/backend/internal/infrastructure/config"
	"github.com/roofpo/backend/internal/infrastructure/event"
	"github.com/roofpo/backend/internal/infrastructure/logger"
	"github.com/roofpo/backend/internal/infrastructure/persistence"
	"github.com/roofpo/backend/internal/infrastructure/persistence/archive"
	"github.com/roofpo/backend/internal/infrastructure/scheduler"
	"github.com/roofpo/backend/internal/infrastructure/storage"
	"github.com/roofpo/backend/internal/infrastructure/telemetry"
	"github.com/roofpo/backend/internal/interfaces/http/handler"
	"github.com/roofpo/backend/internal/interfaces/http/middleware"
	"github.com/roofpo/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "github.com/roofpo/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			Roofing PO API
//	@version		1.0
//	@description	Purchase order lifecycle for a roofing contractor: raise, approve, issue, receive, invoice and pay.

//	@contact.name	Procurement Platform
//	@contact.email	procurement@roofpo.example.com

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

// version is stamped at build time with -ldflags "-X main.version=..."
var version = "dev"

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry
	telCfg := telemetry.ConfigFrom(cfg.Telemetry, version)
	tracer, err := telemetry.NewTracerProvider(ctx, telCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	metricsCfg := telCfg
	metricsCfg.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled
	meters, err := telemetry.NewMeterProvider(ctx, metricsCfg, cfg.Telemetry.MetricsInterval, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	logsCfg := telCfg
	logsCfg.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled
	logExport, err := telemetry.NewLoggerProvider(ctx, logsCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize log export", zap.Error(err))
	}
	log = logExport.Bridge(log, zapcore.InfoLevel)

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.PyroscopeEndpoint,
		ApplicationName: cfg.Telemetry.ServiceName,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() {
		tracer.EnableSpanProfiles()
	}

	log.Info("Starting roofing PO service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	// Primary database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.Telemetry.DBTraceEnabled {
		if err := telemetry.RegisterDBTracing(db.DB, !cfg.IsProduction()); err != nil {
			log.Fatal("Failed to enable database tracing", zap.Error(err))
		}
	}
	if meters.IsEnabled() {
		meter := meters.Meter(telemetry.TracerName)
		plugin, err := telemetry.NewDBMetricsPlugin(meter, cfg.Telemetry.DBSlowQueryThresh, log)
		if err != nil {
			log.Fatal("Failed to create database metrics", zap.Error(err))
		}
		if err := db.DB.Use(plugin); err != nil {
			log.Fatal("Failed to register database metrics", zap.Error(err))
		}
		if sqlDB, err := db.DB.DB(); err == nil {
			if err := telemetry.ObservePool(meter, sqlDB); err != nil {
				log.Warn("Connection pool metrics unavailable", zap.Error(err))
			}
		}
	}
	log.Info("Database connected")

	// Archive database
	archiveStore, err := archive.Open(cfg.Archive.Path, gormLog)
	if err != nil {
		log.Fatal("Failed to open archive", zap.Error(err), zap.String("path", cfg.Archive.Path))
	}
	defer func() {
		if err := archiveStore.Close(); err != nil {
			log.Error("Error closing archive", zap.Error(err))
		}
	}()

	// Redis, or in-memory stores when it is off or down
	backend, err := cache.NewBackend(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.IsProduction()),
	)
	if err != nil {
		log.Fatal("Failed to initialize cache backend", zap.Error(err))
	}
	defer func() {
		if err := backend.Close(); err != nil {
			log.Error("Error closing Redis", zap.Error(err))
		}
	}()

	var blacklist auth.TokenBlacklist = auth.NewInMemoryTokenBlacklist()
	if backend.UsesRedis() {
		blacklist = auth.NewRedisTokenBlacklist(backend.Client())
	}

	attachments := newAttachmentStorage(ctx, cfg, log)

	// Repositories
	orderRepo := persistence.NewGormPurchaseOrderRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	historyRepo := persistence.NewGormHistoryRepository(db.DB)
	divisionRepo := persistence.NewGormDivisionRepository(db.DB)
	projectRepo := persistence.NewGormProjectRepository(db.DB)
	workOrderRepo := persistence.NewGormWorkOrderRepository(db.DB)
	vendorRepo := persistence.NewGormVendorRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	spendRepo := persistence.NewGormSpendReportRepository(db.DB)

	// Event bus
	bus := event.NewInMemoryEventBus(log)
	historyHandler := procurementapp.NewHistoryHandler(historyRepo, log)
	bus.Subscribe(historyHandler, historyHandler.EventTypes()...)
	dashboardCache := backend.JSONCache("roofpo:dashboard:")
	invalidator := reportapp.NewCacheInvalidator(dashboardCache, log)
	bus.Subscribe(invalidator, invalidator.EventTypes()...)
	if meters.IsEnabled() {
		poMetrics, err := telemetry.NewPOMetricsFromProvider(meters)
		if err != nil {
			log.Fatal("Failed to create PO metrics", zap.Error(err))
		}
		bus.Subscribe(poMetrics, poMetrics.EventTypes()...)
	}
	if err := bus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Services
	jwtService := auth.NewJWTService(cfg.JWT)
	policy := procurement.ApprovalPolicy{
		AutoApproveLimit:    cfg.Approval.AutoApproveLimit,
		OperationsThreshold: cfg.Approval.OperationsThreshold,
		ExecutiveThreshold:  cfg.Approval.ExecutiveThreshold,
	}
	tolerance := procurement.Tolerance{
		Percent: cfg.Reconciliation.TolerancePercent,
		Amount:  cfg.Reconciliation.ToleranceAmount,
	}

	orderService := procurementapp.NewPurchaseOrderService(procurementapp.Repositories{
		Orders:     orderRepo,
		Invoices:   invoiceRepo,
		History:    historyRepo,
		Divisions:  divisionRepo,
		Projects:   projectRepo,
		WorkOrders: workOrderRepo,
		Vendors:    vendorRepo,
	}, policy, tolerance, log)
	orderService.SetEventPublisher(bus)

	invoiceService := procurementapp.NewInvoiceService(orderRepo, invoiceRepo, vendorRepo,
		attachments, tolerance, cfg.Storage.PresignTTL, log)
	invoiceService.SetEventPublisher(bus)

	archiveService := procurementapp.NewArchiveService(orderRepo, archiveStore, procurementapp.ArchiveSettings{
		RetentionDays: cfg.Archive.RetentionDays,
		BatchSize:     cfg.Archive.BatchSize,
	}, log)

	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, log)
	userService := identityapp.NewUserService(userRepo, divisionRepo, jwtService, blacklist, log)
	userService.SetEventPublisher(bus)

	vendorService := partnerapp.NewVendorService(vendorRepo)
	divisionService := orgapp.NewDivisionService(divisionRepo, log)
	projectService := orgapp.NewProjectService(projectRepo, divisionRepo, orderRepo)
	workOrderService := orgapp.NewWorkOrderService(workOrderRepo, projectRepo)

	reportService := reportapp.NewReportService(spendRepo, backend.JSONCache("roofpo:report:"), cfg.HTTP.DashboardTTL, log)
	dashboardService := reportapp.NewDashboardService(spendRepo, orderRepo, orderService, dashboardCache, cfg.HTTP.DashboardTTL, log)
	exportService := reportapp.NewExportService(orderService, vendorRepo, reportService, log)

	// Background jobs
	jobs := scheduler.New(log)
	if cfg.Archive.Enabled {
		if err := jobs.Add(archiveService, scheduler.JobConfig{Interval: cfg.Archive.Interval}); err != nil {
			log.Fatal("Failed to schedule archive job", zap.Error(err))
		}
	}
	if err := jobs.Start(ctx); err != nil {
		log.Fatal("Failed to start scheduler", zap.Error(err))
	}

	// HTTP
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	security := middleware.DefaultSecurityConfig()
	security.HSTSEnabled = cfg.IsProduction()
	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		logger.GinMiddleware(log),
		middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     tracer.IsEnabled(),
		}),
		middleware.SecureWithConfig(security),
		middleware.CORSWithConfig(cors),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize, cfg.HTTP.MaxUploadSize),
	)

	jwtConfig := middleware.DefaultJWTConfig(jwtService)
	jwtConfig.Revocation = authService
	jwtConfig.SkipPaths = append(jwtConfig.SkipPaths, "/api/v1/system/ping")
	jwtConfig.Logger = log
	jwtAuth := middleware.JWTAuthMiddlewareWithConfig(jwtConfig)

	systemHandler := handler.NewSystemHandler(cfg.App.Name, version, map[string]handler.HealthCheck{
		"database": db.Ping,
		"redis": func(ctx context.Context) error {
			if !backend.UsesRedis() {
				return nil
			}
			return backend.Client().Ping(ctx).Err()
		},
	})
	engine.GET("/health", systemHandler.Health)
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:     cfg.Swagger.Enabled,
			RequireAuth: cfg.Swagger.RequireAuth,
		}, jwtAuth),
		ginSwagger.WrapHandler(swaggerFiles.Handler))

	guards := router.Guards{
		Idempotency: middleware.Idempotency(backend.IdempotencyStore(), cfg.HTTP.IdempotencyTTL, log),
	}
	if cfg.HTTP.RateLimitEnabled {
		guards.AuthLimit = newLimit(ctx, cfg.HTTP.LoginRateLimit, cfg.HTTP.RateLimitWindow)
		guards.ReadLimit = newLimit(ctx, cfg.HTTP.ReadRateLimit, cfg.HTTP.RateLimitWindow)
		guards.WriteLimit = newLimit(ctx, cfg.HTTP.WriteRateLimit, cfg.HTTP.RateLimitWindow)
		guards.ReportLimit = newLimit(ctx, cfg.HTTP.ReportRateLimit, cfg.HTTP.RateLimitWindow)
	}
	permissionLog := log.Named("permission")
	guards.Permission = func(permissions ...string) gin.HandlerFunc {
		return middleware.RequireAnyPermissionWithConfig(middleware.PermissionConfig{Logger: permissionLog}, permissions...)
	}

	r := router.NewRouter(engine).
		Use(
			jwtAuth,
			middleware.TracingAttributeInjector(),
			middleware.HTTPMetrics(meters, log),
			middleware.Profiling(profiler.IsEnabled()),
		).
		Register(router.Groups(router.Handlers{
			Auth:          handler.NewAuthHandler(authService),
			PurchaseOrder: handler.NewPurchaseOrderHandler(orderService),
			Invoice:       handler.NewInvoiceHandler(invoiceService),
			Vendor:        handler.NewVendorHandler(vendorService),
			Division:      handler.NewDivisionHandler(divisionService),
			Project:       handler.NewProjectHandler(projectService),
			WorkOrder:     handler.NewWorkOrderHandler(workOrderService),
			User:          handler.NewUserHandler(userService),
			Report:        handler.NewReportHandler(reportService, dashboardService, exportService),
			Archive:       handler.NewArchiveHandler(archiveService),
			System:        systemHandler,
		}, guards)...)
	r.Setup()
	log.Info("Routes registered", zap.Int("count", len(r.Routes())))

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := jobs.Stop(shutdownCtx); err != nil {
		log.Warn("Scheduler did not stop cleanly", zap.Error(err))
	}
	if err := bus.Stop(shutdownCtx); err != nil {
		log.Warn("Event bus did not drain", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Warn("Profiler stop failed", zap.Error(err))
	}
	if err := meters.Shutdown(shutdownCtx); err != nil {
		log.Warn("Metrics flush failed", zap.Error(err))
	}
	if err := tracer.Shutdown(shutdownCtx); err != nil {
		log.Warn("Trace flush failed", zap.Error(err))
	}
	if err := logExport.Shutdown(shutdownCtx); err != nil {
		log.Warn("Log flush failed", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// newAttachmentStorage connects to S3 when storage is enabled and otherwise
// keeps attachments in process memory
func newAttachmentStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) procurementapp.AttachmentStorage {
	if !cfg.Storage.Enabled {
		log.Warn("Object storage disabled, invoice attachments are kept in memory")
		return storage.NewStubObjectStorage()
	}
	s3, err := storage.NewS3ObjectStorage(&cfg.Storage, storage.WithLogger(log))
	if err != nil {
		log.Fatal("Failed to initialize object storage", zap.Error(err))
	}
	if err := s3.EnsureBucket(ctx); err != nil {
		log.Warn("Attachment bucket check failed", zap.Error(err), zap.String("bucket", s3.Bucket()))
	}
	return s3
}

func newLimit(ctx context.Context, limit int, window time.Duration) gin.HandlerFunc {
	limiter := middleware.NewRateLimiter(limit, window)
	limiter.StartCleanup(ctx)
	return middleware.RateLimit(limiter)
}
