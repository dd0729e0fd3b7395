package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ingestapp "github.com/fieldsales/backend/internal/application/ingest"
	reportapp "github.com/fieldsales/backend/internal/application/report"
	"github.com/fieldsales/backend/internal/infrastructure/cache"
	"github.com/fieldsales/backend/internal/infrastructure/config"
	csvimport "github.com/fieldsales/backend/internal/infrastructure/import"
	"github.com/fieldsales/backend/internal/infrastructure/logger"
	"github.com/fieldsales/backend/internal/infrastructure/migration"
	"github.com/fieldsales/backend/internal/infrastructure/persistence"
	"github.com/fieldsales/backend/internal/infrastructure/spreadsheet"
	"github.com/fieldsales/backend/internal/infrastructure/telemetry"
	"github.com/fieldsales/backend/internal/interfaces/http/handler"
	"github.com/fieldsales/backend/internal/interfaces/http/middleware"
	"github.com/fieldsales/backend/internal/interfaces/http/router"
	"github.com/fieldsales/backend/migrations"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// version is stamped at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:            cfg.Log.Level,
		Format:           cfg.Log.Format,
		Output:           cfg.Log.Output,
		Service:          cfg.App.Name,
		Env:              cfg.App.Env,
		SampleInitial:    cfg.Log.SampleInitial,
		SampleThereafter: cfg.Log.SampleThereafter,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting field sales backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	// Telemetry, a no-op unless telemetry.enabled
	otelCfg := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		Insecure:          cfg.Telemetry.Insecure,
		ServiceName:       cfg.App.Name,
		ServiceVersion:    version,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
	}
	tracerProvider, err := telemetry.NewTracerProvider(ctx, otelCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Warn("Error shutting down tracer provider", zap.Error(err))
		}
	}()
	meterProvider, err := telemetry.NewMeterProvider(ctx, otelCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	defer func() {
		if err := meterProvider.Shutdown(context.Background()); err != nil {
			log.Warn("Error shutting down meter provider", zap.Error(err))
		}
	}()
	metrics, err := telemetry.NewSalesMetrics(meterProvider.Meter(telemetry.MeterName))
	if err != nil {
		log.Fatal("Failed to create sales metrics", zap.Error(err))
	}

	if cfg.Database.AutoMigrate {
		if err := migration.UpFromFS(ctx, cfg.Database.DSN(), migrations.FS, log.Named(logger.ComponentMigrate)); err != nil {
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	gormLog := logger.NewGormLogger(log, logger.GormLoggerConfig{
		Level:         cfg.Log.Level,
		SlowThreshold: cfg.Log.GormSlow,
	})
	db, err := persistence.Open(ctx, cfg.Database, persistence.WithLogger(gormLog))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.InstrumentGorm(db.DB, telemetry.GormTracing{
		Enabled:       cfg.Telemetry.Enabled && cfg.Telemetry.DBTrace,
		DBName:        cfg.Database.DBName,
		WithVariables: cfg.Telemetry.DBTraceVariables,
	}, nil); err != nil {
		log.Fatal("Failed to instrument database", zap.Error(err))
	}
	log.Info("Database connected successfully")

	// Repositories
	recordRepo := persistence.NewGormSalesRecordRepository(db.DB)
	employeeRepo := persistence.NewGormEmployeeRepository(db.DB)
	referenceRepo := persistence.NewGormModelReferenceRepository(db.DB)
	targetRepo := persistence.NewGormChannelTargetRepository(db.DB)

	// Known-identity cache, Redis when enabled
	store, err := cache.NewIdempotencyStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(true),
	).CreateStore()
	if err != nil {
		log.Fatal("Failed to create identity cache", zap.Error(err))
	}
	identityCache := cache.NewIdentityCache(store, cfg.Ingest.IdentityCacheTTL, log)
	defer func() {
		if err := identityCache.Close(); err != nil {
			log.Warn("Error closing identity cache", zap.Error(err))
		}
	}()

	legacy, err := csvimport.LookupEncoding(cfg.Ingest.LegacyEncoding)
	if err != nil {
		log.Fatal("Invalid ingest.legacy_encoding", zap.Error(err))
	}

	loc, err := cfg.Report.Location()
	if err != nil {
		log.Fatal("Invalid report.timezone", zap.Error(err))
	}

	// Application services
	reportService := reportapp.NewReportService(
		recordRepo, referenceRepo, targetRepo,
		reportapp.NewRoleFilterResolver(employeeRepo),
		log,
		reportapp.WithLocation(loc),
		reportapp.WithPeriodDays(cfg.Report.PeriodDays),
		reportapp.WithMetrics(metrics),
	)
	ingestService := ingestapp.NewService(
		recordRepo, employeeRepo, referenceRepo, targetRepo,
		log,
		ingestapp.WithBatchSize(cfg.Ingest.BatchSize),
		ingestapp.WithLegacyEncoding(legacy),
		ingestapp.WithIdentityCache(identityCache),
		ingestapp.WithMetrics(metrics),
	)

	// Handlers
	reportHandler := handler.NewSalesReportHandler(reportService, spreadsheet.NewExporter())
	uploadHandler := handler.NewSalesUploadHandler(ingestService)

	// Gin engine
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid http.trusted_proxies", zap.Error(err))
	}
	// Multipart parts past this size spill to temp files
	engine.MaxMultipartMemory = 32 << 20

	// Middleware order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Tracing - Server span per request, when telemetry is enabled
	// 3. Logger - Log requests
	// 4. Recovery - Catch panics
	// 5. Security - Add security headers
	// 6. CORS - Handle cross-origin requests
	engine.Use(middleware.RequestID())
	if tracerProvider.Enabled() {
		engine.Use(middleware.Tracing(cfg.App.Name)...)
	}
	engine.Use(logger.RequestLogger(log.Named(logger.ComponentHTTP), logger.WithSkipPaths("/health")))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	engine.Use(middleware.CORSWithConfig(corsConfig))

	limiterCtx, stopLimiter := context.WithCancel(context.Background())
	defer stopLimiter()
	var uploadMiddleware []gin.HandlerFunc
	if cfg.Ingest.RateLimit > 0 {
		limiter := middleware.NewRateLimiter(limiterCtx, cfg.Ingest.RateLimit, cfg.Ingest.RateWindow)
		uploadMiddleware = append(uploadMiddleware, middleware.RateLimit(limiter))
	}

	router.Mount(engine, router.Deps{
		Reports:          reportHandler,
		Uploads:          uploadHandler,
		Health:           handler.NewHealthHandler(db),
		MaxUploadBytes:   cfg.Ingest.MaxUploadBytes,
		UploadMiddleware: uploadMiddleware,
	})

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
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("Server exited gracefully")
}
