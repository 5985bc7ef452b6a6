package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	appimport "github.com/landedcost/backend/internal/application/importation"
	inventoryapp "github.com/landedcost/backend/internal/application/inventory"
	"github.com/landedcost/backend/internal/domain/shared"
	"github.com/landedcost/backend/internal/infrastructure/cache"
	"github.com/landedcost/backend/internal/infrastructure/config"
	"github.com/landedcost/backend/internal/infrastructure/event"
	"github.com/landedcost/backend/internal/infrastructure/export"
	"github.com/landedcost/backend/internal/infrastructure/logger"
	"github.com/landedcost/backend/internal/infrastructure/persistence"
	"github.com/landedcost/backend/internal/infrastructure/storage"
	"github.com/landedcost/backend/internal/infrastructure/telemetry"
	"github.com/landedcost/backend/internal/interfaces/http/handler"
	"github.com/landedcost/backend/internal/interfaces/http/middleware"
	"github.com/landedcost/backend/internal/interfaces/http/router"
	"go.uber.org/zap"

	_ "github.com/landedcost/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			Landed Cost API
//	@version		1.0
//	@description	Import shipment landed cost allocation and weighted-average inventory costing.

//	@contact.name	API Support
//	@contact.url	https://github.com/landedcost/backend

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@externalDocs.description	OpenAPI
//	@externalDocs.url			https://swagger.io/resources/open-api/

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

	rootCtx, stopRoot := context.WithCancel(context.Background())
	defer stopRoot()

	tel := initTelemetry(rootCtx, cfg, log)
	log = tel.bridge(log, cfg)

	log.Info("Starting Landed Cost backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh)

	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected successfully")

	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBSystem:        "postgresql",
	}, log); err != nil {
		log.Warn("Failed to register database tracing", zap.Error(err))
	}

	// Repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	movementRepo := persistence.NewGormStockMovementRepository(db.DB)
	shipmentRepo := persistence.NewGormShipmentRepository(db.DB)
	documentRepo := persistence.NewGormShipmentDocumentRepository(db.DB)

	// Idempotency store shared by status changes and event handlers
	idempotencyStore, err := cache.NewIdempotencyStoreFactory(
		cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	).CreateStore(rootCtx)
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}

	// Event bus
	eventBus := event.NewInMemoryEventBus(log)

	costingMetrics, err := telemetry.NewCostingMetrics(telemetry.CostingMetricsConfig{
		Meter:             tel.meter.Meter("landedcost/costing"),
		Logger:            log,
		ValuationProvider: telemetry.NewGormStockValuationProvider(db.DB),
	})
	if err != nil {
		log.Fatal("Failed to create costing metrics", zap.Error(err))
	}
	if _, err := event.SubscribeIdempotent(eventBus, idempotencyStore, log, []shared.EventHandler{
		appimport.NewCostingMetricsHandler(costingMetrics, log),
	}); err != nil {
		log.Fatal("Failed to subscribe event handlers", zap.Error(err))
	}
	if err := eventBus.Start(rootCtx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	if tel.meter.IsEnabled() {
		costingMetrics.StartPeriodicCollection(rootCtx, cfg.Costing.MetricsInterval)
	}

	// Services
	shipmentService := appimport.NewShipmentService(
		shipmentRepo,
		movementRepo,
		persistence.NewGormShipmentTransactionScope(db.DB),
		log,
	)
	shipmentService.SetEventPublisher(eventBus)
	shipmentService.SetIdempotencyStore(idempotencyStore, cfg.Costing.IdempotencyTTL)
	shipmentService.SetRetryConfig(appimport.RetryConfig{
		MaxAttempts: cfg.Costing.MaxRetries,
		BaseDelay:   cfg.Costing.RetryBaseDelay,
	})

	productService := inventoryapp.NewProductService(
		productRepo,
		movementRepo,
		persistence.NewGormInventoryTransactionScope(db.DB),
		log,
	)
	productService.SetExporter(export.NewMovementXLSXExporter())

	importService := appimport.NewItemImportService(productRepo, cfg.Import.MaxFileSize, log)

	documentStorage, err := storage.New(rootCtx, cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to initialize document storage", zap.Error(err))
	}
	if s3Storage, ok := documentStorage.(*storage.S3DocumentStorage); ok {
		if err := s3Storage.EnsureBucket(rootCtx); err != nil {
			log.Fatal("Failed to prepare document bucket", zap.Error(err))
		}
	}
	documentService := appimport.NewDocumentService(shipmentRepo, documentRepo, documentStorage, log)
	if cfg.Storage.PresignExpiry > 0 {
		docCfg := appimport.DefaultDocumentServiceConfig()
		docCfg.UploadURLExpiry = cfg.Storage.PresignExpiry
		docCfg.DownloadURLExpiry = cfg.Storage.PresignExpiry
		documentService.SetConfig(docCfg)
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware order: request id first so every later layer can log it,
	// tracing before metrics so spans cover the whole request.
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.TracingAttributeInjector())
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
		MeterProvider: tel.meter,
		Enabled:       tel.meter.IsEnabled(),
		Logger:        log,
	}))
	profilingCfg := middleware.DefaultProfilingConfig()
	profilingCfg.Enabled = tel.profiler.IsEnabled()
	engine.Use(middleware.ProfilingWithConfig(profilingCfg))
	engine.Use(middleware.SecureWithConfig(middleware.DefaultSecurityConfig()))
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfigFromHTTP(cfg.HTTP)))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.Swagger.Enabled {
		engine.GET("/swagger/*any",
			middleware.SwaggerProtection(cfg.Swagger),
			ginSwagger.WrapHandler(swaggerFiles.Handler),
		)
	}

	var importLimiter *middleware.RateLimiter
	if cfg.HTTP.RateLimit > 0 {
		importLimiter = middleware.NewRateLimiter(cfg.HTTP.RateLimit, cfg.HTTP.RateLimitWindow)
		defer importLimiter.Stop()
		log.Info("Rate limiting enabled for item imports",
			zap.Int("requests", cfg.HTTP.RateLimit),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	router.Mount(engine, router.Handlers{
		Shipments: handler.NewShipmentHandler(shipmentService, importService),
		Documents: handler.NewShipmentDocumentHandler(documentService),
		Products:  handler.NewProductHandler(productService),
		System: handler.NewSystemHandler(
			handler.WithVersion(cfg.App.Version),
			handler.WithDatabase(db),
			handler.WithEventBus(eventBus),
			handler.WithStockValuation(telemetry.NewGormStockValuationProvider(db.DB)),
		),
		ImportLimiter: importLimiter,
	}, router.WithAPIVersion("v1"))

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

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	costingMetrics.Stop()
	if err := eventBus.Stop(ctx); err != nil {
		log.Error("Error stopping event bus", zap.Error(err))
	}
	if err := idempotencyStore.Close(); err != nil {
		log.Error("Error closing idempotency store", zap.Error(err))
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}
	tel.shutdown(ctx, log)

	log.Info("Server exited gracefully")
}

type telemetryProviders struct {
	tracer   *telemetry.TracerProvider
	meter    *telemetry.MeterProvider
	logs     *telemetry.LoggerProvider
	profiler *telemetry.Profiler
}

// initTelemetry starts the OTEL providers and the Pyroscope profiler. A
// provider that fails to start is logged and replaced by a disabled one.
func initTelemetry(ctx context.Context, cfg *config.Config, log *zap.Logger) *telemetryProviders {
	otelCfg := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		Insecure:          cfg.Telemetry.Insecure,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    cfg.App.Version,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		MetricsInterval:   cfg.Telemetry.MetricsInterval,
		LogsEnabled:       cfg.Telemetry.LogsEnabled,
	}
	disabled := otelCfg
	disabled.Enabled = false

	tp := &telemetryProviders{}
	var err error

	if tp.tracer, err = telemetry.NewTracerProvider(ctx, otelCfg, log); err != nil {
		log.Error("Failed to initialize tracer provider", zap.Error(err))
		tp.tracer, _ = telemetry.NewTracerProvider(ctx, disabled, log)
	}
	if tp.meter, err = telemetry.NewMeterProvider(ctx, otelCfg, log); err != nil {
		log.Error("Failed to initialize meter provider", zap.Error(err))
		tp.meter, _ = telemetry.NewMeterProvider(ctx, disabled, log)
	}
	if tp.logs, err = telemetry.NewLoggerProvider(ctx, otelCfg, log); err != nil {
		log.Error("Failed to initialize logger provider", zap.Error(err))
		tp.logs, _ = telemetry.NewLoggerProvider(ctx, disabled, log)
	}

	tp.profiler, err = telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:              cfg.Profiling.Enabled,
		ServerAddress:        cfg.Profiling.ServerAddress,
		ApplicationName:      cfg.Profiling.ApplicationName,
		BasicAuthUser:        cfg.Profiling.BasicAuthUser,
		BasicAuthPassword:    cfg.Profiling.BasicAuthPassword,
		ProfileTypes:         cfg.Profiling.ProfileTypes,
		MutexProfileFraction: cfg.Profiling.MutexProfileFraction,
		BlockProfileRate:     cfg.Profiling.BlockProfileRate,
	}, log)
	if err != nil {
		log.Error("Failed to start profiler", zap.Error(err))
		tp.profiler, _ = telemetry.NewProfiler(telemetry.ProfilerConfig{}, log)
	}
	if cfg.Profiling.SpanProfiles && tp.profiler.IsEnabled() {
		if err := tp.tracer.EnableSpanProfiles(); err != nil {
			log.Warn("Failed to enable span profiles", zap.Error(err))
		}
	}
	return tp
}

// bridge tees the application logger into OTLP when log export is on
func (tp *telemetryProviders) bridge(log *zap.Logger, cfg *config.Config) *zap.Logger {
	if !tp.logs.IsEnabled() {
		return log
	}
	return tp.logs.Bridge(log, cfg.Telemetry.ServiceName, logger.ParseLevel(cfg.Log.Level))
}

func (tp *telemetryProviders) shutdown(ctx context.Context, log *zap.Logger) {
	if err := tp.profiler.Stop(); err != nil {
		log.Error("Error stopping profiler", zap.Error(err))
	}
	if err := tp.logs.Shutdown(ctx); err != nil {
		log.Error("Error shutting down logger provider", zap.Error(err))
	}
	if err := tp.meter.Shutdown(ctx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := tp.tracer.Shutdown(ctx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
}
