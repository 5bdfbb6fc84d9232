package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	catalogapp "github.com/lastmile/backend/internal/application/catalog"
	courierapp "github.com/lastmile/backend/internal/application/courier"
	identityapp "github.com/lastmile/backend/internal/application/identity"
	importapp "github.com/lastmile/backend/internal/application/import"
	orderapp "github.com/lastmile/backend/internal/application/order"
	promotionapp "github.com/lastmile/backend/internal/application/promotion"
	settlementapp "github.com/lastmile/backend/internal/application/settlement"
	shipmentapp "github.com/lastmile/backend/internal/application/shipment"
	"github.com/lastmile/backend/internal/domain/pricing"
	"github.com/lastmile/backend/internal/domain/promotion"
	"github.com/lastmile/backend/internal/infrastructure/auth"
	"github.com/lastmile/backend/internal/infrastructure/cache"
	"github.com/lastmile/backend/internal/infrastructure/config"
	"github.com/lastmile/backend/internal/infrastructure/logger"
	"github.com/lastmile/backend/internal/infrastructure/payment"
	"github.com/lastmile/backend/internal/infrastructure/persistence"
	"github.com/lastmile/backend/internal/infrastructure/telemetry"
	"github.com/lastmile/backend/internal/interfaces/http/handler"
	"github.com/lastmile/backend/internal/interfaces/http/middleware"
	"github.com/lastmile/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//	@title			Last Mile Backend API
//	@version		1.0
//	@description	Back office API for last-mile delivery: orders, shipments, COD settlement and merchant payouts

//	@contact.name	API Support
//	@contact.url	https://github.com/lastmile/backend

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
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
		_ = logger.Sync(log)
	}()

	log.Info("Starting Last Mile Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize tracing and metrics (no-op providers when disabled)
	telemetryCfg := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetryCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(ctx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	meterProvider, err := telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(ctx); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

	// Continuous profiling (no-op when disabled)
	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:             cfg.Telemetry.ProfilerEnabled,
		ServerAddress:       cfg.Telemetry.ProfilerAddress,
		ApplicationName:     cfg.App.Name,
		ProfileCPU:          true,
		ProfileAllocObjects: true,
		ProfileAllocSpace:   true,
		ProfileInuseObjects: true,
		ProfileInuseSpace:   true,
		ProfileGoroutines:   true,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	defer func() {
		if err := profiler.Stop(); err != nil {
			log.Error("Error stopping profiler", zap.Error(err))
		}
	}()

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Register query tracing on the GORM connection
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:    true,
			LogFullSQL: cfg.Telemetry.DBLogFullSQL,
		}, log)
		if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
			log.Warn("Failed to register database tracing", zap.Error(err))
		}
	}

	// Initialize repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	officeRepo := persistence.NewGormOfficeRepository(db.DB)
	employeeRepo := persistence.NewGormEmployeeRepository(db.DB)
	vehicleRepo := persistence.NewGormVehicleRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	assignmentRepo := persistence.NewGormShipperAssignmentRepository(db.DB)
	promotionRepo := persistence.NewGormPromotionRepository(db.DB)
	userPromotionRepo := persistence.NewGormUserPromotionRepository(db.DB)
	historyRepo := persistence.NewGormImportHistoryRepository(db.DB)
	notifier := persistence.NewGormNotificationSink(db.DB, log)

	// Transaction scopes
	orderScope := persistence.NewGormOrderTransactionScope(db.DB)
	shipmentScope := persistence.NewGormShipmentTransactionScope(db.DB)
	courierScope := persistence.NewGormCourierTransactionScope(db.DB)
	settlementScope := persistence.NewGormSettlementTransactionScope(db.DB)

	// Pricing engine over the cached rate tables
	rateStore := cache.NewRateCache(persistence.NewGormRateStore(db.DB), cache.DefaultRateCacheTTL)
	classifier := pricing.NewStaticRegionClassifier(pricing.DefaultCityRegions())
	pricingEngine := pricing.NewEngine(rateStore, classifier)

	// Promotion eligibility evaluator
	eligibility := promotion.NewEvaluator(persistence.NewGormUsageReader(db.DB))

	// VNPay gateway for merchant settlement payments
	gateway, err := payment.NewVNPayAdapter(&payment.VNPayConfig{
		TmnCode:    cfg.Payment.TmnCode,
		HashSecret: cfg.Payment.HashSecret,
		ReturnURL:  cfg.Payment.ReturnURL,
		IsSandbox:  cfg.App.Env != "production",
		Locale:     "vn",
	})
	if err != nil {
		log.Fatal("Failed to initialize payment gateway", zap.Error(err))
	}

	// Idempotency store for gateway callback deduplication.
	// Falls back to in-memory when Redis is unreachable.
	idempotencyStore, err := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log)).CreateStore()
	if err != nil {
		log.Fatal("Failed to initialize idempotency store", zap.Error(err))
	}

	// Token blacklist for logout revocation
	var blacklist auth.TokenBlacklist
	if redisBlacklist, err := auth.NewRedisTokenBlacklist(auth.RedisTokenBlacklistConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}); err != nil {
		log.Warn("Redis token blacklist unavailable, using in-memory fallback", zap.Error(err))
		blacklist = auth.NewInMemoryTokenBlacklist()
	} else {
		blacklist = redisBlacklist
	}

	// Initialize application services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, jwtService, identityapp.DefaultAuthServiceConfig(), log)
	authService.SetTokenBlacklist(blacklist)
	userService := identityapp.NewUserService(userRepo, log)
	productService := catalogapp.NewProductService(productRepo, log)
	orderService := orderapp.NewOrderService(orderScope, officeRepo, pricingEngine, eligibility, notifier, log)
	shipmentService := shipmentapp.NewShipmentService(shipmentScope, employeeRepo, vehicleRepo, assignmentRepo, log)
	assignmentService := courierapp.NewAssignmentService(courierScope, employeeRepo, log)
	batchService := settlementapp.NewBatchService(settlementScope, notifier, log)
	merchantService := settlementapp.NewMerchantService(
		settlementScope,
		persistence.NewGormBalanceReader(db.DB),
		gateway,
		idempotencyStore,
		notifier,
		log,
	)
	promotionService := promotionapp.NewPromotionService(promotionRepo, userPromotionRepo, eligibility, notifier, log)
	productImportService := importapp.NewProductImportService(productRepo, log)
	orderImportService := importapp.NewOrderImportService(orderService, log)
	historyService := importapp.NewImportHistoryService(historyRepo)

	// Fail imports orphaned by the previous shutdown.
	if n, err := historyService.FailOrphanedImports(context.Background()); err != nil {
		log.Warn("Failed to clean up orphaned imports", zap.Error(err))
	} else if n > 0 {
		log.Info("Failed orphaned imports left from previous run", zap.Int("count", n))
	}

	// Initialize HTTP handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	productHandler := handler.NewProductHandler(productService)
	orderHandler := handler.NewOrderHandler(orderService)
	shipmentHandler := handler.NewShipmentHandler(shipmentService)
	assignmentHandler := handler.NewAssignmentHandler(assignmentService)
	settlementHandler := handler.NewSettlementHandler(batchService)
	merchantHandler := handler.NewMerchantSettlementHandler(merchantService)
	promotionHandler := handler.NewPromotionHandler(promotionService)
	importHandler := handler.NewImportHandler(productImportService, orderImportService, historyService)
	importHistoryHandler := handler.NewImportHistoryHandler(historyService)
	systemHandler := handler.NewSystemHandler()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Tracing/Metrics - Telemetry (if enabled)
	// 5. Security - Add security headers
	// 6. CORS - Handle cross-origin requests
	// 7. BodyLimit - Limit request body size
	// 8. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	if cfg.Telemetry.Enabled {
		engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     true,
		}))
		engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
			MeterProvider: meterProvider,
			ServiceName:   cfg.Telemetry.ServiceName,
			Enabled:       true,
		}))
	}
	if cfg.Telemetry.ProfilerEnabled {
		engine.Use(middleware.Profiling())
	}
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Rate limiting (if enabled)
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Apply JWT authentication middleware to API routes.
	// Gateway callbacks are verified by HMAC signature instead of a bearer
	// token, so they stay outside authentication.
	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
		SkipPaths: []string{
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		SkipPathPrefixes: []string{
			"/api/v1/payment/callback",
		},
		Logger: log,
	}
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	// Identity domain (authentication, user management)
	authRoutes := router.NewDomainGroup("auth", "/auth")
	authRoutes.POST("/login", authHandler.Login)
	authRoutes.POST("/refresh", authHandler.RefreshToken)
	authRoutes.POST("/logout", authHandler.Logout)
	authRoutes.GET("/me", authHandler.GetCurrentUser)
	authRoutes.PUT("/password", authHandler.ChangePassword)

	userRoutes := router.NewDomainGroup("users", "/users")
	userRoutes.POST("", userHandler.Create)
	userRoutes.GET("", userHandler.List)
	userRoutes.GET("/:id", userHandler.GetByID)
	userRoutes.PUT("/:id", userHandler.Update)
	userRoutes.PUT("/:id/role", userHandler.SetRole)
	userRoutes.POST("/:id/activate", userHandler.Activate)
	userRoutes.POST("/:id/deactivate", userHandler.Deactivate)
	userRoutes.POST("/:id/unlock", userHandler.Unlock)
	userRoutes.POST("/:id/reset-password", userHandler.ResetPassword)

	// Catalog domain (shop products)
	productRoutes := router.NewDomainGroup("products", "/products")
	productRoutes.POST("", productHandler.Create)
	productRoutes.GET("", productHandler.List)
	productRoutes.GET("/:id", productHandler.GetByID)
	productRoutes.PUT("/:id", productHandler.Update)
	productRoutes.PUT("/:id/stock", productHandler.SetStock)
	productRoutes.POST("/:id/activate", productHandler.Activate)
	productRoutes.POST("/:id/deactivate", productHandler.Deactivate)

	// Order domain (lifecycle, fee quotes, history)
	orderRoutes := router.NewDomainGroup("orders", "/orders")
	orderRoutes.POST("", orderHandler.Create)
	orderRoutes.GET("", orderHandler.ListByOffice)
	orderRoutes.GET("/mine", orderHandler.ListMine)
	orderRoutes.POST("/quote", orderHandler.QuoteFee)
	orderRoutes.GET("/tracking/:tracking_number", orderHandler.GetByTrackingNumber)
	orderRoutes.GET("/:id", orderHandler.GetByID)
	orderRoutes.POST("/:id/transition", orderHandler.Transition)
	orderRoutes.POST("/:id/cancel", orderHandler.Cancel)
	orderRoutes.PUT("/:id/weight", orderHandler.CorrectWeight)
	orderRoutes.PUT("/:id/address", orderHandler.UpdateAddress)
	orderRoutes.PUT("/:id/cod-amount", orderHandler.UpdateCODAmount)
	orderRoutes.PUT("/:id/note", orderHandler.UpdateNote)
	orderRoutes.GET("/:id/history", orderHandler.GetHistory)

	// Shipment domain (manifests, dispatch)
	shipmentRoutes := router.NewDomainGroup("shipments", "/shipments")
	shipmentRoutes.POST("", shipmentHandler.Create)
	shipmentRoutes.GET("", shipmentHandler.ListByOffice)
	shipmentRoutes.GET("/mine", shipmentHandler.ListMine)
	shipmentRoutes.GET("/code/:code", shipmentHandler.GetByCode)
	shipmentRoutes.GET("/:id", shipmentHandler.GetByID)
	shipmentRoutes.PUT("/:id/employee", shipmentHandler.AssignEmployee)
	shipmentRoutes.PUT("/:id/vehicle", shipmentHandler.AssignVehicle)
	shipmentRoutes.POST("/:id/orders", shipmentHandler.AttachOrders)
	shipmentRoutes.DELETE("/:id/orders/:order_id", shipmentHandler.RemoveOrder)
	shipmentRoutes.POST("/:id/depart", shipmentHandler.Depart)
	shipmentRoutes.POST("/:id/complete", shipmentHandler.Complete)
	shipmentRoutes.POST("/:id/cancel", shipmentHandler.Cancel)

	// Courier domain (shipper area assignments)
	assignmentRoutes := router.NewDomainGroup("assignments", "/assignments")
	assignmentRoutes.POST("", assignmentHandler.Create)
	assignmentRoutes.GET("/shipper/:shipper_id", assignmentHandler.ListByShipper)
	assignmentRoutes.GET("/:id", assignmentHandler.GetByID)
	assignmentRoutes.POST("/:id/terminate", assignmentHandler.Terminate)
	assignmentRoutes.DELETE("/:id", assignmentHandler.Delete)

	// Settlement domain: shipper COD submissions and batches
	submissionRoutes := router.NewDomainGroup("submissions", "/submissions")
	submissionRoutes.POST("", settlementHandler.CreateSubmission)
	submissionRoutes.GET("/mine", settlementHandler.ListMySubmissions)
	submissionRoutes.GET("/shipper/:shipper_id", settlementHandler.ListShipperSubmissions)
	submissionRoutes.PUT("/:id/actual", settlementHandler.DeclareActual)
	submissionRoutes.POST("/:id/adjust", settlementHandler.AdjustSubmission)

	batchRoutes := router.NewDomainGroup("submission-batches", "/submission-batches")
	batchRoutes.POST("", settlementHandler.CreateBatch)
	batchRoutes.GET("/shipper/:shipper_id", settlementHandler.ListShipperBatches)
	batchRoutes.GET("/:id", settlementHandler.GetBatch)
	batchRoutes.GET("/:id/submissions", settlementHandler.ListBatchSubmissions)
	batchRoutes.POST("/:id/check", settlementHandler.StartChecking)
	batchRoutes.POST("/:id/resolve", settlementHandler.ResolveBatch)

	// Settlement domain: merchant settlement batches and gateway payments
	settlementRoutes := router.NewDomainGroup("settlements", "/settlements")
	settlementRoutes.POST("", merchantHandler.CreateBatch)
	settlementRoutes.GET("/shop/:shop_id", merchantHandler.ListByShop)
	settlementRoutes.GET("/:id", merchantHandler.GetBatch)
	settlementRoutes.POST("/:id/payments", merchantHandler.CreatePayment)

	// Gateway callbacks, outside authentication
	paymentRoutes := router.NewDomainGroup("payment", "/payment")
	paymentRoutes.GET("/callback/vnpay/ipn", merchantHandler.HandleIPN)
	paymentRoutes.GET("/callback/vnpay/return", merchantHandler.HandleReturn)

	// Promotion domain
	promotionRoutes := router.NewDomainGroup("promotions", "/promotions")
	promotionRoutes.POST("", promotionHandler.Create)
	promotionRoutes.GET("", promotionHandler.ListActive)
	promotionRoutes.GET("/code/:code", promotionHandler.GetByCode)
	promotionRoutes.GET("/:id", promotionHandler.GetByID)
	promotionRoutes.POST("/:id/activate", promotionHandler.Activate)
	promotionRoutes.POST("/:id/deactivate", promotionHandler.Deactivate)
	promotionRoutes.POST("/:id/grants", promotionHandler.Grant)
	promotionRoutes.POST("/:id/eligibility", promotionHandler.CheckEligibility)

	// System routes
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	// Register all domain groups
	r.Register(authRoutes).
		Register(userRoutes).
		Register(productRoutes).
		Register(orderRoutes).
		Register(shipmentRoutes).
		Register(assignmentRoutes).
		Register(submissionRoutes).
		Register(batchRoutes).
		Register(settlementRoutes).
		Register(paymentRoutes).
		Register(promotionRoutes).
		Register(systemRoutes).
		Register(importHandler).
		Register(importHistoryHandler)

	// Setup routes
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		body := gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		}
		if stats, err := db.Stats(); err == nil {
			body["pool"] = gin.H{
				"open":   stats.OpenConnections,
				"in_use": stats.InUse,
				"idle":   stats.Idle,
			}
		}
		c.JSON(http.StatusOK, body)
	}
}
