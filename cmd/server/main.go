package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	procurementapp "github.com/procurex/backend/internal/application/procurement"
	"github.com/procurex/backend/internal/infrastructure/config"
	"github.com/procurex/backend/internal/infrastructure/event"
	"github.com/procurex/backend/internal/infrastructure/logger"
	"github.com/procurex/backend/internal/infrastructure/persistence"
	"github.com/procurex/backend/internal/infrastructure/storage"
	"github.com/procurex/backend/internal/interfaces/http/handler"
	"github.com/procurex/backend/internal/interfaces/http/middleware"
	"github.com/procurex/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	// Initialize structured logger
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

	log.Info("Starting procurement server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Database connection
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database connection", zap.Error(err))
		}
	}()
	log.Info("Database connection established",
		zap.String("host", cfg.Database.Host),
		zap.Int("port", cfg.Database.Port),
		zap.String("dbname", cfg.Database.DBName),
	)

	// Repositories
	vendorRepo := persistence.NewGormVendorRepository(db.DB)
	requisitionRepo := persistence.NewGormPurchaseRequisitionRepository(db.DB)
	orderRepo := persistence.NewGormPurchaseOrderRepository(db.DB)
	receiveRepo := persistence.NewGormPurchaseReceiveRepository(db.DB)
	txRunner := persistence.NewGormTxRunner(db.DB)

	// Event bus with audit logging of every domain event
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewAuditLogHandler(log))
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := eventBus.Stop(stopCtx); err != nil {
			log.Error("Failed to stop event bus", zap.Error(err))
		}
	}()

	// Application services
	vendorService := procurementapp.NewVendorService(vendorRepo)
	requisitionService := procurementapp.NewRequisitionService(requisitionRepo)
	orderService := procurementapp.NewPurchaseOrderService(orderRepo, requisitionRepo, receiveRepo, vendorRepo, txRunner)
	orderService.SetEventPublisher(eventBus)
	receiveService := procurementapp.NewPurchaseReceiveService(receiveRepo, orderRepo, requisitionRepo, vendorRepo, txRunner)
	receiveService.SetEventPublisher(eventBus)

	// Requisition document storage: S3-compatible when configured, otherwise
	// an in-memory stub so the document endpoints stay usable in development
	if cfg.Storage.Enabled {
		objectStorage, err := storage.NewS3ObjectStorage(&cfg.Storage)
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		requisitionService.SetObjectStorage(objectStorage)
		log.Info("Object storage enabled",
			zap.String("bucket", cfg.Storage.Bucket),
			zap.String("region", cfg.Storage.Region),
		)
	} else {
		requisitionService.SetObjectStorage(storage.NewStubObjectStorage())
	}

	// Handlers
	vendorHandler := handler.NewVendorHandler(vendorService)
	requisitionHandler := handler.NewRequisitionHandler(requisitionService)
	orderHandler := handler.NewPurchaseOrderHandler(orderService)
	receiveHandler := handler.NewPurchaseReceiveHandler(receiveService, orderService)
	systemHandler := handler.NewSystemHandler()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Failed to set trusted proxies", zap.Error(err))
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	if cfg.HTTP.RateLimitRequests > 0 {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(limiter))
	}

	engine.GET("/health", healthHandler(db))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	ordersGroup := router.NewDomainGroup("orders", "/orders")
	ordersGroup.
		GET("/get/all", orderHandler.ListAll).
		GET("/get/purchase/order", orderHandler.Search).
		GET("/get", orderHandler.Get).
		PUT("/send/vendor", orderHandler.SendVendor).
		DELETE("/cancel", orderHandler.Cancel).
		DELETE("/delete", orderHandler.Delete)

	receivesGroup := router.NewDomainGroup("receives", "/receives")
	receivesGroup.
		POST("/create", receiveHandler.Create).
		PUT("/update", receiveHandler.Update).
		DELETE("/cancel", receiveHandler.Cancel).
		GET("/get/all", receiveHandler.ListAll).
		GET("/specific/get", receiveHandler.Get).
		GET("/get/vendors", receiveHandler.GetVendors).
		GET("/get/purchase/item", receiveHandler.GetPurchaseItems)

	requisitionsGroup := router.NewDomainGroup("requisitions", "/requisitions")
	requisitionsGroup.
		POST("/create", requisitionHandler.Create).
		GET("/get/all", requisitionHandler.ListAll).
		GET("/get", requisitionHandler.Get).
		PUT("/approve", requisitionHandler.Approve)
	requisitionsGroup.Group("documents", "/documents").
		POST("/upload-url", requisitionHandler.RequestDocumentUpload).
		GET("/download-url", requisitionHandler.DocumentDownloadURL)

	vendorsGroup := router.NewDomainGroup("vendors", "/vendors")
	vendorsGroup.
		POST("/create", vendorHandler.Create).
		GET("/get/all", vendorHandler.ListAll).
		GET("/get", vendorHandler.Get)

	systemGroup := router.NewDomainGroup("system", "/system")
	systemGroup.
		GET("/info", systemHandler.GetSystemInfo).
		GET("/ping", systemHandler.Ping)

	r.Register(ordersGroup).
		Register(receivesGroup).
		Register(requisitionsGroup).
		Register(vendorsGroup).
		Register(systemGroup)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}

// healthHandler reports liveness including a database ping
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			logger.GetGinLogger(c).Error("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "database unreachable",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}
