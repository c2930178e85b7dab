package main

import (
	_ "repairshop/api/swagger" // swagger docs

	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"repairshop/internal/config"
	"repairshop/internal/database"
	"repairshop/internal/handler"
	"repairshop/internal/logger"
	"repairshop/internal/metrics"
	"repairshop/internal/middleware"
	"repairshop/internal/queue"
	"repairshop/internal/repository"
	"repairshop/internal/service"
	"repairshop/internal/task"
	"repairshop/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Repair Shop API
// @version         1.0
// @description     Permission graph and cash register ledger of a multi-tenant repair shop platform.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, envLoaded := config.Load("configs/.env")
	log := logger.New(cfg.LogLevel, cfg.IsRelease())
	if !envLoaded {
		log.Info("No configs/.env file found or error loading it")
	}
	gin.SetMode(cfg.GinMode)

	db, err := database.NewConnection(cfg.DSN(), log)
	if err != nil {
		log.WithError(err).Fatal("Database connection failed")
	}
	log.Info("Connected to PostgreSQL successfully.")

	m := metrics.New(nil)

	redisClient := config.NewRedisClient(cfg)
	if redisClient == nil {
		log.Warn("Redis unavailable, permission cache disabled")
	} else {
		defer redisClient.Close()
	}

	publisher := queue.NewPublisher(cfg.RabbitMQURL, log)

	// Set up WebSocket Hub
	wsHub := websocket.NewHub(log)
	go wsHub.Run()
	defer wsHub.Stop()

	secret := middleware.JWTSecret(cfg.JWTSecret, cfg.IsRelease())
	auth := middleware.NewAuthenticator(secret)

	// Set up dependencies (Repository -> Service -> Handler)
	tx := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	menuRepo := repository.NewMenuRepository(db)
	registerRepo := repository.NewCashRegisterRepository(db)
	movementRepo := repository.NewMovementRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	productRepo := repository.NewProductRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	statisticsRepo := repository.NewStatisticsRepository(db)

	permissionCache := service.NewPermissionCache(redisClient, 5*time.Minute, log, m)
	auditService := service.NewAuditService(auditRepo)
	menuService := service.NewMenuService(menuRepo, tx, permissionCache, log)
	roleService := service.NewRoleService(roleRepo, menuRepo, userRepo, tx, auditService, permissionCache, log)
	registerService := service.NewCashRegisterService(registerRepo, movementRepo, userRepo, tx, auditService, publisher, m, log)
	movementService := service.NewMovementService(registerRepo, movementRepo, invoiceRepo, tx, auditService, publisher, m, log)
	userService := service.NewUserService(userRepo, roleRepo, tx, secret, cfg.TokenTTL, log)
	partnerService := service.NewPartnerService(userRepo, registerService, tx, log)
	invoiceService := service.NewInvoiceService(invoiceRepo)
	ticketService := service.NewTicketService(productRepo, invoiceService, tx, auditService, wsHub, log)
	statisticsService := service.NewStatisticsService(statisticsRepo, m)

	bootCtx, cancelBoot := context.WithTimeout(context.Background(), 30*time.Second)
	if err := menuService.SeedDefaultCatalog(bootCtx); err != nil {
		log.WithError(err).Error("Failed to seed the menu catalog")
	}
	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if err := userService.SeedAdmin(bootCtx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.WithError(err).Error("Failed to seed the admin account")
		}
	}
	cancelBoot()

	statsTask := task.NewLedgerStatsTask(statisticsService, cfg.StatsCron, log)
	if err := statsTask.Start(); err != nil {
		log.WithError(err).Fatal("Invalid STATS_CRON schedule")
	}

	// Initialize Handlers
	userHandler := handler.NewUserHandler(userService, cfg.TokenTTL, cfg.IsRelease(), log)
	partnerHandler := handler.NewPartnerHandler(partnerService, log)
	menuHandler := handler.NewMenuHandler(menuService, roleService, log)
	roleHandler := handler.NewRoleHandler(roleService, log)
	registerHandler := handler.NewCashRegisterHandler(registerService, log)
	movementHandler := handler.NewMovementHandler(movementService, log)
	productHandler := handler.NewProductHandler(ticketService, log)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService, log)
	auditHandler := handler.NewAuditHandler(auditService, log)
	statisticsHandler := handler.NewStatisticsHandler(statisticsService, log)
	wsHandler := handler.NewWsHandler(wsHub)

	// Set up Gin Router
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(log), m.Middleware())

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", middleware.RequestIDHeader}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	router.GET("/metrics", gin.WrapH(m.Handler()))

	// Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API Routing
	public := router.Group("")
	userHandler.RegisterPublicRoutes(public)
	partnerHandler.RegisterRoutes(public)

	protected := router.Group("")
	protected.Use(auth.Authenticate())
	userHandler.RegisterRoutes(protected)
	menuHandler.RegisterRoutes(protected)
	roleHandler.RegisterRoutes(protected)
	registerHandler.RegisterRoutes(protected)
	movementHandler.RegisterRoutes(protected)
	productHandler.RegisterRoutes(protected)
	invoiceHandler.RegisterRoutes(protected)
	auditHandler.RegisterRoutes(protected)
	statisticsHandler.RegisterRoutes(protected)
	wsHandler.RegisterRoutes(protected)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("Server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	statsTask.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}
	log.Info("Server exited")
}
