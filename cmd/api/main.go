package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "traveldesk/api/swagger" // swagger docs
	"traveldesk/internal/database"
	"traveldesk/internal/handler"
	"traveldesk/internal/i18n"
	"traveldesk/internal/middleware"
	"traveldesk/internal/notify"
	"traveldesk/internal/repository"
	"traveldesk/internal/roster"
	"traveldesk/internal/service"
	"traveldesk/internal/travel"
	"traveldesk/internal/websocket"
	"traveldesk/pkg/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Travel Desk API
// @version         1.0
// @description     Travel request lifecycle, employee documents and spend dashboards.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Config: %v", err)
	}
	gin.SetMode(cfg.GinMode)

	if err := i18n.Init(cfg.DefaultLocale); err != nil {
		log.Fatalf("i18n init failed: %v", err)
	}

	approvers, err := travel.ParseRoles(strings.Join(cfg.ApproverRoles, ","))
	if err != nil {
		log.Fatalf("Invalid APPROVER_ROLES: %v", err)
	}

	db, err := database.NewConnection(cfg.DSN(), !cfg.IsRelease())
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	if err := database.Migrate(db, cfg.DSN(), cfg.MigrationsPath); err != nil {
		log.Fatalf("Database migration failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run(ctx)

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	requestRepo := repository.NewTravelRequestRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	auth := middleware.NewAuth([]byte(cfg.JWTSecret), userRepo)
	policy := travel.NewApprovalPolicy(approvers)
	mailer := notify.New(notify.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})
	rosterClient := roster.NewClient(cfg.Roster.BaseURL, cfg.Roster.Token)

	travelService := service.NewTravelRequestService(service.TravelRequestDeps{
		Tx:       txManager,
		Requests: requestRepo,
		Bookings: bookingRepo,
		Users:    userRepo,
		Projects: projectRepo,
		Audit:    auditRepo,
		Policy:   policy,
		Events:   wsHub,
		Mail:     mailer,
	})
	documentService := service.NewDocumentService(txManager, documentRepo, userRepo, auditRepo, time.Now)
	dashboardService := service.NewDashboardService(requestRepo, userRepo, projectRepo, documentRepo, policy, time.Now)
	directoryService := service.NewDirectoryService(txManager, userRepo, projectRepo, auditRepo, rosterClient)
	auditService := service.NewAuditService(auditRepo)

	if cfg.Roster.BaseURL != "" && cfg.Roster.SyncInterval > 0 {
		log.Printf("Scheduled roster sync every %s", cfg.Roster.SyncInterval)
		go service.RunRosterSync(ctx, directoryService, cfg.Roster.SyncInterval)
	}

	// Initialize Handlers
	travelHandler := handler.NewTravelRequestHandler(travelService, auth)
	documentHandler := handler.NewDocumentHandler(documentService, auth)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, auth)
	directoryHandler := handler.NewDirectoryHandler(directoryService, auth)
	auditHandler := handler.NewAuditHandler(auditService, auth)

	// Set up Gin Router
	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "Accept-Language"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))
	router.Use(middleware.Locale())

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "DB_UNAVAILABLE"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "OK", "ws_clients": wsHub.ClientCount()})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, auth, c)
	})

	// API Routing
	travelHandler.RegisterRoutes(router.Group(""))
	documentHandler.RegisterRoutes(router.Group(""))
	dashboardHandler.RegisterRoutes(router.Group(""))
	directoryHandler.RegisterRoutes(router.Group(""))
	auditHandler.RegisterRoutes(router.Group(""))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
}
