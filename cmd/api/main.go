package main

import (
	"log"

	_ "buildflow/api/swagger" // swagger docs
	"buildflow/internal/config"
	"buildflow/internal/database"
	"buildflow/internal/handler"
	"buildflow/internal/metrics"
	"buildflow/internal/middleware"
	"buildflow/internal/pdf"
	"buildflow/internal/repository"
	"buildflow/internal/scheduler"
	"buildflow/internal/service"
	"buildflow/internal/storage"
	"buildflow/internal/websocket"
	"buildflow/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// @title           Buildflow Procurement API
// @version         1.0
// @description     Construction procurement workflow: material requests, approvals, purchase orders, goods receipts and GST bills.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load("configs/.env")
	if err != nil {
		log.Fatalf("Config load failed: %v", err)
	}

	zlog := logger.Must(logger.New())
	defer zlog.Sync()

	db, err := database.NewConnection(cfg.Database.DSN())
	if err != nil {
		zlog.Fatal("database connection failed", zap.Error(err))
	}
	zlog.Info("connected to PostgreSQL")

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	jwtSecret := []byte(cfg.Auth.JWTSecret)

	store, err := storage.NewStore(cfg.Storage.Root, cfg.Storage.BaseURL, jwtSecret)
	if err != nil {
		zlog.Fatal("blob store init failed", zap.Error(err))
	}
	renderer := pdf.NewClient(cfg.PDF.GotenbergURL)

	// Set up dependencies (Repository -> Service -> Handler)
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)

	guard := service.NewAccessGuard(db)
	userService := service.NewUserService(userRepo, jwtSecret)
	projectService := service.NewProjectService(projectRepo, userRepo)
	mrService := service.NewMaterialRequestService(db, guard, wsHub)
	poService := service.NewPurchaseOrderService(db, guard, wsHub)
	grnService := service.NewGoodsReceiptService(db, guard, wsHub)
	billService := service.NewBillService(db, guard, wsHub)
	ocrService := service.NewOCRService(db, wsHub, zlog)
	pdfService := service.NewBillPDFService(db, guard, renderer, store)

	// Initialize Handlers
	userHandler := handler.NewUserHandler(userService)
	projectHandler := handler.NewProjectHandler(projectService)
	mrHandler := handler.NewMaterialRequestHandler(mrService)
	poHandler := handler.NewPurchaseOrderHandler(poService)
	grnHandler := handler.NewGoodsReceiptHandler(grnService)
	billHandler := handler.NewBillHandler(billService, pdfService, ocrService, guard, store, zlog)
	webhookHandler := handler.NewWebhookHandler(ocrService)
	fileHandler := handler.NewFileHandler(store)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.Server.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	userHandler.RegisterRoutes(router.Group(""))
	projectHandler.RegisterRoutes(router.Group(""))
	mrHandler.RegisterRoutes(router.Group(""))
	poHandler.RegisterRoutes(router.Group(""))
	grnHandler.RegisterRoutes(router.Group(""))
	billHandler.RegisterRoutes(router.Group(""))
	webhookHandler.RegisterRoutes(router.Group(""))
	fileHandler.RegisterRoutes(router.Group(""))

	// Pending-approvals digest
	sched, err := scheduler.New(db, wsHub, zlog, cfg.Reminders.CronSchedule)
	if err != nil {
		zlog.Fatal("scheduler init failed", zap.Error(err))
	}
	sched.Start()
	defer sched.Stop()

	zlog.Info("server listening", zap.String("port", cfg.Server.Port))
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		zlog.Fatal("server failed", zap.Error(err))
	}
}
