package app

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"stockroom/internal/config"
	"stockroom/internal/handlers"
	"stockroom/internal/pdf"
	"stockroom/internal/realtime"
	"stockroom/internal/repositories"
	"stockroom/internal/routes"
	"stockroom/internal/services"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	_ "stockroom/docs"
)

func Run() {
	cfg := config.LoadConfig()

	// === DB ===
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Failed to close database: %v", err)
		}
	}()

	// === Repos ===
	userRepo := repositories.NewUserRepository(db)
	codeRepo := repositories.NewLoginCodeRepository(db)
	productRepo := repositories.NewProductRepository(db)
	stockLogRepo := repositories.NewStockLogRepository(db)
	saleRepo := repositories.NewSaleRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)
	aiReportRepo := repositories.NewAIReportRepository(db)

	// === Services ===
	emailService := services.NewEmailService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromEmail,
		cfg.Shop.Name,
	)

	authService := services.NewAuthService(userRepo, cfg.Auth.JWTSecret, cfg.AccessTTL(), cfg.RefreshTTL())
	userService := services.NewUserService(userRepo, authService)

	codeService := services.NewLoginCodeService(codeRepo, userRepo, emailService, authService, services.LoginCodeConfig{
		CodeLength:   cfg.Auth.CodeLength,
		TTL:          cfg.CodeTTL(),
		MaxAttempts:  cfg.Auth.CodeMaxAttempts,
		LockDuration: cfg.CodeLockDuration(),
		ResendLimit:  cfg.Auth.CodeResendLimit,
		ResendWindow: cfg.CodeResendWindow(),
		DefaultRole:  cfg.Auth.DefaultRole,
	})

	googleService := services.NewGoogleAuthService(userRepo, authService, cfg.Auth.GoogleClientID, cfg.Auth.DefaultRole)

	// Telegram alerts are optional
	var telegramService *services.TelegramService
	if cfg.Telegram.Enabled && cfg.Telegram.BotToken != "" {
		telegramService, err = services.NewTelegramService(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			log.Printf("Telegram disabled: %v", err)
		}
	}

	hub := realtime.NewNotificationHub()
	notificationService := services.NewNotificationService(
		notificationRepo, userRepo, hub, emailService, telegramService, cfg.Email.AdminEmail,
	)

	productService := services.NewProductService(productRepo, stockLogRepo, saleRepo, notificationService)

	pdfGen := pdf.NewReportGenerator(cfg.Shop.Name)
	reportService := services.NewReportService(productRepo, stockLogRepo, pdfGen)

	ollama := services.NewOllamaClient(cfg.Ollama.BaseURL, cfg.Ollama.Model, time.Duration(cfg.Ollama.TimeoutSeconds)*time.Second)
	aiService := services.NewAIService(ollama, aiReportRepo, productRepo, stockLogRepo, saleRepo, notificationService)

	// === Handlers ===
	authHandler := handlers.NewAuthHandler(codeService, authService, googleService)
	userHandler := handlers.NewUserHandler(userService)
	productHandler := handlers.NewProductHandler(productService)
	saleHandler := handlers.NewSaleHandler(productService, saleRepo)
	stockLogHandler := handlers.NewStockLogHandler(stockLogRepo)
	notificationHandler := handlers.NewNotificationHandler(notificationRepo)
	reportHandler := handlers.NewReportHandler(reportService, emailService)
	aiHandler := handlers.NewAIHandler(aiService)
	wsHandler := handlers.NewWSHandler(hub, []byte(cfg.Auth.JWTSecret))

	// Hourly cleanup of used and stale login codes.
	retention := time.Duration(cfg.Auth.CodeCleanupDays) * 24 * time.Hour
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			n, err := codeService.Sweep(retention, time.Now())
			if err != nil {
				log.Printf("[auth][sweep] failed: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("[auth][sweep] removed %d stale login codes", n)
			}
		}
	}()

	// === Gin ===
	router := gin.Default()
	router.Use(corsMiddleware())

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.SetupRoutes(
		router,
		[]byte(cfg.Auth.JWTSecret),
		authHandler,
		userHandler,
		productHandler,
		saleHandler,
		stockLogHandler,
		notificationHandler,
		reportHandler,
		aiHandler,
		wsHandler,
	)

	// === Run ===
	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Server listening on %s", listenAddr)
	if err := router.Run(listenAddr); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
