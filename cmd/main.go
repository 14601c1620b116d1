package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"billmart/internal/caching"
	"billmart/internal/handlers"
	"billmart/internal/jobs"
	"billmart/internal/jobs/background"
	"billmart/internal/middleware"
	"billmart/internal/repositories"
	"billmart/internal/services"
	"billmart/pkg/database"
)

const version = "1.0.0"

func main() {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := database.NewPool(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable is required")
	}

	// Redis configuration
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if redisDBStr := os.Getenv("REDIS_DB"); redisDBStr != "" {
		if db, err := strconv.Atoi(redisDBStr); err == nil {
			redisDB = db
		}
	}

	// MinIO configuration
	minioEndpoint := os.Getenv("MINIO_ENDPOINT")
	if minioEndpoint == "" {
		minioEndpoint = "localhost:9000"
	}
	minioAccessKey := os.Getenv("MINIO_ACCESS_KEY")
	if minioAccessKey == "" {
		minioAccessKey = "minioadmin"
	}
	minioSecretKey := os.Getenv("MINIO_SECRET_KEY")
	if minioSecretKey == "" {
		minioSecretKey = "minioadmin"
	}
	minioBucket := os.Getenv("MINIO_BUCKET")
	if minioBucket == "" {
		minioBucket = "billmart-receipts"
	}
	useSSL := os.Getenv("MINIO_USE_SSL") == "true"

	receiptStorage, err := services.NewMinioReceiptStorage(minioEndpoint, minioAccessKey, minioSecretKey, minioBucket, useSSL)
	if err != nil {
		log.Fatalf("Failed to initialize receipt storage: %v", err)
	}
	if err := receiptStorage.EnsureBucketExists(context.Background()); err != nil {
		log.Printf("WARN: Failed to ensure receipt bucket exists: %v", err)
	}

	// Repositories
	productRepo := repositories.NewProductRepo(pool)
	clientRepo := repositories.NewClientRepo(pool)
	expenseRepo := repositories.NewExpenseRepo(pool)
	documentRepo := repositories.NewDocumentRepo(pool)
	paymentRepo := repositories.NewPaymentRepo(pool)

	// Cache service
	cacheSvc := caching.NewRedisCacheService(redisAddr, redisPassword, redisDB)

	// Services
	productSvc := services.NewProductService(productRepo, cacheSvc)
	clientSvc := services.NewClientService(clientRepo)
	expenseSvc := services.NewExpenseService(expenseRepo, receiptStorage)
	documentSvc := services.NewDocumentService(documentRepo, productRepo, clientRepo)
	paymentSvc := services.NewPaymentService(paymentRepo, documentRepo)
	bulkPaymentSvc := services.NewBulkPaymentService(documentRepo, paymentSvc)

	// Handlers
	healthHandlers := handlers.NewHealthHandlers(pool)
	productHandlers := handlers.NewProductHandlers(productSvc)
	clientHandlers := handlers.NewClientHandlers(clientSvc)
	expenseHandlers := handlers.NewExpenseHandlers(expenseSvc)
	documentHandlers := handlers.NewDocumentHandlers(documentSvc)
	paymentHandlers := handlers.NewPaymentHandlers(paymentSvc, bulkPaymentSvc)

	// Background jobs
	alertSvc := jobs.NewStockAlertService(productRepo, cacheSvc)
	scheduler := background.NewJobScheduler(alertSvc)
	if err := scheduler.Start(); err != nil {
		log.Printf("Failed to start job scheduler: %v", err)
	}

	e := echo.New()

	// Global middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	// Health endpoints (no auth required)
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/live", healthHandlers.LivenessCheck)

	// Protected API routes
	v1 := e.Group("/v1")
	v1.Use(middleware.JWTMiddleware(jwtSecret))

	productHandlers.RegisterRoutes(v1)
	clientHandlers.RegisterRoutes(v1)
	expenseHandlers.RegisterRoutes(v1)
	documentHandlers.RegisterRoutes(v1)
	paymentHandlers.RegisterRoutes(v1)

	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.Fatalf("Invalid port %s: %v", portStr, err)
	}

	go func() {
		log.Printf("Billmart server v%s starting on port %d", version, port)
		if err := e.Start(fmt.Sprintf(":%d", port)); err != nil {
			log.Printf("Server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down")
	if err := scheduler.Stop(); err != nil {
		log.Printf("Failed to stop job scheduler: %v", err)
	}
	if err := e.Shutdown(context.Background()); err != nil {
		log.Printf("Server shutdown failed: %v", err)
	}
}
