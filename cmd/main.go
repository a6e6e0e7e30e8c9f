package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"sneakerflash/internal/clients/ginee"
	"sneakerflash/internal/config"
	"sneakerflash/internal/events"
	"sneakerflash/internal/handlers"
	"sneakerflash/internal/middleware"
	"sneakerflash/internal/repository"
	"sneakerflash/internal/services"
)

// @title SneakerFlash API
// @version 1.0
// @description E-commerce backend: catalog, spreadsheet import/export, vouchers, cart/checkout, order tracking and Ginee marketplace sync.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := config.Load()

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if cfg.Environment == "production" {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(logrus.DebugLevel)
	}

	// Initialize Redis client
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Printf("WARNING: Failed to parse Redis URL: %v (falling back to localhost)", err)
		redisOpts = &redis.Options{Addr: "localhost:6379"}
	}
	redisClient := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("WARNING: Failed to connect to Redis: %v (caching and carts degraded)", err)
	} else {
		log.Println("Redis connected")
	}
	cancel()

	// Repositories
	productsRepo := repository.NewProductsRepository(db, redisClient)
	voucherRepo := repository.NewVoucherRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	webhookRepo := repository.NewWebhookRepository(db)
	cartRepo := repository.NewCartRepository(redisClient, time.Duration(cfg.CartTTLHours)*time.Hour)

	// Events + external clients
	publisher := events.NewPublisher(redisClient, logger)
	gineeClient := ginee.NewClient(cfg.GineeBaseURL, cfg.GineeAccessKey, cfg.GineeSecretKey, logger)

	// Services
	importSvc := services.NewImportService(productsRepo, productsRepo, logger)
	voucherSvc := services.NewVoucherService(voucherRepo, logger)
	cartSvc := services.NewCartService(cartRepo, productsRepo)
	orderSvc := services.NewOrderService(orderRepo, cartSvc, voucherSvc, publisher, logger, cfg.ShippingFee)
	gineeSvc := services.NewGineeService(webhookRepo, productsRepo, orderRepo, gineeClient, publisher, logger, cfg.GineeWebhookSecret)

	// Handlers
	productsHandler := handlers.NewProductsHandler(productsRepo, importSvc, logger)
	categoriesHandler := handlers.NewCategoriesHandler(productsRepo, logger)
	importHandler := handlers.NewImportHandler(importSvc, publisher, logger)
	exportHandler := handlers.NewExportHandler(productsRepo, logger)
	vouchersHandler := handlers.NewVouchersHandler(voucherSvc, voucherRepo, logger)
	cartHandler := handlers.NewCartHandler(cartSvc, logger)
	ordersHandler := handlers.NewOrdersHandler(orderSvc, logger)
	webhookHandler := handlers.NewWebhookHandler(gineeSvc, logger)
	healthHandler := handlers.NewHealthHandler(db, redisClient)

	// Router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.Metrics())
	router.Use(middleware.CORS(corsOrigins()))

	router.GET("/health", healthHandler.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Admin API
	api := router.Group("/api/v1")
	api.Use(middleware.AdminAuth(cfg.JWTSecret))
	{
		api.GET("/products", productsHandler.ListProducts(true))
		api.POST("/products", productsHandler.CreateProduct)
		api.GET("/products/export", exportHandler.ExportProducts)
		api.GET("/products/import/template", importHandler.GetImportTemplate)
		api.POST("/products/import", importHandler.ImportProducts)
		api.GET("/products/:id", productsHandler.GetProduct)
		api.PUT("/products/:id", productsHandler.UpdateProduct)
		api.DELETE("/products/:id", productsHandler.DeleteProduct)

		api.GET("/categories", categoriesHandler.ListCategories)
		api.POST("/categories", categoriesHandler.CreateCategory)
		api.PUT("/categories/:id", categoriesHandler.UpdateCategory)
		api.DELETE("/categories/:id", categoriesHandler.DeleteCategory)

		api.GET("/vouchers", vouchersHandler.ListVouchers)
		api.POST("/vouchers", vouchersHandler.CreateVoucher)
		api.GET("/vouchers/:id", vouchersHandler.GetVoucher)
		api.PUT("/vouchers/:id", vouchersHandler.UpdateVoucher)
		api.DELETE("/vouchers/:id", vouchersHandler.DeleteVoucher)
		api.GET("/vouchers/:id/usage", vouchersHandler.GetVoucherUsage)

		api.GET("/orders", ordersHandler.ListOrders)
		api.GET("/orders/:id", ordersHandler.GetOrder)
		api.PUT("/orders/:id/status", ordersHandler.UpdateOrderStatus)

		api.POST("/ginee/sync", webhookHandler.SyncCatalog)
		api.POST("/ginee/stock/:sku", webhookHandler.PushStock)
	}

	// Public storefront API
	storefront := router.Group("/api/v1/storefront")
	{
		storefront.GET("/products", productsHandler.ListProducts(false))
		storefront.GET("/products/:slug", productsHandler.GetProductBySlug)
		storefront.GET("/categories", categoriesHandler.ListCategories)

		storefront.POST("/cart", cartHandler.CreateCart)
		storefront.GET("/cart/:id", cartHandler.GetCart)
		storefront.DELETE("/cart/:id", cartHandler.ClearCart)
		storefront.POST("/cart/:id/items", cartHandler.AddItem)
		storefront.PUT("/cart/:id/items/:productId", cartHandler.UpdateItem)
		storefront.DELETE("/cart/:id/items/:productId", cartHandler.RemoveItem)

		storefront.POST("/vouchers/validate", vouchersHandler.ValidateVoucher)
		storefront.POST("/checkout", ordersHandler.Checkout)
		storefront.POST("/orders/track", ordersHandler.TrackOrder)
	}

	// Marketplace webhooks, authenticated by signature instead of JWT
	router.POST("/webhooks/ginee", webhookHandler.HandleGineeWebhook)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.WithField("port", cfg.Port).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed:", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("forced shutdown")
	}
}

func corsOrigins() []string {
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		parts := strings.Split(origins, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return []string{
		"http://localhost:3000", // storefront
		"http://localhost:3001", // admin panel
	}
}
