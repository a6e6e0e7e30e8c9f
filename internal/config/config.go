package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"sneakerflash/internal/models"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis
	RedisURL string

	// Server
	Port        string
	Environment string

	// Admin auth
	JWTSecret string

	// Ginee marketplace sync
	GineeBaseURL       string
	GineeAccessKey     string
	GineeSecretKey     string
	GineeWebhookSecret string

	// Storefront
	ShippingFee     decimal.Decimal
	DefaultPageSize int
	MaxPageSize     int

	// Cart
	CartTTLHours int
}

func Load() *Config {
	dbPort, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	defaultPageSize, _ := strconv.Atoi(getEnv("DEFAULT_PAGE_SIZE", "20"))
	maxPageSize, _ := strconv.Atoi(getEnv("MAX_PAGE_SIZE", "100"))
	cartTTLHours, _ := strconv.Atoi(getEnv("CART_TTL_HOURS", "72"))

	shippingFee, err := decimal.NewFromString(getEnv("SHIPPING_FEE", "15000"))
	if err != nil {
		shippingFee = decimal.Zero
	}

	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     dbPort,
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "sneakerflash"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		JWTSecret: getEnv("JWT_SECRET", "change-me-in-production"),

		GineeBaseURL:       getEnv("GINEE_BASE_URL", "https://api.ginee.com"),
		GineeAccessKey:     getEnv("GINEE_ACCESS_KEY", ""),
		GineeSecretKey:     getEnv("GINEE_SECRET_KEY", ""),
		GineeWebhookSecret: getEnv("GINEE_WEBHOOK_SECRET", ""),

		ShippingFee:     shippingFee,
		DefaultPageSize: defaultPageSize,
		MaxPageSize:     maxPageSize,

		CartTTLHours: cartTTLHours,
	}
}

func InitDB(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)

	var logLevel logger.LogLevel
	if cfg.Environment == "production" {
		logLevel = logger.Error
	} else {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto-migrate models to keep schema up to date. Adds missing columns,
	// never drops existing ones.
	log.Println("Running auto-migrations...")
	if err := db.AutoMigrate(
		&models.Category{},
		&models.Product{},
		&models.Voucher{},
		&models.VoucherUsage{},
		&models.Order{},
		&models.OrderItem{},
		&models.GineeWebhookEvent{},
	); err != nil {
		return nil, fmt.Errorf("failed to run auto-migrations: %w", err)
	}
	log.Println("Auto-migrations completed successfully")

	return db, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
