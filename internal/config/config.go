package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort        string
	AppEnv          string
	LogLevel        string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	StoreDriver          string // memory | sqlite | mongo
	SQLitePath           string
	SQLiteMigrationsPath string
	MongoURI             string
	MongoDBName          string
	MongoMaxPoolSize     int
	RedisAddr            string
	RedisPassword        string

	OrdersDriver   string // store | postgres
	DBHost         string
	DBPort         int
	DBUser         string
	DBPassword     string
	DBName         string
	MigrationsPath string

	CatalogURL string

	PaymentDriver      string // simulated | razorpay
	RazorpayKeyID      string
	RazorpayKeySecret  string
	PaymentSuccessRate int
	PaymentIntentTTL   time.Duration
	Currency           string

	JWTSecret        string
	KafkaBrokers     []string
	SessionCacheSize int
}

// Load reads the environment, after merging in a .env file when one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		AppEnv:          getEnv("APP_ENV", "production"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		RequestTimeout:  getDuration("REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),

		StoreDriver:          getEnv("STORE_DRIVER", "sqlite"),
		SQLitePath:           getEnv("SQLITE_PATH", "storefront.db"),
		SQLiteMigrationsPath: getEnv("SQLITE_MIGRATIONS_PATH", "./internal/repository/migrations/sqlite"),
		MongoURI:             getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:          getEnv("MONGO_DB_NAME", "storefront"),
		MongoMaxPoolSize:     getInt("MONGO_MAX_POOL_SIZE", 50),
		RedisAddr:            getEnv("REDIS_ADDR", ""),
		RedisPassword:        getEnv("REDIS_PASSWORD", ""),

		OrdersDriver:   getEnv("ORDERS_DRIVER", "store"),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getInt("DB_PORT", 5432),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", "postgres"),
		DBName:         getEnv("DB_NAME", "storefront"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "./internal/repository/migrations/postgres"),

		CatalogURL: getEnv("CATALOG_URL", "https://fakestoreapi.com"),

		PaymentDriver:      getEnv("PAYMENT_DRIVER", "simulated"),
		RazorpayKeyID:      getEnv("RAZORPAY_KEY_ID", ""),
		RazorpayKeySecret:  getEnv("RAZORPAY_KEY_SECRET", ""),
		PaymentSuccessRate: getInt("PAYMENT_SUCCESS_RATE", 95),
		PaymentIntentTTL:   getDuration("PAYMENT_INTENT_TTL", 15*time.Minute),
		Currency:           getEnv("CURRENCY", "INR"),

		JWTSecret:        getEnv("JWT_SECRET", ""),
		KafkaBrokers:     splitCSV(getEnv("KAFKA_BROKERS", "")),
		SessionCacheSize: getInt("SESSION_CACHE_SIZE", 1024),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case "memory", "sqlite", "mongo":
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	switch c.OrdersDriver {
	case "store", "postgres":
	default:
		return fmt.Errorf("unknown ORDERS_DRIVER %q", c.OrdersDriver)
	}
	switch c.PaymentDriver {
	case "simulated":
	case "razorpay":
		if c.RazorpayKeyID == "" || c.RazorpayKeySecret == "" {
			return fmt.Errorf("PAYMENT_DRIVER=razorpay needs RAZORPAY_KEY_ID and RAZORPAY_KEY_SECRET")
		}
	default:
		return fmt.Errorf("unknown PAYMENT_DRIVER %q", c.PaymentDriver)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.PaymentSuccessRate < 0 || c.PaymentSuccessRate > 100 {
		return fmt.Errorf("PAYMENT_SUCCESS_RATE must be within 0..100, got %d", c.PaymentSuccessRate)
	}
	if c.MongoMaxPoolSize < 0 {
		return fmt.Errorf("MONGO_MAX_POOL_SIZE must not be negative, got %d", c.MongoMaxPoolSize)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
