package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	applog "burger-order-api/logger"
	"burger-order-api/models"
	"burger-order-api/pricing"
	"burger-order-api/statemachine"

	"github.com/glebarez/sqlite"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config is the full runtime configuration, read from the environment.
type Config struct {
	Port        string
	GinMode     string
	DBPath      string
	JWTSecret   []byte
	JWTTTL      time.Duration
	LogLevel    string
	LogFormat   string
	Environment string
	CORSOrigins []string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	EmailFrom    string
	EmailWorkers int
	EmailQueue   int

	Pricing      pricing.Config
	Lifecycle    statemachine.Policy
	DeliveryETA  time.Duration
	ReserveStock bool

	AdminEmail    string
	AdminPassword string
	SeedFile      string
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	// a missing .env is fine; real deployments set the environment directly
	_ = godotenv.Load()

	logDefaults := applog.DefaultConfig()
	cfg := Config{
		Port:          getEnv("PORT", "8080"),
		GinMode:       getEnv("GIN_MODE", "debug"),
		DBPath:        getEnv("DB_PATH", "burger_orders.db?_pragma=busy_timeout(5000)"),
		JWTSecret:     []byte(getEnv("JWT_SECRET", "burger_order_super_secret_2024")),
		LogLevel:      getEnv("LOG_LEVEL", logDefaults.Level),
		LogFormat:     getEnv("LOG_FORMAT", logDefaults.Format),
		Environment:   getEnv("ENVIRONMENT", logDefaults.Environment),
		SMTPHost:      os.Getenv("SMTP_HOST"),
		SMTPUser:      os.Getenv("SMTP_USER"),
		SMTPPassword:  os.Getenv("SMTP_PASS"),
		EmailFrom:     getEnv("EMAIL_FROM", "orders@burger.local"),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		SeedFile:      os.Getenv("SEED_FILE"),
		Lifecycle: statemachine.Policy{
			CustomerCancelCutoff: models.OrderStatus(getEnv("CUSTOMER_CANCEL_CUTOFF", string(models.StatusOutForDelivery))),
		},
	}

	for _, o := range strings.Split(getEnv("CORS_ORIGINS", "*"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}

	var errs []string
	parse := func(key string, fn func(string) error) {
		v := os.Getenv(key)
		if v == "" {
			return
		}
		if err := fn(v); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	parseDecimal := func(key string, dst *decimal.Decimal) {
		parse(key, func(v string) error {
			d, err := decimal.NewFromString(v)
			if err != nil {
				return err
			}
			if d.IsNegative() {
				return fmt.Errorf("must not be negative")
			}
			*dst = d
			return nil
		})
	}
	parseInt := func(key string, dst *int) {
		parse(key, func(v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return err
			}
			*dst = n
			return nil
		})
	}
	parseDuration := func(key string, dst *time.Duration) {
		parse(key, func(v string) error {
			d, err := time.ParseDuration(v)
			if err != nil {
				return err
			}
			*dst = d
			return nil
		})
	}
	parseBool := func(key string, dst *bool) {
		parse(key, func(v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return err
			}
			*dst = b
			return nil
		})
	}

	cfg.JWTTTL = 7 * 24 * time.Hour
	cfg.DeliveryETA = 45 * time.Minute
	cfg.SMTPPort = 587
	cfg.EmailWorkers = 2
	cfg.EmailQueue = 100
	cfg.Pricing = pricing.DefaultConfig()
	cfg.Lifecycle.AllowSkipAhead = true

	parseDuration("JWT_TTL", &cfg.JWTTTL)
	parseDuration("DELIVERY_ETA", &cfg.DeliveryETA)
	parseInt("SMTP_PORT", &cfg.SMTPPort)
	parseInt("EMAIL_WORKERS", &cfg.EmailWorkers)
	parseInt("EMAIL_QUEUE", &cfg.EmailQueue)
	parseDecimal("CUSTOM_BASE_PRICE", &cfg.Pricing.CustomBasePrice)
	parseDecimal("FREE_DELIVERY_THRESHOLD", &cfg.Pricing.FreeDeliveryThreshold)
	parseDecimal("DELIVERY_FEE", &cfg.Pricing.DeliveryFee)
	parseBool("ALLOW_SKIP_AHEAD", &cfg.Lifecycle.AllowSkipAhead)
	parseBool("RESERVE_STOCK", &cfg.ReserveStock)

	if err := cfg.Lifecycle.Validate(); err != nil {
		errs = append(errs, "CUSTOMER_CANCEL_CUTOFF: "+err.Error())
	}
	if cfg.EmailWorkers < 1 {
		errs = append(errs, "EMAIL_WORKERS: must be at least 1")
	}
	if cfg.EmailQueue < 0 {
		errs = append(errs, "EMAIL_QUEUE: must not be negative")
	}

	if len(errs) > 0 {
		return cfg, fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}

// LogConfig is the logger configuration for the process.
func (c Config) LogConfig() applog.Config {
	return applog.Config{
		Level:       c.LogLevel,
		Format:      c.LogFormat,
		Environment: c.Environment,
	}
}

// SMTPEnabled reports whether outgoing email should go through SMTP.
func (c Config) SMTPEnabled() bool {
	return c.SMTPHost != ""
}

// OpenDB connects to sqlite and migrates every model.
func OpenDB(path string, log *slog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(models.All()...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Info("Database connected and migrated", "path", path)
	return db, nil
}
