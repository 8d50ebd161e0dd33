package config

import (
	"fmt"
	"net"
	"net/url"
	"time"

	pkgconfig "github.com/utafrali/storefront/pkg/config"
)

// Payment modes.
const (
	PaymentModeSimulator = "simulator"
	PaymentModeRemote    = "remote"
)

// Config holds all configuration for the storefront service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort           int `env:"PORT" envDefault:"3000"`
	RequestTimeoutSecs int `env:"HTTP_REQUEST_TIMEOUT_SECONDS" envDefault:"30"`

	// Redis holds the cart and wishlist blobs.
	RedisHost string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Blob expiry in hours. 0 keeps blobs forever.
	StoreTTLHours int `env:"STORE_TTL_HOURS" envDefault:"0"`

	// In-memory shopper sessions
	SessionIdleMinutes   int `env:"SESSION_IDLE_MINUTES" envDefault:"30"`
	SweepIntervalSeconds int `env:"SESSION_SWEEP_INTERVAL_SECONDS" envDefault:"60"`

	// PostgreSQL holds placed orders.
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"storefront"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"storefront"`
	PostgresDB   string `env:"POSTGRES_DB" envDefault:"storefront"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Database pool
	DBMaxConns            int32 `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns            int32 `env:"DB_MIN_CONNS" envDefault:"2"`
	DBMaxConnLifetimeMins int   `env:"DB_MAX_CONN_LIFETIME_MINUTES" envDefault:"60"`
	DBMaxConnIdleTimeMins int   `env:"DB_MAX_CONN_IDLE_TIME_MINUTES" envDefault:"30"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Shipping policy, in minor currency units.
	FreeShippingThreshold int64 `env:"FREE_SHIPPING_THRESHOLD" envDefault:"5000"`
	FlatShippingFee       int64 `env:"FLAT_SHIPPING_FEE" envDefault:"300"`

	// Payment
	PaymentMode           string `env:"PAYMENT_MODE" envDefault:"simulator"`
	PaymentServiceURL     string `env:"PAYMENT_SERVICE_URL" envDefault:"http://localhost:3000"`
	PaymentSimulatorDelay int    `env:"PAYMENT_SIMULATOR_DELAY" envDefault:"1500"`

	// Circuit breaker settings for the remote payment service
	CBMaxRequests  uint32  `env:"CB_MAX_REQUESTS" envDefault:"1"`
	CBInterval     int     `env:"CB_INTERVAL_SECONDS" envDefault:"60"`
	CBTimeout      int     `env:"CB_TIMEOUT_SECONDS" envDefault:"30"`
	CBFailureRatio float64 `env:"CB_FAILURE_RATIO" envDefault:"0.5"`
	CBMinRequests  uint32  `env:"CB_MIN_REQUESTS" envDefault:"5"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Pprof debug endpoints (IP allowlist in CIDR notation)
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.0/8,::1/128" envSeparator:","`

	// Slow query logging
	SlowQueryThresholdMs int `env:"LOG_SLOW_QUERY_MS" envDefault:"500"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.RedisHost == "" {
		return fmt.Errorf("REDIS_HOST is required")
	}
	if c.StoreTTLHours < 0 {
		return fmt.Errorf("STORE_TTL_HOURS must not be negative, got %d", c.StoreTTLHours)
	}
	if c.SessionIdleMinutes < 1 {
		return fmt.Errorf("SESSION_IDLE_MINUTES must be at least 1, got %d", c.SessionIdleMinutes)
	}
	if c.SweepIntervalSeconds < 1 {
		return fmt.Errorf("SESSION_SWEEP_INTERVAL_SECONDS must be at least 1, got %d", c.SweepIntervalSeconds)
	}
	if c.PostgresHost == "" {
		return fmt.Errorf("POSTGRES_HOST is required")
	}
	if c.PostgresUser == "" {
		return fmt.Errorf("POSTGRES_USER is required")
	}
	if len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required")
	}
	if c.FreeShippingThreshold < 0 || c.FlatShippingFee < 0 {
		return fmt.Errorf("shipping amounts must not be negative")
	}
	if c.PaymentSimulatorDelay < 0 {
		return fmt.Errorf("PAYMENT_SIMULATOR_DELAY must not be negative, got %d", c.PaymentSimulatorDelay)
	}
	switch c.PaymentMode {
	case PaymentModeSimulator:
	case PaymentModeRemote:
		u, err := url.ParseRequestURI(c.PaymentServiceURL)
		if err != nil || u.Host == "" {
			return fmt.Errorf("PAYMENT_SERVICE_URL is not a valid URL: %q", c.PaymentServiceURL)
		}
	default:
		return fmt.Errorf("PAYMENT_MODE must be %q or %q, got %q", PaymentModeSimulator, PaymentModeRemote, c.PaymentMode)
	}
	if c.CBFailureRatio <= 0 || c.CBFailureRatio > 1.0 {
		return fmt.Errorf("CB_FAILURE_RATIO must be in (0.0, 1.0], got %f", c.CBFailureRatio)
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	for _, cidr := range c.PprofAllowedCIDRs {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			return fmt.Errorf("PPROF_ALLOWED_CIDRS contains invalid CIDR %q", cidr)
		}
	}
	return nil
}

// StoreTTL returns the blob expiry. Zero means no expiry.
func (c *Config) StoreTTL() time.Duration {
	return time.Duration(c.StoreTTLHours) * time.Hour
}

// SessionIdle returns how long an unused shopper session stays in memory.
func (c *Config) SessionIdle() time.Duration {
	return time.Duration(c.SessionIdleMinutes) * time.Minute
}

// SweepInterval returns the period of the idle-session sweeper.
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSeconds) * time.Second
}

// SimulatorDelay returns the simulated payment processing time.
func (c *Config) SimulatorDelay() time.Duration {
	return time.Duration(c.PaymentSimulatorDelay) * time.Millisecond
}

// RequestTimeout returns the per-request handler deadline.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSecs) * time.Second
}
