package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/utafrali/storefront/internal/config"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/event"
	handler "github.com/utafrali/storefront/internal/handler/http"
	"github.com/utafrali/storefront/internal/payment"
	"github.com/utafrali/storefront/internal/payment/remote"
	"github.com/utafrali/storefront/internal/payment/simulator"
	"github.com/utafrali/storefront/internal/repository/migrations"
	"github.com/utafrali/storefront/internal/repository/postgres"
	redisrepo "github.com/utafrali/storefront/internal/repository/redis"
	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/database"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/httpclient"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/middleware"
	"github.com/utafrali/storefront/pkg/tracing"
)

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	rdb            *redis.Client
	pool           *pgxpool.Pool
	producer       *pkgkafka.Producer
	carts          *service.CartService
	wishlists      *service.WishlistService
	httpServer     *http.Server
	tracerShutdown func(context.Context) error

	stopSweeper context.CancelFunc
	sweeperDone sync.WaitGroup
	shutdown    sync.Once
}

// initTracer is replaced in tests.
var initTracer = tracing.InitTracer

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := initTracer(ctx, tracing.Config{
		ServiceName:    "storefront",
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// Initialize Redis client for cart and wishlist blobs.
	redisCfg := database.DefaultRedisConfig()
	redisCfg.Host = cfg.RedisHost
	redisCfg.Port = cfg.RedisPort
	redisCfg.Password = cfg.RedisPass
	redisCfg.DB = cfg.RedisDB

	rdb, err := database.NewRedisClient(ctx, redisCfg, logger)
	if err != nil {
		_ = tracerShutdown(ctx)
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis",
		slog.String("host", cfg.RedisHost),
		slog.Int("db", cfg.RedisDB),
	)

	// Initialize PostgreSQL connection pool for orders.
	pgCfg := database.DefaultPostgresConfig()
	pgCfg.Host = cfg.PostgresHost
	pgCfg.Port = cfg.PostgresPort
	pgCfg.User = cfg.PostgresUser
	pgCfg.Password = cfg.PostgresPass
	pgCfg.DBName = cfg.PostgresDB
	pgCfg.SSLMode = cfg.PostgresSSL
	pgCfg.MaxConns = cfg.DBMaxConns
	pgCfg.MinConns = cfg.DBMinConns
	pgCfg.MaxConnLifetime = time.Duration(cfg.DBMaxConnLifetimeMins) * time.Minute
	pgCfg.MaxConnIdleTime = time.Duration(cfg.DBMaxConnIdleTimeMins) * time.Minute

	pool, err := database.NewPostgresPool(ctx, &pgCfg, logger)
	if err != nil {
		_ = rdb.Close()
		_ = tracerShutdown(ctx)
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)
	if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, pool, "storefront"); err != nil {
		logger.Warn("pool metrics not registered", slog.String("error", err.Error()))
	}

	// Run database migrations.
	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		_ = rdb.Close()
		_ = tracerShutdown(ctx)
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	// Configure slow query logging.
	if cfg.SlowQueryThresholdMs > 0 {
		database.SetSlowQueryLogging(time.Duration(cfg.SlowQueryThresholdMs)*time.Millisecond, logger)
	}

	// Initialize Kafka producer.
	producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Build the dependency graph.
	blobs := redisrepo.NewBlobStore(rdb, cfg.StoreTTL())
	orders := postgres.NewOrderRepository(pool)
	publisher := event.NewProducer(producer, logger)

	simGateway := simulator.NewGateway(cfg.SimulatorDelay(), logger)
	gateway := paymentGateway(cfg, simGateway, logger)
	logger.Info("payment gateway selected", slog.String("gateway", gateway.Name()))

	policy := domain.ShippingPolicy{
		FreeShippingThreshold: cfg.FreeShippingThreshold,
		FlatShippingFee:       cfg.FlatShippingFee,
	}

	cartService := service.NewCartService(blobs, publisher, logger)
	wishlistService := service.NewWishlistService(blobs, publisher, logger)
	checkoutService := service.NewCheckoutService(cartService, gateway, orders, publisher, policy, logger)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("redis", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	healthHandler.RegisterCritical("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.RegisterNonCritical("kafka", func(ctx context.Context) error {
		return producer.Ping(ctx)
	})

	// HTTP router.
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSAllowedOrigins
	corsCfg.Environment = cfg.Environment

	router := handler.NewRouter(cartService, wishlistService, checkoutService, simGateway, healthHandler, logger, handler.RouterConfig{
		CORS:           corsCfg,
		PprofCIDRs:     cfg.PprofAllowedCIDRs,
		RequestTimeout: cfg.RequestTimeout(),
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.RequestTimeout() + 5*time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		rdb:            rdb,
		pool:           pool,
		producer:       producer,
		carts:          cartService,
		wishlists:      wishlistService,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// paymentGateway returns the gateway selected by PAYMENT_MODE.
func paymentGateway(cfg *config.Config, sim *simulator.Gateway, logger *slog.Logger) payment.Gateway {
	if cfg.PaymentMode != config.PaymentModeRemote {
		return sim
	}

	baseClient := httpclient.New(httpclient.DefaultConfig())
	cbCfg := httpclient.DefaultCircuitBreakerConfig("payment-service")
	cbCfg.MaxRequests = cfg.CBMaxRequests
	cbCfg.Interval = time.Duration(cfg.CBInterval) * time.Second
	cbCfg.Timeout = time.Duration(cfg.CBTimeout) * time.Second
	cbCfg.FailureRatio = cfg.CBFailureRatio
	cbCfg.MinRequests = cfg.CBMinRequests
	logger.Info("circuit breaker initialized",
		slog.String("name", cbCfg.Name),
		slog.Uint64("max_requests", uint64(cbCfg.MaxRequests)),
		slog.Int("timeout_seconds", cfg.CBTimeout),
		slog.Uint64("min_requests", uint64(cbCfg.MinRequests)),
	)
	cb := httpclient.NewCircuitBreakerClient(baseClient, cbCfg, logger)
	return remote.NewGateway(cb, cfg.PaymentServiceURL, logger)
}

// Run starts the HTTP server and the session sweeper and blocks until the
// context is canceled.
func (a *App) Run(ctx context.Context) error {
	sweepCtx, stop := context.WithCancel(context.Background())
	a.stopSweeper = stop
	a.sweeperDone.Add(1)
	go a.sweep(sweepCtx)

	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// sweep evicts idle shopper sessions until ctx is canceled.
func (a *App) sweep(ctx context.Context) {
	defer a.sweeperDone.Done()

	ticker := time.NewTicker(a.cfg.SweepInterval())
	defer ticker.Stop()

	idle := a.cfg.SessionIdle()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			carts := a.carts.SweepIdle(idle)
			wishlists := a.wishlists.SweepIdle(idle)
			if carts+wishlists > 0 {
				a.logger.Debug("idle sessions evicted",
					slog.Int("carts", carts),
					slog.Int("wishlists", wishlists),
				)
			}
		}
	}
}

// Shutdown gracefully stops all components in order:
// 1. Session sweeper
// 2. HTTP server (drain in-flight requests)
// 3. Unsaved carts and wishlists (final save attempt)
// 4. Tracer, Kafka producer, PostgreSQL pool, Redis client
func (a *App) Shutdown() error {
	a.shutdown.Do(a.doShutdown)
	return nil
}

func (a *App) doShutdown() {
	a.logger.Info("shutting down application...")

	if a.stopSweeper != nil {
		a.stopSweeper()
		a.sweeperDone.Wait()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	if pending := a.carts.Flush(shutdownCtx) + a.wishlists.Flush(shutdownCtx); pending > 0 {
		a.logger.Error("unsaved shopper state lost on shutdown", slog.Int("sessions", pending))
	}

	if a.tracerShutdown != nil {
		if err := a.tracerShutdown(shutdownCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
		}
	}

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
	}

	a.pool.Close()

	if err := a.rdb.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
}
