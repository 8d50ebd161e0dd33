package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/storefront/internal/payment"
	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/middleware"
)

const serviceName = "storefront"

// RouterConfig holds the transport settings of the HTTP API.
type RouterConfig struct {
	CORS           middleware.CORSConfig
	PprofCIDRs     []string
	RequestTimeout time.Duration
}

// NewRouter creates a chi router with all storefront routes registered.
// paymentGateway backs the POST /api/payment endpoint.
func NewRouter(
	cartService *service.CartService,
	wishlistService *service.WishlistService,
	checkoutService *service.CheckoutService,
	paymentGateway payment.Gateway,
	healthHandler *health.Handler,
	logger *slog.Logger,
	cfg RouterConfig,
) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(cfg.RequestTimeout))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(serviceName))
	r.Use(middleware.Tracing(serviceName))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg.CORS))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)

	cartHandler := NewCartHandler(cartService, logger)
	wishlistHandler := NewWishlistHandler(wishlistService, logger)
	checkoutHandler := NewCheckoutHandler(checkoutService, logger)
	paymentHandler := NewPaymentHandler(paymentGateway, logger)

	r.Get("/api/health", Health)
	r.With(ContentTypeJSON).Post("/api/payment", paymentHandler.Submit)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(middleware.ShopperID)
		r.Use(middleware.NoStore)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Post("/visibility", cartHandler.ToggleVisibility)

			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{lineId}", cartHandler.UpdateItemQuantity)
			r.Delete("/items/{lineId}", cartHandler.RemoveItem)
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", wishlistHandler.GetWishlist)
			r.Delete("/", wishlistHandler.ClearWishlist)
			r.Post("/toggle", wishlistHandler.Toggle)

			r.Post("/items", wishlistHandler.AddItem)
			r.Get("/items/{productId}", wishlistHandler.Contains)
			r.Delete("/items/{productId}", wishlistHandler.RemoveItem)
		})

		r.Get("/checkout/quote", checkoutHandler.Quote)
		r.Post("/checkout", checkoutHandler.PlaceOrder)
		r.Get("/orders", checkoutHandler.ListOrders)
	})

	return r
}
