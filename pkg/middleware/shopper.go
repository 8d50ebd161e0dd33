package middleware

import (
	"log/slog"
	"net/http"
	"regexp"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/logger"
)

// ShopperHeader carries the opaque identifier of the browsing session that
// owns a cart and wishlist.
const ShopperHeader = "X-Shopper-ID"

var shopperIDPattern = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,128}$`)

// ShopperID reads ShopperHeader and stores it in the request context. Requests
// without a well-formed shopper ID are rejected with 401.
func ShopperID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(ShopperHeader)
		if id == "" {
			httputil.WriteError(w, r, apperrors.Unauthorized("missing "+ShopperHeader+" header"), nil)
			return
		}
		if !shopperIDPattern.MatchString(id) {
			httputil.WriteError(w, r, apperrors.Unauthorized("malformed "+ShopperHeader+" header"), nil)
			return
		}

		enriched := logger.ShopperIDFromContext(r.Context()) == id
		ctx := logger.WithShopperID(r.Context(), id)
		if l := logger.FromContext(ctx); !enriched && l != slog.Default() {
			ctx = logger.NewContext(ctx, l.With(slog.String("shopper_id", id)))
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ShopperIDFromRequest returns the shopper ID stored by ShopperID.
func ShopperIDFromRequest(r *http.Request) string {
	return logger.ShopperIDFromContext(r.Context())
}

// NoStore marks responses as private and uncacheable. Cart, wishlist and
// order payloads are per-shopper and must never be served from a shared cache.
func NoStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store, private")
		next.ServeHTTP(w, r)
	})
}
