package http

import (
	"net/http"
	"time"

	"github.com/fjod/storefront/internal/auth"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

type RouterConfig struct {
	Sessions       Sessions
	Products       ProductSource
	Verifier       *auth.Verifier
	RequestTimeout time.Duration
	Log            *zap.Logger
}

// NewRouter builds the /api/v1 surface wrapped in OpenTelemetry
// instrumentation.
func NewRouter(cfg RouterConfig) http.Handler {
	products := NewProductHandler(cfg.Products, cfg.Log)
	cart := NewCartHandler(cfg.Sessions, cfg.Log)
	wishlist := NewWishlistHandler(cfg.Sessions, cfg.Log)
	addresses := NewAddressHandler(cfg.Sessions, cfg.Log)
	checkout := NewCheckoutHandler(cfg.Sessions, cfg.Log)
	orders := NewOrdersHandler(cfg.Sessions, cfg.Log)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, cfg.Log, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", products.ListProducts)
		r.Get("/products/categories", products.ListCategories)

		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(cfg.Verifier, cfg.Log))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cart.GetCart)
				r.Delete("/", cart.ClearCart)
				r.Get("/summary", cart.GetSummary)
				r.Post("/items", cart.AddItem)
				r.Put("/items/{product_id}", cart.UpdateQuantity)
				r.Delete("/items/{product_id}", cart.RemoveItem)
				r.Post("/items/{product_id}/increment", cart.Increment)
				r.Post("/items/{product_id}/decrement", cart.Decrement)
			})

			r.Route("/wishlist", func(r chi.Router) {
				r.Get("/", wishlist.GetWishlist)
				r.Post("/{product_id}/toggle", wishlist.Toggle)
				r.Post("/{product_id}/move-to-cart", wishlist.MoveToCart)
			})

			r.Route("/addresses", func(r chi.Router) {
				r.Get("/", addresses.List)
				r.Post("/", addresses.Create)
				r.Put("/{id}", addresses.Update)
				r.Delete("/{id}", addresses.Delete)
				r.Post("/{id}/default", addresses.SetDefault)
				r.Post("/{id}/select", addresses.Select)
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Post("/payments", checkout.InitiatePayment)
				r.Post("/orders", checkout.PlaceOrder)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", orders.ListOrders)
				r.Put("/{id}/status", orders.UpdateStatus)
			})
		})
	})

	return otelhttp.NewHandler(r, "storefront")
}
