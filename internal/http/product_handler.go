package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/fjod/storefront/internal/catalog"
	"github.com/fjod/storefront/internal/domain"
	"go.uber.org/zap"
)

// ProductSource lists the catalog.
type ProductSource interface {
	Products(ctx context.Context) ([]domain.Product, error)
}

type ProductHandler struct {
	products ProductSource
	log      *zap.Logger
}

func NewProductHandler(products ProductSource, log *zap.Logger) *ProductHandler {
	return &ProductHandler{products: products, log: log}
}

// ListProducts supports ?category=, ?q=, ?price= and ?min_rating= filters.
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	band, err := catalog.ParsePriceBand(query.Get("price"))
	if err != nil {
		respondError(w, h.log, http.StatusBadRequest, "invalid_price_band", err.Error(), "")
		return
	}
	var minRating float64
	if s := query.Get("min_rating"); s != "" {
		minRating, err = strconv.ParseFloat(s, 64)
		if err != nil || minRating < 0 {
			respondError(w, h.log, http.StatusBadRequest, "invalid_min_rating", "min_rating must be a non-negative number", "")
			return
		}
	}

	products, err := h.products.Products(r.Context())
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	filter := catalog.Filter{
		Category:  query.Get("category"),
		Query:     query.Get("q"),
		PriceBand: band,
		MinRating: minRating,
	}
	respondJSON(w, h.log, http.StatusOK, filter.Apply(products))
}

func (h *ProductHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.Products(r.Context())
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	respondJSON(w, h.log, http.StatusOK, catalog.Categories(products))
}
