package http

import (
	"net/http"

	"github.com/fjod/storefront/internal/service"
	"go.uber.org/zap"
)

type WishlistHandler struct {
	base
}

func NewWishlistHandler(sessions Sessions, log *zap.Logger) *WishlistHandler {
	return &WishlistHandler{base{sessions: sessions, log: log}}
}

type ToggleResponseDTO struct {
	ProductID int64 `json:"product_id"`
	InList    bool  `json:"in_wishlist"`
}

func (h *WishlistHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(s *service.Session) error {
		items, err := s.Wishlist()
		if err != nil {
			return err
		}
		respondJSON(w, h.log, http.StatusOK, items)
		return nil
	})
}

func (h *WishlistHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(r)
	if !ok {
		respondError(w, h.log, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer", "")
		return
	}

	h.withSession(w, r, func(s *service.Session) error {
		added, err := s.ToggleWishlist(r.Context(), productID)
		if err != nil {
			return err
		}
		respondJSON(w, h.log, http.StatusOK, ToggleResponseDTO{ProductID: productID, InList: added})
		return nil
	})
}

func (h *WishlistHandler) MoveToCart(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(r)
	if !ok {
		respondError(w, h.log, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer", "")
		return
	}

	h.withSession(w, r, func(s *service.Session) error {
		summary, err := s.MoveToCart(r.Context(), productID)
		if err != nil {
			return err
		}
		respondJSON(w, h.log, http.StatusOK, summary)
		return nil
	})
}
