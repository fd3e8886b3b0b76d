package http

import (
	"net/http"

	"github.com/fjod/storefront/internal/service"
	"go.uber.org/zap"
)

type CartHandler struct {
	base
}

func NewCartHandler(sessions Sessions, log *zap.Logger) *CartHandler {
	return &CartHandler{base{sessions: sessions, log: log}}
}

type AddItemRequestDTO struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type IncrementResponseDTO struct {
	service.CartSummary
	Clamped bool `json:"clamped"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(s *service.Session) error {
		lines, err := s.Cart()
		if err != nil {
			return err
		}
		respondJSON(w, h.log, http.StatusOK, lines)
		return nil
	})
}

func (h *CartHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(s *service.Session) error {
		summary, err := s.CartSummary()
		if err != nil {
			return err
		}
		respondJSON(w, h.log, http.StatusOK, summary)
		return nil
	})
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.log, http.StatusBadRequest, "invalid_request", "invalid JSON body", "")
		return
	}
	if req.ProductID <= 0 {
		respondError(w, h.log, http.StatusBadRequest, "invalid_product_id", "product_id must be positive", "")
		return
	}

	h.withSession(w, r, func(s *service.Session) error {
		summary, err := s.AddToCart(r.Context(), req.ProductID, req.Quantity)
		if err != nil {
			return err
		}
		respondJSON(w, h.log, http.StatusCreated, summary)
		return nil
	})
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(r)
	if !ok {
		respondError(w, h.log, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer", "")
		return
	}
	var req UpdateQuantityRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.log, http.StatusBadRequest, "invalid_request", "invalid JSON body", "")
		return
	}

	h.withSession(w, r, func(s *service.Session) error {
		summary, err := s.UpdateQuantity(r.Context(), productID, req.Quantity)
		if err != nil {
			return err
		}
		respondJSON(w, h.log, http.StatusOK, summary)
		return nil
	})
}

func (h *CartHandler) Increment(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(r)
	if !ok {
		respondError(w, h.log, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer", "")
		return
	}

	h.withSession(w, r, func(s *service.Session) error {
		summary, clamped, err := s.Increment(r.Context(), productID)
		if err != nil {
			return err
		}
		respondJSON(w, h.log, http.StatusOK, IncrementResponseDTO{CartSummary: summary, Clamped: clamped})
		return nil
	})
}

func (h *CartHandler) Decrement(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(r)
	if !ok {
		respondError(w, h.log, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer", "")
		return
	}

	h.withSession(w, r, func(s *service.Session) error {
		summary, err := s.Decrement(r.Context(), productID)
		if err != nil {
			return err
		}
		respondJSON(w, h.log, http.StatusOK, summary)
		return nil
	})
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(r)
	if !ok {
		respondError(w, h.log, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer", "")
		return
	}

	h.withSession(w, r, func(s *service.Session) error {
		summary, err := s.RemoveFromCart(r.Context(), productID)
		if err != nil {
			return err
		}
		respondJSON(w, h.log, http.StatusOK, summary)
		return nil
	})
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(s *service.Session) error {
		if err := s.ClearCart(r.Context()); err != nil {
			return err
		}
		w.WriteHeader(http.StatusNoContent)
		return nil
	})
}
