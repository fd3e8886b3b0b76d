package http

import (
	"net/http"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type OrdersHandler struct {
	base
}

func NewOrdersHandler(sessions Sessions, log *zap.Logger) *OrdersHandler {
	return &OrdersHandler{base{sessions: sessions, log: log}}
}

type UpdateStatusRequestDTO struct {
	Status string `json:"status"`
}

type OrderDTO struct {
	domain.Order
	ItemCount int `json:"itemCount"`
}

func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(s *service.Session) error {
		orders, err := s.Orders(r.Context())
		if err != nil {
			return err
		}
		out := make([]OrderDTO, len(orders))
		for i, o := range orders {
			out[i] = OrderDTO{Order: o, ItemCount: o.ItemCount()}
		}
		respondJSON(w, h.log, http.StatusOK, out)
		return nil
	})
}

func (h *OrdersHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	var req UpdateStatusRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.log, http.StatusBadRequest, "invalid_request", "invalid JSON body", "")
		return
	}
	status, err := domain.ParseOrderStatus(req.Status)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	h.withSession(w, r, func(s *service.Session) error {
		order, err := s.UpdateOrderStatus(r.Context(), orderID, status)
		if err != nil {
			return err
		}
		respondJSON(w, h.log, http.StatusOK, OrderDTO{Order: order, ItemCount: order.ItemCount()})
		return nil
	})
}
