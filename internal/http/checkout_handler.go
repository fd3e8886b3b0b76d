package http

import (
	"net/http"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/service"
	"go.uber.org/zap"
)

type CheckoutHandler struct {
	base
}

func NewCheckoutHandler(sessions Sessions, log *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{base{sessions: sessions, log: log}}
}

type InitiatePaymentRequestDTO struct {
	PaymentMethod string `json:"paymentMethod"`
}

type PlaceOrderRequestDTO struct {
	PaymentMethod string                      `json:"paymentMethod"`
	Payment       *domain.PaymentConfirmation `json:"payment,omitempty"`
}

// InitiatePayment opens a gateway payment for the cart total. The client pays
// against the returned intent and reports back through PlaceOrder.
func (h *CheckoutHandler) InitiatePayment(w http.ResponseWriter, r *http.Request) {
	var req InitiatePaymentRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.log, http.StatusBadRequest, "invalid_request", "invalid JSON body", "")
		return
	}
	method, err := domain.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	h.withSession(w, r, func(s *service.Session) error {
		intent, err := s.InitiatePayment(r.Context(), method)
		if err != nil {
			return err
		}
		respondJSON(w, h.log, http.StatusCreated, intent)
		return nil
	})
}

func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.log, http.StatusBadRequest, "invalid_request", "invalid JSON body", "")
		return
	}
	method, err := domain.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	var conf domain.PaymentConfirmation
	if req.Payment != nil {
		conf = *req.Payment
	}

	h.withSession(w, r, func(s *service.Session) error {
		order, err := s.PlaceOrder(r.Context(), method, conf)
		if err != nil {
			return err
		}
		respondJSON(w, h.log, http.StatusCreated, order)
		return nil
	})
}
