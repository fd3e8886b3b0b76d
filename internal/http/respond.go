package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/fjod/storefront/internal/auth"
	"github.com/fjod/storefront/internal/catalog"
	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/logger"
	"github.com/fjod/storefront/internal/payment"
	"github.com/fjod/storefront/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// Sessions runs an operation against a user's session.
type Sessions interface {
	Do(ctx context.Context, userID string, fn func(s *service.Session) error) error
}

// base carries what every handler needs.
type base struct {
	sessions Sessions
	log      *zap.Logger
}

// withSession resolves the caller's session and runs fn. Errors are written to w.
func (b base) withSession(w http.ResponseWriter, r *http.Request, fn func(s *service.Session) error) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, b.log, http.StatusUnauthorized, "unauthorized", "missing user authentication", "")
		return
	}
	if err := b.sessions.Do(r.Context(), userID, fn); err != nil {
		handleError(w, r, b.log, err)
	}
}

func respondJSON(w http.ResponseWriter, log *zap.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Warn("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, log *zap.Logger, status int, code, message, details string) {
	respondJSON(w, log, status, ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	})
}

// handleError translates domain and infrastructure errors into HTTP responses.
func handleError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	var validation *domain.ValidationError
	if errors.As(err, &validation) {
		respondError(w, log, http.StatusUnprocessableEntity, "validation_failed", validation.Error(),
			strings.Join(validation.FieldNames(), ","))
		return
	}

	var httpStatus int
	var code string

	switch {
	case errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrQuantityExceedsMax),
		errors.Is(err, domain.ErrUnknownPaymentMethod),
		errors.Is(err, domain.ErrUnknownStatus):
		httpStatus, code = http.StatusBadRequest, "invalid_argument"
	case errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrItemNotInCart),
		errors.Is(err, domain.ErrAddressNotFound),
		errors.Is(err, domain.ErrOrderNotFound):
		httpStatus, code = http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrEmptyCart):
		httpStatus, code = http.StatusConflict, "empty_cart"
	case errors.Is(err, domain.ErrNoAddressSelected):
		httpStatus, code = http.StatusConflict, "no_address_selected"
	case errors.Is(err, domain.ErrIllegalTransition):
		httpStatus, code = http.StatusConflict, "illegal_transition"
	case errors.Is(err, domain.ErrPaymentIntentNotFound),
		errors.Is(err, domain.ErrPaymentAmountMismatch),
		errors.Is(err, domain.ErrPaymentMethodMismatch),
		errors.Is(err, service.ErrPaymentNotRequired):
		httpStatus, code = http.StatusConflict, "payment_conflict"
	case errors.Is(err, domain.ErrPaymentFailed):
		httpStatus, code = http.StatusPaymentRequired, "payment_failed"
	case errors.Is(err, domain.ErrPaymentCancelled):
		httpStatus, code = http.StatusPaymentRequired, "payment_cancelled"
	case errors.Is(err, service.ErrNoIdentity),
		errors.Is(err, auth.ErrUnauthenticated),
		errors.Is(err, auth.ErrInvalidToken):
		httpStatus, code = http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, service.ErrPersistence),
		errors.Is(err, catalog.ErrCatalogUnavailable),
		errors.Is(err, payment.ErrGatewayUnavailable):
		httpStatus, code = http.StatusServiceUnavailable, "service_unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		httpStatus, code = http.StatusGatewayTimeout, "timeout"
	default:
		logger.WithContext(r.Context(), log).Error("request failed", zap.Error(err))
		respondError(w, log, http.StatusInternalServerError, "internal_error", "internal server error", "")
		return
	}

	if httpStatus >= http.StatusInternalServerError {
		logger.WithContext(r.Context(), log).Error("request failed", zap.Error(err))
	}
	respondError(w, log, httpStatus, code, err.Error(), "")
}

func productIDParam(r *http.Request) (int64, bool) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "product_id"), 10, 64)
	if err != nil || productID <= 0 {
		return 0, false
	}
	return productID, true
}

func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
