package http

import (
	"context"
	"net/http"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type AddressHandler struct {
	base
}

func NewAddressHandler(sessions Sessions, log *zap.Logger) *AddressHandler {
	return &AddressHandler{base{sessions: sessions, log: log}}
}

func (h *AddressHandler) List(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(s *service.Session) error {
		view, err := s.Addresses()
		if err != nil {
			return err
		}
		respondJSON(w, h.log, http.StatusOK, view)
		return nil
	})
}

func (h *AddressHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in domain.AddressInput
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, h.log, http.StatusBadRequest, "invalid_request", "invalid JSON body", "")
		return
	}

	h.withSession(w, r, func(s *service.Session) error {
		added, err := s.AddAddress(r.Context(), in)
		if err != nil {
			return err
		}
		respondJSON(w, h.log, http.StatusCreated, added)
		return nil
	})
}

func (h *AddressHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var patch domain.AddressPatch
	if err := decodeJSON(r, &patch); err != nil {
		respondError(w, h.log, http.StatusBadRequest, "invalid_request", "invalid JSON body", "")
		return
	}

	h.withSession(w, r, func(s *service.Session) error {
		updated, err := s.UpdateAddress(r.Context(), id, patch)
		if err != nil {
			return err
		}
		respondJSON(w, h.log, http.StatusOK, updated)
		return nil
	})
}

func (h *AddressHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.viewOp(w, r, (*service.Session).DeleteAddress)
}

func (h *AddressHandler) SetDefault(w http.ResponseWriter, r *http.Request) {
	h.viewOp(w, r, (*service.Session).SetDefaultAddress)
}

func (h *AddressHandler) Select(w http.ResponseWriter, r *http.Request) {
	h.viewOp(w, r, (*service.Session).SelectAddress)
}

type addressOp func(s *service.Session, ctx context.Context, id string) (service.AddressView, error)

func (h *AddressHandler) viewOp(w http.ResponseWriter, r *http.Request, op addressOp) {
	id := chi.URLParam(r, "id")
	h.withSession(w, r, func(s *service.Session) error {
		view, err := op(s, r.Context(), id)
		if err != nil {
			return err
		}
		respondJSON(w, h.log, http.StatusOK, view)
		return nil
	})
}
