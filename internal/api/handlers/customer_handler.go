package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Cheertaboi/referral-service/internal/apperr"
	"github.com/Cheertaboi/referral-service/internal/logging"
	"github.com/Cheertaboi/referral-service/internal/models"
)

type CustomerHandler struct {
	service CustomerService
	log     logging.Logger
}

func NewCustomerHandler(service CustomerService, log logging.Logger) *CustomerHandler {
	return &CustomerHandler{service: service, log: log}
}

// Create handles POST /admin/customers
func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in models.CustomerInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, h.log, r, err)
		return
	}

	c, result, err := h.service.Create(r.Context(), in)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	writeOK(w, http.StatusCreated, savedPayload(c, result))
}

// Update handles PUT /admin/customers/{id}
func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in models.CustomerInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, h.log, r, err)
		return
	}

	c, result, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	writeOK(w, http.StatusOK, savedPayload(c, result))
}

// Get handles GET /admin/customers/{id}
func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	writeOK(w, http.StatusOK, envelope{"customer": c})
}

// List handles GET /admin/customers?page=&size=
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page")
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	size, err := queryInt(r, "size")
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}

	p, err := h.service.List(r.Context(), page, size)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	writeOK(w, http.StatusOK, envelope{
		"count":    p.Count,
		"page":     p.Page,
		"size":     p.Size,
		"next":     p.Next,
		"previous": p.Previous,
		"results":  p.Results,
	})
}

// Delete handles DELETE /admin/customers/{id}
func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.log, r, err)
		return
	}
	writeOK(w, http.StatusOK, nil)
}

// Referrals handles GET /admin/customers/{id}/referrals
func (h *CustomerHandler) Referrals(w http.ResponseWriter, r *http.Request) {
	txs, err := h.service.Referrals(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	writeOK(w, http.StatusOK, envelope{"transactions": txs})
}

func savedPayload(c *models.Customer, result models.RedemptionResult) envelope {
	return envelope{
		"customer":        c,
		"referralApplied": result.ReferralApplied,
		"referrerReward":  result.ReferrerReward,
	}
}

// queryInt returns 0 when the parameter is absent.
func queryInt(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Validation("invalid %s %q", key, raw)
	}
	return n, nil
}
