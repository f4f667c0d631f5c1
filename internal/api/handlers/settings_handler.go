package handlers

import (
	"net/http"

	"github.com/Cheertaboi/referral-service/internal/apperr"
	"github.com/Cheertaboi/referral-service/internal/logging"
)

type SettingsHandler struct {
	service SettingsService
	log     logging.Logger
}

func NewSettingsHandler(service SettingsService, log logging.Logger) *SettingsHandler {
	return &SettingsHandler{service: service, log: log}
}

type discountsBody struct {
	Enabled *bool `json:"enabled"`
}

// GetDiscounts handles GET /admin/settings/discounts
func (h *SettingsHandler) GetDiscounts(w http.ResponseWriter, r *http.Request) {
	on, err := h.service.DiscountsEnabled(r.Context())
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	writeOK(w, http.StatusOK, envelope{"enabled": on})
}

// SetDiscounts handles PUT /admin/settings/discounts
func (h *SettingsHandler) SetDiscounts(w http.ResponseWriter, r *http.Request) {
	var body discountsBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, h.log, r, err)
		return
	}
	if body.Enabled == nil {
		writeError(w, h.log, r, apperr.Validation("enabled is required"))
		return
	}

	on, err := h.service.SetDiscountsEnabled(r.Context(), *body.Enabled)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	h.log.Infof("discount emails enabled=%v", on)
	writeOK(w, http.StatusOK, envelope{"enabled": on})
}
