package handlers

import (
	"net/http"
	"strconv"

	"github.com/Cheertaboi/referral-service/internal/apperr"
	"github.com/Cheertaboi/referral-service/internal/logging"
	"github.com/Cheertaboi/referral-service/internal/models"
)

type ReferralHandler struct {
	service ReferralService
	log     logging.Logger
}

func NewReferralHandler(service ReferralService, log logging.Logger) *ReferralHandler {
	return &ReferralHandler{service: service, log: log}
}

// Validate handles POST /referrals/validate
func (h *ReferralHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req models.ValidationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.log, r, err)
		return
	}

	resp, err := h.service.ValidateReferral(r.Context(), req)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	writeOK(w, http.StatusOK, envelope{
		"referrer": resp.Referrer,
		"discount": resp.Discount,
	})
}

// SendEmail handles POST /admin/referrals/send-email
func (h *ReferralHandler) SendEmail(w http.ResponseWriter, r *http.Request) {
	var req models.SendEmailRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.log, r, err)
		return
	}

	res, err := h.service.SendDiscountEmail(r.Context(), req)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	writeOK(w, http.StatusOK, envelope{
		"transactionId": res.TransactionID,
		"emailSent":     res.EmailSent,
		"discountRate":  res.DiscountRate,
		"referrerEmail": res.ReferrerEmail,
		"isBonus":       res.IsBonus,
	})
}

// ListTransactions handles GET /admin/referral-transactions?referrerCode=&pending=true
func (h *ReferralHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := models.TransactionFilter{ReferrerCode: q.Get("referrerCode")}

	if raw := q.Get("pending"); raw != "" {
		pending, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, h.log, r, apperr.Validation("invalid pending %q", raw))
			return
		}
		f.PendingOnly = pending
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	f.Limit = limit

	txs, err := h.service.ListTransactions(r.Context(), f)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	writeOK(w, http.StatusOK, envelope{"transactions": txs})
}
