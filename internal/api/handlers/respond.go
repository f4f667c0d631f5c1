package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/Cheertaboi/referral-service/internal/apperr"
	"github.com/Cheertaboi/referral-service/internal/logging"
)

const maxBodyBytes = 1 << 20

type envelope map[string]any

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeOK adds "success": true to payload.
func writeOK(w http.ResponseWriter, code int, payload envelope) {
	if payload == nil {
		payload = envelope{}
	}
	payload["success"] = true
	writeJSON(w, code, payload)
}

// writeError maps err to a status. Internal details are logged, not returned.
func writeError(w http.ResponseWriter, log logging.Logger, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal {
		log.Errorf("%s %s: %v", r.Method, r.URL.Path, err)
	}
	writeJSON(w, apperr.HTTPStatus(kind), envelope{
		"success": false,
		"error":   apperr.Message(err),
	})
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("request body is required")
		}
		return apperr.Validation("invalid request body")
	}
	return nil
}
