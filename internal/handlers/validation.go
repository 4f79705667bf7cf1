package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"charity/internal/money"
)

var errInvalidAmount = errors.New("amount must be a positive number with at most two decimals")

// parseAmountMinor accepts the JSON number or string form of an amount.
func parseAmountMinor(raw json.Number) (int64, error) {
	amount, err := money.ParseMinor(raw.String())
	if err != nil || amount <= 0 {
		return 0, errInvalidAmount
	}
	return amount, nil
}

// decodeJSON writes the error response itself and reports whether the
// handler may continue.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		respondError(w, http.StatusRequestEntityTooLarge, "request body too large")
	case errors.Is(err, io.EOF):
		respondError(w, http.StatusBadRequest, "request body is required")
	default:
		respondError(w, http.StatusBadRequest, "invalid request body")
	}
	return false
}

func (h *Handler) limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.cfg.MaxBodyBytes > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxBodyBytes)
		}
		next.ServeHTTP(w, r)
	})
}
