package handlers

import (
	"net/http"
	"strings"

	"charity/internal/auth"
	"charity/internal/websocket"
)

func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	account, err := h.ledger.Balance(r.Context(), actor.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, map[string]any{"account": account})
}

type autoPayRequest struct {
	Enabled *bool `json:"enabled"`
}

func (h *Handler) SetAutoPay(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req autoPayRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Enabled == nil {
		respondError(w, http.StatusBadRequest, "enabled is required")
		return
	}
	account, err := h.ledger.SetAutoPay(r.Context(), actor.UserID, *req.Enabled)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, map[string]any{"account": account})
}

func (h *Handler) Receipt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}
	actor, err := h.storedActor(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	receipt, err := h.ledger.Receipt(r.Context(), actor, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, map[string]any{"receipt": receipt})
}

// WSBalances upgrades to a socket that receives the caller's balance updates.
// Browsers cannot set headers on the upgrade, so the token may come from the
// query string.
func (h *Handler) WSBalances(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		authHeader := r.Header.Get("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			token = strings.TrimPrefix(authHeader, "Bearer ")
		}
	}
	if token == "" {
		respondError(w, http.StatusUnauthorized, "missing token")
		return
	}
	claims, err := auth.ParseToken(h.cfg.JWTSecret, token)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	websocket.ServeWS(w, r, h.upgrader, h.hub, claims.UserID, h.logger)
}
