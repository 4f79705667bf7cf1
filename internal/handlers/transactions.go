package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"charity/internal/models"
	"charity/internal/services"
)

type amountRequest struct {
	Amount json.Number `json:"amount"`
}

type ledgerOp func(ctx context.Context, userID, amountMinor int64) (services.LedgerResult, error)

func (h *Handler) applyAmount(w http.ResponseWriter, r *http.Request, op ledgerOp) {
	actor, ok := actorFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req amountRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	amount, err := parseAmountMinor(req.Amount)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error(), "field": "amount"})
		return
	}
	result, err := op(r.Context(), actor.UserID, amount)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, map[string]any{
		"account":     result.Account,
		"transaction": result.Transaction,
	})
}

func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.applyAmount(w, r, h.ledger.Deposit)
}

func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.applyAmount(w, r, h.ledger.Withdraw)
}

func (h *Handler) Collect(w http.ResponseWriter, r *http.Request) {
	h.applyAmount(w, r, h.ledger.Collect)
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	query := r.URL.Query()
	page := parseInt(query.Get("page"), 1)
	if page < 1 {
		page = 1
	}
	limit := parseInt(query.Get("limit"), 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	transactions, err := h.ledger.History(r.Context(), actor.UserID, services.HistoryQuery{
		Kind:   models.TransactionKind(query.Get("type")),
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, map[string]any{
		"transactions": transactions,
		"page":         page,
	})
}
