package handlers

import (
	"net/http"

	"charity/internal/money"
	"charity/internal/services"
)

func (h *Handler) CreateBranch(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r)
	var req services.BranchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	branch, err := h.directory.CreateBranch(r.Context(), actor, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusCreated, map[string]any{"branch": branch})
}

func (h *Handler) UpdateBranch(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r)
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid branch id")
		return
	}
	var req services.BranchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	branch, err := h.directory.UpdateBranch(r.Context(), actor, id, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, map[string]any{"branch": branch})
}

func (h *Handler) DeleteBranch(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r)
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid branch id")
		return
	}
	if err := h.directory.DeleteBranch(r.Context(), actor, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, nil)
}

// Officers

func (h *Handler) ListOfficers(w http.ResponseWriter, r *http.Request) {
	officers, err := h.directory.ListOfficers(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, map[string]any{"officers": officers})
}

func (h *Handler) CreateOfficer(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r)
	var req services.CreateOfficerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	officer, err := h.directory.CreateOfficer(r.Context(), actor, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusCreated, map[string]any{"officer": officer})
}

func (h *Handler) UpdateOfficer(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r)
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid officer id")
		return
	}
	var req services.UpdateOfficerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.directory.UpdateOfficer(r.Context(), actor, id, req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, nil)
}

func (h *Handler) DeleteOfficer(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r)
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid officer id")
		return
	}
	if err := h.directory.DeleteOfficer(r.Context(), actor, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, nil)
}

// Stories

func (h *Handler) AdminListStories(w http.ResponseWriter, r *http.Request) {
	stories, err := h.directory.ListAllStories(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, map[string]any{"stories": stories})
}

func (h *Handler) CreateStory(w http.ResponseWriter, r *http.Request) {
	var req services.StoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	story, err := h.directory.CreateStory(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusCreated, map[string]any{"story": story})
}

func (h *Handler) UpdateStory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid story id")
		return
	}
	var req services.StoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.directory.UpdateStory(r.Context(), id, req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, nil)
}

func (h *Handler) DeleteStory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid story id")
		return
	}
	if err := h.directory.DeleteStory(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, nil)
}

// Reports

func (h *Handler) Analytics(w http.ResponseWriter, r *http.Request) {
	analytics, err := h.directory.Analytics(r.Context(), h.now())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, map[string]any{"analytics": analytics})
}

func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.directory.Overview(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, map[string]any{
		"donations":    overview.Donations,
		"transactions": overview.Transactions,
		"applications": overview.Applications,
		"users":        overview.Users,
	})
}

func (h *Handler) AdminListActivities(w http.ResponseWriter, r *http.Request) {
	activities, err := h.directory.ListAllActivities(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, map[string]any{"activities": activities})
}

func (h *Handler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.directory.AuditLog(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, map[string]any{"logs": logs})
}

func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	rows, err := h.ledger.Reconcile(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	normalized := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		normalized = append(normalized, map[string]any{
			"user_id":        row.UserID,
			"email":          row.Email,
			"stored_balance": money.FormatMinor(row.StoredBalance),
			"ledger_balance": money.FormatMinor(row.LedgerBalance),
			"difference":     money.FormatMinor(row.Difference),
		})
	}
	respondOK(w, http.StatusOK, map[string]any{
		"accounts":   normalized,
		"mismatched": len(normalized),
	})
}
