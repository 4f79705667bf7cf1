package handlers

import (
	"net/http"

	"charity/internal/services"
)

func (h *Handler) RecentDonations(w http.ResponseWriter, r *http.Request) {
	donations, err := h.directory.RecentDonations(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, map[string]any{"donations": donations})
}

func (h *Handler) Donate(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeDonation(w, r)
	if !ok {
		return
	}
	donation, err := h.directory.Donate(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusCreated, map[string]any{"donation": donation})
}

func (h *Handler) ListStories(w http.ResponseWriter, r *http.Request) {
	stories, err := h.directory.ListApprovedStories(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, map[string]any{"stories": stories})
}

// Search includes matching users only when the bearer token belongs to an
// officer or the master admin. The role is read from the store, not the token.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var actor *services.Actor
	if stored, err := h.storedActor(r); err == nil {
		actor = &stored
	}
	results, err := h.directory.Search(r.Context(), actor, r.URL.Query().Get("q"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, map[string]any{"results": results})
}
