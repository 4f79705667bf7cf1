package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"charity/internal/logging"
	"charity/internal/middleware"
	"charity/internal/services"

	"github.com/go-chi/chi/v5"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondOK writes {"success": true} merged with fields.
func respondOK(w http.ResponseWriter, status int, fields map[string]any) {
	payload := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		payload[k] = v
	}
	payload["success"] = true
	respondJSON(w, status, payload)
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": verr.Message, "field": verr.Field})
	case errors.Is(err, services.ErrValidation):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrUnauthorized):
		respondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrForbidden):
		respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrDuplicateEmail),
		errors.Is(err, services.ErrConflict),
		errors.Is(err, services.ErrInvalidTransition):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInsufficientFunds):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, services.ErrInvalidToken):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrTokenExpired):
		respondError(w, http.StatusGone, err.Error())
	default:
		logging.FromContext(r.Context()).WithError(err).
			WithField("path", r.URL.Path).
			Error("request failed")
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

// actorFrom reads the identity set by the auth middleware. Behind
// RequireRole the role is the one currently stored for the user.
func actorFrom(r *http.Request) (services.Actor, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		return services.Actor{}, false
	}
	role, _ := middleware.RoleFromContext(r.Context())
	return services.Actor{UserID: userID, Role: role}, true
}

// storedActor resolves the caller against the users store instead of the
// role claim in the token.
func (h *Handler) storedActor(r *http.Request) (services.Actor, error) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		return services.Actor{}, services.ErrUnauthorized
	}
	user, err := h.users.GetByID(r.Context(), userID)
	if errors.Is(err, sql.ErrNoRows) {
		return services.Actor{}, services.ErrUnauthorized
	}
	if err != nil {
		return services.Actor{}, err
	}
	return services.Actor{UserID: user.ID, Role: user.Role}, nil
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func parseInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
