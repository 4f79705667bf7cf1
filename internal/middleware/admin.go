package middleware

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"charity/internal/models"
)

type RoleStore interface {
	GetByID(ctx context.Context, userID int64) (models.User, error)
}

// RequireRole checks the caller's current role in the store, so a demoted or
// deleted account loses access before its token expires. The role found is
// written back into the context.
func RequireRole(users RoleStore, roles ...models.Role) func(http.Handler) http.Handler {
	allowed := make(map[models.Role]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserIDFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			user, err := users.GetByID(r.Context(), userID)
			if errors.Is(err, sql.ErrNoRows) {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			if err != nil {
				writeError(w, http.StatusInternalServerError, "unable to verify role")
				return
			}
			if !allowed[user.Role] {
				writeError(w, http.StatusForbidden, "insufficient privileges")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), user.ID, user.Role)))
		})
	}
}

func RequireOfficer(users RoleStore) func(http.Handler) http.Handler {
	return RequireRole(users, models.RoleOfficer, models.RoleMasterAdmin)
}

func RequireAdmin(users RoleStore) func(http.Handler) http.Handler {
	return RequireRole(users, models.RoleMasterAdmin)
}
