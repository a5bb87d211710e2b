package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/erazemk/inventaris/internal/auth"
	"github.com/erazemk/inventaris/internal/db"
	"github.com/erazemk/inventaris/internal/store"
)

// AuthHandler handles token endpoints. Tokens are issued from the CLI.
type AuthHandler struct {
	DB *db.DB
}

// Logout handles POST /api/auth/logout by revoking the presented token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	expires := time.Now().Add(auth.TokenExpiry)
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time
	}
	if err := store.RevokeToken(r.Context(), h.DB, claims.ID, expires); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to revoke token")
		return
	}

	slog.Info("token revoked", "operator", claims.Operator, "jti", claims.ID)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "logged out"})
}
