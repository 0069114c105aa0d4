package middlewares

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/geocoder89/hospitalhub/internal/domain/identity"
)

// RequireRole gates a route on the session's role tag. It must run after
// RequireAuth. Denials reuse the uniform unauthorized body; whether the
// problem was a missing identity or the wrong role is only ever logged.
func (m *AuthMiddleware) RequireRole(required identity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := RoleFromContext(c)

		if !ok || role == "" {
			slog.Default().DebugContext(c.Request.Context(), "rbac_deny",
				"reason", "missing_identity",
				"required_role", string(required),
			)
			denyUnauthorized(c)
			return
		}
		if role != required {
			slog.Default().DebugContext(c.Request.Context(), "rbac_deny",
				"reason", "wrong_role",
				"required_role", string(required),
				"actual_role", string(role),
			)
			denyUnauthorized(c)
			return
		}
		c.Next()
	}
}
