package auth

import (
	"log/slog"
	"net/http"
)

// RoleAuthorization gates handlers on the caller's marketplace role. Roles are
// fixed at sign-up, so a simple equality check is all the policy there is.
type RoleAuthorization struct {
	logger *slog.Logger
}

func NewRoleAuthorization(logger *slog.Logger) *RoleAuthorization {
	return &RoleAuthorization{logger: logger}
}

func (ra *RoleAuthorization) Require(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || user == nil {
				ra.logger.Warn("authorization check failed: user not found in context")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if user.Role != role {
				ra.logger.WarnContext(r.Context(), "access denied: role mismatch",
					"user_id", user.ID,
					"required_role", role,
					"user_role", user.Role)
				http.Error(w, "Forbidden: insufficient role", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (ra *RoleAuthorization) RequireCompany() func(http.Handler) http.Handler {
	return ra.Require(RoleCompany)
}

func (ra *RoleAuthorization) RequireStudent() func(http.Handler) http.Handler {
	return ra.Require(RoleStudent)
}
