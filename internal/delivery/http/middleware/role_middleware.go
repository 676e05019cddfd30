package middleware

import (
	"net/http"

	"clinic-scheduler/internal/domain/entity"
	"clinic-scheduler/pkg/apperror"
	"clinic-scheduler/pkg/response"
)

// RequireRole creates a middleware that checks if the principal has any of the
// allowed roles. Must run after Authenticate.
func RequireRole(allowed ...entity.RoleType) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := GetPrincipalFromContext(r.Context())
			if !ok {
				response.Unauthorized(w, "Role information not found")
				return
			}

			for _, role := range allowed {
				if principal.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			response.Error(w, http.StatusForbidden, "Access denied",
				response.ErrorBody{Code: apperror.AccessDeniedCode})
		})
	}
}

// RequireAdmin is a convenience middleware for admin-only endpoints
func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole(entity.RoleTypeAdmin)(next)
}
