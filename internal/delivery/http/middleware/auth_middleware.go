package middleware

import (
	"context"
	"net/http"
	"strings"

	"clinic-scheduler/internal/domain/entity"
	"clinic-scheduler/internal/service"
	"clinic-scheduler/pkg/apperror"
	"clinic-scheduler/pkg/response"

	"github.com/sirupsen/logrus"
)

type contextKey string

const sessionKey contextKey = "session"

type AuthMiddleware struct {
	resolver service.IdentityResolver
	log      *logrus.Logger
}

func NewAuthMiddleware(resolver service.IdentityResolver, log *logrus.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		resolver: resolver,
		log:      log,
	}
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, "Authorization header is required")
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(w, "Invalid authorization header format")
			return
		}

		session, err := m.resolver.ResolveSession(r.Context(), parts[1])
		if err != nil {
			if apperror.CategoryOf(err) == apperror.CategoryAuthentication {
				response.Error(w, http.StatusUnauthorized, "Invalid or expired token",
					response.ErrorBody{Code: apperror.CodeOf(err)})
				return
			}
			m.log.Warnf("Failed to resolve identity: %+v", err)
			response.InternalServerError(w, "Failed to validate token")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
	})
}

// WithSession stores a resolved session on the context.
func WithSession(ctx context.Context, session *service.Session) context.Context {
	return context.WithValue(ctx, sessionKey, session)
}

// GetSessionFromContext extracts the resolved session from context
func GetSessionFromContext(ctx context.Context) (*service.Session, bool) {
	session, ok := ctx.Value(sessionKey).(*service.Session)
	return session, ok && session != nil
}

// GetPrincipalFromContext extracts the authenticated principal from context
func GetPrincipalFromContext(ctx context.Context) (entity.Principal, bool) {
	session, ok := GetSessionFromContext(ctx)
	if !ok {
		return entity.Principal{}, false
	}
	return session.Principal, true
}
