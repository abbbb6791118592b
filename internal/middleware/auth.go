package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/pawsit/pawsit-api/internal/pkg/jwt"
	"github.com/pawsit/pawsit-api/internal/pkg/response"
)

type contextKey string

const (
	UserIDKey   contextKey = "user_id"
	RoleKey     contextKey = "role"
	RawTokenKey contextKey = "raw_token"
)

// Roles carried in the access token. "both" users act as owner or sitter
// depending on the operation they invoke.
const (
	RoleOwner  = "owner"
	RoleSitter = "sitter"
	RoleBoth   = "both"
)

// Auth returns middleware that validates JWT
func Auth(jwtService *jwt.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.Unauthorized(w, "Missing authorization header")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				response.Unauthorized(w, "Invalid authorization header format")
				return
			}

			claims, err := jwtService.ValidateAccessToken(parts[1])
			if err != nil {
				if err == jwt.ErrExpiredToken {
					response.Unauthorized(w, "Token expired")
				} else {
					response.Unauthorized(w, "Invalid token")
				}
				return
			}

			// The raw token is forwarded to the legacy backend so upstream
			// calls run as the acting user, not as this service.
			ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
			ctx = context.WithValue(ctx, RoleKey, claims.Role)
			ctx = context.WithValue(ctx, RawTokenKey, parts[1])

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserID extracts user ID from context
func GetUserID(ctx context.Context) int64 {
	if id, ok := ctx.Value(UserIDKey).(int64); ok {
		return id
	}
	return 0
}

// GetRole extracts role from context
func GetRole(ctx context.Context) string {
	if role, ok := ctx.Value(RoleKey).(string); ok {
		return role
	}
	return ""
}

// GetRawToken extracts the bearer token from context for upstream forwarding
func GetRawToken(ctx context.Context) string {
	if token, ok := ctx.Value(RawTokenKey).(string); ok {
		return token
	}
	return ""
}

// RequireRole returns middleware that checks user role
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userRole := GetRole(r.Context())

			for _, role := range roles {
				if userRole == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			response.Forbidden(w, "Insufficient permissions")
		})
	}
}

// RequireOwner returns middleware that requires an owner-capable account
func RequireOwner() func(http.Handler) http.Handler {
	return RequireRole(RoleOwner, RoleBoth)
}

// RequireSitter returns middleware that requires a sitter-capable account
func RequireSitter() func(http.Handler) http.Handler {
	return RequireRole(RoleSitter, RoleBoth)
}
