package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"urbane-subscription-api/models"
	"urbane-subscription-api/services/auth"
	"urbane-subscription-api/utils"
)

type contextKey string

const UserContextKey contextKey = "user"

// AuthMiddleware validates the bearer token and attaches the user to
// the request context. A 401 here is the signal clients use to drop
// their stored session.
func AuthMiddleware(jwtService *auth.JWTService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				log.Printf("Missing Authorization header from %s", r.RemoteAddr)
				utils.SendErrorResponse(w, http.StatusUnauthorized, "Missing authorization header")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				log.Printf("Invalid Authorization header format from %s", r.RemoteAddr)
				utils.SendErrorResponse(w, http.StatusUnauthorized, "Invalid authorization header format")
				return
			}

			user, err := jwtService.ValidateToken(parts[1])
			if err != nil {
				log.Printf("Token validation failed from %s: %v", r.RemoteAddr, err)

				var message string
				switch err {
				case auth.ErrTokenExpired:
					message = "Token expired"
				case auth.ErrInvalidToken:
					message = "Invalid token"
				default:
					message = "Authentication failed"
				}

				utils.SendErrorResponse(w, http.StatusUnauthorized, message)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserFromContext returns the authenticated user, or nil outside an
// authenticated route.
func GetUserFromContext(ctx context.Context) *models.AuthUser {
	user, ok := ctx.Value(UserContextKey).(*models.AuthUser)
	if !ok {
		return nil
	}
	return user
}

// RequireDigitalAccess guards magazine-content routes.
func RequireDigitalAccess() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUserFromContext(r.Context())
			if user == nil {
				utils.SendErrorResponse(w, http.StatusInternalServerError, "User not found in context")
				return
			}

			if !user.HasDigitalAccess {
				utils.SendErrorResponse(w, http.StatusForbidden, "An active digital subscription is required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
