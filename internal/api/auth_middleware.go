/**
 * @description
 * Bearer-token authentication middleware. Tokens are HS256 JWTs whose
 * subject is the user id; the full user record is loaded from the store so
 * role changes take effect on the next request, and handlers get the
 * current principal from the request context.
 */
package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/RoshisRai/Subscription-API/internal/domain"
)

type contextKey string

const principalContextKey contextKey = "principal"

// PrincipalSource loads the authenticated user's record.
type PrincipalSource interface {
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
}

// Authenticator validates the Authorization header and injects the
// principal into the request context.
func Authenticator(jwtSecret string, users PrincipalSource) func(http.Handler) http.Handler {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256"}), jwt.WithLeeway(30*time.Second))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
			if authHeader == "" {
				respondWithError(w, http.StatusUnauthorized, "Authentication required")
				return
			}

			tokenString, ok := bearerToken(authHeader)
			if !ok {
				respondWithError(w, http.StatusUnauthorized, "Invalid Authorization header format")
				return
			}

			claims := jwt.MapClaims{}
			token, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
				return []byte(jwtSecret), nil
			})
			if err != nil || !token.Valid {
				respondWithError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			sub, ok := claims["sub"].(string)
			if !ok || strings.TrimSpace(sub) == "" {
				respondWithError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			user, err := users.GetUserByID(r.Context(), sub)
			if err != nil {
				respondWithError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), principalContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalFromContext returns the authenticated user from request context.
func PrincipalFromContext(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(principalContextKey).(*domain.User)
	return user, ok
}

func bearerToken(authHeader string) (string, bool) {
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}

	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return "", false
	}

	return token, true
}
