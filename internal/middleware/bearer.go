// Package middleware provides HTTP middlewares for authentication and logging.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/matthewvu2719/Journey-sub002/internal/models"
	"github.com/matthewvu2719/Journey-sub002/internal/token"
)

type ctxKey string

const (
	userKey     ctxKey = "user"
	userTypeKey ctxKey = "userType"
)

// TokenParser validates bearer tokens and returns their claims.
type TokenParser interface {
	Parse(tokenString string) (*token.Claims, error)
}

// BearerAuth enforces bearer-token authentication.
//
// It extracts the token from the Authorization header, validates it,
// and stores the subject user id and user type in the request context
// for downstream handlers. Requests with a missing, malformed, expired
// or mis-signed token are rejected with 401 and a JSON detail body.
func BearerAuth(parser TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := extractBearer(r)
			if raw == "" {
				unauthorized(w, "missing bearer token")
				return
			}
			claims, err := parser.Parse(raw)
			if err != nil {
				unauthorized(w, "invalid or expired token")
				return
			}
			ctx := context.WithValue(r.Context(), userKey, claims.Subject)
			ctx = context.WithValue(ctx, userTypeKey, claims.UserType)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearer returns the token from the Authorization header, or an
// empty string when the header is absent or not a bearer scheme.
func extractBearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func unauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(models.ErrorResponse{Detail: detail})
}

// ContextWithUser returns a context carrying the authenticated user id
// and type, as BearerAuth would populate it.
func ContextWithUser(ctx context.Context, userID string, userType models.UserType) context.Context {
	ctx = context.WithValue(ctx, userKey, userID)
	return context.WithValue(ctx, userTypeKey, userType)
}

// GetUserIDFromContext extracts the authenticated user id from the
// request context. Returns an empty string if not found.
func GetUserIDFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(userKey).(string); ok {
		return s
	}
	return ""
}

// GetUserTypeFromContext extracts the authenticated user type from the
// request context.
func GetUserTypeFromContext(ctx context.Context) models.UserType {
	if t, ok := ctx.Value(userTypeKey).(models.UserType); ok {
		return t
	}
	return ""
}
