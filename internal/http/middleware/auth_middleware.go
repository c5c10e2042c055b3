package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sandeepkv93/debt-ledger-service/internal/domain"
	"github.com/sandeepkv93/debt-ledger-service/internal/http/response"
	"github.com/sandeepkv93/debt-ledger-service/internal/observability"
	"github.com/sandeepkv93/debt-ledger-service/internal/security"
	"github.com/sandeepkv93/debt-ledger-service/internal/service"
)

type contextKey string

const (
	ClaimsContextKey contextKey = "claims"
	UserIDContextKey contextKey = "user_id"
)

// AuthMiddleware requires a valid bearer token and stores its claims and
// subject in the request context.
func AuthMiddleware(jwtMgr *security.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				observability.RecordTokenValidation(r.Context(), "missing")
				response.Error(w, r, http.StatusUnauthorized, "TOKEN_MALFORMED", "Missing bearer token", nil)
				return
			}
			claims, err := jwtMgr.Validate(raw)
			if err != nil {
				if errors.Is(err, security.ErrTokenExpired) {
					observability.RecordTokenValidation(r.Context(), "expired")
					response.Error(w, r, http.StatusUnauthorized, "TOKEN_EXPIRED", "Token has expired", nil)
					return
				}
				observability.RecordTokenValidation(r.Context(), "malformed")
				response.Error(w, r, http.StatusUnauthorized, "TOKEN_MALFORMED", "Invalid token", nil)
				return
			}
			uid, err := claims.UserID()
			if err != nil {
				observability.RecordTokenValidation(r.Context(), "malformed")
				response.Error(w, r, http.StatusUnauthorized, "TOKEN_MALFORMED", "Invalid token", nil)
				return
			}
			observability.RecordTokenValidation(r.Context(), "valid")
			ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
			ctx = context.WithValue(ctx, UserIDContextKey, uid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(auth) < 7 || !strings.EqualFold(auth[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(auth[7:])
}

func ClaimsFromContext(ctx context.Context) (*security.Claims, bool) {
	c, ok := ctx.Value(ClaimsContextKey).(*security.Claims)
	return c, ok
}

func UserIDFromContext(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(UserIDContextKey).(uint)
	return id, ok && id != 0
}

type ProfileLookup interface {
	Me(ctx context.Context, userID uint) (*domain.User, error)
}

// RequireVerified rejects tokens whose account has not completed email
// verification. It must run after AuthMiddleware.
func RequireVerified(users ProfileLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid, ok := UserIDFromContext(r.Context())
			if !ok {
				response.Error(w, r, http.StatusUnauthorized, "TOKEN_MALFORMED", "Missing auth context", nil)
				return
			}
			_, err := users.Me(r.Context(), uid)
			switch {
			case err == nil:
				next.ServeHTTP(w, r)
			case errors.Is(err, service.ErrNotVerified):
				response.Error(w, r, http.StatusForbidden, "NOT_VERIFIED", "Email not verified", nil)
			case errors.Is(err, service.ErrUserNotFound):
				response.Error(w, r, http.StatusNotFound, "USER_NOT_FOUND", "User not found", nil)
			default:
				response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "Failed to load user", nil)
			}
		})
	}
}
