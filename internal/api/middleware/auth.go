package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/cmdstash/cmdstash/internal/api/response"
	"github.com/cmdstash/cmdstash/internal/auth"
)

const tokenKey contextKey = "bearerToken"

// TokenResolver looks up a bearer token by its secret value.
type TokenResolver interface {
	ResolveToken(ctx context.Context, value string) (*auth.Token, error)
}

// Authenticate resolves the Authorization header into a bearer token stored
// in the request context. An absent header is the anonymous case and passes
// through; a header without the Bearer scheme is a 401. A well-formed value
// that matches no token also passes through anonymously — RequireToken
// escalates that to a 401 on routes that need an identity.
func Authenticate(resolver TokenResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			value, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				response.Err(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			value = strings.TrimSpace(value)

			token, err := resolver.ResolveToken(r.Context(), value)
			if err != nil {
				if errors.Is(err, auth.ErrTokenNotFound) {
					next.ServeHTTP(w, r)
					return
				}
				slog.Error("failed to resolve bearer token", "error", err)
				response.Err(w, http.StatusInternalServerError, "internal server error")
				return
			}

			ctx := context.WithValue(r.Context(), tokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireToken rejects requests whose context holds no bearer token.
func RequireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetToken(r.Context()) == nil {
			response.Err(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetToken retrieves the authenticated bearer token from the request
// context, or nil for anonymous callers.
func GetToken(ctx context.Context) *auth.Token {
	if t, ok := ctx.Value(tokenKey).(*auth.Token); ok {
		return t
	}
	return nil
}
