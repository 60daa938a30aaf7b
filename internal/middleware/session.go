package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

// AccessTokenCookie names the cookie carrying the access token. The cookie
// takes precedence over the Authorization header.
const AccessTokenCookie = "accessToken"

// RefreshTokenCookie names the cookie carrying the refresh token.
const RefreshTokenCookie = "refreshToken"

// AccessVerifier checks an access token and returns the account it belongs to.
type AccessVerifier interface {
	VerifyAccess(token string) (string, error)
}

// AccountLoader resolves an account by its identifier.
type AccountLoader interface {
	FindByID(ctx context.Context, id string) (models.Account, error)
}

type accountCtxKey struct{}

// AccountFrom returns the identity resolved by RequireSession, if any.
func AccountFrom(ctx context.Context) (models.PublicAccount, bool) {
	account, ok := ctx.Value(accountCtxKey{}).(models.PublicAccount)
	return account, ok
}

// WithAccount attaches a resolved identity to the context. Exposed for handler tests.
func WithAccount(ctx context.Context, account models.PublicAccount) context.Context {
	return context.WithValue(ctx, accountCtxKey{}, account)
}

// RequireSession resolves the caller's identity from a bearer token and
// attaches it to the request context. Every failure mode responds with the
// same 401 body so callers cannot distinguish which sub-check failed.
func RequireSession(verifier AccessVerifier, accounts AccountLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			logger := logging.FromContext(ctx)

			token := BearerToken(r)
			if token == "" {
				unauthorized(w)
				return
			}

			accountID, err := verifier.VerifyAccess(token)
			if err != nil {
				logger.Warn("access token rejected", "error", err)
				unauthorized(w)
				return
			}

			account, err := accounts.FindByID(ctx, accountID)
			if err != nil {
				if !errors.Is(err, repositories.ErrNotFound) {
					logger.Error("load session account", "accountId", accountID, "error", err)
				}
				unauthorized(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithAccount(ctx, account.Public())))
		})
	}
}

// OptionalSession resolves the caller's identity when a valid token is
// present and passes the request through unchanged otherwise. Used on public
// routes whose responses are personalized for signed-in viewers.
func OptionalSession(verifier AccessVerifier, accounts AccountLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token := BearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			accountID, err := verifier.VerifyAccess(token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			account, err := accounts.FindByID(ctx, accountID)
			if err != nil {
				if !errors.Is(err, repositories.ErrNotFound) {
					logging.FromContext(ctx).Error("load session account", "accountId", accountID, "error", err)
				}
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithAccount(ctx, account.Public())))
		})
	}
}

// BearerToken extracts the access token from the request, preferring the
// cookie over the Authorization header.
func BearerToken(r *http.Request) string {
	if cookie, err := r.Cookie(AccessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
}
