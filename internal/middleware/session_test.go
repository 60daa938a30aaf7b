package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

type stubVerifier struct {
	accountID string
	err       error
}

func (s stubVerifier) VerifyAccess(string) (string, error) {
	return s.accountID, s.err
}

type stubAccounts struct {
	account models.Account
	err     error
}

func (s stubAccounts) FindByID(context.Context, string) (models.Account, error) {
	return s.account, s.err
}

func TestRequireSessionResolvesIdentity(t *testing.T) {
	account := models.Account{ID: "account-1", Username: "alice", PasswordHash: "secret"}
	mw := RequireSession(stubVerifier{accountID: account.ID}, stubAccounts{account: account})

	var resolved models.PublicAccount
	var ok bool
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resolved, ok = AccountFrom(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if !ok || resolved.ID != account.ID {
		t.Fatalf("expected resolved identity, got %+v ok=%v", resolved, ok)
	}
}

func TestRequireSessionCookieTakesPrecedence(t *testing.T) {
	var seen string
	verifier := verifierFunc(func(token string) (string, error) {
		seen = token
		return "account-1", nil
	})
	mw := RequireSession(verifier, stubAccounts{account: models.Account{ID: "account-1"}})

	handler := mw(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "cookie-token"})
	req.Header.Set("Authorization", "Bearer header-token")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if seen != "cookie-token" {
		t.Fatalf("expected cookie token to win, verifier saw %q", seen)
	}
}

type verifierFunc func(string) (string, error)

func (f verifierFunc) VerifyAccess(token string) (string, error) { return f(token) }

func TestRequireSessionUniformUnauthorized(t *testing.T) {
	cases := map[string]struct {
		verifier AccessVerifier
		accounts AccountLoader
		request  func() *http.Request
	}{
		"missing token": {
			verifier: stubVerifier{accountID: "account-1"},
			accounts: stubAccounts{account: models.Account{ID: "account-1"}},
			request:  func() *http.Request { return httptest.NewRequest(http.MethodGet, "/", nil) },
		},
		"rejected token": {
			verifier: stubVerifier{err: errors.New("bad signature")},
			accounts: stubAccounts{account: models.Account{ID: "account-1"}},
			request: func() *http.Request {
				req := httptest.NewRequest(http.MethodGet, "/", nil)
				req.Header.Set("Authorization", "Bearer nope")
				return req
			},
		},
		"deleted account": {
			verifier: stubVerifier{accountID: "account-1"},
			accounts: stubAccounts{err: repositories.ErrNotFound},
			request: func() *http.Request {
				req := httptest.NewRequest(http.MethodGet, "/", nil)
				req.Header.Set("Authorization", "Bearer valid")
				return req
			},
		},
	}

	var bodies []string
	for name, tc := range cases {
		mw := RequireSession(tc.verifier, tc.accounts)
		handler := mw(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			t.Fatalf("%s: handler must not run", name)
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, tc.request())

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401 got %d", name, rec.Code)
		}
		bodies = append(bodies, rec.Body.String())
	}

	for _, body := range bodies[1:] {
		if body != bodies[0] {
			t.Fatalf("unauthorized responses must be indistinguishable: %q vs %q", bodies[0], body)
		}
	}
}

func TestBearerTokenHeaderFallback(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer  header-token ")

	if got := BearerToken(req); got != "header-token" {
		t.Fatalf("expected trimmed header token, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	if got := BearerToken(req); got != "" {
		t.Fatalf("expected empty token, got %q", got)
	}
}
