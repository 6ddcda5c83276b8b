package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/Temutjin2k/route-guard/internal/domain/models"
	"github.com/Temutjin2k/route-guard/internal/domain/types"
	"github.com/Temutjin2k/route-guard/pkg/logger"
	wrap "github.com/Temutjin2k/route-guard/pkg/logger/wrapper"
)

type fakeAuth struct {
	users map[string]*models.User
}

func (a *fakeAuth) RoleCheck(_ context.Context, token string) (*models.User, error) {
	u, ok := a.users[token]
	if !ok {
		return nil, types.ErrInvalidToken
	}
	return u, nil
}

func newTestMiddleware() (*Middleware, *models.User, *models.User) {
	user := &models.User{ID: uuid.New(), Role: types.RoleUser}
	admin := &models.User{ID: uuid.New(), Role: types.RoleAdmin}
	auth := &fakeAuth{users: map[string]*models.User{"user-token": user, "admin-token": admin}}
	return NewMiddleware(auth, logger.NewNop()), user, admin
}

func TestAuthAndRequireRoles(t *testing.T) {
	m, _, _ := newTestMiddleware()

	var seen *models.User
	adminOnly := m.Auth(m.RequireRoles(func(w http.ResponseWriter, r *http.Request) {
		seen = models.UserFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}, types.RoleAdmin))

	tests := []struct {
		name     string
		header   string
		wantCode int
	}{
		{name: "no header", header: "", wantCode: http.StatusUnauthorized},
		{name: "malformed header", header: "Token abc", wantCode: http.StatusUnauthorized},
		{name: "invalid token", header: "Bearer nope", wantCode: http.StatusUnauthorized},
		{name: "wrong role", header: "Bearer user-token", wantCode: http.StatusForbidden},
		{name: "admin", header: "Bearer admin-token", wantCode: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			adminOnly.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantCode == http.StatusNoContent && (seen == nil || seen.Role != types.RoleAdmin) {
				t.Fatalf("user in context = %+v", seen)
			}
		})
	}
}

func TestAuth_AnonymousPassesThrough(t *testing.T) {
	m, _, _ := newTestMiddleware()

	var seen *models.User
	h := m.Auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = models.UserFromContext(r.Context())
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/routes/shared", nil))

	if !seen.IsAnonymous() {
		t.Fatalf("expected anonymous user, got %+v", seen)
	}
}

func TestRequestID(t *testing.T) {
	m, _, _ := newTestMiddleware()

	var got string
	h := m.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = wrap.GetRequestID(r.Context())
	}))

	incoming := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, incoming)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got != incoming || rec.Header().Get(RequestIDHeader) != incoming {
		t.Fatalf("request id = %q, header = %q, want %q", got, rec.Header().Get(RequestIDHeader), incoming)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if _, err := uuid.Parse(got); err != nil {
		t.Fatalf("generated request id %q is not a uuid", got)
	}
}

func TestRecover(t *testing.T) {
	m, _, _ := newTestMiddleware()

	h := m.Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(errors.New("boom"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get("Connection") != "close" {
		t.Fatal("connection must be closed after a panic")
	}
}
