package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anonto42/socialgraph/backend/internal/auth"
	"github.com/anonto42/socialgraph/backend/internal/models"
	"github.com/labstack/echo/v4"
)

func newServer(tokens *auth.TokenManager, admins []string) *echo.Echo {
	e := echo.New()
	g := e.Group("/api", Authenticate(auth.NewResolver(tokens)))
	g.GET("/whoami", func(c echo.Context) error {
		return c.String(http.StatusOK, IdentityFrom(c).UID)
	})
	g.GET("/admin", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, RequireAdmin(admins))
	return e
}

func issue(t *testing.T, tokens *auth.TokenManager, id string) string {
	t.Helper()
	u := models.NewUser(time.Now())
	u.ID = id
	token, err := tokens.Issue(u)
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func TestAuthenticate(t *testing.T) {
	tokens := auth.NewTokenManager("secret", time.Hour)
	e := newServer(tokens, nil)

	tests := []struct {
		name   string
		setup  func(r *http.Request)
		status int
		body   string
	}{
		{name: "missing", setup: func(r *http.Request) {}, status: http.StatusUnauthorized},
		{name: "garbage", setup: func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, status: http.StatusForbidden},
		{
			name:   "bearer",
			setup:  func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+issue(t, tokens, "u1")) },
			status: http.StatusOK,
			body:   "u1",
		},
		{
			name:   "cookie",
			setup:  func(r *http.Request) { r.AddCookie(&http.Cookie{Name: auth.CookieName, Value: issue(t, tokens, "u2")}) },
			status: http.StatusOK,
			body:   "u2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
			if tt.body != "" && rec.Body.String() != tt.body {
				t.Fatalf("body = %q, want %q", rec.Body.String(), tt.body)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	tokens := auth.NewTokenManager("secret", time.Hour)
	e := newServer(tokens, []string{"admin"})

	for id, want := range map[string]int{"admin": http.StatusOK, "someone": http.StatusForbidden} {
		req := httptest.NewRequest(http.MethodGet, "/api/admin", nil)
		req.Header.Set("Authorization", "Bearer "+issue(t, tokens, id))
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Fatalf("%s: status = %d, want %d", id, rec.Code, want)
		}
	}
}
