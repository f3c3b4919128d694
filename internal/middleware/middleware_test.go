package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"carelearn/internal/auth"
	"carelearn/internal/domain"
	"carelearn/internal/httputil"
)

type stubVerifier struct {
	tokens map[string]string // token -> subject
}

func (v *stubVerifier) VerifyToken(token string) (*auth.Claims, error) {
	sub, ok := v.tokens[token]
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	c := &auth.Claims{}
	c.Subject = sub
	return c, nil
}

func (v *stubVerifier) Close() error { return nil }

func echoUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, httputil.GetUserID(r))
	})
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAuth(t *testing.T) {
	verifier := &stubVerifier{tokens: map[string]string{"good": "staff-7"}}
	h := Auth(verifier, discardLogger(), "/health")(echoUser())

	tests := []struct {
		name       string
		path       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{name: "valid token", path: "/api/lessons", header: "Bearer good", wantStatus: http.StatusOK, wantBody: "staff-7"},
		{name: "lowercase scheme", path: "/api/lessons", header: "bearer good", wantStatus: http.StatusOK, wantBody: "staff-7"},
		{name: "missing header", path: "/api/lessons", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", path: "/api/lessons", header: "Basic good", wantStatus: http.StatusUnauthorized},
		{name: "empty token", path: "/api/lessons", header: "Bearer ", wantStatus: http.StatusUnauthorized},
		{name: "rejected token", path: "/api/lessons", header: "Bearer bad", wantStatus: http.StatusUnauthorized},
		{name: "public path", path: "/health", wantStatus: http.StatusOK, wantBody: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK && rec.Body.String() != tt.wantBody {
				t.Errorf("user id = %q, want %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestDevUser(t *testing.T) {
	rec := httptest.NewRecorder()
	DevUser("dev-user")(echoUser()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Body.String() != "dev-user" {
		t.Errorf("user id = %q", rec.Body.String())
	}
}

func TestRecovery(t *testing.T) {
	h := Recovery(discardLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("Content-Type = %q", ct)
	}
}
