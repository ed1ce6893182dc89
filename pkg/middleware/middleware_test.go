package middleware_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/JaimeStill/camelrate/pkg/middleware"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestApplyOrder(t *testing.T) {
	var order []string
	mw := middleware.New()

	named := func(name string) middleware.Func {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	mw.Use(named("first"), nil, named("second"))

	handler := mw.Apply(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	if len(order) != 3 || order[0] != "first" || order[1] != "second" || order[2] != "handler" {
		t.Errorf("order: got %v, want [first second handler]", order)
	}
}

func TestCORS(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("disabled sets no headers", func(t *testing.T) {
		handler := middleware.CORS(&middleware.CORSConfig{Enabled: false})(ok)
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Origin", "http://example.com")
		handler.ServeHTTP(rec, req)

		if rec.Header().Get("Access-Control-Allow-Origin") != "" {
			t.Error("CORS headers should not be set when disabled")
		}
	})

	cfg := &middleware.CORSConfig{
		Enabled:        true,
		Origins:        []string{"http://example.com"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         600,
	}

	tests := []struct {
		name        string
		method      string
		origin      string
		preflight   bool
		wantStatus  int
		wantOrigin  string
		wantMethods string
	}{
		{"preflight from allowed origin", "OPTIONS", "http://example.com", true, http.StatusNoContent, "http://example.com", "GET, POST"},
		{"preflight from unknown origin", "OPTIONS", "http://evil.com", true, http.StatusNoContent, "", ""},
		{"simple request from allowed origin", "POST", "http://example.com", false, http.StatusOK, "http://example.com", ""},
		{"plain options reaches handler", "OPTIONS", "http://example.com", false, http.StatusOK, "http://example.com", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, "/", nil)
			req.Header.Set("Origin", tt.origin)
			if tt.preflight {
				req.Header.Set("Access-Control-Request-Method", "POST")
			}
			middleware.CORS(cfg)(ok).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status: got %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("allow-origin: got %q, want %q", got, tt.wantOrigin)
			}
			if got := rec.Header().Get("Access-Control-Allow-Methods"); got != tt.wantMethods {
				t.Errorf("allow-methods: got %q, want %q", got, tt.wantMethods)
			}
			if got := rec.Header().Get("Vary"); got != "Origin" {
				t.Errorf("vary: got %q", got)
			}
		})
	}
}

func TestCORSConfigFinalize(t *testing.T) {
	t.Setenv("TEST_CORS_ORIGINS", " http://a.test , ,http://b.test")
	t.Setenv("TEST_CORS_ENABLED", "true")

	var cfg middleware.CORSConfig
	if err := cfg.Finalize(&middleware.CORSEnv{Origins: "TEST_CORS_ORIGINS", Enabled: "TEST_CORS_ENABLED"}); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if !cfg.Enabled || len(cfg.Origins) != 2 || cfg.Origins[1] != "http://b.test" {
		t.Errorf("env overrides: got %+v", cfg)
	}
	if cfg.MaxAge != 3600 || len(cfg.AllowedHeaders) != 2 {
		t.Errorf("defaults: got %+v", cfg)
	}

	wild := middleware.CORSConfig{Origins: []string{"*"}, AllowCredentials: true}
	if err := wild.Finalize(nil); err == nil {
		t.Error("expected error for credentials with wildcard origin")
	}
}

func TestIdentity(t *testing.T) {
	const secret = "test-secret"

	sign := func(t *testing.T, method jwt.SigningMethod, key any, sub string) string {
		t.Helper()
		token := jwt.NewWithClaims(method, jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		})
		s, err := token.SignedString(key)
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return s
	}

	tests := []struct {
		name   string
		secret string
		header func(t *testing.T) string
		want   string
	}{
		{"no header", secret, func(*testing.T) string { return "" }, ""},
		{"valid token", secret, func(t *testing.T) string {
			return "Bearer " + sign(t, jwt.SigningMethodHS256, []byte(secret), "user-42")
		}, "user-42"},
		{"wrong key", secret, func(t *testing.T) string {
			return "Bearer " + sign(t, jwt.SigningMethodHS256, []byte("other"), "user-42")
		}, ""},
		{"wrong algorithm", secret, func(t *testing.T) string {
			return "Bearer " + sign(t, jwt.SigningMethodHS512, []byte(secret), "user-42")
		}, ""},
		{"malformed", secret, func(*testing.T) string { return "Bearer not-a-token" }, ""},
		{"disabled", "", func(t *testing.T) string {
			return "Bearer " + sign(t, jwt.SigningMethodHS256, []byte(secret), "user-42")
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			handler := middleware.Identity(tt.secret, discard)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = middleware.UserID(r.Context())
			}))

			req := httptest.NewRequest("POST", "/ratings", nil)
			if h := tt.header(t); h != "" {
				req.Header.Set("Authorization", h)
			}
			handler.ServeHTTP(httptest.NewRecorder(), req)

			if got != tt.want {
				t.Errorf("user id: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoggerPassesStatus(t *testing.T) {
	handler := middleware.Logger(discard)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("status: got %d, want 418", rec.Code)
	}
}
