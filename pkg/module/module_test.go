package module_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/camelrate/pkg/module"
)

func TestNewInvalidPrefix(t *testing.T) {
	for _, prefix := range []string{"", "api", "/api/v1"} {
		t.Run(prefix, func(t *testing.T) {
			m, err := module.New(prefix, http.NewServeMux())
			if !errors.Is(err, module.ErrInvalidPrefix) {
				t.Errorf("error: got %v, want ErrInvalidPrefix", err)
			}
			if m != nil {
				t.Error("module should be nil on error")
			}
		})
	}
}

func TestRouterDispatch(t *testing.T) {
	apiMux := http.NewServeMux()

	var receivedPath string
	apiMux.HandleFunc("POST /ratings", func(w http.ResponseWriter, r *http.Request) {
		receivedPath = r.URL.Path
		w.Write([]byte("api"))
	})

	var middlewareCalled bool
	m, err := module.New("/api", apiMux)
	if err != nil {
		t.Fatalf("new module: %v", err)
	}
	m.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			middlewareCalled = true
			next.ServeHTTP(w, r)
		})
	})

	router := module.NewRouter()
	router.Mount(m)
	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	router.Handle("GET /metrics", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("metrics"))
	}))

	tests := []struct {
		method   string
		path     string
		wantBody string
	}{
		{"POST", "/api/ratings", "api"},
		{"POST", "/api/ratings/", "api"},
		{"GET", "/healthz", "ok"},
		{"GET", "/metrics", "metrics"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			if rec.Code != http.StatusOK {
				t.Errorf("status: got %d, want 200", rec.Code)
			}
			if body := rec.Body.String(); body != tt.wantBody {
				t.Errorf("body: got %s, want %s", body, tt.wantBody)
			}
		})
	}

	if receivedPath != "/ratings" {
		t.Errorf("inner path: got %s, want /ratings", receivedPath)
	}
	if !middlewareCalled {
		t.Error("module middleware should have been called")
	}
}

func TestModuleRelativePath(t *testing.T) {
	var got []string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = append(got, r.URL.Path)
	})

	m, err := module.New("/api", inner)
	if err != nil {
		t.Fatalf("new module: %v", err)
	}

	req := httptest.NewRequest("GET", "/api/images/a%2Fb", nil)
	m.ServeHTTP(httptest.NewRecorder(), req)
	m.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api", nil))

	if len(got) != 2 || got[0] != "/images/a/b" || got[1] != "/" {
		t.Errorf("inner paths = %v", got)
	}
	if req.URL.Path != "/api/images/a/b" {
		t.Errorf("caller request mutated: %s", req.URL.Path)
	}
}
