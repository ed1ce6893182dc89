package rating_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/camelrate/internal/rating"
	"github.com/JaimeStill/camelrate/internal/scoring"
	"github.com/JaimeStill/camelrate/internal/validation"
	"github.com/JaimeStill/camelrate/pkg/middleware"
)

type mockSystem struct {
	rateFn    func(ctx context.Context, req rating.Request) (*rating.Result, error)
	compareFn func(ctx context.Context, req rating.CompareRequest) (*rating.Comparison, error)
}

func (m *mockSystem) Handler() *rating.Handler {
	return rating.NewHandler(m, scoring.DefaultTable(), discard())
}

func (m *mockSystem) Rate(ctx context.Context, req rating.Request) (*rating.Result, error) {
	return m.rateFn(ctx, req)
}

func (m *mockSystem) Compare(ctx context.Context, req rating.CompareRequest) (*rating.Comparison, error) {
	return m.compareFn(ctx, req)
}

func (m *mockSystem) Categories() []string { return categories }

func setupMux(h *rating.Handler) http.Handler {
	mux := http.NewServeMux()
	group := h.Routes()
	for _, route := range group.Routes {
		pattern := route.Method + " " + group.Prefix + route.Pattern
		mux.HandleFunc(pattern, route.Handler)
	}
	return mux
}

func TestHandlerRate(t *testing.T) {
	var gotReq rating.Request
	sys := &mockSystem{
		rateFn: func(_ context.Context, req rating.Request) (*rating.Result, error) {
			gotReq = req
			return &rating.Result{
				Outcome:      json.RawMessage(`{"overall_score": 7.25, "is_valid_camel": true}`),
				Cached:       true,
				Fingerprint:  "fp",
				ResponseTime: 40 * time.Millisecond,
			}, nil
		},
	}

	body := strings.NewReader(`{"image_url": "https://img/a.jpg", "gender": "female"}`)
	req := httptest.NewRequest("POST", "/ratings", body)
	req = req.WithContext(middleware.WithUserID(req.Context(), "user-3"))
	rec := httptest.NewRecorder()

	setupMux(sys.Handler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if gotReq.ImageURL != "https://img/a.jpg" || gotReq.Gender != "female" || gotReq.UserID != "user-3" {
		t.Errorf("request = %+v", gotReq)
	}

	var resp map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["overall_score"] != 7.25 || resp["cached"] != true || resp["response_time_ms"] != 40.0 {
		t.Errorf("response = %v", resp)
	}
}

func TestHandlerRateErrors(t *testing.T) {
	rejection := validation.Outcome{ContainsCamel: true, MissingParts: []string{"legs"}}.Gate()

	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"bad json", `{`, nil, http.StatusBadRequest, ""},
		{"rejection", `{"image_url": "u"}`, rejection, http.StatusBadRequest, validation.ReasonUnsuitable},
		{"invalid gender", `{"image_url": "u"}`, scoring.ErrInvalidGender, http.StatusBadRequest, scoring.ErrInvalidGender.Error()},
		{"missing image", `{}`, rating.ErrMissingImage, http.StatusBadRequest, rating.ErrMissingImage.Error()},
		{"internal", `{"image_url": "u"}`, errors.New("boom"), http.StatusInternalServerError, "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys := &mockSystem{
				rateFn: func(context.Context, rating.Request) (*rating.Result, error) {
					return nil, tt.err
				},
			}

			req := httptest.NewRequest("POST", "/ratings", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			setupMux(sys.Handler()).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantError == "" {
				return
			}

			var resp map[string]any
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp["error"] != tt.wantError {
				t.Errorf("error = %v, want %q", resp["error"], tt.wantError)
			}
		})
	}

	t.Run("rejection payload", func(t *testing.T) {
		sys := &mockSystem{
			rateFn: func(context.Context, rating.Request) (*rating.Result, error) { return nil, rejection },
		}

		req := httptest.NewRequest("POST", "/ratings", strings.NewReader(`{"image_url": "u"}`))
		rec := httptest.NewRecorder()
		setupMux(sys.Handler()).ServeHTTP(rec, req)

		var resp validation.Rejection
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(resp.MissingParts) != 1 || len(resp.Suggestions) == 0 {
			t.Errorf("rejection = %+v", resp)
		}
	})
}

func TestHandlerCompare(t *testing.T) {
	sys := &mockSystem{
		compareFn: func(_ context.Context, req rating.CompareRequest) (*rating.Comparison, error) {
			if req.ImageURL1 != "a" || req.ImageURL2 != "b" {
				t.Errorf("request = %+v", req)
			}
			return &rating.Comparison{Winner: rating.WinnerSecond, ScoreDifference: 0.5}, nil
		},
	}

	req := httptest.NewRequest("POST", "/ratings/compare", strings.NewReader(`{"image_url_1": "a", "image_url_2": "b"}`))
	rec := httptest.NewRecorder()
	setupMux(sys.Handler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["winner"] != "Camel 2" || resp["score_difference"] != 0.5 {
		t.Errorf("response = %v", resp)
	}
}

func TestHandlerWeights(t *testing.T) {
	sys := &mockSystem{}

	tests := []struct {
		query      string
		wantStatus int
		wantBone   float64
	}{
		{"?gender=male", http.StatusOK, 5},
		{"?gender=female", http.StatusOK, 1},
		{"", http.StatusOK, 3},
		{"?gender=dromedary", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/ratings/weights"+tt.query, nil)
			rec := httptest.NewRecorder()
			setupMux(sys.Handler()).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			var resp struct {
				Weights       map[string]float64 `json:"weights"`
				DefaultWeight int                `json:"default_weight"`
				Categories    []string           `json:"categories"`
			}
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Weights["BONE THICKNESS"] != tt.wantBone {
				t.Errorf("BONE THICKNESS = %v, want %v", resp.Weights["BONE THICKNESS"], tt.wantBone)
			}
			if resp.DefaultWeight != 3 || len(resp.Categories) != len(categories) {
				t.Errorf("response = %+v", resp)
			}
		})
	}
}
