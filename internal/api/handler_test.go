package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/eugenenazirov/confcascade/internal/provider"
)

var fixedNow = time.Date(2024, 11, 1, 12, 0, 0, 0, time.UTC)

func setupTestRouter(t *testing.T) http.Handler {
	t.Helper()

	cfg := provider.NewComposite(
		provider.NewRecord(provider.StringMapping{
			"PORT":     "8080",
			"NAME":     "confcascade",
			"RATIO":    "abc",
			"HUGE":     "Infinity",
			"OVERRIDE": "first",
		}, nil),
		provider.NewRecord(provider.Mapping{
			"OVERRIDE": "second",
			"ONLY_B":   "b",
			"FLAG":     true,
		}, nil),
	)

	handler := NewHandler(cfg, WithClock(func() time.Time { return fixedNow }))
	logger := zaptest.NewLogger(t)
	return NewRouter(handler, logger, WithLogging(false))
}

func get(t *testing.T, router http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeLookup(t *testing.T, rec *httptest.ResponseRecorder) lookupResponse {
	t.Helper()

	var body lookupResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return body
}

func TestRequestIDHelpers(t *testing.T) {
	ctx := contextWithRequestID(context.Background(), "abc")
	if got := requestIDFromContext(ctx); got != "abc" {
		t.Fatalf("expected abc, got %s", got)
	}
	resp := httptest.NewRecorder()
	writeInternalError(resp, assertError("boom"))
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 status, got %d", resp.Code)
	}
}

type assertError string

func (a assertError) Error() string { return string(a) }

func TestHealthEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	rec := get(t, router, "/api/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body healthResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Status != "ok" {
		t.Fatalf("expected status ok, got %s", body.Status)
	}
	if !body.Timestamp.Equal(fixedNow) {
		t.Fatalf("expected timestamp %s, got %s", fixedNow, body.Timestamp)
	}
}

func TestLookupString(t *testing.T) {
	router := setupTestRouter(t)

	rec := get(t, router, "/api/config/NAME")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	body := decodeLookup(t, rec)
	if body.Key != "NAME" || body.Type != "string" || body.Value != "confcascade" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestLookupNumber(t *testing.T) {
	router := setupTestRouter(t)

	rec := get(t, router, "/api/config/PORT?type=number&required=true")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	body := decodeLookup(t, rec)
	if body.Value != float64(8080) {
		t.Fatalf("expected 8080, got %#v", body.Value)
	}
}

func TestLookupInfinity(t *testing.T) {
	router := setupTestRouter(t)

	rec := get(t, router, "/api/config/HUGE?type=number")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if body := decodeLookup(t, rec); body.Value != "Infinity" {
		t.Fatalf("expected Infinity, got %#v", body.Value)
	}
}

func TestLookupCascade(t *testing.T) {
	router := setupTestRouter(t)

	if body := decodeLookup(t, get(t, router, "/api/config/OVERRIDE")); body.Value != "first" {
		t.Fatalf("expected first provider to win, got %#v", body.Value)
	}
	if body := decodeLookup(t, get(t, router, "/api/config/ONLY_B")); body.Value != "b" {
		t.Fatalf("expected fallback to second provider, got %#v", body.Value)
	}
}

func TestLookupStatusCodes(t *testing.T) {
	router := setupTestRouter(t)

	testCases := []struct {
		name   string
		target string
		status int
	}{
		{name: "absent", target: "/api/config/MISSING", status: http.StatusNotFound},
		{name: "absent required", target: "/api/config/MISSING?required=true", status: http.StatusNotFound},
		{name: "non numeric", target: "/api/config/RATIO?type=number", status: http.StatusUnprocessableEntity},
		{name: "non string", target: "/api/config/FLAG", status: http.StatusUnprocessableEntity},
		{name: "unknown type", target: "/api/config/PORT?type=bool", status: http.StatusBadRequest},
		{name: "bad required flag", target: "/api/config/PORT?required=perhaps", status: http.StatusBadRequest},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			rec := get(t, router, tc.target)
			if rec.Code != tc.status {
				t.Fatalf("expected status %d, got %d (%s)", tc.status, rec.Code, rec.Body.String())
			}
			var body errorResponse
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode error response: %v", err)
			}
			if body.Error == "" {
				t.Fatalf("expected error message")
			}
		})
	}
}

func TestLookupMissingRequiredNamesKey(t *testing.T) {
	router := setupTestRouter(t)

	rec := get(t, router, "/api/config/MISSING?type=number&required=true")
	var body errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if body.Error != "Missing required key" || body.Details != "configuration: number MISSING is required" {
		t.Fatalf("unexpected error body: %+v", body)
	}
}

func TestLookupCancelledRequest(t *testing.T) {
	handler := NewHandler(provider.NewRecord(provider.StringMapping{"A": "1"}, nil))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/config/A", nil).WithContext(ctx)
	req.SetPathValue("key", "A")
	rec := httptest.NewRecorder()
	handler.handleLookup(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}
