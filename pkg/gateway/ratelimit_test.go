package gateway

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/morfien101/fila/pkg/desk"
	"github.com/morfien101/fila/pkg/fila"
)

func TestRateLimitRejectsBurst(t *testing.T) {
	s := newTestServer(t, RateLimitOptions{Enabled: true, RPS: 0.5, Burst: 1, KeyHeader: "X-Api-Key"})

	if w := do(t, s, http.MethodGet, "/healthz", ""); w.Code != http.StatusOK {
		t.Fatalf("first request: %d", w.Code)
	}
	w := do(t, s, http.MethodGet, "/healthz", "")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: %d", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatalf("missing Retry-After")
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Api-Key", "desk-2")
	other := httptest.NewRecorder()
	s.Handler().ServeHTTP(other, req)
	if other.Code != http.StatusOK {
		t.Fatalf("separate key limited: %d", other.Code)
	}
}

func TestRateLimitRequiresPositiveRPS(t *testing.T) {
	_, err := New(desk.New(fila.NewStore(), nil), Options{Location: time.UTC, RateLimit: RateLimitOptions{Enabled: true}})
	if err == nil {
		t.Fatalf("expected error for zero rps")
	}
}

func TestLimiterStoreCleanup(t *testing.T) {
	store := newLimiterStore(RateLimitOptions{RPS: 5, IdleTTL: time.Minute})
	store.get("a")
	store.get("b")
	if store.burst != 5 {
		t.Fatalf("burst = %d, expected default of ceil(rps)", store.burst)
	}

	if n := store.cleanup(time.Now()); n != 0 {
		t.Fatalf("removed %d fresh limiters", n)
	}
	if n := store.cleanup(time.Now().Add(2 * time.Minute)); n != 2 {
		t.Fatalf("removed %d, expected 2", n)
	}
	if store.size() != 0 {
		t.Fatalf("size = %d", store.size())
	}
}
