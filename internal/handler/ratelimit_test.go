package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestLimiter(t *testing.T, maxPerMinute, proxies int) (*BatchLimiter, *time.Time) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	clock := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	bl := NewBatchLimiter(ctx, maxPerMinute, proxies)
	bl.now = func() time.Time { return clock }
	return bl, &clock
}

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func batchRequest(bl *BatchLimiter, remote, xff string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/issues/bulk-status", nil)
	req.RemoteAddr = remote
	if xff != "" {
		req.Header.Set("X-Forwarded-For", xff)
	}
	rec := httptest.NewRecorder()
	bl.Limit(okHandler).ServeHTTP(rec, req)
	return rec
}

func TestBatchLimiter_BlocksOverLimit(t *testing.T) {
	bl, _ := newTestLimiter(t, 3, 0)

	for i := 0; i < 3; i++ {
		if rec := batchRequest(bl, "10.0.0.1:1234", ""); rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, rec.Code)
		}
	}
	rec := batchRequest(bl, "10.0.0.1:1234", "")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 on 4th request, got %d", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "61" {
		t.Errorf("expected Retry-After=61, got %q", got)
	}
	if resp := decodeError(t, rec); resp != "rate_limited" {
		t.Errorf("expected error=rate_limited, got %q", resp)
	}
}

func TestBatchLimiter_WindowSlides(t *testing.T) {
	bl, clock := newTestLimiter(t, 1, 0)

	batchRequest(bl, "10.0.0.1:1234", "")
	*clock = clock.Add(30 * time.Second)
	if rec := batchRequest(bl, "10.0.0.1:1234", ""); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 inside the window, got %d", rec.Code)
	}
	*clock = clock.Add(31 * time.Second)
	if rec := batchRequest(bl, "10.0.0.1:1234", ""); rec.Code != http.StatusOK {
		t.Errorf("expected 200 once the window passed, got %d", rec.Code)
	}
}

func TestBatchLimiter_DifferentIPsAreIndependent(t *testing.T) {
	bl, _ := newTestLimiter(t, 1, 0)

	batchRequest(bl, "10.0.0.1:1234", "")
	if rec := batchRequest(bl, "10.0.0.2:1234", ""); rec.Code != http.StatusOK {
		t.Errorf("different IP should not be limited, got %d", rec.Code)
	}
}

func TestBatchLimiter_TrustedProxyEntry(t *testing.T) {
	bl, _ := newTestLimiter(t, 1, 1)

	batchRequest(bl, "10.0.0.99:1234", "203.0.113.50")
	// A spoofed leftmost entry does not change the client the proxy appended.
	rec := batchRequest(bl, "10.0.0.99:1234", "1.2.3.4, 203.0.113.50")
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429 for the same proxied client, got %d", rec.Code)
	}
}

func TestBatchLimiter_IgnoresForwardedForWithoutProxy(t *testing.T) {
	bl, _ := newTestLimiter(t, 1, 0)

	batchRequest(bl, "10.0.0.1:1234", "203.0.113.50")
	rec := batchRequest(bl, "10.0.0.1:1234", "198.51.100.7")
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("expected the peer address to be used, got %d", rec.Code)
	}
}

func TestBatchLimiter_DisabledPassesThrough(t *testing.T) {
	bl, _ := newTestLimiter(t, 0, 0)

	for i := 0; i < 5; i++ {
		if rec := batchRequest(bl, "10.0.0.1:1234", ""); rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, rec.Code)
		}
	}
}

func TestBatchLimiter_SweepDropsIdleClients(t *testing.T) {
	bl, clock := newTestLimiter(t, 2, 0)

	batchRequest(bl, "10.0.0.1:1234", "")
	*clock = clock.Add(2 * time.Minute)
	bl.sweep()

	bl.mu.Lock()
	defer bl.mu.Unlock()
	if len(bl.clients) != 0 {
		t.Errorf("expected idle client to be swept, got %d entries", len(bl.clients))
	}
}
