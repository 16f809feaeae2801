package handler

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// BatchLimiter throttles the batch endpoints (bulk status, CSV import) per
// client IP with a sliding one-minute window. Each of those requests holds a
// transaction over many rows, so one caller must not monopolise the pool.
type BatchLimiter struct {
	maxPerMinute      int
	trustedProxyCount int
	now               func() time.Time

	mu      sync.Mutex
	clients map[string][]time.Time
}

// NewBatchLimiter allows maxPerMinute batch requests per client IP. A
// non-positive limit disables throttling. Stale clients are swept until ctx
// is cancelled.
func NewBatchLimiter(ctx context.Context, maxPerMinute, trustedProxyCount int) *BatchLimiter {
	bl := &BatchLimiter{
		maxPerMinute:      maxPerMinute,
		trustedProxyCount: trustedProxyCount,
		now:               time.Now,
		clients:           make(map[string][]time.Time),
	}
	if maxPerMinute > 0 {
		go bl.sweepLoop(ctx)
	}
	return bl
}

func (bl *BatchLimiter) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			bl.sweep()
		}
	}
}

func (bl *BatchLimiter) sweep() {
	windowStart := bl.now().Add(-time.Minute)
	bl.mu.Lock()
	defer bl.mu.Unlock()
	for ip, stamps := range bl.clients {
		stamps = pruneBefore(stamps, windowStart)
		if len(stamps) == 0 {
			delete(bl.clients, ip)
			continue
		}
		bl.clients[ip] = stamps
	}
}

// pruneBefore filters stamps in place, keeping those after windowStart.
func pruneBefore(stamps []time.Time, windowStart time.Time) []time.Time {
	valid := stamps[:0]
	for _, ts := range stamps {
		if ts.After(windowStart) {
			valid = append(valid, ts)
		}
	}
	return valid
}

// allow records a request from ip and reports how long to wait when the
// window is already full.
func (bl *BatchLimiter) allow(ip string) (time.Duration, bool) {
	now := bl.now()
	bl.mu.Lock()
	defer bl.mu.Unlock()

	stamps := pruneBefore(bl.clients[ip], now.Add(-time.Minute))
	if len(stamps) >= bl.maxPerMinute {
		bl.clients[ip] = stamps
		return stamps[0].Add(time.Minute).Sub(now), false
	}
	bl.clients[ip] = append(stamps, now)
	return 0, true
}

// Limit wraps a batch handler.
func (bl *BatchLimiter) Limit(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if bl.maxPerMinute <= 0 {
			next(w, r)
			return
		}
		if wait, ok := bl.allow(bl.clientIP(r)); !ok {
			w.Header().Set("Retry-After", retryAfterSeconds(wait))
			writeError(w, http.StatusTooManyRequests, "rate_limited")
			return
		}
		next(w, r)
	})
}

func retryAfterSeconds(d time.Duration) string {
	secs := int(d.Seconds()) + 1
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}

// clientIP reads the entry the outermost trusted proxy appended to
// X-Forwarded-For, falling back to the peer address.
func (bl *BatchLimiter) clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" && bl.trustedProxyCount > 0 {
		parts := strings.Split(xff, ",")
		if idx := len(parts) - bl.trustedProxyCount; idx >= 0 {
			return strings.TrimSpace(parts[idx])
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
