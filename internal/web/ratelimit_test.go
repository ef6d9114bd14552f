package web

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestRateLimiter_Allow(t *testing.T) {
	defer goleak.VerifyNone(t)

	rl := newRateLimiter(1, 2)
	defer rl.Stop()

	assert.True(t, rl.allow("192.0.2.1"))
	assert.True(t, rl.allow("192.0.2.1"))
	assert.False(t, rl.allow("192.0.2.1"), "burst exhausted")
	assert.True(t, rl.allow("192.0.2.2"), "buckets are per client")
}

func TestRateLimiter_Middleware(t *testing.T) {
	defer goleak.VerifyNone(t)

	rl := newRateLimiter(1, 1)
	defer rl.Stop()

	h := rl.middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/forms", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusNoContent, send().Code)

	rec := send()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "61", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "RATE001")
}

func TestRateLimiter_Evict(t *testing.T) {
	defer goleak.VerifyNone(t)

	rl := newRateLimiter(60, 10)
	defer rl.Stop()

	rl.allow("192.0.2.1")
	rl.evict(time.Now().Add(visitorIdleTTL + time.Second))

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.Empty(t, rl.visitors)
}

func TestRateLimiter_StopIsIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t)

	rl := newRateLimiter(60, 10)
	rl.Stop()
	rl.Stop()
}
