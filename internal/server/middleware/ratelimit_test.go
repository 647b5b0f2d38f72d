package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLimiter struct {
	allowed bool
	err     error
	lastKey string
}

func (f *fakeLimiter) Allow(_ context.Context, key string, _ int, _ time.Duration) (bool, error) {
	f.lastKey = key
	return f.allowed, f.err
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimitAllows(t *testing.T) {
	limiter := &fakeLimiter{allowed: true}
	h := RateLimit(limiter, 10, time.Minute)(okHandler())

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/api/assets", nil)
	r.RemoteAddr = "203.0.113.7:51000"
	h.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "api:203.0.113.7", limiter.lastKey)
}

func TestRateLimitRejects(t *testing.T) {
	limiter := &fakeLimiter{allowed: false}
	h := RateLimit(limiter, 10, time.Minute)(okHandler())

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/api/assets", nil))

	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "10", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "rate limit exceeded")
}

func TestRateLimitFailsOpenOnLimiterError(t *testing.T) {
	limiter := &fakeLimiter{err: errors.New("redis down")}
	h := RateLimit(limiter, 10, time.Minute)(okHandler())

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/api/assets", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestClientIP(t *testing.T) {
	cases := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "remote addr only",
			remoteAddr: "198.51.100.4:443",
			want:       "198.51.100.4",
		},
		{
			name:       "forwarded chain uses first hop",
			remoteAddr: "10.0.0.1:80",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.2"},
			want:       "203.0.113.7",
		},
		{
			name:       "real ip fallback",
			remoteAddr: "10.0.0.1:80",
			headers:    map[string]string{"X-Real-IP": " 203.0.113.9 "},
			want:       "203.0.113.9",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tc.remoteAddr
			for k, v := range tc.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tc.want, clientIP(r))
		})
	}
}
