package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/aussiebroadwan/aegis/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		remote  string
		headers map[string]string
		want    string
	}{
		{"remote addr", "192.168.1.1:12345", nil, "192.168.1.1"},
		{"remote addr without port", "192.168.1.1", nil, "192.168.1.1"},
		{"first forwarded hop", "10.0.0.1:1", map[string]string{"X-Forwarded-For": "203.0.113.1, 10.0.0.1"}, "203.0.113.1"},
		{"real ip", "10.0.0.1:1", map[string]string{"X-Real-IP": " 203.0.113.2 "}, "203.0.113.2"},
		{"forwarded wins over real ip", "10.0.0.1:1", map[string]string{"X-Forwarded-For": "203.0.113.3", "X-Real-IP": "203.0.113.4"}, "203.0.113.3"},
		{"blank forwarded falls through", "10.0.0.1:1", map[string]string{"X-Forwarded-For": " ,10.0.0.9"}, "10.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			require.Equal(t, tt.want, httpx.ClientIP(req))
		})
	}
}

func limited(cfg httpx.RateLimitConfig) http.Handler {
	return httpx.Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}), httpx.RateLimitByIP(cfg))
}

func hit(h http.Handler, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/v1/head", nil)
	req.RemoteAddr = ip + ":5555"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimitByIPBurstThenReject(t *testing.T) {
	h := limited(httpx.RateLimitConfig{RequestsPerWindow: 3, Window: time.Minute, Burst: 3})

	for i := range 3 {
		require.Equal(t, http.StatusOK, hit(h, "198.51.100.7").Code, "request %d", i+1)
	}

	rec := hit(h, "198.51.100.7")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Contains(t, rec.Body.String(), "rate_limit_exceeded")
	require.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
	require.Equal(t, "1m0s", rec.Header().Get("X-RateLimit-Window"))

	retry, err := strconv.Atoi(rec.Header().Get("Retry-After"))
	require.NoError(t, err)
	require.InDelta(t, 20, retry, 1, "one token every 20s")
}

func TestRateLimitByIPSeparatesClients(t *testing.T) {
	h := limited(httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1})

	require.Equal(t, http.StatusOK, hit(h, "198.51.100.1").Code)
	require.Equal(t, http.StatusTooManyRequests, hit(h, "198.51.100.1").Code)
	require.Equal(t, http.StatusOK, hit(h, "198.51.100.2").Code)
}

func TestRateLimitRejectedRequestsDoNotSpendTokens(t *testing.T) {
	h := limited(httpx.RateLimitConfig{RequestsPerWindow: 10, Window: time.Second, Burst: 1})

	require.Equal(t, http.StatusOK, hit(h, "198.51.100.3").Code)
	for range 5 {
		require.Equal(t, http.StatusTooManyRequests, hit(h, "198.51.100.3").Code)
	}

	// One token refills every 100ms regardless of the rejected attempts.
	require.Eventually(t, func() bool {
		return hit(h, "198.51.100.3").Code == http.StatusOK
	}, time.Second, 20*time.Millisecond)
}

func TestRateLimitProfiles(t *testing.T) {
	for name, cfg := range map[string]httpx.RateLimitConfig{
		"strict":   httpx.StrictLimit,
		"moderate": httpx.ModerateLimit,
		"lenient":  httpx.LenientLimit,
		"public":   httpx.PublicLimit,
	} {
		require.Positive(t, cfg.RequestsPerWindow, name)
		require.Positive(t, cfg.Burst, name)
		require.Equal(t, time.Minute, cfg.Window, name)
	}
	require.Less(t, httpx.StrictLimit.RequestsPerWindow, httpx.ModerateLimit.RequestsPerWindow)
	require.Less(t, httpx.ModerateLimit.RequestsPerWindow, httpx.LenientLimit.RequestsPerWindow)
	require.Less(t, httpx.LenientLimit.RequestsPerWindow, httpx.PublicLimit.RequestsPerWindow)
}

func TestParseRateLimitFromEnv(t *testing.T) {
	def := httpx.RateLimitConfig{RequestsPerWindow: 5, Window: time.Minute, Burst: 5}

	t.Run("no overrides", func(t *testing.T) {
		require.Equal(t, def, httpx.ParseRateLimitFromEnv("AEGISTEST", def))
	})

	t.Run("all fields", func(t *testing.T) {
		t.Setenv("RATELIMIT_AEGISTEST_REQUESTS", "50")
		t.Setenv("RATELIMIT_AEGISTEST_WINDOW_SEC", "10")
		t.Setenv("RATELIMIT_AEGISTEST_BURST", "7")

		got := httpx.ParseRateLimitFromEnv("AEGISTEST", def)
		require.Equal(t, httpx.RateLimitConfig{RequestsPerWindow: 50, Window: 10 * time.Second, Burst: 7}, got)
	})

	t.Run("invalid values ignored", func(t *testing.T) {
		t.Setenv("RATELIMIT_AEGISTEST_REQUESTS", "lots")
		t.Setenv("RATELIMIT_AEGISTEST_WINDOW_SEC", "-3")
		t.Setenv("RATELIMIT_AEGISTEST_BURST", "0")

		require.Equal(t, def, httpx.ParseRateLimitFromEnv("AEGISTEST", def))
	})
}
