package httpx

import (
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/aegis/pkg/slogx"
	"golang.org/x/time/rate"
)

// RateLimitConfig is a token bucket: RequestsPerWindow refill evenly over
// Window, and up to Burst may be spent at once.
type RateLimitConfig struct {
	RequestsPerWindow int
	Window            time.Duration
	Burst             int
}

func (c RateLimitConfig) limit() rate.Limit {
	if c.Window <= 0 || c.RequestsPerWindow <= 0 {
		return rate.Inf
	}
	return rate.Limit(float64(c.RequestsPerWindow) / c.Window.Seconds())
}

// Endpoint profiles. Each can be overridden from the environment with
// RATELIMIT_<PROFILE>_REQUESTS, RATELIMIT_<PROFILE>_WINDOW_SEC and
// RATELIMIT_<PROFILE>_BURST, e.g. RATELIMIT_STRICT_BURST=50.
var (
	// StrictLimit guards the TOTP endpoints.
	StrictLimit = RateLimitConfig{RequestsPerWindow: 5, Window: time.Minute, Burst: 5}

	// ModerateLimit guards appends, verification, export and key management.
	ModerateLimit = RateLimitConfig{RequestsPerWindow: 20, Window: time.Minute, Burst: 20}

	// LenientLimit guards chain reads, search, stats and the live feed.
	LenientLimit = RateLimitConfig{RequestsPerWindow: 100, Window: time.Minute, Burst: 100}

	// PublicLimit guards the head and the public keys.
	PublicLimit = RateLimitConfig{RequestsPerWindow: 1000, Window: time.Minute, Burst: 1000}
)

func init() {
	StrictLimit = ParseRateLimitFromEnv("STRICT", StrictLimit)
	ModerateLimit = ParseRateLimitFromEnv("MODERATE", ModerateLimit)
	LenientLimit = ParseRateLimitFromEnv("LENIENT", LenientLimit)
	PublicLimit = ParseRateLimitFromEnv("PUBLIC", PublicLimit)
}

// ParseRateLimitFromEnv applies RATELIMIT_<profile>_* overrides to def.
// Unparseable or non-positive values are ignored.
func ParseRateLimitFromEnv(profile string, def RateLimitConfig) RateLimitConfig {
	positive := func(suffix string) (int, bool) {
		n, err := strconv.Atoi(os.Getenv("RATELIMIT_" + profile + "_" + suffix))
		return n, err == nil && n > 0
	}

	cfg := def
	if n, ok := positive("REQUESTS"); ok {
		cfg.RequestsPerWindow = n
	}
	if n, ok := positive("WINDOW_SEC"); ok {
		cfg.Window = time.Duration(n) * time.Second
	}
	if n, ok := positive("BURST"); ok {
		cfg.Burst = n
	}
	return cfg
}

// ClientIP is the caller's address. The first X-Forwarded-For hop wins,
// then X-Real-IP, then the connection's remote address.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// idleBucketTTL is how long an unused bucket is kept before it is swept.
const idleBucketTTL = 10 * time.Minute

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// buckets holds one limiter per caller key.
type buckets struct {
	cfg RateLimitConfig
	now func() time.Time

	mu        sync.Mutex
	byKey     map[string]*bucket
	lastSweep time.Time
}

func newBuckets(cfg RateLimitConfig) *buckets {
	return &buckets{cfg: cfg, now: time.Now, byKey: make(map[string]*bucket), lastSweep: time.Now()}
}

// take spends one token for key and reports whether it was available, plus
// the wait until the next one when it was not.
func (b *buckets) take(key string) (bool, time.Duration) {
	now := b.now()

	b.mu.Lock()
	if now.Sub(b.lastSweep) > idleBucketTTL {
		for k, bk := range b.byKey {
			if now.Sub(bk.lastSeen) > idleBucketTTL {
				delete(b.byKey, k)
			}
		}
		b.lastSweep = now
	}
	bk, ok := b.byKey[key]
	if !ok {
		bk = &bucket{lim: rate.NewLimiter(b.cfg.limit(), b.cfg.Burst)}
		b.byKey[key] = bk
	}
	bk.lastSeen = now
	b.mu.Unlock()

	r := bk.lim.ReserveN(now, 1)
	if !r.OK() {
		return false, b.cfg.Window
	}
	if wait := r.DelayFrom(now); wait > 0 {
		r.CancelAt(now)
		return false, wait
	}
	return true, 0
}

// rateLimit rejects callers over cfg with 429 and a Retry-After header.
// keyFn groups requests; an empty key is never limited.
func rateLimit(cfg RateLimitConfig, scope string, keyFn func(*http.Request) string) Middleware {
	b := newBuckets(cfg)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFn(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			ok, wait := b.take(key)
			if ok {
				next.ServeHTTP(w, r)
				return
			}

			retry := max(int((wait+time.Second-1)/time.Second), 1)
			w.Header().Set("Retry-After", strconv.Itoa(retry))
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.RequestsPerWindow))
			w.Header().Set("X-RateLimit-Window", cfg.Window.String())

			slogx.FromContext(r.Context()).Warn("rate limit exceeded",
				"scope", scope, "key", key, "path", r.URL.Path, "retry_after", retry)

			WriteError(w, http.StatusTooManyRequests, "rate_limit_exceeded", "Too many requests. Please try again later.")
		})
	}
}

// RateLimitByIP limits each client address separately.
func RateLimitByIP(cfg RateLimitConfig) Middleware {
	return rateLimit(cfg, "ip", ClientIP)
}

// RateLimitByPrincipal limits per authenticated caller and address, so an
// admin token shared across hosts is not throttled as one client. It must
// run after RequireBearerToken; anonymous requests are keyed by address.
func RateLimitByPrincipal(cfg RateLimitConfig) Middleware {
	return rateLimit(cfg, "principal", func(r *http.Request) string {
		p, _ := PrincipalFromContext(r.Context())
		return p + "@" + ClientIP(r)
	})
}
