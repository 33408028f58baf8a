// AngelaMos | 2026
// ratelimit.go

package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/carterperez-dev/templates/callboard/internal/core"
)

type RateLimitConfig struct {
	Limit   redis_rate.Limit
	Prefix  string
	KeyFunc func(*http.Request) string
	// FailOpen lets requests through when no verdict can be reached at all.
	// A Redis outage alone never triggers it, since the local bucket answers.
	FailOpen   bool
	BypassFunc func(*http.Request) bool
	Logger     *slog.Logger
}

// RateLimiter enforces a GCRA limit in Redis and falls back to an in-process
// token bucket per key when Redis is unreachable.
type RateLimiter struct {
	redis    *redis_rate.Limiter
	fallback *localLimiter
	cfg      RateLimitConfig
}

// NewRateLimiter accepts a nil client, in which case only the local buckets
// are used.
func NewRateLimiter(rdb *redis.Client, cfg RateLimitConfig) *RateLimiter {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = KeyByIP
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	rl := &RateLimiter{fallback: newLocalLimiter(), cfg: cfg}
	if rdb != nil {
		rl.redis = redis_rate.NewLimiter(rdb)
	}
	return rl
}

func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.cfg.BypassFunc != nil && rl.cfg.BypassFunc(r) {
			next.ServeHTTP(w, r)
			return
		}

		key := rl.cfg.Prefix + rl.cfg.KeyFunc(r)
		res, err := rl.allow(r.Context(), key)
		switch {
		case err != nil && rl.cfg.FailOpen:
			rl.cfg.Logger.Warn("rate limiter error, failing open", "error", err, "key", key)
			next.ServeHTTP(w, r)
		case err != nil:
			core.JSONError(w, core.NewAppError(
				err,
				"rate limiter unavailable",
				http.StatusServiceUnavailable,
				"SERVICE_UNAVAILABLE",
			))
		case res.Allowed == 0:
			writeLimitHeaders(w, res)
			writeRateLimited(w, res.RetryAfter)
		default:
			writeLimitHeaders(w, res)
			next.ServeHTTP(w, r)
		}
	})
}

func (rl *RateLimiter) allow(ctx context.Context, key string) (*redis_rate.Result, error) {
	if rl.redis != nil {
		res, err := rl.redis.Allow(ctx, key, rl.cfg.Limit)
		if err == nil {
			return res, nil
		}
		rl.cfg.Logger.WarnContext(ctx, "redis rate limit failed, using local bucket",
			"error", err,
			"key", key,
		)
	}
	return rl.fallback.allow(key, rl.cfg.Limit)
}

// SkipPaths exempts every request whose path starts with one of prefixes.
func SkipPaths(prefixes ...string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		for _, p := range prefixes {
			if strings.HasPrefix(r.URL.Path, p) {
				return true
			}
		}
		return false
	}
}

func KeyByIP(r *http.Request) string {
	return "ratelimit:ip:" + clientIP(r)
}

// KeyByIPAndEndpoint gives each route template its own bucket, so failed
// logins do not eat into the register or refresh allowance.
func KeyByIPAndEndpoint(r *http.Request) string {
	return KeyByIP(r) + ":endpoint:" + normalizeEndpoint(r.URL.Path)
}

// clientIP trusts the last X-Forwarded-For hop, which is the one appended by
// our own proxy.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(xff[strings.LastIndexByte(xff, ',')+1:])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func normalizeEndpoint(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, seg := range segments {
		if isIdentifier(seg) {
			segments[i] = "{id}"
		}
	}
	return "/" + strings.Join(segments, "/")
}

func isIdentifier(seg string) bool {
	if _, err := strconv.ParseUint(seg, 10, 64); err == nil {
		return true
	}
	if len(seg) != 36 {
		return false
	}
	_, err := uuid.Parse(seg)
	return err == nil
}

func writeLimitHeaders(w http.ResponseWriter, res *redis_rate.Result) {
	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit.Rate))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(res.ResetAfter).Unix(), 10))
}

func writeRateLimited(w http.ResponseWriter, retry time.Duration) {
	seconds := max(int(retry.Seconds()), 1)
	w.Header().Set("Retry-After", strconv.Itoa(seconds))
	core.JSONError(w, core.NewAppError(
		core.ErrRateLimited,
		fmt.Sprintf("rate limit exceeded, retry after %d seconds", seconds),
		http.StatusTooManyRequests,
		"RATE_LIMITED",
	))
}

const bucketIdleTTL = 10 * time.Minute

type bucket struct {
	mu       sync.Mutex
	limiter  *rate.Limiter
	interval time.Duration
	seen     time.Time
}

// localLimiter keeps one token bucket per key in memory. Buckets idle for
// longer than bucketIdleTTL are dropped on the next sweep.
type localLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

func newLocalLimiter() *localLimiter {
	return &localLimiter{buckets: make(map[string]*bucket), lastSweep: time.Now()}
}

func (l *localLimiter) get(key string, limit redis_rate.Limit) *bucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if now.Sub(l.lastSweep) > bucketIdleTTL {
		l.sweep(now)
	}

	b, ok := l.buckets[key]
	if !ok {
		interval := limit.Period / time.Duration(limit.Rate)
		b = &bucket{
			limiter:  rate.NewLimiter(rate.Every(interval), limit.Burst),
			interval: interval,
		}
		l.buckets[key] = b
	}
	b.seen = now
	return b
}

func (l *localLimiter) sweep(now time.Time) {
	for key, b := range l.buckets {
		if now.Sub(b.seen) > bucketIdleTTL {
			delete(l.buckets, key)
		}
	}
	l.lastSweep = now
}

// allow reports in redis_rate's shape so the handler treats both paths alike.
func (l *localLimiter) allow(key string, limit redis_rate.Limit) (*redis_rate.Result, error) {
	if limit.Rate <= 0 || limit.Period <= 0 {
		return nil, fmt.Errorf("invalid limit %s", limit)
	}

	b := l.get(key, limit)
	b.mu.Lock()
	defer b.mu.Unlock()

	res := &redis_rate.Result{
		Limit:      limit,
		RetryAfter: -1,
		ResetAfter: b.interval,
	}
	if b.limiter.Allow() {
		res.Allowed = 1
	} else {
		res.RetryAfter = b.interval
	}
	res.Remaining = max(int(b.limiter.Tokens()), 0)
	return res, nil
}

func PerMinute(rate, burst int) redis_rate.Limit {
	return redis_rate.Limit{Rate: rate, Burst: burst, Period: time.Minute}
}
