package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"hrunity/internal/transport/http/api"
)

// RateLimitKeyFunc picks the bucket a request counts against.
type RateLimitKeyFunc func(r *http.Request) string

// pruneThreshold is the bucket count above which expired buckets are
// dropped on the next request.
const pruneThreshold = 1024

type rateBucket struct {
	count int
	reset time.Time
}

type rateDecision struct {
	allowed   bool
	remaining int
	resetIn   time.Duration
}

// rateLimiter counts requests per key in fixed windows.
type rateLimiter struct {
	limit  int
	window time.Duration
	keyFn  RateLimitKeyFunc
	now    func() time.Time

	mu      sync.Mutex
	buckets map[string]*rateBucket
}

// RateLimit allows limit requests per window for each session, or per
// client IP for anonymous callers. A non-positive limit disables it.
func RateLimit(limit int, window time.Duration) func(http.Handler) http.Handler {
	rl := newRateLimiter(limit, window, actorOrIPKey)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.enforce(w, r) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type sensitiveScope int

const (
	scopeNone sensitiveScope = iota
	// scopeSession throttles role selection by IP and by employee id.
	scopeSession
	// scopeActor throttles expensive or outward-facing mutations per session.
	scopeActor
)

type sensitiveRoute struct {
	scope  sensitiveScope
	prefix string
	suffix string
}

var sensitiveRoutes = []sensitiveRoute{
	{scope: scopeSession, prefix: "/session"},
	{scope: scopeActor, prefix: "/admin/storage/reset"},
	{scope: scopeActor, prefix: "/admin/storage/seed"},
	{scope: scopeActor, prefix: "/reviews/", suffix: "/feedback-requests"},
	{scope: scopeActor, prefix: "/reviews/", suffix: "/ai-feedback"},
}

// SensitiveMutationRateLimit adds tighter limits on top of RateLimit for
// the routes in sensitiveRoutes: a quarter of baseLimit for role selection
// and half of it for the actor-scoped mutations.
func SensitiveMutationRateLimit(baseLimit int, window time.Duration) func(http.Handler) http.Handler {
	sessionLimit := max(baseLimit/4, 1)
	sessionByIP := newRateLimiter(sessionLimit, window, clientIPKey)
	sessionByEmployee := newRateLimiter(sessionLimit, window, BodyFieldOrIPKey("employeeId"))
	byActor := newRateLimiter(max(baseLimit/2, 1), window, actorOrIPKey)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch sensitiveScopeOf(r) {
			case scopeSession:
				if !sessionByIP.enforce(w, r) || !sessionByEmployee.enforce(w, r) {
					return
				}
			case scopeActor:
				if !byActor.enforce(w, r) {
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func sensitiveScopeOf(r *http.Request) sensitiveScope {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
	default:
		return scopeNone
	}
	path := strings.TrimPrefix(strings.TrimSpace(r.URL.Path), "/api/v1")
	for _, route := range sensitiveRoutes {
		if route.suffix == "" {
			if path == route.prefix {
				return route.scope
			}
			continue
		}
		if strings.HasPrefix(path, route.prefix) && strings.HasSuffix(path, route.suffix) {
			return route.scope
		}
	}
	return scopeNone
}

// BodyFieldOrIPKey keys requests by a string field of their JSON body,
// falling back to the client IP when the field is absent.
func BodyFieldOrIPKey(field string) RateLimitKeyFunc {
	field = strings.TrimSpace(field)
	return func(r *http.Request) string {
		value := jsonBodyField(r, field)
		if value == "" {
			return clientIPKey(r)
		}
		return field + ":" + strings.ToLower(value)
	}
}

func actorOrIPKey(r *http.Request) string {
	if principal, ok := GetPrincipal(r.Context()); ok && principal.SessionID != "" {
		return "session:" + principal.SessionID
	}
	return clientIPKey(r)
}

func clientIPKey(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}

func newRateLimiter(limit int, window time.Duration, keyFn RateLimitKeyFunc) *rateLimiter {
	if keyFn == nil {
		keyFn = actorOrIPKey
	}
	return &rateLimiter{
		limit:   limit,
		window:  window,
		keyFn:   keyFn,
		now:     time.Now,
		buckets: map[string]*rateBucket{},
	}
}

// take counts one request against key.
func (rl *rateLimiter) take(key string) rateDecision {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if len(rl.buckets) > pruneThreshold {
		for k, b := range rl.buckets {
			if now.After(b.reset) {
				delete(rl.buckets, k)
			}
		}
	}
	bucket, ok := rl.buckets[key]
	if !ok || now.After(bucket.reset) {
		bucket = &rateBucket{reset: now.Add(rl.window)}
		rl.buckets[key] = bucket
	}
	bucket.count++
	return rateDecision{
		allowed:   bucket.count <= rl.limit,
		remaining: max(rl.limit-bucket.count, 0),
		resetIn:   bucket.reset.Sub(now),
	}
}

// enforce answers 429 and returns false once the caller's bucket is spent.
func (rl *rateLimiter) enforce(w http.ResponseWriter, r *http.Request) bool {
	if rl.limit <= 0 {
		return true
	}
	key := rl.keyFn(r)
	if key == "" {
		key = clientIPKey(r)
	}
	d := rl.take(key)
	resetIn := ceilSeconds(d.resetIn)

	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.Itoa(resetIn))
	if d.allowed {
		return true
	}

	w.Header().Set("Retry-After", strconv.Itoa(max(resetIn, 1)))
	slog.Warn("rate limit exceeded",
		"key", key,
		"method", r.Method,
		"path", r.URL.Path,
		"limit", rl.limit,
		"windowSec", int(rl.window.Seconds()),
		"requestId", GetRequestID(r.Context()),
	)
	api.Fail(w, http.StatusTooManyRequests, "rate_limited", "too many requests", GetRequestID(r.Context()))
	return false
}

func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}

type readCloser struct {
	io.Reader
	io.Closer
}

// jsonBodyField reads a top-level string field from a JSON body and
// restores the body for the next handler.
func jsonBodyField(r *http.Request, field string) string {
	if r.Body == nil || !strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/json") {
		return ""
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, 64*1024))
	r.Body = readCloser{Reader: io.MultiReader(bytes.NewReader(raw), r.Body), Closer: r.Body}
	if err != nil {
		return ""
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	var value string
	if err := json.Unmarshal(payload[field], &value); err != nil {
		return ""
	}
	return strings.TrimSpace(value)
}
