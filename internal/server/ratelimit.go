package server

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/thruflo/sortviz/internal/logging"
)

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	MaxAttempts int           // Maximum attempts per window
	Window      time.Duration // Sliding window length
	BlockAfter  int           // Block after this many consecutive failures
	BlockTime   time.Duration // Base block duration, doubled for each further block
}

// DefaultRateLimitConfig returns the limits applied to POST /auth.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxAttempts: 5,
		Window:      time.Minute,
		BlockAfter:  10,
		BlockTime:   5 * time.Minute,
	}
}

// DefaultControlRateLimitConfig returns the limits applied to the control
// endpoints. Controls never fail authentication, so only the window applies.
func DefaultControlRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxAttempts: 120,
		Window:      time.Minute,
		BlockAfter:  10,
		BlockTime:   5 * time.Minute,
	}
}

// maxBlock caps the exponential backoff.
const maxBlock = 24 * time.Hour

// rateLimiter is a per-IP sliding window limiter with exponential backoff
// after repeated failures.
type rateLimiter struct {
	mu     sync.Mutex
	config RateLimitConfig
	log    *logging.Logger
	now    func() time.Time

	attempts map[string][]time.Time
	failures map[string]int
	blocked  map[string]time.Time
}

func newRateLimiter(config RateLimitConfig, logger *logging.Logger) *rateLimiter {
	def := DefaultRateLimitConfig()
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = def.MaxAttempts
	}
	if config.Window <= 0 {
		config.Window = def.Window
	}
	if config.BlockAfter <= 0 {
		config.BlockAfter = def.BlockAfter
	}
	if config.BlockTime <= 0 {
		config.BlockTime = def.BlockTime
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &rateLimiter{
		config:   config,
		log:      logger,
		now:      time.Now,
		attempts: make(map[string][]time.Time),
		failures: make(map[string]int),
		blocked:  make(map[string]time.Time),
	}
}

// checkResult is the outcome of a rate limit check.
type checkResult struct {
	Allowed    bool
	RetryAfter time.Duration
	Blocked    bool
	Reason     string
}

// check records an attempt from ip if it is allowed.
func (rl *rateLimiter) check(ip string) checkResult {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()

	if expiry, ok := rl.blocked[ip]; ok {
		if now.Before(expiry) {
			return checkResult{
				RetryAfter: expiry.Sub(now),
				Blocked:    true,
				Reason:     "too many failed attempts",
			}
		}
		delete(rl.blocked, ip)
	}

	recent := rl.pruneLocked(ip, now)
	if len(recent) >= rl.config.MaxAttempts {
		retryAfter := recent[0].Add(rl.config.Window).Sub(now)
		if retryAfter <= 0 {
			retryAfter = time.Second
		}
		return checkResult{
			RetryAfter: retryAfter,
			Reason:     "rate limit exceeded",
		}
	}

	rl.attempts[ip] = append(recent, now)
	return checkResult{Allowed: true}
}

// pruneLocked drops attempts outside the window and returns the rest.
func (rl *rateLimiter) pruneLocked(ip string, now time.Time) []time.Time {
	windowStart := now.Add(-rl.config.Window)
	timestamps := rl.attempts[ip]
	kept := timestamps[:0]
	for _, ts := range timestamps {
		if ts.After(windowStart) {
			kept = append(kept, ts)
		}
	}
	if len(kept) == 0 {
		delete(rl.attempts, ip)
		return nil
	}
	rl.attempts[ip] = kept
	return kept
}

// recordSuccess clears the failure history of ip.
func (rl *rateLimiter) recordSuccess(ip string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	delete(rl.failures, ip)
	delete(rl.blocked, ip)
}

// recordFailure counts a failed attempt and blocks ip once the count reaches
// BlockAfter. Every further BlockAfter failures double the block.
func (rl *rateLimiter) recordFailure(ip string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.failures[ip]++
	count := rl.failures[ip]
	if count < rl.config.BlockAfter {
		return
	}

	blocks := (count - rl.config.BlockAfter) / rl.config.BlockAfter
	d := rl.config.BlockTime
	for i := 0; i < blocks && d < maxBlock; i++ {
		d *= 2
	}
	d = min(d, maxBlock)

	rl.blocked[ip] = rl.now().Add(d)
	rl.log.Warn("client blocked", "ip", ip, "failures", count, "duration", d)
}

// cleanup removes expired entries. Failure counts survive while the IP is
// blocked or still has attempts in the window.
func (rl *rateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for ip := range rl.attempts {
		rl.pruneLocked(ip, now)
	}
	for ip, expiry := range rl.blocked {
		if !now.Before(expiry) {
			delete(rl.blocked, ip)
		}
	}
	for ip := range rl.failures {
		_, blocked := rl.blocked[ip]
		_, active := rl.attempts[ip]
		if !blocked && !active {
			delete(rl.failures, ip)
		}
	}
}

// limit wraps handler so that requests over the limit get 429 with a
// Retry-After header.
func (rl *rateLimiter) limit(handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := extractIP(r)
		res := rl.check(ip)
		if !res.Allowed {
			rl.log.Debug("request rejected", "ip", ip, "path", r.URL.Path, "reason", res.Reason)
			secs := int((res.RetryAfter + time.Second - 1) / time.Second)
			w.Header().Set("Retry-After", strconv.Itoa(max(secs, 1)))
			http.Error(w, res.Reason, http.StatusTooManyRequests)
			return
		}
		handler(w, r)
	}
}

// extractIP returns the client IP, preferring X-Forwarded-For and X-Real-IP
// for clients behind a reverse proxy.
func extractIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
