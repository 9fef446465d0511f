package api

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/AlexZinkM/wallet-dashboard/internal/logger"
)

// maxClients bounds the limiter map; idle limiters are pruned beyond it
const maxClients = 10000

// RateLimiter throttles credential submissions per client IP
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
	// retryAfter is the Retry-After value in seconds
	retryAfter string
}

// NewRateLimiter allows perMinute requests per client with bursts of burst
func NewRateLimiter(perMinute, burst int) *RateLimiter {
	return &RateLimiter{
		limiters:   make(map[string]*rate.Limiter),
		limit:      rate.Every(time.Minute / time.Duration(perMinute)),
		burst:      burst,
		retryAfter: strconv.Itoa(60/perMinute + 1),
	}
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if limiter, ok := rl.limiters[key]; ok {
		return limiter
	}
	if len(rl.limiters) >= maxClients {
		rl.prune()
	}
	limiter := rate.NewLimiter(rl.limit, rl.burst)
	rl.limiters[key] = limiter
	return limiter
}

// prune drops limiters that have refilled completely. Caller holds mu.
func (rl *RateLimiter) prune() {
	now := time.Now()
	for key, limiter := range rl.limiters {
		if limiter.TokensAt(now) >= float64(rl.burst) {
			delete(rl.limiters, key)
		}
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Middleware rejects requests over the limit with 429
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		limiter := rl.getLimiter(ip)
		if !limiter.Allow() {
			logger.GetLogger().Warn().Str("ip", ip).Str("path", r.URL.Path).Msg("rate limit exceeded")
			w.Header().Set("Retry-After", rl.retryAfter)
			http.Error(w, "Too many attempts, please wait a moment and try again", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
