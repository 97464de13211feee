package main

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	iutils "vacationRentalWebsite/internal/utils"
)

// RateLimiter implements a per-client token bucket
type RateLimiter struct {
	rate       time.Duration
	capacity   int
	buckets    map[string]*TokenBucket
	mutex      sync.Mutex
	cleanupTtl time.Duration
	now        func() time.Time
}

// TokenBucket is the allowance of a single client
type TokenBucket struct {
	tokens     int
	lastRefill time.Time
}

// NewRateLimiter allows requestsPerMinute sustained with bursts up to burstCapacity
func NewRateLimiter(requestsPerMinute int, burstCapacity int) *RateLimiter {
	return &RateLimiter{
		rate:       time.Minute / time.Duration(requestsPerMinute),
		capacity:   burstCapacity,
		buckets:    make(map[string]*TokenBucket),
		cleanupTtl: 10 * time.Minute,
		now:        time.Now,
	}
}

// Allow takes one token for client, reporting false when none are left
func (rl *RateLimiter) Allow(client string) bool {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	bucket, exists := rl.buckets[client]
	if !exists {
		bucket = &TokenBucket{tokens: rl.capacity, lastRefill: now}
		rl.buckets[client] = bucket
	}

	if refill := int(now.Sub(bucket.lastRefill) / rl.rate); refill > 0 {
		bucket.tokens += refill
		if bucket.tokens > rl.capacity {
			bucket.tokens = rl.capacity
		}
		bucket.lastRefill = bucket.lastRefill.Add(time.Duration(refill) * rl.rate)
	}

	if bucket.tokens > 0 {
		bucket.tokens--
		return true
	}
	return false
}

// Cleanup drops buckets idle for longer than the cleanup TTL
func (rl *RateLimiter) Cleanup() {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	for client, bucket := range rl.buckets {
		if now.Sub(bucket.lastRefill) > rl.cleanupTtl {
			delete(rl.buckets, client)
		}
	}
}

// StartCleanupRoutine runs Cleanup every five minutes until ctx is done
func (rl *RateLimiter) StartCleanupRoutine(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rl.Cleanup()
			}
		}
	}()
}

// Limiters groups the rate limits applied to write endpoints
type Limiters struct {
	Auth    *RateLimiter
	Booking *RateLimiter
	General *RateLimiter
}

func NewLimiters() *Limiters {
	return &Limiters{
		Auth:    NewRateLimiter(5, 10),
		Booking: NewRateLimiter(10, 20),
		General: NewRateLimiter(120, 240),
	}
}

func (l *Limiters) Start(ctx context.Context) {
	l.Auth.StartCleanupRoutine(ctx)
	l.Booking.StartCleanupRoutine(ctx)
	l.General.StartCleanupRoutine(ctx)
}

// limiterCategory classifies a request by its matched route
func limiterCategory(r *http.Request) string {
	if r.Method != http.MethodPost {
		return "general"
	}
	tpl := routeName(r)
	switch {
	case tpl == "/login" || tpl == "/register":
		return "auth"
	case strings.HasPrefix(tpl, "/properties/") &&
		(strings.HasSuffix(tpl, "/book") || strings.HasSuffix(tpl, "/enquiry")):
		return "booking"
	default:
		return "general"
	}
}

// RateLimitMiddleware picks a limiter per request category
func (app *App) RateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		category := limiterCategory(r)

		var limiter *RateLimiter
		switch category {
		case "auth":
			limiter = app.Limiters.Auth
		case "booking":
			limiter = app.Limiters.Booking
		default:
			limiter = app.Limiters.General
		}

		ip := getRealIP(r)
		if !limiter.Allow(ip) {
			app.Metrics.RateLimited.WithLabelValues(category).Inc()
			AppLogger.WithFields(map[string]interface{}{
				"ip":       ip,
				"method":   r.Method,
				"path":     r.URL.Path,
				"category": category,
			}).Warn("Rate limit exceeded")
			iutils.TooManyRequestsError(w)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// getRealIP extracts the client address, honouring proxy headers
func getRealIP(r *http.Request) string {
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
