package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/samber/lo"
)

const (
	windowDuration  = 1 * time.Minute
	cleanupInterval = 1 * time.Minute
)

// RateLimiter wraps an http.Handler with sliding-window rate limiting per IP
// address.
type RateLimiter struct {
	limit       int
	window      time.Duration
	requests    map[string][]time.Time // IP -> request timestamps
	mu          sync.RWMutex
	cleanupDone chan struct{}
	closeOnce   sync.Once
	bypassPaths map[string]bool // paths exempt from rate limiting
}

// New creates a rate limiter allowing limit requests per minute per IP.
// bypassPaths (health and metrics endpoints) are exempt.
//
// Close() must be called on shutdown to stop the background cleanup
// goroutine.
func New(limit int, bypassPaths []string) (*RateLimiter, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("rate limit must be positive, got %d", limit)
	}

	bypass := make(map[string]bool, len(bypassPaths))
	for _, path := range bypassPaths {
		bypass[path] = true
	}

	rl := &RateLimiter{
		limit:       limit,
		window:      windowDuration,
		requests:    make(map[string][]time.Time),
		cleanupDone: make(chan struct{}),
		bypassPaths: bypass,
	}

	go rl.cleanupLoop()

	slog.Info("rate limiter initialized",
		"limit", limit,
		"window", windowDuration.String(),
		"bypass_paths", len(bypassPaths),
	)

	return rl, nil
}

// Middleware returns an http.Handler that wraps next with rate limiting.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.bypassPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		ip := ExtractIP(r)
		if ip == "" {
			slog.Warn("failed to extract IP from request", "path", r.URL.Path)
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}

		allowed, oldestRequest := rl.allow(ip)
		if !allowed {
			now := time.Now()
			retryAfter := int(rl.window.Seconds() - now.Sub(oldestRequest).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}

			slog.Debug("rate limit exceeded",
				"ip", ip,
				"path", r.URL.Path,
				"limit", rl.limit,
			)

			w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
			http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// allow checks if a request from the given IP is allowed. When not allowed it
// also returns the oldest request in the window for Retry-After calculation.
func (rl *RateLimiter) allow(ip string) (bool, time.Time) {
	now := time.Now()
	cutoff := now.Add(-rl.window)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	valid := filterValidTimestamps(rl.requests[ip], cutoff)
	if len(valid) >= rl.limit {
		return false, valid[0]
	}

	rl.requests[ip] = append(valid, now)
	return true, time.Time{}
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.cleanupDone:
			return
		}
	}
}

// cleanup drops IPs with no requests in the last window so the map does not
// grow without bound.
func (rl *RateLimiter) cleanup() {
	cutoff := time.Now().Add(-rl.window)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for ip, timestamps := range rl.requests {
		valid := filterValidTimestamps(timestamps, cutoff)
		if len(valid) == 0 {
			delete(rl.requests, ip)
		} else {
			rl.requests[ip] = valid
		}
	}
}

func filterValidTimestamps(timestamps []time.Time, cutoff time.Time) []time.Time {
	return lo.Filter(timestamps, func(ts time.Time, _ int) bool {
		return ts.After(cutoff)
	})
}

// Close stops the background cleanup goroutine. Safe to call multiple times.
func (rl *RateLimiter) Close() {
	rl.closeOnce.Do(func() {
		close(rl.cleanupDone)
	})
}
