// Copyright (c) 2026 Verbum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/taibuivan/verbum/internal/platform/apperr"
	"github.com/taibuivan/verbum/internal/platform/constants"
	"github.com/taibuivan/verbum/internal/platform/respond"
)

// # Rate Limiting

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// clientLimiter keeps one token bucket per client key.
type clientLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	clients map[string]*limiterEntry
}

func newClientLimiter(rps float64, burst int) *clientLimiter {
	return &clientLimiter{
		limit:   rate.Limit(rps),
		burst:   burst,
		clients: make(map[string]*limiterEntry),
	}
}

func (cl *clientLimiter) allow(key string, now time.Time) bool {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	entry, found := cl.clients[key]
	if !found {
		entry = &limiterEntry{limiter: rate.NewLimiter(cl.limit, cl.burst)}
		cl.clients[key] = entry
	}
	entry.lastSeen = now

	return entry.limiter.AllowN(now, 1)
}

// sweep drops clients idle for longer than ttl.
func (cl *clientLimiter) sweep(now time.Time, ttl time.Duration) {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	for key, entry := range cl.clients {
		if now.Sub(entry.lastSeen) > ttl {
			delete(cl.clients, key)
		}
	}
}

// RateLimit throttles requests per client IP with a token bucket.
//
// Each call owns its client table; the sweeper goroutine stops with ctx.
func RateLimit(ctx context.Context) func(http.Handler) http.Handler {
	return rateLimitWith(ctx, constants.DefaultRateLimitRPS, constants.DefaultRateLimitBurst)
}

func rateLimitWith(ctx context.Context, rps float64, burst int) func(http.Handler) http.Handler {
	clients := newClientLimiter(rps, burst)

	go func() {
		ticker := time.NewTicker(constants.RateLimitCleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case now := <-ticker.C:
				clients.sweep(now, constants.RateLimitClientTTL)
			case <-ctx.Done():
				return
			}
		}
	}()

	retryAfter := strconv.Itoa(max(1, int(1/rps)))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if !clients.allow(RealIP(request), time.Now()) {
				writer.Header().Set("Retry-After", retryAfter)
				respond.Error(writer, request, apperr.TooManyRequests("Rate limit exceeded"))
				return
			}
			next.ServeHTTP(writer, request)
		})
	}
}
