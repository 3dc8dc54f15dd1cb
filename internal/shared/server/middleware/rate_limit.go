package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"compliance-backend/internal/shared/server/respond"
	"compliance-backend/internal/shared/telemetry"
)

// RateLimitConfig describes a fixed-window limit applied per client key.
type RateLimitConfig struct {
	Limit  int64
	Period time.Duration
	// Prefix namespaces keys in the shared store, e.g. "login".
	Prefix string
	// KeyFor defaults to the client IP.
	KeyFor func(*gin.Context) string
	Store  limiter.Store
}

// RateLimit rejects requests over the configured rate with 429.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Limit <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if cfg.Period <= 0 {
		cfg.Period = time.Minute
	}
	if cfg.Store == nil {
		cfg.Store = memory.NewStoreWithOptions(limiter.StoreOptions{
			Prefix:          "ratelimit",
			CleanUpInterval: limiter.DefaultCleanUpInterval,
		})
	}
	lim := limiter.New(cfg.Store, limiter.Rate{Period: cfg.Period, Limit: cfg.Limit})

	return func(c *gin.Context) {
		key := ""
		if cfg.KeyFor != nil {
			key = strings.TrimSpace(cfg.KeyFor(c))
		}
		if key == "" {
			key = c.ClientIP()
		}
		if cfg.Prefix != "" {
			key = cfg.Prefix + "|" + key
		}

		state, err := lim.Get(c.Request.Context(), key)
		if err != nil {
			// Fail open; the limiter store is local and best-effort.
			telemetry.Error("ratelimit.store_failed", map[string]any{"error": err.Error()})
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(state.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(state.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(state.Reset, 10))

		if state.Reached {
			retryAfter := state.Reset - time.Now().Unix()
			if retryAfter <= 0 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
			respond.Error(c, http.StatusTooManyRequests, "rate_limited", "Too many requests", gin.H{"retry_after_seconds": retryAfter})
			return
		}
		c.Next()
	}
}
