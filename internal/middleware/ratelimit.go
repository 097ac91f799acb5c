package middleware

import (
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	stdlibmw "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/benvon/interview-tracker/internal/request"
)

// DefaultAIRateLimit is the default rate for AI routes, in limiter format
const DefaultAIRateLimit = "10-M"

// RateLimit returns ulule/limiter middleware keyed by client IP. With a Redis client the
// counters are shared across instances; otherwise they are kept in memory.
func RateLimit(rateFormat string, redisClient *redis.Client, prefix string) (func(http.Handler) http.Handler, error) {
	if rateFormat == "" {
		rateFormat = DefaultAIRateLimit
	}
	rate, err := limiter.NewRateFromFormatted(rateFormat)
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit %q: %w", rateFormat, err)
	}
	if prefix == "" {
		prefix = "ratelimit"
	}

	var store limiter.Store
	if redisClient != nil {
		store, err = redisstore.NewStoreWithOptions(redisClient, limiter.StoreOptions{Prefix: prefix, MaxRetry: limiter.DefaultMaxRetry})
		if err != nil {
			return nil, fmt.Errorf("failed to create redis limiter store: %w", err)
		}
	} else {
		store = memorystore.NewStoreWithOptions(limiter.StoreOptions{Prefix: prefix, CleanUpInterval: limiter.DefaultCleanUpInterval})
	}

	instance := limiter.New(store, rate)
	keyGetter := func(r *http.Request) string {
		return request.ClientIP(r)
	}
	mw := stdlibmw.NewMiddleware(instance,
		stdlibmw.WithKeyGetter(keyGetter),
		stdlibmw.WithLimitReachedHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", "60")
			respondErrorJSON(w, r, http.StatusTooManyRequests, "Too Many Requests", "AI request limit reached, try again shortly", nopLogger)
		}),
	)
	return mw.Handler, nil
}
