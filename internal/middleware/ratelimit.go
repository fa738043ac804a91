package middleware

import (
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	stdlibmw "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/timecop-bot/timecop/internal/request"
)

// defaultRatelimitRate matches the original per-sender limit of 30
// messages per minute
const defaultRatelimitRate = "30-M"

// RateLimit returns middleware enforcing a per-client rate using
// ulule/limiter backed by Redis. The rate uses limiter's formatted
// notation ("30-M", "5-S"). The limit key is the client IP.
func RateLimit(redisClient *redis.Client, rateStr string) (func(http.Handler) http.Handler, error) {
	if rateStr == "" {
		rateStr = defaultRatelimitRate
	}

	rate, err := limiter.NewRateFromFormatted(rateStr)
	if err != nil {
		return nil, err
	}
	store, err := redisstore.NewStore(redisClient)
	if err != nil {
		return nil, err
	}
	instance := limiter.New(store, rate)
	keyGetter := func(r *http.Request) string {
		return request.ClientIP(r)
	}
	mw := stdlibmw.NewMiddleware(instance, stdlibmw.WithKeyGetter(keyGetter))
	return mw.Handler, nil
}

// UserRateLimiter returns a limiter instance for per-user keys, backed by
// the same Redis store. The webhook handler consults it with the sender's
// user ID because every webhook call shares the transport's IP.
func UserRateLimiter(redisClient *redis.Client, rateStr string) (*limiter.Limiter, error) {
	if rateStr == "" {
		rateStr = defaultRatelimitRate
	}

	rate, err := limiter.NewRateFromFormatted(rateStr)
	if err != nil {
		return nil, err
	}
	store, err := redisstore.NewStore(redisClient)
	if err != nil {
		return nil, err
	}
	return limiter.New(store, rate), nil
}
