package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/cppla/blogapi/utils"
)

const limiterIdleTTL = 5 * time.Minute

type rateLimiter struct {
	limiter *rate.Limiter
	expires time.Time
}

// localLimiters keeps one token bucket per client IP inside this process.
type localLimiters struct {
	mu       sync.Mutex
	limiters map[string]*rateLimiter
	limit    rate.Limit
	burst    int
}

// RateLimitMiddleware limits each client IP to perMinute requests. A non-positive perMinute
// disables limiting. With rdb set, counters live in Redis so all instances share them.
func RateLimitMiddleware(perMinute int, rdb *redis.Client) gin.HandlerFunc {
	if perMinute <= 0 {
		return func(ctx *gin.Context) { ctx.Next() }
	}

	local := &localLimiters{
		limiters: map[string]*rateLimiter{},
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    max(perMinute/2, 1),
	}

	return func(ctx *gin.Context) {
		ip := ctx.ClientIP()
		var allowed bool
		if rdb != nil {
			var err error
			allowed, err = allowRedis(ctx.Request.Context(), rdb, ip, perMinute)
			if err != nil {
				utils.Logger.Warn("redis rate limit failed, using local limiter", zap.Error(err))
				allowed = local.allow(ip)
			}
		} else {
			allowed = local.allow(ip)
		}

		if !allowed {
			ctx.Header("Retry-After", strconv.Itoa(60))
			utils.Error(ctx, http.StatusTooManyRequests, 42901, "rate limit exceeded")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

// allowRedis counts requests in a fixed one-minute window per IP.
func allowRedis(ctx context.Context, rdb *redis.Client, ip string, perMinute int) (bool, error) {
	window := time.Now().Unix() / 60
	key := fmt.Sprintf("ratelimit:%s:%d", ip, window)

	var incr *redis.IntCmd
	_, err := rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, 61*time.Second)
		return nil
	})
	if err != nil {
		return false, err
	}
	return incr.Val() <= int64(perMinute), nil
}

func (l *localLimiters) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	for k, v := range l.limiters {
		if now.After(v.expires) {
			delete(l.limiters, k)
		}
	}

	entry, ok := l.limiters[key]
	if !ok {
		entry = &rateLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[key] = entry
	}
	entry.expires = now.Add(limiterIdleTTL)
	return entry.limiter.Allow()
}
