package middleware

import (
	"hash/fnv"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/printops/plate-service/internal/domain/dto"
)

// defaultNumShards is the default number of shards for the rate limiter.
const defaultNumShards = 16

// visitor tracks rate limit state for a single identifier.
type visitor struct {
	tokens    int
	lastReset time.Time
}

// rateLimiterShard is a single shard of the rate limiter.
type rateLimiterShard struct {
	mu       sync.Mutex
	visitors map[string]*visitor
}

// RateLimiter implements a sharded fixed-window rate limiter. Visitors
// are distributed over shards to reduce lock contention.
type RateLimiter struct {
	shards    []*rateLimiterShard
	numShards int
	rate      int
	window    time.Duration
	stopCh    chan struct{}
}

// NewRateLimiter creates a rate limiter allowing rate requests per
// window per client IP.
func NewRateLimiter(rate int, window time.Duration) *RateLimiter {
	shards := make([]*rateLimiterShard, defaultNumShards)
	for i := range shards {
		shards[i] = &rateLimiterShard{visitors: make(map[string]*visitor)}
	}

	rl := &RateLimiter{
		shards:    shards,
		numShards: defaultNumShards,
		rate:      rate,
		window:    window,
		stopCh:    make(chan struct{}),
	}

	go rl.cleanup()
	return rl
}

// getShard returns the shard for the given identifier using FNV hash.
func (rl *RateLimiter) getShard(identifier string) *rateLimiterShard {
	h := fnv.New32a()
	h.Write([]byte(identifier))
	return rl.shards[h.Sum32()%uint32(rl.numShards)]
}

// allow reports whether the identifier may proceed within the window.
func (rl *RateLimiter) allow(identifier string) bool {
	shard := rl.getShard(identifier)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	now := time.Now()
	v, ok := shard.visitors[identifier]
	if !ok || now.Sub(v.lastReset) >= rl.window {
		shard.visitors[identifier] = &visitor{tokens: rl.rate - 1, lastReset: now}
		return true
	}
	if v.tokens <= 0 {
		return false
	}
	v.tokens--
	return true
}

// cleanup periodically evicts visitors whose window expired.
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stopCh:
			return
		case now := <-ticker.C:
			for _, shard := range rl.shards {
				shard.mu.Lock()
				for id, v := range shard.visitors {
					if now.Sub(v.lastReset) >= rl.window {
						delete(shard.visitors, id)
					}
				}
				shard.mu.Unlock()
			}
		}
	}
}

// Stop terminates the cleanup goroutine.
func (rl *RateLimiter) Stop() {
	close(rl.stopCh)
}

// RateLimit returns a middleware that enforces the limiter per client IP.
func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.allow(c.ClientIP()) {
			errorResp := dto.NewError(dto.ErrCodeRateLimit, "Too many requests").
				WithRequestID(GetRequestID(c))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errorResp)
			return
		}
		c.Next()
	}
}
