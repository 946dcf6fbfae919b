package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/art-beyond-sight/sight-core/internal/pkg/response"
)

const (
	// IdempotenceHeader carries the client-chosen request key. Requests
	// without it are never deduplicated.
	IdempotenceHeader = "x-idempotence"

	idempotencePrefix = "sight:idempotence:"
	idempotenceTTL    = 60 * time.Second
)

// Idempotence rejects a repeated mutating request carrying the same
// x-idempotence key within 60 seconds. Without Redis it is a pass-through.
func Idempotence(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || c.Request.Method == http.MethodGet {
			c.Next()
			return
		}

		key := strings.TrimSpace(c.GetHeader(IdempotenceHeader))
		if key == "" {
			c.Next()
			return
		}

		redisKey := idempotencePrefix + key
		ctx := c.Request.Context()

		_, err := rdb.Get(ctx, redisKey).Result()
		if err == nil {
			response.Conflict(c, "Duplicate request")
			return
		}
		if !errors.Is(err, redis.Nil) {
			c.Next()
			return
		}

		if setErr := rdb.Set(ctx, redisKey, "0", idempotenceTTL).Err(); setErr != nil {
			c.Next()
			return
		}

		c.Next()

		status := c.Writer.Status()
		if status >= 200 && status < 300 {
			rdb.Set(ctx, redisKey, "1", redis.KeepTTL)
		} else {
			rdb.Del(ctx, redisKey)
		}
	}
}
