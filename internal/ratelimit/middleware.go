package ratelimit

import (
	"log"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// KeyFunc picks the caller identity a request is counted against.
type KeyFunc func(c *gin.Context) string

// Middleware limits each caller of one route group to limit requests per
// window. Requests are let through when Redis fails. onLimited writes the
// rejection and must abort the context.
func Middleware(l *Limiter, name string, limit int, window time.Duration, key KeyFunc, onLimited func(*gin.Context, *Result)) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := key(c)
		if clientID == "" {
			clientID = c.ClientIP()
		}

		result, err := l.Allow(c.Request.Context(), name+":"+clientID, limit, window)
		if err != nil {
			log.Printf("ERROR: Rate limit check for %s failed: %v", name, err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			log.Printf("WARN: Rate limit exceeded for %s by %s", name, clientID)
			onLimited(c, result)
			return
		}
		c.Next()
	}
}
