package middleware

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"furniture_back_end/internal/cache"
)

const (
	DefaultCartMaxRequests = 20
	CartCooldown           = 1 * time.Minute
)

// CartRateLimit limite les écritures panier par utilisateur (anti-spam).
// Sans client Redis, le middleware laisse tout passer.
func CartRateLimit(client *redis.Client, max int) gin.HandlerFunc {
	if max <= 0 {
		max = DefaultCartMaxRequests
	}
	return func(c *gin.Context) {
		userID := c.GetString(CtxUserID)
		if client == nil || userID == "" {
			c.Next()
			return
		}

		count, err := cache.IncrementRateLimit(c.Request.Context(), client, "cart_add:"+userID, CartCooldown)
		if err != nil {
			// Redis indisponible : on ne bloque pas le panier
			log.Printf("⚠️ Rate limit panier indisponible: %v", err)
			c.Next()
			return
		}

		remaining := int64(max) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", max))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))

		if count > int64(max) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"message":     "Too many cart updates. Please slow down",
				"status":      http.StatusTooManyRequests,
				"retry_after": int(CartCooldown.Seconds()),
			})
			return
		}
		c.Next()
	}
}
