package gin

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	userHeader    = "X-User-ID"
	principalKey  = "principal"
	idemKeyHeader = "Idempotency-Key"
)

// Authentication resolves the acting user from the gateway-provided header.
// Upstream auth is expected to have validated it; requests without one can
// only reach public routes.
func Authentication() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := c.GetHeader(userHeader); id != "" {
			c.Set(principalKey, id)
		}
		c.Next()
	}
}

func requireUser(c *gin.Context) (string, bool) {
	id := c.GetString(principalKey)
	if id == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return "", false
	}
	return id, true
}

func idempotencyKey(c *gin.Context) string {
	return c.GetHeader(idemKeyHeader)
}
