package monitor

import (
	"crypto/subtle"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
)

// ──────────────────────────────────────────────────────────────────
// Bearer Token Authentication Middleware
//
// Reads ARS_MONITOR_TOKEN from the environment. If set, every route
// under /api/v1 other than /health, /progress and /stream requires:
// Authorization: Bearer <token>
// ──────────────────────────────────────────────────────────────────

// AuthMiddleware returns a Gin middleware that validates bearer tokens.
// If ARS_MONITOR_TOKEN is not set, all requests are allowed (the default
// for a local --http run watching your own simulation).
func AuthMiddleware() gin.HandlerFunc {
	token := os.Getenv("ARS_MONITOR_TOKEN")

	if token == "" && os.Getenv("GIN_MODE") == "release" {
		log.Println("[monitor] ARS_MONITOR_TOKEN is not set in release mode; " +
			"every protected endpoint is reachable without authentication")
	}

	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}

		auth := c.GetHeader("Authorization")
		if auth == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "missing Authorization header",
				"hint":  "use: Authorization: Bearer <ARS_MONITOR_TOKEN>",
			})
			c.Abort()
			return
		}

		parts := strings.SplitN(auth, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusForbidden, gin.H{"error": "invalid Authorization header format"})
			c.Abort()
			return
		}

		if subtle.ConstantTimeCompare([]byte(parts[1]), []byte(token)) != 1 {
			c.JSON(http.StatusForbidden, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Next()
	}
}
