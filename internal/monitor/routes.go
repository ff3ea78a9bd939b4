package monitor

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rawblock/ars-simulator/internal/ars"
)

// SetupRouter builds the gin.Engine serving a running simulation's
// progress. It mirrors the teacher's SetupRouter shape: permissive CORS
// controlled by ALLOWED_ORIGINS, a public group, and a bearer-token- and
// rate-limit-guarded group for anything heavier than a status check. The
// two protected routes use differently-keyed limiters: the bulk listing
// is IP-keyed like the teacher's alert feed, the single-identity lookup
// is keyed by the identity name being looked up.
func SetupRouter(m *Monitor, a *ars.ARS) *gin.Engine {
	r := gin.Default()

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if allowedOrigins == "" || allowedOrigins == "*" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		} else {
			for _, allowed := range strings.Split(allowedOrigins, ",") {
				if strings.TrimSpace(allowed) == origin {
					c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
					break
				}
			}
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	pub := r.Group("/api/v1")
	{
		pub.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
		pub.GET("/progress", func(c *gin.Context) {
			c.JSON(http.StatusOK, m.Snapshot())
		})
		pub.GET("/stream", m.hub.Subscribe)
	}

	protected := r.Group("/api/v1")
	protected.Use(AuthMiddleware())
	{
		listLimiter := NewRateLimiter(60, 10)
		protected.GET("/identities", listLimiter.Middleware(), func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"identities": Identities(a)})
		})

		// Keyed by identity name rather than caller IP: one identity
		// being polled hard from many clients is the traffic pattern
		// worth limiting here, not any single client's overall rate.
		identityLimiter := NewRateLimiter(60, 10)
		protected.GET("/identities/:name", identityLimiter.MiddlewareByIdentity(), func(c *gin.Context) {
			view, ok := IdentityByName(a, c.Param("name"))
			if !ok {
				c.JSON(http.StatusNotFound, gin.H{"error": "unknown identity"})
				return
			}
			c.JSON(http.StatusOK, view)
		})
	}

	return r
}
