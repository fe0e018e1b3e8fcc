package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

// Check reports whether one dependency is usable.
type Check func(ctx context.Context) bool

// Ready is a Check for dependencies that are either absent or always available.
func Ready(context.Context) bool { return true }

// RegisterHealth mounts /health (liveness) and /ready (readiness). /ready
// answers 503 when any check fails.
func RegisterHealth(r *gin.Engine, checks map[string]Check) {
	start := time.Now()
	names := make([]string, 0, len(checks))
	for n := range checks {
		names = append(names, n)
	}
	sort.Strings(names)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		ready := true
		deps := make(map[string]bool, len(names))
		for _, n := range names {
			ok := checks[n](ctx)
			deps[n] = ok
			ready = ready && ok
		}

		if !ready {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "deps": deps, "uptime": time.Since(start).String()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "deps": deps, "uptime": time.Since(start).String()})
	})
}
