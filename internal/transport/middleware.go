package transport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// noisyPaths are high-frequency polling paths kept out of the Info log:
// tracking pages poll orders, worker apps poll and stream over the socket.
var noisyPaths = map[string]bool{
	"/api/orders/":  true,
	"/api/workers/": true,
	"/api/ws":       true,
}

// slowRequest is the latency above which any request is logged regardless of
// path. Assignment runs inside the confirm request, so a slow scoring pass
// shows up here first.
const slowRequest = 2 * time.Second

func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", elapsed,
		}

		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			slog.Error("request failed", attrs...)
		case elapsed >= slowRequest:
			slog.Warn("slow request", attrs...)
		case c.Request.Method == http.MethodOptions:
		case c.Request.Method == http.MethodGet && noisyPaths[c.Request.URL.Path]:
		default:
			slog.Info("request", attrs...)
		}
	}
}

func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, PUT, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
