// Package api exposes the read-only HTTP interface over the indexed corpus:
// paginated article listing and per-source statistics.
package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/presswire/newsdex/internal/logger"
)

// NewRouter builds the gin router serving the read API.
func NewRouter(index Index, log logger.Logger) *gin.Engine {
	if log == nil {
		log = logger.NopLogger{}
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(requestLogger(log), gin.Recovery())

	h := &handlers{index: index, log: log}

	router.GET("/", h.root)
	router.GET("/articles/", h.articles)
	router.GET("/stats/", h.stats)

	return router
}

// requestLogger logs one line per request.
func requestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := map[string]any{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		}
		if c.Writer.Status() >= 500 {
			log.ErrorObj("request failed", "http_request", fields)
			return
		}
		log.InfoObj("request served", "http_request", fields)
	}
}
