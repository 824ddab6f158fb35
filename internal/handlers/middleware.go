package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

const batteryIDKey = "batteryId"

// batteryIDMiddleware validates the :id path parameter and stores it in the Gin context.
func (h *Handler) batteryIDMiddleware(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error": "battery id must be a positive integer",
		})
		return
	}

	c.Set(batteryIDKey, id)
	c.Next()
}

func batteryID(c *gin.Context) int {
	return c.GetInt(batteryIDKey)
}

// accessLog writes one structured line per request.
func (h *Handler) accessLog(c *gin.Context) {
	start := time.Now()
	c.Next()
	if h.log == nil {
		return
	}
	h.log.Infow("http_request",
		"method", c.Request.Method,
		"path", c.FullPath(),
		"status", c.Writer.Status(),
		"latency_ms", time.Since(start).Milliseconds(),
		"battery_id", batteryID(c),
	)
}
