package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"devhub/internal/telemetry"
)

// RelayStats reports websocket relay occupancy.
type RelayStats interface {
	Stats() (clients int, rooms int)
}

// RegisterDebugRoutes wires the operator-only endpoints behind DEBUG_ROUTES:
// GET /debug/relay reports relay occupancy and GET /debug/audit-test pushes one
// audit envelope carrying that snapshot through the publisher.
func RegisterDebugRoutes(router gin.IRoutes, emitter *telemetry.AuditEmitter, relay RelayStats, enabled bool) {
	if !enabled {
		return
	}

	router.GET("/debug/relay", func(c *gin.Context) {
		c.JSON(http.StatusOK, relaySnapshot(relay))
	})

	router.GET("/debug/audit-test", func(c *gin.Context) {
		if emitter == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"message": "audit emitter not configured"})
			return
		}
		snapshot := relaySnapshot(relay)
		text := fmt.Sprintf("devhub audit check: relay clients=%d rooms=%d", snapshot["clients"], snapshot["rooms"])
		emitter.Emit(c.Request.Context(), "INFO", text, requestIDFromContext(c), userIDFromContext(c))
		c.JSON(http.StatusOK, gin.H{"status": "ok", "relay": snapshot})
	})
}

func relaySnapshot(relay RelayStats) gin.H {
	if relay == nil {
		return gin.H{"clients": 0, "rooms": 0}
	}
	clients, rooms := relay.Stats()
	return gin.H{"clients": clients, "rooms": rooms}
}
