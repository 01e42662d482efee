package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"devhub/internal/observability"
	"devhub/internal/telemetry"
)

const requestIDContextKey = "requestID"

func requestIDFromContext(c *gin.Context) string {
	if id := c.GetString(requestIDContextKey); id != "" {
		return id
	}

	requestID := observability.RequestIDFromRequest(c.Request)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Set(requestIDContextKey, requestID)
	return requestID
}

func userIDFromContext(c *gin.Context) *string {
	if userID := c.GetInt("userID"); userID != 0 {
		value := strconv.Itoa(userID)
		return &value
	}
	return nil
}

// AuditMutations emits an audit record for every successful write request.
func AuditMutations(emitter *telemetry.AuditEmitter) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		switch c.Request.Method {
		case http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete:
		default:
			return
		}
		status := c.Writer.Status()
		if status >= http.StatusBadRequest {
			return
		}
		text := fmt.Sprintf("%s %s -> %d", c.Request.Method, c.FullPath(), status)
		emitter.Emit(c.Request.Context(), "INFO", text, requestIDFromContext(c), userIDFromContext(c))
	}
}
