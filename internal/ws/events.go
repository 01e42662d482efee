package ws

import (
	"context"
	"time"

	"devhub/internal/observability"
)

const wsRoutingKey = "ws_events.relay"

// publishConnEvent reports a connection lifecycle event (ws_connect, ws_disconnect,
// ws_error) to the broker and the metrics registry.
func publishConnEvent(ctx context.Context, info ConnInfo, event, reason string) {
	observability.IncWSEvent("conn", event)
	payload := map[string]interface{}{
		"ws": map[string]interface{}{
			"event":       event,
			"conn_id":     info.ConnID,
			"duration_ms": time.Since(info.ConnectedAt).Milliseconds(),
			"reason":      reason,
		},
		"identity": map[string]interface{}{
			"user_id":   info.UserID,
			"device_id": info.DeviceID,
			"ip":        info.IP,
		},
	}
	envelope := observability.NewEvent(event, payload)
	envelope.EventType = "ws_events"
	_ = observability.PublishEvent(ctx, wsRoutingKey, envelope, observability.BuildHeaders(info.RequestID, info.TraceID))
}
