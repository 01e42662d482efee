package ws

import (
	"time"

	"github.com/rs/xid"
)

type ConnInfo struct {
	ConnID      string
	UserID      int
	DeviceID    string
	IP          string
	RequestID   string
	TraceID     string
	ConnectedAt time.Time
}

// newConnID returns a sortable, globally unique connection id.
func newConnID() string {
	return xid.New().String()
}
