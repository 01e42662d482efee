package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"devhub/internal/models"
	"devhub/internal/observability"
)

// ParticipantChecker gates joinChat on chat membership.
type ParticipantChecker interface {
	IsParticipant(ctx context.Context, chatID int, userID int) (bool, error)
}

// RelayOptions configures a RelayHandler.
type RelayOptions struct {
	// AllowedOrigin restricts browser origins; empty accepts any.
	AllowedOrigin string
	// ClientEcho honours client sendMessage frames by re-broadcasting them.
	// Off by default: the server broadcasts after persisting.
	ClientEcho bool
}

// RelayHandler serves GET /ws. The route must run behind the auth middleware.
type RelayHandler struct {
	hub      *Hub
	chats    ParticipantChecker
	opts     RelayOptions
	upgrader websocket.Upgrader
}

// NewRelayHandler constructs a RelayHandler.
func NewRelayHandler(hub *Hub, chats ParticipantChecker, opts RelayOptions) *RelayHandler {
	h := &RelayHandler{hub: hub, chats: chats, opts: opts}
	h.upgrader = websocket.Upgrader{CheckOrigin: h.checkOrigin}
	return h
}

func (h *RelayHandler) checkOrigin(r *http.Request) bool {
	if h.opts.AllowedOrigin == "" {
		return true
	}
	origin := r.Header.Get("Origin")
	return origin == "" || strings.EqualFold(origin, h.opts.AllowedOrigin)
}

// Handle upgrades the connection and runs the client until it disconnects.
func (h *RelayHandler) Handle(c *gin.Context) {
	userID := c.GetInt("userID")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized, no token"})
		return
	}

	ctx, span := otel.Tracer("devhub/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      userID,
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   observability.RequestIDFromRequest(c.Request),
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now(),
	}

	client := newClient(h.hub, conn, info)
	h.hub.Register(client)
	observability.IncWSActive()
	publishConnEvent(ctx, info, "ws_connect", "")

	// The handshake span ends with this handler; the session outlives it.
	session := context.WithoutCancel(ctx)
	go client.writePump()
	go func() {
		err := client.readPump(func(cl *Client, f frame) { h.dispatch(session, cl, f) })
		if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			publishConnEvent(session, info, "ws_error", err.Error())
		}
		h.hub.Unregister(client)
		observability.DecWSActive()
		publishConnEvent(session, info, "ws_disconnect", err.Error())
	}()
}

func (h *RelayHandler) dispatch(ctx context.Context, c *Client, f frame) {
	observability.IncWSEvent("in", f.Event)

	switch f.Event {
	case EventSetup:
		userID, ok := parseID(f.Data)
		if !ok || userID != c.UserID() {
			return
		}
		h.hub.Join(UserRoom(userID), c)
		payload, _ := json.Marshal(models.RealtimeEvent{Event: EventConnected})
		c.enqueue(payload, EventConnected)

	case EventJoinChat:
		chatID, ok := parseID(f.Data)
		if !ok {
			return
		}
		member, err := h.chats.IsParticipant(ctx, chatID, c.UserID())
		if err != nil {
			log.Printf("websocket join check failed: chat_id=%d user_id=%d err=%v", chatID, c.UserID(), err)
			return
		}
		if member {
			h.hub.Join(ChatRoom(chatID), c)
		}

	case EventTyping, EventStopTyping:
		chatID, ok := parseID(f.Data)
		if !ok {
			return
		}
		room := ChatRoom(chatID)
		if !h.hub.InRoom(room, c) {
			return
		}
		h.hub.Broadcast(room, models.RealtimeEvent{Event: f.Event, Data: chatID}, c)

	case EventSendMessage:
		if h.opts.ClientEcho {
			h.echo(c, f.Data)
		}
	}
}

// echoedMessage is the legacy client re-announcement of a persisted message.
type echoedMessage struct {
	ChatID       int   `json:"chat_id"`
	Participants []int `json:"participants"`
}

func (h *RelayHandler) echo(c *Client, data json.RawMessage) {
	var msg echoedMessage
	if err := json.Unmarshal(data, &msg); err != nil || msg.ChatID <= 0 {
		return
	}
	room := ChatRoom(msg.ChatID)
	if !h.hub.InRoom(room, c) {
		return
	}
	h.hub.Broadcast(room, models.RealtimeEvent{Event: EventNewMessage, Data: data}, nil)
	for _, userID := range msg.Participants {
		h.hub.Broadcast(UserRoom(userID), models.RealtimeEvent{Event: EventRefreshChats, Data: msg.ChatID}, nil)
	}
}

// parseID accepts a JSON number or a numeric string.
func parseID(raw json.RawMessage) (int, bool) {
	var id int
	if err := json.Unmarshal(raw, &id); err == nil {
		return id, id > 0
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	id, err := strconv.Atoi(s)
	return id, err == nil && id > 0
}
