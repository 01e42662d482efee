package ws

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxFrameSize   = 16 * 1024
	sendBufferSize = 64
)

// Event names on the realtime channel.
const (
	EventSetup        = "setup"
	EventConnected    = "connected"
	EventJoinChat     = "joinChat"
	EventTyping       = "typing"
	EventStopTyping   = "stopTyping"
	EventSendMessage  = "sendMessage"
	EventNewMessage   = "newMessage"
	EventRefreshChats = "refreshChats"
)

// frame is an inbound client message.
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Client is one websocket connection. Only writePump writes to conn.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	info ConnInfo
}

func newClient(hub *Hub, conn *websocket.Conn, info ConnInfo) *Client {
	return &Client{hub: hub, conn: conn, send: make(chan []byte, sendBufferSize), info: info}
}

// UserID returns the authenticated user behind the connection.
func (c *Client) UserID() int {
	return c.info.UserID
}

// readPump decodes frames until the connection fails and hands each to dispatch.
// Malformed frames are skipped.
func (c *Client) readPump(dispatch func(*Client, frame)) error {
	c.conn.SetReadLimit(maxFrameSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return err
		}
		var f frame
		if err := json.Unmarshal(data, &f); err != nil || f.Event == "" {
			continue
		}
		dispatch(c, f)
	}
}

// writePump drains the send channel and keeps the connection alive with pings.
// It returns once the hub closes send or a write fails.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
