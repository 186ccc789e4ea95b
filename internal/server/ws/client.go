package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/dmitrijs2005/duochat/internal/logging"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. Clients never send application
	// payloads over the socket (sends go through the REST endpoint), so this
	// only needs to cover control traffic.
	maxMessageSize = 512
)

// pushEvent is the wire envelope for server-to-client pushes.
type pushEvent struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Client is one live connection of an authenticated user. It satisfies the
// message service's Connection port.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID int64
	logger logging.Logger
}

func newClient(hub *Hub, conn *websocket.Conn, userID int64, logger logging.Logger) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, 256),
		userID: userID,
		logger: logger,
	}
}

// UserID returns the identity this connection authenticated as.
func (c *Client) UserID() int64 {
	return c.userID
}

// Send queues an event for delivery on this connection. It never blocks: if
// the client's buffer is full the event is dropped, matching the tolerated
// delivery-gap semantics.
func (c *Client) Send(event string, payload any) {
	data, err := json.Marshal(pushEvent{Type: event, Payload: payload})
	if err != nil {
		c.logger.Error(context.Background(), "push marshal failed", "error", err)
		return
	}

	select {
	case c.send <- data:
	default:
		c.logger.Warn(context.Background(), "push dropped, slow client", "user_id", c.userID)
	}
}

// readPump consumes the connection until it errors or closes, keeping the
// pong deadline fresh. The registry entry is removed on the way out.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

// writePump pumps queued events to the peer and keeps the connection alive
// with periodic pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Flush queued events into the same frame batch.
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ServeWS upgrades an already-authenticated request, registers the resulting
// connection under userID and starts its pumps.
func ServeWS(hub *Hub, w http.ResponseWriter, r *http.Request, userID int64, logger logging.Logger) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error(r.Context(), "websocket upgrade failed", "error", err)
		return
	}

	client := newClient(hub, conn, userID, logger)
	hub.Register(client)

	go client.writePump()
	go client.readPump()
}
