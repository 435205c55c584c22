package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"ResumeSense/internal/models"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 16
)

// Hub pushes status updates to the WebSocket connections of their owner.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
		logger:  logger,
	}
}

// Client is one registered WebSocket connection.
type Client struct {
	hub    *Hub
	userID string
	conn   *websocket.Conn
	send   chan []byte
	once   sync.Once
}

// Attach registers conn for userID and starts its writer.
func (h *Hub) Attach(userID string, conn *websocket.Conn) *Client {
	c := &Client{hub: h, userID: userID, conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*Client]struct{})
	}
	h.clients[userID][c] = struct{}{}
	h.mu.Unlock()

	go c.writePump()
	return c
}

func (h *Hub) detach(c *Client) {
	h.mu.Lock()
	if set, ok := h.clients[c.userID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, c.userID)
		}
	}
	h.mu.Unlock()
}

// Count returns the number of open connections for userID.
func (h *Hub) Count(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Publish queues the update on every connection of update.UserID. Slow
// clients whose buffer is full miss the update.
func (h *Hub) Publish(ctx context.Context, update models.StatusUpdate) error {
	body, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("marshal status update: %w", err)
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[update.UserID] {
		select {
		case c.send <- body:
		default:
			h.logger.Warn("websocket client too slow, dropping status update", "user_id", c.userID)
		}
	}
	return nil
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.RLock()
	var all []*Client
	for _, set := range h.clients {
		for c := range set {
			all = append(all, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range all {
		c.Close()
	}
}

// ReadLoop blocks until the peer disconnects. Incoming messages are ignored;
// reading is needed to process pong and close frames.
func (c *Client) ReadLoop() {
	defer c.Close()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Debug("websocket read error", "user_id", c.userID, "error", err)
			}
			return
		}
	}
}

func (c *Client) Close() {
	c.once.Do(func() {
		c.hub.detach(c)
		close(c.send)
	})
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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
