package server

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/CK6170/densevec-go/logging"
	"github.com/CK6170/densevec-go/models"
)

// WSMessage is the minimal event envelope sent over WebSocket.
//
// Clients switch on `type` and treat `data` as an arbitrary JSON object.
type WSMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// WSClient wraps a websocket connection with a per-connection write mutex.
// Gorilla WebSocket requires that writes are not concurrent on the same Conn.
type WSClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// Send writes a message as JSON to this client.
func (c *WSClient) Send(msg WSMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(msg)
}

// WSHub is an in-memory broadcast hub for a set of WebSocket clients.
type WSHub struct {
	mu      sync.RWMutex
	clients map[*WSClient]struct{}
}

// NewWSHub constructs an empty hub.
func NewWSHub() *WSHub {
	return &WSHub{clients: make(map[*WSClient]struct{})}
}

// Add registers a connection with the hub and returns the WSClient wrapper.
func (h *WSHub) Add(conn *websocket.Conn) *WSClient {
	c := &WSClient{conn: conn}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	return c
}

// Remove unregisters a client and closes its connection.
func (h *WSHub) Remove(c *WSClient) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	_ = c.conn.Close()
}

// Len returns the number of connected clients.
func (h *WSHub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends a message to all connected clients.
//
// Write failures are ignored; the read loop in handleWSHub notices the
// disconnect and removes the client.
func (h *WSHub) Broadcast(msg WSMessage) {
	// Marshal once for consistency across clients
	b, err := json.Marshal(msg)
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		c.mu.Lock()
		_ = c.conn.WriteMessage(websocket.TextMessage, b)
		c.mu.Unlock()
	}
}

// Log implements logging.Logger by broadcasting every record as a "log"
// message. With no clients connected the record is dropped.
func (h *WSHub) Log(code models.ErrorCode, level models.Level, loc *logging.Location) models.ErrorCode {
	rec := LogRecord{Level: level, Code: code}
	if loc != nil {
		rec.File, rec.Function, rec.Line = loc.File, loc.Function, loc.Line
	}
	h.Broadcast(WSMessage{Type: "log", Data: rec})
	return models.SUCCESS
}
