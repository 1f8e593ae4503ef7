package server

import (
	"net/http"

	"github.com/gorilla/websocket"
)

// upgrader upgrades HTTP requests to WebSockets.
//
// CheckOrigin accepts every origin; restrict it before exposing the server
// beyond localhost.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// local app; allow all
		return true
	},
}

// handleWSLog streams every engine log record produced by workspace operations.
func (s *Server) handleWSLog(w http.ResponseWriter, r *http.Request) {
	s.handleWSHub(w, r, s.wsLog)
}

// handleWSHub upgrades, registers the client and reads until it disconnects.
// Incoming messages are ignored.
func (s *Server) handleWSHub(w http.ResponseWriter, r *http.Request, hub *WSHub) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := hub.Add(conn)

	// Keep reading until client disconnects
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			hub.Remove(client)
			return
		}
	}
}
