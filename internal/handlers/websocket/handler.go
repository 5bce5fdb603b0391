package websocket

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// WebSocketHandler upgrades connections and hands clients to the hub.
type WebSocketHandler struct {
	hub      *Hub
	commands SessionCommands
}

// NewWebSocketHandler creates a new WebSocket handler and starts its hub.
func NewWebSocketHandler() *WebSocketHandler {
	hub := NewHub()
	go hub.Run()

	return &WebSocketHandler{
		hub: hub,
	}
}

// SetCommands sets the session command surface clients can drive.
func (wh *WebSocketHandler) SetCommands(commands SessionCommands) {
	wh.commands = commands
}

// HandleWebSocket upgrades the HTTP connection and manages the client.
// Identity comes from the X-User-ID header or userId query parameter,
// resolved upstream by the authentication collaborator.
func (wh *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		userID = c.Query("userId")
	}
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}
	role := c.GetHeader("X-User-Role")
	if role == "" {
		role = c.Query("role")
	}
	if role == "" {
		role = "user"
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to upgrade connection"})
		return
	}

	client := NewClient(conn, wh.hub, userID, role, wh.commands)
	wh.hub.RegisterClient(client)
	client.Start()
}

// GetHub returns the hub for broadcasting events.
func (wh *WebSocketHandler) GetHub() *Hub {
	return wh.hub
}
