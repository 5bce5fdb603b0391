package websocket

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"quantsim/internal/engines/simulation"
	"quantsim/internal/services"
	"quantsim/internal/types"
)

// WebSocket upgrader with CORS settings
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins for development
		return true
	},
}

// SessionCommands is the slice of the session service a connected
// client can drive.
type SessionCommands interface {
	DeriveSessionID(userID string) string
	ExecuteCommand(userID, command string) (bool, error)
	Sync(userID string, clientTime, clientDisplayedTime float64) (simulation.SyncResult, error)
	CurrentData(userID string) (services.CurrentData, error)
}

// Client represents one WebSocket connection.
type Client struct {
	Conn     *websocket.Conn
	Send     chan []byte
	Hub      *Hub
	ID       string
	UserID   string
	Role     string
	Commands SessionCommands
}

// NewClient creates a new WebSocket client.
func NewClient(conn *websocket.Conn, hub *Hub, userID, role string, commands SessionCommands) *Client {
	return &Client{
		Conn:     conn,
		Send:     make(chan []byte, 256),
		Hub:      hub,
		ID:       generateClientID(),
		UserID:   userID,
		Role:     role,
		Commands: commands,
	}
}

// readPump handles reading messages from the WebSocket connection
func (c *Client) readPump() {
	defer func() {
		c.Hub.UnregisterClient(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(512)
	c.Conn.SetPongHandler(func(string) error {
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error for client %s: %v", c.ID, err)
			}
			break
		}
		c.handleMessage(message)
	}
}

// writePump handles writing messages to the WebSocket connection
func (c *Client) writePump() {
	defer c.Conn.Close()

	for message := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Printf("WebSocket write error for client %s: %v", c.ID, err)
			return
		}
	}
	c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// Start starts the client's read and write pumps.
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}

// handleMessage routes a client message to the session service.
func (c *Client) handleMessage(messageBytes []byte) {
	var message types.ClientMessage
	if err := json.Unmarshal(messageBytes, &message); err != nil {
		log.Printf("Error parsing message from client %s: %v", c.ID, err)
		c.SendError("Invalid message format", err.Error())
		return
	}

	switch message.Type {
	case types.SessionJoin, types.SessionLeave:
		var data types.JoinData
		if len(message.Data) > 0 {
			if err := json.Unmarshal(message.Data, &data); err != nil {
				c.SendError("Invalid join data", err.Error())
				return
			}
		}
		sessionID := data.SessionID
		if sessionID == "" {
			sessionID = c.Commands.DeriveSessionID(c.UserID)
		}
		if message.Type == types.SessionJoin {
			c.Hub.JoinRoom(c, sessionID)
		} else {
			c.Hub.LeaveRoom(c, sessionID)
		}

	case types.TradeCommand:
		var data types.TradeCommandData
		if err := json.Unmarshal(message.Data, &data); err != nil {
			c.SendError("Invalid trade command data", err.Error())
			return
		}
		accepted, err := c.Commands.ExecuteCommand(c.UserID, data.Command)
		if err != nil {
			c.SendError("Trade command failed", err.Error())
			return
		}
		c.SendJSON(map[string]interface{}{
			"event":    "trade-result",
			"accepted": accepted,
			"command":  data.Command,
		})

	case types.ClientSync:
		var data types.ClientSyncData
		if err := json.Unmarshal(message.Data, &data); err != nil {
			c.SendError("Invalid sync data", err.Error())
			return
		}
		result, err := c.Commands.Sync(c.UserID, data.ClientTime, data.ClientDisplayedTime)
		if err != nil {
			c.SendError("Sync failed", err.Error())
			return
		}
		c.SendJSON(map[string]interface{}{
			"event":  "sync-result",
			"result": result,
		})

	case types.GetStatus:
		data, err := c.Commands.CurrentData(c.UserID)
		if err != nil {
			c.SendError("Status unavailable", err.Error())
			return
		}
		c.SendJSON(map[string]interface{}{
			"event": "status",
			"data":  data,
		})

	default:
		log.Printf("Unknown message type from client %s: %s", c.ID, message.Type)
		c.SendError("Unknown message type", string(message.Type))
	}
}

// SendError sends an error response to the client.
func (c *Client) SendError(message, errorMsg string) {
	c.SendJSON(map[string]interface{}{
		"event":   "error",
		"message": message,
		"error":   errorMsg,
	})
}

// SendJSON marshals and sends a payload to this client only.
func (c *Client) SendJSON(payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Error marshaling message for client %s: %v", c.ID, err)
		return
	}

	select {
	case c.Send <- data:
	default:
		log.Printf("Client %s send channel full, dropping message", c.ID)
	}
}
