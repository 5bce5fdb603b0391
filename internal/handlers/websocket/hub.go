package websocket

import (
	"encoding/json"
	"log"
	"sync"

	"quantsim/internal/types"
)

// Hub maintains active clients, room membership per session, and fans
// broadcast events out to room members. Delivery is best-effort: there
// is no acknowledgement and no replay for late joiners.
type Hub struct {
	clients    map[*Client]bool
	rooms      map[string]map[*Client]bool
	broadcast  chan roomMessage
	register   chan *Client
	unregister chan *Client
	join       chan roomRequest
	leave      chan roomRequest
	mutex      sync.RWMutex
}

type roomRequest struct {
	client    *Client
	sessionID string
}

type roomMessage struct {
	sessionID string
	data      []byte
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		rooms:      make(map[string]map[*Client]bool),
		broadcast:  make(chan roomMessage, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		join:       make(chan roomRequest),
		leave:      make(chan roomRequest),
	}
}

// Run starts the hub loop. Room membership is owned by this goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			log.Printf("Client %s connected. Total clients: %d", client.ID, h.ClientCount())

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			rooms := h.roomsOfLocked(client)
			for _, sessionID := range rooms {
				h.removeFromRoomLocked(client, sessionID)
			}
			h.mutex.Unlock()
			for _, sessionID := range rooms {
				h.notifyMembership(sessionID, types.EventClientDisconnected, client.ID)
			}
			log.Printf("Client %s disconnected. Total clients: %d", client.ID, h.ClientCount())

		case req := <-h.join:
			h.mutex.Lock()
			room, ok := h.rooms[req.sessionID]
			if !ok {
				room = make(map[*Client]bool)
				h.rooms[req.sessionID] = room
			}
			room[req.client] = true
			h.mutex.Unlock()
			h.notifyMembership(req.sessionID, types.EventClientJoined, req.client.ID)
			log.Printf("Client %s joined room %s", req.client.ID, req.sessionID)

		case req := <-h.leave:
			h.mutex.Lock()
			h.removeFromRoomLocked(req.client, req.sessionID)
			h.mutex.Unlock()
			h.notifyMembership(req.sessionID, types.EventClientLeft, req.client.ID)
			log.Printf("Client %s left room %s", req.client.ID, req.sessionID)

		case message := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.rooms[message.sessionID] {
				select {
				case client.Send <- message.data:
				default:
					// Slow client: drop it rather than block the room.
					// It must leave every room before Send closes, or a
					// later delivery would hit the closed channel.
					delete(h.clients, client)
					for _, sessionID := range h.roomsOfLocked(client) {
						h.removeFromRoomLocked(client, sessionID)
					}
					close(client.Send)
				}
			}
			h.mutex.Unlock()
		}
	}
}

func (h *Hub) roomsOfLocked(client *Client) []string {
	var rooms []string
	for sessionID, room := range h.rooms {
		if room[client] {
			rooms = append(rooms, sessionID)
		}
	}
	return rooms
}

func (h *Hub) removeFromRoomLocked(client *Client, sessionID string) {
	room, ok := h.rooms[sessionID]
	if !ok {
		return
	}
	delete(room, client)
	if len(room) == 0 {
		delete(h.rooms, sessionID)
	}
}

// notifyMembership tells remaining room members about a membership
// change and the current member count.
func (h *Hub) notifyMembership(sessionID string, event types.EventType, clientID string) {
	h.BroadcastToRoom(sessionID, event, map[string]interface{}{
		"clientId": clientID,
		"members":  h.RoomSize(sessionID),
	})
}

// BroadcastToRoom fans an event out to all members of a session room.
// The envelope is {event, sessionId, timestamp, ...payload}. The send
// is enqueue-and-return; a full queue drops the event rather than
// blocking the calling mutation.
func (h *Hub) BroadcastToRoom(sessionID string, event types.EventType, payload map[string]interface{}) {
	envelope := map[string]interface{}{
		"event":     event,
		"sessionId": sessionID,
		"timestamp": GetCurrentTimestamp(),
	}
	for k, v := range payload {
		envelope[k] = v
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		log.Printf("Error marshaling broadcast event %s: %v", event, err)
		return
	}

	select {
	case h.broadcast <- roomMessage{sessionID: sessionID, data: data}:
	default:
		log.Printf("Broadcast queue full, dropping event %s for room %s", event, sessionID)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// RoomSize returns the number of members in a session room.
func (h *Hub) RoomSize(sessionID string) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.rooms[sessionID])
}

// RegisterClient registers a new client.
func (h *Hub) RegisterClient(client *Client) {
	h.register <- client
}

// UnregisterClient unregisters a client.
func (h *Hub) UnregisterClient(client *Client) {
	h.unregister <- client
}

// JoinRoom subscribes a client to a session room.
func (h *Hub) JoinRoom(client *Client, sessionID string) {
	h.join <- roomRequest{client: client, sessionID: sessionID}
}

// LeaveRoom unsubscribes a client from a session room.
func (h *Hub) LeaveRoom(client *Client, sessionID string) {
	h.leave <- roomRequest{client: client, sessionID: sessionID}
}
