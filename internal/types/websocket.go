package types

import "encoding/json"

// EventType names a server-to-room broadcast event.
type EventType string

const (
	EventSimulationStarted    EventType = "simulation-started"
	EventSimulationPaused     EventType = "simulation-paused"
	EventSimulationResumed    EventType = "simulation-resumed"
	EventSimulationTerminated EventType = "simulation-terminated"
	EventTradeProcessed       EventType = "trade-processed"
	EventDisplayTimeUpdated   EventType = "display-time-updated"
	EventClientSync           EventType = "client-sync"
	EventSimulationDataUpdate EventType = "simulation-data-update"
	EventClientJoined         EventType = "client-joined"
	EventClientLeft           EventType = "client-left"
	EventClientDisconnected   EventType = "client-disconnected"
)

// ClientMessageType names a client-to-server WebSocket message.
type ClientMessageType string

const (
	SessionJoin  ClientMessageType = "session_join"
	SessionLeave ClientMessageType = "session_leave"
	TradeCommand ClientMessageType = "trade_command"
	ClientSync   ClientMessageType = "client_sync"
	GetStatus    ClientMessageType = "get_status"
)

// ClientMessage is the envelope for client-to-server messages.
type ClientMessage struct {
	Type ClientMessageType `json:"type"`
	Data json.RawMessage   `json:"data"`
}

// JoinData carries the room to join or leave.
type JoinData struct {
	SessionID string `json:"sessionId"`
}

// TradeCommandData carries the text command shorthand ("m b", "s s 42").
type TradeCommandData struct {
	Command string `json:"command"`
}

// ClientSyncData carries the client's reported clock positions.
type ClientSyncData struct {
	ClientTime          float64 `json:"clientTime"`
	ClientDisplayedTime float64 `json:"clientDisplayedTime"`
}
