package model

// -----------------------------------------------------------------
// Monitor API Response Models
// -----------------------------------------------------------------

// MonitorResponse is the main response for the monitor API
type MonitorResponse struct {
	Status      string          `json:"status"` // "healthy", "idle"
	Connections ConnectionStats `json:"connections"`
	Rooms       RoomStats       `json:"rooms"`
	OnlineUsers []string        `json:"onlineUsers"`
	Clients     []ClientInfo    `json:"clients"`
}

// ConnectionStats holds connection-related statistics
type ConnectionStats struct {
	TotalConnections int `json:"totalConnections"` // All live sockets
	Identified       int `json:"identified"`       // Sockets that completed setup
	OnlineUsers      int `json:"onlineUsers"`      // Distinct users with >= 1 socket
}

// RoomStats holds room subscription statistics
type RoomStats struct {
	TotalRooms  int        `json:"totalRooms"`
	RoomDetails []RoomInfo `json:"roomDetails"`
}

// RoomInfo contains information about a single live room
type RoomInfo struct {
	ChatID      string `json:"chatId"`
	Subscribers int    `json:"subscribers"`
}

// ClientInfo contains information about a connected client
type ClientInfo struct {
	ConnectionID string   `json:"connectionId"`
	UserID       string   `json:"userId,omitempty"` // empty until setup
	Rooms        []string `json:"rooms"`
}
