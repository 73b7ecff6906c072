package hub

import (
	"Chattr/internal/model"
	"sort"
)

// MonitorService provides methods to gather hub statistics
type MonitorService struct {
	hub *Hub
}

// NewMonitorService creates a new monitor service
func NewMonitorService(hub *Hub) *MonitorService {
	return &MonitorService{hub: hub}
}

// GetStats gathers and returns all hub statistics
func (ms *MonitorService) GetStats() model.MonitorResponse {
	connectionStats := ms.getConnectionStats()
	roomStats := ms.getRoomStats()
	online := ms.hub.registry.listOnline()
	clients := ms.getClientList()

	status := "healthy"
	if connectionStats.TotalConnections == 0 {
		status = "idle"
	}

	return model.MonitorResponse{
		Status:      status,
		Connections: connectionStats,
		Rooms:       roomStats,
		OnlineUsers: online,
		Clients:     clients,
	}
}

func (ms *MonitorService) getConnectionStats() model.ConnectionStats {
	ms.hub.clientsMu.RLock()
	total := len(ms.hub.clients)
	ms.hub.clientsMu.RUnlock()

	identified, users := ms.hub.registry.counts()

	return model.ConnectionStats{
		TotalConnections: total,
		Identified:       identified,
		OnlineUsers:      users,
	}
}

func (ms *MonitorService) getRoomStats() model.RoomStats {
	rooms := ms.hub.rooms.snapshot()

	stats := model.RoomStats{
		RoomDetails: make([]model.RoomInfo, 0, len(rooms)),
	}
	for chatID, subscribers := range rooms {
		stats.RoomDetails = append(stats.RoomDetails, model.RoomInfo{
			ChatID:      chatID,
			Subscribers: subscribers,
		})
		stats.TotalRooms++
	}

	sort.Slice(stats.RoomDetails, func(i, j int) bool {
		return stats.RoomDetails[i].ChatID < stats.RoomDetails[j].ChatID
	})
	return stats
}

func (ms *MonitorService) getClientList() []model.ClientInfo {
	ms.hub.clientsMu.RLock()
	clients := make([]*Client, 0, len(ms.hub.clients))
	for _, c := range ms.hub.clients {
		clients = append(clients, c)
	}
	ms.hub.clientsMu.RUnlock()

	infos := make([]model.ClientInfo, 0, len(clients))
	for _, c := range clients {
		infos = append(infos, model.ClientInfo{
			ConnectionID: c.ID,
			UserID:       c.UserID(),
			Rooms:        ms.hub.rooms.roomsOf(c.ID),
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].ConnectionID < infos[j].ConnectionID
	})
	return infos
}
