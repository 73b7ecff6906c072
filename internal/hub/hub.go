package hub

import (
	"Chattr/internal/event"
	"Chattr/internal/service"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type inboundMessage struct {
	event  event.WsEvent
	client *Client
}

// Hub owns all live connection state: the presence registry, the room
// subscription sets, and the per-connection clients. Durable writes go
// through the chat service; the hub broadcasts only after those complete.
type Hub struct {
	registry *presenceRegistry
	rooms    *roomSet
	service  service.ChatService
	logger   *zap.Logger

	clients   map[string]*Client // connection id -> client
	clientsMu sync.RWMutex

	register   chan *Client
	unregister chan *Client
	inbound    chan inboundMessage

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub(chatService service.ChatService, logger *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Hub{
		registry:   newPresenceRegistry(),
		rooms:      newRoomSet(),
		service:    chatService,
		logger:     logger,
		clients:    make(map[string]*Client),
		register:   make(chan *Client, 1024),
		unregister: make(chan *Client, 1024),
		inbound:    make(chan inboundMessage, 4096), // buffer for burst handling
		ctx:        ctx,
		cancel:     cancel,
	}

	// run manager loop
	go h.run()

	// start worker loop
	for i := 0; i < workerPoolSize; i++ {
		h.wg.Add(1)
		go func() {
			defer h.wg.Done()
			for {
				select {
				case <-h.ctx.Done():
					return
				case in, ok := <-h.inbound:
					if !ok {
						return
					}
					h.handleEvent(in.event, in.client)
				}
			}
		}()
	}

	return h
}

func (h *Hub) run() {
	for {
		select {
		case <-h.ctx.Done():
			return
		case c := <-h.register:
			h.addClient(c)
		case c := <-h.unregister:
			h.removeClient(c)
		}
	}
}

func (h *Hub) addClient(c *Client) {
	h.clientsMu.Lock()
	h.clients[c.ID] = c
	h.clientsMu.Unlock()
}

// removeClient tears down one connection: it leaves every room, and if this
// was the user's last connection, persists offline state before the
// online-users re-broadcast. A connection that never completed setup
// produces no durable write and no broadcast.
func (h *Hub) removeClient(c *Client) {
	h.clientsMu.Lock()
	delete(h.clients, c.ID)
	h.clientsMu.Unlock()

	h.rooms.leaveAll(c.ID)

	userID, wentOffline := h.registry.unregister(c.ID)
	c.Close()

	if userID == "" {
		log.Printf("anonymous client %s removed", c.ID)
		return
	}

	log.Printf("client %s removed (user %s)", c.ID, userID)

	if !wentOffline {
		// Another device keeps the user online; nothing durable changed.
		return
	}

	// Disconnect must not cancel the presence write; use a fresh context.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := h.service.MarkOffline(ctx, userID, time.Now().UTC()); err != nil {
		h.logger.Error("failed to persist offline presence",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return
	}

	h.broadcastOnlineUsers()
}

// -----------------------------------------------------------------
// Broadcasting (implements service.Broadcaster)
// -----------------------------------------------------------------

// BroadcastToRoom delivers an event to every subscriber of a room,
// skipping exceptConn when set.
func (h *Hub) BroadcastToRoom(roomID, exceptConn string, ev event.WsEvent) {
	for _, c := range h.rooms.subscribers(roomID, exceptConn) {
		if !c.SafeSend(ev, sendTimeout) {
			log.Printf("dropping event %s for client %s in room %s", ev.Event, c.ID, roomID)
		}
	}
}

// BroadcastToAll delivers an event to every live connection.
func (h *Hub) BroadcastToAll(ev event.WsEvent) {
	h.clientsMu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.clientsMu.RUnlock()

	for _, c := range clients {
		if !c.SafeSend(ev, sendTimeout) {
			log.Printf("dropping event %s for client %s", ev.Event, c.ID)
		}
	}
}

// broadcastOnlineUsers pushes the full online-user-id set to everyone.
func (h *Hub) broadcastOnlineUsers() {
	payload, err := json.Marshal(h.registry.listOnline())
	if err != nil {
		h.logger.Error("failed to marshal online users", zap.Error(err))
		return
	}
	h.BroadcastToAll(event.WsEvent{Event: event.EventOnlineUsers, Payload: payload})
}

// -----------------------------------------------------------------
// Lifecycle
// -----------------------------------------------------------------

func (h *Hub) Stop() {
	h.cancel()

	h.clientsMu.RLock()
	for _, client := range h.clients {
		client.Close()
	}
	h.clientsMu.RUnlock()

	close(h.inbound)
	h.wg.Wait()
}

var websocketUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     checkOrigin,
}

func checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")

	switch origin {
	case "http://localhost:5173":
		return true
	case "https://www.chattr.app":
		return true
	default:
		return false
	}
}

// ServeWS upgrades an HTTP request to a WebSocket connection. The client
// stays anonymous until it emits a setup event.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocketUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println(err)
		return
	}

	RegisterClient(conn, h)
}
