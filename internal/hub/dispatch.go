package hub

import (
	"Chattr/internal/event"
	"Chattr/internal/model"
	"Chattr/internal/service"
	"context"
	"encoding/json"
	"log"

	"go.uber.org/zap"
)

// handleEvent is the dispatch table for inbound socket events. Malformed or
// rejected events are answered with an error event and dropped; they never
// terminate the connection.
func (h *Hub) handleEvent(ev event.WsEvent, c *Client) {
	switch ev.Event {
	case event.EventSetup:
		h.handleSetup(ev, c)
	case event.EventJoinChat:
		h.handleJoinChat(ev, c)
	case event.EventLeaveChat:
		h.handleLeaveChat(ev, c)
	case event.EventSendMessage:
		h.handleSendMessage(ev, c)
	case event.EventEditMessage:
		h.handleEditMessage(ev, c)
	case event.EventDeleteMessage:
		h.handleDeleteMessage(ev, c)
	case event.EventMessageSeen:
		h.handleMessageSeen(ev, c)
	case event.EventTyping:
		h.handleTyping(ev, c, false)
	case event.EventStopTyping:
		h.handleTyping(ev, c, true)
	default:
		log.Printf("unknown event type: %s", ev.Event)
	}
}

// handleSetup binds a client-asserted identity to the connection, persists
// isOnline, then broadcasts the full online-user set. The broadcast never
// precedes the durable write.
func (h *Hub) handleSetup(ev event.WsEvent, c *Client) {
	var payload event.SetupPayload
	if err := json.Unmarshal(ev.Payload, &payload); err != nil {
		log.Printf("failed to unmarshal setup payload from %s: %v", c.ID, err)
		h.sendError(c, "invalid_payload", "Failed to parse setup request")
		return
	}
	if payload.UserID == "" {
		h.sendError(c, "invalid_user_id", "userId is required")
		return
	}

	h.registry.register(payload.UserID, c.ID)
	c.setUserID(payload.UserID)

	if err := h.service.MarkOnline(h.opCtx(), payload.UserID); err != nil {
		// Keep live and durable views consistent: back the registration out.
		h.registry.unregister(c.ID)
		c.setUserID("")
		h.sendError(c, "presence_write_failed", "Could not mark you online, retry setup")
		return
	}

	log.Printf("user %s online via client %s", payload.UserID, c.ID)
	h.broadcastOnlineUsers()
}

func (h *Hub) handleJoinChat(ev event.WsEvent, c *Client) {
	var payload event.JoinChatPayload
	if err := json.Unmarshal(ev.Payload, &payload); err != nil || payload.ChatID == "" {
		h.sendError(c, "invalid_chat_id", "chatId is required")
		return
	}

	h.rooms.join(c, payload.ChatID)
	log.Printf("client %s joined chat %s", c.ID, payload.ChatID)
}

func (h *Hub) handleLeaveChat(ev event.WsEvent, c *Client) {
	var payload event.JoinChatPayload
	if err := json.Unmarshal(ev.Payload, &payload); err != nil || payload.ChatID == "" {
		h.sendError(c, "invalid_chat_id", "chatId is required")
		return
	}

	h.rooms.leave(c.ID, payload.ChatID)
}

func (h *Hub) handleSendMessage(ev event.WsEvent, c *Client) {
	userID := c.UserID()
	if userID == "" {
		h.sendError(c, "setup_required", "Emit setup before sending messages")
		return
	}

	var payload event.SendMessagePayload
	if err := json.Unmarshal(ev.Payload, &payload); err != nil {
		log.Printf("failed to unmarshal send-message payload from %s: %v", c.ID, err)
		h.sendError(c, "invalid_payload", "Failed to parse send-message request")
		return
	}

	var file *model.FileAttachment
	if len(payload.File) > 0 {
		file = &model.FileAttachment{}
		if err := json.Unmarshal(payload.File, file); err != nil {
			h.sendError(c, "invalid_file", "Failed to parse file descriptor")
			return
		}
	}

	_, err := h.service.SendMessage(h.opCtx(), service.SendMessageInput{
		ChatID:     payload.ChatID,
		SenderID:   userID,
		Content:    payload.Content,
		File:       file,
		OriginConn: c.ID,
	})
	if err != nil {
		h.sendServiceError(c, err)
	}
}

func (h *Hub) handleEditMessage(ev event.WsEvent, c *Client) {
	userID := c.UserID()
	if userID == "" {
		h.sendError(c, "setup_required", "Emit setup before editing messages")
		return
	}

	var payload event.EditMessagePayload
	if err := json.Unmarshal(ev.Payload, &payload); err != nil {
		h.sendError(c, "invalid_payload", "Failed to parse edit-message request")
		return
	}

	_, err := h.service.EditMessage(h.opCtx(), service.EditMessageInput{
		MessageID: payload.MessageID,
		ActorID:   userID,
		Content:   payload.Content,
	})
	if err != nil {
		h.sendServiceError(c, err)
	}
}

func (h *Hub) handleDeleteMessage(ev event.WsEvent, c *Client) {
	userID := c.UserID()
	if userID == "" {
		h.sendError(c, "setup_required", "Emit setup before deleting messages")
		return
	}

	var payload event.DeleteMessagePayload
	if err := json.Unmarshal(ev.Payload, &payload); err != nil {
		h.sendError(c, "invalid_payload", "Failed to parse delete-message request")
		return
	}

	err := h.service.DeleteMessage(h.opCtx(), service.DeleteMessageInput{
		MessageID: payload.MessageID,
		ActorID:   userID,
	})
	if err != nil {
		h.sendServiceError(c, err)
	}
}

func (h *Hub) handleMessageSeen(ev event.WsEvent, c *Client) {
	userID := c.UserID()
	if userID == "" {
		h.sendError(c, "setup_required", "Emit setup before sending read receipts")
		return
	}

	var payload event.MessageSeenPayload
	if err := json.Unmarshal(ev.Payload, &payload); err != nil {
		h.sendError(c, "invalid_payload", "Failed to parse message-seen request")
		return
	}

	_, err := h.service.MarkMessageRead(h.opCtx(), service.MarkReadInput{
		MessageID:  payload.MessageID,
		ReaderID:   userID,
		OriginConn: c.ID,
	})
	if err != nil {
		h.sendServiceError(c, err)
	}
}

func (h *Hub) handleTyping(ev event.WsEvent, c *Client, stopped bool) {
	var payload event.TypingPayload
	if err := json.Unmarshal(ev.Payload, &payload); err != nil || payload.ChatID == "" {
		h.sendError(c, "invalid_chat_id", "chatId is required")
		return
	}

	h.service.NotifyTyping(payload.ChatID, c.UserID(), c.ID, stopped)
}

// opCtx returns the context for service calls triggered by socket events.
// Deliberately detached from the connection: a disconnect must not cancel a
// write already in flight.
func (h *Hub) opCtx() context.Context {
	return context.Background()
}

func (h *Hub) sendError(c *Client, code, message string) {
	payload, err := json.Marshal(model.ErrorPayload{Code: code, Message: message})
	if err != nil {
		return
	}
	c.SafeSend(event.WsEvent{Event: event.EventError, Payload: payload}, sendTimeout)
}

func (h *Hub) sendServiceError(c *Client, err error) {
	switch err {
	case service.ErrChatNotFound, service.ErrMessageNotFound, service.ErrUserNotFound:
		h.sendError(c, "not_found", err.Error())
	case service.ErrNotChatMember, service.ErrNotMessageSender:
		h.sendError(c, "unauthorized", err.Error())
	case service.ErrEmptyMessage, service.ErrInvalidUserID:
		h.sendError(c, "invalid_payload", err.Error())
	default:
		h.logger.Error("socket operation failed", zap.Error(err))
		h.sendError(c, "internal_error", "Operation failed, please retry")
	}
}
