package event

import "encoding/json"

// Events received from clients.
const (
	EventSetup         = "setup"
	EventJoinChat      = "join-chat"
	EventLeaveChat     = "leave-chat"
	EventSendMessage   = "send-message"
	EventEditMessage   = "edit-message"
	EventDeleteMessage = "delete-message"
	EventMessageSeen   = "message-seen"
	EventTyping        = "typing"
	EventStopTyping    = "stop-typing"
)

// Events emitted to clients. Typing indicators and read receipts are echoed
// back out under their inbound names.
const (
	EventOnlineUsers    = "online-users"
	EventNewMessage     = "new-message"
	EventMessageEdited  = "message-edited"
	EventMessageDeleted = "message-deleted"
	EventError          = "error"
)

// WsEvent is the envelope for every frame crossing the socket boundary.
type WsEvent struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// SetupPayload carries the client-asserted identity for a connection.
type SetupPayload struct {
	UserID string `json:"userId"`
}

// JoinChatPayload subscribes the connection to a chat room.
type JoinChatPayload struct {
	ChatID string `json:"chatId"`
}

// SendMessagePayload is the inbound send-message body. File, when present,
// is the descriptor returned by the media collaborator.
type SendMessagePayload struct {
	ChatID  string          `json:"chatId"`
	Content string          `json:"content"`
	File    json.RawMessage `json:"file,omitempty"`
}

type EditMessagePayload struct {
	MessageID string `json:"messageId"`
	Content   string `json:"content"`
}

type DeleteMessagePayload struct {
	MessageID string `json:"messageId"`
}

// MessageSeenPayload is the inbound read receipt.
type MessageSeenPayload struct {
	MessageID string `json:"messageId"`
}

// TypingPayload scopes a typing indicator to one chat.
type TypingPayload struct {
	ChatID string `json:"chatId"`
}
