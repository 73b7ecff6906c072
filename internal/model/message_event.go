package model

import "time"

// MessageDeleted notifies room subscribers that a message is gone.
type MessageDeleted struct {
	MessageID string `json:"messageId"`
	ChatID    string `json:"chatId"`
}

// MessageSeen - for read receipts
type MessageSeen struct {
	MessageID string    `json:"messageId"`
	ChatID    string    `json:"chatId"`
	SeenBy    string    `json:"seenBy"`
	ReadAt    time.Time `json:"readAt"`
}

// TypingIndicator - for typing status
type TypingIndicator struct {
	ChatID string `json:"chatId"`
	UserID string `json:"userId"`
}
