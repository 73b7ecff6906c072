package service

import "errors"

// Error taxonomy shared by the REST handlers and the socket dispatcher.
// NotFound and authorization failures abort the operation before any
// durable mutation or broadcast.
var (
	ErrChatNotFound     = errors.New("chat not found")
	ErrMessageNotFound  = errors.New("message not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrNotChatMember    = errors.New("user is not a member of this chat")
	ErrNotMessageSender = errors.New("only the sender can modify this message")
	ErrSelfChat         = errors.New("cannot start a chat with yourself")
	ErrInvalidUserID    = errors.New("invalid user id")
	ErrEmptyMessage     = errors.New("message needs text content or a file attachment")
)
