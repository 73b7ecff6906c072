package service

import (
	"Chattr/internal/db"
	"Chattr/internal/event"
	"Chattr/internal/model"
	"Chattr/internal/repo"
	"context"
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Broadcaster fans a live event out to its audience. The hub implements it;
// the service never learns about individual connections beyond the optional
// "everyone but me" exclusion.
type Broadcaster interface {
	BroadcastToRoom(roomID string, exceptConn string, ev event.WsEvent)
	BroadcastToAll(ev event.WsEvent)
}

// SendMessageInput carries one message send. OriginConn, when set, is the
// sender's own connection id and is excluded from the new-message fan-out.
type SendMessageInput struct {
	ChatID     string
	SenderID   string
	Content    string
	File       *model.FileAttachment
	OriginConn string
}

type EditMessageInput struct {
	MessageID string
	ActorID   string
	Content   string
}

type DeleteMessageInput struct {
	MessageID string
	ActorID   string
}

// MarkReadInput carries one read receipt. OriginConn is excluded from the
// message-seen fan-out.
type MarkReadInput struct {
	MessageID  string
	ReaderID   string
	OriginConn string
}

// ChatService is the delivery consistency layer: every durable write and the
// broadcast that follows it go through here, for both the REST handlers and
// the socket dispatcher. An event is only fanned out after its durable write
// has completed.
type ChatService interface {
	AccessChat(ctx context.Context, userID, otherUserID string) (*model.Chat, bool, error)
	ListChats(ctx context.Context, userID string) ([]model.Chat, error)
	ListMessages(ctx context.Context, chatID string, page int64) (*db.PaginatedResult[model.Message], error)

	SendMessage(ctx context.Context, in SendMessageInput) (*model.Message, error)
	EditMessage(ctx context.Context, in EditMessageInput) (*model.Message, error)
	DeleteMessage(ctx context.Context, in DeleteMessageInput) error
	MarkMessageRead(ctx context.Context, in MarkReadInput) (*model.Message, error)
	NotifyTyping(chatID, userID, originConn string, stopped bool)

	MarkOnline(ctx context.Context, userID string) error
	MarkOffline(ctx context.Context, userID string, lastSeen time.Time) error
	OnlineStatus(ctx context.Context, userID string) (*model.PresenceStatus, error)
	ListUsers(ctx context.Context) ([]model.User, error)

	SetBroadcaster(b Broadcaster)
}

type chatService struct {
	chats       repo.ChatRepository
	messages    repo.MessageRepository
	users       repo.UserRepository
	broadcaster Broadcaster
	logger      *zap.Logger
}

// NewChatService wires the repositories. The broadcaster is attached later
// via SetBroadcaster because the hub is constructed on top of this service.
func NewChatService(chats repo.ChatRepository, messages repo.MessageRepository, users repo.UserRepository, logger *zap.Logger) ChatService {
	return &chatService{
		chats:    chats,
		messages: messages,
		users:    users,
		logger:   logger,
	}
}

func (s *chatService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// -----------------------------------------------------------------
// Chats
// -----------------------------------------------------------------

// AccessChat finds or creates the unique chat between two users. The second
// return value reports whether a new chat was created.
func (s *chatService) AccessChat(ctx context.Context, userID, otherUserID string) (*model.Chat, bool, error) {
	me, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, false, ErrInvalidUserID
	}
	other, err := primitive.ObjectIDFromHex(otherUserID)
	if err != nil {
		return nil, false, ErrInvalidUserID
	}
	if me == other {
		return nil, false, ErrSelfChat
	}

	existing, err := s.chats.FindByMembers(ctx, me, other)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	now := time.Now().UTC()
	chat := &model.Chat{
		Members: []primitive.ObjectID{me, other},
		UnreadCounts: map[string]int64{
			me.Hex():    0,
			other.Hex(): 0,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	created, err := s.chats.Create(ctx, chat)
	if err != nil {
		return nil, false, err
	}
	return created, true, nil
}

func (s *chatService) ListChats(ctx context.Context, userID string) ([]model.Chat, error) {
	me, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrInvalidUserID
	}
	return s.chats.ListForUser(ctx, me)
}

func (s *chatService) ListMessages(ctx context.Context, chatID string, page int64) (*db.PaginatedResult[model.Message], error) {
	chat, err := s.chats.FindByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, ErrChatNotFound
	}
	return s.messages.FilterByChat(ctx, chatID, page)
}

// -----------------------------------------------------------------
// Messages
// -----------------------------------------------------------------

// SendMessage persists the message, then updates the chat's lastMessage
// reference and increments the other member's unread counter, and only then
// fans out new-message. Any failure aborts before the broadcast.
func (s *chatService) SendMessage(ctx context.Context, in SendMessageInput) (*model.Message, error) {
	sender, err := primitive.ObjectIDFromHex(in.SenderID)
	if err != nil {
		return nil, ErrInvalidUserID
	}
	if in.Content == "" && in.File == nil {
		return nil, ErrEmptyMessage
	}

	chat, err := s.chats.FindByID(ctx, in.ChatID)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, ErrChatNotFound
	}

	recipient, ok := chat.OtherMember(sender)
	if !ok {
		return nil, ErrNotChatMember
	}

	now := time.Now().UTC()
	msg := &model.Message{
		ChatID:    chat.ID,
		SenderID:  sender,
		Content:   in.Content,
		File:      in.File,
		CreatedAt: now,
		UpdatedAt: now,
	}

	id, err := s.messages.InsertMessage(ctx, msg)
	if err != nil {
		return nil, err
	}
	msg.ID = id

	if err := s.chats.AttachLastMessage(ctx, chat.ID, msg.ID, recipient); err != nil {
		s.logger.Error("message persisted but chat update failed, suppressing broadcast",
			zap.String("message_id", msg.ID.Hex()),
			zap.String("chat_id", chat.ID.Hex()),
			zap.Error(err),
		)
		return nil, err
	}

	s.broadcastToRoom(chat.ID.Hex(), in.OriginConn, event.EventNewMessage, msg)
	return msg, nil
}

// EditMessage rewrites a message's content. Only the original sender may
// edit; the edited event goes to the whole room, sender included, so the
// sender's other devices converge too.
func (s *chatService) EditMessage(ctx context.Context, in EditMessageInput) (*model.Message, error) {
	actor, err := primitive.ObjectIDFromHex(in.ActorID)
	if err != nil {
		return nil, ErrInvalidUserID
	}

	msg, err := s.messages.FindByID(ctx, in.MessageID)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, ErrMessageNotFound
	}
	if msg.SenderID != actor {
		return nil, ErrNotMessageSender
	}

	now := time.Now().UTC()
	if err := s.messages.UpdateContent(ctx, msg.ID, in.Content, now); err != nil {
		return nil, err
	}

	msg.Content = in.Content
	msg.EditedAt = &now
	msg.UpdatedAt = now

	s.broadcastToRoom(msg.ChatID.Hex(), "", event.EventMessageEdited, msg)
	return msg, nil
}

// DeleteMessage removes a message. Only the original sender may delete.
func (s *chatService) DeleteMessage(ctx context.Context, in DeleteMessageInput) error {
	actor, err := primitive.ObjectIDFromHex(in.ActorID)
	if err != nil {
		return ErrInvalidUserID
	}

	msg, err := s.messages.FindByID(ctx, in.MessageID)
	if err != nil {
		return err
	}
	if msg == nil {
		return ErrMessageNotFound
	}
	if msg.SenderID != actor {
		return ErrNotMessageSender
	}

	if err := s.messages.Delete(ctx, msg.ID); err != nil {
		return err
	}

	s.broadcastToRoom(msg.ChatID.Hex(), "", event.EventMessageDeleted, model.MessageDeleted{
		MessageID: msg.ID.Hex(),
		ChatID:    msg.ChatID.Hex(),
	})
	return nil
}

// MarkMessageRead processes a read receipt. A receipt acknowledges the chat
// for the reader: the message's read flag is set once and the reader's
// unread counter for the owning chat resets to zero. Re-marking an
// already-read message is a complete no-op: no mutation, readAt untouched,
// no broadcast.
func (s *chatService) MarkMessageRead(ctx context.Context, in MarkReadInput) (*model.Message, error) {
	reader, err := primitive.ObjectIDFromHex(in.ReaderID)
	if err != nil {
		return nil, ErrInvalidUserID
	}

	msg, err := s.messages.FindByID(ctx, in.MessageID)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, ErrMessageNotFound
	}

	chat, err := s.chats.FindByID(ctx, msg.ChatID.Hex())
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, ErrChatNotFound
	}
	if !chat.HasMember(reader) {
		return nil, ErrNotChatMember
	}

	if msg.Read {
		return msg, nil
	}

	now := time.Now().UTC()
	marked, err := s.messages.MarkRead(ctx, msg.ID, now)
	if err != nil {
		return nil, err
	}
	if !marked {
		// Lost a race with another receipt; the first one already did the work.
		return s.messages.FindByID(ctx, in.MessageID)
	}

	if err := s.chats.ResetUnread(ctx, chat.ID, reader); err != nil {
		return nil, err
	}

	msg.Read = true
	msg.ReadAt = &now

	s.broadcastToRoom(chat.ID.Hex(), in.OriginConn, event.EventMessageSeen, model.MessageSeen{
		MessageID: msg.ID.Hex(),
		ChatID:    chat.ID.Hex(),
		SeenBy:    in.ReaderID,
		ReadAt:    now,
	})
	return msg, nil
}

// NotifyTyping routes a typing indicator. No durable effect, so it fans out
// immediately, excluding the originator's connection.
func (s *chatService) NotifyTyping(chatID, userID, originConn string, stopped bool) {
	name := event.EventTyping
	if stopped {
		name = event.EventStopTyping
	}
	s.broadcastToRoom(chatID, originConn, name, model.TypingIndicator{
		ChatID: chatID,
		UserID: userID,
	})
}

// -----------------------------------------------------------------
// Presence
// -----------------------------------------------------------------

func (s *chatService) MarkOnline(ctx context.Context, userID string) error {
	return s.users.SetOnline(ctx, userID)
}

func (s *chatService) MarkOffline(ctx context.Context, userID string, lastSeen time.Time) error {
	return s.users.SetOffline(ctx, userID, lastSeen)
}

func (s *chatService) OnlineStatus(ctx context.Context, userID string) (*model.PresenceStatus, error) {
	status, err := s.users.GetPresence(ctx, userID)
	if err != nil {
		return nil, err
	}
	if status == nil {
		return nil, ErrUserNotFound
	}
	return status, nil
}

func (s *chatService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.users.ListUsers(ctx)
}

// -----------------------------------------------------------------
// Broadcast plumbing
// -----------------------------------------------------------------

func (s *chatService) broadcastToRoom(roomID, exceptConn, name string, payload any) {
	if s.broadcaster == nil {
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("failed to marshal broadcast payload",
			zap.String("event", name),
			zap.Error(err),
		)
		return
	}

	s.broadcaster.BroadcastToRoom(roomID, exceptConn, event.WsEvent{
		Event:   name,
		Payload: body,
	})
}
