package service

import (
	"Chattr/internal/db"
	"Chattr/internal/event"
	"Chattr/internal/model"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// -----------------------------------------------------------------
// In-memory fakes
// -----------------------------------------------------------------

type fakeChatRepo struct {
	chats     map[string]*model.Chat
	attachErr error
	resets    []string // user ids whose counters were reset
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{chats: make(map[string]*model.Chat)}
}

func (f *fakeChatRepo) FindByID(ctx context.Context, id string) (*model.Chat, error) {
	chat, ok := f.chats[id]
	if !ok {
		return nil, nil
	}
	return chat, nil
}

func (f *fakeChatRepo) FindByMembers(ctx context.Context, a, b primitive.ObjectID) (*model.Chat, error) {
	for _, chat := range f.chats {
		if chat.HasMember(a) && chat.HasMember(b) {
			return chat, nil
		}
	}
	return nil, nil
}

func (f *fakeChatRepo) Create(ctx context.Context, chat *model.Chat) (*model.Chat, error) {
	chat.ID = primitive.NewObjectID()
	f.chats[chat.ID.Hex()] = chat
	return chat, nil
}

func (f *fakeChatRepo) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]model.Chat, error) {
	var out []model.Chat
	for _, chat := range f.chats {
		if chat.HasMember(userID) {
			out = append(out, *chat)
		}
	}
	return out, nil
}

func (f *fakeChatRepo) AttachLastMessage(ctx context.Context, chatID, messageID, recipientID primitive.ObjectID) error {
	if f.attachErr != nil {
		return f.attachErr
	}
	chat := f.chats[chatID.Hex()]
	id := messageID
	chat.LastMessage = &id
	chat.UnreadCounts[recipientID.Hex()]++
	chat.UpdatedAt = time.Now().UTC()
	return nil
}

func (f *fakeChatRepo) ResetUnread(ctx context.Context, chatID, userID primitive.ObjectID) error {
	f.chats[chatID.Hex()].UnreadCounts[userID.Hex()] = 0
	f.resets = append(f.resets, userID.Hex())
	return nil
}

type fakeMessageRepo struct {
	msgs map[string]*model.Message
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{msgs: make(map[string]*model.Message)}
}

func (f *fakeMessageRepo) InsertMessage(ctx context.Context, msg *model.Message) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	stored := *msg
	stored.ID = id
	f.msgs[id.Hex()] = &stored
	return id, nil
}

// FindByID hands back a copy, like a driver decoding a fresh document.
func (f *fakeMessageRepo) FindByID(ctx context.Context, id string) (*model.Message, error) {
	msg, ok := f.msgs[id]
	if !ok {
		return nil, nil
	}
	copied := *msg
	return &copied, nil
}

func (f *fakeMessageRepo) FilterByChat(ctx context.Context, chatID string, page int64) (*db.PaginatedResult[model.Message], error) {
	return &db.PaginatedResult[model.Message]{}, nil
}

func (f *fakeMessageRepo) UpdateContent(ctx context.Context, id primitive.ObjectID, content string, editedAt time.Time) error {
	msg := f.msgs[id.Hex()]
	msg.Content = content
	msg.EditedAt = &editedAt
	msg.UpdatedAt = editedAt
	return nil
}

func (f *fakeMessageRepo) MarkRead(ctx context.Context, id primitive.ObjectID, readAt time.Time) (bool, error) {
	msg := f.msgs[id.Hex()]
	if msg.Read {
		return false, nil
	}
	msg.Read = true
	msg.ReadAt = &readAt
	return true, nil
}

func (f *fakeMessageRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	delete(f.msgs, id.Hex())
	return nil
}

type fakeUserRepo struct {
	presence map[string]*model.PresenceStatus
}

func (f *fakeUserRepo) GetUser(ctx context.Context, id string) (*model.User, error) {
	return nil, nil
}

func (f *fakeUserRepo) ListUsers(ctx context.Context) ([]model.User, error) {
	return nil, nil
}

func (f *fakeUserRepo) GetPresence(ctx context.Context, id string) (*model.PresenceStatus, error) {
	return f.presence[id], nil
}

func (f *fakeUserRepo) SetOnline(ctx context.Context, id string) error { return nil }

func (f *fakeUserRepo) SetOffline(ctx context.Context, id string, lastSeen time.Time) error {
	return nil
}

type broadcastCall struct {
	roomID     string
	exceptConn string
	ev         event.WsEvent
}

type recordingBroadcaster struct {
	calls []broadcastCall
}

func (r *recordingBroadcaster) BroadcastToRoom(roomID string, exceptConn string, ev event.WsEvent) {
	r.calls = append(r.calls, broadcastCall{roomID: roomID, exceptConn: exceptConn, ev: ev})
}

func (r *recordingBroadcaster) BroadcastToAll(ev event.WsEvent) {
	r.calls = append(r.calls, broadcastCall{ev: ev})
}

// -----------------------------------------------------------------
// Fixtures
// -----------------------------------------------------------------

type fixture struct {
	svc      ChatService
	chats    *fakeChatRepo
	messages *fakeMessageRepo
	users    *fakeUserRepo
	sink     *recordingBroadcaster

	alice primitive.ObjectID
	bob   primitive.ObjectID
	chat  *model.Chat
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		chats:    newFakeChatRepo(),
		messages: newFakeMessageRepo(),
		users:    &fakeUserRepo{presence: make(map[string]*model.PresenceStatus)},
		sink:     &recordingBroadcaster{},
		alice:    primitive.NewObjectID(),
		bob:      primitive.NewObjectID(),
	}

	now := time.Now().UTC()
	f.chat = &model.Chat{
		ID:      primitive.NewObjectID(),
		Members: []primitive.ObjectID{f.alice, f.bob},
		UnreadCounts: map[string]int64{
			f.alice.Hex(): 0,
			f.bob.Hex():   0,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.chats.chats[f.chat.ID.Hex()] = f.chat

	f.svc = NewChatService(f.chats, f.messages, f.users, zap.NewNop())
	f.svc.SetBroadcaster(f.sink)
	return f
}

func (f *fixture) send(t *testing.T, content, origin string) *model.Message {
	t.Helper()
	msg, err := f.svc.SendMessage(context.Background(), SendMessageInput{
		ChatID:     f.chat.ID.Hex(),
		SenderID:   f.alice.Hex(),
		Content:    content,
		OriginConn: origin,
	})
	require.NoError(t, err)
	return msg
}

// -----------------------------------------------------------------
// Sending
// -----------------------------------------------------------------

func TestSendMessageIncrementsOnlyRecipientCounter(t *testing.T) {
	f := newFixture(t)

	first := f.send(t, "hello", "")
	f.send(t, "still there?", "")

	assert.Equal(t, int64(0), f.chat.UnreadCounts[f.alice.Hex()], "sender's own counter never moves")
	assert.Equal(t, int64(2), f.chat.UnreadCounts[f.bob.Hex()])
	require.NotNil(t, f.chat.LastMessage)
	assert.NotEqual(t, first.ID, *f.chat.LastMessage, "lastMessage tracks the most recent send")
}

func TestSendMessageBroadcastExcludesOriginConnection(t *testing.T) {
	f := newFixture(t)

	msg := f.send(t, "hello", "conn-origin")

	require.Len(t, f.sink.calls, 1)
	call := f.sink.calls[0]
	assert.Equal(t, f.chat.ID.Hex(), call.roomID)
	assert.Equal(t, "conn-origin", call.exceptConn)
	assert.Equal(t, event.EventNewMessage, call.ev.Event)

	var got model.Message
	require.NoError(t, json.Unmarshal(call.ev.Payload, &got))
	assert.Equal(t, msg.ID, got.ID)
	assert.Equal(t, "hello", got.Content)
}

func TestSendMessageSuppressesBroadcastWhenChatUpdateFails(t *testing.T) {
	f := newFixture(t)
	f.chats.attachErr = errors.New("write conflict")

	_, err := f.svc.SendMessage(context.Background(), SendMessageInput{
		ChatID:   f.chat.ID.Hex(),
		SenderID: f.alice.Hex(),
		Content:  "hello",
	})

	require.Error(t, err)
	assert.Empty(t, f.sink.calls, "no fan-out without a complete durable write")
	assert.Len(t, f.messages.msgs, 1, "the message itself was persisted")
}

func TestSendMessageFileOnly(t *testing.T) {
	f := newFixture(t)
	file := &model.FileAttachment{PublicID: "pic-1", URL: "https://cdn.example/pic-1", Type: "image"}

	msg, err := f.svc.SendMessage(context.Background(), SendMessageInput{
		ChatID:   f.chat.ID.Hex(),
		SenderID: f.alice.Hex(),
		File:     file,
	})

	require.NoError(t, err)
	require.NotNil(t, msg.File)
	assert.Equal(t, "image", msg.File.Type)
	assert.Empty(t, msg.Content)
}

func TestSendMessageRejectsEmptyBody(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.SendMessage(context.Background(), SendMessageInput{
		ChatID:   f.chat.ID.Hex(),
		SenderID: f.alice.Hex(),
	})

	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Empty(t, f.sink.calls)
}

func TestSendMessageRejectsNonMember(t *testing.T) {
	f := newFixture(t)
	stranger := primitive.NewObjectID()

	_, err := f.svc.SendMessage(context.Background(), SendMessageInput{
		ChatID:   f.chat.ID.Hex(),
		SenderID: stranger.Hex(),
		Content:  "let me in",
	})

	assert.ErrorIs(t, err, ErrNotChatMember)
	assert.Empty(t, f.messages.msgs)
	assert.Empty(t, f.sink.calls)
}

// -----------------------------------------------------------------
// Editing and deleting
// -----------------------------------------------------------------

func TestEditMessageOnlyBySender(t *testing.T) {
	f := newFixture(t)
	msg := f.send(t, "original", "")
	f.sink.calls = nil

	_, err := f.svc.EditMessage(context.Background(), EditMessageInput{
		MessageID: msg.ID.Hex(),
		ActorID:   f.bob.Hex(),
		Content:   "hijacked",
	})

	assert.ErrorIs(t, err, ErrNotMessageSender)
	assert.Equal(t, "original", f.messages.msgs[msg.ID.Hex()].Content)
	assert.Empty(t, f.sink.calls)
}

func TestEditMessageUpdatesAndBroadcasts(t *testing.T) {
	f := newFixture(t)
	msg := f.send(t, "original", "")
	f.sink.calls = nil

	edited, err := f.svc.EditMessage(context.Background(), EditMessageInput{
		MessageID: msg.ID.Hex(),
		ActorID:   f.alice.Hex(),
		Content:   "fixed typo",
	})

	require.NoError(t, err)
	assert.Equal(t, "fixed typo", edited.Content)
	assert.NotNil(t, edited.EditedAt)
	assert.Equal(t, "fixed typo", f.messages.msgs[msg.ID.Hex()].Content)

	require.Len(t, f.sink.calls, 1)
	assert.Equal(t, event.EventMessageEdited, f.sink.calls[0].ev.Event)
	assert.Equal(t, "", f.sink.calls[0].exceptConn, "edits reach the sender's other devices too")
}

func TestDeleteMessageOnlyBySender(t *testing.T) {
	f := newFixture(t)
	msg := f.send(t, "remove me", "")
	f.sink.calls = nil

	err := f.svc.DeleteMessage(context.Background(), DeleteMessageInput{
		MessageID: msg.ID.Hex(),
		ActorID:   f.bob.Hex(),
	})

	assert.ErrorIs(t, err, ErrNotMessageSender)
	assert.Contains(t, f.messages.msgs, msg.ID.Hex())
	assert.Empty(t, f.sink.calls)
}

func TestDeleteMessageRemovesAndBroadcasts(t *testing.T) {
	f := newFixture(t)
	msg := f.send(t, "remove me", "")
	f.sink.calls = nil

	err := f.svc.DeleteMessage(context.Background(), DeleteMessageInput{
		MessageID: msg.ID.Hex(),
		ActorID:   f.alice.Hex(),
	})

	require.NoError(t, err)
	assert.NotContains(t, f.messages.msgs, msg.ID.Hex())

	require.Len(t, f.sink.calls, 1)
	assert.Equal(t, event.EventMessageDeleted, f.sink.calls[0].ev.Event)

	var payload model.MessageDeleted
	require.NoError(t, json.Unmarshal(f.sink.calls[0].ev.Payload, &payload))
	assert.Equal(t, msg.ID.Hex(), payload.MessageID)
}

// -----------------------------------------------------------------
// Read receipts
// -----------------------------------------------------------------

func TestMarkMessageReadResetsReaderCounterAndBroadcasts(t *testing.T) {
	f := newFixture(t)
	msg := f.send(t, "unread", "")
	f.sink.calls = nil
	require.Equal(t, int64(1), f.chat.UnreadCounts[f.bob.Hex()])

	got, err := f.svc.MarkMessageRead(context.Background(), MarkReadInput{
		MessageID:  msg.ID.Hex(),
		ReaderID:   f.bob.Hex(),
		OriginConn: "conn-bob",
	})

	require.NoError(t, err)
	assert.True(t, got.Read)
	require.NotNil(t, got.ReadAt)
	assert.Equal(t, int64(0), f.chat.UnreadCounts[f.bob.Hex()])

	require.Len(t, f.sink.calls, 1)
	call := f.sink.calls[0]
	assert.Equal(t, event.EventMessageSeen, call.ev.Event)
	assert.Equal(t, "conn-bob", call.exceptConn)

	var seen model.MessageSeen
	require.NoError(t, json.Unmarshal(call.ev.Payload, &seen))
	assert.Equal(t, f.bob.Hex(), seen.SeenBy)
}

func TestMarkMessageReadIsIdempotent(t *testing.T) {
	f := newFixture(t)
	msg := f.send(t, "unread", "")
	f.sink.calls = nil

	first, err := f.svc.MarkMessageRead(context.Background(), MarkReadInput{
		MessageID: msg.ID.Hex(),
		ReaderID:  f.bob.Hex(),
	})
	require.NoError(t, err)
	require.NotNil(t, first.ReadAt)
	firstReadAt := *first.ReadAt
	f.sink.calls = nil
	f.chats.resets = nil

	second, err := f.svc.MarkMessageRead(context.Background(), MarkReadInput{
		MessageID: msg.ID.Hex(),
		ReaderID:  f.bob.Hex(),
	})

	require.NoError(t, err)
	assert.True(t, second.Read)
	require.NotNil(t, second.ReadAt)
	assert.Equal(t, firstReadAt, *second.ReadAt, "readAt must not move on re-mark")
	assert.Empty(t, f.chats.resets, "no counter write on re-mark")
	assert.Empty(t, f.sink.calls, "no broadcast on re-mark")
}

func TestMarkMessageReadRejectsNonMember(t *testing.T) {
	f := newFixture(t)
	msg := f.send(t, "private", "")
	stranger := primitive.NewObjectID()
	f.sink.calls = nil

	_, err := f.svc.MarkMessageRead(context.Background(), MarkReadInput{
		MessageID: msg.ID.Hex(),
		ReaderID:  stranger.Hex(),
	})

	assert.ErrorIs(t, err, ErrNotChatMember)
	assert.False(t, f.messages.msgs[msg.ID.Hex()].Read)
	assert.Empty(t, f.sink.calls)
}

// -----------------------------------------------------------------
// Chats
// -----------------------------------------------------------------

func TestAccessChatReturnsExistingPair(t *testing.T) {
	f := newFixture(t)

	chat, created, err := f.svc.AccessChat(context.Background(), f.alice.Hex(), f.bob.Hex())

	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, f.chat.ID, chat.ID)
}

func TestAccessChatCreatesOnFirstContact(t *testing.T) {
	f := newFixture(t)
	carol := primitive.NewObjectID()

	chat, created, err := f.svc.AccessChat(context.Background(), f.alice.Hex(), carol.Hex())

	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, chat.HasMember(f.alice))
	assert.True(t, chat.HasMember(carol))
	assert.Equal(t, int64(0), chat.UnreadCounts[f.alice.Hex()])
	assert.Equal(t, int64(0), chat.UnreadCounts[carol.Hex()])
}

func TestAccessChatRejectsSelf(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.svc.AccessChat(context.Background(), f.alice.Hex(), f.alice.Hex())

	assert.ErrorIs(t, err, ErrSelfChat)
}

func TestAccessChatRejectsMalformedID(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.svc.AccessChat(context.Background(), f.alice.Hex(), "not-an-object-id")

	assert.ErrorIs(t, err, ErrInvalidUserID)
}

// -----------------------------------------------------------------
// Typing and presence
// -----------------------------------------------------------------

func TestNotifyTypingExcludesOrigin(t *testing.T) {
	f := newFixture(t)

	f.svc.NotifyTyping("chat-1", f.alice.Hex(), "conn-alice", false)
	f.svc.NotifyTyping("chat-1", f.alice.Hex(), "conn-alice", true)

	require.Len(t, f.sink.calls, 2)
	assert.Equal(t, event.EventTyping, f.sink.calls[0].ev.Event)
	assert.Equal(t, event.EventStopTyping, f.sink.calls[1].ev.Event)
	for _, call := range f.sink.calls {
		assert.Equal(t, "conn-alice", call.exceptConn)
	}
}

func TestOnlineStatusUnknownUser(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.OnlineStatus(context.Background(), primitive.NewObjectID().Hex())

	assert.ErrorIs(t, err, ErrUserNotFound)
}
