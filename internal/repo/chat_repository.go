package repo

import (
	"Chattr/internal/db"
	"Chattr/internal/model"
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ChatRepository owns the chats collection: member-pair lookup, creation,
// and the lastMessage/unread-counter writes the delivery layer depends on.
type ChatRepository interface {
	FindByID(ctx context.Context, id string) (*model.Chat, error)
	FindByMembers(ctx context.Context, a, b primitive.ObjectID) (*model.Chat, error)
	Create(ctx context.Context, chat *model.Chat) (*model.Chat, error)
	ListForUser(ctx context.Context, userID primitive.ObjectID) ([]model.Chat, error)
	AttachLastMessage(ctx context.Context, chatID, messageID, recipientID primitive.ObjectID) error
	ResetUnread(ctx context.Context, chatID, userID primitive.ObjectID) error
}

type chatRepository struct {
	con       *mongo.Database
	mongoRepo *db.Repository[model.Chat]
	logger    *zap.Logger
}

func NewChatRepository(con *mongo.Database, repo *db.Repository[model.Chat], logger *zap.Logger) ChatRepository {
	return &chatRepository{
		con:       con,
		mongoRepo: repo,
		logger:    logger,
	}
}

// FindByID returns nil (no error) when the chat does not exist.
func (r *chatRepository) FindByID(ctx context.Context, id string) (*model.Chat, error) {
	if id == "" {
		return nil, ErrInvalidChatID
	}

	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	chat, err := r.mongoRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) || errors.Is(err, primitive.ErrInvalidHex) {
			return nil, nil
		}
		r.logger.Error("failed to fetch chat", zap.String("chat_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to fetch chat: %w", err)
	}
	return chat, nil
}

// FindByMembers resolves the unique unordered two-member pair.
func (r *chatRepository) FindByMembers(ctx context.Context, a, b primitive.ObjectID) (*model.Chat, error) {
	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	filter := db.NewFilter().
		All("members", []primitive.ObjectID{a, b}).
		Size("members", 2).
		Build()

	chat, err := r.mongoRepo.FindOne(ctx, filter)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		r.logger.Error("failed to fetch chat by members", zap.Error(err))
		return nil, fmt.Errorf("failed to fetch chat by members: %w", err)
	}
	return chat, nil
}

func (r *chatRepository) Create(ctx context.Context, chat *model.Chat) (*model.Chat, error) {
	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	result, err := r.mongoRepo.Create(ctx, *chat)
	if err != nil {
		r.logger.Error("failed to create chat", zap.Error(err))
		return nil, fmt.Errorf("failed to create chat: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		chat.ID = oid
	}

	r.logger.Info("chat created",
		zap.String("chat_id", chat.ID.Hex()),
		zap.Int("members", len(chat.Members)),
	)
	return chat, nil
}

func (r *chatRepository) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]model.Chat, error) {
	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.M{"updated_at": -1})
	chats, err := r.mongoRepo.FindAll(ctx, db.NewFilter().Eq("members", userID).Build(), opts)
	if err != nil {
		r.logger.Error("failed to list chats", zap.String("user_id", userID.Hex()), zap.Error(err))
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	return chats, nil
}

// AttachLastMessage points the chat at its newest message and increments the
// recipient's unread counter in the same single-document update. The
// sender's own counter is left untouched.
func (r *chatRepository) AttachLastMessage(ctx context.Context, chatID, messageID, recipientID primitive.ObjectID) error {
	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"last_message": messageID,
			"updated_at":   time.Now().UTC(),
		},
		"$inc": bson.M{
			"unread_counts." + recipientID.Hex(): 1,
		},
	}

	result, err := r.mongoRepo.UpdateRaw(ctx, bson.M{"_id": chatID}, update)
	if err != nil {
		r.logger.Error("failed to attach last message",
			zap.String("chat_id", chatID.Hex()),
			zap.Error(err),
		)
		return fmt.Errorf("failed to attach last message: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ResetUnread zeroes the reader's counter for the chat (bulk reset).
func (r *chatRepository) ResetUnread(ctx context.Context, chatID, userID primitive.ObjectID) error {
	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	_, err := r.mongoRepo.Update(ctx, bson.M{"_id": chatID}, bson.M{
		"unread_counts." + userID.Hex(): 0,
	})
	if err != nil {
		r.logger.Error("failed to reset unread counter",
			zap.String("chat_id", chatID.Hex()),
			zap.String("user_id", userID.Hex()),
			zap.Error(err),
		)
		return fmt.Errorf("failed to reset unread counter: %w", err)
	}
	return nil
}
