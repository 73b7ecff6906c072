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
	"go.uber.org/zap"
)

var ErrInvalidMessage = errors.New("invalid message: message cannot be nil")

// MessageRepository owns the messages collection.
type MessageRepository interface {
	InsertMessage(ctx context.Context, msg *model.Message) (primitive.ObjectID, error)
	FindByID(ctx context.Context, id string) (*model.Message, error)
	FilterByChat(ctx context.Context, chatID string, page int64) (*db.PaginatedResult[model.Message], error)
	UpdateContent(ctx context.Context, id primitive.ObjectID, content string, editedAt time.Time) error
	MarkRead(ctx context.Context, id primitive.ObjectID, readAt time.Time) (bool, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type messageRepository struct {
	con       *mongo.Database
	mongoRepo *db.Repository[model.Message]
	logger    *zap.Logger
}

func NewMessageRepository(con *mongo.Database, repo *db.Repository[model.Message], logger *zap.Logger) MessageRepository {
	return &messageRepository{
		con:       con,
		mongoRepo: repo,
		logger:    logger,
	}
}

// -----------------------------------------------------------------------------
// InsertMessage
// -----------------------------------------------------------------------------

func (m *messageRepository) InsertMessage(ctx context.Context, msg *model.Message) (primitive.ObjectID, error) {
	if msg == nil {
		return primitive.NilObjectID, ErrInvalidMessage
	}
	if msg.ChatID.IsZero() {
		return primitive.NilObjectID, ErrInvalidChatID
	}

	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			if err := waitForRetry(ctx, attempt); err != nil {
				return primitive.NilObjectID, err
			}
		}

		result, err := m.mongoRepo.Create(ctx, *msg)
		if err == nil {
			insertedID := primitive.NilObjectID
			if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
				insertedID = oid
			}

			m.logger.Info("message inserted",
				zap.String("message_id", insertedID.Hex()),
				zap.String("chat_id", msg.ChatID.Hex()),
				zap.Int("attempt", attempt+1),
			)
			return insertedID, nil
		}

		lastErr = err

		if !isRetryableError(err) {
			break
		}

		m.logger.Warn("insert attempt failed, retrying",
			zap.Error(err),
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", maxRetries),
		)
	}

	m.logger.Error("failed to insert message after all retries",
		zap.Error(lastErr),
		zap.String("chat_id", msg.ChatID.Hex()),
	)

	return primitive.NilObjectID, fmt.Errorf("insert message failed: %w", lastErr)
}

// FindByID returns nil (no error) when the message does not exist.
func (m *messageRepository) FindByID(ctx context.Context, id string) (*model.Message, error) {
	if id == "" {
		return nil, ErrInvalidID
	}

	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	msg, err := m.mongoRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) || errors.Is(err, primitive.ErrInvalidHex) {
			return nil, nil
		}
		m.logger.Error("failed to fetch message", zap.String("message_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to fetch message: %w", err)
	}
	return msg, nil
}

// -----------------------------------------------------------------------------
// FilterByChat
// -----------------------------------------------------------------------------

func (m *messageRepository) FilterByChat(ctx context.Context, chatID string, page int64) (*db.PaginatedResult[model.Message], error) {
	if chatID == "" {
		return nil, ErrInvalidChatID
	}

	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	filter := db.NewFilter().ObjectID("chat_id", chatID).Build()

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			if err := waitForRetry(ctx, attempt); err != nil {
				return nil, err
			}
			m.logger.Warn("retrying message filter",
				zap.String("chat_id", chatID),
				zap.Int("attempt", attempt+1),
			)
		}

		result, err := m.mongoRepo.FindWithPagination(ctx, filter, db.PaginationParams{
			Page:     page,
			PageSize: 15,
			SortBy:   "created_at",
			SortDesc: false,
		})

		if err == nil {
			m.logger.Debug("messages filtered",
				zap.String("chat_id", chatID),
				zap.Int("count", len(result.Data)),
				zap.Int64("total", result.Total),
			)
			return result, nil
		}

		lastErr = err

		if !isRetryableError(err) {
			break
		}
	}

	m.logger.Error("failed to filter messages", zap.Error(lastErr), zap.String("chat_id", chatID))
	return nil, fmt.Errorf("filter messages failed: %w", lastErr)
}

// UpdateContent rewrites the message body and stamps edited_at. Sender
// authorization happens in the service layer before this is called.
func (m *messageRepository) UpdateContent(ctx context.Context, id primitive.ObjectID, content string, editedAt time.Time) error {
	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	result, err := m.mongoRepo.Update(ctx, bson.M{"_id": id}, bson.M{
		"content":    content,
		"edited_at":  editedAt,
		"updated_at": editedAt,
	})
	if err != nil {
		m.logger.Error("failed to update message content", zap.String("message_id", id.Hex()), zap.Error(err))
		return fmt.Errorf("failed to update message content: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkRead flips the read flag exactly once. Returns false when the message
// was already read (nothing mutated, read_at untouched).
func (m *messageRepository) MarkRead(ctx context.Context, id primitive.ObjectID, readAt time.Time) (bool, error) {
	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	result, err := m.mongoRepo.Update(ctx, bson.M{"_id": id, "read": false}, bson.M{
		"read":    true,
		"read_at": readAt,
	})
	if err != nil {
		m.logger.Error("failed to mark message read", zap.String("message_id", id.Hex()), zap.Error(err))
		return false, fmt.Errorf("failed to mark message read: %w", err)
	}
	return result.MatchedCount > 0, nil
}

func (m *messageRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	result, err := m.mongoRepo.Delete(ctx, bson.M{"_id": id})
	if err != nil {
		m.logger.Error("failed to delete message", zap.String("message_id", id.Hex()), zap.Error(err))
		return fmt.Errorf("failed to delete message: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}

	m.logger.Info("message deleted", zap.String("message_id", id.Hex()))
	return nil
}
