package repo

import (
	"Chattr/internal/db"
	"Chattr/internal/model"
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// UserRepository reads user documents and owns the durable presence fields.
type UserRepository interface {
	GetUser(ctx context.Context, id string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	GetPresence(ctx context.Context, id string) (*model.PresenceStatus, error)
	SetOnline(ctx context.Context, id string) error
	SetOffline(ctx context.Context, id string, lastSeen time.Time) error
}

type userRepository struct {
	con       *mongo.Database
	mongoRepo *db.Repository[model.User]
	logger    *zap.Logger
}

func NewUserRepository(con *mongo.Database, repo *db.Repository[model.User], logger *zap.Logger) UserRepository {
	return &userRepository{
		con:       con,
		mongoRepo: repo,
		logger:    logger,
	}
}

func (r *userRepository) GetUser(ctx context.Context, id string) (*model.User, error) {
	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	user, err := r.mongoRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return user, nil
}

func (r *userRepository) ListUsers(ctx context.Context) ([]model.User, error) {
	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	users, err := r.mongoRepo.FindAll(ctx, db.Empty())
	if err != nil {
		r.logger.Error("failed to list users", zap.Error(err))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (r *userRepository) GetPresence(ctx context.Context, id string) (*model.PresenceStatus, error) {
	user, err := r.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}
	return &model.PresenceStatus{IsOnline: user.IsOnline, LastSeen: user.LastSeen}, nil
}

func (r *userRepository) SetOnline(ctx context.Context, id string) error {
	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	result, err := r.mongoRepo.UpdateByID(ctx, id, bson.M{"is_online": true})
	if err != nil {
		r.logger.Error("failed to mark user online", zap.String("user_id", id), zap.Error(err))
		return fmt.Errorf("failed to mark user online: %w", err)
	}
	if result.MatchedCount == 0 {
		r.logger.Warn("presence update matched no user", zap.String("user_id", id))
	}
	return nil
}

func (r *userRepository) SetOffline(ctx context.Context, id string, lastSeen time.Time) error {
	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	_, err := r.mongoRepo.UpdateByID(ctx, id, bson.M{
		"is_online": false,
		"last_seen": lastSeen,
	})
	if err != nil {
		r.logger.Error("failed to mark user offline", zap.String("user_id", id), zap.Error(err))
		return fmt.Errorf("failed to mark user offline: %w", err)
	}
	return nil
}
