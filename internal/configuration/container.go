package configuration

import (
	"Chattr/internal/db"
	"Chattr/internal/handler"
	"Chattr/internal/hub"
	"Chattr/internal/model"
	"Chattr/internal/repo"
	"Chattr/internal/service"
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Container struct {
	ChatHandler    handler.ChatHandler
	MessageHandler handler.MessageHandler
	UserHandler    handler.UserHandler
	Hub            *hub.Hub
	Config         Config
	Logger         *zap.Logger

	// private - for cleanup
	mongoClient *mongo.Database
}

func BuildContainer() (*Container, error) {
	configPath := os.Getenv("CHATTR_CONFIG")
	if configPath == "" {
		configPath = "../../shared/config.dev.json"
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	con, err := db.OpenConnection(config.Mongo.Uri, config.Mongo.Database)
	if err != nil {
		return nil, err
	}

	logger, _ := zap.NewProduction()

	userStore := db.NewRepository[model.User](con, config.Mongo.UsersCollection)
	chatStore := db.NewRepository[model.Chat](con, config.Mongo.ChatsCollection)
	messageStore := db.NewRepository[model.Message](con, config.Mongo.MessagesCollection)

	userRepo := repo.NewUserRepository(con, userStore, logger)
	chatRepo := repo.NewChatRepository(con, chatStore, logger)
	messageRepo := repo.NewMessageRepository(con, messageStore, logger)

	chatService := service.NewChatService(chatRepo, messageRepo, userRepo, logger)

	// The hub delivers inbound socket events to the service, and the
	// service fans durable writes back out through the hub.
	Hub := hub.NewHub(chatService, logger)
	chatService.SetBroadcaster(Hub)

	return &Container{
		ChatHandler:    handler.NewChatHandler(chatService),
		MessageHandler: handler.NewMessageHandler(chatService),
		UserHandler:    handler.NewUserHandler(chatService),
		Hub:            Hub,
		Config:         *config,
		Logger:         logger,
		mongoClient:    con,
	}, nil
}

// Close gracefully shuts down all connections
func (c *Container) Close() error {
	// Stop the hub first (closes all WebSocket connections)
	if c.Hub != nil {
		c.Hub.Stop()
	}

	// Sync logger
	if c.Logger != nil {
		_ = c.Logger.Sync()
	}

	// Close MongoDB connection pool
	if c.mongoClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.mongoClient.Client().Disconnect(ctx); err != nil {
			return fmt.Errorf("failed to close MongoDB connection: %w", err)
		}
	}

	return nil
}
