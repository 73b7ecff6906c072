package approuters

import (
	"Chattr/internal/configuration"
	"Chattr/internal/middleware"

	"github.com/gin-gonic/gin"
)

func ChatRouters(router *gin.Engine, container *configuration.Container) {
	chatRoute := router.Group("/api/chats")
	chatRoute.Use(middleware.RequireAuth(container.Config.Auth.JwtSecret))
	{
		chatRoute.POST("", container.ChatHandler.AccessChat)
		chatRoute.GET("", container.ChatHandler.ListChats)
		chatRoute.GET("/:chatId/messages", container.ChatHandler.ListMessages)
	}
}
