package approuters

import (
	"Chattr/internal/configuration"
	"Chattr/internal/middleware"

	"github.com/gin-gonic/gin"
)

func MessageRouters(router *gin.Engine, container *configuration.Container) {
	messageRoute := router.Group("/api/messages")
	messageRoute.Use(middleware.RequireAuth(container.Config.Auth.JwtSecret))
	{
		messageRoute.POST("", container.MessageHandler.SendMessage)
		messageRoute.PUT("/:messageId", container.MessageHandler.EditMessage)
		messageRoute.DELETE("/:messageId", container.MessageHandler.DeleteMessage)
		messageRoute.PATCH("/:messageId/read", container.MessageHandler.MarkRead)
	}
}
