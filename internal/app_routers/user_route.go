package approuters

import (
	"Chattr/internal/configuration"
	"Chattr/internal/middleware"

	"github.com/gin-gonic/gin"
)

func UserRouters(router *gin.Engine, container *configuration.Container) {
	userRoute := router.Group("/api/users")
	userRoute.Use(middleware.RequireAuth(container.Config.Auth.JwtSecret))
	{
		userRoute.GET("", container.UserHandler.ListUsers)
		userRoute.GET("/:userId/status", container.UserHandler.GetOnlineStatus)
	}
}
