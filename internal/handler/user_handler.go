package handler

import (
	"Chattr/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

type UserHandler interface {
	ListUsers(c *gin.Context)
	GetOnlineStatus(c *gin.Context)
}

type userHandler struct {
	service service.ChatService
}

func NewUserHandler(service service.ChatService) UserHandler {
	return &userHandler{
		service: service,
	}
}

func (h *userHandler) ListUsers(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

// GetOnlineStatus returns the durable presence projection, which may lag the
// live registry briefly while reconciliation writes complete.
func (h *userHandler) GetOnlineStatus(c *gin.Context) {
	status, err := h.service.OnlineStatus(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": status})
}
