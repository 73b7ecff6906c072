package handler

import (
	"Chattr/internal/middleware"
	"Chattr/internal/model"
	"Chattr/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

type MessageHandler interface {
	SendMessage(c *gin.Context)
	EditMessage(c *gin.Context)
	DeleteMessage(c *gin.Context)
	MarkRead(c *gin.Context)
}

type messageHandler struct {
	service service.ChatService
}

func NewMessageHandler(service service.ChatService) MessageHandler {
	return &messageHandler{
		service: service,
	}
}

type sendMessageRequest struct {
	ChatID  string                `json:"chatId" binding:"required"`
	Content string                `json:"content"`
	File    *model.FileAttachment `json:"file"`
}

// SendMessage persists a message and triggers the new-message fan-out. The
// file descriptor, when present, comes from the media upload collaborator.
func (h *messageHandler) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "chatId is required"})
		return
	}

	msg, err := h.service.SendMessage(c.Request.Context(), service.SendMessageInput{
		ChatID:     req.ChatID,
		SenderID:   middleware.UserID(c),
		Content:    req.Content,
		File:       req.File,
		OriginConn: originConn(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": msg})
}

type editMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

func (h *messageHandler) EditMessage(c *gin.Context) {
	var req editMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content is required"})
		return
	}

	msg, err := h.service.EditMessage(c.Request.Context(), service.EditMessageInput{
		MessageID: c.Param("messageId"),
		ActorID:   middleware.UserID(c),
		Content:   req.Content,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": msg})
}

func (h *messageHandler) DeleteMessage(c *gin.Context) {
	err := h.service.DeleteMessage(c.Request.Context(), service.DeleteMessageInput{
		MessageID: c.Param("messageId"),
		ActorID:   middleware.UserID(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (h *messageHandler) MarkRead(c *gin.Context) {
	msg, err := h.service.MarkMessageRead(c.Request.Context(), service.MarkReadInput{
		MessageID:  c.Param("messageId"),
		ReaderID:   middleware.UserID(c),
		OriginConn: originConn(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": msg})
}
