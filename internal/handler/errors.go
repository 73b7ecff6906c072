package handler

import (
	"Chattr/internal/service"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// respondError maps the service error taxonomy onto HTTP status codes:
// not-found -> 404, authorization -> 403, bad input -> 400, rest -> 500.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrChatNotFound),
		errors.Is(err, service.ErrMessageNotFound),
		errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotChatMember),
		errors.Is(err, service.ErrNotMessageSender):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidUserID),
		errors.Is(err, service.ErrSelfChat),
		errors.Is(err, service.ErrEmptyMessage):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// originConn returns the caller's own socket connection id, when the client
// supplies it to be excluded from echo on REST-triggered broadcasts.
func originConn(c *gin.Context) string {
	return c.GetHeader("X-Connection-ID")
}
