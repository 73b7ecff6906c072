package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FileAttachment describes a file hosted by the media collaborator.
// A message may carry an attachment instead of (or alongside) text.
type FileAttachment struct {
	PublicID string `json:"publicId" bson:"public_id"`
	URL      string `json:"url" bson:"url"`
	Type     string `json:"type" bson:"type"`
}

// Message represents a chat message in MongoDB. ChatID and SenderID are
// immutable once created; Content and EditedAt change only through the
// original sender.
type Message struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ChatID    primitive.ObjectID `json:"chatId" bson:"chat_id"`
	SenderID  primitive.ObjectID `json:"senderId" bson:"sender_id"`
	Content   string             `json:"content" bson:"content"`
	File      *FileAttachment    `json:"file,omitempty" bson:"file,omitempty"`
	Read      bool               `json:"read" bson:"read"`
	ReadAt    *time.Time         `json:"readAt,omitempty" bson:"read_at,omitempty"`
	EditedAt  *time.Time         `json:"editedAt,omitempty" bson:"edited_at,omitempty"`
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updated_at"`
}

// ErrorPayload represents an error response sent to a client via WebSocket.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
