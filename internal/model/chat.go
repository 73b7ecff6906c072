package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Chat is a two-member conversation. Members holds exactly two user ids,
// order-independent; UnreadCounts carries one entry per member keyed by
// the member's hex id.
type Chat struct {
	ID           primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Members      []primitive.ObjectID `json:"members" bson:"members"`
	LastMessage  *primitive.ObjectID  `json:"lastMessage" bson:"last_message,omitempty"`
	UnreadCounts map[string]int64     `json:"unreadCounts" bson:"unread_counts"`
	CreatedAt    time.Time            `json:"createdAt" bson:"created_at"`
	UpdatedAt    time.Time            `json:"updatedAt" bson:"updated_at"`
}

// HasMember reports whether userID is one of the chat's two members.
func (c *Chat) HasMember(userID primitive.ObjectID) bool {
	for _, m := range c.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// OtherMember returns the member that is not userID. The second return is
// false when userID is not a member at all.
func (c *Chat) OtherMember(userID primitive.ObjectID) (primitive.ObjectID, bool) {
	if !c.HasMember(userID) {
		return primitive.NilObjectID, false
	}
	for _, m := range c.Members {
		if m != userID {
			return m, true
		}
	}
	return primitive.NilObjectID, false
}
