package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a user document in MongoDB. The presence fields
// (is_online, last_seen) are written only by presence reconciliation;
// profile fields belong to the account collaborator.
type User struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Username  string             `json:"username" bson:"username"`
	Email     string             `json:"email" bson:"email"`
	Avatar    string             `json:"avatar" bson:"avatar"`
	IsOnline  bool               `json:"isOnline" bson:"is_online"`
	LastSeen  *time.Time         `json:"lastSeen" bson:"last_seen,omitempty"`
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt *time.Time         `json:"updatedAt" bson:"updated_at,omitempty"`
}

// PresenceStatus is the online/last-seen projection returned by REST
// status queries.
type PresenceStatus struct {
	IsOnline bool       `json:"isOnline"`
	LastSeen *time.Time `json:"lastSeen"`
}
