package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Session is a server-side login record. The bearer token handed to clients
// references it by ID; deleting the record invalidates the token.
type Session struct {
	ID               string             `json:"id"`
	UserID           primitive.ObjectID `json:"userId"`
	RefreshToken     string             `json:"refreshToken"`
	CreatedAt        time.Time          `json:"createdAt"`
	ExpiresAt        time.Time          `json:"expiresAt"`
	RefreshExpiresAt time.Time          `json:"refreshExpiresAt"`
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

func (s *Session) RefreshExpired(now time.Time) bool {
	return !now.Before(s.RefreshExpiresAt)
}
