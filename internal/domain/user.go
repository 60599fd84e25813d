package domain

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents an account, created either through Google sign-in or
// email/password registration.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username" json:"username"` // Should be unique
	Email        string             `bson:"email" json:"email"`       // Should be unique
	FirstName    string             `bson:"firstName" json:"firstName"`
	LastName     string             `bson:"lastName" json:"lastName"`
	PictureURL   string             `bson:"pictureUrl,omitempty" json:"pictureUrl,omitempty"`
	PasswordHash string             `bson:"passwordHash,omitempty" json:"-"` // Empty for Google-only accounts
	GoogleID     string             `bson:"googleId,omitempty" json:"-"`     // "sub" claim of the Google ID token
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
	LastLoginAt  *time.Time         `bson:"lastLoginAt,omitempty" json:"lastLoginAt,omitempty"`
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// HasPassword reports whether the account can log in with a password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// UsernameFromEmail derives the default username: the email's local part.
func UsernameFromEmail(email string) string {
	local, _, found := strings.Cut(email, "@")
	if !found || local == "" {
		return email
	}
	return local
}

// GoogleIdentity is the verified subset of a Google ID token's claims.
type GoogleIdentity struct {
	Subject       string
	Email         string
	EmailVerified bool
	GivenName     string
	FamilyName    string
	PictureURL    string
}
