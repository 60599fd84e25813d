package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post is a shared WorkoutDay in the social feed.
// Only the like set changes after creation.
type Post struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	AuthorID       primitive.ObjectID   `bson:"authorId" json:"authorId"`
	AuthorUsername string               `bson:"authorUsername" json:"username"` // Denormalized for feed rendering
	Title          string               `bson:"title" json:"title"`
	Description    string               `bson:"description,omitempty" json:"description,omitempty"`
	Workout        WorkoutDay           `bson:"workout" json:"workout"`
	LikedBy        []primitive.ObjectID `bson:"likedBy" json:"-"`
	CreatedAt      time.Time            `bson:"createdAt" json:"createdAt"`
}

// Likes is the number of distinct users who liked the post.
func (p *Post) Likes() int {
	return len(p.LikedBy)
}

// LikedByUser reports whether userID is in the like set.
func (p *Post) LikedByUser(userID primitive.ObjectID) bool {
	if userID == primitive.NilObjectID {
		return false
	}
	for _, id := range p.LikedBy {
		if id == userID {
			return true
		}
	}
	return false
}
