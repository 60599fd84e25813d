// internal/domain/exercise.go
package domain

import (
	"time"
)

// Exercise represents a single exercise definition in the catalog.
// ID is the catalog's natural string id (e.g. "0001"), not a Mongo ObjectID.
type Exercise struct {
	ID               string   `bson:"_id" json:"id"`
	Name             string   `bson:"name" json:"name"`
	BodyPart         string   `bson:"bodyPart" json:"bodyPart"`   // e.g., "chest", "upper legs"
	Equipment        string   `bson:"equipment" json:"equipment"` // e.g., "barbell", "body weight"
	Target           string   `bson:"target" json:"target"`       // Primary target muscle
	SecondaryMuscles []string `bson:"secondaryMuscles" json:"secondaryMuscles"`
	Instructions     []string `bson:"instructions" json:"instructions"`

	// SourceGifURL is the GIF link shipped with the imported dataset, if any.
	// Clients should use the sequential-id GIF route instead.
	SourceGifURL string `bson:"sourceGifUrl,omitempty" json:"-"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// ExerciseFilter narrows catalog listings. Empty fields match everything.
type ExerciseFilter struct {
	BodyPart  string
	Target    string
	Equipment string
}

// IsEmpty reports whether the filter matches the whole catalog.
func (f ExerciseFilter) IsEmpty() bool {
	return f.BodyPart == "" && f.Target == "" && f.Equipment == ""
}

// Matches reports whether the exercise passes the filter.
func (f ExerciseFilter) Matches(ex *Exercise) bool {
	if f.BodyPart != "" && f.BodyPart != ex.BodyPart {
		return false
	}
	if f.Target != "" && f.Target != ex.Target {
		return false
	}
	if f.Equipment != "" && f.Equipment != ex.Equipment {
		return false
	}
	return true
}

// Normalize makes nil slices empty so they encode as [] rather than null.
func (ex *Exercise) Normalize() {
	if ex.SecondaryMuscles == nil {
		ex.SecondaryMuscles = []string{}
	}
	if ex.Instructions == nil {
		ex.Instructions = []string{}
	}
}

// ExerciseIndex maps an exercise's original id to its sequential id.
// Entries are only ever added; a sequential id is never reassigned.
type ExerciseIndex struct {
	OriginalID   string    `bson:"_id" json:"originalId"`
	SequentialID int       `bson:"sequentialId" json:"sequentialId"`
	AssignedAt   time.Time `bson:"assignedAt" json:"assignedAt"`
}

// FirstSequentialID is the first value handed out by a fresh index map.
const FirstSequentialID = 1
