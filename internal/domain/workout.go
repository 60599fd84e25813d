package domain

import (
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Weekday is one of the seven canonical day names, "Monday" through "Sunday".
type Weekday string

const (
	Monday    Weekday = "Monday"
	Tuesday   Weekday = "Tuesday"
	Wednesday Weekday = "Wednesday"
	Thursday  Weekday = "Thursday"
	Friday    Weekday = "Friday"
	Saturday  Weekday = "Saturday"
	Sunday    Weekday = "Sunday"
)

// Weekdays lists the days in calendar order, starting with Monday.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// RestDayType is the label of a day nobody has planned.
const RestDayType = "Rest"

var ErrInvalidWeekday = errors.New("invalid weekday")

// ParseWeekday accepts a day name in any letter case.
func ParseWeekday(s string) (Weekday, error) {
	s = strings.TrimSpace(s)
	for _, d := range Weekdays {
		if strings.EqualFold(s, string(d)) {
			return d, nil
		}
	}
	return "", ErrInvalidWeekday
}

// WorkoutDay is a labeled, ordered set of exercises. No exercise id appears twice.
type WorkoutDay struct {
	Type      string     `bson:"type" json:"type"` // e.g., "Push", "Legs", "Custom"
	Exercises []Exercise `bson:"exercises" json:"exercises"`
}

func (w *WorkoutDay) HasExercise(exerciseID string) bool {
	for _, ex := range w.Exercises {
		if ex.ID == exerciseID {
			return true
		}
	}
	return false
}

// AddExercise appends ex unless its id is already present.
// It reports whether the list changed.
func (w *WorkoutDay) AddExercise(ex Exercise) bool {
	if w.HasExercise(ex.ID) {
		return false
	}
	w.Exercises = append(w.Exercises, ex)
	return true
}

// RemoveExercise drops the exercise with the given id, keeping the order of the rest.
func (w *WorkoutDay) RemoveExercise(exerciseID string) bool {
	for i, ex := range w.Exercises {
		if ex.ID == exerciseID {
			w.Exercises = append(w.Exercises[:i], w.Exercises[i+1:]...)
			return true
		}
	}
	return false
}

// Dedupe removes repeated exercise ids, keeping first occurrences.
func (w *WorkoutDay) Dedupe() {
	seen := make(map[string]struct{}, len(w.Exercises))
	out := w.Exercises[:0]
	for _, ex := range w.Exercises {
		if _, ok := seen[ex.ID]; ok {
			continue
		}
		seen[ex.ID] = struct{}{}
		out = append(out, ex)
	}
	w.Exercises = out
}

func (w *WorkoutDay) IsEmpty() bool {
	return len(w.Exercises) == 0
}

// WeeklySchedule is a user's plan, keyed by weekday.
type WeeklySchedule struct {
	UserID    primitive.ObjectID     `bson:"_id" json:"userId"`
	Days      map[Weekday]WorkoutDay `bson:"days" json:"days"`
	UpdatedAt time.Time              `bson:"updatedAt" json:"updatedAt"`
}

// NewWeeklySchedule returns an empty schedule for the user.
func NewWeeklySchedule(userID primitive.ObjectID) *WeeklySchedule {
	return &WeeklySchedule{UserID: userID, Days: map[Weekday]WorkoutDay{}}
}

// Day returns the plan for d. Unset labels read as "Rest".
func (s *WeeklySchedule) Day(d Weekday) WorkoutDay {
	day := s.Days[d]
	if day.Type == "" {
		day.Type = RestDayType
	}
	if day.Exercises == nil {
		day.Exercises = []Exercise{}
	}
	return day
}

// Types returns the label for each of the seven days.
func (s *WeeklySchedule) Types() map[Weekday]string {
	types := make(map[Weekday]string, len(Weekdays))
	for _, d := range Weekdays {
		types[d] = s.Day(d).Type
	}
	return types
}

// Workout is a saved, named workout a user can reuse or share.
type Workout struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedBy   primitive.ObjectID `bson:"createdBy" json:"createdBy"`
	Name        string             `bson:"name" json:"name"` // e.g., "Heavy Push Day"
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Duration    int                `bson:"duration" json:"duration"` // Minutes
	Day         WorkoutDay         `bson:"day" json:"day"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
