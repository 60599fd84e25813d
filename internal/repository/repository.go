package repository

import (
	"alcyxob/fitness-social/internal/domain"
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound  = RepositoryError("not found")
	ErrDuplicate = RepositoryError("duplicate key")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	// UpdateProfile overwrites names, picture, Google id and last login time.
	UpdateProfile(ctx context.Context, user *domain.User) error
}

// ExerciseRepository defines the interface for the exercise catalog.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) error
	// Upsert inserts or replaces an exercise by its id.
	Upsert(ctx context.Context, exercise *domain.Exercise) error
	GetByID(ctx context.Context, id string) (*domain.Exercise, error)
	List(ctx context.Context, filter domain.ExerciseFilter) ([]domain.Exercise, error)
}

// ExerciseIndexRepository stores the original-id to sequential-id map.
type ExerciseIndexRepository interface {
	GetByOriginalID(ctx context.Context, originalID string) (*domain.ExerciseIndex, error)
	GetBySequentialID(ctx context.Context, sequentialID int) (*domain.ExerciseIndex, error)
	// Allocate assigns the next sequential id to originalID. If a mapping
	// already exists it is returned unchanged.
	Allocate(ctx context.Context, originalID string) (*domain.ExerciseIndex, error)
}

// ScheduleRepository stores one WeeklySchedule per user.
// Writes are last-writer-wins per (user, day).
type ScheduleRepository interface {
	// Get never returns ErrNotFound; a user without a schedule gets an empty one.
	Get(ctx context.Context, userID primitive.ObjectID) (*domain.WeeklySchedule, error)
	SetDayType(ctx context.Context, userID primitive.ObjectID, day domain.Weekday, workoutType string) error
	// AddExercise reports false when the exercise id was already on that day.
	AddExercise(ctx context.Context, userID primitive.ObjectID, day domain.Weekday, exercise domain.Exercise) (bool, error)
	// RemoveExercise reports false when the exercise id was not on that day.
	RemoveExercise(ctx context.Context, userID primitive.ObjectID, day domain.Weekday, exerciseID string) (bool, error)
}

// WorkoutRepository defines the interface for saved workouts.
type WorkoutRepository interface {
	Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error)
	GetByCreator(ctx context.Context, userID primitive.ObjectID) ([]domain.Workout, error)
	// Update replaces the editable fields of a workout owned by workout.CreatedBy.
	Update(ctx context.Context, workout *domain.Workout) error
	Delete(ctx context.Context, id, creatorID primitive.ObjectID) error // Ensure user owns the workout
}

// PostRepository defines the interface for feed posts.
type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Post, error)
	// List returns posts newest first. limit <= 0 means no limit.
	List(ctx context.Context, limit int64) ([]domain.Post, error)
	// AddLike and RemoveLike are set operations: repeating them is a no-op.
	AddLike(ctx context.Context, postID, userID primitive.ObjectID) error
	RemoveLike(ctx context.Context, postID, userID primitive.ObjectID) error
	Delete(ctx context.Context, id, authorID primitive.ObjectID) error
}

// SessionRepository is the session table.
type SessionRepository interface {
	Save(ctx context.Context, session *domain.Session) error
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	GetByRefreshToken(ctx context.Context, refreshToken string) (*domain.Session, error)
	Delete(ctx context.Context, sessionID string) error
}
