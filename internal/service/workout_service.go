package service

import (
	"alcyxob/fitness-social/internal/domain"
	"alcyxob/fitness-social/internal/repository"
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SaveWorkoutInput describes a saved workout. Exercises are referenced by
// catalog id and resolved when the workout is saved.
type SaveWorkoutInput struct {
	Name        string
	Description string
	Duration    int // Minutes
	Type        string
	ExerciseIDs []string
}

// WorkoutService manages saved, reusable workouts.
type WorkoutService interface {
	CreateWorkout(ctx context.Context, userID primitive.ObjectID, input SaveWorkoutInput) (*domain.Workout, error)
	GetWorkout(ctx context.Context, userID, workoutID primitive.ObjectID) (*domain.Workout, error)
	ListWorkouts(ctx context.Context, userID primitive.ObjectID) ([]domain.Workout, error)
	// UpdateWorkout replaces a saved workout's contents. Only its creator may
	// change it.
	UpdateWorkout(ctx context.Context, userID, workoutID primitive.ObjectID, input SaveWorkoutInput) (*domain.Workout, error)
	DeleteWorkout(ctx context.Context, userID, workoutID primitive.ObjectID) error
}

type workoutService struct {
	workoutRepo     repository.WorkoutRepository
	exerciseService ExerciseService
}

func NewWorkoutService(workoutRepo repository.WorkoutRepository, exerciseService ExerciseService) WorkoutService {
	return &workoutService{
		workoutRepo:     workoutRepo,
		exerciseService: exerciseService,
	}
}

func (s *workoutService) CreateWorkout(ctx context.Context, userID primitive.ObjectID, input SaveWorkoutInput) (*domain.Workout, error) {
	if userID == primitive.NilObjectID {
		return nil, ErrUnauthorized
	}
	workout, err := s.buildWorkout(ctx, userID, input)
	if err != nil {
		return nil, err
	}
	id, err := s.workoutRepo.Create(context.WithoutCancel(ctx), workout)
	if err != nil {
		return nil, upstreamError("workout store", err)
	}
	workout.ID = id
	return workout, nil
}

// GetWorkout returns a saved workout. Other users' workouts read as not found.
func (s *workoutService) GetWorkout(ctx context.Context, userID, workoutID primitive.ObjectID) (*domain.Workout, error) {
	workout, err := s.workoutRepo.GetByID(ctx, workoutID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, upstreamError("workout store", err)
	}
	if workout.CreatedBy != userID {
		return nil, ErrWorkoutNotFound
	}
	return workout, nil
}

func (s *workoutService) ListWorkouts(ctx context.Context, userID primitive.ObjectID) ([]domain.Workout, error) {
	if userID == primitive.NilObjectID {
		return nil, ErrUnauthorized
	}
	workouts, err := s.workoutRepo.GetByCreator(ctx, userID)
	if err != nil {
		return nil, upstreamError("workout store", err)
	}
	return workouts, nil
}

func (s *workoutService) UpdateWorkout(ctx context.Context, userID, workoutID primitive.ObjectID, input SaveWorkoutInput) (*domain.Workout, error) {
	if userID == primitive.NilObjectID {
		return nil, ErrUnauthorized
	}
	// Ownership first, so a stranger learns nothing from validation errors.
	if _, err := s.GetWorkout(ctx, userID, workoutID); err != nil {
		return nil, err
	}
	workout, err := s.buildWorkout(ctx, userID, input)
	if err != nil {
		return nil, err
	}
	workout.ID = workoutID

	ctx = context.WithoutCancel(ctx)
	if err := s.workoutRepo.Update(ctx, workout); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, upstreamError("workout store", err)
	}
	return s.GetWorkout(ctx, userID, workoutID)
}

func (s *workoutService) DeleteWorkout(ctx context.Context, userID, workoutID primitive.ObjectID) error {
	err := s.workoutRepo.Delete(context.WithoutCancel(ctx), workoutID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrWorkoutNotFound
		}
		return upstreamError("workout store", err)
	}
	return nil
}

// buildWorkout validates input and resolves its exercises from the catalog.
func (s *workoutService) buildWorkout(ctx context.Context, userID primitive.ObjectID, input SaveWorkoutInput) (*domain.Workout, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, validationError("workout name is required")
	}
	if input.Duration < 0 {
		return nil, validationError("duration cannot be negative")
	}
	if len(input.ExerciseIDs) == 0 {
		return nil, ErrEmptyWorkout
	}

	day, err := resolveWorkoutDay(ctx, s.exerciseService, input.Type, input.ExerciseIDs)
	if err != nil {
		return nil, err
	}
	return &domain.Workout{
		CreatedBy:   userID,
		Name:        input.Name,
		Description: strings.TrimSpace(input.Description),
		Duration:    input.Duration,
		Day:         *day,
	}, nil
}

// resolveWorkoutDay looks each id up in the catalog and drops repeats,
// keeping the first occurrence.
func resolveWorkoutDay(ctx context.Context, exerciseService ExerciseService, workoutType string, exerciseIDs []string) (*domain.WorkoutDay, error) {
	day := &domain.WorkoutDay{
		Type:      strings.TrimSpace(workoutType),
		Exercises: make([]domain.Exercise, 0, len(exerciseIDs)),
	}
	if day.Type == "" {
		day.Type = "Custom"
	}
	for _, id := range exerciseIDs {
		if day.HasExercise(id) {
			continue
		}
		exercise, err := exerciseService.GetExercise(ctx, id)
		if err != nil {
			return nil, err
		}
		day.AddExercise(*exercise)
	}
	return day, nil
}
