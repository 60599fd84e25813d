package memory

import (
	"alcyxob/fitness-social/internal/domain"
	"alcyxob/fitness-social/internal/repository"
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type WorkoutRepository struct {
	mu       sync.RWMutex
	workouts map[primitive.ObjectID]domain.Workout
}

var _ repository.WorkoutRepository = (*WorkoutRepository)(nil)

func NewWorkoutRepository() *WorkoutRepository {
	return &WorkoutRepository{workouts: map[primitive.ObjectID]domain.Workout{}}
}

func (r *WorkoutRepository) Create(_ context.Context, workout *domain.Workout) (primitive.ObjectID, error) {
	if workout.CreatedBy == primitive.NilObjectID || workout.Name == "" {
		return primitive.NilObjectID, errors.New("workout requires createdBy and name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	workout.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	workout.CreatedAt = now
	workout.UpdatedAt = now
	stored := *workout
	stored.Day.Exercises = copyExercises(workout.Day.Exercises)
	r.workouts[workout.ID] = stored
	return workout.ID, nil
}

func (r *WorkoutRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.workouts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	w.Day.Exercises = copyExercises(w.Day.Exercises)
	return &w, nil
}

func (r *WorkoutRepository) GetByCreator(_ context.Context, userID primitive.ObjectID) ([]domain.Workout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.Workout{}
	for _, w := range r.workouts {
		if w.CreatedBy == userID {
			w.Day.Exercises = copyExercises(w.Day.Exercises)
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *WorkoutRepository) Update(_ context.Context, workout *domain.Workout) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.workouts[workout.ID]
	if !ok || stored.CreatedBy != workout.CreatedBy {
		return repository.ErrNotFound
	}
	stored.Name = workout.Name
	stored.Description = workout.Description
	stored.Duration = workout.Duration
	stored.Day.Type = workout.Day.Type
	stored.Day.Exercises = copyExercises(workout.Day.Exercises)
	stored.UpdatedAt = time.Now().UTC()
	r.workouts[workout.ID] = stored
	return nil
}

func (r *WorkoutRepository) Delete(_ context.Context, id, creatorID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.workouts[id]
	if !ok || w.CreatedBy != creatorID {
		return repository.ErrNotFound
	}
	delete(r.workouts, id)
	return nil
}
