package memory

import (
	"alcyxob/fitness-social/internal/domain"
	"alcyxob/fitness-social/internal/repository"
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

type ExerciseRepository struct {
	mu        sync.RWMutex
	exercises map[string]domain.Exercise
	// failWith makes every call return the error, to simulate an outage.
	failWith error
}

var _ repository.ExerciseRepository = (*ExerciseRepository)(nil)

func NewExerciseRepository() *ExerciseRepository {
	return &ExerciseRepository{exercises: map[string]domain.Exercise{}}
}

// FailWith makes subsequent calls fail with err; nil restores normal behavior.
func (r *ExerciseRepository) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failWith = err
}

func (r *ExerciseRepository) Create(_ context.Context, exercise *domain.Exercise) error {
	if exercise.ID == "" || exercise.Name == "" {
		return errors.New("exercise id and name are required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	if _, ok := r.exercises[exercise.ID]; ok {
		return repository.ErrDuplicate
	}
	now := time.Now().UTC()
	exercise.CreatedAt = now
	exercise.UpdatedAt = now
	exercise.Normalize()
	r.exercises[exercise.ID] = copyExercise(*exercise)
	return nil
}

func (r *ExerciseRepository) Upsert(_ context.Context, exercise *domain.Exercise) error {
	if exercise.ID == "" || exercise.Name == "" {
		return errors.New("exercise id and name are required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	now := time.Now().UTC()
	exercise.CreatedAt = now
	if existing, ok := r.exercises[exercise.ID]; ok {
		exercise.CreatedAt = existing.CreatedAt
	}
	exercise.UpdatedAt = now
	exercise.Normalize()
	r.exercises[exercise.ID] = copyExercise(*exercise)
	return nil
}

func (r *ExerciseRepository) GetByID(_ context.Context, id string) (*domain.Exercise, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	ex, ok := r.exercises[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	ex = copyExercise(ex)
	return &ex, nil
}

func (r *ExerciseRepository) List(_ context.Context, filter domain.ExerciseFilter) ([]domain.Exercise, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	out := []domain.Exercise{}
	for _, ex := range r.exercises {
		if filter.Matches(&ex) {
			out = append(out, copyExercise(ex))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func copyExercise(ex domain.Exercise) domain.Exercise {
	ex.SecondaryMuscles = append([]string{}, ex.SecondaryMuscles...)
	ex.Instructions = append([]string{}, ex.Instructions...)
	return ex
}

func copyExercises(in []domain.Exercise) []domain.Exercise {
	out := make([]domain.Exercise, len(in))
	for i := range in {
		out[i] = copyExercise(in[i])
	}
	return out
}
