package memory

import (
	"alcyxob/fitness-social/internal/domain"
	"alcyxob/fitness-social/internal/repository"
	"context"
	"sync"
	"time"
)

// ExerciseIndexRepository is a mutex-guarded id map with a next-index counter.
type ExerciseIndexRepository struct {
	mu           sync.Mutex
	byOriginal   map[string]domain.ExerciseIndex
	bySequential map[int]string
	nextIndex    int
}

var _ repository.ExerciseIndexRepository = (*ExerciseIndexRepository)(nil)

func NewExerciseIndexRepository() *ExerciseIndexRepository {
	return &ExerciseIndexRepository{
		byOriginal:   map[string]domain.ExerciseIndex{},
		bySequential: map[int]string{},
		nextIndex:    domain.FirstSequentialID,
	}
}

func (r *ExerciseIndexRepository) GetByOriginalID(_ context.Context, originalID string) (*domain.ExerciseIndex, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.byOriginal[originalID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &entry, nil
}

func (r *ExerciseIndexRepository) GetBySequentialID(_ context.Context, sequentialID int) (*domain.ExerciseIndex, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	originalID, ok := r.bySequential[sequentialID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	entry := r.byOriginal[originalID]
	return &entry, nil
}

func (r *ExerciseIndexRepository) Allocate(_ context.Context, originalID string) (*domain.ExerciseIndex, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry, ok := r.byOriginal[originalID]; ok {
		return &entry, nil
	}
	entry := domain.ExerciseIndex{
		OriginalID:   originalID,
		SequentialID: r.nextIndex,
		AssignedAt:   time.Now().UTC(),
	}
	r.byOriginal[originalID] = entry
	r.bySequential[entry.SequentialID] = originalID
	r.nextIndex++
	return &entry, nil
}

// NextIndex is the value the next allocation will receive.
func (r *ExerciseIndexRepository) NextIndex() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.nextIndex
}
