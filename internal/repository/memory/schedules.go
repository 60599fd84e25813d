package memory

import (
	"alcyxob/fitness-social/internal/domain"
	"alcyxob/fitness-social/internal/repository"
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ScheduleRepository struct {
	mu        sync.Mutex
	schedules map[primitive.ObjectID]*domain.WeeklySchedule
}

var _ repository.ScheduleRepository = (*ScheduleRepository)(nil)

func NewScheduleRepository() *ScheduleRepository {
	return &ScheduleRepository{schedules: map[primitive.ObjectID]*domain.WeeklySchedule{}}
}

func (r *ScheduleRepository) Get(_ context.Context, userID primitive.ObjectID) (*domain.WeeklySchedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.schedules[userID]
	if !ok {
		return domain.NewWeeklySchedule(userID), nil
	}

	out := &domain.WeeklySchedule{
		UserID:    stored.UserID,
		Days:      make(map[domain.Weekday]domain.WorkoutDay, len(stored.Days)),
		UpdatedAt: stored.UpdatedAt,
	}
	for d, day := range stored.Days {
		out.Days[d] = domain.WorkoutDay{Type: day.Type, Exercises: copyExercises(day.Exercises)}
	}
	return out, nil
}

func (r *ScheduleRepository) SetDayType(_ context.Context, userID primitive.ObjectID, day domain.Weekday, workoutType string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	schedule := r.scheduleLocked(userID)
	d := schedule.Days[day]
	d.Type = workoutType
	schedule.Days[day] = d
	schedule.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *ScheduleRepository) AddExercise(_ context.Context, userID primitive.ObjectID, day domain.Weekday, exercise domain.Exercise) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	schedule := r.scheduleLocked(userID)
	d := schedule.Days[day]
	exercise.Normalize()
	added := d.AddExercise(copyExercise(exercise))
	if added {
		schedule.Days[day] = d
		schedule.UpdatedAt = time.Now().UTC()
	}
	return added, nil
}

func (r *ScheduleRepository) RemoveExercise(_ context.Context, userID primitive.ObjectID, day domain.Weekday, exerciseID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	schedule, ok := r.schedules[userID]
	if !ok {
		return false, nil
	}
	d := schedule.Days[day]
	removed := d.RemoveExercise(exerciseID)
	if removed {
		schedule.Days[day] = d
		schedule.UpdatedAt = time.Now().UTC()
	}
	return removed, nil
}

func (r *ScheduleRepository) scheduleLocked(userID primitive.ObjectID) *domain.WeeklySchedule {
	schedule, ok := r.schedules[userID]
	if !ok {
		schedule = domain.NewWeeklySchedule(userID)
		r.schedules[userID] = schedule
	}
	return schedule
}
