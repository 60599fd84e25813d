package service

import (
	"alcyxob/fitness-social/internal/domain"
	"alcyxob/fitness-social/internal/repository"
	"context"
	"errors"
	"strings"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ScheduleService manages each user's weekly plan. Writes are
// last-writer-wins per (user, day); there is no merge of concurrent edits.
type ScheduleService interface {
	// GetSchedule returns the labels of all seven days. Unset days are "Rest".
	GetSchedule(ctx context.Context, userID primitive.ObjectID) (map[domain.Weekday]string, error)
	SetDayType(ctx context.Context, userID primitive.ObjectID, day, workoutType string) (*domain.WorkoutDay, error)
	GetExercises(ctx context.Context, userID primitive.ObjectID, day string) ([]domain.Exercise, error)
	GetDay(ctx context.Context, userID primitive.ObjectID, day string) (*domain.WorkoutDay, error)
	// AddExercise is a no-op when the exercise is already planned that day.
	AddExercise(ctx context.Context, userID primitive.ObjectID, day, exerciseID string) ([]domain.Exercise, error)
	// RemoveExercise is a no-op when the exercise is not planned that day.
	RemoveExercise(ctx context.Context, userID primitive.ObjectID, day, exerciseID string) ([]domain.Exercise, error)
}

type scheduleService struct {
	scheduleRepo    repository.ScheduleRepository
	exerciseService ExerciseService
}

func NewScheduleService(scheduleRepo repository.ScheduleRepository, exerciseService ExerciseService) ScheduleService {
	return &scheduleService{
		scheduleRepo:    scheduleRepo,
		exerciseService: exerciseService,
	}
}

func (s *scheduleService) GetSchedule(ctx context.Context, userID primitive.ObjectID) (map[domain.Weekday]string, error) {
	schedule, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return schedule.Types(), nil
}

func (s *scheduleService) SetDayType(ctx context.Context, userID primitive.ObjectID, day, workoutType string) (*domain.WorkoutDay, error) {
	weekday, err := parseDay(day)
	if err != nil {
		return nil, err
	}
	// Labels are free-form and stored as given.
	if workoutType == "" {
		return nil, validationError("workout type is required")
	}

	if err := s.scheduleRepo.SetDayType(context.WithoutCancel(ctx), userID, weekday, workoutType); err != nil {
		return nil, upstreamError("schedule store", err)
	}
	log.Debugf("user %s set %s to %s", userID.Hex(), weekday, workoutType)
	return s.day(ctx, userID, weekday)
}

func (s *scheduleService) GetExercises(ctx context.Context, userID primitive.ObjectID, day string) ([]domain.Exercise, error) {
	workoutDay, err := s.GetDay(ctx, userID, day)
	if err != nil {
		return nil, err
	}
	return workoutDay.Exercises, nil
}

func (s *scheduleService) GetDay(ctx context.Context, userID primitive.ObjectID, day string) (*domain.WorkoutDay, error) {
	weekday, err := parseDay(day)
	if err != nil {
		return nil, err
	}
	return s.day(ctx, userID, weekday)
}

func (s *scheduleService) AddExercise(ctx context.Context, userID primitive.ObjectID, day, exerciseID string) ([]domain.Exercise, error) {
	weekday, err := parseDay(day)
	if err != nil {
		return nil, err
	}
	exercise, err := s.exerciseService.GetExercise(ctx, exerciseID)
	if err != nil {
		return nil, err
	}

	added, err := s.scheduleRepo.AddExercise(context.WithoutCancel(ctx), userID, weekday, *exercise)
	if err != nil {
		return nil, upstreamError("schedule store", err)
	}
	if !added {
		log.Debugf("exercise %s already planned for user %s on %s", exerciseID, userID.Hex(), weekday)
	}
	return s.GetExercises(ctx, userID, string(weekday))
}

func (s *scheduleService) RemoveExercise(ctx context.Context, userID primitive.ObjectID, day, exerciseID string) ([]domain.Exercise, error) {
	weekday, err := parseDay(day)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(exerciseID) == "" {
		return nil, validationError("exercise id is required")
	}
	if _, err := s.scheduleRepo.RemoveExercise(context.WithoutCancel(ctx), userID, weekday, exerciseID); err != nil {
		return nil, upstreamError("schedule store", err)
	}
	return s.GetExercises(ctx, userID, string(weekday))
}

func (s *scheduleService) day(ctx context.Context, userID primitive.ObjectID, weekday domain.Weekday) (*domain.WorkoutDay, error) {
	schedule, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	workoutDay := schedule.Day(weekday)
	return &workoutDay, nil
}

func (s *scheduleService) load(ctx context.Context, userID primitive.ObjectID) (*domain.WeeklySchedule, error) {
	if userID == primitive.NilObjectID {
		return nil, ErrUnauthorized
	}
	schedule, err := s.scheduleRepo.Get(ctx, userID)
	if err != nil {
		return nil, upstreamError("schedule store", err)
	}
	return schedule, nil
}

func parseDay(day string) (domain.Weekday, error) {
	weekday, err := domain.ParseWeekday(day)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidWeekday) {
			return "", validationError("%q is not a weekday", day)
		}
		return "", err
	}
	return weekday, nil
}
