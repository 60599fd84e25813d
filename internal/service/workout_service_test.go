package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestWorkoutService_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	env.seedCatalog(t, 3)
	ctx := context.Background()
	owner, stranger := primitive.NewObjectID(), primitive.NewObjectID()

	workout, err := env.workoutService.CreateWorkout(ctx, owner, SaveWorkoutInput{
		Name:        " Heavy Push Day ",
		Duration:    60,
		ExerciseIDs: []string{"0002", "0001", "0002"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Heavy Push Day", workout.Name)
	assert.Equal(t, "Custom", workout.Day.Type)
	require.Len(t, workout.Day.Exercises, 2)
	assert.Equal(t, "0002", workout.Day.Exercises[0].ID)

	got, err := env.workoutService.GetWorkout(ctx, owner, workout.ID)
	require.NoError(t, err)
	assert.Equal(t, workout.ID, got.ID)

	_, err = env.workoutService.GetWorkout(ctx, stranger, workout.ID)
	assert.ErrorIs(t, err, ErrWorkoutNotFound)

	list, err := env.workoutService.ListWorkouts(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	assert.ErrorIs(t, env.workoutService.DeleteWorkout(ctx, stranger, workout.ID), ErrWorkoutNotFound)
	require.NoError(t, env.workoutService.DeleteWorkout(ctx, owner, workout.ID))
	_, err = env.workoutService.GetWorkout(ctx, owner, workout.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWorkoutService_Validation(t *testing.T) {
	env := newTestEnv(t)
	env.seedCatalog(t, 1)
	ctx := context.Background()
	owner := primitive.NewObjectID()

	_, err := env.workoutService.CreateWorkout(ctx, owner, SaveWorkoutInput{ExerciseIDs: []string{"0001"}})
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = env.workoutService.CreateWorkout(ctx, owner, SaveWorkoutInput{Name: "empty"})
	assert.ErrorIs(t, err, ErrEmptyWorkout)

	_, err = env.workoutService.CreateWorkout(ctx, owner, SaveWorkoutInput{Name: "ghost", ExerciseIDs: []string{"9999"}})
	assert.ErrorIs(t, err, ErrExerciseNotFound)
}

func TestWorkoutService_UpdateWorkout(t *testing.T) {
	env := newTestEnv(t)
	env.seedCatalog(t, 4)
	ctx := context.Background()
	owner, stranger := primitive.NewObjectID(), primitive.NewObjectID()

	workout, err := env.workoutService.CreateWorkout(ctx, owner, SaveWorkoutInput{
		Name:        "Push",
		Duration:    45,
		Type:        "Push",
		ExerciseIDs: []string{"0001"},
	})
	require.NoError(t, err)

	updated, err := env.workoutService.UpdateWorkout(ctx, owner, workout.ID, SaveWorkoutInput{
		Name:        "Push v2",
		Description: "more volume",
		Duration:    70,
		Type:        "Push",
		ExerciseIDs: []string{"0003", "0004", "0003"},
	})
	require.NoError(t, err)
	assert.Equal(t, workout.ID, updated.ID)
	assert.Equal(t, "Push v2", updated.Name)
	assert.Equal(t, "more volume", updated.Description)
	assert.Equal(t, 70, updated.Duration)
	assert.Equal(t, workout.CreatedAt, updated.CreatedAt)
	require.Len(t, updated.Day.Exercises, 2)
	assert.Equal(t, "0003", updated.Day.Exercises[0].ID)
	assert.Equal(t, "0004", updated.Day.Exercises[1].ID)

	// Strangers cannot edit, and do not learn that the workout exists.
	_, err = env.workoutService.UpdateWorkout(ctx, stranger, workout.ID, SaveWorkoutInput{Name: "mine now", ExerciseIDs: []string{"0001"}})
	assert.ErrorIs(t, err, ErrWorkoutNotFound)
	_, err = env.workoutService.UpdateWorkout(ctx, stranger, workout.ID, SaveWorkoutInput{})
	assert.ErrorIs(t, err, ErrWorkoutNotFound)

	_, err = env.workoutService.UpdateWorkout(ctx, owner, workout.ID, SaveWorkoutInput{Name: "empty"})
	assert.ErrorIs(t, err, ErrEmptyWorkout)
	_, err = env.workoutService.UpdateWorkout(ctx, owner, primitive.NewObjectID(), SaveWorkoutInput{Name: "x", ExerciseIDs: []string{"0001"}})
	assert.ErrorIs(t, err, ErrWorkoutNotFound)

	got, err := env.workoutService.GetWorkout(ctx, owner, workout.ID)
	require.NoError(t, err)
	assert.Equal(t, "Push v2", got.Name)
}
