package service

import (
	"alcyxob/fitness-social/internal/domain"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestPostService_EmptyWorkoutCreatesNothing(t *testing.T) {
	env := newTestEnv(t)
	author := env.login(t, "ada@example.com").User
	ctx := context.Background()

	inputs := []CreatePostInput{
		{Title: "nothing", Workout: &domain.WorkoutDay{Type: "Push", Exercises: []domain.Exercise{}}},
		{Title: "nil list", Workout: &domain.WorkoutDay{Type: "Push"}},
		{Title: "empty day", Day: "Monday"},
		{Title: "no source"},
		{Title: "", Workout: &domain.WorkoutDay{}},
	}
	for _, input := range inputs {
		_, err := env.postService.CreatePost(ctx, author.ID, input)
		assert.ErrorIs(t, err, ErrEmptyWorkout, input.Title)
	}

	posts, err := env.postService.ListPosts(ctx, author.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestPostService_CreatePost_Inline(t *testing.T) {
	env := newTestEnv(t)
	exercises := env.seedCatalog(t, 3)
	author := env.login(t, "ada@example.com").User
	ctx := context.Background()

	post, err := env.postService.CreatePost(ctx, author.ID, CreatePostInput{
		Title:       "  Leg day  ",
		Description: "heavy",
		Workout: &domain.WorkoutDay{
			Type:      "Legs",
			Exercises: []domain.Exercise{exercises[0], exercises[1], exercises[0]},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Leg day", post.Title)
	assert.Equal(t, "ada", post.AuthorUsername)
	assert.Equal(t, 0, post.Likes)
	assert.False(t, post.LikedByUser)
	assert.Len(t, post.Workout.Exercises, 2)
	assert.Equal(t, "Legs", post.Workout.Type)

	_, err = env.postService.CreatePost(ctx, author.ID, CreatePostInput{
		Workout: &domain.WorkoutDay{Exercises: exercises[:1]},
	})
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestPostService_CreatePost_FromScheduleAndSavedWorkout(t *testing.T) {
	env := newTestEnv(t)
	env.seedCatalog(t, 4)
	author := env.login(t, "ada@example.com").User
	ctx := context.Background()

	_, err := env.scheduleService.SetDayType(ctx, author.ID, "Wednesday", "Pull")
	require.NoError(t, err)
	_, err = env.scheduleService.AddExercise(ctx, author.ID, "Wednesday", "0002")
	require.NoError(t, err)

	fromDay, err := env.postService.CreatePost(ctx, author.ID, CreatePostInput{Title: "Pull day", Day: "wednesday"})
	require.NoError(t, err)
	assert.Equal(t, "Pull", fromDay.Workout.Type)
	require.Len(t, fromDay.Workout.Exercises, 1)
	assert.Equal(t, "0002", fromDay.Workout.Exercises[0].ID)

	saved, err := env.workoutService.CreateWorkout(ctx, author.ID, SaveWorkoutInput{
		Name:        "Full body",
		Type:        "Full",
		Duration:    45,
		ExerciseIDs: []string{"0001", "0003", "0001"},
	})
	require.NoError(t, err)

	fromSaved, err := env.postService.CreatePost(ctx, author.ID, CreatePostInput{Title: "Full", WorkoutID: &saved.ID})
	require.NoError(t, err)
	assert.Len(t, fromSaved.Workout.Exercises, 2)

	other := env.login(t, "bob@example.com").User
	_, err = env.postService.CreatePost(ctx, other.ID, CreatePostInput{Title: "stolen", WorkoutID: &saved.ID})
	assert.ErrorIs(t, err, ErrWorkoutNotFound)
}

func TestPostService_LikeIsASet(t *testing.T) {
	env := newTestEnv(t)
	exercises := env.seedCatalog(t, 1)
	author := env.login(t, "ada@example.com").User
	fan := env.login(t, "bob@example.com").User
	ctx := context.Background()

	post, err := env.postService.CreatePost(ctx, author.ID, CreatePostInput{
		Title:   "Push",
		Workout: &domain.WorkoutDay{Type: "Push", Exercises: exercises},
	})
	require.NoError(t, err)

	// unlike without a like is a no-op
	view, err := env.postService.Unlike(ctx, post.ID, fan.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, view.Likes)

	view, err = env.postService.Like(ctx, post.ID, fan.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Likes)
	assert.True(t, view.LikedByUser)

	view, err = env.postService.Like(ctx, post.ID, fan.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Likes)

	view, err = env.postService.Like(ctx, post.ID, author.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, view.Likes)

	view, err = env.postService.Unlike(ctx, post.ID, fan.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Likes)
	assert.False(t, view.LikedByUser)

	asAuthor, err := env.postService.GetPost(ctx, author.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, asAuthor.LikedByUser)

	anonymous, err := env.postService.GetPost(ctx, primitive.NilObjectID, post.ID)
	require.NoError(t, err)
	assert.False(t, anonymous.LikedByUser)
	assert.Equal(t, 1, anonymous.Likes)

	_, err = env.postService.Like(ctx, primitive.NewObjectID(), fan.ID)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestPostService_FeedNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	exercises := env.seedCatalog(t, 1)
	author := env.login(t, "ada@example.com").User
	ctx := context.Background()

	titles := []string{"first", "second", "third"}
	for _, title := range titles {
		_, err := env.postService.CreatePost(ctx, author.ID, CreatePostInput{
			Title:   title,
			Workout: &domain.WorkoutDay{Exercises: exercises},
		})
		require.NoError(t, err)
	}

	feed, err := env.postService.ListPosts(ctx, primitive.NilObjectID, 0)
	require.NoError(t, err)
	require.Len(t, feed, 3)
	assert.Equal(t, "third", feed[0].Title)
	assert.Equal(t, "first", feed[2].Title)

	limited, err := env.postService.ListPosts(ctx, primitive.NilObjectID, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestPostService_DeletePost(t *testing.T) {
	env := newTestEnv(t)
	exercises := env.seedCatalog(t, 1)
	author := env.login(t, "ada@example.com").User
	other := env.login(t, "bob@example.com").User
	ctx := context.Background()

	post, err := env.postService.CreatePost(ctx, author.ID, CreatePostInput{
		Title:   "mine",
		Workout: &domain.WorkoutDay{Exercises: exercises},
	})
	require.NoError(t, err)

	assert.ErrorIs(t, env.postService.DeletePost(ctx, other.ID, post.ID), ErrForbidden)
	require.NoError(t, env.postService.DeletePost(ctx, author.ID, post.ID))
	assert.ErrorIs(t, env.postService.DeletePost(ctx, author.ID, post.ID), ErrPostNotFound)

	_, err = env.postService.GetPost(ctx, author.ID, post.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
