package service

import (
	"alcyxob/fitness-social/internal/domain"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Login, browse the catalog, plan Monday, share it, see it in the feed.
func TestScenario_PlanAndShare(t *testing.T) {
	env := newTestEnv(t)
	env.seedCatalog(t, 10)
	ctx := context.Background()

	env.verifier.add("google-id-token", &domain.GoogleIdentity{
		Subject:       "108",
		Email:         "ada@example.com",
		EmailVerified: true,
		GivenName:     "Ada",
	})
	login, err := env.authService.ExchangeGoogleToken(ctx, "google-id-token", ProfileNames{LastName: "Lovelace"})
	require.NoError(t, err)
	require.NotEmpty(t, login.SessionToken)

	principal, err := env.authService.Authenticate(ctx, login.SessionToken)
	require.NoError(t, err)
	userID := principal.UserID

	exercises, err := env.exerciseService.ListExercises(ctx, domain.ExerciseFilter{})
	require.NoError(t, err)
	require.NotEmpty(t, exercises)
	fifth := exercises[4]

	_, err = env.scheduleService.AddExercise(ctx, userID, "Monday", fifth.ID)
	require.NoError(t, err)
	monday, err := env.scheduleService.GetExercises(ctx, userID, "Monday")
	require.NoError(t, err)

	count := 0
	for _, ex := range monday {
		if ex.ID == fifth.ID {
			count++
		}
	}
	assert.Equal(t, 1, count)

	day, err := env.scheduleService.GetDay(ctx, userID, "Monday")
	require.NoError(t, err)
	created, err := env.postService.CreatePost(ctx, userID, CreatePostInput{
		Title:       "Monday",
		Description: "first week",
		Workout:     day,
	})
	require.NoError(t, err)

	feed, err := env.postService.ListPosts(ctx, userID, 0)
	require.NoError(t, err)
	require.NotEmpty(t, feed)
	assert.Equal(t, created.ID, feed[0].ID)
	assert.Equal(t, 0, feed[0].Likes)
	assert.Equal(t, "ada", feed[0].AuthorUsername)
}
