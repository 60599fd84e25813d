package service

import (
	"alcyxob/fitness-social/internal/domain"
	"alcyxob/fitness-social/internal/identity"
	"alcyxob/fitness-social/internal/repository/memory"
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const testJWTSecret = "test-secret"

type fakeVerifier struct {
	mu         sync.Mutex
	identities map[string]*domain.GoogleIdentity
	// failures makes the next n calls fail with identity.ErrUnavailable.
	failures int
	calls    int
}

func newFakeVerifier() *fakeVerifier {
	return &fakeVerifier{identities: map[string]*domain.GoogleIdentity{}}
}

func (f *fakeVerifier) add(token string, id *domain.GoogleIdentity) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.identities[token] = id
}

func (f *fakeVerifier) Verify(_ context.Context, idToken string) (*domain.GoogleIdentity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failures > 0 {
		f.failures--
		return nil, fmt.Errorf("%w: connection reset", identity.ErrUnavailable)
	}
	id, ok := f.identities[idToken]
	if !ok {
		return nil, fmt.Errorf("%w: unknown token", identity.ErrRejected)
	}
	copied := *id
	return &copied, nil
}

type fakeStorage struct {
	mu      sync.Mutex
	uploads map[string]string
}

func (f *fakeStorage) GeneratePresignedDownloadURL(_ context.Context, objectKey string, _ time.Duration) (string, error) {
	return "https://gifs.example.com/" + objectKey + "?X-Amz-Signature=test", nil
}

func (f *fakeStorage) UploadObject(_ context.Context, objectKey, contentType string, body io.Reader) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploads == nil {
		f.uploads = map[string]string{}
	}
	_, _ = io.Copy(io.Discard, body)
	f.uploads[objectKey] = contentType
	return nil
}

type testEnv struct {
	users     *memory.UserRepository
	exercises *memory.ExerciseRepository
	index     *memory.ExerciseIndexRepository
	schedules *memory.ScheduleRepository
	workouts  *memory.WorkoutRepository
	posts     *memory.PostRepository
	sessions  *memory.SessionRepository
	verifier  *fakeVerifier
	storage   *fakeStorage
	now       time.Time

	exerciseService ExerciseService
	scheduleService ScheduleService
	workoutService  WorkoutService
	postService     PostService
	authService     AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		users:     memory.NewUserRepository(),
		exercises: memory.NewExerciseRepository(),
		index:     memory.NewExerciseIndexRepository(),
		schedules: memory.NewScheduleRepository(),
		workouts:  memory.NewWorkoutRepository(),
		posts:     memory.NewPostRepository(),
		sessions:  memory.NewSessionRepository(),
		verifier:  newFakeVerifier(),
		storage:   &fakeStorage{},
		now:       time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC),
	}

	env.exerciseService = NewExerciseService(env.exercises, env.index, env.storage, ExerciseServiceConfig{
		GifPrefix: "gifs/",
		Retry:     NoRetry(),
	})
	env.scheduleService = NewScheduleService(env.schedules, env.exerciseService)
	env.workoutService = NewWorkoutService(env.workouts, env.exerciseService)
	env.postService = NewPostService(env.posts, env.users, env.workoutService, env.scheduleService)
	env.authService = NewAuthService(env.users, env.sessions, env.verifier, AuthServiceConfig{
		JWTSecret:  testJWTSecret,
		SessionTTL: time.Hour,
		RefreshTTL: 24 * time.Hour,
		Retry:      NoRetry(),
		Now:        func() time.Time { return env.now },
	})
	return env
}

// seedCatalog stores exercises "0001".."000n".
func (env *testEnv) seedCatalog(t *testing.T, n int) []domain.Exercise {
	t.Helper()
	exercises := make([]domain.Exercise, 0, n)
	bodyParts := []string{"chest", "back", "upper legs"}
	for i := 1; i <= n; i++ {
		ex := domain.Exercise{
			ID:               fmt.Sprintf("%04d", i),
			Name:             fmt.Sprintf("exercise %d", i),
			BodyPart:         bodyParts[i%len(bodyParts)],
			Equipment:        "barbell",
			Target:           "pectorals",
			SecondaryMuscles: []string{"triceps"},
			Instructions:     []string{"lift", "lower"},
		}
		require.NoError(t, env.exercises.Create(context.Background(), &ex))
		exercises = append(exercises, ex)
	}
	return exercises
}

// login signs a verified Google user in and returns the session.
func (env *testEnv) login(t *testing.T, email string) *LoginResult {
	t.Helper()
	token := "google-token-" + email
	env.verifier.add(token, &domain.GoogleIdentity{
		Subject:       "sub-" + email,
		Email:         email,
		EmailVerified: true,
		GivenName:     "Test",
		FamilyName:    "User",
	})
	result, err := env.authService.ExchangeGoogleToken(context.Background(), token, ProfileNames{})
	require.NoError(t, err)
	return result
}
