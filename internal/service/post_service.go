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

const (
	maxPostTitleLength = 120
	defaultFeedLimit   = 50
	maxFeedLimit       = 200
)

// PostView is a post as seen by one viewer.
type PostView struct {
	domain.Post
	Likes       int  `json:"likes"`
	LikedByUser bool `json:"likedByUser"`
}

func newPostView(post *domain.Post, viewerID primitive.ObjectID) *PostView {
	if post.Workout.Exercises == nil {
		post.Workout.Exercises = []domain.Exercise{}
	}
	return &PostView{
		Post:        *post,
		Likes:       post.Likes(),
		LikedByUser: post.LikedByUser(viewerID),
	}
}

// CreatePostInput carries the shared workout. The first source that is set
// wins: an inline Workout, then a saved WorkoutID, then the author's
// schedule for Day.
type CreatePostInput struct {
	Title       string
	Description string
	Workout     *domain.WorkoutDay
	WorkoutID   *primitive.ObjectID
	Day         string
}

type PostService interface {
	CreatePost(ctx context.Context, userID primitive.ObjectID, input CreatePostInput) (*PostView, error)
	// ListPosts returns the feed newest first, with likedByUser relative to viewerID.
	// viewerID may be the nil id for anonymous readers.
	ListPosts(ctx context.Context, viewerID primitive.ObjectID, limit int) ([]PostView, error)
	GetPost(ctx context.Context, viewerID, postID primitive.ObjectID) (*PostView, error)
	// Like and Unlike are idempotent: the like count is the number of distinct likers.
	Like(ctx context.Context, postID, userID primitive.ObjectID) (*PostView, error)
	Unlike(ctx context.Context, postID, userID primitive.ObjectID) (*PostView, error)
	DeletePost(ctx context.Context, userID, postID primitive.ObjectID) error
}

type postService struct {
	postRepo        repository.PostRepository
	userRepo        repository.UserRepository
	workoutService  WorkoutService
	scheduleService ScheduleService
}

func NewPostService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	workoutService WorkoutService,
	scheduleService ScheduleService,
) PostService {
	return &postService{
		postRepo:        postRepo,
		userRepo:        userRepo,
		workoutService:  workoutService,
		scheduleService: scheduleService,
	}
}

func (s *postService) CreatePost(ctx context.Context, userID primitive.ObjectID, input CreatePostInput) (*PostView, error) {
	if userID == primitive.NilObjectID {
		return nil, ErrUnauthorized
	}

	workout, err := s.sharedWorkout(ctx, userID, input)
	if err != nil {
		return nil, err
	}
	if workout.IsEmpty() {
		return nil, ErrEmptyWorkout
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, validationError("title is required")
	}
	if len(title) > maxPostTitleLength {
		return nil, validationError("title is longer than %d characters", maxPostTitleLength)
	}

	author, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, upstreamError("user store", err)
	}

	post := &domain.Post{
		AuthorID:       userID,
		AuthorUsername: author.Username,
		Title:          title,
		Description:    strings.TrimSpace(input.Description),
		Workout:        *workout,
		LikedBy:        []primitive.ObjectID{},
	}
	postID, err := s.postRepo.Create(context.WithoutCancel(ctx), post)
	if err != nil {
		return nil, upstreamError("post store", err)
	}
	post.ID = postID
	log.Debugf("user %s shared post %s", author.Username, postID.Hex())
	return newPostView(post, userID), nil
}

// sharedWorkout returns a copy of the workout the post will embed,
// with repeated exercises removed.
func (s *postService) sharedWorkout(ctx context.Context, userID primitive.ObjectID, input CreatePostInput) (*domain.WorkoutDay, error) {
	var workout domain.WorkoutDay
	switch {
	case input.Workout != nil:
		workout.Type = input.Workout.Type
		workout.Exercises = make([]domain.Exercise, 0, len(input.Workout.Exercises))
		for _, ex := range input.Workout.Exercises {
			if strings.TrimSpace(ex.ID) == "" {
				return nil, validationError("workout exercises need an id")
			}
			ex.Normalize()
			workout.Exercises = append(workout.Exercises, ex)
		}
	case input.WorkoutID != nil:
		saved, err := s.workoutService.GetWorkout(ctx, userID, *input.WorkoutID)
		if err != nil {
			return nil, err
		}
		workout = saved.Day
	case input.Day != "":
		day, err := s.scheduleService.GetDay(ctx, userID, input.Day)
		if err != nil {
			return nil, err
		}
		workout = *day
	default:
		return &domain.WorkoutDay{Exercises: []domain.Exercise{}}, nil
	}

	workout.Dedupe()
	workout.Type = strings.TrimSpace(workout.Type)
	if workout.Type == "" {
		workout.Type = "Custom"
	}
	return &workout, nil
}

func (s *postService) ListPosts(ctx context.Context, viewerID primitive.ObjectID, limit int) ([]PostView, error) {
	if limit <= 0 {
		limit = defaultFeedLimit
	}
	if limit > maxFeedLimit {
		limit = maxFeedLimit
	}
	posts, err := s.postRepo.List(ctx, int64(limit))
	if err != nil {
		return nil, upstreamError("post store", err)
	}
	views := make([]PostView, 0, len(posts))
	for i := range posts {
		views = append(views, *newPostView(&posts[i], viewerID))
	}
	return views, nil
}

func (s *postService) GetPost(ctx context.Context, viewerID, postID primitive.ObjectID) (*PostView, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, upstreamError("post store", err)
	}
	return newPostView(post, viewerID), nil
}

func (s *postService) Like(ctx context.Context, postID, userID primitive.ObjectID) (*PostView, error) {
	return s.updateLike(ctx, postID, userID, s.postRepo.AddLike)
}

func (s *postService) Unlike(ctx context.Context, postID, userID primitive.ObjectID) (*PostView, error) {
	return s.updateLike(ctx, postID, userID, s.postRepo.RemoveLike)
}

func (s *postService) updateLike(
	ctx context.Context,
	postID, userID primitive.ObjectID,
	apply func(ctx context.Context, postID, userID primitive.ObjectID) error,
) (*PostView, error) {
	if userID == primitive.NilObjectID {
		return nil, ErrUnauthorized
	}
	if err := apply(context.WithoutCancel(ctx), postID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, upstreamError("post store", err)
	}
	return s.GetPost(ctx, userID, postID)
}

func (s *postService) DeletePost(ctx context.Context, userID, postID primitive.ObjectID) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPostNotFound
		}
		return upstreamError("post store", err)
	}
	if post.AuthorID != userID {
		return ErrForbidden
	}
	if err := s.postRepo.Delete(context.WithoutCancel(ctx), postID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPostNotFound
		}
		return upstreamError("post store", err)
	}
	return nil
}
