package api

import (
	"alcyxob/fitness-social/internal/domain"
	"alcyxob/fitness-social/internal/service"
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PostHandler serves the social feed.
type PostHandler struct {
	postService service.PostService
}

func NewPostHandler(postService service.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

// --- DTOs ---

type WorkoutDayRequest struct {
	Type      string            `json:"type"`
	Exercises []domain.Exercise `json:"exercises"`
}

// CreatePostRequest shares a workout. Set one of workout, workoutId or day;
// when several are set the first in that order is used.
type CreatePostRequest struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Workout     *WorkoutDayRequest `json:"workout"`
	WorkoutID   string             `json:"workoutId"`
	Day         string             `json:"day"`
}

type PostResponse struct {
	ID          string             `json:"id"`
	AuthorID    string             `json:"authorId"`
	Username    string             `json:"username"`
	Title       string             `json:"title"`
	Description string             `json:"description,omitempty"`
	Workout     WorkoutDayResponse `json:"workout"`
	Likes       int                `json:"likes"`
	LikedByUser bool               `json:"likedByUser"`
	CreatedAt   time.Time          `json:"createdAt"`
}

func MapPostToResponse(view *service.PostView) PostResponse {
	if view == nil {
		return PostResponse{}
	}
	return PostResponse{
		ID:          view.ID.Hex(),
		AuthorID:    view.AuthorID.Hex(),
		Username:    view.AuthorUsername,
		Title:       view.Title,
		Description: view.Description,
		Workout:     MapWorkoutDayToResponse("", &view.Workout),
		Likes:       view.Likes,
		LikedByUser: view.LikedByUser,
		CreatedAt:   view.CreatedAt,
	}
}

// --- Handler Methods ---

// ListPosts godoc
// @Summary Get the feed, newest first
// @Description likedByUser is relative to the caller; anonymous readers always see false.
// @Tags Posts
// @Produce json
// @Param limit query int false "Maximum number of posts"
// @Success 200 {array} PostResponse
// @Failure 400 {object} ErrorResponse "Invalid limit"
// @Router /posts/ [get]
func (h *PostHandler) ListPosts(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			abortWithValidationError(c, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	views, err := h.postService.ListPosts(c.Request.Context(), optionalUserID(c), limit)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	responses := make([]PostResponse, len(views))
	for i := range views {
		responses[i] = MapPostToResponse(&views[i])
	}
	c.JSON(http.StatusOK, responses)
}

// CreatePost godoc
// @Summary Share a workout
// @Tags Posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param post body CreatePostRequest true "Post details"
// @Success 201 {object} PostResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 422 {object} ErrorResponse "The shared workout has no exercises"
// @Router /posts/ [post]
func (h *PostHandler) CreatePost(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithValidationError(c, err.Error())
		return
	}

	input := service.CreatePostInput{
		Title:       req.Title,
		Description: req.Description,
		Day:         req.Day,
	}
	if req.Workout != nil {
		input.Workout = &domain.WorkoutDay{Type: req.Workout.Type, Exercises: req.Workout.Exercises}
	}
	if req.WorkoutID != "" {
		workoutID, err := primitive.ObjectIDFromHex(req.WorkoutID)
		if err != nil {
			abortWithValidationError(c, "workoutId is not a valid id")
			return
		}
		input.WorkoutID = &workoutID
	}

	view, err := h.postService.CreatePost(c.Request.Context(), userID, input)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapPostToResponse(view))
}

// GetPost godoc
// @Summary Get one post
// @Tags Posts
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} PostResponse
// @Failure 404 {object} ErrorResponse "Post not found"
// @Router /posts/{id}/ [get]
func (h *PostHandler) GetPost(c *gin.Context) {
	postID, ok := parseObjectIDParam(c, "id", service.ErrPostNotFound)
	if !ok {
		return
	}
	view, err := h.postService.GetPost(c.Request.Context(), optionalUserID(c), postID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapPostToResponse(view))
}

// DeletePost godoc
// @Summary Delete one of the caller's posts
// @Tags Posts
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 204
// @Failure 403 {object} ErrorResponse "Not the author"
// @Failure 404 {object} ErrorResponse "Post not found"
// @Router /posts/{id}/ [delete]
func (h *PostHandler) DeletePost(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	postID, ok := parseObjectIDParam(c, "id", service.ErrPostNotFound)
	if !ok {
		return
	}
	if err := h.postService.DeletePost(c.Request.Context(), userID, postID); err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// LikePost godoc
// @Summary Like a post
// @Description Liking twice counts once.
// @Tags Posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} PostResponse
// @Failure 404 {object} ErrorResponse "Post not found"
// @Router /posts/{id}/like [post]
func (h *PostHandler) LikePost(c *gin.Context) {
	h.updateLike(c, h.postService.Like)
}

// UnlikePost godoc
// @Summary Withdraw a like
// @Tags Posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} PostResponse
// @Failure 404 {object} ErrorResponse "Post not found"
// @Router /posts/{id}/like [delete]
func (h *PostHandler) UnlikePost(c *gin.Context) {
	h.updateLike(c, h.postService.Unlike)
}

func (h *PostHandler) updateLike(
	c *gin.Context,
	update func(ctx context.Context, postID, userID primitive.ObjectID) (*service.PostView, error),
) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	postID, ok := parseObjectIDParam(c, "id", service.ErrPostNotFound)
	if !ok {
		return
	}
	view, err := update(c.Request.Context(), postID, userID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapPostToResponse(view))
}
