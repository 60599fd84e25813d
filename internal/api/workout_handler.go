package api

import (
	"alcyxob/fitness-social/internal/domain"
	"alcyxob/fitness-social/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// WorkoutHandler serves a user's saved workouts.
type WorkoutHandler struct {
	workoutService service.WorkoutService
}

func NewWorkoutHandler(workoutService service.WorkoutService) *WorkoutHandler {
	return &WorkoutHandler{workoutService: workoutService}
}

// --- DTOs ---

type CreateWorkoutRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Duration    int      `json:"duration" binding:"omitempty,min=0"` // Minutes
	Type        string   `json:"type"`
	ExerciseIDs []string `json:"exerciseIds"`
}

type WorkoutResponse struct {
	ID          string             `json:"id"`
	CreatedBy   string             `json:"createdBy"`
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Duration    int                `json:"duration"`
	Day         WorkoutDayResponse `json:"day"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

func MapWorkoutToResponse(w *domain.Workout) WorkoutResponse {
	if w == nil {
		return WorkoutResponse{}
	}
	return WorkoutResponse{
		ID:          w.ID.Hex(),
		CreatedBy:   w.CreatedBy.Hex(),
		Name:        w.Name,
		Description: w.Description,
		Duration:    w.Duration,
		Day:         MapWorkoutDayToResponse("", &w.Day),
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
}

// --- Handler Methods ---

// CreateWorkout godoc
// @Summary Save a named workout
// @Tags Workouts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param workout body CreateWorkoutRequest true "Workout details"
// @Success 201 {object} WorkoutResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 404 {object} ErrorResponse "Unknown exercise id"
// @Failure 422 {object} ErrorResponse "No exercises"
// @Router /workouts/ [post]
func (h *WorkoutHandler) CreateWorkout(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req CreateWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithValidationError(c, err.Error())
		return
	}

	workout, err := h.workoutService.CreateWorkout(c.Request.Context(), userID, service.SaveWorkoutInput{
		Name:        req.Name,
		Description: req.Description,
		Duration:    req.Duration,
		Type:        req.Type,
		ExerciseIDs: req.ExerciseIDs,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapWorkoutToResponse(workout))
}

// ListWorkouts godoc
// @Summary List the caller's saved workouts, newest first
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Success 200 {array} WorkoutResponse
// @Router /workouts/ [get]
func (h *WorkoutHandler) ListWorkouts(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	workouts, err := h.workoutService.ListWorkouts(c.Request.Context(), userID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	responses := make([]WorkoutResponse, len(workouts))
	for i := range workouts {
		responses[i] = MapWorkoutToResponse(&workouts[i])
	}
	c.JSON(http.StatusOK, responses)
}

// GetWorkout godoc
// @Summary Get one saved workout
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Workout ID"
// @Success 200 {object} WorkoutResponse
// @Failure 404 {object} ErrorResponse "Workout not found"
// @Router /workouts/{id}/ [get]
func (h *WorkoutHandler) GetWorkout(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	workoutID, ok := parseObjectIDParam(c, "id", service.ErrWorkoutNotFound)
	if !ok {
		return
	}
	workout, err := h.workoutService.GetWorkout(c.Request.Context(), userID, workoutID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapWorkoutToResponse(workout))
}

// UpdateWorkout godoc
// @Summary Replace a saved workout's contents
// @Tags Workouts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Workout ID"
// @Param workout body CreateWorkoutRequest true "New workout details"
// @Success 200 {object} WorkoutResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 404 {object} ErrorResponse "Workout or exercise not found"
// @Failure 422 {object} ErrorResponse "No exercises"
// @Router /workouts/{id}/ [put]
func (h *WorkoutHandler) UpdateWorkout(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	workoutID, ok := parseObjectIDParam(c, "id", service.ErrWorkoutNotFound)
	if !ok {
		return
	}
	var req CreateWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithValidationError(c, err.Error())
		return
	}

	workout, err := h.workoutService.UpdateWorkout(c.Request.Context(), userID, workoutID, service.SaveWorkoutInput{
		Name:        req.Name,
		Description: req.Description,
		Duration:    req.Duration,
		Type:        req.Type,
		ExerciseIDs: req.ExerciseIDs,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapWorkoutToResponse(workout))
}

// DeleteWorkout godoc
// @Summary Delete a saved workout
// @Tags Workouts
// @Security BearerAuth
// @Param id path string true "Workout ID"
// @Success 204
// @Failure 404 {object} ErrorResponse "Workout not found"
// @Router /workouts/{id}/ [delete]
func (h *WorkoutHandler) DeleteWorkout(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	workoutID, ok := parseObjectIDParam(c, "id", service.ErrWorkoutNotFound)
	if !ok {
		return
	}
	if err := h.workoutService.DeleteWorkout(c.Request.Context(), userID, workoutID); err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
