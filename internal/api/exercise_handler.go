package api

import (
	"alcyxob/fitness-social/internal/domain"
	"alcyxob/fitness-social/internal/service"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// ExerciseHandler holds the exercise service dependency.
type ExerciseHandler struct {
	exerciseService service.ExerciseService
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(exerciseService service.ExerciseService) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService}
}

// --- DTOs for API (Data Transfer Objects) ---

// CreateExerciseRequest defines the expected JSON for creating an exercise.
type CreateExerciseRequest struct {
	ID               string   `json:"id" binding:"required"`
	Name             string   `json:"name" binding:"required"`
	BodyPart         string   `json:"bodyPart"`
	Equipment        string   `json:"equipment"`
	Target           string   `json:"target"`
	SecondaryMuscles []string `json:"secondaryMuscles"`
	Instructions     []string `json:"instructions"`
}

// ExerciseResponse is the DTO for returning exercise details.
// GifURL points at the redirecting GIF route, never at storage directly.
type ExerciseResponse struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	BodyPart         string    `json:"bodyPart"`
	Equipment        string    `json:"equipment"`
	Target           string    `json:"target"`
	SecondaryMuscles []string  `json:"secondaryMuscles"`
	Instructions     []string  `json:"instructions"`
	GifURL           string    `json:"gifUrl"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

type SequentialIDResponse struct {
	ID           string `json:"id"`
	SequentialID int    `json:"sequentialId"`
}

// MapExerciseToResponse converts a domain.Exercise to ExerciseResponse DTO.
func MapExerciseToResponse(ex *domain.Exercise) ExerciseResponse {
	if ex == nil {
		return ExerciseResponse{}
	}
	ex.Normalize()
	return ExerciseResponse{
		ID:               ex.ID,
		Name:             ex.Name,
		BodyPart:         ex.BodyPart,
		Equipment:        ex.Equipment,
		Target:           ex.Target,
		SecondaryMuscles: ex.SecondaryMuscles,
		Instructions:     ex.Instructions,
		GifURL:           "/api/exercises/" + ex.ID + "/gif",
		CreatedAt:        ex.CreatedAt,
		UpdatedAt:        ex.UpdatedAt,
	}
}

// MapExercisesToResponse converts a slice of domain.Exercise to a slice of ExerciseResponse DTO.
func MapExercisesToResponse(exercises []domain.Exercise) []ExerciseResponse {
	responses := make([]ExerciseResponse, len(exercises))
	for i := range exercises {
		responses[i] = MapExerciseToResponse(&exercises[i])
	}
	return responses
}

// --- Handler Methods ---

// ListExercises godoc
// @Summary List the exercise catalog
// @Tags Exercises
// @Produce json
// @Param bodyPart query string false "Body part filter"
// @Param target query string false "Target muscle filter"
// @Param equipment query string false "Equipment filter"
// @Success 200 {array} ExerciseResponse "List of exercises"
// @Failure 503 {object} ErrorResponse "Catalog unavailable"
// @Router /exercises/ [get]
func (h *ExerciseHandler) ListExercises(c *gin.Context) {
	filter := domain.ExerciseFilter{
		BodyPart:  strings.TrimSpace(c.Query("bodyPart")),
		Target:    strings.TrimSpace(c.Query("target")),
		Equipment: strings.TrimSpace(c.Query("equipment")),
	}
	exercises, err := h.exerciseService.ListExercises(c.Request.Context(), filter)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapExercisesToResponse(exercises))
}

// GetExercise godoc
// @Summary Get one exercise
// @Tags Exercises
// @Produce json
// @Param id path string true "Exercise ID"
// @Success 200 {object} ExerciseResponse
// @Failure 404 {object} ErrorResponse "Exercise not found"
// @Router /exercises/{id} [get]
func (h *ExerciseHandler) GetExercise(c *gin.Context) {
	exercise, err := h.exerciseService.GetExercise(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapExerciseToResponse(exercise))
}

// GetSequentialID godoc
// @Summary Get the exercise's sequential id, assigning one on first use
// @Tags Exercises
// @Produce json
// @Param id path string true "Exercise ID"
// @Success 200 {object} SequentialIDResponse
// @Failure 404 {object} ErrorResponse "Exercise not found"
// @Router /exercises/{id}/sequential-id [get]
func (h *ExerciseHandler) GetSequentialID(c *gin.Context) {
	id := c.Param("id")
	seq, err := h.exerciseService.GetSequentialID(c.Request.Context(), id)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SequentialIDResponse{ID: id, SequentialID: seq})
}

// ExerciseGif godoc
// @Summary Redirect to the exercise's GIF
// @Tags Exercises
// @Param id path string true "Exercise ID"
// @Success 302
// @Failure 404 {object} ErrorResponse "Exercise not found"
// @Failure 503 {object} ErrorResponse "Storage unavailable"
// @Router /exercises/{id}/gif [get]
func (h *ExerciseHandler) ExerciseGif(c *gin.Context) {
	url, err := h.exerciseService.GifURLForExercise(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.Redirect(http.StatusFound, url)
}

// GetGif godoc
// @Summary Redirect to the GIF stored under a sequential id
// @Tags Exercises
// @Param n path int true "Sequential ID"
// @Success 302
// @Failure 404 {object} ErrorResponse "GIF not found"
// @Router /gifs/{n}/ [get]
func (h *ExerciseHandler) GetGif(c *gin.Context) {
	n, err := strconv.Atoi(c.Param("n"))
	if err != nil {
		abortWithServiceError(c, service.ErrGifNotFound)
		return
	}
	url, err := h.exerciseService.GifURL(c.Request.Context(), n)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.Redirect(http.StatusFound, url)
}

// CreateExercise godoc
// @Summary Add an exercise to the catalog
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param exercise body CreateExerciseRequest true "Exercise details"
// @Success 201 {object} ExerciseResponse "Exercise created successfully"
// @Failure 400 {object} ErrorResponse "Invalid input or duplicate id"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /exercises/ [post]
func (h *ExerciseHandler) CreateExercise(c *gin.Context) {
	var req CreateExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithValidationError(c, err.Error())
		return
	}

	exercise, err := h.exerciseService.CreateExercise(c.Request.Context(), &domain.Exercise{
		ID:               req.ID,
		Name:             req.Name,
		BodyPart:         req.BodyPart,
		Equipment:        req.Equipment,
		Target:           req.Target,
		SecondaryMuscles: req.SecondaryMuscles,
		Instructions:     req.Instructions,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapExerciseToResponse(exercise))
}
