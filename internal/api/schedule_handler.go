package api

import (
	"alcyxob/fitness-social/internal/domain"
	"alcyxob/fitness-social/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ScheduleHandler serves the caller's weekly workout plan.
type ScheduleHandler struct {
	scheduleService service.ScheduleService
}

func NewScheduleHandler(scheduleService service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleService: scheduleService}
}

type SetDayTypeRequest struct {
	Type string `json:"type" binding:"required"`
}

type AddScheduledExerciseRequest struct {
	ExerciseID string `json:"exerciseId" binding:"required"`
}

type WorkoutDayResponse struct {
	Day       string             `json:"day,omitempty"`
	Type      string             `json:"type"`
	Exercises []ExerciseResponse `json:"exercises"`
}

func MapWorkoutDayToResponse(day string, workoutDay *domain.WorkoutDay) WorkoutDayResponse {
	return WorkoutDayResponse{
		Day:       day,
		Type:      workoutDay.Type,
		Exercises: MapExercisesToResponse(workoutDay.Exercises),
	}
}

// GetSchedule godoc
// @Summary Get the workout type planned for each weekday
// @Tags Schedule
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]string "Weekday to workout type"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /weekly-workout/ [get]
func (h *ScheduleHandler) GetSchedule(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	types, err := h.scheduleService.GetSchedule(c.Request.Context(), userID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, types)
}

// SetDayType godoc
// @Summary Label a weekday with a workout type
// @Tags Schedule
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param day path string true "Weekday, any letter case"
// @Param body body SetDayTypeRequest true "Workout type"
// @Success 200 {object} WorkoutDayResponse
// @Failure 400 {object} ErrorResponse "Invalid weekday or type"
// @Router /weekly-workout/{day} [put]
func (h *ScheduleHandler) SetDayType(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req SetDayTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithValidationError(c, err.Error())
		return
	}
	workoutDay, err := h.scheduleService.SetDayType(c.Request.Context(), userID, c.Param("day"), req.Type)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	day, _ := domain.ParseWeekday(c.Param("day"))
	c.JSON(http.StatusOK, MapWorkoutDayToResponse(string(day), workoutDay))
}

// GetDayExercises godoc
// @Summary List the exercises planned for a weekday
// @Tags Schedule
// @Produce json
// @Security BearerAuth
// @Param day path string true "Weekday, any letter case"
// @Success 200 {array} ExerciseResponse
// @Failure 400 {object} ErrorResponse "Invalid weekday"
// @Router /weekly-workout/{day}/exercises [get]
func (h *ScheduleHandler) GetDayExercises(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	exercises, err := h.scheduleService.GetExercises(c.Request.Context(), userID, c.Param("day"))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapExercisesToResponse(exercises))
}

// AddExercise godoc
// @Summary Plan an exercise on a weekday
// @Description Adding an exercise that is already planned for the day changes nothing.
// @Tags Schedule
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param day path string true "Weekday, any letter case"
// @Param body body AddScheduledExerciseRequest true "Catalog exercise id"
// @Success 200 {array} ExerciseResponse "The day's exercises after the change"
// @Failure 404 {object} ErrorResponse "Exercise not found"
// @Router /weekly-workout/{day}/exercises [post]
func (h *ScheduleHandler) AddExercise(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req AddScheduledExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithValidationError(c, err.Error())
		return
	}
	exercises, err := h.scheduleService.AddExercise(c.Request.Context(), userID, c.Param("day"), req.ExerciseID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapExercisesToResponse(exercises))
}

// RemoveExercise godoc
// @Summary Remove an exercise from a weekday
// @Tags Schedule
// @Produce json
// @Security BearerAuth
// @Param day path string true "Weekday, any letter case"
// @Param exerciseId path string true "Catalog exercise id"
// @Success 200 {array} ExerciseResponse "The day's exercises after the change"
// @Router /weekly-workout/{day}/exercises/{exerciseId} [delete]
func (h *ScheduleHandler) RemoveExercise(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	exercises, err := h.scheduleService.RemoveExercise(c.Request.Context(), userID, c.Param("day"), c.Param("exerciseId"))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapExercisesToResponse(exercises))
}
