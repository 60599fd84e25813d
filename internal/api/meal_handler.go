package api

import (
	"alcyxob/fitness-social/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

// MealHandler serves dining hall meal recommendations.
type MealHandler struct {
	mealService service.MealService
}

func NewMealHandler(mealService service.MealService) *MealHandler {
	return &MealHandler{mealService: mealService}
}

type TopMealsRequest struct {
	Goal string `json:"goal" binding:"required"`
}

// TopMeals godoc
// @Summary Recommend campus dining meals for a goal
// @Tags Dining
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body TopMealsRequest true "cutting or bulking"
// @Success 200 {object} service.MealRecommendation
// @Failure 400 {object} ErrorResponse "Goal is not cutting or bulking"
// @Failure 503 {object} ErrorResponse "Menu feed or model unavailable"
// @Router /dining/top-meals/ [post]
func (h *MealHandler) TopMeals(c *gin.Context) {
	var req TopMealsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, CodeInvalidGoal, "Goal must be 'cutting' or 'bulking'")
		return
	}
	recommendation, err := h.mealService.GetRecommendations(c.Request.Context(), req.Goal)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, recommendation)
}
