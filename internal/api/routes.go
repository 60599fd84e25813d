package api

import (
	"alcyxob/fitness-social/internal/logging"
	"alcyxob/fitness-social/internal/metrics"
	"alcyxob/fitness-social/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Services bundles what the handlers call into.
type Services struct {
	Auth     service.AuthService
	Exercise service.ExerciseService
	Schedule service.ScheduleService
	Workout  service.WorkoutService
	Post     service.PostService
	Meal     service.MealService
}

type RouterOptions struct {
	// Limiter guards the login routes. Nil disables rate limiting.
	Limiter         RequestRateLimiter
	LoginRatePerMin int
	Metrics         *metrics.Manager
	// Gatherer backs GET /metrics. Nil leaves the route out.
	Gatherer prometheus.Gatherer
}

// NewRouter builds the engine with logging, panic recovery and metrics
// middleware and registers every route.
func NewRouter(services Services, opts RouterOptions) *gin.Engine {
	router := gin.New()
	router.Use(logging.GinLogger(), PanicRecovery(opts.Metrics), RequestMetrics(opts.Metrics))
	SetupRoutes(router, services, opts)
	return router
}

func SetupRoutes(router *gin.Engine, services Services, opts RouterOptions) {
	authHandler := NewAuthHandler(services.Auth)
	exerciseHandler := NewExerciseHandler(services.Exercise)
	scheduleHandler := NewScheduleHandler(services.Schedule)
	workoutHandler := NewWorkoutHandler(services.Workout)
	postHandler := NewPostHandler(services.Post)
	mealHandler := NewMealHandler(services.Meal)

	authMiddleware := AuthMiddleware(services.Auth)
	optionalAuth := OptionalAuthMiddleware(services.Auth)
	loginLimit := func(route string) gin.HandlerFunc {
		return RateLimit(opts.Limiter, route, opts.LoginRatePerMin)
	}

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	if opts.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	api := router.Group("/api")
	{
		// --- Auth Routes ---
		api.POST("/google-login/", loginLimit("google-login"), authHandler.GoogleLogin)
		api.POST("/register/", loginLimit("register"), authHandler.Register)
		api.POST("/login/", loginLimit("login"), authHandler.Login)
		api.POST("/session/", authHandler.RenewSession)
		api.POST("/logout/", authHandler.Logout)
		api.GET("/user/", authMiddleware, authHandler.CurrentUser)
		api.PUT("/user/", authMiddleware, authHandler.UpdateCurrentUser)

		// --- Exercise Routes ---
		exerciseGroup := api.Group("/exercises")
		{
			exerciseGroup.GET("/", exerciseHandler.ListExercises)
			exerciseGroup.POST("/", authMiddleware, exerciseHandler.CreateExercise)
			exerciseGroup.GET("/:id", exerciseHandler.GetExercise)
			exerciseGroup.GET("/:id/sequential-id", exerciseHandler.GetSequentialID)
			exerciseGroup.GET("/:id/gif", exerciseHandler.ExerciseGif)
		}
		api.GET("/gifs/:n/", exerciseHandler.GetGif)

		// --- Weekly Schedule Routes ---
		scheduleGroup := api.Group("/weekly-workout")
		scheduleGroup.Use(authMiddleware)
		{
			scheduleGroup.GET("/", scheduleHandler.GetSchedule)
			scheduleGroup.PUT("/:day", scheduleHandler.SetDayType)
			scheduleGroup.GET("/:day/exercises", scheduleHandler.GetDayExercises)
			scheduleGroup.POST("/:day/exercises", scheduleHandler.AddExercise)
			scheduleGroup.DELETE("/:day/exercises/:exerciseId", scheduleHandler.RemoveExercise)
		}

		// --- Saved Workout Routes ---
		workoutGroup := api.Group("/workouts")
		workoutGroup.Use(authMiddleware)
		{
			workoutGroup.POST("/", workoutHandler.CreateWorkout)
			workoutGroup.GET("/", workoutHandler.ListWorkouts)
			workoutGroup.GET("/:id/", workoutHandler.GetWorkout)
			workoutGroup.PUT("/:id/", workoutHandler.UpdateWorkout)
			workoutGroup.DELETE("/:id/", workoutHandler.DeleteWorkout)
		}

		// --- Feed Routes ---
		postGroup := api.Group("/posts")
		{
			postGroup.GET("/", optionalAuth, postHandler.ListPosts)
			postGroup.POST("/", authMiddleware, postHandler.CreatePost)
			postGroup.GET("/:id/", optionalAuth, postHandler.GetPost)
			postGroup.DELETE("/:id/", authMiddleware, postHandler.DeletePost)
			postGroup.POST("/:id/like", authMiddleware, postHandler.LikePost)
			postGroup.DELETE("/:id/like", authMiddleware, postHandler.UnlikePost)
		}

		api.POST("/dining/top-meals/", authMiddleware, mealHandler.TopMeals)
	}
}
