package main

import (
	"alcyxob/fitness-social/internal/api"
	"alcyxob/fitness-social/internal/dining"
	"alcyxob/fitness-social/internal/identity"
	"alcyxob/fitness-social/internal/metrics"
	"alcyxob/fitness-social/internal/service"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Presigned GIF links stay valid this long.
const gifURLTTL = 15 * time.Minute

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	log.Infoln("starting fitness social server")

	if cfg.JWT.Secret == "" {
		return errors.New("jwt.secret must be set")
	}

	// --- Metrics ---
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metricsManager := metrics.NewManager("fitness", "server", reg)

	// --- Storage ---
	st, err := openStore(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer st.close()

	sessions, limiter, closeSessions, err := openSessions(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer closeSessions()

	fileStorage, err := openFileStorage(ctx, cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 storage: %w", err)
	}

	// --- Upstreams ---
	retry := service.DefaultRetryPolicy()
	retry.MaxRetries = cfg.Upstream.MaxRetries
	upstreamClient := &http.Client{Timeout: cfg.Upstream.Timeout}

	var verifier service.IdentityVerifier
	if cfg.Google.ClientID == "" {
		log.Warnln("google.client_id not set: Google sign-in disabled")
	} else {
		googleVerifier, err := identity.NewGoogleVerifier(ctx, cfg.Google.ClientID, upstreamClient)
		if err != nil {
			return fmt.Errorf("failed to create Google ID token verifier: %w", err)
		}
		verifier = googleVerifier
	}

	var recommender service.MealRecommender
	if cfg.GenAI.APIKey == "" {
		log.Warnln("genai.api_key not set: meal recommendations disabled")
	} else {
		genAIRecommender, err := dining.NewGenAIRecommender(ctx, cfg.GenAI.APIKey, cfg.GenAI.Model)
		if err != nil {
			return fmt.Errorf("failed to create GenAI client: %w", err)
		}
		recommender = genAIRecommender
	}

	// --- Services ---
	exerciseService := service.NewExerciseService(st.exercises, st.index, fileStorage, service.ExerciseServiceConfig{
		CacheTTL:  cfg.Catalog.CacheTTL,
		GifPrefix: cfg.S3.GifPrefix,
		GifURLTTL: gifURLTTL,
		Retry:     retry,
		Metrics:   metricsManager,
	})
	scheduleService := service.NewScheduleService(st.schedules, exerciseService)
	workoutService := service.NewWorkoutService(st.workouts, exerciseService)
	services := api.Services{
		Auth: service.NewAuthService(st.users, sessions, verifier, service.AuthServiceConfig{
			JWTSecret:  cfg.JWT.Secret,
			SessionTTL: cfg.JWT.Expiration,
			RefreshTTL: cfg.JWT.RefreshExpiration,
			Retry:      retry,
			Metrics:    metricsManager,
		}),
		Exercise: exerciseService,
		Schedule: scheduleService,
		Workout:  workoutService,
		Post:     service.NewPostService(st.posts, st.users, workoutService, scheduleService),
		Meal: service.NewMealService(dining.NewMenuClient(cfg.Dining.MenuURL, cfg.Upstream.Timeout), recommender, service.MealServiceConfig{
			CacheTTL: cfg.Dining.CacheTTL,
			Retry:    retry,
			Metrics:  metricsManager,
		}),
	}

	// --- HTTP ---
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(services, api.RouterOptions{
		Limiter:         limiter,
		LoginRatePerMin: cfg.Auth.LoginRatePerMin,
		Metrics:         metricsManager,
		Gatherer:        reg,
	})

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second, // meal recommendations wait on the LLM
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Infof("server starting on %s", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serverErr:
		return fmt.Errorf("listen and serve: %w", err)
	case sig := <-quit:
		log.Infof("received %s, shutting down server", sig)
	}

	// The server has 5 seconds to finish the requests it is currently handling
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(ctxShutdown); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Infoln("server exiting")
	return nil
}
