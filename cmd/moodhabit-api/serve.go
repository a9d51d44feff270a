package main

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/moodhabit/backend/internal/config"
	"github.com/moodhabit/backend/internal/handlers"
	"github.com/moodhabit/backend/internal/logger"
	"github.com/moodhabit/backend/internal/middleware"
	"github.com/moodhabit/backend/internal/recpool"
	"github.com/moodhabit/backend/internal/repository"
	"github.com/moodhabit/backend/internal/service"
	"github.com/moodhabit/backend/pkg/statsengine"
	"github.com/moodhabit/backend/pkg/supabase"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long:  `Start the HTTP API server and listen for requests.`,
	RunE:  runServe,
}

var (
	port string
)

func init() {
	serveCmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Override port from flag if provided
	if port != "" {
		cfg.Server.Port = port
	}

	logger.SetDefault(logger.NewSlogLogger(logger.Config{
		Level:   logger.ParseLevel(cfg.Logging.Level),
		Format:  cfg.Logging.Format,
		Service: "moodhabit-api",
	}))

	log := logger.Default()
	log.Info("starting MoodHabit API server",
		logger.String("env", cfg.Server.Env),
		logger.String("supabase_url", cfg.Supabase.URL),
		logger.String("stats_engine_url", cfg.StatsEngine.URL))

	// Initialize external clients
	supabaseClient := supabase.NewClient(cfg.Supabase.URL, cfg.Supabase.ServiceKey)
	engine := statsengine.NewClient(cfg.StatsEngine.URL, cfg.StatsEngine.Timeout)

	pool, err := recpool.Default()
	if err != nil {
		return fmt.Errorf("failed to load recommendation pool: %w", err)
	}

	// Initialize repositories
	logRepo := repository.NewMoodLogRepository(supabaseClient)
	scoreRepo := repository.NewMoodScoreRepository(supabaseClient)
	snapRepo := repository.NewAnovaSnapshotRepository(supabaseClient)
	concordanceRepo := repository.NewConcordanceSnapshotRepository(supabaseClient)
	recRepo := repository.NewRecommendationRepository(supabaseClient)
	fbRepo := repository.NewFeedbackRepository(supabaseClient)

	// Initialize services
	analyticsService := service.NewAnalyticsService(logRepo, scoreRepo, snapRepo, engine)
	concordanceService := service.NewConcordanceService(logRepo, concordanceRepo, engine)
	recommendationService := service.NewRecommendationService(scoreRepo, recRepo, fbRepo, pool)
	feedbackService := service.NewFeedbackService(recRepo, fbRepo, engine)

	// Initialize handlers
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)
	concordanceHandler := handlers.NewConcordanceHandler(concordanceService)
	recommendationHandler := handlers.NewRecommendationHandler(recommendationService)
	feedbackHandler := handlers.NewFeedbackHandler(feedbackService)

	// Set Gin mode based on environment
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())

	// Middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(middleware.RateLimit())

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
			"env":    cfg.Server.Env,
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		protected := v1.Group("")
		protected.Use(middleware.Auth(supabaseClient))
		{
			// Analytics routes; the run endpoints fan out to the stats
			// engine, so they carry the stricter compute limiter.
			protected.POST("/analytics/run", middleware.RateLimitCompute(), analyticsHandler.RunDay)
			protected.GET("/analytics/history", analyticsHandler.History)

			// Concordance routes
			protected.POST("/concordance/run", middleware.RateLimitCompute(), concordanceHandler.RunDay)
			protected.GET("/concordance/history", concordanceHandler.History)

			// Recommendation routes
			protected.POST("/recommendations/generate", recommendationHandler.Generate)
			protected.GET("/recommendations/week", recommendationHandler.CurrentWeek)
			protected.POST("/recommendations/resolve", recommendationHandler.Resolve)
			protected.POST("/recommendations/:id/feedback", feedbackHandler.Submit)
		}
	}

	log.Info("server listening", logger.String("port", cfg.Server.Port))
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
