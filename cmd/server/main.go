// @title           Profile Pulse Backend API
// @version         1.0.0
// @description     Backend API for dating profile photo feedback. This API handles session creation, photo uploads, AI analysis, and real-time progress updates via Supabase Realtime.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

package main

import (
	"log"
	"net/http"

	"profile-pulse-backend/internal/config"
	"profile-pulse-backend/internal/database"
	"profile-pulse-backend/internal/gemini"
	"profile-pulse-backend/internal/handlers"
	"profile-pulse-backend/internal/middleware"
	"profile-pulse-backend/internal/services"
	"profile-pulse-backend/internal/supabase"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Database connection string
	dbURL := cfg.DatabaseURL
	if dbURL == "" {
		log.Println("Warning: DATABASE_URL not set. Migrations will be skipped.")
		log.Println("Please set DATABASE_URL environment variable with your Supabase PostgreSQL connection string")
	}

	// Initialize Gemini analysis client
	geminiClient := gemini.NewClient(cfg.GeminiAPIBaseURL, cfg.GeminiAPIKey)

	// Initialize Supabase clients
	supabaseClient, err := supabase.NewClient(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize Supabase client: %v", err)
	}

	storageClient, err := supabase.NewStorageClient(cfg.SupabaseURL, cfg.SupabasePublishableKey, cfg.SupabaseStorageBucket)
	if err != nil {
		log.Fatalf("Failed to initialize storage client: %v", err)
	}

	realtimeClient := supabase.NewRealtimeClient(supabaseClient.Supabase)

	// Create database client for direct queries
	var dbClient *supabase.DatabaseClient
	if dbURL != "" {
		var err error
		dbClient, err = supabase.NewDatabaseClient(dbURL)
		if err != nil {
			log.Printf("Warning: Failed to initialize database client: %v", err)
			log.Println("Database operations will be limited. Please configure DATABASE_URL properly.")
		} else {
			defer dbClient.Close()

			// Run migrations
			migrator, err := database.NewMigrator(dbURL)
			if err != nil {
				log.Printf("Warning: Failed to initialize migrator: %v", err)
			} else {
				defer migrator.Close()
				if err := migrator.Run(); err != nil {
					log.Printf("Warning: Migration failed: %v", err)
				} else {
					log.Println("Migrations completed successfully")
				}
			}
		}
	}

	// Local staging area for prepared photos awaiting upload
	staging := services.NewStaging(cfg.StagingDir)

	// Initialize the upload-analyze pipeline and its session driver
	pipeline := services.NewPipeline(storageClient, geminiClient, staging, cfg.AnalyzePrompt, cfg.AnalyzeMode == "batch")

	var analysisService *services.AnalysisService
	var busy handlers.BusyChecker
	if dbClient != nil {
		analysisService = services.NewAnalysisService(pipeline, dbClient, realtimeClient)
		busy = analysisService
	} else {
		log.Println("Warning: Analysis service not available without a database connection.")
	}

	// Initialize handlers (dbClient might be nil, handlers should handle this)
	sessionsHandler := handlers.NewSessionsHandler(dbClient, storageClient, staging, busy)
	photosHandler := handlers.NewPhotosHandler(dbClient, staging, busy)
	analyzeHandler := handlers.NewAnalyzeHandler(dbClient, analysisService)
	statusHandler := handlers.NewStatusHandler(dbClient)
	resultsHandler := handlers.NewResultsHandler(dbClient)

	// Setup router
	router := gin.Default()

	// Middleware
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Health check (no auth)
	router.GET("/health", handlers.HealthHandler)

	// API routes
	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(cfg))

	// Session routes
	api.POST("/sessions", sessionsHandler.CreateSession)
	api.GET("/sessions", sessionsHandler.ListSessions)
	api.GET("/sessions/:session_id", sessionsHandler.GetSession)
	api.DELETE("/sessions/:session_id", sessionsHandler.DeleteSession)

	// Photo management
	api.POST("/sessions/:session_id/photos", photosHandler.AddPhotos)
	api.PUT("/sessions/:session_id/photos/:photo_id", photosHandler.ReplacePhoto)
	api.DELETE("/sessions/:session_id/photos/:photo_id", photosHandler.DeletePhoto)

	// Analysis
	api.POST("/sessions/:session_id/analyze", analyzeHandler.Analyze)

	// Status and results
	api.GET("/sessions/:session_id/status", statusHandler.GetStatus)
	api.GET("/sessions/:session_id/result", resultsHandler.GetResult)
	api.GET("/sessions/:session_id/result/export", resultsHandler.ExportResult)

	// Start server
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
