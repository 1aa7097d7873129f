package config

import (
	"fmt"
	"os"
	"path/filepath"
)

type Config struct {
	// Analysis service
	GeminiAPIBaseURL string
	GeminiAPIKey     string
	AnalyzePrompt    string
	AnalyzeMode      string // "per_image" (primary) or "batch" (legacy)

	// Supabase
	SupabaseURL            string
	SupabasePublishableKey string
	SupabaseJWTSecret      string
	SupabaseStorageBucket  string

	// Database
	DatabaseURL string

	// Local staging area for prepared images awaiting upload
	StagingDir string

	// Server
	Port        string
	Environment string
	BaseURL     string
}

const defaultPrompt = "Give me personalized feedback for improving my dating app profile based on this photo."

func Load() (*Config, error) {
	cfg := &Config{
		GeminiAPIBaseURL: getEnv("GEMINI_API_BASE_URL", "https://gemini-backend-633816661931.us-central1.run.app/"),
		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		AnalyzePrompt:    getEnv("ANALYZE_PROMPT", defaultPrompt),
		AnalyzeMode:      getEnv("ANALYZE_MODE", "per_image"),

		SupabaseURL:            getEnv("SUPABASE_URL", ""),
		SupabasePublishableKey: getEnv("SUPABASE_PUBLISHABLE_KEY", ""),
		SupabaseJWTSecret:      getEnv("SUPABASE_JWT_SECRET", ""),
		SupabaseStorageBucket:  getEnv("SUPABASE_STORAGE_BUCKET", "profile-photos"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		StagingDir: getEnv("STAGING_DIR", filepath.Join(os.TempDir(), "profile-pulse-staging")),

		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	if c.SupabaseURL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}
	if c.SupabasePublishableKey == "" {
		return fmt.Errorf("SUPABASE_PUBLISHABLE_KEY is required")
	}
	if c.SupabaseJWTSecret == "" {
		return fmt.Errorf("SUPABASE_JWT_SECRET is required")
	}
	if c.AnalyzeMode != "per_image" && c.AnalyzeMode != "batch" {
		return fmt.Errorf("ANALYZE_MODE must be per_image or batch, got %q", c.AnalyzeMode)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
