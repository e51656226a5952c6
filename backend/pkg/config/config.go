package config

import (
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	apperrors "studio-journal/backend/pkg/errors"
)

// Config holds all application configuration
type Config struct {
	// App
	Port string
	Env  string

	// Content
	ContentDir      string
	ThreadPairLimit int
	CanvasWidth     float64
	CanvasHeight    float64

	// Research trail service
	ResearchAPIURL   string
	ResearchCacheTTL time.Duration
	ResearchTimeout  time.Duration

	// Neo4j (optional, read-only source graph)
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		Env:              getEnv("ENV", "development"),
		ContentDir:       getEnv("CONTENT_DIR", "content"),
		ThreadPairLimit:  getEnvInt("THREAD_PAIR_LIMIT", 12),
		CanvasWidth:      getEnvFloat("CANVAS_WIDTH", 900),
		CanvasHeight:     getEnvFloat("CANVAS_HEIGHT", 600),
		ResearchAPIURL:   strings.TrimRight(getEnv("RESEARCH_API_URL", ""), "/"),
		ResearchCacheTTL: getEnvDuration("RESEARCH_CACHE_TTL", 5*time.Minute),
		ResearchTimeout:  getEnvDuration("RESEARCH_TIMEOUT", 10*time.Second),
		Neo4jURI:         getEnv("NEO4J_URI", ""),
		Neo4jUser:        getEnv("NEO4J_USER", "neo4j"),
		Neo4jPassword:    getEnv("NEO4J_PASSWORD", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	if c.ContentDir == "" {
		return apperrors.NewConfigValidationFailed("CONTENT_DIR", "is required")
	}
	if c.ThreadPairLimit < 0 {
		return apperrors.NewConfigValidationFailed("THREAD_PAIR_LIMIT", "must not be negative")
	}
	if !positiveFinite(c.CanvasWidth) || !positiveFinite(c.CanvasHeight) {
		return apperrors.NewConfigValidationFailed("CANVAS_WIDTH/CANVAS_HEIGHT", "must be positive")
	}
	if c.ResearchCacheTTL < 0 {
		return apperrors.NewConfigValidationFailed("RESEARCH_CACHE_TTL", "must not be negative")
	}
	if c.Neo4jURI != "" && c.Neo4jPassword == "" {
		return apperrors.NewConfigValidationFailed("NEO4J_PASSWORD", "is required when NEO4J_URI is set")
	}
	// The research API is optional; without it the trail sections render nothing.
	return nil
}

// HasResearchAPI reports whether a remote research trail service is configured
func (c *Config) HasResearchAPI() bool {
	return c.ResearchAPIURL != ""
}

// HasGraphStore reports whether a Neo4j source graph is configured
func (c *Config) HasGraphStore() bool {
	return c.Neo4jURI != ""
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func positiveFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var result float64
		if _, err := fmt.Sscanf(value, "%f", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
