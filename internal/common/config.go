package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Vision   VisionConfig
	Raster   RasterConfig
	Database DatabaseConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr           string
	ScratchDir     string
	MaxUploadBytes int64
}

// VisionConfig holds the OCR provider configuration
type VisionConfig struct {
	APIKey   string
	Endpoint string
	Timeout  time.Duration
}

// RasterConfig holds PDF rasterization configuration
type RasterConfig struct {
	Pdftoppm string // binary name or absolute path; if empty -> "pdftoppm"
	DPI      int    // rasterization DPI for PDF pages, default 300
	MaxPages int    // 0 = no limit
}

// DatabaseConfig holds the extraction-history store configuration
type DatabaseConfig struct {
	DSN         string // postgres:// DSN or a sqlite file path
	DialTimeout time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           getEnv("HTTP_ADDR", ":8080"),
			ScratchDir:     getEnv("SCRATCH_DIR", "./tmp"),
			MaxUploadBytes: getEnvAsInt64("MAX_UPLOAD_BYTES", 32<<20),
		},
		Vision: VisionConfig{
			APIKey:   getEnv("GOOGLE_VISION_API_KEY", ""),
			Endpoint: getEnv("GOOGLE_VISION_ENDPOINT", "https://vision.googleapis.com/v1/images:annotate"),
			Timeout:  getEnvAsDuration("GOOGLE_VISION_TIMEOUT", 45*time.Second),
		},
		Raster: RasterConfig{
			Pdftoppm: getEnv("PDFTOPPM_BIN", "pdftoppm"),
			DPI:      getEnvAsInt("RASTER_DPI", 300),
			MaxPages: getEnvAsInt("RASTER_MAX_PAGES", 0),
		},
		Database: DatabaseConfig{
			DSN:         getEnv("DB_URL", "./resume-ocr.db"),
			DialTimeout: getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration. The OCR credential is the
// one hard requirement: without it the service cannot process anything.
func (c *Config) Validate() error {
	if c.Vision.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "GOOGLE_VISION_API_KEY is required", ErrProviderAuth)
	}
	if c.Vision.Endpoint == "" {
		return NewAppError("CONFIG_ERROR", "GOOGLE_VISION_ENDPOINT is required", ErrInvalidInput)
	}
	if c.Server.Addr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.Raster.DPI <= 0 {
		return NewAppError("CONFIG_ERROR", "RASTER_DPI must be positive", ErrInvalidInput)
	}
	return nil
}
