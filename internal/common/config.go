package common

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/docuvault/constants"
)

// Config holds all application configuration
type Config struct {
	Storage StorageConfig
	OCR     OCRConfig
	LLM     LLMConfig
	Query   QueryConfig
}

// StorageConfig holds storage-related configuration
type StorageConfig struct {
	DBPath     string
	UploadsDir string
	ExportsDir string
	CacheDir   string
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Language            string
	UseGPU              bool
	ConfidenceThreshold float32
	DPI                 int
	MaxPages            int
	MaxFileSizeMB       int
	Extensions          []string
	TessdataDir         string
}

// LLMConfig holds language-model configuration
type LLMConfig struct {
	Provider        string // "openai" | "anthropic"
	Model           string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	Temperature     float32
	MaxTokens       int
	Timeout         time.Duration
	MaxRetries      int
}

// QueryConfig holds adaptive-query configuration
type QueryConfig struct {
	Model         string
	Temperature   float32
	MaxTokens     int
	DocumentLimit int
	BatchSize     int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			DBPath:     getEnv("DOCUVAULT_DB_PATH", "./storage/docuvault.db"),
			UploadsDir: getEnv("DOCUVAULT_UPLOADS_DIR", "./storage/uploads"),
			ExportsDir: getEnv("DOCUVAULT_EXPORTS_DIR", "./storage/exports"),
			CacheDir:   getEnv("DOCUVAULT_CACHE_DIR", "./storage/cache"),
		},
		OCR: OCRConfig{
			Language:            getEnv("OCR_LANGUAGE", "eng"),
			UseGPU:              getEnvAsBool("OCR_USE_GPU", false),
			ConfidenceThreshold: getEnvAsFloat32("OCR_CONFIDENCE_THRESHOLD", 0.5),
			DPI:                 getEnvAsInt("OCR_DPI", 300),
			MaxPages:            getEnvAsInt("OCR_MAX_PAGES", 0),
			MaxFileSizeMB:       getEnvAsInt("MAX_FILE_SIZE_MB", 50),
			Extensions:          getEnvAsList("SUPPORTED_EXTENSIONS", constants.DefaultExtensions),
			TessdataDir:         getEnv("TESSDATA_PREFIX", ""),
		},
		LLM: LLMConfig{
			Provider:        getEnv("LLM_PROVIDER", "openai"),
			Model:           getEnv("LLM_MODEL", "gpt-4o-mini"),
			OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
			AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
			Temperature:     getEnvAsFloat32("LLM_TEMPERATURE", 0.0),
			MaxTokens:       getEnvAsInt("LLM_MAX_TOKENS", 4096),
			Timeout:         getEnvAsDuration("LLM_TIMEOUT", 90*time.Second),
			MaxRetries:      getEnvAsInt("LLM_MAX_RETRIES", 2),
		},
		Query: QueryConfig{
			Model:         getEnv("QUERY_MODEL", "gpt-4o"),
			Temperature:   getEnvAsFloat32("QUERY_TEMPERATURE", 0.2),
			MaxTokens:     getEnvAsInt("QUERY_MAX_TOKENS", 2000),
			DocumentLimit: getEnvAsInt("QUERY_DOCUMENT_LIMIT", 50),
			BatchSize:     getEnvAsInt("BATCH_SIZE", 10),
		},
	}
}

// Validate checks required configuration values.
func (c *Config) Validate() error {
	if c.Storage.DBPath == "" {
		return NewAppError("CONFIG_ERROR", "DOCUVAULT_DB_PATH is required", ErrInvalidInput)
	}
	switch strings.ToLower(c.LLM.Provider) {
	case "openai", "":
		if c.LLM.OpenAIAPIKey == "" {
			return NewAppError("CONFIG_ERROR", "OPENAI_API_KEY is required", ErrInvalidInput)
		}
	case "anthropic":
		if c.LLM.AnthropicAPIKey == "" {
			return NewAppError("CONFIG_ERROR", "ANTHROPIC_API_KEY is required", ErrInvalidInput)
		}
	default:
		return NewAppError("CONFIG_ERROR", "unknown LLM_PROVIDER: "+c.LLM.Provider, ErrInvalidInput)
	}
	return nil
}

// SetupDirectories creates the storage directories if missing.
func (c *Config) SetupDirectories() error {
	for _, dir := range []string{c.Storage.UploadsDir, c.Storage.ExportsDir, c.Storage.CacheDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
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

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
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

func getEnvAsList(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if s := strings.TrimSpace(p); s != "" {
				out = append(out, strings.ToLower(s))
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
