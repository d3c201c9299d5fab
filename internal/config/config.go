package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	ServerPort            string `yaml:"server_port"`
	FrontendURL           string `yaml:"frontend_url"`
	DatabasePath          string `yaml:"database_path"`
	AIProvider            string `yaml:"ai_provider"`
	OpenAIKey             string `yaml:"openai_api_key"`
	AIModel               string `yaml:"ai_model"`
	AIBaseURL             string `yaml:"ai_base_url"`
	ReferenceOffsetMin    int    `yaml:"reference_offset_minutes"`
	NightOwlCutoffHour    int    `yaml:"night_owl_cutoff_hour"`
	AIRateLimit           string `yaml:"ai_rate_limit"`
	ServerDebugMode       bool   `yaml:"server_debug_mode"`
	ServerLogMode         string `yaml:"server_log_mode"`
	OTELEnabled           bool   `yaml:"otel_enabled"`
	OTELEndpoint          string `yaml:"otel_endpoint"`
}

// Load loads configuration from environment variables, optionally overlaid
// on a YAML file named by CONFIG_FILE. Environment variables win.
func Load() (*Config, error) {
	cfg := &Config{
		ServerPort:         "8080",
		FrontendURL:        "http://localhost:3000",
		DatabasePath:       "planner.db",
		AIProvider:         "openai",
		ServerLogMode:      "production",
		ReferenceOffsetMin: 480,
		NightOwlCutoffHour: 4,
		AIRateLimit:        "5-M",
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)

	if cfg.NightOwlCutoffHour < 0 || cfg.NightOwlCutoffHour > 23 {
		return nil, fmt.Errorf("NIGHT_OWL_CUTOFF_HOUR must be in [0,23], got %d", cfg.NightOwlCutoffHour)
	}

	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.ServerPort = getEnv("SERVER_PORT", cfg.ServerPort)
	cfg.FrontendURL = getEnv("FRONTEND_URL", cfg.FrontendURL)
	cfg.DatabasePath = getEnv("DATABASE_PATH", cfg.DatabasePath)
	cfg.AIProvider = getEnv("AI_PROVIDER", cfg.AIProvider)
	cfg.OpenAIKey = getEnv("OPENAI_API_KEY", cfg.OpenAIKey)
	cfg.AIModel = getEnv("AI_MODEL", cfg.AIModel)
	cfg.AIBaseURL = getEnv("AI_BASE_URL", cfg.AIBaseURL)
	cfg.ReferenceOffsetMin = getEnvInt("REFERENCE_OFFSET_MINUTES", cfg.ReferenceOffsetMin)
	cfg.NightOwlCutoffHour = getEnvInt("NIGHT_OWL_CUTOFF_HOUR", cfg.NightOwlCutoffHour)
	cfg.AIRateLimit = getEnv("AI_RATE_LIMIT", cfg.AIRateLimit)
	cfg.ServerDebugMode = getEnvBool("SERVER_DEBUG_MODE", cfg.ServerDebugMode)
	cfg.ServerLogMode = getEnv("SERVER_LOG_MODE", cfg.ServerLogMode)
	cfg.OTELEnabled = getEnvBool("OTEL_ENABLED", cfg.OTELEnabled)
	cfg.OTELEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.OTELEndpoint)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
