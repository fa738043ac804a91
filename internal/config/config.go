package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	DatabaseURL      string
	ServerPort       string
	OpenAIKey        string
	AIProvider       string
	AIModel          string
	AIBaseURL        string
	RedisURL         string
	RabbitMQURL      string
	RabbitMQPrefetch int
	Timezone         string
	RateLimit        string
	ReportOutputDir  string
	AllowedOrigins   string
	EnableHSTS       bool
	WorkerDebugMode  bool
	ServerDebugMode  bool
	OTELEnabled      bool
	OTELEndpoint     string
}

// fileConfig mirrors Config for the optional YAML overlay file. Pointer
// fields distinguish "absent" from "explicitly empty".
type fileConfig struct {
	DatabaseURL      *string `yaml:"database_url"`
	ServerPort       *string `yaml:"server_port"`
	OpenAIKey        *string `yaml:"openai_api_key"`
	AIProvider       *string `yaml:"ai_provider"`
	AIModel          *string `yaml:"ai_model"`
	AIBaseURL        *string `yaml:"ai_base_url"`
	RedisURL         *string `yaml:"redis_url"`
	RabbitMQURL      *string `yaml:"rabbitmq_url"`
	RabbitMQPrefetch *int    `yaml:"rabbitmq_prefetch"`
	Timezone         *string `yaml:"timezone"`
	RateLimit        *string `yaml:"rate_limit"`
	ReportOutputDir  *string `yaml:"report_output_dir"`
	AllowedOrigins   *string `yaml:"allowed_origins"`
	EnableHSTS       *bool   `yaml:"enable_hsts"`
	OTELEnabled      *bool   `yaml:"otel_enabled"`
	OTELEndpoint     *string `yaml:"otel_endpoint"`
}

// Load loads configuration from an optional YAML file (CONFIG_FILE) overlaid
// with environment variables. Environment variables always win.
func Load() (*Config, error) {
	cfg := &Config{
		ServerPort:       "8080",
		AIProvider:       "openai",
		RedisURL:         "redis://localhost:6379/0",
		RabbitMQPrefetch: 1,
		Timezone:         "America/Bogota",
		RateLimit:        "30-M",
		ReportOutputDir:  "reports",
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.RabbitMQURL == "" {
		return nil, fmt.Errorf("RABBITMQ_URL is required (report generation runs through the job queue)")
	}

	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setString(&c.DatabaseURL, fc.DatabaseURL)
	setString(&c.ServerPort, fc.ServerPort)
	setString(&c.OpenAIKey, fc.OpenAIKey)
	setString(&c.AIProvider, fc.AIProvider)
	setString(&c.AIModel, fc.AIModel)
	setString(&c.AIBaseURL, fc.AIBaseURL)
	setString(&c.RedisURL, fc.RedisURL)
	setString(&c.RabbitMQURL, fc.RabbitMQURL)
	setString(&c.Timezone, fc.Timezone)
	setString(&c.RateLimit, fc.RateLimit)
	setString(&c.ReportOutputDir, fc.ReportOutputDir)
	setString(&c.AllowedOrigins, fc.AllowedOrigins)
	setString(&c.OTELEndpoint, fc.OTELEndpoint)
	if fc.RabbitMQPrefetch != nil {
		c.RabbitMQPrefetch = *fc.RabbitMQPrefetch
	}
	if fc.EnableHSTS != nil {
		c.EnableHSTS = *fc.EnableHSTS
	}
	if fc.OTELEnabled != nil {
		c.OTELEnabled = *fc.OTELEnabled
	}

	return nil
}

func (c *Config) applyEnv() {
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.ServerPort = getEnv("SERVER_PORT", c.ServerPort)
	c.OpenAIKey = getEnv("OPENAI_API_KEY", c.OpenAIKey)
	c.AIProvider = getEnv("AI_PROVIDER", c.AIProvider)
	c.AIModel = getEnv("AI_MODEL", c.AIModel)
	c.AIBaseURL = getEnv("AI_BASE_URL", c.AIBaseURL)
	c.RedisURL = getEnv("REDIS_URL", c.RedisURL)
	c.RabbitMQURL = getEnv("RABBITMQ_URL", c.RabbitMQURL)
	c.RabbitMQPrefetch = getEnvInt("RABBITMQ_PREFETCH", c.RabbitMQPrefetch)
	c.Timezone = getEnv("TIMEZONE", c.Timezone)
	c.RateLimit = getEnv("RATE_LIMIT", c.RateLimit)
	c.ReportOutputDir = getEnv("REPORT_OUTPUT_DIR", c.ReportOutputDir)
	c.AllowedOrigins = getEnv("ALLOWED_ORIGINS", c.AllowedOrigins)
	c.EnableHSTS = getEnvBool("ENABLE_HSTS", c.EnableHSTS)
	c.WorkerDebugMode = getEnvBool("WORKER_DEBUG_MODE", c.WorkerDebugMode)
	c.ServerDebugMode = getEnvBool("SERVER_DEBUG_MODE", c.ServerDebugMode)
	c.OTELEnabled = getEnvBool("OTEL_ENABLED", c.OTELEnabled)
	c.OTELEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", c.OTELEndpoint)
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
