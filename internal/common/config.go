package common

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const configPathEnv = "CASEFILE_CONFIG"

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Store    StoreConfig    `yaml:"store"`
	LLM      LLMConfig      `yaml:"llm"`
	Pipeline PipelineConfig `yaml:"pipeline"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	MaxRequestMB   int64         `yaml:"maxRequestMb"`
	RequestTimeout time.Duration `yaml:"requestTimeout"`
}

// StoreConfig holds result persistence configuration
type StoreConfig struct {
	Path string `yaml:"path"` // sqlite database file
}

// LLMConfig holds field-extraction client configuration
type LLMConfig struct {
	BaseURL     string        `yaml:"baseUrl"`
	APIKey      string        `yaml:"apiKey"`
	Model       string        `yaml:"model"`
	Temperature float32       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
	CallsPerMin int           `yaml:"callsPerMin"`
}

// PipelineConfig holds processing behavior flags
type PipelineConfig struct {
	Workers        int  `yaml:"workers"`
	ValidateFields bool `yaml:"validateFields"`
}

// LoadConfig reads the optional YAML config file named by CASEFILE_CONFIG,
// then applies environment overrides. Env always wins.
func LoadConfig() *Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err == nil {
			// Unmarshal over the defaults; absent keys keep their values.
			_ = yaml.Unmarshal(raw, cfg)
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           ":8080",
			MaxRequestMB:   32,
			RequestTimeout: 5 * time.Minute,
		},
		Store: StoreConfig{Path: "casefile.db"},
		LLM: LLMConfig{
			BaseURL:     "https://api.openai.com/v1",
			Model:       "gpt-4o-mini",
			Temperature: 0.1,
			Timeout:     45 * time.Second,
			CallsPerMin: 20,
		},
		Pipeline: PipelineConfig{
			Workers:        4,
			ValidateFields: true,
		},
	}
}

func (c *Config) applyEnvOverrides() {
	c.Server.Addr = getEnv("HTTP_ADDR", c.Server.Addr)
	c.Server.MaxRequestMB = int64(getEnvAsInt("MAX_REQUEST_MB", int(c.Server.MaxRequestMB)))
	c.Store.Path = getEnv("STORE_PATH", c.Store.Path)
	c.LLM.BaseURL = getEnv("OPENAI_BASE_URL", c.LLM.BaseURL)
	c.LLM.APIKey = getEnv("OPENAI_API_KEY", c.LLM.APIKey)
	c.LLM.Model = getEnv("OPENAI_MODEL", c.LLM.Model)
	c.LLM.Temperature = getEnvAsFloat32("OPENAI_TEMPERATURE", c.LLM.Temperature)
	c.LLM.Timeout = getEnvAsDuration("OPENAI_TIMEOUT", c.LLM.Timeout)
	c.LLM.CallsPerMin = getEnvAsInt("OPENAI_CALLS_PER_MIN", c.LLM.CallsPerMin)
	c.Pipeline.Workers = getEnvAsInt("PIPELINE_WORKERS", c.Pipeline.Workers)
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.LLM.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "OPENAI_API_KEY is required", ErrInvalidInput)
	}
	if c.Store.Path == "" {
		return NewAppError("CONFIG_ERROR", "STORE_PATH is required", ErrInvalidInput)
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
