package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	InputFile    string        `yaml:"input_file"`
	OutputDir    string        `yaml:"output_dir"`
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
	WebPQuality  float32       `yaml:"webp_quality"`
	NoPicture    string        `yaml:"no_picture_text"`

	ServerPort    string `yaml:"server_port"`
	PublicBaseURL string `yaml:"public_base_url"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Default returns the built-in settings used when neither the environment
// nor a config file says otherwise.
func Default() Config {
	return Config{
		InputFile:    "din_excel_fil.xlsx",
		OutputDir:    ".",
		FetchTimeout: 10 * time.Second,
		WebPQuality:  75,
		NoPicture:    "No picture available",
		ServerPort:   "8080",
		LogLevel:     "info",
		LogFormat:    "text",
	}
}

// Load reads configuration from the environment. When IMAGEFETCH_CONFIG
// points at a YAML file its values are applied first and environment
// variables win over them.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("IMAGEFETCH_CONFIG"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}

	cfg.InputFile = getEnv("INPUT_FILE", cfg.InputFile)
	cfg.OutputDir = getEnv("OUTPUT_DIR", cfg.OutputDir)
	cfg.FetchTimeout = getEnvAsDuration("FETCH_TIMEOUT_SECONDS", cfg.FetchTimeout)
	cfg.WebPQuality = getEnvAsFloat("WEBP_QUALITY", cfg.WebPQuality)
	cfg.NoPicture = getEnv("NO_PICTURE_TEXT", cfg.NoPicture)
	cfg.ServerPort = getEnv("PORT", cfg.ServerPort)
	cfg.PublicBaseURL = getEnv("PUBLIC_BASE_URL", cfg.PublicBaseURL)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c Config) Validate() error {
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive, got %s", c.FetchTimeout)
	}
	if c.WebPQuality < 0 || c.WebPQuality > 100 {
		return fmt.Errorf("webp quality must be within 0-100, got %v", c.WebPQuality)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output dir must not be empty")
	}
	return nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return time.Duration(value) * time.Second
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float32) float32 {
	if value, err := strconv.ParseFloat(getEnv(key, ""), 32); err == nil {
		return float32(value)
	}
	return fallback
}
