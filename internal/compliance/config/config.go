// Package config loads the service configuration from a YAML file, an
// optional .env file and the process environment, in that order of
// increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where the service looks for its YAML file.
const DefaultPath = "internal/compliance/config/config.yaml"

type Config struct {
	GRPCPort int `yaml:"GRPC_PORT"`
	HTTPPort int `yaml:"HTTP_PORT"`

	DBDriver   string `yaml:"DB_DRIVER"`
	DBHost     string `yaml:"DB_HOST"`
	DBPort     int    `yaml:"DB_PORT"`
	DBUser     string `yaml:"DB_USER"`
	DBPassword string `yaml:"DB_PASSWORD"`
	DBName     string `yaml:"DB_NAME"`
	DBSSLMode  string `yaml:"DB_SSLMODE"`

	KafkaBrokers  []string `yaml:"KAFKA_BROKERS"`
	Topic         string   `yaml:"TOPIC"`
	ConsumerGroup string   `yaml:"CONSUMER_GROUP"`

	JWTSecret string `yaml:"JWT_SECRET"`

	LLMProvider   string        `yaml:"LLM_PROVIDER"`
	LLMModel      string        `yaml:"LLM_MODEL"`
	LLMAPIKey     string        `yaml:"LLM_API_KEY"`
	LLMBaseURL    string        `yaml:"LLM_BASE_URL"`
	LLMTimeout    time.Duration `yaml:"LLM_TIMEOUT"`
	LLMMaxRetries int           `yaml:"LLM_MAX_RETRIES"`

	ChatHistoryWindow int    `yaml:"CHAT_HISTORY_WINDOW"`
	SeedOnStart       bool   `yaml:"SEED_ON_START"`
	LogLevel          string `yaml:"LOG_LEVEL"`
}

// Default returns the settings used for any key left unset.
func Default() *Config {
	return &Config{
		GRPCPort:          50051,
		HTTPPort:          8080,
		DBDriver:          "postgres",
		DBHost:            "localhost",
		DBPort:            5432,
		DBUser:            "postgres",
		DBName:            "compliance",
		DBSSLMode:         "disable",
		Topic:             "compliance-events",
		ConsumerGroup:     "compliance-events-log",
		LLMProvider:       "gemini",
		LLMModel:          "gemini-2.5-pro",
		LLMTimeout:        60 * time.Second,
		LLMMaxRetries:     1,
		ChatHistoryWindow: 20,
		LogLevel:          "info",
	}
}

// Load reads path (a missing file is not an error), then .env, then the
// environment. Keys are the yaml tags of Config.
func Load(path string) (*Config, error) {
	cfg := Default()

	file, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	// .env only fills variables the environment does not already set
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := applyEnv(cfg, env.ToMap(os.Environ())); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides cfg with the variables in environ. Variables are named
// by the yaml tags, so the file and the environment share one key set.
func applyEnv(cfg *Config, environ map[string]string) error {
	opts := env.Options{TagName: "yaml", Environment: environ}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return fmt.Errorf("invalid environment: %w", err)
	}
	cfg.KafkaBrokers = compact(cfg.KafkaBrokers)
	return nil
}

// compact trims list items and drops blank ones, so "a, b," yields [a b].
func compact(list []string) []string {
	var out []string
	for _, item := range list {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
