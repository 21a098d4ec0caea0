package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	BackendGenerativeAI = "generative-ai-go"
	BackendGenAI        = "genai"
)

// Config holds the application configuration.
type Config struct {
	GeminiAPIKey string `yaml:"-"`

	Backend     string  `yaml:"backend"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`

	MaxAttempts    int           `yaml:"max_attempts"`
	InitialBackoff time.Duration `yaml:"initial_backoff"`
	ContextWindow  int           `yaml:"context_window"`
	RevealDelay    time.Duration `yaml:"reveal_delay"`

	LogFile    string `yaml:"log_file"`
	LogLevel   string `yaml:"log_level"`
	ListenAddr string `yaml:"listen_addr"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Backend:        BackendGenerativeAI,
		Model:          "gemini-2.5-flash",
		Temperature:    0.8,
		MaxAttempts:    3,
		InitialBackoff: 2 * time.Second,
		ContextWindow:  8,
		RevealDelay:    3800 * time.Millisecond,
		LogLevel:       "info",
		ListenAddr:     ":8080",
	}
}

// LoadConfig loads the defaults, then the YAML file at path (if any), then
// environment variables.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	if cfg.GeminiAPIKey == "" {
		cfg.GeminiAPIKey = os.Getenv("API_KEY")
	}
	if v := os.Getenv("PHANTOM_BACKEND"); v != "" {
		cfg.Backend = v
	}
	if v := os.Getenv("PHANTOM_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("PHANTOM_LISTEN"); v != "" {
		cfg.ListenAddr = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first unusable setting.
func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable is not set")
	}
	switch c.Backend {
	case BackendGenerativeAI, BackendGenAI:
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be at least 1, got %d", c.MaxAttempts)
	}
	if c.ContextWindow < 1 {
		return fmt.Errorf("context_window must be at least 1, got %d", c.ContextWindow)
	}
	if c.InitialBackoff < 0 || c.RevealDelay < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	return nil
}
