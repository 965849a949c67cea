package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendGemini = "gemini"
	BackendClaude = "claude"
	BackendOllama = "ollama"
)

type Config struct {
	ListenAddr       string
	TextBackend      string
	GeminiAPIKey     string
	GeminiTextModel  string
	GeminiImageModel string
	ClaudeAPIKey     string
	ClaudeModel      string
	OllamaHost       string
	OllamaModel      string
	ProfileFile      string
	GatewayTimeout   time.Duration
	SessionTTL       time.Duration
	LogLevel         string
	LogFile          string
}

// LoadEnvFile populates unset environment variables from a dotenv file.
// A missing file is not an error.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func Load() (*Config, error) {
	gatewayTimeout, err := getDuration("GATEWAY_TIMEOUT", 2*time.Minute)
	if err != nil {
		return nil, err
	}
	sessionTTL, err := getDuration("SESSION_TTL", 2*time.Hour)
	if err != nil {
		return nil, err
	}

	return &Config{
		ListenAddr:       getEnv("LISTEN_ADDR", ":8080"),
		TextBackend:      getEnv("TEXT_BACKEND", BackendGemini),
		GeminiAPIKey:     getEnv("GEMINI_API_KEY", os.Getenv("API_KEY")),
		GeminiTextModel:  getEnv("GEMINI_TEXT_MODEL", "gemini-2.5-flash"),
		GeminiImageModel: getEnv("GEMINI_IMAGE_MODEL", "imagen-4.0-generate-001"),
		ClaudeAPIKey:     getEnv("CLAUDE_API_KEY", ""),
		ClaudeModel:      getEnv("CLAUDE_MODEL", "claude-sonnet-4-5"),
		OllamaHost:       getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OllamaModel:      getEnv("OLLAMA_MODEL", "llama3.1"),
		ProfileFile:      getEnv("PROFILE_FILE", ""),
		GatewayTimeout:   gatewayTimeout,
		SessionTTL:       sessionTTL,
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFile:          getEnv("LOG_FILE", ""),
	}, nil
}

// Validate reports configuration the process cannot start with.
func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return errors.New("GEMINI_API_KEY (or API_KEY) is required")
	}
	switch c.TextBackend {
	case BackendGemini, BackendOllama:
	case BackendClaude:
		if c.ClaudeAPIKey == "" {
			return errors.New("CLAUDE_API_KEY is required when TEXT_BACKEND=claude")
		}
	default:
		return fmt.Errorf("unknown TEXT_BACKEND %q", c.TextBackend)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val, exists := os.LookupEnv(key)
	if !exists || val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return d, nil
}
