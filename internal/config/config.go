package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Session storage backends.
const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

// secretsDir is where Docker mounts secrets.
var secretsDir = "/run/secrets"

// Config holds the application configuration.
type Config struct {
	Env         string `envconfig:"ENV" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"debug"`
	LogEncoding string `envconfig:"LOG_ENCODING" default:"console"`

	ServerPort         string        `envconfig:"SERVER_PORT" default:"5000"`
	ServerReadTimeout  time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	ServerWriteTimeout time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"150s"`
	StaticDir          string        `envconfig:"STATIC_DIR"`

	// Chat and image generation (OpenAI compatible)
	OpenAIAPIKey  string `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL string `envconfig:"OPENAI_BASE_URL"`
	ChatModel     string `envconfig:"CHAT_MODEL" default:"gpt-4o"`
	ChatMaxTokens int    `envconfig:"CHAT_MAX_TOKENS" default:"3000"`
	AIJSONMode    bool   `envconfig:"AI_JSON_MODE" default:"false"`
	ImageModel    string `envconfig:"IMAGE_MODEL" default:"gpt-image-1"`
	ImageSize     string `envconfig:"IMAGE_SIZE" default:"1024x1024"`

	// Audio generation
	AIMLAPIKey           string        `envconfig:"AIMLAPI_KEY"`
	AudioAPIURL          string        `envconfig:"AUDIO_API_URL" default:"https://api.aimlapi.com/v2/generate/audio"`
	AudioModel           string        `envconfig:"AUDIO_MODEL" default:"stable-audio"`
	AudioSteps           int           `envconfig:"AUDIO_STEPS" default:"100"`
	AudioPollInterval    time.Duration `envconfig:"AUDIO_POLL_INTERVAL" default:"2s"`
	AudioPollAttempts    int           `envconfig:"AUDIO_POLL_ATTEMPTS" default:"30"`
	MusicPrompt          string        `envconfig:"MUSIC_PROMPT" default:"gentle and whimsical background music for a children's story"`
	MusicDurationSeconds int           `envconfig:"MUSIC_DURATION_SECONDS" default:"30"`

	AITimeout time.Duration `envconfig:"AI_TIMEOUT" default:"120s"`

	// Sessions
	SessionBackend    string        `envconfig:"SESSION_BACKEND" default:"memory"`
	SessionCookieName string        `envconfig:"SESSION_COOKIE_NAME" default:"storybook_session"`
	SessionTTL        time.Duration `envconfig:"SESSION_TTL" default:"24h"`

	// Redis, used by the redis session backend and the rate limiter store
	RedisAddr string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisDB   int    `envconfig:"REDIS_DB" default:"0"`

	// Secret, no envconfig tag
	RedisPassword string `ignored:"true"`

	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:5000"`
	RateLimitPerMinute uint   `envconfig:"RATE_LIMIT_PER_MINUTE" default:"0"`
}

// GetAllowedOrigins splits the CORSAllowedOrigins string into a slice.
func (c *Config) GetAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}
	return strings.Split(strings.ReplaceAll(c.CORSAllowedOrigins, " ", ""), ",")
}

// Validate checks values that have no sensible fallback.
func (c *Config) Validate() error {
	switch c.SessionBackend {
	case SessionBackendMemory, SessionBackendRedis:
	default:
		return fmt.Errorf("unknown SESSION_BACKEND %q", c.SessionBackend)
	}
	if c.AudioPollAttempts < 1 {
		return fmt.Errorf("AUDIO_POLL_ATTEMPTS must be positive, got %d", c.AudioPollAttempts)
	}
	if c.AudioPollInterval < 0 {
		return fmt.Errorf("AUDIO_POLL_INTERVAL must not be negative, got %s", c.AudioPollInterval)
	}
	if c.MusicDurationSeconds < 1 {
		return fmt.Errorf("MUSIC_DURATION_SECONDS must be positive, got %d", c.MusicDurationSeconds)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	return nil
}

// LoadConfig loads configuration from an optional .env file, environment
// variables and Docker secrets.
func LoadConfig(envFilePath string) (*Config, error) {
	if envFilePath != "" {
		if _, err := os.Stat(envFilePath); err == nil {
			if err := godotenv.Load(envFilePath); err != nil {
				log.Printf("Warning: Could not load %s file: %v", envFilePath, err)
			} else {
				log.Printf("Loaded configuration from %s", envFilePath)
			}
		} else if !os.IsNotExist(err) {
			log.Printf("Warning: Error checking %s file: %v", envFilePath, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("error processing env vars: %w", err)
	}

	// Credentials may come from the environment or from secrets. Both are
	// optional here; a missing key fails only the operations that need it.
	if cfg.OpenAIAPIKey == "" {
		cfg.OpenAIAPIKey = optionalSecret("openai_api_key")
	}
	if cfg.AIMLAPIKey == "" {
		cfg.AIMLAPIKey = optionalSecret("aimlapi_key")
	}
	cfg.RedisPassword = optionalSecret("redis_password")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ReadSecret reads a secret from the Docker secrets directory.
func ReadSecret(secretName string) (string, error) {
	filePath := filepath.Join(secretsDir, secretName)
	secretBytes, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read secret file %s: %w", filePath, err)
	}
	secret := strings.TrimSpace(string(secretBytes))
	if secret == "" {
		return "", fmt.Errorf("secret file %s is empty", filePath)
	}
	return secret, nil
}

func optionalSecret(name string) string {
	secret, err := ReadSecret(name)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Printf("Optional secret '%s' could not be read: %v", name, err)
		}
		return ""
	}
	log.Printf("Secret '%s' loaded.", name)
	return secret
}
