package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the client.
type Config struct {
	App    AppConfig
	API    APIConfig
	Live   LiveConfig
	State  StateConfig
	Logger LoggerConfig
}

// AppConfig identifies the client installation.
type AppConfig struct {
	Name string
	Env  string
}

// APIConfig points at the deal room backend collaborators.
type APIConfig struct {
	BaseURL        string
	TimeoutSeconds int
}

// LiveConfig points at the live message channel. The address and transport
// are configuration only; nothing in the core depends on them.
type LiveConfig struct {
	URL string
}

// StateConfig controls where the durable session store lives.
type StateConfig struct {
	Dir string
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables, applying defaults
// where possible. A .env file is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		App: AppConfig{
			Name: getEnv("APP_NAME", "dealroom-client"),
			Env:  getEnv("APP_ENV", "development"),
		},
		API: APIConfig{
			BaseURL:        getEnv("DEALROOM_API_URL", "https://dealbackend.onrender.com/api"),
			TimeoutSeconds: getEnvAsInt("DEALROOM_HTTP_TIMEOUT_SECONDS", 15),
		},
		Live: LiveConfig{
			URL: getEnv("DEALROOM_LIVE_URL", "wss://dealbackend.onrender.com/live"),
		},
		State: StateConfig{
			Dir: getEnv("DEALROOM_STATE_DIR", defaultStateDir()),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "warn"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
	}

	return cfg, nil
}

// RequestTimeout returns the configured collaborator call timeout.
func (a APIConfig) RequestTimeout() time.Duration {
	if a.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(a.TimeoutSeconds) * time.Second
}

func defaultStateDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, "dealroom")
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}
