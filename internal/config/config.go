package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Provider ProviderConfig
}

type ServerConfig struct {
	Port            string
	Env             string // dev or prod
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	TrustedOrigins  []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// AuthConfig holds token and registration secrets. Both the signing secret
// and the admin code are required at startup; the process refuses to boot
// without them rather than failing per request.
type AuthConfig struct {
	TokenBackend         string // "jwt" (HS256) or "paseto" (v4.local)
	TokenSecret          []byte
	AccessTokenDuration  time.Duration
	RefreshTokenDuration time.Duration
	AdminCode            string
}

// ProviderConfig selects which identity provider holds credential custody.
// The local provider needs nothing extra; firebase needs project API access.
type ProviderConfig struct {
	Kind           string // "local" or "firebase"
	FirebaseAPIKey string
}

// Load reads configuration from environment variables.
// A .env file is honored if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			Env:             getEnv("APP_ENV", "dev"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 15*time.Second),
			TrustedOrigins:  getSliceEnv("TRUSTED_ORIGINS", []string{"http://localhost:3000"}),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "gymtrack"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Auth: AuthConfig{
			TokenBackend:         getEnv("TOKEN_BACKEND", "jwt"),
			TokenSecret:          []byte(getEnv("TOKEN_SECRET", "")),
			AccessTokenDuration:  getDurationEnv("ACCESS_TOKEN_DURATION", 30*time.Minute),
			RefreshTokenDuration: getDurationEnv("REFRESH_TOKEN_DURATION", 7*24*time.Hour),
			AdminCode:            getEnv("ADMIN_SECRET_CODE", ""),
		},
		Provider: ProviderConfig{
			Kind:           getEnv("AUTH_PROVIDER", "local"),
			FirebaseAPIKey: getEnv("FIREBASE_API_KEY", ""),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Auth.TokenBackend {
	case "jwt":
		if len(c.Auth.TokenSecret) == 0 {
			return fmt.Errorf("TOKEN_SECRET is required")
		}
	case "paseto":
		// v4.local requires a 256-bit symmetric key
		if len(c.Auth.TokenSecret) != 32 {
			return fmt.Errorf("TOKEN_SECRET must be exactly 32 bytes for the paseto backend, got %d", len(c.Auth.TokenSecret))
		}
	default:
		return fmt.Errorf("unknown TOKEN_BACKEND %q (want jwt or paseto)", c.Auth.TokenBackend)
	}

	if c.Auth.AdminCode == "" {
		return fmt.Errorf("ADMIN_SECRET_CODE is required")
	}

	switch c.Provider.Kind {
	case "local":
	case "firebase":
		if c.Provider.FirebaseAPIKey == "" {
			return fmt.Errorf("FIREBASE_API_KEY is required when AUTH_PROVIDER=firebase")
		}
	default:
		return fmt.Errorf("unknown AUTH_PROVIDER %q (want local or firebase)", c.Provider.Kind)
	}

	return nil
}

func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// Address returns Redis connection address (host:port)
func (c *RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDevelopment returns true if the environment is set to dev
func (c *ServerConfig) IsDevelopment() bool {
	return c.Env == "dev"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	seconds, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return time.Duration(seconds) * time.Second
}

func getSliceEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	if len(result) == 0 {
		return defaultValue
	}

	return result
}
