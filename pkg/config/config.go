package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Store backends
const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StorePostgres = "postgres"
	StoreDynamoDB = "dynamodb"
)

// AuthConfig holds the credential lifecycle settings.
type AuthConfig struct {
	OTPTTL               time.Duration `env:"OTP_TTL" env-default:"5m"`
	SessionTTL           time.Duration `env:"SESSION_TTL" env-default:"720h"`
	PasswordHasher       string        `env:"PASSWORD_HASHER" env-default:"sha256"`
	AdminRoutesProtected bool          `env:"ADMIN_ROUTES_PROTECTED" env-default:"true"`
	RegistrationEnabled  bool          `env:"REGISTRATION_ENABLED" env-default:"true"`
}

// Config is the process-wide configuration, read once at start and passed to
// every component explicitly.
type Config struct {
	Port               int           `env:"API_LOCAL_PORT" env-default:"4001"`
	BaseURL            string        `env:"BASE_URL" env-default:"http://localhost:4001"`
	FrontendURL        string        `env:"FRONTEND_URL" env-default:"http://localhost:3000"`
	CORSAllowedOrigins string        `env:"CORS_ALLOWED_ORIGINS" env-default:"*"`
	RequestTimeout     time.Duration `env:"REQUEST_TIMEOUT" env-default:"30s"`
	LogLevel           string        `env:"LOG_LEVEL" env-default:"info"`
	LogFormat          string        `env:"LOG_FORMAT" env-default:"text"`

	StoreBackend string `env:"STORE_BACKEND" env-default:"memory"`
	DataDir      string `env:"DATA_DIR" env-default:"./data"`

	// Notifier is "log" or "email"
	Notifier string `env:"NOTIFIER" env-default:"log"`

	Auth     AuthConfig
	Google   GoogleConfig
	Database DatabaseConfig
	DynamoDB DynamoDBConfig
	Email    EmailConfig
}

// Load reads optional dotenv files and then the process environment into a Config.
// Missing dotenv files are ignored.
func Load(envFiles ...string) (Config, error) {
	for _, file := range envFiles {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return Config{}, fmt.Errorf("failed to load env file %s: %w", file, err)
		}
		slog.Info("Loaded env file", "file", file)
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerated settings.
func (c Config) Validate() error {
	switch c.StoreBackend {
	case StoreMemory, StoreFile, StorePostgres, StoreDynamoDB:
	default:
		return fmt.Errorf("unsupported STORE_BACKEND %q", c.StoreBackend)
	}
	switch c.Auth.PasswordHasher {
	case "sha256", "bcrypt":
	default:
		return fmt.Errorf("unsupported PASSWORD_HASHER %q", c.Auth.PasswordHasher)
	}
	switch c.Notifier {
	case "log", "email":
	default:
		return fmt.Errorf("unsupported NOTIFIER %q", c.Notifier)
	}
	if c.Auth.OTPTTL <= 0 || c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("OTP_TTL and SESSION_TTL must be positive")
	}
	return nil
}

// AllowedOrigins returns the CORS origins as a slice.
func (c Config) AllowedOrigins() []string {
	origins := SplitAndTrim(c.CORSAllowedOrigins, ",")
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// SlogLevel maps LOG_LEVEL to a slog.Level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
