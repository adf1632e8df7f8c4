package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	// TokenTTL bounds bearer token validity.
	TokenTTL time.Duration `env:"TOKEN_TTL, default=24h"`
	// CodeLength is the confirmation code length.
	CodeLength int `env:"CONFIRMATION_CODE_LENGTH, default=6"`
	// AuditWorkers sizes the async audit dispatcher pool.
	AuditWorkers int `env:"AUDIT_WORKERS, default=4"`

	Mongo  MongoConfig
	Redis  RedisConfig
	SMTP   SMTPConfig
	Signup SignupConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=review_platform"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type SMTPConfig struct {
	// Enabled selects the real SMTP transport; when false the confirmation
	// code is written to the log instead.
	Enabled  bool   `env:"SMTP_ENABLED,  default=false"`
	Host     string `env:"SMTP_HOST,     default=localhost"`
	Port     int    `env:"SMTP_PORT,     default=25"`
	From     string `env:"SMTP_FROM,     default=noreply@reviewhub.local"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
}

type SignupConfig struct {
	// ThrottleLimit requests per ThrottleWindow per email address.
	ThrottleLimit  int           `env:"SIGNUP_THROTTLE_LIMIT,  default=5"`
	ThrottleWindow time.Duration `env:"SIGNUP_THROTTLE_WINDOW, default=1h"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
