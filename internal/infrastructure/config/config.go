package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=5000"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Session SessionConfig
	Mongo   MongoConfig
	Redis   RedisConfig
	Mail    MailConfig
	HTTP    HTTPConfig
	Admin   AdminConfig
}

type SessionConfig struct {
	Secret       string        `env:"SESSION_SECRET, required"`
	TTL          time.Duration `env:"SESSION_TTL,    default=24h"`
	CookieSecure bool          `env:"COOKIE_SECURE,  default=false"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=complaint_portal"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	DB       int    `env:"REDIS_DB,       default=0"`
	Password string `env:"REDIS_PASSWORD"`
}

// MailConfig leaves Host empty to log outgoing mail instead of sending it.
type MailConfig struct {
	Host        string        `env:"SMTP_HOST"`
	Port        int           `env:"SMTP_PORT,         default=587"`
	Username    string        `env:"EMAIL_USER"`
	Password    string        `env:"EMAIL_PASS"`
	Workers     int           `env:"MAIL_WORKERS,      default=4"`
	SendTimeout time.Duration `env:"MAIL_SEND_TIMEOUT, default=15s"`
}

type HTTPConfig struct {
	UploadDir      string   `env:"UPLOAD_DIR,           default=uploads"`
	MaxUploadMB    int      `env:"MAX_UPLOAD_MB,        default=10"`
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS, default=http://localhost:5173"`
}

// AdminConfig seeds the first administrator when both fields are set.
type AdminConfig struct {
	Email    string `env:"DEFAULT_ADMIN_EMAIL"`
	Password string `env:"DEFAULT_ADMIN_PASSWORD"`
}

func (c *Config) IsProduction() bool { return c.Env == "production" }

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if len(cfg.Session.Secret) < 16 {
		return nil, fmt.Errorf("load config: SESSION_SECRET must be at least 16 characters")
	}
	return &cfg, nil
}
