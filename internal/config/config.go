package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig       `env-prefix:"APP_"`
	Server    ServerConfig    `env-prefix:"SERVER_"`
	Database  DatabaseConfig  `env-prefix:"DB_"`
	Redis     RedisConfig     `env-prefix:"REDIS_"`
	Kafka     KafkaConfig     `env-prefix:"KAFKA_"`
	JWT       JWTConfig       `env-prefix:"JWT_"`
	Mail      MailConfig      `env-prefix:"MAIL_"`
	RateLimit RateLimitConfig `env-prefix:"RATE_LIMIT_"`
	Logging   LoggingConfig   `env-prefix:"LOG_"`
	Telemetry TelemetryConfig `env-prefix:"TELEMETRY_"`
}

type AppConfig struct {
	Name        string `env:"NAME" env-default:"satukas-api"`
	Environment string `env:"ENV" env-default:"development"`
	// FrontendURL and BackendURL are the bases for the links embedded in
	// verification and password-reset emails.
	FrontendURL     string `env:"FRONTEND_URL" env-default:"http://localhost:3000"`
	BackendURL      string `env:"BACKEND_URL" env-default:"http://localhost:5000"`
	VerificationVia string `env:"VERIFICATION_VIA" env-default:"backend"`
}

type ServerConfig struct {
	Port            int           `env:"PORT" env-default:"5000"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" env-default:"10s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" env-default:"10s"`
	IdleTimeout     time.Duration `env:"IDLE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"15s"`
}

type DatabaseConfig struct {
	Host        string `env:"HOST" env-default:"localhost"`
	Port        int    `env:"PORT" env-default:"5432"`
	User        string `env:"USER" env-default:"postgres"`
	Password    string `env:"PASSWORD" env-default:""`
	DBName      string `env:"NAME" env-default:"satukas"`
	SSLMode     string `env:"SSLMODE" env-default:"disable"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" env-default:"true"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

type RedisConfig struct {
	Host     string `env:"HOST" env-default:"localhost"`
	Port     int    `env:"PORT" env-default:"6379"`
	Password string `env:"PASSWORD" env-default:""`
	DB       int    `env:"DB" env-default:"0"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type KafkaConfig struct {
	Enabled bool     `env:"ENABLED" env-default:"false"`
	Brokers []string `env:"BROKERS" env-default:"localhost:9092"`
	Topic   string   `env:"TOPIC" env-default:"auth-events"`
}

type JWTConfig struct {
	// AccessSecret signs both access and refresh tokens; EmailSecret signs
	// email-verification and password-reset tokens. Keeping the secrets
	// separate means a leaked access secret cannot forge recovery tokens.
	AccessSecret string `env:"ACCESS_SECRET" env-required:"true"`
	EmailSecret  string `env:"EMAIL_SECRET" env-required:"true"`

	AccessTokenTTL        time.Duration `env:"ACCESS_TTL" env-default:"15m"`
	RefreshTokenTTL       time.Duration `env:"REFRESH_TTL" env-default:"168h"`
	EmailTokenTTL         time.Duration `env:"EMAIL_TTL" env-default:"24h"`
	PasswordResetTokenTTL time.Duration `env:"PASSWORD_RESET_TTL" env-default:"30m"`

	Issuer string `env:"ISSUER" env-default:"satukas-api"`
}

type MailConfig struct {
	// Driver selects the outbound transport: "smtp" or "api".
	Driver string `env:"DRIVER" env-default:"smtp"`

	SMTPHost     string `env:"SMTP_HOST" env-default:"localhost"`
	SMTPPort     int    `env:"SMTP_PORT" env-default:"587"`
	SMTPUsername string `env:"SMTP_USERNAME" env-default:""`
	SMTPPassword string `env:"SMTP_PASSWORD" env-default:""`
	From         string `env:"FROM" env-default:"no-reply@satukas.id"`

	APIURL string `env:"API_URL" env-default:"https://api.resend.com/emails"`
	APIKey string `env:"API_KEY" env-default:""`
}

type RateLimitConfig struct {
	Enabled bool          `env:"ENABLED" env-default:"true"`
	Limit   int           `env:"LIMIT" env-default:"10"`
	Period  time.Duration `env:"PERIOD" env-default:"1m"`
}

type LoggingConfig struct {
	Level  string `env:"LEVEL" env-default:"info"`
	Format string `env:"FORMAT" env-default:"json"`
}

type TelemetryConfig struct {
	TracingEnabled bool   `env:"TRACING_ENABLED" env-default:"false"`
	JaegerEndpoint string `env:"JAEGER_ENDPOINT" env-default:"http://localhost:14268/api/traces"`
}

// LoadConfig reads .env (if present) and the process environment into an
// immutable Config. Business logic never reads the environment directly;
// everything receives its slice of this struct by injection.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.JWT.AccessSecret == c.JWT.EmailSecret {
		return errors.New("JWT_ACCESS_SECRET and JWT_EMAIL_SECRET must differ")
	}
	if c.App.VerificationVia != "frontend" && c.App.VerificationVia != "backend" {
		return fmt.Errorf("APP_VERIFICATION_VIA must be frontend or backend, got %q", c.App.VerificationVia)
	}
	if c.Mail.Driver != "smtp" && c.Mail.Driver != "api" {
		return fmt.Errorf("MAIL_DRIVER must be smtp or api, got %q", c.Mail.Driver)
	}
	return nil
}
