package config

import (
	"context"
	"fmt"
	"net/url"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Server   ServerConfig   `env:",prefix=SERVER_"`
	Postgres PostgresConfig `env:",prefix=POSTGRES_"`
	Redis    RedisConfig    `env:",prefix=REDIS_"`
	Auth     AuthConfig     `env:",prefix=AUTH_"`
	SMTP     SMTPConfig     `env:",prefix=SMTP_"`
	Mail     MailConfig     `env:",prefix="`
	Security SecurityConfig `env:",prefix="`
	CORS     CORSConfig     `env:",prefix=CORS_"`
	Env      string         `env:"ENV,default=development"`
}

type ServerConfig struct {
	Port         string   `env:"PORT,default=8080"`
	Host         string   `env:"HOST,default=0.0.0.0"`
	ReadTimeout  Duration `env:"READ_TIMEOUT,default=15s"`
	WriteTimeout Duration `env:"WRITE_TIMEOUT,default=15s"`
}

type PostgresConfig struct {
	Host     string `env:"HOST,default=localhost"`
	Port     string `env:"PORT,default=5432"`
	User     string `env:"USER,default=accounts"`
	Password string `env:"PASSWORD,default=accounts_password"`
	DBName   string `env:"DB,default=accounts_db"`
	SSLMode  string `env:"SSLMODE,default=disable"`
}

type RedisConfig struct {
	Host     string `env:"HOST,default=localhost"`
	Port     string `env:"PORT,default=6379"`
	Password string `env:"PASSWORD,default="`
	DB       int    `env:"DB,default=0"`
}

// AuthConfig drives session-token issuance and the sp_auth cookie.
type AuthConfig struct {
	Secret          string   `env:"SECRET,required"`
	SessionTTL      Duration `env:"SESSION_TTL,default=12h"`
	VerificationTTL Duration `env:"VERIFICATION_TTL,default=24h"`
	CookieName      string   `env:"COOKIE_NAME,default=sp_auth"`
}

// SMTPConfig enables email delivery only when all four settings are present.
type SMTPConfig struct {
	Host string `env:"HOST"`
	Port int    `env:"PORT"`
	User string `env:"USER"`
	Pass string `env:"PASS"`
}

type MailConfig struct {
	FrontendURL string `env:"FRONTEND_URL,default=http://localhost:3000"`
	From        string `env:"EMAIL_FROM"`
	BaseDomain  string `env:"FRONTEND_BASE_DOMAIN"`
}

type SecurityConfig struct {
	BCryptCost        int      `env:"BCRYPT_COST,default=12"`
	RateLimitRequests int      `env:"RATE_LIMIT_REQUESTS,default=10"`
	RateLimitWindow   Duration `env:"RATE_LIMIT_WINDOW,default=1m"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"ALLOWED_ORIGINS,default=http://localhost:3000"`
	AllowedMethods []string `env:"ALLOWED_METHODS,default=GET,POST,PATCH,DELETE,OPTIONS"`
	AllowedHeaders []string `env:"ALLOWED_HEADERS,default=Content-Type,Authorization"`
}

// DSN returns the PostgreSQL connection string in key=value form.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode)
}

// Address returns the Redis connection address.
func (r RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

// Configured reports whether email delivery is enabled: host, port, user, and
// password must all be set, otherwise verification links are logged instead.
func (s SMTPConfig) Configured() bool {
	return s.Host != "" && s.Port != 0 && s.User != "" && s.Pass != ""
}

// FromAddress returns the sender address: EMAIL_FROM when set, otherwise a
// no-reply address on FRONTEND_BASE_DOMAIN, otherwise a development fallback.
func (m MailConfig) FromAddress() string {
	if m.From != "" {
		return m.From
	}
	if m.BaseDomain != "" {
		return "no-reply@" + m.BaseDomain
	}
	return "no-reply@localhost"
}

// IsProduction reports whether production hardening applies (Secure flag on
// the session cookie, JSON logs).
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load loads configuration from environment variables.
func Load(ctx context.Context) (*Config, error) {
	var config Config

	if err := envconfig.Process(ctx, &config); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if len(config.Auth.Secret) < 32 {
		return nil, fmt.Errorf("AUTH_SECRET must be at least 32 characters long")
	}

	if _, err := url.Parse(config.Mail.FrontendURL); err != nil {
		return nil, fmt.Errorf("FRONTEND_URL is not a valid URL: %w", err)
	}

	return &config, nil
}
