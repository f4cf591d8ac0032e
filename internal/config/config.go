package config

import (
	"fmt"  // Error wrapping
	"time" // Durations for TTLs and timeouts

	"github.com/caarlos0/env/v6" // Struct tag based env parsing
	"github.com/joho/godotenv"   // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort  string `env:"APP_PORT" envDefault:"8080"`  // Application port
	IsProd   bool   `env:"IS_PROD" envDefault:"false"`  // Is production environment
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"` // logrus level name

	DBDriver   string `env:"DB_DRIVER" envDefault:"mysql"` // mysql or postgres
	DBUser     string `env:"DB_USER"`                      // Database user
	DBPassword string `env:"DB_PASSWORD"`                  // Database password
	DBHost     string `env:"DB_HOST" envDefault:"127.0.0.1"`
	DBPort     string `env:"DB_PORT"` // Defaults per driver, see DSN
	DBName     string `env:"DB_NAME"` // Database name

	JWTSecret string        `env:"JWT_SECRET"` // JWT secret key, must be set
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"24h"`

	RedisAddr string        `env:"REDIS_ADDR" envDefault:"127.0.0.1:6379"` // Redis server address, empty disables caching
	RedisPass string        `env:"REDIS_PASS"`                             // Redis password
	RedisDB   int           `env:"REDIS_DB" envDefault:"0"`                // Redis database number
	CacheTTL  time.Duration `env:"CACHE_TTL" envDefault:"60s"`             // TTL of cached list responses

	QuoteAPIURL   string        `env:"QUOTE_API_URL" envDefault:"https://api.coingecko.com/api/v3"`
	QuoteTimeout  time.Duration `env:"QUOTE_TIMEOUT" envDefault:"5s"`
	QuoteCacheTTL time.Duration `env:"QUOTE_CACHE_TTL" envDefault:"30s"`

	MailAPIURL  string        `env:"MAIL_API_URL" envDefault:"https://api.resend.com"`
	MailAPIKey  string        `env:"MAIL_API_KEY"` // Empty disables outbound email
	MailFrom    string        `env:"MAIL_FROM" envDefault:"no-reply@example.com"`
	MailTimeout time.Duration `env:"MAIL_TIMEOUT" envDefault:"10s"`

	ReferralBonus float64 `env:"REFERRAL_BONUS" envDefault:"0"` // USDT credited to a referrer per signup
}

// LoadConfig loads configuration from the .env file (if present) and the environment
func LoadConfig() (*Config, error) {
	_ = godotenv.Load() // Load .env file if present
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}
	if cfg.DBDriver != "mysql" && cfg.DBDriver != "postgres" {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if cfg.ReferralBonus < 0 {
		return nil, fmt.Errorf("REFERRAL_BONUS must not be negative")
	}
	return cfg, nil
}

// DSN builds the data source name for the configured driver
func (c *Config) DSN() string {
	if c.DBDriver == "postgres" {
		port := c.DBPort
		if port == "" {
			port = "5432"
		}
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			c.DBHost, port, c.DBUser, c.DBPassword, c.DBName)
	}
	port := c.DBPort
	if port == "" {
		port = "3306"
	}
	// parseTime scans DATETIME into time.Time; clientFoundRows makes RowsAffected
	// count matched rows, so a no-op balance update is not mistaken for a miss
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + port + ")/" + c.DBName + "?parseTime=true&clientFoundRows=true"
}
