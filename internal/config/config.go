package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/01moynul/storefront-api/internal/models"
)

// Config holds every setting the API reads from the environment.
type Config struct {
	Port            string
	Env             string
	LogLevel        string
	DBDriver        string
	DBDSN           string
	DBMaxOpenConns  int
	DBConnLifetime  time.Duration
	JWTSecret       string
	MaxPerLine      int
	CORSOrigins     []string
	ShutdownTimeout time.Duration
}

// IsProduction reports whether APP_ENV is "production".
func (c Config) IsProduction() bool { return c.Env == "production" }

// Load reads the environment (after godotenv has populated it) and applies defaults.
func Load() (Config, error) {
	cfg := Config{
		Port:     getenv("PORT", "8080"),
		Env:      getenv("APP_ENV", "development"),
		LogLevel: getenv("LOG_LEVEL", "info"),
		DBDriver: getenv("DB_DRIVER", "mysql"),
		// Same variable name as the primary pool used before.
		DBDSN:       os.Getenv("DB_DSN_PRIMARY"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		CORSOrigins: splitList(getenv("CORS_ALLOWED_ORIGINS", "http://localhost:5173")),
	}

	var err error
	if cfg.DBMaxOpenConns, err = intEnv("DB_MAX_OPEN_CONNS", 25); err != nil {
		return Config{}, err
	}
	if cfg.MaxPerLine, err = intEnv("CART_MAX_PER_LINE", models.MaxQuantityPerLine); err != nil {
		return Config{}, err
	}
	if cfg.DBConnLifetime, err = durationEnv("DB_CONN_MAX_LIFETIME", 5*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownTimeout, err = durationEnv("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	var errs []error
	if c.DBDSN == "" {
		errs = append(errs, errors.New("DB_DSN_PRIMARY is not set"))
	}
	if c.DBDriver != "mysql" && c.DBDriver != "sqlite" {
		errs = append(errs, fmt.Errorf("DB_DRIVER must be mysql or sqlite, got %q", c.DBDriver))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is not set"))
	}
	if c.MaxPerLine < 1 || c.MaxPerLine > models.MaxQuantityPerLine {
		errs = append(errs, fmt.Errorf("CART_MAX_PER_LINE must be between 1 and %d, got %d", models.MaxQuantityPerLine, c.MaxPerLine))
	}
	if c.DBMaxOpenConns < 1 {
		errs = append(errs, fmt.Errorf("DB_MAX_OPEN_CONNS must be positive, got %d", c.DBMaxOpenConns))
	}
	return errors.Join(errs...)
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
