package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"sgad-api/internal/scoring"
)

type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	JWT      JWTConfig
	Logging  LoggingConfig
	Scoring  ScoringConfig
	Seed     SeedConfig
}

type DatabaseConfig struct {
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	TimeZone string
}

type ServerConfig struct {
	Port        string
	AppName     string
	Institution string
}

type JWTConfig struct {
	SigningKey  string
	Issuer      string
	Expiry      time.Duration
	// IdleTimeout ends a session when no heartbeat arrived for this long.
	IdleTimeout time.Duration
}

type LoggingConfig struct {
	Filename   string
	Level      string
	Format     string
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
}

// ScoringConfig holds the NAF weight schemes by name and the scheme applied
// when a cycle does not name one.
type ScoringConfig struct {
	Schemes       map[string]scoring.Scheme
	DefaultScheme string
}

type SeedConfig struct {
	AdminEmail    string
	AdminPassword string
}

func Load() (*Config, error) {
	schemes := scoring.DefaultSchemes()
	overrides := map[string]string{
		scoring.SchemeObjetivosEquipa: "NAF_SCHEME_OBJETIVOS_EQUIPA",
		scoring.SchemeObjetivos:       "NAF_SCHEME_OBJETIVOS",
	}
	for name, key := range overrides {
		if raw := os.Getenv(key); raw != "" {
			s, err := scoring.ParseScheme(name, raw)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			schemes[name] = s
		}
	}

	defaultScheme := getEnv("NAF_DEFAULT_SCHEME", scoring.SchemeObjetivosEquipa)
	if _, ok := schemes[defaultScheme]; !ok {
		return nil, fmt.Errorf("NAF_DEFAULT_SCHEME: unknown scheme %q", defaultScheme)
	}

	return &Config{
		Database: DatabaseConfig{
			URL:      os.Getenv("DATABASE_URL"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "sgad"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
			TimeZone: getEnv("DB_TIMEZONE", "Europe/Lisbon"),
		},
		Server: ServerConfig{
			Port:        getEnv("PORT", "3000"),
			AppName:     getEnv("APP_NAME", "SGAD v1.0"),
			Institution: getEnv("INSTITUTION_NAME", "Instituição Pública"),
		},
		JWT: JWTConfig{
			SigningKey:  getEnv("JWT_SECRET", "your-super-secret-key-change-in-production"),
			Issuer:      getEnv("JWT_ISSUER", "sgad-api"),
			Expiry:      getEnvDuration("JWT_EXPIRY", 24*time.Hour),
			IdleTimeout: getEnvDuration("SESSION_IDLE_TIMEOUT", 30*time.Minute),
		},
		Logging: LoggingConfig{
			Filename:   getEnv("LOG_FILE", "logs/sgad.log"),
			Level:      getEnv("LOG_LEVEL", "info"),
			Format:     getEnv("LOG_FORMAT", "text"),
			MaxSize:    getEnvInt("LOG_MAX_SIZE_MB", 50),
			MaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
			MaxAge:     getEnvInt("LOG_MAX_AGE_DAYS", 30),
			Compress:   getEnvBool("LOG_COMPRESS", true),
		},
		Scoring: ScoringConfig{
			Schemes:       schemes,
			DefaultScheme: defaultScheme,
		},
		Seed: SeedConfig{
			AdminEmail:    getEnv("SEED_ADMIN_EMAIL", "admin@sgad.local"),
			AdminPassword: getEnv("SEED_ADMIN_PASSWORD", "admin123"),
		},
	}, nil
}

// DSN returns DATABASE_URL when set, otherwise a key/value connection string.
func (c *DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.Host, c.User, c.Password, c.DBName, c.Port, c.SSLMode, c.TimeZone,
	)
}

// Scheme resolves a scheme by name, falling back to the default.
func (c *ScoringConfig) Scheme(name string) (scoring.Scheme, bool) {
	if name == "" {
		name = c.DefaultScheme
	}
	s, ok := c.Schemes[name]
	return s, ok
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
