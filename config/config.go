package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
)

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr   string
	DB     int
	Prefix string
}

// Enabled reports whether changeset events should be published.
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

type Config struct {
	Environment     string
	Port            string
	LogLevel        string
	Locale          string
	DefinitionsPath string
	Database        DatabaseConfig
	Redis           RedisConfig
}

// Load reads .env when present and builds the configuration from the environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	loadJWT()

	redisDB, err := envInt("REDIS_DB", 0)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Environment:     envString("APP_ENV", "production"),
		Port:            envString("PORT", "8080"),
		LogLevel:        envString("LOG_LEVEL", "info"),
		Locale:          envString("LOCALE", "en"),
		DefinitionsPath: envString("ITEM_TYPES_PATH", ""),
		Database: DatabaseConfig{
			Host:     envString("DB_HOST", "localhost"),
			Port:     envString("DB_PORT", "5432"),
			User:     envString("DB_USER", "postgres"),
			Password: envString("DB_PASSWORD", ""),
			Name:     envString("DB_NAME", "content_qa"),
			SSLMode:  envString("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:   envString("REDIS_ADDR", ""),
			DB:     redisDB,
			Prefix: envString("REDIS_PREFIX", "content-qa"),
		},
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("PORT is required"))
	}
	if c.Database.Host == "" || c.Database.Name == "" {
		errs = append(errs, errors.New("DB_HOST and DB_NAME are required"))
	}
	if c.Redis.DB < 0 {
		errs = append(errs, fmt.Errorf("REDIS_DB must not be negative, got %d", c.Redis.DB))
	}
	if c.Redis.Enabled() && strings.TrimSpace(c.Redis.Prefix) == "" {
		errs = append(errs, errors.New("REDIS_PREFIX is required when REDIS_ADDR is set"))
	}
	return errors.Join(errs...)
}
