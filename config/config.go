package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App    AppConfig
	DB     DBConfig
	Redis  RedisConfig
	JWT    JWTConfig
	Events EventsConfig
}

type AppConfig struct {
	Port           string
	Env            string
	RequestTimeout time.Duration
	CORSOrigins    []string
}

type DBConfig struct {
	Host          string
	Port          string
	User          string
	Password      string
	Name          string
	SSLMode       string
	TimeZone      string
	MigrateOnBoot bool
}

// DSN returns the libpq-style connection string used by gorm.
func (c DBConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode, c.TimeZone,
	)
}

// MigrationURL returns the URL form understood by the migrate pgx/v5 driver.
func (c DBConfig) MigrationURL() string {
	return fmt.Sprintf(
		"pgx5://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	PoolSize int
}

func (c RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// EventsConfig controls the Redis stream the notification dispatcher reads.
type EventsConfig struct {
	Stream string
	MaxLen int64
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_REQUEST_TIMEOUT", "10s")
	viper.SetDefault("APP_CORS_ORIGINS", "*")
	viper.SetDefault("REDIS_POOL_SIZE", 10)
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_TIMEZONE", "UTC")
	viper.SetDefault("DB_MIGRATE_ON_BOOT", false)
	viper.SetDefault("EVENTS_STREAM", "appointment-events")
	viper.SetDefault("EVENTS_MAXLEN", 10000)

	if err := viper.ReadInConfig(); err != nil {
		// Environment variables alone are enough in containers.
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	accessExpiry, err := time.ParseDuration(viper.GetString("JWT_ACCESS_EXPIRY"))
	if err != nil {
		accessExpiry = 15 * time.Minute
	}

	refreshExpiry, err := time.ParseDuration(viper.GetString("JWT_REFRESH_EXPIRY"))
	if err != nil {
		refreshExpiry = 7 * 24 * time.Hour
	}

	requestTimeout, err := time.ParseDuration(viper.GetString("APP_REQUEST_TIMEOUT"))
	if err != nil {
		requestTimeout = 10 * time.Second
	}

	config := &Config{
		App: AppConfig{
			Port:           viper.GetString("APP_PORT"),
			Env:            viper.GetString("APP_ENV"),
			RequestTimeout: requestTimeout,
			CORSOrigins:    splitList(viper.GetString("APP_CORS_ORIGINS")),
		},
		DB: DBConfig{
			Host:          viper.GetString("DB_HOST"),
			Port:          viper.GetString("DB_PORT"),
			User:          viper.GetString("DB_USER"),
			Password:      viper.GetString("DB_PASSWORD"),
			Name:          viper.GetString("DB_NAME"),
			SSLMode:       viper.GetString("DB_SSLMODE"),
			TimeZone:      viper.GetString("DB_TIMEZONE"),
			MigrateOnBoot: viper.GetBool("DB_MIGRATE_ON_BOOT"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
			PoolSize: viper.GetInt("REDIS_POOL_SIZE"),
		},
		JWT: JWTConfig{
			Secret:        viper.GetString("JWT_SECRET"),
			AccessExpiry:  accessExpiry,
			RefreshExpiry: refreshExpiry,
		},
		Events: EventsConfig{
			Stream: viper.GetString("EVENTS_STREAM"),
			MaxLen: viper.GetInt64("EVENTS_MAXLEN"),
		},
	}

	if config.JWT.Secret == "" {
		return nil, errors.New("JWT_SECRET must be set")
	}

	return config, nil
}

// splitList parses a comma-separated setting, dropping blanks.
func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
