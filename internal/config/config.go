package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config вся конфигурация приложения
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Mail       MailConfig
	Search     SearchConfig
	Translator TranslatorConfig
	App        AppConfig
}

type ServerConfig struct {
	Port string
	Env  string
	// BaseURL внешний адрес сервиса, из него строятся ссылки в письмах
	BaseURL string
	// AllowedOrigins origin-ы для websocket; пусто значит любой
	AllowedOrigins []string
}

type DatabaseConfig struct {
	URL string
}

type RedisConfig struct {
	URL string
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

type MailConfig struct {
	Server   string
	Port     int
	Username string
	Password string
	Sender   string
	Admins   []string
}

type SearchConfig struct {
	ElasticsearchURL string
}

type TranslatorConfig struct {
	Key    string
	Region string
}

type AppConfig struct {
	PostsPerPage int
	Languages    []string
}

func defaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("BASE_URL", "http://localhost:8080")
	v.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	v.SetDefault("JWT_TTL", 24*time.Hour)
	v.SetDefault("MAIL_PORT", 25)
	v.SetDefault("MAIL_SENDER", "noreply@microblog.local")
	v.SetDefault("MS_TRANSLATOR_REGION", "global")
	v.SetDefault("POSTS_PER_PAGE", 25)
	v.SetDefault("LANGUAGES", "en,es")
}

// LoadEnvFiles подгружает .env.local, затем .env. Отсутствие файлов не ошибка.
func LoadEnvFiles() {
	if err := godotenv.Load(".env.local"); err != nil {
		if err := godotenv.Load(); err != nil {
			slog.Debug(".env not found, using environment variables")
		}
	}
}

// Load читает конфигурацию из переменных окружения
func Load() (*Config, error) {
	LoadEnvFiles()

	v := viper.New()
	v.AutomaticEnv()
	defaults(v)

	return FromViper(v), nil
}

// FromViper собирает Config из уже настроенного viper
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("PORT"),
			Env:            v.GetString("APP_ENV"),
			BaseURL:        strings.TrimRight(v.GetString("BASE_URL"), "/"),
			AllowedOrigins: splitList(v.GetString("ALLOWED_ORIGINS")),
		},
		Database: DatabaseConfig{
			URL: v.GetString("DATABASE_URL"),
		},
		Redis: RedisConfig{
			URL: v.GetString("REDIS_URL"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("JWT_SECRET"),
			TTL:    v.GetDuration("JWT_TTL"),
		},
		Mail: MailConfig{
			Server:   v.GetString("MAIL_SERVER"),
			Port:     v.GetInt("MAIL_PORT"),
			Username: v.GetString("MAIL_USERNAME"),
			Password: v.GetString("MAIL_PASSWORD"),
			Sender:   v.GetString("MAIL_SENDER"),
			Admins:   splitList(v.GetString("ADMINS")),
		},
		Search: SearchConfig{
			ElasticsearchURL: v.GetString("ELASTICSEARCH_URL"),
		},
		Translator: TranslatorConfig{
			Key:    v.GetString("MS_TRANSLATOR_KEY"),
			Region: v.GetString("MS_TRANSLATOR_REGION"),
		},
		App: AppConfig{
			PostsPerPage: v.GetInt("POSTS_PER_PAGE"),
			Languages:    splitList(v.GetString("LANGUAGES")),
		},
	}
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Validate проверяет конфигурацию и возвращает все найденные проблемы разом
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port == "" {
		errs = append(errs, errors.New("PORT is required"))
	}
	switch c.Server.Env {
	case "development", "production", "test":
	default:
		errs = append(errs, fmt.Errorf("APP_ENV must be 'development', 'production', or 'test', got '%s'", c.Server.Env))
	}

	if c.IsProduction() && len(c.Server.AllowedOrigins) == 0 {
		errs = append(errs, errors.New("ALLOWED_ORIGINS is required in production"))
	}

	if c.Database.URL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.Redis.URL == "" {
		errs = append(errs, errors.New("REDIS_URL is required"))
	}

	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.JWT.TTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}

	if c.Mail.Server != "" && c.Mail.Port <= 0 {
		errs = append(errs, errors.New("MAIL_PORT must be positive when MAIL_SERVER is set"))
	}

	if c.App.PostsPerPage <= 0 {
		errs = append(errs, errors.New("POSTS_PER_PAGE must be positive"))
	}
	if len(c.App.Languages) == 0 {
		errs = append(errs, errors.New("LANGUAGES must list at least one language"))
	}

	return errors.Join(errs...)
}
