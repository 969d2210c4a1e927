package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"hospital-server/shared/utils"
)

// Config holds the application configuration.
type Config struct {
	Env         string `yaml:"env" env:"ENV" env-default:"development"`
	LogLevel    string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	LogEncoding string `yaml:"log_encoding" env:"LOG_ENCODING" env-default:"json"`
	ServerPort  string `yaml:"server_port" env:"SERVER_PORT" env-default:"8080"`

	Database    DatabaseConfig    `yaml:"database"`
	Redis       RedisConfig       `yaml:"redis"`
	RabbitMQ    RabbitMQConfig    `yaml:"rabbitmq"`
	ConfigCache ConfigCacheConfig `yaml:"config_cache"`
	HTTP        HTTPConfig        `yaml:"http"`
}

// DatabaseConfig содержит конфигурацию PostgreSQL.
type DatabaseConfig struct {
	Host           string        `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port           string        `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User           string        `yaml:"user" env:"DB_USER" env-default:"postgres"`
	Name           string        `yaml:"name" env:"DB_NAME" env-default:"hospital"`
	SSLMode        string        `yaml:"ssl_mode" env:"DB_SSL_MODE" env-default:"disable"`
	MaxConns       int32         `yaml:"max_conns" env:"DB_MAX_CONNS" env-default:"10"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" env:"DB_CONNECT_TIMEOUT" env-default:"10s"`
	IdleTimeout    time.Duration `yaml:"idle_timeout" env:"DB_IDLE_TIMEOUT" env-default:"30s"`
	// Секрет: /run/secrets/db_password или DB_PASSWORD
	Password string `yaml:"-" env:"-"`
}

// RedisConfig - сессии.
type RedisConfig struct {
	Addr string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	DB   int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
	// Секрет: /run/secrets/redis_password или REDIS_PASSWORD
	Password string `yaml:"-" env:"-"`
}

// RabbitMQConfig - рассылка обновлений конфигурации между инстансами.
// Пустой URL отключает рассылку.
type RabbitMQConfig struct {
	URL string `yaml:"url" env:"RABBITMQ_URL"`
}

// ConfigCacheConfig configures the general-config file cache.
type ConfigCacheConfig struct {
	Path string        `yaml:"path" env:"CONFIG_CACHE_PATH"`
	TTL  time.Duration `yaml:"ttl" env:"CONFIG_CACHE_TTL" env-default:"24h"`
}

// HTTPConfig holds HTTP server and CORS settings.
type HTTPConfig struct {
	ReadTimeout        time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"15s"`
	WriteTimeout       time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"15s"`
	IdleTimeout        time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	CORSAllowedOrigins string        `yaml:"cors_allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-default:"http://localhost:3000"`
	SessionCookie      string        `yaml:"session_cookie" env:"SESSION_COOKIE" env-default:"sid"`
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// AllowedOrigins splits CORSAllowedOrigins into a slice.
func (c *Config) AllowedOrigins() []string {
	raw := strings.ReplaceAll(c.HTTP.CORSAllowedOrigins, " ", "")
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

// DSN builds the postgres connection URL.
func (c *Config) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.Database.User, c.Database.Password),
		Host:   c.Database.Host + ":" + c.Database.Port,
		Path:   "/" + c.Database.Name,
	}
	q := u.Query()
	q.Set("sslmode", c.Database.SSLMode)
	q.Set("connect_timeout", fmt.Sprintf("%d", int(c.Database.ConnectTimeout.Seconds())))
	u.RawQuery = q.Encode()
	return u.String()
}

// CacheFilePath returns the configured cache path or the default in the temp dir.
func (c *Config) CacheFilePath() string {
	if c.ConfigCache.Path != "" {
		return c.ConfigCache.Path
	}
	return filepath.Join(os.TempDir(), "hospital-general-config.json")
}

// LoadConfig loads configuration from an optional .env file, an optional YAML file
// and the environment (environment wins), then reads secrets.
func LoadConfig(envFilePath, yamlPath string) (*Config, error) {
	if envFilePath != "" {
		if _, err := os.Stat(envFilePath); err == nil {
			if err := godotenv.Load(envFilePath); err != nil {
				log.Printf("Warning: Could not load %s file: %v", envFilePath, err)
			} else {
				log.Printf("Loaded environment from %s", envFilePath)
			}
		} else if !os.IsNotExist(err) {
			log.Printf("Warning: Error checking %s file: %v", envFilePath, err)
		}
	}

	var cfg Config
	if yamlPath != "" {
		if _, err := os.Stat(yamlPath); err == nil {
			if err := cleanenv.ReadConfig(yamlPath, &cfg); err != nil {
				return nil, fmt.Errorf("error reading config file %s: %w", yamlPath, err)
			}
		} else if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("error processing env vars: %w", err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("error processing env vars: %w", err)
	}

	cfg.Database.Password = utils.ReadSecretOrEnv("db_password", "DB_PASSWORD")
	cfg.Redis.Password = utils.ReadSecretOrEnv("redis_password", "REDIS_PASSWORD")

	if cfg.ConfigCache.TTL <= 0 {
		return nil, fmt.Errorf("CONFIG_CACHE_TTL must be positive, got %s", cfg.ConfigCache.TTL)
	}

	return &cfg, nil
}
