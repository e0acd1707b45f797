package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	OAuth     OAuthConfig     `mapstructure:"oauth"`
	TMDB      TMDBConfig      `mapstructure:"tmdb"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Session   SessionConfig   `mapstructure:"session"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Env  string `mapstructure:"env"`
	Port string `mapstructure:"port"`
	Host string `mapstructure:"host"`
}

type DatabaseConfig struct {
	URL      string `mapstructure:"url"`
	MaxConns int32  `mapstructure:"max_conns"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Password string `mapstructure:"password"`
	TLS      bool   `mapstructure:"tls"`
}

type OAuthConfig struct {
	GoogleClientID     string `mapstructure:"google_client_id"`
	GoogleClientSecret string `mapstructure:"google_client_secret"`
	GitHubClientID     string `mapstructure:"github_client_id"`
	GitHubClientSecret string `mapstructure:"github_client_secret"`
	CallbackHost       string `mapstructure:"callback_host"`
}

type TMDBConfig struct {
	APIKey            string        `mapstructure:"api_key"`
	ReadAccessToken   string        `mapstructure:"read_access_token"`
	BaseURL           string        `mapstructure:"base_url"`
	ImageBaseURL      string        `mapstructure:"image_base_url"`
	RequestsPerSecond int           `mapstructure:"requests_per_second"`
	Timeout           time.Duration `mapstructure:"timeout"`
}

// CatalogConfig configures the client side of the proxy
type CatalogConfig struct {
	// ProxyURL defaults to this server's own /proxy route
	ProxyURL      string        `mapstructure:"proxy_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	DebounceDelay time.Duration `mapstructure:"debounce_delay"`
}

type SessionConfig struct {
	SecretKey string        `mapstructure:"secret_key"`
	TTL       time.Duration `mapstructure:"ttl"`
}

type RateLimitConfig struct {
	MaxRequests int           `mapstructure:"max_requests"`
	Window      time.Duration `mapstructure:"window"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// envBindings maps config keys to the environment variables that set them.
// The first variable found wins.
var envBindings = map[string][]string{
	"server.env":                  {"APP_ENV", "NODE_ENV"},
	"server.port":                 {"PORT"},
	"server.host":                 {"HOST"},
	"database.url":                {"DATABASE_URL"},
	"database.max_conns":          {"DATABASE_MAX_CONNS"},
	"redis.host":                  {"REDIS_HOST"},
	"redis.port":                  {"REDIS_PORT"},
	"redis.password":              {"REDIS_PASSWORD"},
	"redis.tls":                   {"REDIS_TLS"},
	"oauth.google_client_id":      {"GOOGLE_CLIENT_ID"},
	"oauth.google_client_secret":  {"GOOGLE_CLIENT_SECRET"},
	"oauth.github_client_id":      {"GITHUB_CLIENT_ID"},
	"oauth.github_client_secret":  {"GITHUB_CLIENT_SECRET"},
	"oauth.callback_host":         {"OAUTH_CALLBACK_HOST", "HOST"},
	"tmdb.api_key":                {"TMDB_API_KEY", "TMDB_KEY"},
	"tmdb.read_access_token":      {"TMDB_READ_ACCESS_TOKEN"},
	"tmdb.base_url":               {"TMDB_URL"},
	"tmdb.image_base_url":         {"TMDB_IMAGE_URL"},
	"tmdb.requests_per_second":    {"TMDB_REQUESTS_PER_SECOND"},
	"tmdb.timeout":                {"TMDB_TIMEOUT"},
	"catalog.proxy_url":           {"CATALOG_PROXY_URL"},
	"catalog.timeout":             {"CATALOG_TIMEOUT"},
	"catalog.debounce_delay":      {"CATALOG_DEBOUNCE_DELAY"},
	"session.secret_key":          {"SECRET_KEY"},
	"session.ttl":                 {"SESSION_TTL"},
	"ratelimit.max_requests":      {"RATE_LIMIT_MAX_REQUESTS"},
	"ratelimit.window":            {"RATE_LIMIT_WINDOW"},
	"log.level":                   {"LOG_LEVEL"},
	"log.format":                  {"LOG_FORMAT"},
	"log.file":                    {"LOG_FILE"},
	"log.max_size_mb":             {"LOG_MAX_SIZE_MB"},
	"log.max_backups":             {"LOG_MAX_BACKUPS"},
	"log.max_age_days":            {"LOG_MAX_AGE_DAYS"},
	"log.compress":                {"LOG_COMPRESS"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.env", "local")
	v.SetDefault("server.port", "4000")
	v.SetDefault("server.host", "http://localhost:4000")

	v.SetDefault("database.max_conns", 20)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.tls", false)

	v.SetDefault("oauth.callback_host", "http://localhost:4000")

	v.SetDefault("tmdb.base_url", "https://api.themoviedb.org/3")
	v.SetDefault("tmdb.image_base_url", "https://image.tmdb.org/t/p/w500")
	v.SetDefault("tmdb.requests_per_second", 40)
	v.SetDefault("tmdb.timeout", 10*time.Second)

	v.SetDefault("catalog.timeout", 15*time.Second)
	v.SetDefault("catalog.debounce_delay", 500*time.Millisecond)

	v.SetDefault("session.ttl", 7*24*time.Hour)

	v.SetDefault("ratelimit.max_requests", 100)
	v.SetDefault("ratelimit.window", time.Minute)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)
}

// Load reads .env, an optional YAML file and the environment, in increasing
// order of precedence. An empty path looks for ./config.yaml.
func Load(path string) (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	for key, envs := range envBindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return &cfg, nil
}

// Validate checks what the full server needs: database, session secret
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Session.SecretKey == "" {
		return fmt.Errorf("SECRET_KEY is required")
	}
	if len(c.Session.SecretKey) < 32 {
		return fmt.Errorf("SECRET_KEY must be at least 32 characters")
	}
	return nil
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// IsDevelopment returns true if running in development/local mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "local" || c.Server.Env == "development"
}

// RedisAddr returns the Redis address in host:port format
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// CatalogProxyURL is where the catalog client sends its requests
func (c *Config) CatalogProxyURL() string {
	if c.Catalog.ProxyURL != "" {
		return c.Catalog.ProxyURL
	}
	return fmt.Sprintf("http://localhost:%s/proxy", c.Server.Port)
}
