package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Redis     RedisConfig
	Tracing   TracingConfig   `mapstructure:"tracing"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Admission AdmissionConfig `mapstructure:"admission"`
	Client    ClientConfig    `mapstructure:"client"`

	// set from command line flags, never from the config file
	ForceMigrate bool `mapstructure:"-"`
	MigrateOnly  bool `mapstructure:"-"`
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
	// join-module has its own, much tighter budget per client IP
	JoinMaxRequests int `mapstructure:"join_max_requests"`
}

type AdmissionConfig struct {
	ModuleCacheTTLSeconds int `mapstructure:"module_cache_ttl_seconds"`
	// attempts at finding an unused access code before giving up
	CodeGenerationAttempts int `mapstructure:"code_generation_attempts"`
}

// ClientConfig is read by the terminal admission client only.
type ClientConfig struct {
	BaseURL               string `mapstructure:"base_url"`
	Token                 string `mapstructure:"token"`
	RequestTimeoutSeconds int    `mapstructure:"request_timeout_seconds"`
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("MODULE_GATE")
	v.AutomaticEnv()

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.parsetime", true)
	v.SetDefault("rate_limit.max_requests", 6000)
	v.SetDefault("rate_limit.window_minutes", 1)
	v.SetDefault("rate_limit.join_max_requests", 30)
	v.SetDefault("admission.module_cache_ttl_seconds", 300)
	v.SetDefault("admission.code_generation_attempts", 5)
	v.SetDefault("client.base_url", "http://localhost:8080")
	v.SetDefault("client.request_timeout_seconds", 10)

	// Database
	v.BindEnv("database.host", "DATABASE_HOST")
	v.BindEnv("database.port", "DATABASE_PORT")
	v.BindEnv("database.user", "DATABASE_USER")
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "DATABASE_NAME")

	// JWT
	v.BindEnv("jwt.secret", "JWT_SECRET")

	// Redis
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	v.BindEnv("server.mode", "SERVER_MODE")

	// Tracing
	v.BindEnv("tracing.enabled", "TRACING_ENABLED")
	v.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	// Client
	v.BindEnv("client.base_url", "MODULE_GATE_URL")
	v.BindEnv("client.token", "MODULE_GATE_TOKEN")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.Server.Mode == "release" && len(cfg.JWT.Secret) < 32 {
		return nil, fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(cfg.JWT.Secret))
	}
	if cfg.Admission.ModuleCacheTTLSeconds < 0 {
		return nil, fmt.Errorf("admission.module_cache_ttl_seconds must not be negative, got %d", cfg.Admission.ModuleCacheTTLSeconds)
	}
	if cfg.Admission.CodeGenerationAttempts < 1 {
		return nil, fmt.Errorf("admission.code_generation_attempts must be positive, got %d", cfg.Admission.CodeGenerationAttempts)
	}

	return &cfg, nil
}

// ModuleCacheTTL returns the module cache lifetime. Zero disables caching.
func (c AdmissionConfig) ModuleCacheTTL() time.Duration {
	return time.Duration(c.ModuleCacheTTLSeconds) * time.Second
}

// RequestTimeout returns the client's per-request timeout.
func (c ClientConfig) RequestTimeout() time.Duration {
	if c.RequestTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// RateWindow returns the general rate limit window as a duration.
func (c RateLimitConfig) RateWindow() time.Duration {
	if c.WindowMinutes <= 0 {
		return time.Minute
	}
	return time.Duration(c.WindowMinutes) * time.Minute
}
