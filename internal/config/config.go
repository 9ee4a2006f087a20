// Package config loads gateway configuration from the environment, an
// optional .env file and an optional YAML overlay.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds every tunable of the gateway process.
type Config struct {
	ServiceName string `env:"SERVICE_NAME,default=solana-gateway" yaml:"service_name"`
	Version     string `env:"SERVICE_VERSION,default=dev" yaml:"version"`
	Host        string `env:"HOST,default=0.0.0.0" yaml:"host"`
	Port        int    `env:"PORT,default=3000" yaml:"port"`

	LogLevel  string `env:"LOG_LEVEL,default=info" yaml:"log_level"`
	LogFormat string `env:"LOG_FORMAT,default=json" yaml:"log_format"`

	// CORSAllowedOrigins is semicolon separated in the environment.
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS,default=*" yaml:"cors_allowed_origins"`

	RateLimitRPS   int `env:"RATE_LIMIT_RPS,default=0" yaml:"rate_limit_rps"`
	RateLimitBurst int `env:"RATE_LIMIT_BURST,default=20" yaml:"rate_limit_burst"`

	AuthPublicKeyFile string `env:"AUTH_JWT_PUBLIC_KEY_FILE" yaml:"auth_jwt_public_key_file"`

	AuditRedisURL string `env:"AUDIT_REDIS_URL" yaml:"audit_redis_url"`
	AuditStream   string `env:"AUDIT_STREAM,default=solana_gateway_audit" yaml:"audit_stream"`
	AuditBuffer   int    `env:"AUDIT_BUFFER,default=1024" yaml:"audit_buffer"`

	ReadHeaderTimeout time.Duration `env:"READ_HEADER_TIMEOUT,default=5s" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s" yaml:"shutdown_timeout"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		ServiceName:        "solana-gateway",
		Version:            "dev",
		Host:               "0.0.0.0",
		Port:               3000,
		LogLevel:           "info",
		LogFormat:          "json",
		CORSAllowedOrigins: []string{"*"},
		RateLimitBurst:     20,
		AuditStream:        "solana_gateway_audit",
		AuditBuffer:        1024,
		ReadHeaderTimeout:  5 * time.Second,
		ShutdownTimeout:    10 * time.Second,
	}
}

// Load reads envFile (if it exists), decodes the environment and applies the
// YAML file named by CONFIG_FILE on top.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}

	cfg := Default()
	if err := envdecode.Decode(cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode environment: %w", err)
	}

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromPath applies the YAML file at path over the defaults.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.applyFile(path); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// Validate rejects values the server cannot start with.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
	default:
		return fmt.Errorf("log format %q must be json or text", c.LogFormat)
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("rate limit rps must not be negative")
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		return fmt.Errorf("rate limit burst must be at least 1")
	}
	if c.AuditBuffer < 1 {
		return fmt.Errorf("audit buffer must be at least 1")
	}
	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// AuthEnabled reports whether JWT authentication is configured.
func (c *Config) AuthEnabled() bool {
	return strings.TrimSpace(c.AuthPublicKeyFile) != ""
}
