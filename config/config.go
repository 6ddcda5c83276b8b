package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Temutjin2k/route-guard/internal/domain/types"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Flags
var (
	modeFlag = flag.String("mode", "", "application mode: route-service or moderation-service")
)

// Errors
var (
	ErrModeNotProvided = errors.New("mode flag not provided")
	ErrInvalidMode     = errors.New("invalid mode")
	ErrInvalidLogLevel = errors.New("invalid log level")
)

// Config contains all configuration variables of the application
type (
	Config struct {
		Mode types.ServiceMode `koanf:"-"`

		Log         LogConfig         `koanf:"log"`
		Database    DatabaseConfig    `koanf:"database"`
		RabbitMQ    RabbitMQConfig    `koanf:"rabbitmq"`
		ExternalAPI ExternalAPIConfig `koanf:"external_api"`
		Services    ServicesConfig    `koanf:"services"`
		Auth        Auth              `koanf:"auth"`
	}

	LogConfig struct {
		Level string `koanf:"level"`
	}

	DatabaseConfig struct {
		Host     string `koanf:"host"`
		Port     string `koanf:"port"`
		User     string `koanf:"user"`
		Password string `koanf:"password"`
		Database string `koanf:"database"`

		MaxConns        int32         `koanf:"max_conns"`
		MinConns        int32         `koanf:"min_conns"`
		MaxConnLifetime time.Duration `koanf:"max_conn_lifetime"`
		MaxConnIdleTime time.Duration `koanf:"max_conn_idle_time"`
	}

	ExternalAPIConfig struct {
		LocationIQAPIKey  string        `koanf:"locationiq_api_key"`
		LocationIQBaseURL string        `koanf:"locationiq_base_url"`
		Timeout           time.Duration `koanf:"timeout"`
	}

	RabbitMQConfig struct {
		Host     string `koanf:"host"`
		Port     string `koanf:"port"`
		User     string `koanf:"user"`
		Password string `koanf:"password"`
	}

	ServicesConfig struct {
		RouteService      string `koanf:"route_service"`
		ModerationService string `koanf:"moderation_service"`
	}

	Auth struct {
		JWTSecret string `koanf:"jwt_secret"`
	}
)

func (c DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

func (c DatabaseConfig) PoolLimits() (int32, int32, time.Duration, time.Duration) {
	return c.MaxConns, c.MinConns, c.MaxConnLifetime, c.MaxConnIdleTime
}

func (c RabbitMQConfig) GetDSN() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/",
		c.User,
		c.Password,
		c.Host,
		c.Port,
	)
}

// Port returns the HTTP port of the configured mode
func (c Config) Port() string {
	if c.Mode == types.ModerationService {
		return c.Services.ModerationService
	}
	return c.Services.RouteService
}

func defaultConfig() *Config {
	return &Config{
		Log: LogConfig{Level: "INFO"},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            "5432",
			User:            "routes_user",
			Password:        "routes_pass",
			Database:        "routes_db",
			MaxConns:        20,
			MinConns:        2,
			MaxConnLifetime: 30 * time.Minute,
			MaxConnIdleTime: 5 * time.Minute,
		},
		RabbitMQ: RabbitMQConfig{
			Host:     "localhost",
			Port:     "5672",
			User:     "guest",
			Password: "guest",
		},
		ExternalAPI: ExternalAPIConfig{
			LocationIQBaseURL: "https://us1.locationiq.com",
			Timeout:           5 * time.Second,
		},
		Services: ServicesConfig{
			RouteService:      "3000",
			ModerationService: "3001",
		},
		Auth: Auth{
			JWTSecret: "supersecretkey",
		},
	}
}

// NewConfig loads defaults, then the YAML file (if present), then environment variables.
// Env vars map onto keys by lowercasing and splitting on the first underscore:
// DATABASE_HOST -> database.host, AUTH_JWT_SECRET -> auth.jwt_secret.
func NewConfig(filepath string) (*Config, error) {
	cfg, err := load(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to load and parse config: %w", err)
	}

	// Parsing flags
	if err := parseFlags(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func load(filepath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if filepath != "" {
		if _, err := os.Stat(filepath); err == nil {
			if err := k.Load(file.Provider(filepath), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file %s: %w", filepath, err)
			}
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return cfg, nil
}

// envTransformFunc maps SECTION_KEY_NAME to section.key_name and ignores unknown sections.
func envTransformFunc(s string) string {
	key := strings.ToLower(s)
	section, rest, ok := strings.Cut(key, "_")
	if !ok {
		return ""
	}

	switch section {
	case "log", "database", "rabbitmq", "services", "auth":
		return section + "." + rest
	case "external":
		// EXTERNAL_API_LOCATIONIQ_API_KEY
		if after, ok := strings.CutPrefix(rest, "api_"); ok {
			return "external_api." + after
		}
	}
	return ""
}

func parseFlags(cfg *Config) error {
	if modeFlag == nil || *modeFlag == "" {
		return ErrModeNotProvided
	}

	cfg.Mode = types.ServiceMode(*modeFlag)

	return nil
}

// Validate checks values that cannot be defaulted
func (c *Config) Validate() error {
	switch c.Mode {
	case types.RouteService, types.ModerationService:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidMode, c.Mode)
	}

	switch strings.ToUpper(c.Log.Level) {
	case "DEBUG", "INFO", "WARN", "ERROR":
		c.Log.Level = strings.ToUpper(c.Log.Level)
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Log.Level)
	}

	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret must not be empty")
	}

	return nil
}
