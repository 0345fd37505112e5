// Package config loads the settings of customerctl.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Environment variables that override the file.
const (
	EnvEndpoint = "CUSTOMER_GRAPHQL_ENDPOINT"
	EnvToken    = "CUSTOMER_GRAPHQL_TOKEN"
	EnvTimeout  = "CUSTOMER_GRAPHQL_TIMEOUT"
	EnvLogLevel = "CUSTOMER_GRAPHQL_LOG_LEVEL"
	EnvGzip     = "CUSTOMER_GRAPHQL_GZIP"
)

const (
	defaultTimeout  = 30 * time.Second
	defaultLogLevel = "info"
)

// Config is the client configuration.
type Config struct {
	Endpoint         string            `yaml:"endpoint"`
	Token            string            `yaml:"token,omitempty"`
	Headers          map[string]string `yaml:"headers,omitempty"`
	Timeout          time.Duration     `yaml:"timeout,omitempty"`
	Gzip             bool              `yaml:"gzip,omitempty"`
	CloseRequestBody bool              `yaml:"close_request_body,omitempty"`
	Retry            Retry             `yaml:"retry,omitempty"`
	LogLevel         string            `yaml:"log_level,omitempty"`
}

// Retry mirrors the transport retry policy. An empty Policy disables it.
type Retry struct {
	Policy      string  `yaml:"policy,omitempty"` // "", linear or exponential_backoff
	MaxTries    int     `yaml:"max_tries,omitempty"`
	Interval    float64 `yaml:"interval,omitempty"` // seconds
	MaxInterval float64 `yaml:"max_interval,omitempty"`
}

// ValidationError describes one invalid setting.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Load reads .env if present, then the YAML file at path if path is not
// empty, then applies environment overrides and defaults, and validates.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrap(err, "failed to read config file")
		}
		if cfg, err = Parse(data); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	cfg.setDefaults()

	if errs := cfg.Validate(); len(errs) > 0 {
		return Config{}, errors.Errorf("validation errors: %v", errs)
	}
	return cfg, nil
}

// Parse decodes YAML after expanding ${VAR} references from the
// environment.
func Parse(data []byte) (Config, error) {
	expanded := os.Expand(string(data), os.Getenv)

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return Config{}, errors.Wrap(err, "failed to parse YAML")
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvEndpoint); v != "" {
		c.Endpoint = v
	}
	if v := os.Getenv(EnvToken); v != "" {
		c.Token = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.Wrapf(err, "invalid %s", EnvTimeout)
		}
		c.Timeout = d
	}
	if v := os.Getenv(EnvGzip); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrapf(err, "invalid %s", EnvGzip)
		}
		c.Gzip = b
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	c.LogLevel = strings.ToLower(c.LogLevel)
}

// Validate returns every problem with c.
func (c Config) Validate() []ValidationError {
	var errs []ValidationError

	if c.Endpoint == "" {
		errs = append(errs, ValidationError{Field: "endpoint", Message: "is required"})
	}
	if c.Timeout < 0 {
		errs = append(errs, ValidationError{Field: "timeout", Message: "must not be negative"})
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, ValidationError{Field: "log_level", Message: fmt.Sprintf("unknown level %q", c.LogLevel)})
	}

	switch c.Retry.Policy {
	case "":
	case "linear", "exponential_backoff":
		if c.Retry.MaxTries <= 0 {
			errs = append(errs, ValidationError{Field: "retry.max_tries", Message: "must be positive"})
		}
		if c.Retry.Interval <= 0 {
			errs = append(errs, ValidationError{Field: "retry.interval", Message: "must be positive"})
		}
		if c.Retry.Policy == "exponential_backoff" && c.Retry.MaxInterval < c.Retry.Interval {
			errs = append(errs, ValidationError{Field: "retry.max_interval", Message: "must not be below retry.interval"})
		}
	default:
		errs = append(errs, ValidationError{Field: "retry.policy", Message: fmt.Sprintf("unknown policy %q", c.Retry.Policy)})
	}

	return errs
}
