// Package config loads the admin API's listen/auth/rate-limit/observability
// settings from YAML, layered over built-in defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// RateLimitConfig configures one named route group's token bucket.
type RateLimitConfig struct {
	Group         string  `yaml:"group"`
	RatePerSecond float64 `yaml:"ratePerSecond"`
	Burst         int     `yaml:"burst"`
}

// ObservabilityConfig toggles the admin API's metrics/tracing/logging and
// the OTLP endpoint they export to.
type ObservabilityConfig struct {
	ServiceName    string `yaml:"serviceName"`
	Metrics        bool   `yaml:"metrics"`
	Tracing        bool   `yaml:"tracing"`
	LogRequests    bool   `yaml:"logRequests"`
	OTLPEndpoint   string `yaml:"otlpEndpoint"`
	OTLPInsecure   bool   `yaml:"otlpInsecure"`
	OTLPHeaders    string `yaml:"otlpHeaders"`
}

// AuthConfig configures bearer-JWT authentication for controller-only
// routes.
type AuthConfig struct {
	Enabled        bool          `yaml:"enabled"`
	HMACSecret     string        `yaml:"hmacSecret"`
	Issuer         string        `yaml:"issuer"`
	Audience       string        `yaml:"audience"`
	ScopeClaim     string        `yaml:"scopeClaim"`
	OptionalPaths  []string      `yaml:"optionalPaths"`
	AllowAnonymous bool          `yaml:"allowAnonymous"`
	ClockSkew      time.Duration `yaml:"clockSkew"`
}

// Config is the admin API's top-level configuration.
type Config struct {
	ListenAddress string              `yaml:"listen"`
	ReadTimeout   time.Duration       `yaml:"readTimeout"`
	WriteTimeout  time.Duration       `yaml:"writeTimeout"`
	IdleTimeout   time.Duration       `yaml:"idleTimeout"`
	RateLimits    []RateLimitConfig   `yaml:"rateLimits"`
	Observability ObservabilityConfig `yaml:"observability"`
	Auth          AuthConfig          `yaml:"auth"`
	WebhookURL    string              `yaml:"webhookURL"`
	WebhookSecret string              `yaml:"webhookSecret"`
}

func defaults() Config {
	return Config{
		ListenAddress: ":8080",
		ReadTimeout:   30 * time.Second,
		WriteTimeout:  30 * time.Second,
		IdleTimeout:   120 * time.Second,
		Observability: ObservabilityConfig{
			ServiceName: "flowkerneld",
			Metrics:     true,
			Tracing:     true,
			LogRequests: true,
		},
		Auth: AuthConfig{
			Enabled:        true,
			ScopeClaim:     "scope",
			AllowAnonymous: false,
			ClockSkew:      2 * time.Minute,
		},
	}
}

// Load reads and validates a Config from path, starting from the built-in
// defaults. An empty path validates the defaults alone; they enable auth
// with an empty hmacSecret, so Load("") returns a validation error.
func Load(path string) (Config, error) {
	cfg := defaults()
	if path == "" {
		if err := cfg.Validate(); err != nil {
			return Config{}, fmt.Errorf("validate config: %w", err)
		}
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Validate checks internal consistency of the loaded config.
func (c Config) Validate() error {
	if c.ListenAddress == "" {
		return fmt.Errorf("listen address required")
	}
	if c.Auth.Enabled && c.Auth.HMACSecret == "" {
		return fmt.Errorf("auth enabled but hmacSecret is empty")
	}
	return nil
}
