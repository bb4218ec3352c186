// Package config loads application configuration from environment
// variables.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/fusegate/fusegate/internal/resilience"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	Logging LogConfig
	Breaker BreakerConfig
}

// ServerConfig holds admin HTTP server configuration.
type ServerConfig struct {
	Host string `envconfig:"HOST" default:"0.0.0.0"`
	Port string `envconfig:"PORT" default:"8090"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// BreakerConfig holds the default policy applied to breakers that are
// not configured individually.
type BreakerConfig struct {
	FailureThreshold   int           `envconfig:"BREAKER_FAILURE_THRESHOLD" default:"5"`
	CallTimeout        time.Duration `envconfig:"BREAKER_CALL_TIMEOUT" default:"2s"`
	RecoveryTimeout    time.Duration `envconfig:"BREAKER_RECOVERY_TIMEOUT" default:"30s"`
	HalfOpenProbeQuota int           `envconfig:"BREAKER_PROBE_QUOTA" default:"3"`
	MinCallsBeforeTrip int           `envconfig:"BREAKER_MIN_CALLS" default:"10"`
}

// Policy converts the breaker configuration into a resilience.Policy.
func (b BreakerConfig) Policy() resilience.Policy {
	return resilience.Policy{
		FailureThreshold:   b.FailureThreshold,
		CallTimeout:        b.CallTimeout,
		RecoveryTimeout:    b.RecoveryTimeout,
		HalfOpenProbeQuota: b.HalfOpenProbeQuota,
		MinCallsBeforeTrip: b.MinCallsBeforeTrip,
	}
}

// Load loads configuration from environment variables and validates
// the breaker policy, the component's only configuration failure mode.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Breaker.Policy().Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: "8090",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		Breaker: BreakerConfig{
			FailureThreshold:   resilience.DefaultFailureThreshold,
			CallTimeout:        resilience.DefaultCallTimeout,
			RecoveryTimeout:    resilience.DefaultRecoveryTimeout,
			HalfOpenProbeQuota: resilience.DefaultHalfOpenProbeQuota,
			MinCallsBeforeTrip: resilience.DefaultMinCallsBeforeTrip,
		},
	}
}
