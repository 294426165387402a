package config

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nerrad567/ets2ha/internal/knx"
)

// Config is the root configuration structure for ets2ha.
// Everything is optional: defaults are usable as-is, a YAML file and
// environment variables override them, and command line flags override all.
type Config struct {
	Logging    LoggingConfig    `yaml:"logging"`
	Conversion ConversionConfig `yaml:"conversion"`
	Output     OutputConfig     `yaml:"output"`
	Publish    PublishConfig    `yaml:"publish"`
	MQTT       MQTTConfig       `yaml:"mqtt"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// ConversionConfig contains the defaults for a conversion run.
type ConversionConfig struct {
	// Format is the generator used when none is given on the command line.
	Format string `yaml:"format"`

	// AddressStyle overrides the project's declared group address style.
	// One of "Free", "TwoLevel", "ThreeLevel"; empty keeps the project value.
	AddressStyle string `yaml:"address_style"`

	// RulesFile is a YAML override rule file applied before generation.
	RulesFile string `yaml:"rules_file"`
}

// OutputConfig controls where the generated artifact goes.
type OutputConfig struct {
	// Path is the output file. Empty writes to stdout. A ".xz" suffix
	// compresses the artifact.
	Path string `yaml:"path"`

	// Digest logs a BLAKE3 digest of the artifact.
	Digest bool `yaml:"digest"`
}

// PublishConfig controls publishing the artifact over MQTT.
type PublishConfig struct {
	Enabled bool `yaml:"enabled"`

	// Topic is the root of the topic hierarchy; the artifact goes to
	// <topic>/config/<format>.
	Topic string `yaml:"topic"`

	QoS int `yaml:"qos"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// Environment variables read by Load.
const (
	EnvLogLevel     = "ETS2HA_LOG_LEVEL"
	EnvAddressStyle = "ETS2HA_ADDRESS_STYLE"
	EnvRulesFile    = "ETS2HA_RULES_FILE"
	EnvMQTTHost     = "ETS2HA_MQTT_HOST"
	EnvMQTTUsername = "ETS2HA_MQTT_USERNAME"
	EnvMQTTPassword = "ETS2HA_MQTT_PASSWORD"

	// EnvLegacyDebug and EnvLegacyStyle are the variable names used by the
	// ets_to_hass script. The ETS2HA_ forms take precedence.
	EnvLegacyDebug = "DEBUG"
	EnvLegacyStyle = "GADDRSTYLE"
)

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults), skipped when path is empty
//  3. Environment variables (override file values)
//
// Command line flags are applied by the caller after Load returns; call
// Validate again once they are in place.
//
// Parameters:
//   - path: Path to the YAML configuration file, or "" for none
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // path is operator-supplied
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns the built-in configuration without reading the file
// system or environment.
func Default() *Config {
	return defaultConfig()
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr", // stdout carries the artifact
		},
		Publish: PublishConfig{
			Topic: "ets2ha",
			QoS:   1,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "ets2ha",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	// Legacy names first so the prefixed ones win.
	if v := os.Getenv(EnvLegacyDebug); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv(EnvLegacyStyle); v != "" {
		cfg.Conversion.AddressStyle = v
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv(EnvAddressStyle); v != "" {
		cfg.Conversion.AddressStyle = v
	}
	if v := os.Getenv(EnvRulesFile); v != "" {
		cfg.Conversion.RulesFile = v
	}

	// MQTT
	if v := os.Getenv(EnvMQTTHost); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv(EnvMQTTUsername); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv(EnvMQTTPassword); v != "" {
		cfg.MQTT.Auth.Password = v
	}
}

// Validate checks the configuration for errors. All problems are reported
// together.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Logging validation
	if !slices.Contains([]string{"debug", "info", "warn", "warning", "error"}, strings.ToLower(c.Logging.Level)) {
		errs = append(errs, "logging.level must be debug, info, warn or error")
	}
	if !slices.Contains([]string{"json", "text"}, strings.ToLower(c.Logging.Format)) {
		errs = append(errs, "logging.format must be json or text")
	}
	if !slices.Contains([]string{"stdout", "stderr"}, strings.ToLower(c.Logging.Output)) {
		errs = append(errs, "logging.output must be stdout or stderr")
	}

	// Conversion validation
	if c.Conversion.AddressStyle != "" {
		if _, err := knx.ParseAddressStyle(c.Conversion.AddressStyle); err != nil {
			errs = append(errs, fmt.Sprintf("conversion.address_style: %v", err))
		}
	}

	// Publish validation
	if c.Publish.QoS < 0 || c.Publish.QoS > 2 {
		errs = append(errs, "publish.qos must be 0, 1, or 2")
	}
	if c.Publish.Enabled {
		if c.Publish.Topic == "" {
			errs = append(errs, "publish.topic is required when publishing is enabled")
		}
		if c.MQTT.Broker.Host == "" {
			errs = append(errs, "mqtt.broker.host is required when publishing is enabled")
		}
	}

	// MQTT validation
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535 {
		errs = append(errs, "mqtt.broker.port must be between 1 and 65535")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}
