package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Server ServerConfig `mapstructure:"server"`

	// Hedera network and operator identity
	Hedera HederaConfig `mapstructure:"hedera"`

	// Mirror node configuration
	Mirror MirrorConfig `mapstructure:"mirror"`

	// Logging configuration
	LogLevel string `mapstructure:"log_level"`

	// Monitoring configuration
	Monitoring MonitoringConfig `mapstructure:"monitoring"`

	// Tracing configuration
	Tracing TracingConfig `mapstructure:"tracing"`
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	ReadTimeout     int    `mapstructure:"read_timeout"`
	WriteTimeout    int    `mapstructure:"write_timeout"`
	IdleTimeout     int    `mapstructure:"idle_timeout"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"`
}

// HederaConfig holds the ledger client configuration
type HederaConfig struct {
	Network            string `mapstructure:"network"`
	OperatorID         string `mapstructure:"operator_id"`
	OperatorPrivateKey string `mapstructure:"operator_private_key"`
}

// MirrorConfig holds mirror node configuration
type MirrorConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Timeout int    `mapstructure:"timeout"`
}

// MonitoringConfig holds monitoring configuration
type MonitoringConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	MetricsPath string `mapstructure:"metrics_path"`
}

// TracingConfig holds tracing configuration
type TracingConfig struct {
	Endpoint     string  `mapstructure:"endpoint"`
	Environment  string  `mapstructure:"environment"`
	SamplingRate float64 `mapstructure:"sampling_rate"`
}

// Addr returns the listen address of the HTTP server
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Timeout converts a seconds setting to a duration
func Timeout(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}

// mirrorHosts maps each supported network to its public mirror node
var mirrorHosts = map[string]string{
	"mainnet":    "https://mainnet-public.mirrornode.hedera.com",
	"testnet":    "https://testnet.mirrornode.hedera.com",
	"previewnet": "https://previewnet.mirrornode.hedera.com",
}

// Load loads configuration from an optional .env file, environment variables and config files
func Load() (*Config, error) {
	// A missing .env is normal outside local development
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/solidavenir")

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	overrideWithEnv(&config)

	if config.Mirror.BaseURL == "" {
		config.Mirror.BaseURL = mirrorHosts[config.Hedera.Network]
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3001)
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 60)
	v.SetDefault("server.idle_timeout", 120)
	v.SetDefault("server.shutdown_timeout", 30)

	// Hedera defaults
	v.SetDefault("hedera.network", "testnet")
	v.SetDefault("hedera.operator_id", "")
	v.SetDefault("hedera.operator_private_key", "")

	// Mirror defaults
	v.SetDefault("mirror.base_url", "")
	v.SetDefault("mirror.timeout", 10)

	// Monitoring defaults
	v.SetDefault("monitoring.enabled", true)
	v.SetDefault("monitoring.metrics_path", "/metrics")

	// Tracing defaults
	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("tracing.environment", "development")
	v.SetDefault("tracing.sampling_rate", 1.0)

	// Logging defaults
	v.SetDefault("log_level", "info")
}

// overrideWithEnv overrides configuration with the variable names the service has always used
func overrideWithEnv(config *Config) {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if operatorID := os.Getenv("HEDERA_OPERATOR_ID"); operatorID != "" {
		config.Hedera.OperatorID = operatorID
	}

	if operatorKey := os.Getenv("HEDERA_OPERATOR_PRIVATE_KEY"); operatorKey != "" {
		config.Hedera.OperatorPrivateKey = operatorKey
	}

	if network := os.Getenv("HEDERA_NETWORK"); network != "" {
		config.Hedera.Network = network
	}

	if mirrorURL := os.Getenv("MIRROR_NODE_URL"); mirrorURL != "" {
		config.Mirror.BaseURL = mirrorURL
	}

	if endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); endpoint != "" {
		config.Tracing.Endpoint = endpoint
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		config.LogLevel = logLevel
	}
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Hedera.OperatorID == "" {
		return fmt.Errorf("HEDERA_OPERATOR_ID is required")
	}

	if config.Hedera.OperatorPrivateKey == "" {
		return fmt.Errorf("HEDERA_OPERATOR_PRIVATE_KEY is required")
	}

	if _, ok := mirrorHosts[config.Hedera.Network]; !ok {
		return fmt.Errorf("unsupported hedera network: %q", config.Hedera.Network)
	}

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Mirror.Timeout <= 0 {
		return fmt.Errorf("invalid mirror timeout: %d", config.Mirror.Timeout)
	}

	if config.Tracing.SamplingRate < 0 || config.Tracing.SamplingRate > 1 {
		return fmt.Errorf("invalid tracing sampling rate: %v", config.Tracing.SamplingRate)
	}

	return nil
}
