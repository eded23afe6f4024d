package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	SchemaVersion             = 1
	DefaultPath               = "/etc/gohome/config.yaml"
	DefaultGRPCAddr           = "0.0.0.0:9000"
	DefaultHTTPAddr           = "0.0.0.0:8080"
	DefaultDashboardDir       = "/var/lib/gohome/dashboards"
	DefaultLogLevel           = "info"
	DefaultLogMaxSizeMB       = 10
	DefaultLogMaxBackups      = 3
	DefaultCommandTimeout     = 1 * time.Second
	DefaultStatusPollInterval = 30 * time.Second

	// MaxCommandTimeout is the save_map deadline. Ordinary commands must stay
	// below it so the slower map save always gets the longer wait.
	MaxCommandTimeout = 3500 * time.Millisecond
)

// Config is the daemon configuration file.
type Config struct {
	SchemaVersion int               `yaml:"schema_version"`
	Core          *CoreConfig       `yaml:"core"`
	Logging       *LoggingConfig    `yaml:"logging"`
	RoborockS5    *RoborockS5Config `yaml:"roborock_s5"`
}

type CoreConfig struct {
	GRPCAddr     string `yaml:"grpc_addr"`
	HTTPAddr     string `yaml:"http_addr"`
	DashboardDir string `yaml:"dashboard_dir"`
}

// LoggingConfig controls the log level and the optional rotating log file.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	Compress   bool   `yaml:"compress"`
}

type RoborockS5Config struct {
	DeviceID           string        `yaml:"device_id"`
	MQTT               MQTTConfig    `yaml:"mqtt"`
	CommandTimeout     time.Duration `yaml:"command_timeout"`
	StatusPollInterval time.Duration `yaml:"status_poll_interval"`
}

type MQTTConfig struct {
	Broker       string `yaml:"broker"`
	Username     string `yaml:"username"`
	PasswordFile string `yaml:"password_file"`
	ClientID     string `yaml:"client_id"`
	CommandTopic string `yaml:"command_topic"`
	ReplyTopic   string `yaml:"reply_topic"`
}

// Load parses the YAML config file, applies defaults, and validates.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse is Load without the file read.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Core == nil {
		cfg.Core = &CoreConfig{}
	}
	if cfg.Core.GRPCAddr == "" {
		cfg.Core.GRPCAddr = DefaultGRPCAddr
	}
	if cfg.Core.HTTPAddr == "" {
		cfg.Core.HTTPAddr = DefaultHTTPAddr
	}
	if cfg.Core.DashboardDir == "" {
		cfg.Core.DashboardDir = DefaultDashboardDir
	}

	if cfg.Logging == nil {
		cfg.Logging = &LoggingConfig{}
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	if cfg.Logging.MaxSizeMB == 0 {
		cfg.Logging.MaxSizeMB = DefaultLogMaxSizeMB
	}
	if cfg.Logging.MaxBackups == 0 {
		cfg.Logging.MaxBackups = DefaultLogMaxBackups
	}

	if s5 := cfg.RoborockS5; s5 != nil {
		if s5.CommandTimeout == 0 {
			s5.CommandTimeout = DefaultCommandTimeout
		}
		if s5.StatusPollInterval == 0 {
			s5.StatusPollInterval = DefaultStatusPollInterval
		}
		if s5.DeviceID != "" {
			if s5.MQTT.CommandTopic == "" {
				s5.MQTT.CommandTopic = "gohome/roborock/" + s5.DeviceID + "/command"
			}
			if s5.MQTT.ReplyTopic == "" {
				s5.MQTT.ReplyTopic = "gohome/roborock/" + s5.DeviceID + "/reply"
			}
		}
	}
}

var logLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate enforces required invariants beyond YAML typing.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if cfg.SchemaVersion != SchemaVersion {
		return fmt.Errorf("schema_version must be %d", SchemaVersion)
	}

	if cfg.Core == nil {
		return fmt.Errorf("core config is required")
	}
	if cfg.Core.GRPCAddr == "" {
		return fmt.Errorf("core.grpc_addr is required")
	}
	if cfg.Core.HTTPAddr == "" {
		return fmt.Errorf("core.http_addr is required")
	}

	if cfg.Logging == nil {
		return fmt.Errorf("logging config is required")
	}
	if !logLevels[strings.ToLower(cfg.Logging.Level)] {
		return fmt.Errorf("logging.level %q is not one of trace|debug|info|warn|error", cfg.Logging.Level)
	}

	if s5 := cfg.RoborockS5; s5 != nil {
		if s5.DeviceID == "" {
			return fmt.Errorf("roborock_s5.device_id is required")
		}
		if s5.MQTT.Broker == "" {
			return fmt.Errorf("roborock_s5.mqtt.broker is required")
		}
		if s5.CommandTimeout < 0 {
			return fmt.Errorf("roborock_s5.command_timeout must be positive")
		}
		if s5.CommandTimeout >= MaxCommandTimeout {
			return fmt.Errorf("roborock_s5.command_timeout must be below %s", MaxCommandTimeout)
		}
		if s5.StatusPollInterval < time.Second {
			return fmt.Errorf("roborock_s5.status_poll_interval must be at least 1s")
		}
	}

	return nil
}

// EnabledPlugins maps enabled plugin IDs based on config presence.
func EnabledPlugins(cfg *Config) map[string]bool {
	enabled := make(map[string]bool)
	if cfg == nil {
		return enabled
	}
	if cfg.RoborockS5 != nil {
		enabled["roborock_s5"] = true
	}
	return enabled
}

// ReadSecretFile reads a credential file and trims surrounding whitespace.
func ReadSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	value := strings.TrimSpace(string(data))
	if value == "" {
		return "", fmt.Errorf("secret file %s is empty", path)
	}
	return value, nil
}
