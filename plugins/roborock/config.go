package roborock

import (
	"fmt"
	"time"

	"github.com/joshp123/gohome-s5/internal/config"
)

// Config defines runtime configuration for one S5 device.
type Config struct {
	DeviceID           string
	MQTT               MQTTConfig
	StatusPollInterval time.Duration
}

// MQTTConfig describes the broker and topics carrying device commands.
type MQTTConfig struct {
	Broker         string
	Username       string
	Password       string
	ClientID       string
	CommandTopic   string
	ReplyTopic     string
	CommandTimeout time.Duration
}

func ConfigFrom(cfg *config.RoborockS5Config) (Config, error) {
	if cfg == nil {
		return Config{}, fmt.Errorf("roborock_s5 config is required")
	}
	if cfg.DeviceID == "" {
		return Config{}, fmt.Errorf("roborock_s5 device_id is required")
	}
	if cfg.MQTT.Broker == "" {
		return Config{}, fmt.Errorf("roborock_s5 mqtt broker is required")
	}

	if cfg.CommandTimeout >= saveMapTimeout {
		return Config{}, fmt.Errorf("roborock_s5 command_timeout %s must be below the save_map timeout %s", cfg.CommandTimeout, saveMapTimeout)
	}

	password := ""
	if cfg.MQTT.PasswordFile != "" {
		secret, err := config.ReadSecretFile(cfg.MQTT.PasswordFile)
		if err != nil {
			return Config{}, fmt.Errorf("read mqtt password: %w", err)
		}
		password = secret
	}

	pollInterval := cfg.StatusPollInterval
	if pollInterval <= 0 {
		pollInterval = config.DefaultStatusPollInterval
	}

	return Config{
		DeviceID: cfg.DeviceID,
		MQTT: MQTTConfig{
			Broker:         cfg.MQTT.Broker,
			Username:       cfg.MQTT.Username,
			Password:       password,
			ClientID:       cfg.MQTT.ClientID,
			CommandTopic:   cfg.MQTT.CommandTopic,
			ReplyTopic:     cfg.MQTT.ReplyTopic,
			CommandTimeout: cfg.CommandTimeout,
		},
		StatusPollInterval: pollInterval,
	}, nil
}
