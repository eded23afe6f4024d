package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
schema_version: 1
core:
  grpc_addr: 127.0.0.1:9100
logging:
  level: debug
roborock_s5:
  device_id: s5-kitchen
  mqtt:
    broker: tcp://broker.local:1883
    username: gohome
  command_timeout: 2s
`

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9100", cfg.Core.GRPCAddr)
	assert.Equal(t, DefaultHTTPAddr, cfg.Core.HTTPAddr)
	assert.Equal(t, DefaultDashboardDir, cfg.Core.DashboardDir)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, DefaultLogMaxSizeMB, cfg.Logging.MaxSizeMB)

	s5 := cfg.RoborockS5
	require.NotNil(t, s5)
	assert.Equal(t, 2*time.Second, s5.CommandTimeout)
	assert.Equal(t, DefaultStatusPollInterval, s5.StatusPollInterval)
	assert.Equal(t, "gohome/roborock/s5-kitchen/command", s5.MQTT.CommandTopic)
	assert.Equal(t, "gohome/roborock/s5-kitchen/reply", s5.MQTT.ReplyTopic)

	assert.Equal(t, map[string]bool{"roborock_s5": true}, EnabledPlugins(cfg))
}

func TestParseKeepsExplicitTopics(t *testing.T) {
	cfg, err := Parse([]byte(`
schema_version: 1
roborock_s5:
  device_id: s5
  mqtt:
    broker: tcp://b:1883
    command_topic: rr/cmd
    reply_topic: rr/reply
`))
	require.NoError(t, err)
	assert.Equal(t, "rr/cmd", cfg.RoborockS5.MQTT.CommandTopic)
	assert.Equal(t, "rr/reply", cfg.RoborockS5.MQTT.ReplyTopic)
}

func TestParseWithoutPlugins(t *testing.T) {
	cfg, err := Parse([]byte("schema_version: 1\n"))
	require.NoError(t, err)
	assert.Nil(t, cfg.RoborockS5)
	assert.Empty(t, EnabledPlugins(cfg))
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]string{
		"schema":           "schema_version: 2\n",
		"level":            "schema_version: 1\nlogging:\n  level: loud\n",
		"device id":        "schema_version: 1\nroborock_s5:\n  mqtt:\n    broker: tcp://b:1883\n",
		"broker":           "schema_version: 1\nroborock_s5:\n  device_id: s5\n",
		"poll too low":     "schema_version: 1\nroborock_s5:\n  device_id: s5\n  mqtt:\n    broker: tcp://b:1883\n  status_poll_interval: 10ms\n",
		"timeout too long": "schema_version: 1\nroborock_s5:\n  device_id: s5\n  mqtt:\n    broker: tcp://b:1883\n  command_timeout: 3500ms\n",
		"bad yaml":         "schema_version: [\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(body))
			assert.Error(t, err)
		})
	}
}

func TestDefaultCommandTimeoutLeavesRoomForMapSave(t *testing.T) {
	assert.Less(t, DefaultCommandTimeout, MaxCommandTimeout)

	cfg, err := Parse([]byte("schema_version: 1\nroborock_s5:\n  device_id: s5\n  mqtt:\n    broker: tcp://b:1883\n"))
	require.NoError(t, err)
	assert.Equal(t, DefaultCommandTimeout, cfg.RoborockS5.CommandTimeout)
}

func TestLoadReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "s5-kitchen", cfg.RoborockS5.DeviceID)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestReadSecretFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "password")
	require.NoError(t, os.WriteFile(path, []byte("  hunter2\n"), 0o600))

	value, err := ReadSecretFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", value)

	empty := filepath.Join(dir, "empty")
	require.NoError(t, os.WriteFile(empty, []byte("\n"), 0o600))
	_, err = ReadSecretFile(empty)
	assert.Error(t, err)
}
