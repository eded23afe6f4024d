package logging

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shimmeringbee/logwrap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshp123/gohome-s5/internal/config"
)

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, logwrap.Debug, level)

	level, err = ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, logwrap.Info, level)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestNewFiltersBelowLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, closer, err := New(&config.LoggingConfig{Level: "warn"}, buf)
	require.NoError(t, err)
	defer closer.Close()

	logger.LogInfo(context.Background(), "quiet")
	logger.LogWarn(context.Background(), "loud")

	assert.NotContains(t, buf.String(), "quiet")
	assert.Contains(t, buf.String(), "loud")
}

func TestNewWritesRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gohome.log")
	buf := &bytes.Buffer{}
	logger, closer, err := New(&config.LoggingConfig{Level: "info", File: path, MaxSizeMB: 1, MaxBackups: 1}, buf)
	require.NoError(t, err)

	logger.LogInfo(context.Background(), "to both sinks")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to both sinks")
	assert.Contains(t, buf.String(), "to both sinks")
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, _, err := New(&config.LoggingConfig{Level: "chatty"}, &bytes.Buffer{})
	assert.Error(t, err)
}
