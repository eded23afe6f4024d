package roborock

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLabStatus(t *testing.T) {
	for _, gen3 := range []bool{false, true} {
		channel := newFakeChannel()
		s := newTestAdapter(channel, gen3)

		require.NoError(t, s.SetLabStatus(context.Background(), true))
		require.NoError(t, s.SetLabStatus(context.Background(), false))

		calls := channel.sent()
		require.Len(t, calls, 2)
		assert.Equal(t, sentCommand{method: "set_lab_status", params: []any{1}}, calls[0])
		assert.Equal(t, sentCommand{method: "set_lab_status", params: []any{0}}, calls[1])
	}
}

func TestSetFanSpeedUsesActiveTable(t *testing.T) {
	channel := newFakeChannel()
	s := newTestAdapter(channel, false)
	ctx := context.Background()

	require.NoError(t, s.SetFanSpeed(ctx, FanHigh))
	s.ObserveStatus(ctx, map[string]any{"msg_ver": float64(3)})
	require.NoError(t, s.SetFanSpeed(ctx, FanHigh))

	calls := channel.sent()
	require.Len(t, calls, 2)
	assert.Equal(t, sentCommand{method: "set_custom_mode", params: []any{75}}, calls[0])
	assert.Equal(t, sentCommand{method: "set_custom_mode", params: []any{103}}, calls[1])
}

func TestSetFanSpeedMinOnGen3(t *testing.T) {
	channel := newFakeChannel()
	s := newTestAdapter(channel, true)

	err := s.SetFanSpeed(context.Background(), FanMin)
	assert.ErrorIs(t, err, ErrNotSupported)
	assert.Empty(t, channel.sent())
}

func TestSetLabStatusPassesTransportErrorThrough(t *testing.T) {
	channel := newFakeChannel()
	transportErr := &DeviceError{Code: -10000, Message: "unknown_method"}
	channel.errs["set_lab_status"] = transportErr
	s := newTestAdapter(channel, false)

	err := s.SetLabStatus(context.Background(), true)
	var devErr *DeviceError
	require.True(t, errors.As(err, &devErr))
	assert.Same(t, transportErr, devErr)
}
