package roborock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shimmeringbee/logwrap"
	"github.com/shimmeringbee/logwrap/impl/discard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusPollerFeedsCapabilities(t *testing.T) {
	channel := newFakeChannel()
	channel.results["get_status"] = []any{map[string]any{
		"state":      float64(8),
		"battery":    float64(97),
		"error_code": float64(0),
		"fan_power":  float64(102),
		"lab_status": float64(1),
		"msg_ver":    float64(3),
	}}
	adapter := NewS5(channel)
	poller := NewStatusPoller(adapter, time.Minute, logwrap.New(discard.Discard()))

	status, err := poller.Poll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Status{State: "charging", BatteryPercent: 97, FanPower: 102, LabStatus: true, MsgVer: 3}, status)
	assert.True(t, adapter.Capabilities().SupportsGen3)

	last, at, observed, lastErr := poller.Last()
	assert.True(t, observed)
	assert.NoError(t, lastErr)
	assert.False(t, at.IsZero())
	assert.Equal(t, status, last)
}

func TestStatusPollerKeepsLastStatusOnError(t *testing.T) {
	channel := newFakeChannel()
	channel.results["get_status"] = map[string]any{"state": float64(5), "msg_ver": float64(2)}
	adapter := NewS5(channel)
	poller := NewStatusPoller(adapter, time.Minute, logwrap.New(discard.Discard()))

	_, err := poller.Poll(context.Background())
	require.NoError(t, err)

	transportErr := errors.New("offline")
	channel.errs["get_status"] = transportErr
	_, err = poller.Poll(context.Background())
	assert.Same(t, transportErr, err)

	last, _, observed, lastErr := poller.Last()
	assert.True(t, observed)
	assert.Equal(t, "cleaning", last.State)
	assert.Same(t, transportErr, lastErr)
}

func TestStatusPollerRejectsNonObjectReply(t *testing.T) {
	for name, reply := range map[string]any{
		"empty list": []any{},
		"ok list":    []any{"ok"},
		"string":     "ok",
	} {
		t.Run(name, func(t *testing.T) {
			channel := newFakeChannel()
			channel.results["get_status"] = map[string]any{"state": float64(8), "msg_ver": float64(3)}
			adapter := NewS5(channel)
			poller := NewStatusPoller(adapter, time.Minute, logwrap.New(discard.Discard()))

			_, err := poller.Poll(context.Background())
			require.NoError(t, err)
			require.True(t, adapter.Capabilities().SupportsGen3)

			channel.results["get_status"] = reply
			_, err = poller.Poll(context.Background())
			assert.ErrorContains(t, err, "not a status object")

			assert.True(t, adapter.Capabilities().SupportsGen3, "gen3 must survive a malformed reply")
			last, _, observed, lastErr := poller.Last()
			assert.True(t, observed)
			assert.Equal(t, "charging", last.State)
			assert.Equal(t, err, lastErr)
		})
	}
}

func TestStatusPollerRunStopsWithContext(t *testing.T) {
	channel := newFakeChannel()
	channel.results["get_status"] = map[string]any{"msg_ver": float64(3)}
	adapter := NewS5(channel)
	poller := NewStatusPoller(adapter, 10*time.Millisecond, logwrap.New(discard.Discard()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		poller.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return len(channel.sent()) >= 2 }, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}
	assert.True(t, adapter.Capabilities().SupportsGen3)
}

func TestStateName(t *testing.T) {
	assert.Equal(t, "segment_cleaning", stateName(18))
	assert.Equal(t, "unknown", stateName(77))
}
