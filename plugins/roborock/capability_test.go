package roborock

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdapterStartsLegacy(t *testing.T) {
	s := NewS5(newFakeChannel())

	caps := s.Capabilities()
	assert.False(t, caps.SupportsGen3)
	assert.Equal(t, 0, caps.MsgVer)
	_, ok := s.FanSpeeds().Lookup(FanMin)
	assert.True(t, ok)
}

func TestObserveStatusSwitchesGeneration(t *testing.T) {
	ctx := context.Background()
	s := NewS5(newFakeChannel())

	caps := s.ObserveStatus(ctx, map[string]any{"msg_ver": float64(2)})
	assert.False(t, caps.SupportsGen3)

	caps = s.ObserveStatus(ctx, map[string]any{"msg_ver": float64(3)})
	assert.True(t, caps.SupportsGen3)
	_, ok := s.FanSpeeds().Lookup(FanMin)
	assert.False(t, ok, "MIN must disappear after the upgrade is observed")

	caps = s.ObserveStatus(ctx, map[string]any{"msg_ver": float64(4)})
	assert.True(t, caps.SupportsGen3)
	assert.Equal(t, 4, caps.MsgVer)

	caps = s.ObserveStatus(ctx, map[string]any{"msg_ver": float64(1)})
	assert.False(t, caps.SupportsGen3)
	spec, ok := s.FanSpeeds().Lookup(FanLow)
	assert.True(t, ok)
	assert.Equal(t, 38, spec.Value)
}

func TestObserveStatusIsIdempotent(t *testing.T) {
	state := newCapabilityState()

	_, first := state.observe(3)
	prev, second := state.observe(3)

	assert.Equal(t, first, prev)
	assert.Equal(t, first, second)
}

func TestObserveStatusAcceptsListAndMissingVersion(t *testing.T) {
	ctx := context.Background()
	s := NewS5(newFakeChannel())

	caps := s.ObserveStatus(ctx, []any{map[string]any{"msg_ver": float64(3), "state": float64(8)}})
	assert.True(t, caps.SupportsGen3)

	caps = s.ObserveStatus(ctx, map[string]any{"state": float64(8)})
	assert.False(t, caps.SupportsGen3, "missing msg_ver counts as legacy")

	caps = s.ObserveStatus(ctx, "garbage")
	assert.False(t, caps.SupportsGen3)
}

func TestCapabilitiesFor(t *testing.T) {
	assert.False(t, CapabilitiesFor(2).SupportsGen3)
	assert.True(t, CapabilitiesFor(3).SupportsGen3)
	assert.Equal(t, 6, CapabilitiesFor(0).FanSpeeds.Len())
	assert.Equal(t, 5, CapabilitiesFor(3).FanSpeeds.Len())
}

func TestCapabilityStateConcurrentObservers(t *testing.T) {
	state := newCapabilityState()
	const observers = 32

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		prevs = map[int]int{}
	)
	for i := 1; i <= observers; i++ {
		wg.Add(1)
		go func(msgVer int) {
			defer wg.Done()
			prev, next := state.observe(msgVer)
			assert.Equal(t, msgVer, next.MsgVer)
			mu.Lock()
			prevs[prev.MsgVer]++
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	// Every snapshot is replaced at most once, so no two observers report the same predecessor.
	for msgVer, count := range prevs {
		assert.Equal(t, 1, count, "snapshot msg_ver %d replaced %d times", msgVer, count)
	}
	assert.Len(t, prevs, observers)
	assert.NotContains(t, prevs, state.load().MsgVer)
}
