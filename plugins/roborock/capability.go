package roborock

import "sync/atomic"

const gen3MsgVer = 3

// Capabilities is an immutable view of what the connected firmware accepts.
// Operations load one snapshot and use it for their whole execution.
type Capabilities struct {
	MsgVer       int
	SupportsGen3 bool
	FanSpeeds    FanSpeedTable
}

// CapabilitiesFor derives the capability snapshot for a reported msg_ver.
func CapabilitiesFor(msgVer int) Capabilities {
	gen3 := msgVer >= gen3MsgVer
	return Capabilities{
		MsgVer:       msgVer,
		SupportsGen3: gen3,
		FanSpeeds:    FanSpeedsFor(gen3),
	}
}

// capabilityState is swapped wholesale on every status observation and read
// concurrently by commands.
type capabilityState struct {
	current atomic.Pointer[Capabilities]
}

func newCapabilityState() *capabilityState {
	s := &capabilityState{}
	initial := CapabilitiesFor(0)
	s.current.Store(&initial)
	return s
}

func (s *capabilityState) load() Capabilities {
	return *s.current.Load()
}

// observe swaps in the snapshot for msgVer and returns the previous and new snapshot.
// Concurrent observers each see the exact snapshot they replaced.
func (s *capabilityState) observe(msgVer int) (Capabilities, Capabilities) {
	for {
		prev := s.current.Load()
		if prev.MsgVer == msgVer {
			return *prev, *prev
		}
		next := CapabilitiesFor(msgVer)
		if s.current.CompareAndSwap(prev, &next) {
			return *prev, next
		}
	}
}
