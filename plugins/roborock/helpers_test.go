package roborock

import (
	"context"
	"sync"
	"time"
)

type sentCommand struct {
	method string
	params any
	opts   CommandOptions
}

// fakeChannel records every command and answers from per-method tables.
type fakeChannel struct {
	mu      sync.Mutex
	calls   []sentCommand
	results map[string]any
	errs    map[string]error
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{results: map[string]any{}, errs: map[string]error{}}
}

func (f *fakeChannel) SendCommand(_ context.Context, method string, params any, opts CommandOptions) (any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, sentCommand{method: method, params: params, opts: opts})
	if err := f.errs[method]; err != nil {
		return nil, err
	}
	return f.results[method], nil
}

func (f *fakeChannel) sent() []sentCommand {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentCommand(nil), f.calls...)
}

func (f *fakeChannel) methods() []string {
	var out []string
	for _, call := range f.sent() {
		out = append(out, call.method)
	}
	return out
}

// fakeMapPoller signals every poll on polled.
type fakeMapPoller struct {
	err    error
	polled chan struct{}
}

func newFakeMapPoller(err error) *fakeMapPoller {
	return &fakeMapPoller{err: err, polled: make(chan struct{}, 4)}
}

func (p *fakeMapPoller) PollMap(context.Context) error {
	p.polled <- struct{}{}
	return p.err
}

func fixedClock(ms int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(ms) }
}

func newTestAdapter(channel CommandChannel, gen3 bool, opts ...Option) *S5 {
	s := NewS5(channel, opts...)
	if gen3 {
		s.ObserveStatus(context.Background(), map[string]any{"msg_ver": float64(3)})
	}
	return s
}

func zone(coords ...int) Marker {
	return Marker{Kind: MarkerZone, Coords: coords}
}

func barrier(coords ...int) Marker {
	return Marker{Kind: MarkerBarrier, Coords: coords}
}
