package roborock

import (
	"context"
	"sync"
	"time"
)

// MapPoller asks the device for a fresh map.
type MapPoller interface {
	PollMap(ctx context.Context) error
}

type mapSnapshot struct {
	data      any
	fetchedAt time.Time
}

// ChannelMapPoller requests get_map_v1 over the command channel and keeps the latest reply.
type ChannelMapPoller struct {
	channel CommandChannel
	mu      sync.Mutex
	last    mapSnapshot
}

func NewChannelMapPoller(channel CommandChannel) *ChannelMapPoller {
	return &ChannelMapPoller{channel: channel}
}

func (p *ChannelMapPoller) PollMap(ctx context.Context) error {
	result, err := p.channel.SendCommand(ctx, "get_map_v1", []any{}, CommandOptions{})
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.last = mapSnapshot{data: result, fetchedAt: time.Now()}
	return nil
}

// Snapshot returns the last map reply and when it was fetched.
func (p *ChannelMapPoller) Snapshot() (any, time.Time, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.last.fetchedAt.IsZero() {
		return nil, time.Time{}, false
	}
	return p.last.data, p.last.fetchedAt, true
}
