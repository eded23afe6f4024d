package roborock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shimmeringbee/logwrap"
)

// StatusPoller polls get_status and feeds the adapter's capability flag.
type StatusPoller struct {
	adapter  *S5
	interval time.Duration
	logger   logwrap.Logger

	mu       sync.Mutex
	last     Status
	lastAt   time.Time
	lastErr  error
	observed bool
}

func NewStatusPoller(adapter *S5, interval time.Duration, logger logwrap.Logger) *StatusPoller {
	return &StatusPoller{adapter: adapter, interval: interval, logger: logger}
}

// Poll fetches one status and applies it before returning.
func (p *StatusPoller) Poll(ctx context.Context) (Status, error) {
	result, err := p.adapter.channel.SendCommand(ctx, "get_status", []any{}, CommandOptions{})
	if err != nil {
		p.fail(err)
		return Status{}, err
	}
	fields, ok := normalizeMap(result)
	if !ok {
		err = fmt.Errorf("get_status reply is not a status object: %v", result)
		p.fail(err)
		return Status{}, err
	}
	p.adapter.ObserveStatus(ctx, fields)
	status := parseStatus(fields)

	p.mu.Lock()
	p.last = status
	p.lastAt = time.Now()
	p.lastErr = nil
	p.observed = true
	p.mu.Unlock()
	return status, nil
}

// fail records err without touching the last status or the capability flag.
func (p *StatusPoller) fail(err error) {
	p.mu.Lock()
	p.lastErr = err
	p.mu.Unlock()
}

// Run polls until ctx is done.
func (p *StatusPoller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		if _, err := p.Poll(ctx); err != nil && ctx.Err() == nil {
			p.logger.LogWarn(ctx, "Failed to poll status.", logwrap.Err(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Last returns the last successfully parsed status and the last poll error.
func (p *StatusPoller) Last() (Status, time.Time, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last, p.lastAt, p.observed, p.lastErr
}

func parseStatus(fields map[string]any) Status {
	if fields == nil {
		return Status{State: stateName(0)}
	}
	return Status{
		State:          stateName(intFrom(fields["state"])),
		BatteryPercent: intFrom(fields["battery"]),
		ErrorCode:      intFrom(fields["error_code"]),
		FanPower:       intFrom(fields["fan_power"]),
		LabStatus:      intFrom(fields["lab_status"]) == 1,
		MsgVer:         intFrom(fields["msg_ver"]),
	}
}
