package roborock

import (
	"context"
	"fmt"
	"strconv"
)

// Gen3 timers always start a full clean at the "Normal" fan level.
const timerFanPower = 102

// TimerAction is the command a timer runs when it fires.
type TimerAction struct {
	Command string
	Args    any
}

// TimerSpec is one set_timer entry.
type TimerSpec struct {
	ID     string
	Cron   string
	Action TimerAction
}

// encodeTimer builds the timer for the given generation. Legacy firmware
// ignores timer arguments, so it gets an empty placeholder pair.
func encodeTimer(caps Capabilities, id, cron string) TimerSpec {
	action := TimerAction{Command: "", Args: ""}
	if caps.SupportsGen3 {
		action = TimerAction{
			Command: "start_clean",
			Args: map[string]any{
				"fan_power":        timerFanPower,
				"segments":         "",
				"repeat":           1,
				"clean_order_mode": 1,
			},
		}
	}
	return TimerSpec{ID: id, Cron: cron, Action: action}
}

// params renders the set_timer wire shape: [[id, [cron, [command, args]]]].
func (t TimerSpec) params() []any {
	return []any{
		[]any{t.ID, []any{t.Cron, []any{t.Action.Command, t.Action.Args}}},
	}
}

// AddTimer schedules a cleaning timer. The cron expression is passed through
// unvalidated. It returns the timer id sent to the device.
func (s *S5) AddTimer(ctx context.Context, cron string) (string, error) {
	timer := encodeTimer(s.caps.load(), s.nextTimerID(), cron)
	if _, err := s.send(ctx, "set_timer", timer.params(), CommandOptions{}); err != nil {
		return "", err
	}
	return timer.ID, nil
}

// DeleteTimer removes a timer by id.
func (s *S5) DeleteTimer(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("timer id is required: %w", ErrInvalidArgument)
	}
	_, err := s.send(ctx, "del_timer", []any{id}, CommandOptions{})
	return err
}

// ToggleTimer enables or disables a timer by id.
func (s *S5) ToggleTimer(ctx context.Context, id string, enabled bool) error {
	if id == "" {
		return fmt.Errorf("timer id is required: %w", ErrInvalidArgument)
	}
	state := "off"
	if enabled {
		state = "on"
	}
	_, err := s.send(ctx, "upd_timer", []any{id, state}, CommandOptions{})
	return err
}

// nextTimerID derives the id from wall-clock milliseconds, bumped past the
// previous id when the clock has not advanced.
func (s *S5) nextTimerID() string {
	now := s.now().UnixMilli()
	for {
		last := s.lastTimerID.Load()
		next := now
		if next <= last {
			next = last + 1
		}
		if s.lastTimerID.CompareAndSwap(last, next) {
			return strconv.FormatInt(next, 10)
		}
	}
}
