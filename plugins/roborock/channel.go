package roborock

import (
	"context"
	"time"
)

// CommandOptions tunes a single dispatch.
type CommandOptions struct {
	// Timeout overrides the channel default when non-zero.
	Timeout time.Duration
}

// CommandChannel executes named device commands and returns the decoded result.
// Errors are transport or device errors and are surfaced to callers unchanged.
type CommandChannel interface {
	SendCommand(ctx context.Context, method string, params any, opts CommandOptions) (any, error)
}
