package roborock

import (
	"context"
	"fmt"
	"math"
	"time"
)

// GetBackupMaps lists the map backups stored on a gen3 device.
func (s *S5) GetBackupMaps(ctx context.Context) ([]BackupMap, error) {
	caps := s.caps.load()
	if !caps.SupportsGen3 {
		return nil, fmt.Errorf("backup maps on msg_ver %d: %w", caps.MsgVer, ErrNotSupported)
	}
	result, err := s.send(ctx, "get_recover_maps", []any{}, CommandOptions{})
	if err != nil {
		return nil, err
	}
	return parseBackupMaps(result)
}

// RestoreBackupMap restores the given backup and returns the device reply.
func (s *S5) RestoreBackupMap(ctx context.Context, backup BackupMap) (any, error) {
	caps := s.caps.load()
	if !caps.SupportsGen3 {
		return nil, fmt.Errorf("restore backup map on msg_ver %d: %w", caps.MsgVer, ErrNotSupported)
	}
	if backup.ID == "" {
		return nil, fmt.Errorf("backup map id is required: %w", ErrInvalidArgument)
	}
	return s.send(ctx, "recover_map", []any{numericOrString(backup.ID)}, CommandOptions{})
}

// parseBackupMaps maps raw [id, epochSeconds] pairs.
func parseBackupMaps(result any) ([]BackupMap, error) {
	if result == nil {
		return []BackupMap{}, nil
	}
	entries, ok := result.([]any)
	if !ok {
		return nil, fmt.Errorf("unexpected get_recover_maps result %T", result)
	}
	out := make([]BackupMap, 0, len(entries))
	for _, entry := range entries {
		pair, ok := entry.([]any)
		if !ok || len(pair) < 2 {
			return nil, fmt.Errorf("unexpected backup map entry %v", entry)
		}
		seconds := floatFrom(pair[1])
		out = append(out, BackupMap{
			ID:        stringFrom(pair[0]),
			Timestamp: time.UnixMilli(int64(math.Round(seconds * 1000))),
		})
	}
	return out, nil
}
