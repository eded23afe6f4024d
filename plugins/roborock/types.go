package roborock

import "time"

// FanSpeed is an abstract fan level, independent of firmware encoding.
type FanSpeed string

const (
	FanMin    FanSpeed = "min"
	FanLow    FanSpeed = "low"
	FanMedium FanSpeed = "medium"
	FanHigh   FanSpeed = "high"
	FanMax    FanSpeed = "max"
	FanMop    FanSpeed = "mop"
)

// FanSpeedSpec is the display label and device value of a fan level.
type FanSpeedSpec struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// MarkerKind is the leading element of a persistent-data marker.
type MarkerKind int

const (
	MarkerZone    MarkerKind = 0
	MarkerBarrier MarkerKind = 1
)

// Marker is a no-go zone (4 corners) or a virtual barrier (2 endpoints).
// Coords holds x1, y1, x2, y2, ... in map millimeters.
type Marker struct {
	Kind   MarkerKind
	Coords []int
}

// BackupMap is a map backup stored on the device.
type BackupMap struct {
	ID        string
	Timestamp time.Time
}

// Status captures the fields of get_status the adapter cares about.
type Status struct {
	State          string
	BatteryPercent int
	ErrorCode      int
	FanPower       int
	LabStatus      bool
	MsgVer         int
}
