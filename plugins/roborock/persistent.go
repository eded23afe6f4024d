package roborock

import (
	"context"
	"fmt"
	"math"

	"github.com/shimmeringbee/logwrap"
	"github.com/tidwall/gjson"

	"github.com/joshp123/gohome-s5/internal/config"
)

const (
	// DimensionMM is the edge length of the device map canvas in millimeters.
	DimensionMM = 50 * 1024
	// MaxMarkerWeight is the firmware limit: a zone counts 4, a barrier 2.
	MaxMarkerWeight = 68

	saveMapTimeout = config.MaxCommandTimeout
)

// FlipY converts between the UI and device Y origins. It is its own inverse.
func FlipY(y int) int {
	return DimensionMM - y
}

func (k MarkerKind) String() string {
	switch k {
	case MarkerZone:
		return "zone"
	case MarkerBarrier:
		return "barrier"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

func (k MarkerKind) weight() int {
	if k == MarkerZone {
		return 4
	}
	return 2
}

// maxCoordinates is the full coordinate count of a kind: four corners for a
// zone, two endpoints for a barrier.
func (k MarkerKind) maxCoordinates() int {
	switch k {
	case MarkerZone:
		return 8
	case MarkerBarrier:
		return 4
	default:
		return 0
	}
}

// MarkerWeight sums the firmware weight of a marker list.
func MarkerWeight(markers []Marker) int {
	total := 0
	for _, marker := range markers {
		total += marker.Kind.weight()
	}
	return total
}

// FlipMarkers returns a copy with every Y coordinate flipped and X untouched.
func FlipMarkers(markers []Marker) []Marker {
	out := make([]Marker, 0, len(markers))
	for _, marker := range markers {
		coords := make([]int, len(marker.Coords))
		for i, value := range marker.Coords {
			if i%2 == 1 {
				value = FlipY(value)
			}
			coords[i] = value
		}
		out = append(out, Marker{Kind: marker.Kind, Coords: coords})
	}
	return out
}

// ParsePersistentData decodes [[kind, x1, y1, ...], ...] as sent by the UI.
func ParsePersistentData(raw []byte) ([]Marker, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("persistent data is not valid JSON: %w", ErrInvalidArgument)
	}
	root := gjson.ParseBytes(raw)
	if !root.IsArray() {
		return nil, fmt.Errorf("persistent data has to be an array: %w", ErrInvalidArgument)
	}
	entries := root.Array()
	markers := make([]Marker, 0, len(entries))
	for i, entry := range entries {
		if !entry.IsArray() {
			return nil, fmt.Errorf("marker %d has to be an array: %w", i, ErrInvalidArgument)
		}
		values := entry.Array()
		if len(values) == 0 {
			return nil, fmt.Errorf("marker %d is empty: %w", i, ErrInvalidArgument)
		}
		ints := make([]int, 0, len(values))
		for j, value := range values {
			if value.Type != gjson.Number || value.Num != math.Trunc(value.Num) {
				return nil, fmt.Errorf("marker %d element %d is not an integer: %w", i, j, ErrInvalidArgument)
			}
			ints = append(ints, int(value.Int()))
		}
		markers = append(markers, Marker{Kind: MarkerKind(ints[0]), Coords: ints[1:]})
	}
	return markers, nil
}

// validateMarkers checks kind, pairing and bounds. Coordinates must come in
// x, y pairs and may not exceed the kind's full coordinate count.
func validateMarkers(markers []Marker) error {
	for i, marker := range markers {
		limit := marker.Kind.maxCoordinates()
		if limit == 0 {
			return fmt.Errorf("marker %d has unknown kind %d: %w", i, int(marker.Kind), ErrInvalidArgument)
		}
		n := len(marker.Coords)
		if n == 0 || n%2 != 0 || n > limit {
			return fmt.Errorf("%s marker %d needs x,y pairs up to %d coordinates, got %d: %w", marker.Kind, i, limit, n, ErrInvalidArgument)
		}
		for _, value := range marker.Coords {
			if value < 0 || value > DimensionMM {
				return fmt.Errorf("%s marker %d coordinate %d outside 0..%d: %w", marker.Kind, i, value, DimensionMM, ErrInvalidArgument)
			}
		}
	}
	return nil
}

// PrepareMarkers validates UI markers and returns them in device
// coordinates with their total weight. It never touches the network.
func PrepareMarkers(markers []Marker) ([]Marker, int, error) {
	if err := validateMarkers(markers); err != nil {
		return nil, 0, err
	}
	flipped := FlipMarkers(markers)
	weight := MarkerWeight(flipped)
	if weight > MaxMarkerWeight {
		return nil, weight, fmt.Errorf("marker weight %d exceeds %d: %w", weight, MaxMarkerWeight, ErrCapacityExceeded)
	}
	return flipped, weight, nil
}

// EncodeMarkers renders markers in the [kind, x1, y1, ...] wire form.
func EncodeMarkers(markers []Marker) [][]int {
	out := make([][]int, 0, len(markers))
	for _, marker := range markers {
		row := make([]int, 0, len(marker.Coords)+1)
		row = append(row, int(marker.Kind))
		row = append(row, marker.Coords...)
		out = append(out, row)
	}
	return out
}

// SavePersistentData stores no-go zones and virtual barriers on the device.
// Markers are given in UI coordinates. The map is re-polled once after the
// save whatever its outcome; a failing re-poll is only logged.
func (s *S5) SavePersistentData(ctx context.Context, markers []Marker) error {
	flipped, weight, err := PrepareMarkers(markers)
	if err != nil {
		return err
	}

	defer s.refreshMapAfterSave(ctx)

	if _, err := s.send(ctx, "save_map", EncodeMarkers(flipped), CommandOptions{Timeout: saveMapTimeout}); err != nil {
		return err
	}
	s.markerWeight.Set(float64(weight))
	return nil
}

func (s *S5) refreshMapAfterSave(ctx context.Context) {
	pollCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), mapRefreshTimeout)
	go func() {
		defer cancel()
		if err := s.maps.PollMap(pollCtx); err != nil {
			s.mapRefreshes.WithLabelValues("error").Inc()
			s.logger.LogWarn(pollCtx, "Map refresh after save failed.", logwrap.Err(err))
			return
		}
		s.mapRefreshes.WithLabelValues("ok").Inc()
	}()
}
