package analysis

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

// Activity types with their own TSS multiplier
const (
	TypeRide        = "Ride"
	TypeVirtualRide = "VirtualRide"
	TypeRun         = "Run"
	TypeWorkout     = "Workout"
)

// Contract violations. Missing optional data is never an error.
var (
	ErrNegativeDuration = errors.New("negative duration")
	ErrMissingDate      = errors.New("missing activity date")
	ErrInvalidMetric    = errors.New("invalid metric value")
)

// Activity is the canonical activity record the engine works on.
// Optional sensor values are nil when the activity didn't record them.
type Activity struct {
	ID              int64
	Date            time.Time
	DurationSeconds int // moving time
	Type            string

	AvgPower        *float64 // watts
	MaxPower        *float64 // watts
	NormalizedPower *float64 // watts

	AvgHeartRate *float64 // bpm
	MaxHeartRate *float64 // bpm

	DistanceMeters  float64
	ElevationMeters float64
}

// Validate rejects activities that would produce nonsense numbers
func (a Activity) Validate() error {
	if a.Date.IsZero() {
		return fmt.Errorf("activity %d: %w", a.ID, ErrMissingDate)
	}
	if a.DurationSeconds < 0 {
		return fmt.Errorf("activity %d: %w (%d s)", a.ID, ErrNegativeDuration, a.DurationSeconds)
	}

	optional := []struct {
		name  string
		value *float64
	}{
		{"avg_power", a.AvgPower},
		{"max_power", a.MaxPower},
		{"normalized_power", a.NormalizedPower},
		{"avg_heart_rate", a.AvgHeartRate},
		{"max_heart_rate", a.MaxHeartRate},
	}
	for _, m := range optional {
		if m.value != nil && !validMetric(*m.value) {
			return fmt.Errorf("activity %d: %w: %s = %v", a.ID, ErrInvalidMetric, m.name, *m.value)
		}
	}

	if !validMetric(a.DistanceMeters) {
		return fmt.Errorf("activity %d: %w: distance = %v", a.ID, ErrInvalidMetric, a.DistanceMeters)
	}
	if !validMetric(a.ElevationMeters) {
		return fmt.Errorf("activity %d: %w: elevation = %v", a.ID, ErrInvalidMetric, a.ElevationMeters)
	}
	return nil
}

// Validate checks every activity in the list and returns the first violation
func Validate(activities []Activity) error {
	for i := range activities {
		if err := activities[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Hours returns the moving time in hours
func (a Activity) Hours() float64 {
	return float64(a.DurationSeconds) / 3600.0
}

// Power returns normalized power if present, else average power.
// ok is false when the activity has no usable power data.
func (a Activity) Power() (watts float64, ok bool) {
	if a.NormalizedPower != nil && *a.NormalizedPower > 0 {
		return *a.NormalizedPower, true
	}
	if a.AvgPower != nil && *a.AvgPower > 0 {
		return *a.AvgPower, true
	}
	return 0, false
}

// HeartRate returns average heart rate, ok is false when absent or zero
func (a Activity) HeartRate() (bpm float64, ok bool) {
	if a.AvgHeartRate != nil && *a.AvgHeartRate > 0 {
		return *a.AvgHeartRate, true
	}
	return 0, false
}

// PeakHeartRate returns max heart rate, ok is false when absent or zero
func (a Activity) PeakHeartRate() (bpm float64, ok bool) {
	if a.MaxHeartRate != nil && *a.MaxHeartRate > 0 {
		return *a.MaxHeartRate, true
	}
	return 0, false
}

// Window is a half-open time range [Start, End)
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Days returns the window length in whole days
func (w Window) Days() int {
	return int(w.End.Sub(w.Start).Hours() / 24)
}

// trailing returns the window covering the `days` days before asOf
func trailing(asOf time.Time, days int) Window {
	return Window{Start: asOf.AddDate(0, 0, -days), End: asOf}
}

// between returns the window from `from` days ago up to `to` days ago
func between(asOf time.Time, from, to int) Window {
	return Window{Start: asOf.AddDate(0, 0, -from), End: asOf.AddDate(0, 0, -to)}
}

// filterWindow returns the activities dated inside w, preserving input order
func filterWindow(activities []Activity, w Window) []Activity {
	var out []Activity
	for _, a := range activities {
		if w.Contains(a.Date) {
			out = append(out, a)
		}
	}
	return out
}

// sortedByDate returns a copy of activities in ascending date order.
// The caller's slice is never reordered.
func sortedByDate(activities []Activity) []Activity {
	out := make([]Activity, len(activities))
	copy(out, activities)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

func validMetric(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

// intPtr is used for building estimate values
func intPtr(v int) *int {
	return &v
}
