package tui

import (
	"testing"
	"time"

	"ridelab/internal/analysis"
	"ridelab/internal/config"
)

func TestUnits(t *testing.T) {
	tests := []struct {
		unit      string
		meters    float64
		wantDist  string
		wantElev  string
		wantLabel string
	}{
		{"km", 42195, "42.2 km", "42,195 m", "km"},
		{"mi", 1609.34, "1.0 mi", "5,280 ft", "mi"},
		{"", 500, "0.5 km", "500 m", "km"},
	}
	for _, tt := range tests {
		t.Run(tt.unit, func(t *testing.T) {
			u := NewUnits(config.DisplayConfig{DistanceUnit: tt.unit})
			if got := u.FormatDistance(tt.meters); got != tt.wantDist {
				t.Errorf("FormatDistance(%v) = %q, want %q", tt.meters, got, tt.wantDist)
			}
			if got := u.FormatElevation(tt.meters); got != tt.wantElev {
				t.Errorf("FormatElevation(%v) = %q, want %q", tt.meters, got, tt.wantElev)
			}
			if got := u.DistanceLabel(); got != tt.wantLabel {
				t.Errorf("DistanceLabel() = %q, want %q", got, tt.wantLabel)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds  float64
		expected string
	}{
		{0, "0m"},
		{59, "0m"},
		{2700, "45m"},
		{3600, "1h 00m"},
		{5430, "1h 30m"},
	}
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := formatDuration(tt.seconds); got != tt.expected {
				t.Errorf("formatDuration(%v) = %q, want %q", tt.seconds, got, tt.expected)
			}
		})
	}
}

func TestFormatEstimate(t *testing.T) {
	v := 255
	if got := formatEstimate(analysis.ThresholdEstimate{Value: &v}, "W"); got != "255 W" {
		t.Errorf("formatEstimate() = %q, want %q", got, "255 W")
	}
	if got := formatEstimate(analysis.ThresholdEstimate{}, "W"); got != "--" {
		t.Errorf("formatEstimate(empty) = %q, want --", got)
	}
}

func TestFormatSince(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	if got := formatSince(time.Time{}, now); got != "never" {
		t.Errorf("formatSince(zero) = %q, want never", got)
	}
	if got := formatSince(now.Add(-3*time.Hour), now); got != "3 hours ago" {
		t.Errorf("formatSince(-3h) = %q, want %q", got, "3 hours ago")
	}
}

func TestTruncateName(t *testing.T) {
	if got := truncateName("Short", 10); got != "Short" {
		t.Errorf("truncateName() = %q", got)
	}
	if got := truncateName("A very long ride name", 10); got != "A very ..." {
		t.Errorf("truncateName() = %q, want %q", got, "A very ...")
	}
}
