package tui

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"ridelab/internal/analysis"
	"ridelab/internal/config"
	"ridelab/internal/service"
)

// Units provides unit conversion and formatting based on user preferences
type Units struct {
	cfg config.DisplayConfig
}

// NewUnits creates a new Units helper with the given display config
func NewUnits(cfg config.DisplayConfig) Units {
	return Units{cfg: cfg}
}

// IsMiles returns true if distance unit is miles
func (u Units) IsMiles() bool {
	return u.cfg.DistanceUnit == "mi"
}

// FormatDistance formats a distance in meters to the user's preferred unit
func (u Units) FormatDistance(meters float64) string {
	if u.IsMiles() {
		return fmt.Sprintf("%.1f mi", meters/service.MetersPerMile)
	}
	return fmt.Sprintf("%.1f km", meters/service.MetersPerKm)
}

// FormatElevation formats climbing in meters or feet, with thousands separators
func (u Units) FormatElevation(meters float64) string {
	if u.IsMiles() {
		return humanize.Comma(int64(meters*service.FeetPerMeter+0.5)) + " ft"
	}
	return humanize.Comma(int64(meters+0.5)) + " m"
}

// DistanceLabel returns the short unit label ("mi" or "km")
func (u Units) DistanceLabel() string {
	if u.IsMiles() {
		return "mi"
	}
	return "km"
}

// formatDuration renders seconds as "1h 05m" or "42m"
func formatDuration(seconds float64) string {
	total := int(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	if h > 0 {
		return fmt.Sprintf("%dh %02dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

// formatSince renders a timestamp relative to now, "never" for zero
func formatSince(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

// formatEstimate renders an estimate value with its unit, "--" when absent
func formatEstimate(est analysis.ThresholdEstimate, unit string) string {
	if !est.HasValue() {
		return "--"
	}
	return fmt.Sprintf("%d %s", *est.Value, unit)
}

// formatRatio renders a signed percentage change, e.g. "+12%"
func formatRatio(r float64) string {
	return fmt.Sprintf("%+.0f%%", r*100)
}

func truncateName(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
