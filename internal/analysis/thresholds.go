package analysis

// CTLMode selects what one EWMA tick of the chronic load represents
type CTLMode int

const (
	// CTLPerActivity advances the EWMA once per activity, in date order.
	// Rest days do not decay the average.
	CTLPerActivity CTLMode = iota
	// CTLPerDay advances the EWMA once per calendar day, summing same-day
	// TSS and feeding zero on rest days.
	CTLPerDay
)

// String returns the config name of the mode
func (m CTLMode) String() string {
	if m == CTLPerDay {
		return "per_day"
	}
	return "per_activity"
}

// ParseCTLMode maps a config name to a mode; unknown names yield CTLPerActivity
func ParseCTLMode(s string) CTLMode {
	if s == "per_day" {
		return CTLPerDay
	}
	return CTLPerActivity
}

// DurationBand maps a minimum effort duration to a threshold multiplier.
// Bands are checked in order; the first band whose MinSeconds is met wins.
type DurationBand struct {
	MinSeconds int
	Multiplier float64
}

// Thresholds holds every tunable heuristic the engine uses
type Thresholds struct {
	// Hard efforts (power)
	HardEffortMinPower   float64 // watts
	HardEffortMinSeconds int
	HardEffortMaxSeconds int
	TopEfforts           int // efforts averaged for a high confidence estimate

	// Hard efforts (heart rate)
	HRIntensityFloor   float64 // avg HR / max HR must exceed this
	HRMaxFromAvgFactor float64 // max HR estimate when only avg HR is known
	HRLimitedFactor    float64 // multiplier with 1-2 qualifying efforts
	HRMaxHRFactor      float64 // multiplier on observed max HR with no efforts
	HRLookbackDays     int

	// Duration-banded multipliers, longest band first
	FTPBands  []DurationBand
	FTHRBands []DurationBand

	// Load
	CTLDays int
	ATLDays int
	CTLMode CTLMode

	// Context
	GapDays                int     // a gap is longer than this many days
	RecentGapDays          int     // a gap longer than this marks hasRecentGap
	ConsistencyWeeklyTSS   float64 // weekly TSS needed for consistent training
	TrendChangeRatio       float64 // |ctlChangeRatio| above this leaves "stable"
	FTPWindowDays          int
	FTPShortWindowDays     int
	WindowShrinkDeclineCTL float64 // ctlChangeRatio below this shrinks the FTP window

	// Decline estimation
	DeclineFactor float64
	MaxDecline    float64

	// TSS fallbacks
	AssumedThresholdHR float64 // bpm
	MinutesTSSPerHour  float64 // TSS per hour before the type multiplier
	TypeMultipliers    map[string]float64
	DefaultMultiplier  float64

	// HR trends
	HRTrendActivities int
	HRDriftRatio      float64 // (max-avg)/avg above this counts as drift
	HRDriftWarnShare  float64 // share of drifting activities that triggers a warning
}

// DefaultThresholds returns the stock heuristics
func DefaultThresholds() Thresholds {
	return Thresholds{
		HardEffortMinPower:   200,
		HardEffortMinSeconds: 1200,
		HardEffortMaxSeconds: 3600,
		TopEfforts:           3,

		HRIntensityFloor:   0.82,
		HRMaxFromAvgFactor: 1.1,
		HRLimitedFactor:    0.95,
		HRMaxHRFactor:      0.90,
		HRLookbackDays:     84,

		FTPBands:  defaultBands(),
		FTHRBands: defaultBands(),

		CTLDays: 42,
		ATLDays: 7,
		CTLMode: CTLPerActivity,

		GapDays:                7,
		RecentGapDays:          14,
		ConsistencyWeeklyTSS:   200,
		TrendChangeRatio:       0.10,
		FTPWindowDays:          42,
		FTPShortWindowDays:     28,
		WindowShrinkDeclineCTL: -0.15,

		DeclineFactor: 0.7,
		MaxDecline:    0.15,

		AssumedThresholdHR: 170,
		MinutesTSSPerHour:  60,
		TypeMultipliers: map[string]float64{
			TypeRide:        1.0,
			TypeVirtualRide: 1.0,
			TypeRun:         1.2,
			TypeWorkout:     0.8,
		},
		DefaultMultiplier: 0.7,

		HRTrendActivities: 20,
		HRDriftRatio:      0.10,
		HRDriftWarnShare:  0.5,
	}
}

// Coggan-style bands: a 20-minute effort overstates the hour power
func defaultBands() []DurationBand {
	return []DurationBand{
		{MinSeconds: 3000, Multiplier: 1.00},
		{MinSeconds: 2400, Multiplier: 0.99},
		{MinSeconds: 1800, Multiplier: 0.98},
		{MinSeconds: 0, Multiplier: 0.95},
	}
}

// bandMultiplier picks the multiplier for an average effort duration
func bandMultiplier(bands []DurationBand, seconds float64) float64 {
	for _, b := range bands {
		if seconds >= float64(b.MinSeconds) {
			return b.Multiplier
		}
	}
	return 0.95
}

// typeMultiplier returns the duration-fallback multiplier for an activity type
func (t Thresholds) typeMultiplier(activityType string) float64 {
	if m, ok := t.TypeMultipliers[activityType]; ok {
		return m
	}
	return t.DefaultMultiplier
}

// Engine runs every calculation against one set of thresholds.
// It holds no other state, so a single value can be shared freely.
type Engine struct {
	t Thresholds
}

// New creates an engine with the given thresholds
func New(t Thresholds) *Engine {
	return &Engine{t: t.clone()}
}

// Default creates an engine with DefaultThresholds
func Default() *Engine {
	return New(DefaultThresholds())
}

// Thresholds returns a copy of the engine's configuration
func (e *Engine) Thresholds() Thresholds {
	return e.t.clone()
}

func (t Thresholds) clone() Thresholds {
	out := t
	out.FTPBands = append([]DurationBand(nil), t.FTPBands...)
	out.FTHRBands = append([]DurationBand(nil), t.FTHRBands...)
	out.TypeMultipliers = make(map[string]float64, len(t.TypeMultipliers))
	for k, v := range t.TypeMultipliers {
		out.TypeMultipliers[k] = v
	}
	return out
}
