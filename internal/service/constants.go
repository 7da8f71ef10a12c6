package service

const (
	// HistoryDays of activities are loaded for every query. Covers the
	// 84-day FTHR lookback and both 42-day CTL windows, with room left to
	// warm up the fitness trend.
	HistoryDays = 182

	// Strava paging
	StravaPageSize = 100 // max allowed by Strava

	// sync_state keys
	SyncKeyActivities = "last_activity_sync"
	SyncKeyLastImport = "last_fit_import"

	// Unit conversions
	MetersPerMile = 1609.34
	MetersPerKm   = 1000.0
	FeetPerMeter  = 3.28084

	// DefaultTrendWeeks is used when the display config leaves it unset
	DefaultTrendWeeks = 12
)
