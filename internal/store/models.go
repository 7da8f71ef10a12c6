package store

import "time"

// Activity sources
const (
	SourceStrava = "strava"
	SourceFIT    = "fit"
)

// Auth represents OAuth tokens for Strava API access
type Auth struct {
	AthleteID    int64     `db:"athlete_id"`
	AccessToken  string    `db:"access_token"`
	RefreshToken string    `db:"refresh_token"`
	ExpiresAt    time.Time `db:"expires_at"`
}

// ExpiresWithin reports whether the access token is expired at now+d
func (a *Auth) ExpiresWithin(now time.Time, d time.Duration) bool {
	return !a.ExpiresAt.After(now.Add(d))
}

// Activity is one stored workout summary
type Activity struct {
	ID                   int64     `db:"id"`
	AthleteID            int64     `db:"athlete_id"`
	Source               string    `db:"source"`     // SourceStrava or SourceFIT
	ImportKey            string    `db:"import_key"` // content key for imported files, empty for Strava
	Name                 string    `db:"name"`
	Type                 string    `db:"type"`
	StartDate            time.Time `db:"start_date"`
	MovingTime           int       `db:"moving_time"`  // seconds
	ElapsedTime          int       `db:"elapsed_time"` // seconds
	Distance             float64   `db:"distance"`     // meters
	TotalElevationGain   float64   `db:"total_elevation_gain"`
	AverageWatts         *float64  `db:"average_watts"`          // nullable
	MaxWatts             *float64  `db:"max_watts"`              // nullable
	WeightedAverageWatts *float64  `db:"weighted_average_watts"` // nullable, normalized power
	AverageHeartrate     *float64  `db:"average_heartrate"`      // nullable
	MaxHeartrate         *float64  `db:"max_heartrate"`          // nullable
	HasHeartrate         bool      `db:"has_heartrate"`
	HasPower             bool      `db:"has_power"`
}
