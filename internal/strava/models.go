package strava

import "time"

// Activity represents a Strava activity summary from the API
type Activity struct {
	ID                   int64     `json:"id"`
	Athlete              Athlete   `json:"athlete"`
	Name                 string    `json:"name"`
	Type                 string    `json:"type"`
	SportType            string    `json:"sport_type"`
	StartDate            time.Time `json:"start_date"`
	StartDateLocal       time.Time `json:"start_date_local"`
	Timezone             string    `json:"timezone"`
	Distance             float64   `json:"distance"`             // meters
	MovingTime           int       `json:"moving_time"`          // seconds
	ElapsedTime          int       `json:"elapsed_time"`         // seconds
	TotalElevationGain   float64   `json:"total_elevation_gain"` // meters
	AverageSpeed         float64   `json:"average_speed"`        // m/s
	AverageWatts         float64   `json:"average_watts"`
	MaxWatts             float64   `json:"max_watts"`
	WeightedAverageWatts float64   `json:"weighted_average_watts"` // normalized power
	DeviceWatts          bool      `json:"device_watts"`
	AverageHeartrate     float64   `json:"average_heartrate"` // bpm
	MaxHeartrate         float64   `json:"max_heartrate"`     // bpm
	HasHeartrate         bool      `json:"has_heartrate"`
}

// HasPower reports whether the activity carries power meter data.
// Strava fills average_watts with an estimate for rides without a meter.
func (a Activity) HasPower() bool {
	return a.DeviceWatts && a.AverageWatts > 0
}

// Athlete represents a Strava athlete (minimal info in activity response)
type Athlete struct {
	ID int64 `json:"id"`
}
