package service

import (
	"ridelab/internal/analysis"
	"ridelab/internal/fitfile"
	"ridelab/internal/store"
	"ridelab/internal/strava"
)

// ToAnalysis converts a stored activity into the engine's canonical record.
// Power and heart rate stay nil unless the activity actually recorded them.
func ToAnalysis(a store.Activity) analysis.Activity {
	out := analysis.Activity{
		ID:              a.ID,
		Date:            a.StartDate,
		DurationSeconds: a.MovingTime,
		Type:            a.Type,
		DistanceMeters:  a.Distance,
		ElevationMeters: a.TotalElevationGain,
	}
	if a.HasPower {
		out.AvgPower = positive(a.AverageWatts)
		out.MaxPower = positive(a.MaxWatts)
		out.NormalizedPower = positive(a.WeightedAverageWatts)
	}
	if a.HasHeartrate {
		out.AvgHeartRate = positive(a.AverageHeartrate)
		out.MaxHeartRate = positive(a.MaxHeartrate)
	}
	return out
}

// ToAnalysisList converts a slice of stored activities
func ToAnalysisList(activities []store.Activity) []analysis.Activity {
	out := make([]analysis.Activity, len(activities))
	for i, a := range activities {
		out[i] = ToAnalysis(a)
	}
	return out
}

// FromStrava converts a Strava API activity to a store activity
func FromStrava(a strava.Activity) *store.Activity {
	activity := &store.Activity{
		ID:                 a.ID,
		AthleteID:          a.Athlete.ID,
		Source:             store.SourceStrava,
		Name:               a.Name,
		Type:               a.Type,
		StartDate:          a.StartDate,
		MovingTime:         a.MovingTime,
		ElapsedTime:        a.ElapsedTime,
		Distance:           a.Distance,
		TotalElevationGain: a.TotalElevationGain,
		HasHeartrate:       a.HasHeartrate,
		HasPower:           a.HasPower(),
	}

	if activity.HasPower {
		activity.AverageWatts = nonZero(a.AverageWatts)
		activity.MaxWatts = nonZero(a.MaxWatts)
		activity.WeightedAverageWatts = nonZero(a.WeightedAverageWatts)
	}
	if a.HasHeartrate {
		activity.AverageHeartrate = nonZero(a.AverageHeartrate)
		activity.MaxHeartrate = nonZero(a.MaxHeartrate)
	}

	return activity
}

// FromFIT converts a decoded FIT file into a store activity. Imported
// activities get negative IDs derived from their start time so they never
// collide with Strava IDs.
func FromFIT(s *fitfile.Summary) *store.Activity {
	activity := &store.Activity{
		ID:                 -s.StartTime.Unix(),
		Source:             store.SourceFIT,
		ImportKey:          s.ImportKey,
		Name:               s.Name,
		Type:               s.Sport,
		StartDate:          s.StartTime,
		MovingTime:         int(s.MovingSeconds),
		ElapsedTime:        int(s.ElapsedSeconds),
		Distance:           s.DistanceMeters,
		TotalElevationGain: s.AscentMeters,
		HasHeartrate:       s.HasHeartRate(),
		HasPower:           s.HasPower(),
	}

	if activity.HasPower {
		activity.AverageWatts = nonZero(s.AvgPower)
		activity.MaxWatts = nonZero(s.MaxPower)
		activity.WeightedAverageWatts = nonZero(s.NormalizedPower)
	}
	if activity.HasHeartrate {
		activity.AverageHeartrate = nonZero(s.AvgHeartRate)
		activity.MaxHeartrate = nonZero(s.MaxHeartRate)
	}

	return activity
}

func positive(v *float64) *float64 {
	if v == nil || *v <= 0 {
		return nil
	}
	out := *v
	return &out
}

func nonZero(v float64) *float64 {
	if v <= 0 {
		return nil
	}
	return &v
}
