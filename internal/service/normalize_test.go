package service

import (
	"testing"
	"time"

	"ridelab/internal/fitfile"
	"ridelab/internal/store"
	"ridelab/internal/strava"
)

func TestToAnalysis(t *testing.T) {
	start := time.Date(2024, 5, 1, 7, 0, 0, 0, time.UTC)
	a := store.Activity{
		ID:                   9,
		Type:                 "Ride",
		StartDate:            start,
		MovingTime:           3000,
		Distance:             30000,
		TotalElevationGain:   250,
		AverageWatts:         floatPtr(190),
		WeightedAverageWatts: floatPtr(0), // zero is treated as absent
		AverageHeartrate:     floatPtr(140),
		HasPower:             true,
		HasHeartrate:         true,
	}

	got := ToAnalysis(a)
	if got.ID != 9 || !got.Date.Equal(start) || got.DurationSeconds != 3000 {
		t.Errorf("identity fields not copied: %+v", got)
	}
	if got.AvgPower == nil || *got.AvgPower != 190 {
		t.Errorf("AvgPower = %v, want 190", got.AvgPower)
	}
	if got.NormalizedPower != nil {
		t.Errorf("NormalizedPower = %v, want nil", *got.NormalizedPower)
	}
	if got.MaxHeartRate != nil {
		t.Errorf("MaxHeartRate = %v, want nil", *got.MaxHeartRate)
	}
	if got.DistanceMeters != 30000 || got.ElevationMeters != 250 {
		t.Errorf("distance/elevation = %v/%v", got.DistanceMeters, got.ElevationMeters)
	}

	// flags win over stray values
	a.HasPower = false
	if got := ToAnalysis(a); got.AvgPower != nil {
		t.Errorf("AvgPower = %v with HasPower false, want nil", *got.AvgPower)
	}

	// the input pointer is not shared
	got = ToAnalysis(store.Activity{AverageHeartrate: floatPtr(150), HasHeartrate: true})
	*got.AvgHeartRate = 1
	if list := ToAnalysisList([]store.Activity{a}); len(list) != 1 || list[0].AvgHeartRate == nil || *list[0].AvgHeartRate != 140 {
		t.Errorf("ToAnalysisList() = %+v", list)
	}
}

func TestFromStrava(t *testing.T) {
	tests := []struct {
		name      string
		in        strava.Activity
		wantPower bool
		wantHR    bool
	}{
		{
			name:      "power meter and hr",
			in:        strava.Activity{ID: 1, Type: "Ride", AverageWatts: 200, WeightedAverageWatts: 220, DeviceWatts: true, HasHeartrate: true, AverageHeartrate: 150},
			wantPower: true,
			wantHR:    true,
		},
		{
			name: "estimated power is dropped",
			in:   strava.Activity{ID: 2, Type: "Ride", AverageWatts: 150},
		},
		{
			name:   "run with hr",
			in:     strava.Activity{ID: 3, Type: "Run", HasHeartrate: true, AverageHeartrate: 155, MaxHeartrate: 172},
			wantHR: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromStrava(tt.in)
			if got.Source != store.SourceStrava {
				t.Errorf("Source = %q", got.Source)
			}
			if got.HasPower != tt.wantPower || (got.AverageWatts != nil) != tt.wantPower {
				t.Errorf("HasPower = %v, AverageWatts = %v, want power %v", got.HasPower, got.AverageWatts, tt.wantPower)
			}
			if got.HasHeartrate != tt.wantHR || (got.AverageHeartrate != nil) != tt.wantHR {
				t.Errorf("HasHeartrate = %v, want %v", got.HasHeartrate, tt.wantHR)
			}
		})
	}
}

func TestFromFIT(t *testing.T) {
	start := time.Date(2024, 5, 20, 6, 0, 0, 0, time.UTC)
	s := &fitfile.Summary{
		ImportKey:       "key",
		Name:            "Ride 2024-05-20 06:00",
		Sport:           "Ride",
		StartTime:       start,
		ElapsedSeconds:  3700,
		MovingSeconds:   3600,
		DistanceMeters:  35000,
		AvgPower:        210,
		NormalizedPower: 225,
	}

	got := FromFIT(s)
	if got.ID != -start.Unix() {
		t.Errorf("ID = %d, want %d", got.ID, -start.Unix())
	}
	if got.Source != store.SourceFIT || got.ImportKey != "key" {
		t.Errorf("Source/ImportKey = %q/%q", got.Source, got.ImportKey)
	}
	if !got.HasPower || got.WeightedAverageWatts == nil || *got.WeightedAverageWatts != 225 {
		t.Errorf("power not carried over: %+v", got)
	}
	if got.MaxWatts != nil {
		t.Errorf("MaxWatts = %v, want nil", *got.MaxWatts)
	}
	if got.HasHeartrate {
		t.Error("HasHeartrate = true without heart rate data")
	}
	if got.MovingTime != 3600 || got.ElapsedTime != 3700 {
		t.Errorf("MovingTime/ElapsedTime = %d/%d", got.MovingTime, got.ElapsedTime)
	}
}
