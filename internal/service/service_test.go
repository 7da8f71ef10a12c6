package service

import (
	"testing"
	"time"

	"ridelab/internal/config"
	"ridelab/internal/store"
)

// refDate is the asOf used by the query tests
var refDate = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func daysAgo(n int) time.Time {
	return refDate.AddDate(0, 0, -n).Add(8 * time.Hour)
}

func floatPtr(f float64) *float64 {
	return &f
}

// openTestDB creates an in-memory store with migrations applied
func openTestDB(t *testing.T) *store.DB {
	t.Helper()

	db, err := store.NewTestStore()
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// seedRide stores an hour-long ride with power and heart rate
func seedRide(t *testing.T, db *store.DB, id int64, start time.Time, np, avgHR, maxHR float64) {
	t.Helper()

	err := db.UpsertActivity(&store.Activity{
		ID:                   id,
		Name:                 "Threshold ride",
		Type:                 "Ride",
		StartDate:            start,
		MovingTime:           3600,
		ElapsedTime:          3700,
		Distance:             36000,
		TotalElevationGain:   300,
		AverageWatts:         floatPtr(np - 10),
		MaxWatts:             floatPtr(np + 200),
		WeightedAverageWatts: floatPtr(np),
		AverageHeartrate:     floatPtr(avgHR),
		MaxHeartrate:         floatPtr(maxHR),
		HasPower:             true,
		HasHeartrate:         true,
	})
	if err != nil {
		t.Fatalf("seeding activity %d: %v", id, err)
	}
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	return &cfg
}
