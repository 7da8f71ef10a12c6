package store

import (
	"errors"
	"testing"
	"time"
)

// setupTestDB creates an in-memory database for testing
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewTestStore()
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})
	return db
}

func floatPtr(f float64) *float64 {
	return &f
}

func TestUpsertAndGetActivity(t *testing.T) {
	db := setupTestDB(t)

	start := time.Date(2024, 5, 10, 7, 30, 0, 0, time.UTC)
	a := &Activity{
		ID:                   42,
		AthleteID:            7,
		Name:                 "Morning Ride",
		Type:                 "Ride",
		StartDate:            start,
		MovingTime:           3600,
		ElapsedTime:          3900,
		Distance:             32000,
		TotalElevationGain:   410,
		AverageWatts:         floatPtr(210),
		WeightedAverageWatts: floatPtr(228),
		AverageHeartrate:     floatPtr(148),
		HasHeartrate:         true,
		HasPower:             true,
	}
	if err := db.UpsertActivity(a); err != nil {
		t.Fatalf("UpsertActivity failed: %v", err)
	}

	got, err := db.GetActivity(42)
	if err != nil {
		t.Fatalf("GetActivity failed: %v", err)
	}
	if got.Source != SourceStrava {
		t.Errorf("Source = %q, want %q", got.Source, SourceStrava)
	}
	if !got.StartDate.Equal(start) {
		t.Errorf("StartDate = %v, want %v", got.StartDate, start)
	}
	if got.WeightedAverageWatts == nil || *got.WeightedAverageWatts != 228 {
		t.Errorf("WeightedAverageWatts = %v, want 228", got.WeightedAverageWatts)
	}
	if got.MaxWatts != nil {
		t.Errorf("MaxWatts = %v, want nil", *got.MaxWatts)
	}
	if got.MaxHeartrate != nil {
		t.Errorf("MaxHeartrate = %v, want nil", *got.MaxHeartrate)
	}
	if !got.HasPower || !got.HasHeartrate {
		t.Error("HasPower/HasHeartrate should be true")
	}

	// update in place
	a.Name = "Renamed"
	if err := db.UpsertActivity(a); err != nil {
		t.Fatalf("UpsertActivity (update) failed: %v", err)
	}
	got, _ = db.GetActivity(42)
	if got.Name != "Renamed" {
		t.Errorf("Name = %q, want Renamed", got.Name)
	}
	if n, _ := db.CountActivities(); n != 1 {
		t.Errorf("CountActivities = %d, want 1", n)
	}
}

func TestGetActivity_NotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetActivity(999)
	if !errors.Is(err, ErrActivityNotFound) {
		t.Errorf("GetActivity error = %v, want ErrActivityNotFound", err)
	}
}

func TestListActivitiesSince(t *testing.T) {
	db := setupTestDB(t)
	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	for i, days := range []int{0, 10, 20, 30} {
		err := db.UpsertActivity(&Activity{
			ID:        int64(i + 1),
			Name:      "Ride",
			Type:      "Ride",
			StartDate: base.AddDate(0, 0, days),
		})
		if err != nil {
			t.Fatalf("UpsertActivity failed: %v", err)
		}
	}

	acts, err := db.ListActivitiesSince(base.AddDate(0, 0, 10))
	if err != nil {
		t.Fatalf("ListActivitiesSince failed: %v", err)
	}
	if len(acts) != 3 {
		t.Fatalf("got %d activities, want 3", len(acts))
	}
	if acts[0].ID != 2 || acts[2].ID != 4 {
		t.Errorf("activities not in ascending date order: %d, %d", acts[0].ID, acts[2].ID)
	}

	recent, err := db.ListActivities(2, 0)
	if err != nil {
		t.Fatalf("ListActivities failed: %v", err)
	}
	if len(recent) != 2 || recent[0].ID != 4 {
		t.Errorf("ListActivities should return newest first")
	}
}

func TestImportKey(t *testing.T) {
	db := setupTestDB(t)

	a := &Activity{
		ID:        -1714550400,
		Source:    SourceFIT,
		ImportKey: "6ba7b810-9dad-11d1-80b4-00c04fd430c8",
		Name:      "Imported",
		Type:      "Ride",
		StartDate: time.Unix(1714550400, 0),
	}
	if err := db.UpsertActivity(a); err != nil {
		t.Fatalf("UpsertActivity failed: %v", err)
	}

	ok, err := db.HasImportKey(a.ImportKey)
	if err != nil || !ok {
		t.Errorf("HasImportKey = (%v, %v), want (true, nil)", ok, err)
	}
	ok, _ = db.HasImportKey("other")
	if ok {
		t.Error("HasImportKey(other) = true, want false")
	}

	got, err := db.GetActivity(a.ID)
	if err != nil {
		t.Fatalf("GetActivity failed: %v", err)
	}
	if got.Source != SourceFIT || got.ImportKey != a.ImportKey {
		t.Errorf("Source/ImportKey = %q/%q", got.Source, got.ImportKey)
	}

	// two Strava activities without keys don't collide on the unique index
	for id := int64(1); id <= 2; id++ {
		if err := db.UpsertActivity(&Activity{ID: id, Name: "r", Type: "Ride", StartDate: time.Now()}); err != nil {
			t.Fatalf("UpsertActivity without import key failed: %v", err)
		}
	}
}

func TestAuth(t *testing.T) {
	db := setupTestDB(t)

	if _, err := db.GetAuth(); !errors.Is(err, ErrNoAuth) {
		t.Fatalf("GetAuth error = %v, want ErrNoAuth", err)
	}
	if err := db.UpdateTokens("a", "r", time.Now()); !errors.Is(err, ErrNoAuth) {
		t.Errorf("UpdateTokens error = %v, want ErrNoAuth", err)
	}

	expires := time.Unix(1717000000, 0)
	if err := db.SaveAuth(&Auth{AthleteID: 7, AccessToken: "a1", RefreshToken: "r1", ExpiresAt: expires}); err != nil {
		t.Fatalf("SaveAuth failed: %v", err)
	}
	if err := db.UpdateTokens("a2", "r2", expires.Add(time.Hour)); err != nil {
		t.Fatalf("UpdateTokens failed: %v", err)
	}

	auth, err := db.GetAuth()
	if err != nil {
		t.Fatalf("GetAuth failed: %v", err)
	}
	if auth.AccessToken != "a2" || auth.RefreshToken != "r2" || auth.AthleteID != 7 {
		t.Errorf("GetAuth = %+v", auth)
	}
	if !auth.ExpiresAt.Equal(expires.Add(time.Hour)) || auth.ExpiresAt.Location() != time.UTC {
		t.Errorf("ExpiresAt = %v, want %v in UTC", auth.ExpiresAt, expires.Add(time.Hour).UTC())
	}

	// a refresh without a new refresh token keeps the stored one
	if err := db.UpdateTokens("a3", "", expires.Add(2*time.Hour)); err != nil {
		t.Fatalf("UpdateTokens failed: %v", err)
	}
	if auth, err = db.GetAuth(); err != nil {
		t.Fatalf("GetAuth failed: %v", err)
	}
	if auth.AccessToken != "a3" || auth.RefreshToken != "r2" {
		t.Errorf("after refresh GetAuth = %+v, want a3/r2", auth)
	}

	if err := db.ClearAuth(); err != nil {
		t.Fatalf("ClearAuth failed: %v", err)
	}
	if _, err := db.GetAuth(); !errors.Is(err, ErrNoAuth) {
		t.Errorf("GetAuth after clear = %v, want ErrNoAuth", err)
	}
}

func TestAuth_Incomplete(t *testing.T) {
	db := setupTestDB(t)

	tests := []struct {
		name string
		auth Auth
	}{
		{"no access token", Auth{AthleteID: 7, RefreshToken: "r"}},
		{"no refresh token", Auth{AthleteID: 7, AccessToken: "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := db.SaveAuth(&tt.auth); !errors.Is(err, ErrIncompleteAuth) {
				t.Errorf("SaveAuth error = %v, want ErrIncompleteAuth", err)
			}
		})
	}

	if _, err := db.GetAuth(); !errors.Is(err, ErrNoAuth) {
		t.Errorf("GetAuth error = %v, want ErrNoAuth after rejected saves", err)
	}
	if err := db.UpdateTokens("", "r", time.Now()); !errors.Is(err, ErrIncompleteAuth) {
		t.Errorf("UpdateTokens error = %v, want ErrIncompleteAuth", err)
	}
}

func TestAuth_ExpiresWithin(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	auth := &Auth{ExpiresAt: now.Add(time.Minute)}

	tests := []struct {
		name   string
		within time.Duration
		want   bool
	}{
		{"valid", 0, false},
		{"inside buffer", 2 * time.Minute, true},
		{"at buffer edge", time.Minute, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := auth.ExpiresWithin(now, tt.within); got != tt.want {
				t.Errorf("ExpiresWithin(%v) = %v, want %v", tt.within, got, tt.want)
			}
		})
	}
}

func TestSyncState(t *testing.T) {
	db := setupTestDB(t)

	v, err := db.GetSyncState("missing")
	if err != nil || v != "" {
		t.Errorf("GetSyncState(missing) = (%q, %v)", v, err)
	}

	zero, err := db.GetSyncTime("last_activity_sync")
	if err != nil || !zero.IsZero() {
		t.Errorf("GetSyncTime(unset) = (%v, %v)", zero, err)
	}

	when := time.Unix(1717171717, 0)
	if err := db.SetSyncTime("last_activity_sync", when); err != nil {
		t.Fatalf("SetSyncTime failed: %v", err)
	}
	got, err := db.GetSyncTime("last_activity_sync")
	if err != nil {
		t.Fatalf("GetSyncTime failed: %v", err)
	}
	if !got.Equal(when) {
		t.Errorf("GetSyncTime = %v, want %v", got, when)
	}

	if err := db.SetSyncState("bad", "not-a-number"); err != nil {
		t.Fatal(err)
	}
	if _, err := db.GetSyncTime("bad"); err == nil {
		t.Error("GetSyncTime(bad) should fail")
	}
}
