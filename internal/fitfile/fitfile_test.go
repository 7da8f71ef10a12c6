package fitfile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tormoder/fit"
)

var rideStart = time.Date(2024, 5, 20, 6, 0, 0, 0, time.UTC)

// buildRide encodes a ride with one record per second
func buildRide(t *testing.T, seconds int, power func(i int) uint16, withSession bool) []byte {
	t.Helper()

	header := fit.NewHeader(fit.V20, true)
	file, err := fit.NewFile(fit.FileTypeActivity, header)
	if err != nil {
		t.Fatalf("new fit file: %v", err)
	}
	activity, err := file.Activity()
	if err != nil {
		t.Fatalf("activity accessor: %v", err)
	}

	start := fit.NewEventMsg()
	start.Timestamp = rideStart
	start.Event = fit.EventTimer
	start.EventType = fit.EventTypeStart
	activity.Events = append(activity.Events, start)

	for i := 0; i < seconds; i++ {
		rec := fit.NewRecordMsg()
		rec.Timestamp = rideStart.Add(time.Duration(i) * time.Second)
		rec.Power = power(i)
		rec.HeartRate = 150
		activity.Records = append(activity.Records, rec)
	}

	if withSession {
		session := fit.NewSessionMsg()
		session.Timestamp = rideStart.Add(time.Duration(seconds) * time.Second)
		session.StartTime = rideStart
		session.Sport = fit.SportCycling
		activity.Sessions = append(activity.Sessions, session)
	}

	var buf bytes.Buffer
	if err := fit.Encode(&buf, file, binary.LittleEndian); err != nil {
		t.Fatalf("encode fit: %v", err)
	}
	return buf.Bytes()
}

func TestDecode_DerivesFromRecords(t *testing.T) {
	data := buildRide(t, 600, func(int) uint16 { return 200 }, true)

	s, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !s.StartTime.Equal(rideStart) {
		t.Errorf("StartTime = %v, want %v", s.StartTime, rideStart)
	}
	if s.Sport != "Ride" {
		t.Errorf("Sport = %q, want Ride", s.Sport)
	}
	if s.ElapsedSeconds != 599 {
		t.Errorf("ElapsedSeconds = %v, want 599", s.ElapsedSeconds)
	}
	if s.AvgPower != 200 || s.MaxPower != 200 {
		t.Errorf("AvgPower/MaxPower = %v/%v, want 200/200", s.AvgPower, s.MaxPower)
	}
	if math.Abs(s.NormalizedPower-200) > 0.01 {
		t.Errorf("NormalizedPower = %v, want 200", s.NormalizedPower)
	}
	if s.AvgHeartRate != 150 || !s.HasHeartRate() || !s.HasPower() {
		t.Errorf("heart rate not summarized: %+v", s)
	}
	if s.ImportKey != ImportKey(data) {
		t.Errorf("ImportKey = %q, want %q", s.ImportKey, ImportKey(data))
	}
}

func TestDecode_WithoutSession(t *testing.T) {
	data := buildRide(t, 60, func(int) uint16 { return math.MaxUint16 }, false)

	s, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !s.StartTime.Equal(rideStart) {
		t.Errorf("StartTime = %v, want %v", s.StartTime, rideStart)
	}
	if s.HasPower() {
		t.Errorf("HasPower() = true with no power samples")
	}
}

func TestDecode_Garbage(t *testing.T) {
	if _, err := Decode([]byte("not a fit file")); err == nil {
		t.Error("Decode() should fail on garbage input")
	}
}

func TestReadFile(t *testing.T) {
	data := buildRide(t, 120, func(int) uint16 { return 180 }, true)
	path := filepath.Join(t.TempDir(), "ride.fit")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if s.AvgPower != 180 {
		t.Errorf("AvgPower = %v, want 180", s.AvgPower)
	}

	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.fit")); err == nil || errors.Is(err, ErrNoData) {
		t.Errorf("ReadFile(missing) error = %v", err)
	}
}

func TestNormalizedPower(t *testing.T) {
	tests := []struct {
		name    string
		samples []float64
		want    float64
	}{
		{"empty", nil, 0},
		{"short series is the mean", []float64{100, 200, 300}, 200},
		{"steady", repeat(250, 120), 250},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizedPower(tt.samples); math.Abs(got-tt.want) > 0.01 {
				t.Errorf("NormalizedPower() = %v, want %v", got, tt.want)
			}
		})
	}

	// surges weigh more than their share of the average
	surgy := append(repeat(100, 300), repeat(300, 300)...)
	if np := NormalizedPower(surgy); np <= average(surgy) {
		t.Errorf("NormalizedPower() = %v, want above mean %v", np, average(surgy))
	}
}

func TestImportKey_Stable(t *testing.T) {
	a := ImportKey([]byte("abc"))
	if a != ImportKey([]byte("abc")) {
		t.Error("ImportKey() not stable for identical content")
	}
	if a == ImportKey([]byte("abd")) {
		t.Error("ImportKey() collided for different content")
	}
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}
