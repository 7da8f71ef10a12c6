// Package fitfile reads ride summaries out of Garmin FIT activity files.
package fitfile

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/tormoder/fit"
)

// ErrNoData is returned for activity files without a session or any records
var ErrNoData = errors.New("fit file has no session or record data")

// importNamespace scopes the content-derived import keys
var importNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("ridelab:fit-import"))

// npWindow is the rolling window, in samples, for normalized power
const npWindow = 30

// Summary is what the engine needs from one recorded activity
type Summary struct {
	ImportKey       string
	Name            string
	Sport           string
	StartTime       time.Time
	ElapsedSeconds  float64
	MovingSeconds   float64
	DistanceMeters  float64
	AscentMeters    float64
	AvgPower        float64
	MaxPower        float64
	NormalizedPower float64
	AvgHeartRate    float64
	MaxHeartRate    float64
}

// HasPower reports whether any power was recorded
func (s *Summary) HasPower() bool { return s.AvgPower > 0 }

// HasHeartRate reports whether any heart rate was recorded
func (s *Summary) HasHeartRate() bool { return s.AvgHeartRate > 0 }

// ImportKey derives a stable key from the raw file bytes, so the same
// file imported twice is recognized
func ImportKey(data []byte) string {
	return uuid.NewSHA1(importNamespace, data).String()
}

// ReadFile decodes the activity file at path
func ReadFile(path string) (*Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open FIT file: %w", err)
	}
	return Decode(data)
}

// Decode summarizes an encoded FIT activity. Session totals are preferred;
// anything the session leaves unset is derived from the record stream.
func Decode(data []byte) (*Summary, error) {
	decoded, err := fit.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode FIT file: %w", err)
	}
	activity, err := decoded.Activity()
	if err != nil {
		return nil, fmt.Errorf("activity FIT expected: %w", err)
	}

	s, err := summarize(activity)
	if err != nil {
		return nil, err
	}
	s.ImportKey = ImportKey(data)
	return s, nil
}

func summarize(activity *fit.ActivityFile) (*Summary, error) {
	series := buildSeries(activity.Records)
	if len(activity.Sessions) == 0 && series.count == 0 {
		return nil, ErrNoData
	}

	s := &Summary{Sport: "Ride"}
	if len(activity.Sessions) > 0 {
		session := activity.Sessions[0]
		s.Sport = sportName(session.Sport)
		s.StartTime = validTime(session.StartTime)
		s.ElapsedSeconds = positive(session.GetTotalElapsedTimeScaled())
		s.MovingSeconds = positive(session.GetTotalTimerTimeScaled())
		s.DistanceMeters = positive(session.GetTotalDistanceScaled())
		s.AscentMeters = float64(validUint16(session.TotalAscent))
		s.AvgPower = float64(validUint16(session.AvgPower))
		s.MaxPower = float64(validUint16(session.MaxPower))
		s.NormalizedPower = float64(validUint16(session.NormalizedPower))
		s.AvgHeartRate = float64(validUint8(session.AvgHeartRate))
		s.MaxHeartRate = float64(validUint8(session.MaxHeartRate))
	}

	if s.StartTime.IsZero() {
		s.StartTime = series.start
	}
	if s.StartTime.IsZero() {
		return nil, ErrNoData
	}
	if s.ElapsedSeconds == 0 {
		s.ElapsedSeconds = series.durationSec
	}
	if s.MovingSeconds == 0 {
		s.MovingSeconds = s.ElapsedSeconds
	}
	if s.DistanceMeters == 0 {
		s.DistanceMeters = series.lastDistance
	}
	if s.AvgPower == 0 {
		s.AvgPower = average(series.power)
	}
	if s.MaxPower == 0 {
		s.MaxPower = maxValue(series.power)
	}
	if s.NormalizedPower == 0 {
		s.NormalizedPower = NormalizedPower(series.powerForNP)
	}
	if s.AvgHeartRate == 0 {
		s.AvgHeartRate = average(series.hr)
	}
	if s.MaxHeartRate == 0 {
		s.MaxHeartRate = maxValue(series.hr)
	}

	s.Name = fmt.Sprintf("%s %s", s.Sport, s.StartTime.UTC().Format("2006-01-02 15:04"))
	return s, nil
}

type series struct {
	count        int
	start, end   time.Time
	durationSec  float64
	power        []float64
	powerForNP   []float64
	hr           []float64
	lastDistance float64
}

// buildSeries orders the records by time and fills short recording gaps
// with the last power value so the NP window stays one sample per second
func buildSeries(records []*fit.RecordMsg) series {
	var rs series
	sorted := make([]*fit.RecordMsg, 0, len(records))
	for _, rec := range records {
		if rec != nil {
			sorted = append(sorted, rec)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	rs.count = len(sorted)

	var lastTS time.Time
	var lastPower float64
	havePower := false
	for _, rec := range sorted {
		ts := validTime(rec.Timestamp)
		if !ts.IsZero() {
			if rs.start.IsZero() {
				rs.start = ts
			}
			rs.end = ts
		}

		if rec.HeartRate != math.MaxUint8 {
			rs.hr = append(rs.hr, float64(rec.HeartRate))
		}
		if d := positive(rec.GetDistanceScaled()); d > 0 {
			rs.lastDistance = d
		}

		if rec.Power != math.MaxUint16 {
			power := float64(rec.Power)
			if havePower && !lastTS.IsZero() && ts.After(lastTS) {
				missing := int(math.Round(ts.Sub(lastTS).Seconds())) - 1
				if missing > 0 && missing <= 30 {
					for i := 0; i < missing; i++ {
						rs.powerForNP = append(rs.powerForNP, lastPower)
					}
				}
			}
			rs.power = append(rs.power, power)
			rs.powerForNP = append(rs.powerForNP, power)
			lastPower = power
			havePower = true
		}
		if !ts.IsZero() {
			lastTS = ts
		}
	}

	if rs.end.After(rs.start) {
		rs.durationSec = rs.end.Sub(rs.start).Seconds()
	}
	return rs
}

// NormalizedPower is the fourth root of the mean fourth power of the
// 30-sample rolling average. Short series fall back to the plain mean.
func NormalizedPower(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	if len(samples) < npWindow {
		return average(samples)
	}

	sum := 0.0
	for i := 0; i < npWindow; i++ {
		sum += samples[i]
	}

	total := 0.0
	count := 0
	for i := npWindow - 1; i < len(samples); i++ {
		if i >= npWindow {
			sum += samples[i] - samples[i-npWindow]
		}
		rolling := sum / npWindow
		total += math.Pow(rolling, 4)
		count++
	}
	return math.Pow(total/float64(count), 0.25)
}

// sportName maps FIT sports onto Strava activity types
func sportName(sport fit.Sport) string {
	// unset sport field
	if sport == 0xFF {
		return "Ride"
	}
	switch sport {
	case fit.SportCycling:
		return "Ride"
	case fit.SportRunning:
		return "Run"
	default:
		return fmt.Sprint(sport)
	}
}

func validTime(t time.Time) time.Time {
	if t.IsZero() || fit.IsBaseTime(t) {
		return time.Time{}
	}
	return t
}

func validUint8(v uint8) uint8 {
	if v == math.MaxUint8 {
		return 0
	}
	return v
}

func validUint16(v uint16) uint16 {
	if v == math.MaxUint16 {
		return 0
	}
	return v
}

func positive(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0
	}
	return v
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

func maxValue(values []float64) float64 {
	max := 0.0
	for _, v := range values {
		if v > max {
			max = v
		}
	}
	return max
}
