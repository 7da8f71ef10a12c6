package analysis

import (
	"iter"
	"math"
	"time"
)

// LoadSnapshot aggregates training load over a window
type LoadSnapshot struct {
	WindowStart          time.Time
	WindowEnd            time.Time
	TotalTSS             float64
	TotalTimeSeconds     float64
	TotalDistanceMeters  float64
	TotalElevationMeters float64
	ActivityCount        int
}

// AggregateLoad sums load for the activities dated inside w.
// ftp <= 0 means unknown; TSS then falls back to heart rate or duration.
func (e *Engine) AggregateLoad(activities []Activity, w Window, ftp float64) (LoadSnapshot, error) {
	if err := Validate(activities); err != nil {
		return LoadSnapshot{}, err
	}
	return e.aggregate(activities, w, ftp), nil
}

func (e *Engine) aggregate(activities []Activity, w Window, ftp float64) LoadSnapshot {
	snap := LoadSnapshot{WindowStart: w.Start, WindowEnd: w.End}
	for _, a := range activities {
		if !w.Contains(a.Date) {
			continue
		}
		snap.TotalTSS += float64(e.tss(a, ftp).TSS)
		snap.TotalTimeSeconds += float64(a.DurationSeconds)
		snap.TotalDistanceMeters += a.DistanceMeters
		snap.TotalElevationMeters += a.ElevationMeters
		snap.ActivityCount++
	}
	return snap
}

// CurrentWeek aggregates the 7 days before asOf
func (e *Engine) CurrentWeek(activities []Activity, asOf time.Time, ftp float64) (LoadSnapshot, error) {
	return e.AggregateLoad(activities, trailing(asOf, 7), ftp)
}

// FourWeekAverage aggregates the 28 days before asOf and divides every
// metric by 4. ActivityCount is rounded to the nearest whole activity.
func (e *Engine) FourWeekAverage(activities []Activity, asOf time.Time, ftp float64) (LoadSnapshot, error) {
	snap, err := e.AggregateLoad(activities, trailing(asOf, 28), ftp)
	if err != nil {
		return LoadSnapshot{}, err
	}
	return averageWeeks(snap, 4), nil
}

func averageWeeks(snap LoadSnapshot, weeks float64) LoadSnapshot {
	snap.TotalTSS /= weeks
	snap.TotalTimeSeconds /= weeks
	snap.TotalDistanceMeters /= weeks
	snap.TotalElevationMeters /= weeks
	snap.ActivityCount = int(math.Round(float64(snap.ActivityCount) / weeks))
	return snap
}

// LoadRatio compares this week's TSS with the 4-week weekly average.
// Returns 0 when there is no 4-week load.
func (e *Engine) LoadRatio(activities []Activity, asOf time.Time, ftp float64) (float64, error) {
	week, err := e.CurrentWeek(activities, asOf, ftp)
	if err != nil {
		return 0, err
	}
	avg, err := e.FourWeekAverage(activities, asOf, ftp)
	if err != nil {
		return 0, err
	}
	return safeRatio(week.TotalTSS, avg.TotalTSS), nil
}

// CalculateCTL computes Chronic Training Load over the given activities.
//
// With CTLPerActivity (the default) each activity is one EWMA tick in date
// order: ctl += α(tss - ctl), α = 2/(CTLDays+1), seeded at 0. Days without
// activities don't decay the value, so CTL drops slower during breaks than
// a day-indexed EWMA would. CTLPerDay zero-fills rest days instead.
func (e *Engine) CalculateCTL(activities []Activity, ftp float64) (float64, error) {
	if err := Validate(activities); err != nil {
		return 0, err
	}
	return e.ctl(activities, ftp), nil
}

func (e *Engine) ctl(activities []Activity, ftp float64) float64 {
	if len(activities) == 0 {
		return 0
	}
	alpha := ewmaAlpha(e.t.CTLDays)

	if e.t.CTLMode == CTLPerDay {
		loads := e.dailyLoads(activities, ftp)
		var ctl float64
		for _, dl := range loads {
			ctl += alpha * (dl.TSS - ctl)
		}
		return ctl
	}

	var ctl float64
	for _, a := range sortedByDate(activities) {
		ctl += alpha * (float64(e.tss(a, ftp).TSS) - ctl)
	}
	return ctl
}

// Trends yields one LoadSnapshot per calendar week (Monday start), oldest
// first, ending with the week that contains asOf. Each week is aggregated
// independently when the sequence is ranged over, so it can be iterated
// any number of times. Invalid input yields an empty sequence; call
// Validate first to see why.
func (e *Engine) Trends(activities []Activity, weeks int, asOf time.Time, ftp float64) iter.Seq[LoadSnapshot] {
	return func(yield func(LoadSnapshot) bool) {
		if weeks <= 0 || Validate(activities) != nil {
			return
		}
		current := weekStart(asOf)
		for i := weeks - 1; i >= 0; i-- {
			start := current.AddDate(0, 0, -7*i)
			w := Window{Start: start, End: start.AddDate(0, 0, 7)}
			if !yield(e.aggregate(activities, w, ftp)) {
				return
			}
		}
	}
}

// weekStart returns midnight on the Monday of t's week, in t's location
func weekStart(t time.Time) time.Time {
	daysFromMonday := (int(t.Weekday()) + 6) % 7 // Monday = 0
	monday := t.AddDate(0, 0, -daysFromMonday)
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, monday.Location())
}

func ewmaAlpha(days int) float64 {
	if days <= 0 {
		return 1
	}
	return 2.0 / (float64(days) + 1.0)
}

// safeRatio divides, returning 0 instead of NaN or Inf
func safeRatio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	r := num / den
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}
