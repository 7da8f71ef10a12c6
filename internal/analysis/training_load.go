package analysis

import (
	"sort"
	"time"
)

// DailyLoad is the summed TSS of one calendar day
type DailyLoad struct {
	Date time.Time
	TSS  float64
}

// FitnessPoint is CTL/ATL/TSB at the end of one day
type FitnessPoint struct {
	Date time.Time
	CTL  float64 // Chronic Training Load - "Fitness"
	ATL  float64 // Acute Training Load - "Fatigue"
	TSB  float64 // Training Stress Balance (CTL - ATL) - "Form"
}

// dailyLoads buckets TSS by calendar day, ascending, with rest days
// zero-filled between the first and last activity
func (e *Engine) dailyLoads(activities []Activity, ftp float64) []DailyLoad {
	if len(activities) == 0 {
		return nil
	}

	byDay := make(map[string]float64)
	first, last := activities[0].Date, activities[0].Date
	for _, a := range activities {
		byDay[a.Date.Format("2006-01-02")] += float64(e.tss(a, ftp).TSS)
		if a.Date.Before(first) {
			first = a.Date
		}
		if a.Date.After(last) {
			last = a.Date
		}
	}

	var loads []DailyLoad
	for d := dayStart(first); !d.After(dayStart(last)); d = d.AddDate(0, 0, 1) {
		loads = append(loads, DailyLoad{Date: d, TSS: byDay[d.Format("2006-01-02")]})
	}
	return loads
}

// FitnessTrend computes a day-indexed CTL/ATL/TSB series from the first
// activity up to asOf. Rest days (including the days between the last
// activity and asOf) feed zero load. Activities on or after asOf are ignored.
func (e *Engine) FitnessTrend(activities []Activity, asOf time.Time, ftp float64) ([]FitnessPoint, error) {
	if err := Validate(activities); err != nil {
		return nil, err
	}

	var before []Activity
	for _, a := range activities {
		if a.Date.Before(asOf) {
			before = append(before, a)
		}
	}
	loads := e.dailyLoads(before, ftp)
	if len(loads) == 0 {
		return nil, nil
	}
	for d := loads[len(loads)-1].Date.AddDate(0, 0, 1); d.Before(asOf); d = d.AddDate(0, 0, 1) {
		loads = append(loads, DailyLoad{Date: d})
	}

	return fitnessSeries(loads, e.t.CTLDays, e.t.ATLDays), nil
}

// fitnessSeries runs both EWMAs over consecutive daily loads
func fitnessSeries(loads []DailyLoad, ctlDays, atlDays int) []FitnessPoint {
	sort.Slice(loads, func(i, j int) bool {
		return loads[i].Date.Before(loads[j].Date)
	})

	ctlDecay := ewmaAlpha(ctlDays)
	atlDecay := ewmaAlpha(atlDays)

	points := make([]FitnessPoint, 0, len(loads))
	var ctl, atl float64
	for _, dl := range loads {
		ctl += ctlDecay * (dl.TSS - ctl)
		atl += atlDecay * (dl.TSS - atl)
		points = append(points, FitnessPoint{
			Date: dl.Date,
			CTL:  ctl,
			ATL:  atl,
			TSB:  ctl - atl,
		})
	}
	return points
}

// CurrentFitness returns the last point of FitnessTrend, or a zero point
func (e *Engine) CurrentFitness(activities []Activity, asOf time.Time, ftp float64) (FitnessPoint, error) {
	points, err := e.FitnessTrend(activities, asOf, ftp)
	if err != nil || len(points) == 0 {
		return FitnessPoint{}, err
	}
	return points[len(points)-1], nil
}

// FormDescription returns a human-readable description of TSB
func FormDescription(tsb float64) string {
	switch {
	case tsb > 25:
		return "Very fresh (possibly detrained)"
	case tsb > 10:
		return "Fresh and ready to race"
	case tsb > 0:
		return "Neutral - good for training"
	case tsb > -10:
		return "Slightly fatigued"
	case tsb > -25:
		return "Tired but building fitness"
	default:
		return "Very fatigued - rest needed"
	}
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
