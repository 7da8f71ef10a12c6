package analysis

import (
	"math"
	"time"
)

// CTLTrend classifies how chronic load moved between two windows
type CTLTrend string

const (
	TrendDeclining CTLTrend = "declining"
	TrendStable    CTLTrend = "stable"
	TrendImproving CTLTrend = "improving"
)

// Gap is a break between two consecutive activities, or between the
// last activity and the reference date
type Gap struct {
	StartDate time.Time // last activity before the break
	EndDate   time.Time // first activity after it, or asOf
	Days      int
}

// TrainingContext summarizes recent training for threshold estimation
type TrainingContext struct {
	CurrentCTL         float64
	PreviousCTL        float64
	CTLChangeRatio     float64
	CTLTrend           CTLTrend
	Gaps               []Gap
	HasRecentGap       bool
	HardEffortCount    int
	WeeklyTSS          float64
	TrainingConsistent bool
}

// AnalyzeContext derives the training context as of asOf.
//
// CurrentCTL covers the CTLDays before asOf and PreviousCTL the CTLDays
// before that. A gap is reported when it ends inside the current window,
// so a break that began before the window or runs up to asOf counts.
// ftp is only used for TSS and may be 0.
func (e *Engine) AnalyzeContext(activities []Activity, asOf time.Time, ftp float64) (TrainingContext, error) {
	if err := Validate(activities); err != nil {
		return TrainingContext{}, err
	}
	return e.analyzeContext(activities, asOf, ftp), nil
}

func (e *Engine) analyzeContext(activities []Activity, asOf time.Time, ftp float64) TrainingContext {
	days := e.t.CTLDays
	current := filterWindow(activities, trailing(asOf, days))
	previous := filterWindow(activities, between(asOf, 2*days, days))

	ctx := TrainingContext{
		CurrentCTL:  e.ctl(current, ftp),
		PreviousCTL: e.ctl(previous, ftp),
	}
	ctx.CTLChangeRatio = safeRatio(ctx.CurrentCTL-ctx.PreviousCTL, ctx.PreviousCTL)
	ctx.CTLTrend = e.classifyTrend(ctx.CTLChangeRatio)

	ctx.Gaps = e.findGaps(activities, trailing(asOf, days))
	for _, g := range ctx.Gaps {
		if g.Days > e.t.RecentGapDays {
			ctx.HasRecentGap = true
			break
		}
	}

	for _, a := range current {
		if e.isHardEffort(a) {
			ctx.HardEffortCount++
		}
	}

	ctx.WeeklyTSS = e.totalTSS(current, ftp) / float64(elapsedWeeks(current, asOf, days))
	ctx.TrainingConsistent = !ctx.HasRecentGap && ctx.WeeklyTSS > e.t.ConsistencyWeeklyTSS

	return ctx
}

func (e *Engine) classifyTrend(ratio float64) CTLTrend {
	switch {
	case ratio < -e.t.TrendChangeRatio:
		return TrendDeclining
	case ratio > e.t.TrendChangeRatio:
		return TrendImproving
	default:
		return TrendStable
	}
}

// findGaps records every break longer than GapDays whose end falls in w.
// The last activity before w.Start opens the scan and w.End closes it.
func (e *Engine) findGaps(activities []Activity, w Window) []Gap {
	var dates []time.Time
	for _, a := range sortedByDate(activities) {
		if a.Date.Before(w.End) {
			dates = append(dates, a.Date)
		}
	}
	if len(dates) == 0 {
		return nil
	}
	dates = append(dates, w.End)

	var gaps []Gap
	for i := 1; i < len(dates); i++ {
		prev, next := dates[i-1], dates[i]
		if next.Before(w.Start) {
			continue
		}
		if d := daysBetween(prev, next); d > e.t.GapDays {
			gaps = append(gaps, Gap{StartDate: prev, EndDate: next, Days: d})
		}
	}
	return gaps
}

// elapsedWeeks counts the weeks from the earliest activity to asOf,
// at least 1 and at most the window length
func elapsedWeeks(activities []Activity, asOf time.Time, windowDays int) int {
	maxWeeks := windowDays / 7
	if maxWeeks < 1 {
		maxWeeks = 1
	}
	if len(activities) == 0 {
		return 1
	}

	earliest := activities[0].Date
	for _, a := range activities[1:] {
		if a.Date.Before(earliest) {
			earliest = a.Date
		}
	}

	weeks := int(math.Ceil(asOf.Sub(earliest).Hours() / (24 * 7)))
	if weeks < 1 {
		return 1
	}
	if weeks > maxWeeks {
		return maxWeeks
	}
	return weeks
}

// daysBetween counts calendar days from a to b
func daysBetween(a, b time.Time) int {
	return int(math.Round(dayStart(b).Sub(dayStart(a)).Hours() / 24))
}
