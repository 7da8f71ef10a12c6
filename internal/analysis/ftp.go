package analysis

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Confidence grades how much evidence backs an estimate
type Confidence string

const (
	ConfidenceNone   Confidence = "none"
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
	ConfidenceManual Confidence = "manual"
)

// Estimate methods
const (
	MethodHardEfforts     = "hard_efforts"
	MethodMaintainedByCTL = "maintained_by_ctl"
	MethodEstimatedDecline = "estimated_decline"
	MethodLimitedEfforts  = "limited_efforts"
	MethodMaxHREstimate   = "max_hr_estimate"
	MethodNoHRData        = "no_hr_data"
	MethodUserProvided    = "user_provided"
)

// HardEffort is one activity used as threshold evidence
type HardEffort struct {
	ActivityID      int64
	Date            time.Time
	DurationSeconds int
	Value           float64 // watts for FTP, bpm for FTHR
}

// ThresholdEstimate is an FTP or FTHR estimate.
// A nil Value means there wasn't enough data; it is not an error.
type ThresholdEstimate struct {
	Value          *int
	Confidence     Confidence
	Method         string
	WindowDays     int
	Context        *TrainingContext
	Efforts        []HardEffort
	Message        string
	Recommendation string // empty when there is nothing to recommend
}

// HasValue reports whether the estimate carries a number
func (t ThresholdEstimate) HasValue() bool {
	return t.Value != nil
}

// isHardEffort: power data at or above the floor, 20-60 minutes long
func (e *Engine) isHardEffort(a Activity) bool {
	power, ok := a.Power()
	if !ok || power < e.t.HardEffortMinPower {
		return false
	}
	return a.DurationSeconds >= e.t.HardEffortMinSeconds && a.DurationSeconds <= e.t.HardEffortMaxSeconds
}

// EstimateFTP estimates functional threshold power as of asOf.
// lastKnownFTP <= 0 means no previous value is known.
//
// The lookback starts at FTPWindowDays and shrinks to FTPShortWindowDays
// after a recent gap or a steep CTL decline. With hard efforts in the
// window, the best TopEfforts are averaged and scaled by a duration band.
// Without them the previous FTP is either kept (consistent training) or
// reduced in proportion to the CTL decline.
func (e *Engine) EstimateFTP(activities []Activity, lastKnownFTP float64, asOf time.Time) (ThresholdEstimate, error) {
	if err := Validate(activities); err != nil {
		return ThresholdEstimate{}, err
	}

	ctx := e.analyzeContext(activities, asOf, lastKnownFTP)

	windowDays := e.t.FTPWindowDays
	if ctx.HasRecentGap || ctx.CTLChangeRatio < e.t.WindowShrinkDeclineCTL {
		windowDays = e.t.FTPShortWindowDays
	}

	var efforts []HardEffort
	for _, a := range filterWindow(activities, trailing(asOf, windowDays)) {
		if !e.isHardEffort(a) {
			continue
		}
		power, _ := a.Power()
		efforts = append(efforts, HardEffort{
			ActivityID:      a.ID,
			Date:            a.Date,
			DurationSeconds: a.DurationSeconds,
			Value:           power,
		})
	}

	est := ThresholdEstimate{WindowDays: windowDays, Context: &ctx}

	switch {
	case len(efforts) > 0:
		e.ftpFromEfforts(&est, efforts)
	case ctx.TrainingConsistent:
		est.Confidence = ConfidenceMedium
		est.Method = MethodMaintainedByCTL
		if lastKnownFTP > 0 {
			est.Value = intPtr(int(math.Round(lastKnownFTP)))
			est.Message = fmt.Sprintf("No hard efforts in the last %d days, but training load is steady (%.0f TSS/week). FTP assumed unchanged.", windowDays, ctx.WeeklyTSS)
		} else {
			est.Message = fmt.Sprintf("No hard efforts in the last %d days and no previous FTP on record.", windowDays)
		}
		est.Recommendation = "Consider a 20-minute FTP test to confirm your current threshold."
	default:
		decline := math.Min(math.Abs(ctx.CTLChangeRatio)*e.t.DeclineFactor, e.t.MaxDecline)
		est.Confidence = ConfidenceLow
		est.Method = MethodEstimatedDecline
		if lastKnownFTP > 0 {
			est.Value = intPtr(int(math.Round(lastKnownFTP * (1 - decline))))
			est.Message = fmt.Sprintf("No hard efforts in the last %d days and training has been inconsistent. Estimated a %.0f%% decline from %.0f W.", windowDays, decline*100, lastKnownFTP)
		} else {
			est.Message = fmt.Sprintf("No hard efforts in the last %d days and no previous FTP on record.", windowDays)
		}
		est.Recommendation = "Rebuild consistency, then do a 20-minute test or a hard 20-60 minute effort."
	}

	return est, nil
}

// ftpFromEfforts averages the strongest efforts and applies the duration band
func (e *Engine) ftpFromEfforts(est *ThresholdEstimate, efforts []HardEffort) {
	top := topEfforts(efforts, e.t.TopEfforts)

	var powerSum, durationSum float64
	for _, ef := range top {
		powerSum += ef.Value
		durationSum += float64(ef.DurationSeconds)
	}
	avgPower := powerSum / float64(len(top))
	avgDuration := durationSum / float64(len(top))
	multiplier := bandMultiplier(e.t.FTPBands, avgDuration)

	est.Value = intPtr(int(math.Round(avgPower * multiplier)))
	est.Method = MethodHardEfforts
	est.Efforts = top
	if len(top) >= e.t.TopEfforts {
		est.Confidence = ConfidenceHigh
	} else {
		est.Confidence = ConfidenceMedium
		est.Recommendation = "More 20-60 minute hard efforts will firm up this estimate."
	}
	est.Message = fmt.Sprintf("Based on %d hard effort(s) averaging %.0f W over %.0f min (x%.2f).",
		len(top), avgPower, avgDuration/60, multiplier)
}

// topEfforts returns up to n efforts with the highest Value.
// Ties keep the more recent effort first.
func topEfforts(efforts []HardEffort, n int) []HardEffort {
	sorted := make([]HardEffort, len(efforts))
	copy(sorted, efforts)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Value != sorted[j].Value {
			return sorted[i].Value > sorted[j].Value
		}
		return sorted[i].Date.After(sorted[j].Date)
	})
	if n > 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
