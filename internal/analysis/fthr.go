package analysis

import (
	"fmt"
	"math"
	"time"
)

// EstimateFTHR estimates functional threshold heart rate as of asOf.
// A manualFTHR > 0 is returned as-is with ConfidenceManual.
//
// Only activities from the last HRLookbackDays with an average heart rate
// and at least HardEffortMinSeconds of moving time are considered.
func (e *Engine) EstimateFTHR(activities []Activity, manualFTHR float64, asOf time.Time) (ThresholdEstimate, error) {
	if err := Validate(activities); err != nil {
		return ThresholdEstimate{}, err
	}

	if manualFTHR > 0 {
		return ThresholdEstimate{
			Value:      intPtr(int(math.Round(manualFTHR))),
			Confidence: ConfidenceManual,
			Method:     MethodUserProvided,
			Message:    fmt.Sprintf("Using your threshold heart rate of %.0f bpm.", manualFTHR),
		}, nil
	}

	est := ThresholdEstimate{WindowDays: e.t.HRLookbackDays}

	var eligible []Activity
	for _, a := range filterWindow(activities, trailing(asOf, e.t.HRLookbackDays)) {
		if _, ok := a.HeartRate(); ok && a.DurationSeconds >= e.t.HardEffortMinSeconds {
			eligible = append(eligible, a)
		}
	}

	if len(eligible) == 0 {
		est.Confidence = ConfidenceNone
		est.Method = MethodNoHRData
		est.Message = fmt.Sprintf("No heart rate data from activities of 20+ minutes in the last %d days.", e.t.HRLookbackDays)
		est.Recommendation = "Record a few rides with a heart rate monitor, or set your threshold heart rate manually."
		return est, nil
	}

	var efforts []HardEffort
	for _, a := range eligible {
		if e.isHardHREffort(a) {
			hr, _ := a.HeartRate()
			efforts = append(efforts, HardEffort{
				ActivityID:      a.ID,
				Date:            a.Date,
				DurationSeconds: a.DurationSeconds,
				Value:           hr,
			})
		}
	}

	switch {
	case len(efforts) >= e.t.TopEfforts:
		top := topEfforts(efforts, e.t.TopEfforts)
		avgHR, avgDuration := meanEffort(top)
		multiplier := bandMultiplier(e.t.FTHRBands, avgDuration)
		est.Value = intPtr(int(math.Round(avgHR * multiplier)))
		est.Confidence = ConfidenceHigh
		est.Method = MethodHardEfforts
		est.Efforts = top
		est.Message = fmt.Sprintf("Based on %d hard efforts averaging %.0f bpm over %.0f min (x%.2f).",
			len(top), avgHR, avgDuration/60, multiplier)

	case len(efforts) > 0:
		avgHR, _ := meanEffort(efforts)
		est.Value = intPtr(int(math.Round(avgHR * e.t.HRLimitedFactor)))
		est.Confidence = ConfidenceMedium
		est.Method = MethodLimitedEfforts
		est.Efforts = topEfforts(efforts, 0)
		est.Message = fmt.Sprintf("Based on %d hard effort(s) averaging %.0f bpm.", len(efforts), avgHR)
		est.Recommendation = "A few more sustained 20-60 minute efforts will improve this estimate."

	default:
		var peak float64
		for _, a := range eligible {
			hr, ok := a.PeakHeartRate()
			if !ok {
				hr, _ = a.HeartRate()
			}
			peak = math.Max(peak, hr)
		}
		est.Value = intPtr(int(math.Round(peak * e.t.HRMaxHRFactor)))
		est.Confidence = ConfidenceLow
		est.Method = MethodMaxHREstimate
		est.Message = fmt.Sprintf("No hard efforts found; estimated from the highest heart rate seen (%.0f bpm).", peak)
		est.Recommendation = "Do a 20-minute all-out effort or a threshold test to get a reliable value."
	}

	return est, nil
}

// isHardHREffort: average HR close to the (observed or estimated) max, 20-60 minutes long
func (e *Engine) isHardHREffort(a Activity) bool {
	avg, ok := a.HeartRate()
	if !ok {
		return false
	}
	maxHR, ok := a.PeakHeartRate()
	if !ok {
		maxHR = avg * e.t.HRMaxFromAvgFactor
	}
	if maxHR <= 0 || avg/maxHR <= e.t.HRIntensityFloor {
		return false
	}
	return a.DurationSeconds >= e.t.HardEffortMinSeconds && a.DurationSeconds <= e.t.HardEffortMaxSeconds
}

func meanEffort(efforts []HardEffort) (value, seconds float64) {
	if len(efforts) == 0 {
		return 0, 0
	}
	for _, ef := range efforts {
		value += ef.Value
		seconds += float64(ef.DurationSeconds)
	}
	n := float64(len(efforts))
	return value / n, seconds / n
}
