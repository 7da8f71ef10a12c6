package analysis

import (
	"fmt"
	"math"
)

// HRTrendAnalysis summarizes intensity of recent heart rate activities
type HRTrendAnalysis struct {
	ActivitiesAnalyzed int
	AvgPercentOfFTHR   float64
	DriftCount         int // activities with (max-avg)/avg above HRDriftRatio
	Interpretation     string
	DriftWarning       string // empty when drift is not a concern
}

// AnalyzeHRTrends looks at the most recent HRTrendActivities activities
// with heart rate data and relates their average HR to fthr
func (e *Engine) AnalyzeHRTrends(activities []Activity, fthr float64) (HRTrendAnalysis, error) {
	if err := Validate(activities); err != nil {
		return HRTrendAnalysis{}, err
	}
	if fthr <= 0 || math.IsNaN(fthr) || math.IsInf(fthr, 0) {
		return HRTrendAnalysis{}, fmt.Errorf("%w: %v", ErrInvalidThreshold, fthr)
	}

	sorted := sortedByDate(activities)
	var recent []Activity
	for i := len(sorted) - 1; i >= 0 && len(recent) < e.t.HRTrendActivities; i-- {
		if _, ok := sorted[i].HeartRate(); ok {
			recent = append(recent, sorted[i])
		}
	}

	result := HRTrendAnalysis{ActivitiesAnalyzed: len(recent)}
	if len(recent) == 0 {
		result.Interpretation = "No recent heart rate data to analyze."
		return result, nil
	}

	var pctSum float64
	for _, a := range recent {
		avg, _ := a.HeartRate()
		pctSum += avg / fthr * 100
		if peak, ok := a.PeakHeartRate(); ok && (peak-avg)/avg > e.t.HRDriftRatio {
			result.DriftCount++
		}
	}
	result.AvgPercentOfFTHR = pctSum / float64(len(recent))

	switch pct := result.AvgPercentOfFTHR; {
	case pct < 70:
		result.Interpretation = "Mostly easy aerobic work. Room to add some intensity."
	case pct < 80:
		result.Interpretation = "Solid endurance focus with a sensible intensity mix."
	case pct < 90:
		result.Interpretation = "Lots of tempo-range riding. Make sure easy days stay easy."
	default:
		result.Interpretation = "Training close to threshold most of the time. Watch for accumulated fatigue."
	}

	if float64(result.DriftCount)/float64(len(recent)) > e.t.HRDriftWarnShare {
		result.DriftWarning = fmt.Sprintf("%d of %d activities show heart rate drift above %.0f%%. Check hydration, heat and aerobic durability.",
			result.DriftCount, len(recent), e.t.HRDriftRatio*100)
	}
	return result, nil
}
