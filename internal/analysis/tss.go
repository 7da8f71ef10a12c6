package analysis

import "math"

// TSSMethod records which data a TSS value was derived from
type TSSMethod string

const (
	TSSPower            TSSMethod = "power"
	TSSHeartRate        TSSMethod = "heartRate"
	TSSDurationFallback TSSMethod = "durationFallback"
)

// TSSResult is the training stress score of one activity
type TSSResult struct {
	ActivityID int64
	TSS        int
	Method     TSSMethod
}

// ComputeTSS calculates the Training Stress Score for one activity.
// Methods in priority order:
//
//	power:      hours * IF² * 100, IF = power / ftp (needs ftp > 0)
//	heartRate:  hours * (avgHR / assumed threshold HR)² * 100
//	duration:   hours * 60 * type multiplier
//
// A zero-duration activity always scores 0.
func (e *Engine) ComputeTSS(a Activity, ftp float64) (TSSResult, error) {
	if err := a.Validate(); err != nil {
		return TSSResult{}, err
	}
	return e.tss(a, ftp), nil
}

// tss assumes a has been validated
func (e *Engine) tss(a Activity, ftp float64) TSSResult {
	result := TSSResult{ActivityID: a.ID, Method: TSSDurationFallback}
	if a.DurationSeconds == 0 {
		return result
	}

	hours := a.Hours()

	if power, ok := a.Power(); ok && ftp > 0 {
		intensity := power / ftp
		result.Method = TSSPower
		result.TSS = roundScore(hours * intensity * intensity * 100)
		return result
	}

	if hr, ok := a.HeartRate(); ok && e.t.AssumedThresholdHR > 0 {
		intensity := hr / e.t.AssumedThresholdHR
		result.Method = TSSHeartRate
		result.TSS = roundScore(hours * intensity * intensity * 100)
		return result
	}

	result.TSS = roundScore(hours * e.t.MinutesTSSPerHour * e.t.typeMultiplier(a.Type))
	return result
}

// totalTSS sums the TSS of already validated activities
func (e *Engine) totalTSS(activities []Activity, ftp float64) float64 {
	var total float64
	for _, a := range activities {
		total += float64(e.tss(a, ftp).TSS)
	}
	return total
}

// maxScore caps a single activity's TSS
const maxScore = math.MaxInt32

// roundScore rounds v to a score in [0, maxScore]
func roundScore(v float64) int {
	switch {
	case v <= 0 || math.IsNaN(v):
		return 0
	case v >= maxScore:
		return maxScore
	}
	return int(math.Round(v))
}
