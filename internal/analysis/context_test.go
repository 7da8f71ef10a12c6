package analysis

import (
	"math"
	"testing"
)

func TestAnalyzeContext_RecentGap(t *testing.T) {
	acts := []Activity{
		hrRide(1, daysAgo(40), 3600, 150, 0),
		hrRide(2, daysAgo(35), 3600, 150, 0),
		hrRide(3, daysAgo(15), 3600, 150, 0), // 20 days after the previous one
		hrRide(4, daysAgo(10), 3600, 150, 0),
		hrRide(5, daysAgo(2), 3600, 150, 0), // 8 days: a gap, but not a recent one
	}

	ctx, err := Default().AnalyzeContext(acts, refDate, 0)
	if err != nil {
		t.Fatalf("AnalyzeContext() error = %v", err)
	}
	if len(ctx.Gaps) != 2 {
		t.Fatalf("got %d gaps, want 2: %+v", len(ctx.Gaps), ctx.Gaps)
	}
	if ctx.Gaps[0].Days != 20 {
		t.Errorf("Gaps[0].Days = %d, want 20", ctx.Gaps[0].Days)
	}
	if ctx.Gaps[1].Days != 8 {
		t.Errorf("Gaps[1].Days = %d, want 8", ctx.Gaps[1].Days)
	}
	if !ctx.HasRecentGap {
		t.Error("HasRecentGap = false, want true")
	}
	if ctx.TrainingConsistent {
		t.Error("TrainingConsistent = true, want false with a recent gap")
	}
}

func TestAnalyzeContext_NoPreviousLoad(t *testing.T) {
	acts := []Activity{hrRide(1, daysAgo(3), 3600, 150, 0)}

	ctx, err := Default().AnalyzeContext(acts, refDate, 0)
	if err != nil {
		t.Fatalf("AnalyzeContext() error = %v", err)
	}
	if ctx.PreviousCTL != 0 {
		t.Errorf("PreviousCTL = %v, want 0", ctx.PreviousCTL)
	}
	if ctx.CTLChangeRatio != 0 || math.IsNaN(ctx.CTLChangeRatio) {
		t.Errorf("CTLChangeRatio = %v, want 0", ctx.CTLChangeRatio)
	}
	if ctx.CTLTrend != TrendStable {
		t.Errorf("CTLTrend = %q, want stable", ctx.CTLTrend)
	}
}

func TestAnalyzeContext_Trend(t *testing.T) {
	block := func(startDay, count int, avgHR float64) []Activity {
		var out []Activity
		for i := 0; i < count; i++ {
			out = append(out, hrRide(int64(startDay*100+i), daysAgo(startDay-2*i), 3600, avgHR, 0))
		}
		return out
	}

	tests := []struct {
		name string
		acts []Activity
		want CTLTrend
	}{
		{"same load", append(block(82, 20, 170), block(40, 20, 170)...), TrendStable},
		{"load dropped", append(block(82, 20, 170), block(40, 20, 120)...), TrendDeclining},
		{"load rose", append(block(82, 20, 120), block(40, 20, 170)...), TrendImproving},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, err := Default().AnalyzeContext(tt.acts, refDate, 0)
			if err != nil {
				t.Fatalf("AnalyzeContext() error = %v", err)
			}
			if ctx.CTLTrend != tt.want {
				t.Errorf("CTLTrend = %q (ratio %.3f), want %q", ctx.CTLTrend, ctx.CTLChangeRatio, tt.want)
			}
		})
	}
}

func TestAnalyzeContext_ConsistencyAndEfforts(t *testing.T) {
	var acts []Activity
	for d := 1; d <= 40; d += 3 {
		acts = append(acts, hrRide(int64(d), daysAgo(d), 7200, 170, 0)) // 200 TSS each
	}
	acts = append(acts,
		powerRide(100, daysAgo(6), 2400, 260),
		powerRide(101, daysAgo(20), 1500, 180), // under the power floor
		powerRide(102, daysAgo(50), 2400, 300), // outside the window
	)

	ctx, err := Default().AnalyzeContext(acts, refDate, 250)
	if err != nil {
		t.Fatalf("AnalyzeContext() error = %v", err)
	}
	if ctx.HardEffortCount != 1 {
		t.Errorf("HardEffortCount = %d, want 1", ctx.HardEffortCount)
	}
	if ctx.WeeklyTSS <= 200 {
		t.Errorf("WeeklyTSS = %v, want > 200", ctx.WeeklyTSS)
	}
	if !ctx.TrainingConsistent {
		t.Error("TrainingConsistent = false, want true")
	}
}

func TestElapsedWeeks(t *testing.T) {
	tests := []struct {
		name string
		acts []Activity
		want int
	}{
		{"no activities", nil, 1},
		{"yesterday", []Activity{{Date: daysAgo(1)}}, 1},
		{"ten days", []Activity{{Date: daysAgo(10)}}, 2},
		{"capped at window", []Activity{{Date: daysAgo(80)}}, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := elapsedWeeks(tt.acts, refDate, 42); got != tt.want {
				t.Errorf("elapsedWeeks() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAnalyzeContext_GapAtWindowEdges(t *testing.T) {
	// daily 2h rides that stop 20 days before the reference date
	var stopped []Activity
	for d := 41; d >= 20; d-- {
		stopped = append(stopped, hrRide(int64(d), daysAgo(d), 7200, 170, 0))
	}

	// a break that starts before the 42-day window and ends inside it
	var resumed []Activity
	for d := 71; d >= 45; d -= 2 {
		resumed = append(resumed, hrRide(int64(d), daysAgo(d), 7200, 170, 0))
	}
	for d := 25; d >= 1; d -= 2 {
		resumed = append(resumed, hrRide(int64(d), daysAgo(d), 7200, 170, 0))
	}

	tests := []struct {
		name string
		acts []Activity
		want Gap
	}{
		{"stopped riding", stopped, Gap{StartDate: daysAgo(20), EndDate: refDate, Days: 20}},
		{"break across window start", resumed, Gap{StartDate: daysAgo(45), EndDate: daysAgo(25), Days: 20}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, err := Default().AnalyzeContext(tt.acts, refDate, 0)
			if err != nil {
				t.Fatalf("AnalyzeContext() error = %v", err)
			}
			if len(ctx.Gaps) != 1 {
				t.Fatalf("got %d gaps, want 1: %+v", len(ctx.Gaps), ctx.Gaps)
			}
			if g := ctx.Gaps[0]; !g.StartDate.Equal(tt.want.StartDate) || !g.EndDate.Equal(tt.want.EndDate) || g.Days != tt.want.Days {
				t.Errorf("Gaps[0] = %+v, want %+v", g, tt.want)
			}
			if !ctx.HasRecentGap {
				t.Error("HasRecentGap = false, want true")
			}
			if ctx.TrainingConsistent {
				t.Error("TrainingConsistent = true, want false")
			}
		})
	}
}
