package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"ridelab/internal/analysis"
	"ridelab/internal/config"
	"ridelab/internal/service"
	"ridelab/internal/store"
)

func runReport(db *store.DB, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	dateStr := fs.String("date", "", "report as of the end of DATE, YYYY-MM-DD (default: now)")
	_ = fs.Parse(args)

	asOf, err := parseAsOf(*dateStr, time.Now())
	if err != nil {
		return err
	}

	data, err := service.NewQueryService(db, cfg).Dashboard(asOf)
	if err != nil {
		return fmt.Errorf("building report: %w", err)
	}

	writeReport(os.Stdout, data, cfg.Display, time.Now())
	return nil
}

// parseAsOf turns a YYYY-MM-DD date into the instant just after that day,
// so activities on the day itself count. Empty means now.
func parseAsOf(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return now, nil
	}
	d, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", s, err)
	}
	return d.AddDate(0, 0, 1), nil
}

func writeReport(w io.Writer, d *service.DashboardData, display config.DisplayConfig, now time.Time) {
	fmt.Fprintf(w, "Training report as of %s\n", d.AsOf.Format("Mon Jan 2 2006 15:04"))
	lastSync := "never"
	if !d.LastSync.IsZero() {
		lastSync = humanize.RelTime(d.LastSync, now, "ago", "from now")
	}
	fmt.Fprintf(w, "%s activities analyzed, newest synced ride %s\n\n", humanize.Comma(int64(d.ActivityCount)), lastSync)

	fmt.Fprintln(w, "Load")
	fmt.Fprintf(w, "  Last 7 days    %s\n", describeWeek(d.CurrentWeek, display))
	fmt.Fprintf(w, "  4-week avg     %s\n", describeWeek(d.FourWeekAverage, display))
	fmt.Fprintf(w, "  Load ratio     %.2f\n\n", d.LoadRatio)

	fmt.Fprintln(w, "Fitness")
	fmt.Fprintf(w, "  CTL %.1f  ATL %.1f  TSB %+.1f  (%s)\n\n", d.Fitness.CTL, d.Fitness.ATL, d.Fitness.TSB, d.FormDescription)

	fmt.Fprintln(w, "Thresholds")
	writeEstimate(w, "FTP", d.FTP, "W")
	writeEstimate(w, "FTHR", d.FTHR, "bpm")
	if d.TSSFTP > 0 {
		fmt.Fprintf(w, "  TSS computed with FTP %.0f W\n", d.TSSFTP)
	}
	fmt.Fprintln(w)

	c := d.Context
	fmt.Fprintln(w, "Context")
	fmt.Fprintf(w, "  CTL trend      %s (%+.0f%%)\n", c.CTLTrend, c.CTLChangeRatio*100)
	consistency := "inconsistent"
	if c.TrainingConsistent {
		consistency = "consistent"
	}
	fmt.Fprintf(w, "  Weekly TSS     %.0f (%s)\n", c.WeeklyTSS, consistency)
	for _, g := range c.Gaps {
		fmt.Fprintf(w, "  Break          %s to %s, %d days\n", g.StartDate.Format("Jan 2"), g.EndDate.Format("Jan 2"), g.Days)
	}

	if d.HRTrends != nil {
		fmt.Fprintf(w, "\nHeart rate\n  %s\n", d.HRTrends.Interpretation)
		if d.HRTrends.DriftWarning != "" {
			fmt.Fprintf(w, "  %s\n", d.HRTrends.DriftWarning)
		}
	}

	if len(d.Trends) > 0 {
		fmt.Fprintln(w, "\nWeekly TSS")
		var b strings.Builder
		for _, wk := range d.Trends {
			fmt.Fprintf(&b, "  %s  %5.0f  %s\n", wk.WindowStart.Format("Jan 02"), wk.TotalTSS, strings.Repeat("#", int(wk.TotalTSS/25)))
		}
		fmt.Fprint(w, b.String())
	}
}

func writeEstimate(w io.Writer, label string, est analysis.ThresholdEstimate, unit string) {
	value := "--"
	if est.HasValue() {
		value = fmt.Sprintf("%d %s", *est.Value, unit)
	}
	fmt.Fprintf(w, "  %-14s %s [%s] %s\n", label, value, est.Confidence, est.Message)
	if est.Recommendation != "" {
		fmt.Fprintf(w, "  %-14s %s\n", "", est.Recommendation)
	}
}

func describeWeek(s analysis.LoadSnapshot, display config.DisplayConfig) string {
	dist := s.TotalDistanceMeters / service.MetersPerKm
	unit := "km"
	if display.DistanceUnit == "mi" {
		dist = s.TotalDistanceMeters / service.MetersPerMile
		unit = "mi"
	}
	h := int(s.TotalTimeSeconds) / 3600
	m := int(s.TotalTimeSeconds) % 3600 / 60
	return fmt.Sprintf("%.0f TSS, %d rides, %dh%02dm, %s %s",
		s.TotalTSS, s.ActivityCount, h, m, humanize.Comma(int64(dist+0.5)), unit)
}
