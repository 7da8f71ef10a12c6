package service

import (
	"math"
	"reflect"
	"testing"

	"ridelab/internal/analysis"
)

func TestDashboard(t *testing.T) {
	db := openTestDB(t)
	seedRide(t, db, 1, daysAgo(3), 250, 160, 175)
	seedRide(t, db, 2, daysAgo(10), 250, 160, 175)
	seedRide(t, db, 3, daysAgo(17), 250, 160, 175)
	// after asOf, ignored
	seedRide(t, db, 4, refDate.AddDate(0, 0, 1), 400, 190, 195)
	// outside the history window
	seedRide(t, db, 5, daysAgo(HistoryDays+10), 400, 190, 195)

	q := NewQueryService(db, testConfig())
	data, err := q.Dashboard(refDate)
	if err != nil {
		t.Fatalf("Dashboard() error = %v", err)
	}

	if data.ActivityCount != 3 {
		t.Errorf("ActivityCount = %d, want 3", data.ActivityCount)
	}

	if !data.FTP.HasValue() || *data.FTP.Value != 250 {
		t.Fatalf("FTP = %+v, want 250", data.FTP)
	}
	if data.FTP.Confidence != analysis.ConfidenceHigh || data.FTP.Method != analysis.MethodHardEfforts {
		t.Errorf("FTP confidence/method = %s/%s", data.FTP.Confidence, data.FTP.Method)
	}
	if data.TSSFTP != 250 {
		t.Errorf("TSSFTP = %v, want 250", data.TSSFTP)
	}

	if !data.FTHR.HasValue() || *data.FTHR.Value != 160 {
		t.Errorf("FTHR = %+v, want 160", data.FTHR)
	}

	// one hour at FTP is 100 TSS
	if data.CurrentWeek.ActivityCount != 1 || math.Abs(data.CurrentWeek.TotalTSS-100) > 0.01 {
		t.Errorf("CurrentWeek = %+v, want 1 activity / 100 TSS", data.CurrentWeek)
	}
	if math.Abs(data.FourWeekAverage.TotalTSS-75) > 0.01 {
		t.Errorf("FourWeekAverage.TotalTSS = %v, want 75", data.FourWeekAverage.TotalTSS)
	}

	if len(data.Trends) != q.TrendWeeks() {
		t.Errorf("got %d trend weeks, want %d", len(data.Trends), q.TrendWeeks())
	}
	if data.Context.CurrentCTL <= 0 || data.Fitness.CTL <= 0 || data.FormDescription == "" {
		t.Errorf("fitness not computed: context=%+v point=%+v", data.Context, data.Fitness)
	}
	if data.HRTrends == nil || data.HRTrends.ActivitiesAnalyzed != 3 {
		t.Errorf("HRTrends = %+v, want 3 activities", data.HRTrends)
	}
}

func TestDashboard_ContextMatchesFTPEstimate(t *testing.T) {
	db := openTestDB(t)
	for i := int64(1); i <= 20; i++ {
		seedRide(t, db, i, daysAgo(int(i)), 200, 150, 170)
	}
	seedRide(t, db, 21, daysAgo(22), 300, 175, 190)

	cfg := testConfig()
	cfg.Athlete.FTP = 180

	data, err := NewQueryService(db, cfg).Dashboard(refDate)
	if err != nil {
		t.Fatalf("Dashboard() error = %v", err)
	}
	if data.FTP.Context == nil {
		t.Fatal("FTP.Context = nil")
	}
	if data.TSSFTP == cfg.Athlete.FTP {
		t.Fatalf("TSSFTP = %v, want the estimate rather than the configured FTP", data.TSSFTP)
	}
	if !reflect.DeepEqual(data.Context, *data.FTP.Context) {
		t.Errorf("Context = %+v, want the FTP estimate's %+v", data.Context, *data.FTP.Context)
	}
}

func TestDashboard_Empty(t *testing.T) {
	db := openTestDB(t)
	cfg := testConfig()
	cfg.Athlete.FTP = 230

	data, err := NewQueryService(db, cfg).Dashboard(refDate)
	if err != nil {
		t.Fatalf("Dashboard() error = %v", err)
	}
	if data.ActivityCount != 0 {
		t.Errorf("ActivityCount = %d, want 0", data.ActivityCount)
	}
	// the configured FTP still feeds TSS
	if data.TSSFTP != 230 {
		t.Errorf("TSSFTP = %v, want 230", data.TSSFTP)
	}
	if data.FTHR.HasValue() || data.HRTrends != nil {
		t.Errorf("FTHR = %+v, HRTrends = %+v, want none", data.FTHR, data.HRTrends)
	}
}

func TestZones(t *testing.T) {
	db := openTestDB(t)
	seedRide(t, db, 1, daysAgo(3), 250, 160, 175)
	seedRide(t, db, 2, daysAgo(10), 250, 160, 175)
	seedRide(t, db, 3, daysAgo(17), 250, 160, 175)

	q := NewQueryService(db, testConfig())
	for _, model := range analysis.ZoneModels {
		t.Run(string(model), func(t *testing.T) {
			data, err := q.Zones(model, refDate)
			if err != nil {
				t.Fatalf("Zones() error = %v", err)
			}
			if data.Table == nil {
				t.Fatal("Table is nil with an FTHR estimate")
			}
			if data.Table.Model != model || data.Table.FTHR != 160 {
				t.Errorf("Table model/FTHR = %s/%v", data.Table.Model, data.Table.FTHR)
			}
		})
	}
}

func TestZones_NoHeartRate(t *testing.T) {
	data, err := NewQueryService(openTestDB(t), testConfig()).Zones(analysis.Zones5, refDate)
	if err != nil {
		t.Fatalf("Zones() error = %v", err)
	}
	if data.Table != nil {
		t.Errorf("Table = %+v, want nil without heart rate data", data.Table)
	}
}

func TestZones_ManualThreshold(t *testing.T) {
	cfg := testConfig()
	cfg.Athlete.ThresholdHR = 168

	data, err := NewQueryService(openTestDB(t), cfg).Zones(analysis.Zones3, refDate)
	if err != nil {
		t.Fatalf("Zones() error = %v", err)
	}
	if data.Table == nil || data.FTHR.Confidence != analysis.ConfidenceManual {
		t.Fatalf("Zones() = %+v, want manual table", data)
	}
	if len(data.Table.Zones) != 3 {
		t.Errorf("got %d zones, want 3", len(data.Table.Zones))
	}
}

func TestActivities(t *testing.T) {
	db := openTestDB(t)
	seedRide(t, db, 1, daysAgo(3), 250, 160, 175)
	seedRide(t, db, 2, daysAgo(10), 250, 160, 175)
	seedRide(t, db, 3, daysAgo(17), 250, 160, 175)

	rows, total, err := NewQueryService(db, testConfig()).Activities(2, 0, refDate)
	if err != nil {
		t.Fatalf("Activities() error = %v", err)
	}
	if total != 3 || len(rows) != 2 {
		t.Fatalf("got %d rows of %d, want 2 of 3", len(rows), total)
	}
	if rows[0].Activity.ID != 1 {
		t.Errorf("first row = %d, want newest activity 1", rows[0].Activity.ID)
	}
	if rows[0].TSS.Method != analysis.TSSPower || rows[0].TSS.TSS != 100 {
		t.Errorf("TSS = %+v, want 100 from power", rows[0].TSS)
	}
}
