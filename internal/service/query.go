package service

import (
	"fmt"
	"slices"
	"time"

	"ridelab/internal/analysis"
	"ridelab/internal/config"
	"ridelab/internal/logger"
	"ridelab/internal/store"
)

// QueryService provides read-only queries for the TUI and the report command.
// Nothing engine-derived is stored; every query recomputes from activities.
type QueryService struct {
	store   *store.DB
	engine  *analysis.Engine
	athlete config.AthleteConfig
	weeks   int
}

// NewQueryService creates a new query service
func NewQueryService(store *store.DB, cfg *config.Config) *QueryService {
	weeks := cfg.Display.TrendWeeks
	if weeks <= 0 {
		weeks = DefaultTrendWeeks
	}
	return &QueryService{
		store:   store,
		engine:  analysis.New(cfg.Engine.Thresholds()),
		athlete: cfg.Athlete,
		weeks:   weeks,
	}
}

// DashboardData contains everything the dashboard and report show
type DashboardData struct {
	AsOf          time.Time
	ActivityCount int // activities in the loaded history
	LastSync      time.Time

	// Load
	CurrentWeek     analysis.LoadSnapshot
	FourWeekAverage analysis.LoadSnapshot
	LoadRatio       float64
	Fitness         analysis.FitnessPoint
	FormDescription string
	Context         analysis.TrainingContext

	// Thresholds
	FTP      analysis.ThresholdEstimate
	FTHR     analysis.ThresholdEstimate
	TSSFTP   float64 // FTP used for TSS, 0 when unknown
	HRTrends *analysis.HRTrendAnalysis

	// For charts
	Trends         []analysis.LoadSnapshot
	FitnessHistory []analysis.FitnessPoint
}

// Dashboard computes the full training picture as of asOf
func (q *QueryService) Dashboard(asOf time.Time) (*DashboardData, error) {
	acts, err := q.history(asOf, q.historyDays())
	if err != nil {
		return nil, err
	}

	data := &DashboardData{AsOf: asOf, ActivityCount: len(acts)}
	if data.LastSync, err = q.store.GetSyncTime(SyncKeyActivities); err != nil {
		logger.Warn("dashboard: reading sync marker: %v", err)
	}

	if err := q.thresholds(data, acts, asOf); err != nil {
		return nil, err
	}
	ftp := data.TSSFTP

	if data.CurrentWeek, err = q.engine.CurrentWeek(acts, asOf, ftp); err != nil {
		return nil, fmt.Errorf("current week: %w", err)
	}
	if data.FourWeekAverage, err = q.engine.FourWeekAverage(acts, asOf, ftp); err != nil {
		return nil, fmt.Errorf("four week average: %w", err)
	}
	if data.LoadRatio, err = q.engine.LoadRatio(acts, asOf, ftp); err != nil {
		return nil, fmt.Errorf("load ratio: %w", err)
	}
	// show the context that drove the FTP estimate
	if data.FTP.Context != nil {
		data.Context = *data.FTP.Context
	} else if data.Context, err = q.engine.AnalyzeContext(acts, asOf, ftp); err != nil {
		return nil, fmt.Errorf("training context: %w", err)
	}

	if data.FitnessHistory, err = q.engine.FitnessTrend(acts, asOf, ftp); err != nil {
		return nil, fmt.Errorf("fitness trend: %w", err)
	}
	if n := len(data.FitnessHistory); n > 0 {
		data.Fitness = data.FitnessHistory[n-1]
		data.FormDescription = analysis.FormDescription(data.Fitness.TSB)
	}

	data.Trends = slices.Collect(q.engine.Trends(acts, q.weeks, asOf, ftp))

	if data.FTHR.HasValue() {
		hr, err := q.engine.AnalyzeHRTrends(acts, float64(*data.FTHR.Value))
		if err != nil {
			return nil, fmt.Errorf("heart rate trends: %w", err)
		}
		data.HRTrends = &hr
	}

	return data, nil
}

// thresholds fills the FTP and FTHR estimates and picks the FTP used for TSS:
// the estimate when there is one, otherwise the configured FTP
func (q *QueryService) thresholds(data *DashboardData, acts []analysis.Activity, asOf time.Time) error {
	var err error
	if data.FTP, err = q.engine.EstimateFTP(acts, q.athlete.FTP, asOf); err != nil {
		return fmt.Errorf("estimating FTP: %w", err)
	}
	if data.FTHR, err = q.engine.EstimateFTHR(acts, q.athlete.ThresholdHR, asOf); err != nil {
		return fmt.Errorf("estimating FTHR: %w", err)
	}

	data.TSSFTP = q.tssFTP(data.FTP)
	return nil
}

// tssFTP prefers the estimate and falls back to the configured FTP
func (q *QueryService) tssFTP(est analysis.ThresholdEstimate) float64 {
	if est.HasValue() {
		return float64(*est.Value)
	}
	return max(q.athlete.FTP, 0)
}

// ActivityRow is one stored activity with its training stress
type ActivityRow struct {
	Activity store.Activity
	TSS      analysis.TSSResult
}

// Activities returns a page of activities, newest first, scored with the
// FTP estimate as of asOf, plus the total number of stored activities
func (q *QueryService) Activities(limit, offset int, asOf time.Time) ([]ActivityRow, int, error) {
	acts, err := q.history(asOf, HistoryDays)
	if err != nil {
		return nil, 0, err
	}
	est, err := q.engine.EstimateFTP(acts, q.athlete.FTP, asOf)
	if err != nil {
		return nil, 0, fmt.Errorf("estimating FTP: %w", err)
	}
	ftp := q.tssFTP(est)

	page, err := q.store.ListActivities(limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("listing activities: %w", err)
	}
	total, err := q.store.CountActivities()
	if err != nil {
		return nil, 0, fmt.Errorf("counting activities: %w", err)
	}

	rows := make([]ActivityRow, 0, len(page))
	for _, a := range page {
		row := ActivityRow{Activity: a}
		if row.TSS, err = q.engine.ComputeTSS(ToAnalysis(a), ftp); err != nil {
			logger.Warn("scoring activity %d: %v", a.ID, err)
		}
		rows = append(rows, row)
	}
	return rows, total, nil
}

// ZonesData is a zone table together with the threshold it came from
type ZonesData struct {
	Model analysis.ZoneModel
	FTHR  analysis.ThresholdEstimate
	Table *analysis.ZoneTable // nil when FTHR could not be estimated
}

// Zones builds the zone table for model from the current FTHR estimate
func (q *QueryService) Zones(model analysis.ZoneModel, asOf time.Time) (*ZonesData, error) {
	acts, err := q.history(asOf, HistoryDays)
	if err != nil {
		return nil, err
	}

	fthr, err := q.engine.EstimateFTHR(acts, q.athlete.ThresholdHR, asOf)
	if err != nil {
		return nil, fmt.Errorf("estimating FTHR: %w", err)
	}

	data := &ZonesData{Model: model, FTHR: fthr}
	if !fthr.HasValue() {
		return data, nil
	}

	table, err := q.engine.ZonesForModel(float64(*fthr.Value), model, q.athlete.MaxHR)
	if err != nil {
		return nil, err
	}
	data.Table = &table
	return data, nil
}

// TrendWeeks is the number of weeks shown on charts
func (q *QueryService) TrendWeeks() int {
	return q.weeks
}

// historyDays covers both the fixed history and the configured trend span
func (q *QueryService) historyDays() int {
	return max(HistoryDays, (q.weeks+1)*7)
}

// history loads and normalizes activities from the days before asOf.
// Rows that fail validation are logged and left out.
func (q *QueryService) history(asOf time.Time, days int) ([]analysis.Activity, error) {
	stored, err := q.store.ListActivitiesSince(asOf.AddDate(0, 0, -days))
	if err != nil {
		return nil, fmt.Errorf("loading activities: %w", err)
	}

	acts := make([]analysis.Activity, 0, len(stored))
	for _, s := range stored {
		if !s.StartDate.Before(asOf) {
			continue
		}
		a := ToAnalysis(s)
		if err := a.Validate(); err != nil {
			logger.Warn("skipping activity: %v", err)
			continue
		}
		acts = append(acts, a)
	}
	return acts, nil
}
