package tui

import (
	"fmt"
	"strings"
	"time"

	"ridelab/internal/analysis"
	"ridelab/internal/service"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ThresholdsModel shows the FTP and FTHR estimates with their evidence
type ThresholdsModel struct {
	queryService *service.QueryService
	now          func() time.Time
	data         *service.DashboardData
	viewport     viewport.Model
	loading      bool
	err          error
	ready        bool
}

// NewThresholdsModel creates a new thresholds model
func NewThresholdsModel(qs *service.QueryService, now func() time.Time, width, height int) ThresholdsModel {
	m := ThresholdsModel{
		queryService: qs,
		now:          now,
		loading:      true,
	}

	if width > 0 && height > 0 {
		m.viewport = viewport.New(width, height-6)
		m.ready = true
	}

	return m
}

// Init initializes the thresholds screen
func (m ThresholdsModel) Init() tea.Cmd {
	return m.load
}

type thresholdsLoadedMsg struct {
	data *service.DashboardData
	err  error
}

func (m ThresholdsModel) load() tea.Msg {
	data, err := m.queryService.Dashboard(m.now())
	return thresholdsLoadedMsg{data: data, err: err}
}

// Update handles messages
func (m ThresholdsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case thresholdsLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.data = msg.data
		if m.ready {
			m.viewport.SetContent(m.renderContent())
		}

	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-6)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 6
		}
		if m.data != nil {
			m.viewport.SetContent(m.renderContent())
		}

	case tea.KeyMsg:
		if msg.String() == "r" {
			m.loading = true
			return m, m.load
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the thresholds screen
func (m ThresholdsModel) View() string {
	if m.loading {
		return "\n  Estimating thresholds..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	footer := statusStyle.Render("  j/k or arrows: scroll  r: refresh")
	return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), footer)
}

func (m ThresholdsModel) renderContent() string {
	if m.data == nil {
		return "No data yet. Run a sync or import FIT files."
	}

	sections := []string{
		"",
		renderEstimate("Functional Threshold Power", m.data.FTP, "W"),
		"",
		renderEstimate("Functional Threshold Heart Rate", m.data.FTHR, "bpm"),
	}

	if m.data.FTP.Context != nil {
		sections = append(sections, "", renderContext(*m.data.FTP.Context))
	}
	if m.data.HRTrends != nil {
		sections = append(sections, "", renderHRTrends(*m.data.HRTrends))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func renderEstimate(title string, est analysis.ThresholdEstimate, unit string) string {
	var lines []string
	lines = append(lines, cardTitleStyle.Render(title))
	lines = append(lines, RenderMetric("Estimate", formatEstimate(est, unit), ""))
	lines = append(lines, RenderMetric("Confidence", confidenceStyle(est.Confidence).Render(string(est.Confidence)), ""))
	lines = append(lines, RenderMetric("Method", strings.ReplaceAll(est.Method, "_", " "), ""))
	if est.WindowDays > 0 {
		lines = append(lines, RenderMetric("Window", fmt.Sprintf("%d days", est.WindowDays), ""))
	}
	lines = append(lines, "", "  "+est.Message)
	if est.Recommendation != "" {
		lines = append(lines, "  "+warningStyle.Render(est.Recommendation))
	}

	if len(est.Efforts) > 0 {
		lines = append(lines, "", sectionStyle.Render("  Efforts used"))
		lines = append(lines, tableHeaderStyle.Render(fmt.Sprintf("%-12s  %8s  %8s", "Date", "Duration", "Value")))
		for _, ef := range est.Efforts {
			lines = append(lines, tableRowStyle.Render(fmt.Sprintf("%-12s  %8s  %5.0f %s",
				ef.Date.Format("Jan 02 2006"),
				formatDuration(float64(ef.DurationSeconds)),
				ef.Value, unit,
			)))
		}
	}

	return strings.Join(lines, "\n")
}

func renderContext(ctx analysis.TrainingContext) string {
	lines := []string{
		cardTitleStyle.Render("Training Context"),
		RenderMetric("CTL now / before", fmt.Sprintf("%.1f / %.1f", ctx.CurrentCTL, ctx.PreviousCTL), formatRatio(ctx.CTLChangeRatio)),
		RenderMetric("Trend", ctlTrendStyle(ctx.CTLTrend).Render(string(ctx.CTLTrend)), ""),
		RenderMetric("Weekly TSS", fmt.Sprintf("%.0f", ctx.WeeklyTSS), ""),
		RenderMetric("Consistent", fmt.Sprintf("%t", ctx.TrainingConsistent), ""),
		RenderMetric("Hard efforts", fmt.Sprintf("%d", ctx.HardEffortCount), ""),
	}

	if len(ctx.Gaps) > 0 {
		lines = append(lines, "", sectionStyle.Render("  Breaks"))
		for _, g := range ctx.Gaps {
			lines = append(lines, fmt.Sprintf("  %s -> %s  (%d days)",
				g.StartDate.Format("Jan 02"), g.EndDate.Format("Jan 02"), g.Days))
		}
	}
	return strings.Join(lines, "\n")
}

func renderHRTrends(hr analysis.HRTrendAnalysis) string {
	lines := []string{
		cardTitleStyle.Render("Heart Rate Intensity"),
		RenderMetric("Activities", fmt.Sprintf("%d", hr.ActivitiesAnalyzed), ""),
		RenderMetric("Avg % of FTHR", fmt.Sprintf("%.0f%%", hr.AvgPercentOfFTHR), ""),
		RenderMetric("Drifting", fmt.Sprintf("%d", hr.DriftCount), ""),
		"",
		"  " + hr.Interpretation,
	}
	if hr.DriftWarning != "" {
		lines = append(lines, "  "+warningStyle.Render(hr.DriftWarning))
	}
	return strings.Join(lines, "\n")
}
