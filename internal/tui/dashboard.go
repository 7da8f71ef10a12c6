package tui

import (
	"fmt"
	"time"

	"ridelab/internal/analysis"
	"ridelab/internal/service"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

// DashboardModel is the dashboard screen model
type DashboardModel struct {
	queryService *service.QueryService
	units        Units
	now          func() time.Time
	data         *service.DashboardData
	loading      bool
	err          error
}

// NewDashboardModel creates a new dashboard model
func NewDashboardModel(qs *service.QueryService, units Units, now func() time.Time) DashboardModel {
	return DashboardModel{
		queryService: qs,
		units:        units,
		now:          now,
		loading:      true,
	}
}

// Init initializes the dashboard
func (m DashboardModel) Init() tea.Cmd {
	return m.loadData
}

func (m DashboardModel) loadData() tea.Msg {
	data, err := m.queryService.Dashboard(m.now())
	return dashboardDataMsg{data: data, err: err}
}

type dashboardDataMsg struct {
	data *service.DashboardData
	err  error
}

// Update handles messages
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		m.loading = false
		m.err = msg.err
		m.data = msg.data
	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			m.loading = true
			return m, m.loadData
		}
	}
	return m, nil
}

// View renders the dashboard
func (m DashboardModel) View() string {
	if m.loading {
		return "\n  Loading dashboard..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if m.data == nil || m.data.ActivityCount == 0 {
		return "\n  No activities in the last six months. Press 's' to sync with Strava or run 'ridelab import <file.fit>'."
	}

	var sections []string

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, m.renderLoadCard(), "  ", m.renderFitnessCard())
	sections = append(sections, topRow)

	midRow := lipgloss.JoinHorizontal(lipgloss.Top, m.renderThresholdCard(), "  ", m.renderContextCard())
	sections = append(sections, midRow)

	if len(m.data.Trends) > 2 {
		sections = append(sections, m.renderChart())
	}

	help := statusStyle.Render(fmt.Sprintf("Last sync %s  |  r: refresh  s: sync  2: threshold details",
		formatSince(m.data.LastSync, m.now())))
	sections = append(sections, help)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m DashboardModel) renderLoadCard() string {
	title := cardTitleStyle.Render("Training Load")
	week, avg := m.data.CurrentWeek, m.data.FourWeekAverage

	ratio := ""
	if m.data.LoadRatio > 0 {
		ratio = formatRatio(m.data.LoadRatio - 1)
	}

	lines := []string{
		RenderMetric("Last 7 days", fmt.Sprintf("%.0f TSS", week.TotalTSS), ratio),
		RenderMetric("4-week avg", fmt.Sprintf("%.0f TSS", avg.TotalTSS), ""),
		RenderMetric("Activities", fmt.Sprintf("%d (avg %d)", week.ActivityCount, avg.ActivityCount), ""),
		RenderMetric("Time", formatDuration(week.TotalTimeSeconds), ""),
		RenderMetric("Distance", m.units.FormatDistance(week.TotalDistanceMeters), ""),
		RenderMetric("Climbing", m.units.FormatElevation(week.TotalElevationMeters), ""),
		"",
		mutedStyle.Render("Load ratio ") + RenderProgressBar(m.data.LoadRatio/2, 20) +
			mutedStyle.Render(fmt.Sprintf(" %.2f", m.data.LoadRatio)),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Width(44).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m DashboardModel) renderFitnessCard() string {
	title := cardTitleStyle.Render("Fitness & Form")
	p := m.data.Fitness

	lines := []string{
		RenderMetric("Fitness (CTL)", fmt.Sprintf("%.0f", p.CTL), ""),
		RenderMetric("Fatigue (ATL)", fmt.Sprintf("%.0f", p.ATL), ""),
		RenderMetric("Form (TSB)", fmt.Sprintf("%+.0f", p.TSB), ""),
		"",
		mutedStyle.Render(m.data.FormDescription),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Width(38).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m DashboardModel) renderThresholdCard() string {
	title := cardTitleStyle.Render("Thresholds")
	ftp, fthr := m.data.FTP, m.data.FTHR

	lines := []string{
		RenderMetric("FTP", formatEstimate(ftp, "W"), string(ftp.Confidence)),
		RenderMetric("Threshold HR", formatEstimate(fthr, "bpm"), string(fthr.Confidence)),
	}
	if ftp.Recommendation != "" {
		lines = append(lines, "", mutedStyle.Width(38).Render(ftp.Recommendation))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Width(44).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m DashboardModel) renderContextCard() string {
	title := cardTitleStyle.Render("Training Context")
	ctx := m.data.Context

	consistency := warningStyle.Render("inconsistent")
	if ctx.TrainingConsistent {
		consistency = successStyle.Render("consistent")
	}

	lines := []string{
		RenderMetric("CTL trend", ctlTrendStyle(ctx.CTLTrend).Render(string(ctx.CTLTrend)), formatRatio(ctx.CTLChangeRatio)),
		RenderMetric("Weekly TSS", fmt.Sprintf("%.0f", ctx.WeeklyTSS), ""),
		RenderMetric("Training", consistency, ""),
		RenderMetric("Breaks (6 wk)", fmt.Sprintf("%d", len(ctx.Gaps)), ""),
	}
	if ctx.HasRecentGap {
		lines = append(lines, "", warningStyle.Render("Recent break of two weeks or more"))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Width(38).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m DashboardModel) renderChart() string {
	title := cardTitleStyle.Render(fmt.Sprintf("Weekly TSS - last %d weeks", len(m.data.Trends)))

	graph := asciigraph.Plot(weeklyTSS(m.data.Trends),
		asciigraph.Height(8),
		asciigraph.Width(60),
		asciigraph.Precision(0),
	)

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, graph))
}

func weeklyTSS(trends []analysis.LoadSnapshot) []float64 {
	values := make([]float64, len(trends))
	for i, w := range trends {
		values[i] = w.TotalTSS
	}
	return values
}
