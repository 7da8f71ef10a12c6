package tui

import (
	"fmt"
	"strings"
	"time"

	"ridelab/internal/analysis"
	"ridelab/internal/service"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

// TrendsModel charts weekly load and fitness over the configured span
type TrendsModel struct {
	queryService *service.QueryService
	units        Units
	now          func() time.Time
	data         *service.DashboardData
	width        int
	loading      bool
	err          error
}

// NewTrendsModel creates a new trends model
func NewTrendsModel(qs *service.QueryService, units Units, now func() time.Time, width int) TrendsModel {
	return TrendsModel{
		queryService: qs,
		units:        units,
		now:          now,
		width:        width,
		loading:      true,
	}
}

// Init initializes the trends screen
func (m TrendsModel) Init() tea.Cmd {
	return m.load
}

type trendsLoadedMsg struct {
	data *service.DashboardData
	err  error
}

func (m TrendsModel) load() tea.Msg {
	data, err := m.queryService.Dashboard(m.now())
	return trendsLoadedMsg{data: data, err: err}
}

// Update handles messages
func (m TrendsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case trendsLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.data = msg.data
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tea.KeyMsg:
		if msg.String() == "r" {
			m.loading = true
			return m, m.load
		}
	}
	return m, nil
}

// View renders the trends screen
func (m TrendsModel) View() string {
	if m.loading {
		return "\n  Loading trends..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if m.data == nil || len(m.data.Trends) == 0 {
		return "\n  Not enough history for trends yet."
	}

	chartWidth := 60
	if m.width > 30 {
		chartWidth = min(m.width-20, 100)
	}

	var sections []string

	tssTitle := cardTitleStyle.Render(fmt.Sprintf("Weekly TSS (%d weeks)", len(m.data.Trends)))
	tssGraph := asciigraph.Plot(weeklyTSS(m.data.Trends),
		asciigraph.Height(8),
		asciigraph.Width(chartWidth),
		asciigraph.Precision(0),
	)
	sections = append(sections, cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, tssTitle, tssGraph)))

	if len(m.data.FitnessHistory) > 1 {
		ctl := fitnessValues(m.data.FitnessHistory)
		ctlTitle := cardTitleStyle.Render("Fitness (CTL) and Fatigue (ATL)")
		ctlGraph := asciigraph.PlotMany(ctl,
			asciigraph.Height(8),
			asciigraph.Width(chartWidth),
			asciigraph.Precision(0),
			asciigraph.SeriesColors(asciigraph.Green, asciigraph.Red),
		)
		legend := successStyle.Render("── CTL") + "  " + errorStyle.Render("── ATL")
		sections = append(sections, cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, ctlTitle, ctlGraph, legend)))
	}

	sections = append(sections, m.renderTable())
	sections = append(sections, statusStyle.Render("  r: refresh"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m TrendsModel) renderTable() string {
	var lines []string
	lines = append(lines, tableHeaderStyle.Render(fmt.Sprintf("%-8s  %6s  %4s  %8s  %10s  %9s",
		"Week", "TSS", "Rides", "Time", "Distance", "Climbing")))

	// newest first
	for i := len(m.data.Trends) - 1; i >= 0; i-- {
		w := m.data.Trends[i]
		lines = append(lines, tableRowStyle.Render(fmt.Sprintf("%-8s  %6.0f  %5d  %8s  %10s  %9s",
			w.WindowStart.Format("Jan 02"),
			w.TotalTSS,
			w.ActivityCount,
			formatDuration(w.TotalTimeSeconds),
			m.units.FormatDistance(w.TotalDistanceMeters),
			m.units.FormatElevation(w.TotalElevationMeters),
		)))
	}
	return strings.Join(lines, "\n")
}

// fitnessValues splits the fitness history into CTL and ATL series
func fitnessValues(points []analysis.FitnessPoint) [][]float64 {
	if len(points) == 0 {
		return nil
	}
	ctl := make([]float64, len(points))
	atl := make([]float64, len(points))
	for i, p := range points {
		ctl[i] = p.CTL
		atl[i] = p.ATL
	}
	return [][]float64{ctl, atl}
}
