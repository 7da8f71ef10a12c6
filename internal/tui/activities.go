package tui

import (
	"fmt"
	"time"

	"ridelab/internal/analysis"
	"ridelab/internal/service"
	"ridelab/internal/store"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ActivitiesModel is the activities list screen model
type ActivitiesModel struct {
	queryService *service.QueryService
	units        Units
	now          func() time.Time
	rows         []service.ActivityRow
	cursor       int
	offset       int
	total        int
	pageSize     int
	loading      bool
	err          error
}

// NewActivitiesModel creates a new activities model
func NewActivitiesModel(qs *service.QueryService, units Units, now func() time.Time) ActivitiesModel {
	return ActivitiesModel{
		queryService: qs,
		units:        units,
		now:          now,
		pageSize:     15,
		loading:      true,
	}
}

// Init initializes the activities screen
func (m ActivitiesModel) Init() tea.Cmd {
	return m.loadPage
}

type activitiesLoadedMsg struct {
	rows  []service.ActivityRow
	total int
	err   error
}

func (m ActivitiesModel) loadPage() tea.Msg {
	rows, total, err := m.queryService.Activities(m.pageSize, m.offset, m.now())
	return activitiesLoadedMsg{rows: rows, total: total, err: err}
}

// Update handles messages
func (m ActivitiesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case activitiesLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.rows = msg.rows
		m.total = msg.total
		m.cursor = min(m.cursor, max(len(m.rows)-1, 0))

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			} else if m.offset > 0 {
				// Go to previous page
				m.offset -= m.pageSize
				m.cursor = m.pageSize - 1
				m.loading = true
				return m, m.loadPage
			}
		case "down", "j":
			if m.cursor < len(m.rows)-1 {
				m.cursor++
			} else if m.offset+len(m.rows) < m.total {
				// Go to next page
				m.offset += m.pageSize
				m.cursor = 0
				m.loading = true
				return m, m.loadPage
			}
		case "pgup":
			if m.offset > 0 {
				m.offset = max(m.offset-m.pageSize, 0)
				m.cursor = 0
				m.loading = true
				return m, m.loadPage
			}
		case "pgdown":
			if m.offset+m.pageSize < m.total {
				m.offset += m.pageSize
				m.cursor = 0
				m.loading = true
				return m, m.loadPage
			}
		case "r":
			m.loading = true
			return m, m.loadPage
		}
	}
	return m, nil
}

// View renders the activities list
func (m ActivitiesModel) View() string {
	if m.loading {
		return "\n  Loading activities..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if len(m.rows) == 0 {
		return "\n  No activities found. Press 's' to sync with Strava or run 'ridelab import <file.fit>'."
	}

	var sections []string

	// Title with pagination info
	title := cardTitleStyle.Render(fmt.Sprintf("Activities (%d-%d of %d)",
		m.offset+1, m.offset+len(m.rows), m.total))
	sections = append(sections, title)

	header := tableHeaderStyle.Render(fmt.Sprintf("   %-10s  %-25s  %10s  %8s  %6s  %6s  %5s  %-6s",
		"Date", "Name", "Distance", "Time", "NP", "HR", "TSS", "Source"))
	sections = append(sections, header)

	for i, r := range m.rows {
		a := r.Activity

		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}

		row := fmt.Sprintf("%s%-10s  %-25s  %10s  %8s  %6s  %6s  %5s  %-6s",
			cursor,
			a.StartDate.Local().Format("Jan 02"),
			truncateName(a.Name, 25),
			m.units.FormatDistance(a.Distance),
			formatDuration(float64(a.MovingTime)),
			formatOptional(a.WeightedAverageWatts, "W"),
			formatOptional(a.AverageHeartrate, ""),
			formatTSS(r.TSS),
			sourceLabel(a.Source),
		)

		if i == m.cursor {
			sections = append(sections, tableSelectedStyle.Render(row))
		} else {
			sections = append(sections, tableRowStyle.Render(row))
		}
	}

	help := statusStyle.Render("  * TSS estimated from heart rate   ~ TSS estimated from duration\n  j/k: navigate  pgup/pgdn: page  r: refresh")
	sections = append(sections, help)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func formatOptional(v *float64, unit string) string {
	if v == nil || *v <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.0f%s", *v, unit)
}

// formatTSS marks values that did not come from power
func formatTSS(r analysis.TSSResult) string {
	switch r.Method {
	case analysis.TSSHeartRate:
		return fmt.Sprintf("%d*", r.TSS)
	case analysis.TSSDurationFallback:
		return fmt.Sprintf("%d~", r.TSS)
	default:
		return fmt.Sprintf("%d", r.TSS)
	}
}

func sourceLabel(source string) string {
	if source == store.SourceFIT {
		return "FIT"
	}
	return "Strava"
}
