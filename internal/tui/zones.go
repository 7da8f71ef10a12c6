package tui

import (
	"fmt"
	"strings"
	"time"

	"ridelab/internal/analysis"
	"ridelab/internal/service"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ZonesModel shows heart rate zones for the selected model
type ZonesModel struct {
	queryService *service.QueryService
	now          func() time.Time
	model        analysis.ZoneModel
	data         *service.ZonesData
	loading      bool
	err          error
}

// NewZonesModel creates a new zones model starting at the configured model
func NewZonesModel(qs *service.QueryService, model analysis.ZoneModel, now func() time.Time) ZonesModel {
	return ZonesModel{
		queryService: qs,
		now:          now,
		model:        model,
		loading:      true,
	}
}

// Init initializes the zones screen
func (m ZonesModel) Init() tea.Cmd {
	return m.load
}

type zonesLoadedMsg struct {
	data *service.ZonesData
	err  error
}

func (m ZonesModel) load() tea.Msg {
	data, err := m.queryService.Zones(m.model, m.now())
	return zonesLoadedMsg{data: data, err: err}
}

// Update handles messages
func (m ZonesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case zonesLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.data = msg.data
	case tea.KeyMsg:
		switch msg.String() {
		case "m":
			m.model = m.model.Next()
			m.loading = true
			return m, m.load
		case "r":
			m.loading = true
			return m, m.load
		}
	}
	return m, nil
}

// View renders the zones screen
func (m ZonesModel) View() string {
	if m.loading {
		return "\n  Calculating zones..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	title := cardTitleStyle.Render(fmt.Sprintf("Heart Rate Zones (%s)", m.model))
	help := statusStyle.Render("  m: switch model (3 / 5 / 7 zones)  r: refresh")

	if m.data == nil || m.data.Table == nil {
		msg := "No threshold heart rate yet."
		if m.data != nil && m.data.FTHR.Message != "" {
			msg = m.data.FTHR.Message
		}
		return lipgloss.JoinVertical(lipgloss.Left, title, "  "+msg, help)
	}

	table := m.data.Table
	var lines []string
	lines = append(lines, RenderMetric("Threshold HR", fmt.Sprintf("%d bpm", table.FTHR),
		string(m.data.FTHR.Confidence)))
	lines = append(lines, "")
	lines = append(lines, tableHeaderStyle.Render(fmt.Sprintf("%-6s %-12s %-11s %-10s %s",
		"Zone", "Name", "Range", "% FTHR", "Purpose")))

	for i, z := range table.Zones {
		row := zoneStyle(i).Width(7).Render(fmt.Sprintf("Z%d", i+1)) + fmt.Sprintf("%-12s %-11s %-10s %s",
			z.Name,
			fmt.Sprintf("%d-%d", z.Min, z.Max),
			z.PercentageLabel,
			z.Purpose,
		)
		lines = append(lines, tableRowStyle.Render(row))
		lines = append(lines, tableRowStyle.Render("       "+mutedStyle.Render(z.Description)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, strings.Join(lines, "\n"), help)
}
