package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// HelpModel is the help screen model
type HelpModel struct{}

// NewHelpModel creates a new help model
func NewHelpModel() HelpModel {
	return HelpModel{}
}

// Init initializes the help screen
func (m HelpModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m HelpModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m, nil
}

// View renders the help screen
func (m HelpModel) View() string {
	var sections []string

	title := cardTitleStyle.Render("Keyboard Shortcuts")
	sections = append(sections, title)

	// Navigation section
	navSection := m.renderSection("Navigation", []keyHelp{
		{"1", "Dashboard"},
		{"2", "Threshold estimates"},
		{"3", "Heart rate zones"},
		{"4", "Weekly trends"},
		{"5", "Activities list"},
		{"s", "Sync screen"},
		{"?", "Help (this screen)"},
		{"q", "Quit"},
		{"esc", "Back / close help"},
	})
	sections = append(sections, navSection)

	// Screen keys
	screenSection := m.renderSection("All screens", []keyHelp{
		{"r", "Reload data"},
	})
	sections = append(sections, screenSection)

	thresholdSection := m.renderSection("Thresholds", []keyHelp{
		{"j / k", "Scroll"},
	})
	sections = append(sections, thresholdSection)

	zoneSection := m.renderSection("Zones", []keyHelp{
		{"m", "Cycle 3 / 5 / 7 zone model"},
	})
	sections = append(sections, zoneSection)

	// Activities keys
	actSection := m.renderSection("Activities List", []keyHelp{
		{"j / down", "Move cursor down"},
		{"k / up", "Move cursor up"},
		{"pgdn", "Next page"},
		{"pgup", "Previous page"},
	})
	sections = append(sections, actSection)

	// Sync keys
	syncSection := m.renderSection("Sync Screen", []keyHelp{
		{"s / enter", "Start sync"},
		{"x", "Cancel a running sync"},
	})
	sections = append(sections, syncSection)

	// Metrics explanation
	metricsSection := m.renderMetricsHelp()
	sections = append(sections, metricsSection)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

type keyHelp struct {
	key  string
	desc string
}

func (m HelpModel) renderSection(title string, keys []keyHelp) string {
	var lines []string

	lines = append(lines, "")
	lines = append(lines, sectionStyle.Render(title))

	for _, k := range keys {
		lines = append(lines, "  "+RenderKeyHelp(k.key, k.desc))
	}

	return strings.Join(lines, "\n")
}

func (m HelpModel) renderMetricsHelp() string {
	var lines []string

	lines = append(lines, "")
	lines = append(lines, sectionStyle.Render("Metrics Explained"))
	lines = append(lines, "")

	metrics := []struct {
		name string
		desc string
	}{
		{"TSS (Training Stress Score)", "Load of one ride. One hour at FTP = 100. Uses power, then heart rate, then duration."},
		{"CTL (Fitness)", "Chronic training load - 42 day weighted average of daily TSS."},
		{"ATL (Fatigue)", "Acute training load - 7 day weighted average of daily TSS."},
		{"TSB (Form)", "Training stress balance = CTL - ATL. Positive = fresh."},
		{"Load ratio", "Last 7 days TSS over the 4-week average. Above 1.5 ramps too fast."},
		{"FTP", "Functional threshold power, estimated from your hardest 20-60 minute efforts."},
		{"FTHR", "Threshold heart rate, estimated from sustained hard efforts. Drives the zones."},
		{"Confidence", "high / medium / low by how many recent hard efforts back the estimate."},
	}

	for _, metric := range metrics {
		lines = append(lines, "  "+helpKeyStyle.Render(metric.name))
		lines = append(lines, "  "+mutedStyle.Render(metric.desc))
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}
