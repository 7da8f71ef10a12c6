package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ridelab/internal/service"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// SyncModel is the sync screen model
type SyncModel struct {
	syncService *service.SyncService // nil when Strava is not configured
	now         func() time.Time
	spinner     spinner.Model
	syncing     bool
	progress    service.SyncProgress
	progressCh  chan service.SyncProgress
	doneCh      chan SyncDoneMsg
	cancel      context.CancelFunc
	result      *service.SyncResult
	err         error
	done        bool
}

// NewSyncModel creates a new sync model
func NewSyncModel(ss *service.SyncService, now func() time.Time) SyncModel {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(primaryColor)),
	)
	return SyncModel{
		syncService: ss,
		now:         now,
		spinner:     s,
	}
}

// Init initializes the sync screen
func (m SyncModel) Init() tea.Cmd {
	return nil
}

// SyncDoneMsg is sent when sync finishes
type SyncDoneMsg struct {
	Result *service.SyncResult
	Err    error
}

type syncProgressMsg service.SyncProgress

// Update handles messages
func (m SyncModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case syncProgressMsg:
		m.progress = service.SyncProgress(msg)
		return m, waitForProgress(m.progressCh)

	case SyncDoneMsg:
		m.syncing = false
		m.done = true
		m.result = msg.Result
		m.err = msg.Err
		if m.cancel != nil {
			m.cancel()
			m.cancel = nil
		}
		return m, func() tea.Msg { return SyncCompleteMsg{Result: msg.Result} }

	case spinner.TickMsg:
		if !m.syncing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.syncing {
			if msg.String() == "x" && m.cancel != nil {
				m.cancel()
			}
			return m, nil
		}
		switch msg.String() {
		case "enter", "s":
			if m.syncService == nil {
				return m, nil
			}
			return m.start()
		}
	}
	return m, nil
}

// start runs the sync in the background. Progress and completion arrive
// on separate channels so a slow screen never blocks the sync.
func (m SyncModel) start() (SyncModel, tea.Cmd) {
	ctx, cancel := context.WithCancel(context.Background())

	m.syncing = true
	m.done = false
	m.err = nil
	m.result = nil
	m.progress = service.SyncProgress{}
	m.cancel = cancel
	m.progressCh = make(chan service.SyncProgress, 16)
	m.doneCh = make(chan SyncDoneMsg, 1)

	ss, progressCh, doneCh := m.syncService, m.progressCh, m.doneCh
	go func() {
		result, err := ss.SyncAll(ctx, progressCh)
		doneCh <- SyncDoneMsg{Result: result, Err: err}
	}()

	return m, tea.Batch(m.spinner.Tick, waitForProgress(progressCh), waitForDone(doneCh))
}

func waitForProgress(ch <-chan service.SyncProgress) tea.Cmd {
	return func() tea.Msg {
		p, ok := <-ch
		if !ok {
			return nil
		}
		return syncProgressMsg(p)
	}
}

func waitForDone(ch <-chan SyncDoneMsg) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

// View renders the sync screen
func (m SyncModel) View() string {
	var sections []string

	title := cardTitleStyle.Render("Strava Sync")
	sections = append(sections, title)

	if m.syncService == nil {
		sections = append(sections, m.renderNotConfigured())
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	if m.err != nil {
		sections = append(sections, errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err)))
		sections = append(sections, m.renderSummary())
		sections = append(sections, "\n"+statusStyle.Render("  Press 's' or Enter to retry"))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	if m.done && !m.syncing {
		sections = append(sections, successStyle.Render("\n  Sync complete!"))
		sections = append(sections, m.renderSummary())
		sections = append(sections, "\n"+statusStyle.Render("  Press '1' to go to dashboard"))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	if m.syncing {
		sections = append(sections, m.renderProgress())
	} else {
		sections = append(sections, m.renderStartPrompt())
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m SyncModel) renderNotConfigured() string {
	lines := []string{
		"",
		"  Strava is not configured.",
		"",
		"  Add client_id and client_secret to the [strava] section of your",
		"  config file, or import rides from FIT files instead:",
		"",
		helpKeyStyle.Render("    ridelab import ride1.fit ride2.fit"),
	}
	return strings.Join(lines, "\n")
}

func (m SyncModel) renderStartPrompt() string {
	var lines []string

	lines = append(lines, "")
	lines = append(lines, "  This fetches activities recorded since the last sync")
	lines = append(lines, "  and recomputes training load and thresholds.")
	lines = append(lines, "")

	if last, err := m.syncService.LastSync(); err == nil {
		lines = append(lines, fmt.Sprintf("  Newest synced activity: %s", formatSince(last, m.now())))
	}

	short, daily := m.syncService.RateLimitStatus()
	lines = append(lines, statusStyle.Render(fmt.Sprintf("  API requests left: %d (15 min), %d (daily)", short, daily)))
	lines = append(lines, "")
	lines = append(lines, statusStyle.Render("  Press 's' or Enter to start sync"))

	return strings.Join(lines, "\n")
}

func (m SyncModel) renderProgress() string {
	var lines []string

	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("  %s Syncing with Strava...", m.spinner.View()))
	lines = append(lines, "")

	p := m.progress
	if p.Page > 0 {
		lines = append(lines, fmt.Sprintf("  Page %d: %s fetched, %s stored",
			p.Page, humanize.Comma(int64(p.Fetched)), humanize.Comma(int64(p.Stored))))
	}
	if !p.LastStart.IsZero() {
		lines = append(lines, fmt.Sprintf("  Reached %s", p.LastStart.Local().Format("Jan 02 2006")))
	}

	lines = append(lines, "")
	lines = append(lines, statusStyle.Render("  x: cancel"))

	return strings.Join(lines, "\n")
}

func (m SyncModel) renderSummary() string {
	var lines []string

	if m.result == nil {
		return ""
	}

	r := m.result
	lines = append(lines, "")

	if r.ActivitiesStored > 0 {
		lines = append(lines, successStyle.Render(fmt.Sprintf("  %s activities synced", humanize.Comma(int64(r.ActivitiesStored)))))
		lines = append(lines, fmt.Sprintf("  %d with power, %d with heart rate", r.PowerActivities, r.HRActivities))
	} else {
		lines = append(lines, statusStyle.Render("  No new activities"))
	}

	if len(r.Errors) > 0 {
		lines = append(lines, "")
		lines = append(lines, warningStyle.Render(fmt.Sprintf("  %d activities could not be stored", len(r.Errors))))
	}

	return strings.Join(lines, "\n")
}
