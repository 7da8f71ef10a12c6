package tui

import (
	"fmt"
	"time"

	"ridelab/internal/analysis"
	"ridelab/internal/service"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Screen identifiers
type Screen int

const (
	ScreenDashboard Screen = iota
	ScreenThresholds
	ScreenZones
	ScreenTrends
	ScreenActivities
	ScreenSync
	ScreenHelp
)

// Options configures the app
type Options struct {
	Units     Units
	ZoneModel analysis.ZoneModel
	// Now is the clock used as the analysis date, time.Now when nil
	Now func() time.Time
}

// App is the root Bubble Tea model
type App struct {
	screen     Screen
	prevScreen Screen

	// Screen models
	dashboard  DashboardModel
	thresholds ThresholdsModel
	zones      ZonesModel
	trends     TrendsModel
	activities ActivitiesModel
	syncScreen SyncModel
	help       HelpModel

	// Services
	queryService *service.QueryService
	syncService  *service.SyncService // nil in offline mode

	units     Units
	now       func() time.Time

	// Window dimensions
	width  int
	height int

	// Status message
	status string
}

// NewApp creates a new App. syncService may be nil when Strava is not
// configured; activities then come only from imported FIT files.
func NewApp(syncService *service.SyncService, queryService *service.QueryService, opts Options) *App {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	zm := opts.ZoneModel
	if zm == "" {
		zm = analysis.Zones5
	}

	return &App{
		screen:       ScreenDashboard,
		queryService: queryService,
		syncService:  syncService,
		units:        opts.Units,
		now:          now,
		dashboard:    NewDashboardModel(queryService, opts.Units, now),
		thresholds:   NewThresholdsModel(queryService, now, 0, 0),
		zones:        NewZonesModel(queryService, zm, now),
		trends:       NewTrendsModel(queryService, opts.Units, now, 0),
		activities:   NewActivitiesModel(queryService, opts.Units, now),
		syncScreen:   NewSyncModel(syncService, now),
		help:         NewHelpModel(),
	}
}

// Init initializes the app
func (a *App) Init() tea.Cmd {
	return a.dashboard.Init()
}

// Update handles messages
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Global keybindings (unless a sync is running)
		if a.screen != ScreenSync || !a.syncScreen.syncing {
			switch msg.String() {
			case "q", "ctrl+c":
				return a, tea.Quit
			case "1":
				a.screen = ScreenDashboard
				a.dashboard = NewDashboardModel(a.queryService, a.units, a.now)
				return a, a.dashboard.Init()
			case "2":
				a.screen = ScreenThresholds
				a.thresholds = NewThresholdsModel(a.queryService, a.now, a.width, a.height)
				return a, a.thresholds.Init()
			case "3":
				a.screen = ScreenZones
				return a, a.zones.Init()
			case "4":
				a.screen = ScreenTrends
				a.trends = NewTrendsModel(a.queryService, a.units, a.now, a.width)
				return a, a.trends.Init()
			case "5":
				a.screen = ScreenActivities
				return a, a.activities.Init()
			case "s":
				if a.screen != ScreenSync {
					a.screen = ScreenSync
					return a, a.syncScreen.Init()
				}
				// Let 's' fall through to sync screen when already there
			case "?":
				a.prevScreen = a.screen
				a.screen = ScreenHelp
				return a, nil
			case "esc":
				if a.screen == ScreenHelp {
					a.screen = a.prevScreen
					return a, nil
				}
			}
		} else if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

	case syncProgressMsg, SyncDoneMsg, spinner.TickMsg:
		// sync messages go to the sync screen whichever screen is showing
		m, cmd := a.syncScreen.Update(msg)
		a.syncScreen = m.(SyncModel)
		return a, cmd

	case SyncCompleteMsg:
		a.status = syncStatus(msg.Result, a.now())
		// Rebuild cached screens so they pick up new activities
		a.dashboard = NewDashboardModel(a.queryService, a.units, a.now)
		a.activities = NewActivitiesModel(a.queryService, a.units, a.now)
		return a, nil
	}

	// Delegate to current screen
	var cmd tea.Cmd
	switch a.screen {
	case ScreenDashboard:
		var m tea.Model
		m, cmd = a.dashboard.Update(msg)
		a.dashboard = m.(DashboardModel)
	case ScreenThresholds:
		var m tea.Model
		m, cmd = a.thresholds.Update(msg)
		a.thresholds = m.(ThresholdsModel)
	case ScreenZones:
		var m tea.Model
		m, cmd = a.zones.Update(msg)
		a.zones = m.(ZonesModel)
	case ScreenTrends:
		var m tea.Model
		m, cmd = a.trends.Update(msg)
		a.trends = m.(TrendsModel)
	case ScreenActivities:
		var m tea.Model
		m, cmd = a.activities.Update(msg)
		a.activities = m.(ActivitiesModel)
	case ScreenSync:
		var m tea.Model
		m, cmd = a.syncScreen.Update(msg)
		a.syncScreen = m.(SyncModel)
	case ScreenHelp:
		var m tea.Model
		m, cmd = a.help.Update(msg)
		a.help = m.(HelpModel)
	}

	return a, cmd
}

// View renders the app
func (a *App) View() string {
	header := a.renderHeader()
	nav := a.renderNav()

	var content string
	switch a.screen {
	case ScreenDashboard:
		content = a.dashboard.View()
	case ScreenThresholds:
		content = a.thresholds.View()
	case ScreenZones:
		content = a.zones.View()
	case ScreenTrends:
		content = a.trends.View()
	case ScreenActivities:
		content = a.activities.View()
	case ScreenSync:
		content = a.syncScreen.View()
	case ScreenHelp:
		content = a.help.View()
	}

	footer := a.renderFooter()

	return lipgloss.JoinVertical(lipgloss.Left, header, nav, content, footer)
}

func (a *App) renderHeader() string {
	title := "ridelab - training load & thresholds"
	if a.syncService == nil {
		title += " (offline)"
	}
	return headerStyle.Render(title)
}

func (a *App) renderNav() string {
	items := []struct {
		key    string
		label  string
		screen Screen
	}{
		{"1", "Dashboard", ScreenDashboard},
		{"2", "Thresholds", ScreenThresholds},
		{"3", "Zones", ScreenZones},
		{"4", "Trends", ScreenTrends},
		{"5", "Activities", ScreenActivities},
		{"s", "Sync", ScreenSync},
		{"?", "Help", ScreenHelp},
	}

	var nav string
	for i, item := range items {
		if i > 0 {
			nav += "  "
		}

		label := "[" + item.key + "] " + item.label
		if a.screen == item.screen {
			nav += navActiveStyle.Render(label)
		} else {
			nav += navInactiveStyle.Render(label)
		}
	}

	nav += "  " + navInactiveStyle.Render("[q] Quit")

	return navStyle.Render(nav)
}

func (a *App) renderFooter() string {
	if a.status != "" {
		return statusStyle.Render(a.status)
	}
	return ""
}

func syncStatus(r *service.SyncResult, now time.Time) string {
	if r == nil {
		return "Sync failed at " + now.Format("15:04")
	}
	return fmt.Sprintf("Synced %d activities at %s", r.ActivitiesStored, now.Format("15:04"))
}

// SyncCompleteMsg is sent when sync finishes
type SyncCompleteMsg struct {
	Result *service.SyncResult
}
