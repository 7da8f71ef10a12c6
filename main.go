package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"ridelab/internal/auth"
	"ridelab/internal/config"
	"ridelab/internal/logger"
	"ridelab/internal/service"
	"ridelab/internal/store"
	"ridelab/internal/strava"
	"ridelab/internal/tui"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func printUsage() {
	fmt.Print(`ridelab - training load and threshold estimation for cyclists

Usage:
  ridelab                       Open the dashboard (syncs with Strava when configured)
  ridelab import FILE.fit...    Import rides from FIT files
  ridelab report [--date DATE]  Print the training summary as of DATE (default: today)
  ridelab auth                  Connect or reconnect your Strava account
  ridelab logout                Forget stored Strava tokens
`)
}

func run(args []string) error {
	ctx := context.Background()

	cmd := ""
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}
	if cmd == "help" || cmd == "-h" || cmd == "--help" {
		printUsage()
		return nil
	}

	// Load configuration
	cfg, err := config.Load()
	if errors.Is(err, config.ErrNoConfig) {
		fmt.Println("No config file found. Creating example config...")
		if err := config.CreateExample(); err != nil {
			return fmt.Errorf("creating example config: %w", err)
		}
		configDir, _ := config.GetConfigDir()
		fmt.Printf("\nPlease edit the config file at:\n  %s/config.json\n\n", configDir)
		fmt.Println("Add your Strava API credentials to sync rides (https://www.strava.com/settings/api),")
		fmt.Println("or leave them out and use 'ridelab import' with FIT files.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.ValidateLocal(); err != nil {
		configDir, _ := config.GetConfigDir()
		fmt.Printf("Config validation failed: %v\n\n", err)
		fmt.Printf("Please edit the config file at:\n  %s/config.json\n", configDir)
		return nil
	}

	closeLog, err := setupLogging(cfg)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer closeLog()

	// Open database
	db, err := store.Open()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	switch cmd {
	case "", "tui":
		return runTUI(ctx, db, cfg)
	case "import":
		return runImport(db, args)
	case "report":
		return runReport(db, cfg, args)
	case "auth":
		if err := cfg.Validate(); err != nil {
			return err
		}
		return authenticate(ctx, db, cfg)
	case "logout":
		if err := db.ClearAuth(); err != nil {
			return fmt.Errorf("clearing auth: %w", err)
		}
		fmt.Println("Strava tokens removed.")
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

// setupLogging sends log output to the configured file so it stays out of the TUI
func setupLogging(cfg *config.Config) (func(), error) {
	path, err := cfg.LogPath()
	if err != nil {
		return nil, err
	}
	f, err := logger.OpenFile(path)
	if err != nil {
		return nil, err
	}
	logger.Init(cfg.Logging.Level, f)
	return func() { f.Close() }, nil
}

func runTUI(ctx context.Context, db *store.DB, cfg *config.Config) error {
	syncSvc, err := connectStrava(ctx, db, cfg)
	if err != nil {
		return err
	}

	querySvc := service.NewQueryService(db, cfg)

	app := tui.NewApp(syncSvc, querySvc, tui.Options{
		Units:     tui.NewUnits(cfg.Display),
		ZoneModel: cfg.Display.Zones(),
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}

	return nil
}

// connectStrava returns a sync service backed by the Strava API, or nil
// when no credentials are configured and the app runs on imported files only.
func connectStrava(ctx context.Context, db *store.DB, cfg *config.Config) (*service.SyncService, error) {
	if err := cfg.Validate(); err != nil {
		logger.Info("strava disabled: %v", err)
		return nil, nil
	}
	authCfg := stravaAuthConfig(cfg)

	// Check for existing auth
	_, err := db.GetAuth()
	if errors.Is(err, store.ErrNoAuth) {
		fmt.Println("No authentication found. Starting OAuth flow...")
		if err := authenticate(ctx, db, cfg); err != nil {
			return nil, fmt.Errorf("authentication: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("checking auth: %w", err)
	}

	tokenSource, err := auth.NewStoreTokenSource(authCfg, db)
	if err != nil {
		return nil, fmt.Errorf("loading tokens: %w", err)
	}

	// Test token is valid by getting a fresh one
	if _, err := tokenSource.Token(); err != nil {
		logger.Warn("stored token rejected: %v", err)
		fmt.Println("Stored token is invalid or expired. Re-authenticating...")
		if err := authenticate(ctx, db, cfg); err != nil {
			return nil, fmt.Errorf("re-authentication: %w", err)
		}
		if tokenSource, err = auth.NewStoreTokenSource(authCfg, db); err != nil {
			return nil, fmt.Errorf("loading tokens: %w", err)
		}
	}

	return service.NewSyncService(strava.NewClient(tokenSource), db), nil
}

func stravaAuthConfig(cfg *config.Config) auth.Config {
	return auth.Config{
		ClientID:     cfg.Strava.ClientID,
		ClientSecret: cfg.Strava.ClientSecret,
	}
}

func authenticate(ctx context.Context, db *store.DB, cfg *config.Config) error {
	result, err := auth.Authenticate(ctx, stravaAuthConfig(cfg), os.Stdout)
	if err != nil {
		return err
	}

	if err := db.SaveAuth(result.StoredAuth()); err != nil {
		return fmt.Errorf("saving auth: %w", err)
	}

	fmt.Println()
	fmt.Printf("Successfully authenticated as athlete %d!\n", result.AthleteID)
	return nil
}

func runImport(db *store.DB, paths []string) error {
	if len(paths) == 0 {
		return errors.New("usage: ridelab import FILE.fit [FILE.fit...]")
	}

	result := service.NewImportService(db).ImportFiles(paths)

	for _, name := range result.Imported {
		fmt.Printf("  imported  %s\n", name)
	}
	for _, name := range result.Skipped {
		fmt.Printf("  skipped   %s (already imported)\n", name)
	}
	for _, err := range result.Errors {
		fmt.Printf("  failed    %v\n", err)
	}
	fmt.Printf("\n%d imported, %d skipped, %d failed\n", len(result.Imported), len(result.Skipped), len(result.Errors))

	if len(result.Imported) == 0 && len(result.Errors) > 0 {
		return errors.New("no files imported")
	}
	return nil
}
