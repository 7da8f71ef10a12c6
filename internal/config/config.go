package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"ridelab/internal/analysis"
)

// Config represents the application configuration
type Config struct {
	Strava  StravaConfig  `json:"strava" mapstructure:"strava"`
	Athlete AthleteConfig `json:"athlete" mapstructure:"athlete"`
	Engine  EngineConfig  `json:"engine" mapstructure:"engine"`
	Display DisplayConfig `json:"display" mapstructure:"display"`
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// StravaConfig holds Strava API credentials
type StravaConfig struct {
	ClientID     string `json:"client_id" mapstructure:"client_id"`
	ClientSecret string `json:"client_secret" mapstructure:"client_secret"`
}

// AthleteConfig holds athlete-specific settings. Zero means unknown.
type AthleteConfig struct {
	FTP         float64 `json:"ftp" mapstructure:"ftp"`                   // last known FTP
	ThresholdHR float64 `json:"threshold_hr" mapstructure:"threshold_hr"` // manual FTHR, skips estimation
	MaxHR       float64 `json:"max_hr" mapstructure:"max_hr"`
}

// EngineConfig exposes the estimation heuristics. Zero values keep the defaults.
type EngineConfig struct {
	HardEffortMinPower   float64 `json:"hard_effort_min_power" mapstructure:"hard_effort_min_power"`
	HardEffortMinSeconds int     `json:"hard_effort_min_seconds" mapstructure:"hard_effort_min_seconds"`
	HardEffortMaxSeconds int     `json:"hard_effort_max_seconds" mapstructure:"hard_effort_max_seconds"`
	HRIntensityFloor     float64 `json:"hr_intensity_floor" mapstructure:"hr_intensity_floor"`
	HRLookbackDays       int     `json:"hr_lookback_days" mapstructure:"hr_lookback_days"`
	CTLDays              int     `json:"ctl_days" mapstructure:"ctl_days"`
	ATLDays              int     `json:"atl_days" mapstructure:"atl_days"`
	CTLMode              string  `json:"ctl_mode" mapstructure:"ctl_mode"`
	GapDays              int     `json:"gap_days" mapstructure:"gap_days"`
	RecentGapDays        int     `json:"recent_gap_days" mapstructure:"recent_gap_days"`
	ConsistencyTSS       float64 `json:"consistency_weekly_tss" mapstructure:"consistency_weekly_tss"`
	FTPWindowDays        int     `json:"ftp_window_days" mapstructure:"ftp_window_days"`
	FTPShortWindowDays   int     `json:"ftp_short_window_days" mapstructure:"ftp_short_window_days"`
	DeclineFactor        float64 `json:"decline_factor" mapstructure:"decline_factor"`
	MaxDecline           float64 `json:"max_decline" mapstructure:"max_decline"`
	AssumedThresholdHR   float64 `json:"assumed_threshold_hr" mapstructure:"assumed_threshold_hr"`
}

// DisplayConfig holds display preferences
type DisplayConfig struct {
	DistanceUnit string `json:"distance_unit" mapstructure:"distance_unit"`
	ZoneModel    string `json:"zone_model" mapstructure:"zone_model"`
	TrendWeeks   int    `json:"trend_weeks" mapstructure:"trend_weeks"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `json:"level" mapstructure:"level"`
	File  string `json:"file" mapstructure:"file"` // empty means <config dir>/ridelab.log
}

// EnvPrefix prefixes environment overrides, e.g. RIDELAB_ATHLETE_FTP
const EnvPrefix = "RIDELAB"

// ErrNoConfig is returned when the config file doesn't exist
var ErrNoConfig = errors.New("config file not found")

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	t := analysis.DefaultThresholds()
	return Config{
		Athlete: AthleteConfig{
			MaxHR: 185,
		},
		Engine: EngineConfig{
			HardEffortMinPower:   t.HardEffortMinPower,
			HardEffortMinSeconds: t.HardEffortMinSeconds,
			HardEffortMaxSeconds: t.HardEffortMaxSeconds,
			HRIntensityFloor:     t.HRIntensityFloor,
			HRLookbackDays:       t.HRLookbackDays,
			CTLDays:              t.CTLDays,
			ATLDays:              t.ATLDays,
			CTLMode:              t.CTLMode.String(),
			GapDays:              t.GapDays,
			RecentGapDays:        t.RecentGapDays,
			ConsistencyTSS:       t.ConsistencyWeeklyTSS,
			FTPWindowDays:        t.FTPWindowDays,
			FTPShortWindowDays:   t.FTPShortWindowDays,
			DeclineFactor:        t.DeclineFactor,
			MaxDecline:           t.MaxDecline,
			AssumedThresholdHR:   t.AssumedThresholdHR,
		},
		Display: DisplayConfig{
			DistanceUnit: "km",
			ZoneModel:    string(analysis.Zones5),
			TrendWeeks:   12,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// setDefaults registers every key so env overrides work for keys missing from the file
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("strava.client_id", d.Strava.ClientID)
	v.SetDefault("strava.client_secret", d.Strava.ClientSecret)

	v.SetDefault("athlete.ftp", d.Athlete.FTP)
	v.SetDefault("athlete.threshold_hr", d.Athlete.ThresholdHR)
	v.SetDefault("athlete.max_hr", d.Athlete.MaxHR)

	v.SetDefault("engine.hard_effort_min_power", d.Engine.HardEffortMinPower)
	v.SetDefault("engine.hard_effort_min_seconds", d.Engine.HardEffortMinSeconds)
	v.SetDefault("engine.hard_effort_max_seconds", d.Engine.HardEffortMaxSeconds)
	v.SetDefault("engine.hr_intensity_floor", d.Engine.HRIntensityFloor)
	v.SetDefault("engine.hr_lookback_days", d.Engine.HRLookbackDays)
	v.SetDefault("engine.ctl_days", d.Engine.CTLDays)
	v.SetDefault("engine.atl_days", d.Engine.ATLDays)
	v.SetDefault("engine.ctl_mode", d.Engine.CTLMode)
	v.SetDefault("engine.gap_days", d.Engine.GapDays)
	v.SetDefault("engine.recent_gap_days", d.Engine.RecentGapDays)
	v.SetDefault("engine.consistency_weekly_tss", d.Engine.ConsistencyTSS)
	v.SetDefault("engine.ftp_window_days", d.Engine.FTPWindowDays)
	v.SetDefault("engine.ftp_short_window_days", d.Engine.FTPShortWindowDays)
	v.SetDefault("engine.decline_factor", d.Engine.DeclineFactor)
	v.SetDefault("engine.max_decline", d.Engine.MaxDecline)
	v.SetDefault("engine.assumed_threshold_hr", d.Engine.AssumedThresholdHR)

	v.SetDefault("display.distance_unit", d.Display.DistanceUnit)
	v.SetDefault("display.zone_model", d.Display.ZoneModel)
	v.SetDefault("display.trend_weeks", d.Display.TrendWeeks)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.file", d.Logging.File)
}

// Load reads the configuration from ~/.ridelab/config.json
func Load() (*Config, error) {
	path, err := getConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads a JSON config file, applying defaults and RIDELAB_* env overrides
func LoadFile(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoConfig
	} else if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &cfg, nil
}

// Save writes the configuration to ~/.ridelab/config.json
func Save(cfg *Config) error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}
	return SaveFile(cfg, path)
}

// SaveFile writes the configuration as indented JSON
func SaveFile(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// CreateExample creates an example config file if none exists
func CreateExample() error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		return nil // Config exists, don't overwrite
	}

	example := DefaultConfig()
	example.Strava = StravaConfig{
		ClientID:     "YOUR_CLIENT_ID",
		ClientSecret: "YOUR_CLIENT_SECRET",
	}
	return Save(&example)
}

// Validate checks the whole config, including Strava credentials
func (c *Config) Validate() error {
	if c.Strava.ClientID == "" || c.Strava.ClientID == "YOUR_CLIENT_ID" {
		return errors.New("strava.client_id is required - get it from https://www.strava.com/settings/api")
	}
	if c.Strava.ClientSecret == "" || c.Strava.ClientSecret == "YOUR_CLIENT_SECRET" {
		return errors.New("strava.client_secret is required - get it from https://www.strava.com/settings/api")
	}
	return c.ValidateLocal()
}

// ValidateLocal checks everything except Strava credentials.
// FIT import and reports work without a Strava app.
func (c *Config) ValidateLocal() error {
	if c.Display.DistanceUnit != "" && c.Display.DistanceUnit != "km" && c.Display.DistanceUnit != "mi" {
		return fmt.Errorf("display.distance_unit must be \"km\" or \"mi\", got %q", c.Display.DistanceUnit)
	}
	if c.Display.ZoneModel != "" {
		if _, err := analysis.ParseZoneModel(c.Display.ZoneModel); err != nil {
			return fmt.Errorf("display.zone_model: %w", err)
		}
	}
	if c.Display.TrendWeeks < 0 || c.Display.TrendWeeks > 52 {
		return fmt.Errorf("display.trend_weeks must be between 0 and 52, got %d", c.Display.TrendWeeks)
	}

	if c.Athlete.FTP < 0 {
		return fmt.Errorf("athlete.ftp must not be negative, got %v", c.Athlete.FTP)
	}
	// threshold_hr < max_hr when both are set
	if c.Athlete.ThresholdHR > 0 && c.Athlete.MaxHR > 0 && c.Athlete.ThresholdHR >= c.Athlete.MaxHR {
		return fmt.Errorf("athlete.threshold_hr (%v) must be less than athlete.max_hr (%v)", c.Athlete.ThresholdHR, c.Athlete.MaxHR)
	}

	e := c.Engine
	if e.HardEffortMinSeconds > 0 && e.HardEffortMaxSeconds > 0 && e.HardEffortMinSeconds > e.HardEffortMaxSeconds {
		return fmt.Errorf("engine.hard_effort_min_seconds (%d) must not exceed hard_effort_max_seconds (%d)", e.HardEffortMinSeconds, e.HardEffortMaxSeconds)
	}
	if e.HRIntensityFloor < 0 || e.HRIntensityFloor >= 1 {
		return fmt.Errorf("engine.hr_intensity_floor must be between 0 and 1, got %v", e.HRIntensityFloor)
	}
	if e.MaxDecline < 0 || e.MaxDecline >= 1 {
		return fmt.Errorf("engine.max_decline must be between 0 and 1, got %v", e.MaxDecline)
	}
	if e.FTPShortWindowDays > 0 && e.FTPWindowDays > 0 && e.FTPShortWindowDays > e.FTPWindowDays {
		return fmt.Errorf("engine.ftp_short_window_days (%d) must not exceed ftp_window_days (%d)", e.FTPShortWindowDays, e.FTPWindowDays)
	}
	if e.CTLMode != "" && e.CTLMode != "per_activity" && e.CTLMode != "per_day" {
		return fmt.Errorf("engine.ctl_mode must be \"per_activity\" or \"per_day\", got %q", e.CTLMode)
	}

	validLogLevels := map[string]bool{"": true, "debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	return nil
}

// Thresholds maps the engine section onto analysis thresholds
func (e EngineConfig) Thresholds() analysis.Thresholds {
	t := analysis.DefaultThresholds()

	setFloat := func(dst *float64, v float64) {
		if v > 0 {
			*dst = v
		}
	}
	setInt := func(dst *int, v int) {
		if v > 0 {
			*dst = v
		}
	}

	setFloat(&t.HardEffortMinPower, e.HardEffortMinPower)
	setInt(&t.HardEffortMinSeconds, e.HardEffortMinSeconds)
	setInt(&t.HardEffortMaxSeconds, e.HardEffortMaxSeconds)
	setFloat(&t.HRIntensityFloor, e.HRIntensityFloor)
	setInt(&t.HRLookbackDays, e.HRLookbackDays)
	setInt(&t.CTLDays, e.CTLDays)
	setInt(&t.ATLDays, e.ATLDays)
	setInt(&t.GapDays, e.GapDays)
	setInt(&t.RecentGapDays, e.RecentGapDays)
	setFloat(&t.ConsistencyWeeklyTSS, e.ConsistencyTSS)
	setInt(&t.FTPWindowDays, e.FTPWindowDays)
	setInt(&t.FTPShortWindowDays, e.FTPShortWindowDays)
	setFloat(&t.DeclineFactor, e.DeclineFactor)
	setFloat(&t.MaxDecline, e.MaxDecline)
	setFloat(&t.AssumedThresholdHR, e.AssumedThresholdHR)
	if e.CTLMode != "" {
		t.CTLMode = analysis.ParseCTLMode(e.CTLMode)
	}
	return t
}

// Zones returns the configured zone model, defaulting to 5 zones
func (d DisplayConfig) Zones() analysis.ZoneModel {
	m, err := analysis.ParseZoneModel(d.ZoneModel)
	if err != nil {
		return analysis.Zones5
	}
	return m
}

// LogPath returns the log file location
func (c *Config) LogPath() (string, error) {
	if c.Logging.File != "" {
		return c.Logging.File, nil
	}
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "ridelab.log"), nil
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// GetConfigDir returns the path to the config directory
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".ridelab"), nil
}
