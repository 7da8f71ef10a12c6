package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const activityColumns = `id, athlete_id, source, import_key, name, type, start_date,
	moving_time, elapsed_time, distance, total_elevation_gain,
	average_watts, max_watts, weighted_average_watts,
	average_heartrate, max_heartrate, has_heartrate, has_power`

// UpsertActivity inserts or updates an activity
func (db *DB) UpsertActivity(a *Activity) error {
	source := a.Source
	if source == "" {
		source = SourceStrava
	}

	_, err := db.Exec(`
		INSERT INTO activities (`+activityColumns+`, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			athlete_id = excluded.athlete_id,
			source = excluded.source,
			import_key = excluded.import_key,
			name = excluded.name,
			type = excluded.type,
			start_date = excluded.start_date,
			moving_time = excluded.moving_time,
			elapsed_time = excluded.elapsed_time,
			distance = excluded.distance,
			total_elevation_gain = excluded.total_elevation_gain,
			average_watts = excluded.average_watts,
			max_watts = excluded.max_watts,
			weighted_average_watts = excluded.weighted_average_watts,
			average_heartrate = excluded.average_heartrate,
			max_heartrate = excluded.max_heartrate,
			has_heartrate = excluded.has_heartrate,
			has_power = excluded.has_power,
			updated_at = CURRENT_TIMESTAMP
	`,
		a.ID, a.AthleteID, source, nullString(a.ImportKey), a.Name, a.Type,
		a.StartDate.UTC().Format(time.RFC3339),
		a.MovingTime, a.ElapsedTime, a.Distance, a.TotalElevationGain,
		a.AverageWatts, a.MaxWatts, a.WeightedAverageWatts,
		a.AverageHeartrate, a.MaxHeartrate,
		boolToInt(a.HasHeartrate), boolToInt(a.HasPower),
	)
	return err
}

// GetActivity retrieves an activity by ID
func (db *DB) GetActivity(id int64) (*Activity, error) {
	row := db.QueryRow(`SELECT `+activityColumns+` FROM activities WHERE id = ?`, id)
	return scanActivity(row)
}

// ListActivities returns activities ordered by start date descending
func (db *DB) ListActivities(limit, offset int) ([]Activity, error) {
	rows, err := db.Query(`
		SELECT `+activityColumns+`
		FROM activities
		ORDER BY start_date DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanActivities(rows)
}

// ListActivitiesSince returns every activity starting at or after since,
// oldest first
func (db *DB) ListActivitiesSince(since time.Time) ([]Activity, error) {
	rows, err := db.Query(`
		SELECT `+activityColumns+`
		FROM activities
		WHERE start_date >= ?
		ORDER BY start_date ASC
	`, since.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanActivities(rows)
}

// CountActivities returns the total number of activities
func (db *DB) CountActivities() (int, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM activities").Scan(&count)
	return count, err
}

// HasImportKey reports whether an imported file with this key is already stored
func (db *DB) HasImportKey(key string) (bool, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM activities WHERE import_key = ?`, key).Scan(&n)
	return n > 0, err
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanInto(s rowScanner) (*Activity, error) {
	var a Activity
	var startDate string
	var importKey sql.NullString
	var elevation sql.NullFloat64
	var hasHR, hasPower int

	err := s.Scan(
		&a.ID, &a.AthleteID, &a.Source, &importKey, &a.Name, &a.Type, &startDate,
		&a.MovingTime, &a.ElapsedTime, &a.Distance, &elevation,
		&a.AverageWatts, &a.MaxWatts, &a.WeightedAverageWatts,
		&a.AverageHeartrate, &a.MaxHeartrate, &hasHR, &hasPower,
	)
	if err != nil {
		return nil, err
	}

	a.StartDate, err = time.Parse(time.RFC3339, startDate)
	if err != nil {
		return nil, fmt.Errorf("parsing start_date %q: %w", startDate, err)
	}
	a.ImportKey = importKey.String
	a.TotalElevationGain = elevation.Float64
	a.HasHeartrate = hasHR == 1
	a.HasPower = hasPower == 1

	return &a, nil
}

// scanActivity scans a single activity from a row
func scanActivity(row *sql.Row) (*Activity, error) {
	a, err := scanInto(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrActivityNotFound
	}
	return a, err
}

// scanActivities scans multiple activities from rows
func scanActivities(rows *sql.Rows) ([]Activity, error) {
	var activities []Activity
	for rows.Next() {
		a, err := scanInto(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, *a)
	}
	return activities, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
