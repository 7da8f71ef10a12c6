package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrIncompleteAuth is returned when tokens are missing from an auth record
var ErrIncompleteAuth = errors.New("incomplete authentication")

const authColumns = `athlete_id, access_token, refresh_token, expires_at`

// GetAuth returns the stored Strava tokens, ErrNoAuth if there are none
func (db *DB) GetAuth() (*Auth, error) {
	auth, err := scanAuth(db.QueryRow(`SELECT ` + authColumns + ` FROM auth WHERE id = 1`))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoAuth
	}
	return auth, err
}

func scanAuth(s rowScanner) (*Auth, error) {
	var auth Auth
	var expiresAt int64
	if err := s.Scan(&auth.AthleteID, &auth.AccessToken, &auth.RefreshToken, &expiresAt); err != nil {
		return nil, err
	}
	auth.ExpiresAt = time.Unix(expiresAt, 0).UTC()
	return &auth, nil
}

// SaveAuth replaces the stored tokens after a fresh OAuth flow.
// Both tokens are required.
func (db *DB) SaveAuth(auth *Auth) error {
	if auth.AccessToken == "" || auth.RefreshToken == "" {
		return fmt.Errorf("%w: athlete %d", ErrIncompleteAuth, auth.AthleteID)
	}
	_, err := db.Exec(`
		INSERT INTO auth (id, `+authColumns+`, updated_at)
		VALUES (1, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			athlete_id = excluded.athlete_id,
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			expires_at = excluded.expires_at,
			updated_at = CURRENT_TIMESTAMP
	`, auth.AthleteID, auth.AccessToken, auth.RefreshToken, auth.ExpiresAt.Unix())
	return err
}

// UpdateTokens stores a refreshed token pair for the authenticated athlete.
// An empty refreshToken keeps the stored one, since Strava may omit it.
func (db *DB) UpdateTokens(accessToken, refreshToken string, expiresAt time.Time) error {
	if accessToken == "" {
		return fmt.Errorf("%w: empty access token", ErrIncompleteAuth)
	}
	result, err := db.Exec(`
		UPDATE auth
		SET access_token = ?,
			refresh_token = COALESCE(NULLIF(?, ''), refresh_token),
			expires_at = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = 1
	`, accessToken, refreshToken, expiresAt.Unix())
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNoAuth
	}
	return nil
}

// ClearAuth removes stored tokens so the next start runs the OAuth flow
func (db *DB) ClearAuth() error {
	_, err := db.Exec(`DELETE FROM auth WHERE id = 1`)
	return err
}
