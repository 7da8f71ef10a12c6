package auth

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"ridelab/internal/store"
)

func TestExtractAthleteID(t *testing.T) {
	tests := []struct {
		name  string
		extra map[string]any
		want  int64
	}{
		{"present", map[string]any{"athlete": map[string]any{"id": float64(12345)}}, 12345},
		{"missing", map[string]any{}, 0},
		{"wrong type", map[string]any{"athlete": "nope"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := (&oauth2.Token{AccessToken: "a"}).WithExtra(tt.extra)
			if got := ExtractAthleteID(tok); got != tt.want {
				t.Errorf("ExtractAthleteID() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRedirectURL(t *testing.T) {
	if got := (Config{}).RedirectURL(); got != "http://localhost:8089/callback" {
		t.Errorf("RedirectURL() = %q", got)
	}
	if got := (Config{CallbackPort: 9000}).RedirectURL(); got != "http://localhost:9000/callback" {
		t.Errorf("RedirectURL() = %q", got)
	}
}

func TestCallbackHandler(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		wantCode string
		wantErr  bool
	}{
		{"success", "state=s1&code=abc", "abc", false},
		{"bad state", "state=other&code=abc", "", true},
		{"denied", "state=s1&error=access_denied", "", true},
		{"no code", "state=s1", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codeChan := make(chan string, 1)
			errChan := make(chan error, 1)
			h := callbackHandler("s1", codeChan, errChan)

			rec := httptest.NewRecorder()
			h(rec, httptest.NewRequest(http.MethodGet, "/callback?"+tt.query, nil))

			if tt.wantErr {
				if rec.Code != http.StatusBadRequest {
					t.Errorf("status = %d, want 400", rec.Code)
				}
				select {
				case <-errChan:
				default:
					t.Error("expected an error on errChan")
				}
				return
			}
			select {
			case code := <-codeChan:
				if code != tt.wantCode {
					t.Errorf("code = %q, want %q", code, tt.wantCode)
				}
			default:
				t.Error("expected a code on codeChan")
			}
		})
	}
}

func TestTokenSource_ValidTokenNotRefreshed(t *testing.T) {
	tok := &oauth2.Token{AccessToken: "still-good", Expiry: time.Now().Add(time.Hour)}
	ts := NewTokenSource(&oauth2.Config{}, tok, func(*oauth2.Token) error {
		t.Error("onRefresh should not be called")
		return nil
	})

	got, err := ts.Token()
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	if got.AccessToken != "still-good" {
		t.Errorf("AccessToken = %q", got.AccessToken)
	}
	if ts.IsExpired() {
		t.Error("IsExpired() = true for a token valid for an hour")
	}
}

func TestTokenSource_RefreshesAndPersists(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if r.Form.Get("grant_type") != "refresh_token" || r.Form.Get("refresh_token") != "r1" {
			t.Errorf("unexpected refresh form %v", r.Form)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"a2","refresh_token":"r2","token_type":"Bearer","expires_in":21600}`)
	}))
	defer srv.Close()

	db, err := store.NewTestStore()
	if err != nil {
		t.Fatalf("NewTestStore() error = %v", err)
	}
	defer db.Close()

	// expiring inside the refresh buffer
	if err := db.SaveAuth(&store.Auth{AthleteID: 1, AccessToken: "a1", RefreshToken: "r1", ExpiresAt: time.Now().Add(30 * time.Second)}); err != nil {
		t.Fatal(err)
	}

	ts, err := NewStoreTokenSource(Config{ClientID: "id", ClientSecret: "secret"}, db)
	if err != nil {
		t.Fatalf("NewStoreTokenSource() error = %v", err)
	}
	ts.config.Endpoint.TokenURL = srv.URL

	got, err := ts.Token()
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	if got.AccessToken != "a2" {
		t.Errorf("AccessToken = %q, want a2", got.AccessToken)
	}

	stored, err := db.GetAuth()
	if err != nil {
		t.Fatal(err)
	}
	if stored.AccessToken != "a2" || stored.RefreshToken != "r2" {
		t.Errorf("stored tokens = %q/%q, want a2/r2", stored.AccessToken, stored.RefreshToken)
	}
}

func TestNewStoreTokenSource_NoAuth(t *testing.T) {
	db, err := store.NewTestStore()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	if _, err := NewStoreTokenSource(Config{}, db); !errors.Is(err, store.ErrNoAuth) {
		t.Errorf("error = %v, want store.ErrNoAuth", err)
	}
}
