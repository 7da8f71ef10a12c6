package service

import (
	"context"
	"fmt"
	"time"

	"ridelab/internal/logger"
	"ridelab/internal/store"
	"ridelab/internal/strava"
)

// ActivityFetcher is the part of the Strava client sync depends on
type ActivityFetcher interface {
	GetActivities(ctx context.Context, after time.Time, page, perPage int) ([]strava.Activity, error)
	RateLimitStatus() (shortRemaining, dailyRemaining int)
}

// SyncService orchestrates syncing data from Strava
type SyncService struct {
	client ActivityFetcher
	store  *store.DB
}

// NewSyncService creates a new sync service
func NewSyncService(client ActivityFetcher, store *store.DB) *SyncService {
	return &SyncService{
		client: client,
		store:  store,
	}
}

// SyncProgress reports progress during sync
type SyncProgress struct {
	Phase     string // "activities"
	Page      int
	Fetched   int
	Stored    int
	LastStart time.Time
}

// SyncResult contains the results of a sync operation
type SyncResult struct {
	ActivitiesFetched int
	ActivitiesStored  int
	PowerActivities   int
	HRActivities      int
	Errors            []error
}

// SyncAll pulls every activity started after the last sync.
// Progress updates are sent on progress (if non-nil), which is closed on return.
func (s *SyncService) SyncAll(ctx context.Context, progress chan<- SyncProgress) (*SyncResult, error) {
	if progress != nil {
		defer close(progress)
	}

	result := &SyncResult{}
	if err := s.syncActivities(ctx, progress, result); err != nil {
		return result, fmt.Errorf("syncing activities: %w", err)
	}
	return result, nil
}

// syncActivities fetches activity summaries page by page and stores them.
// The sync marker only moves forward to the newest stored start time, so an
// interrupted sync resumes where it stopped.
func (s *SyncService) syncActivities(ctx context.Context, progress chan<- SyncProgress, result *SyncResult) error {
	after, err := s.store.GetSyncTime(SyncKeyActivities)
	if err != nil {
		logger.Warn("sync: ignoring unreadable sync marker: %v", err)
		after = time.Time{}
	}
	logger.Info("sync: fetching activities after %s", formatMarker(after))

	newest := after
	page := 1
	for {
		select {
		case <-ctx.Done():
			s.saveMarker(newest, after)
			return ctx.Err()
		default:
		}

		activities, err := s.client.GetActivities(ctx, after, page, StravaPageSize)
		if err != nil {
			s.saveMarker(newest, after)
			return fmt.Errorf("fetching page %d: %w", page, err)
		}
		if len(activities) == 0 {
			break
		}

		result.ActivitiesFetched += len(activities)

		for _, a := range activities {
			if err := s.store.UpsertActivity(FromStrava(a)); err != nil {
				logger.Error("sync: storing activity %d: %v", a.ID, err)
				result.Errors = append(result.Errors, fmt.Errorf("storing activity %d: %w", a.ID, err))
				continue
			}
			result.ActivitiesStored++
			if a.HasPower() {
				result.PowerActivities++
			}
			if a.HasHeartrate {
				result.HRActivities++
			}
			if a.StartDate.After(newest) {
				newest = a.StartDate
			}
		}

		if progress != nil {
			progress <- SyncProgress{
				Phase:     "activities",
				Page:      page,
				Fetched:   result.ActivitiesFetched,
				Stored:    result.ActivitiesStored,
				LastStart: newest,
			}
		}

		if len(activities) < StravaPageSize {
			break
		}
		page++
	}

	s.saveMarker(newest, after)
	short, daily := s.client.RateLimitStatus()
	logger.Info("sync: stored %d of %d activities (rate limit remaining %d/15min, %d/day)",
		result.ActivitiesStored, result.ActivitiesFetched, short, daily)
	return nil
}

func (s *SyncService) saveMarker(newest, previous time.Time) {
	if !newest.After(previous) {
		return
	}
	if err := s.store.SetSyncTime(SyncKeyActivities, newest); err != nil {
		logger.Error("sync: saving sync marker: %v", err)
	}
}

// LastSync returns the start time of the newest synced activity
func (s *SyncService) LastSync() (time.Time, error) {
	return s.store.GetSyncTime(SyncKeyActivities)
}

// RateLimitStatus returns the current rate limit status from the client
func (s *SyncService) RateLimitStatus() (shortRemaining, dailyRemaining int) {
	return s.client.RateLimitStatus()
}

func formatMarker(t time.Time) string {
	if t.IsZero() {
		return "the beginning"
	}
	return t.UTC().Format(time.RFC3339)
}
