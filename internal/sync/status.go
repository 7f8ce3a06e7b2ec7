package sync

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/JohanCodinha/ghsync/internal/gh"
	"github.com/JohanCodinha/ghsync/internal/model"
)

// StatsStore is the read side used by Reporter.
type StatsStore interface {
	CountBySyncStatus(ctx context.Context, projectID string) (map[model.SyncStatus]int, error)
	LastSyncAt(ctx context.Context, projectID string) (*time.Time, error)
}

// RateLimiter reports the remote API quota. *gh.Client implements it.
type RateLimiter interface {
	RateLimit(ctx context.Context) (*gh.RateLimit, error)
}

// Status summarises the sync health of a project.
type Status struct {
	ProjectID  string                   `json:"projectId"`
	LastSyncAt *time.Time               `json:"lastSyncAt"`
	Counts     map[model.SyncStatus]int `json:"counts"`
	Total      int                      `json:"total"`

	RateLimit      *gh.RateLimit `json:"rateLimit,omitempty"`
	RateLimitError string        `json:"rateLimitError,omitempty"`
}

// Reporter aggregates Status. It never writes.
type Reporter struct {
	store  StatsStore
	limits RateLimiter
}

// NewReporter creates a reporter. limits may be nil.
func NewReporter(store StatsStore, limits RateLimiter) *Reporter {
	return &Reporter{store: store, limits: limits}
}

// Status queries counts and the last sync time concurrently. Store errors are
// returned unchanged; a rate limit failure is only recorded on the Status.
func (r *Reporter) Status(ctx context.Context, projectID string) (*Status, error) {
	status := &Status{ProjectID: projectID}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		counts, err := r.store.CountBySyncStatus(gctx, projectID)
		if err != nil {
			return err
		}
		status.Counts = make(map[model.SyncStatus]int, len(model.AllSyncStatuses))
		for _, s := range model.AllSyncStatuses {
			status.Counts[s] = counts[s]
			status.Total += counts[s]
		}
		return nil
	})
	g.Go(func() error {
		last, err := r.store.LastSyncAt(gctx, projectID)
		if err != nil {
			return err
		}
		status.LastSyncAt = last
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if r.limits != nil {
		rl, err := r.limits.RateLimit(ctx)
		if err != nil {
			status.RateLimitError = err.Error()
		} else {
			status.RateLimit = rl
		}
	}
	return status, nil
}
