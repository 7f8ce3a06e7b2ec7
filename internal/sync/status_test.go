package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JohanCodinha/ghsync/internal/gh"
	"github.com/JohanCodinha/ghsync/internal/model"
)

type fakeStats struct {
	counts   map[model.SyncStatus]int
	last     *time.Time
	countErr error
	lastErr  error
}

func (f fakeStats) CountBySyncStatus(context.Context, string) (map[model.SyncStatus]int, error) {
	return f.counts, f.countErr
}

func (f fakeStats) LastSyncAt(context.Context, string) (*time.Time, error) {
	return f.last, f.lastErr
}

type fakeLimits struct {
	rl  *gh.RateLimit
	err error
}

func (f fakeLimits) RateLimit(context.Context) (*gh.RateLimit, error) { return f.rl, f.err }

func TestReporter_FillsEveryStatus(t *testing.T) {
	last := time.Date(2026, 2, 2, 8, 0, 0, 0, time.UTC)
	r := NewReporter(fakeStats{
		counts: map[model.SyncStatus]int{model.SyncSynced: 4, model.SyncFailed: 1},
		last:   &last,
	}, nil)

	status, err := r.Status(context.Background(), testProject)
	require.NoError(t, err)
	assert.Equal(t, testProject, status.ProjectID)
	assert.Equal(t, 4, status.Counts[model.SyncSynced])
	assert.Equal(t, 0, status.Counts[model.SyncPending])
	assert.Contains(t, status.Counts, model.SyncPending)
	assert.Equal(t, 1, status.Counts[model.SyncFailed])
	assert.Equal(t, 5, status.Total)
	assert.Equal(t, &last, status.LastSyncAt)
	assert.Nil(t, status.RateLimit)
}

func TestReporter_PropagatesStoreErrorUnchanged(t *testing.T) {
	boom := errors.New("database is locked")

	tests := []struct {
		name  string
		stats fakeStats
	}{
		{name: "counts", stats: fakeStats{countErr: boom}},
		{name: "last sync", stats: fakeStats{counts: map[model.SyncStatus]int{}, lastErr: boom}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, err := NewReporter(tt.stats, nil).Status(context.Background(), testProject)
			assert.Same(t, boom, err)
			assert.Nil(t, status)
		})
	}
}

func TestReporter_RateLimitFailureIsNotFatal(t *testing.T) {
	r := NewReporter(fakeStats{counts: map[model.SyncStatus]int{}}, fakeLimits{err: gh.ErrUnauthorized})

	status, err := r.Status(context.Background(), testProject)
	require.NoError(t, err)
	assert.Nil(t, status.RateLimit)
	assert.Equal(t, gh.ErrUnauthorized.Error(), status.RateLimitError)
}

func TestReporter_AgainstStoreAndServer(t *testing.T) {
	h := newHarness(t)
	h.remote.AddIssue(remoteIssue(1, "one", "open"))
	h.remote.AddIssue(remoteIssue(2, "two", "open"))
	h.createLocal(t, model.Issue{Title: "draft"})
	h.remote.SetRateLimit(gh.RateLimit{Limit: 5000, Remaining: 4321, Reset: time.Now().Add(time.Hour)})

	h.run(t, Options{Direction: Pull})

	status, err := NewReporter(h.db, h.remote.Client("test-token")).Status(context.Background(), testProject)
	require.NoError(t, err)
	assert.Equal(t, 2, status.Counts[model.SyncSynced])
	assert.Equal(t, 1, status.Counts[model.SyncPending])
	assert.Equal(t, 3, status.Total)
	require.NotNil(t, status.LastSyncAt)
	require.NotNil(t, status.RateLimit)
	assert.Equal(t, 4321, status.RateLimit.Remaining)
}
