//go:build integration

// Package integration runs full sync cycles against the SQLite store and the
// mock GitHub server.
// Run with: go test -tags=integration ./internal/integration/...
package integration

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/google/go-github/v57/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JohanCodinha/ghsync/internal/gh"
	"github.com/JohanCodinha/ghsync/internal/model"
	"github.com/JohanCodinha/ghsync/internal/store"
	"github.com/JohanCodinha/ghsync/internal/sync"
)

const project = "e2e"

func setup(t *testing.T) (*store.DB, *gh.MockServer, *sync.Runner) {
	t.Helper()
	ctx := context.Background()

	db, err := store.Open(filepath.Join(t.TempDir(), "e2e.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	remote := gh.NewMockServer("acme", "app")
	t.Cleanup(remote.Close)
	remote.RequireToken("e2e-token")

	_, err = db.SaveRepository(ctx, model.Repository{
		ProjectID: project, Owner: "acme", Name: "app", Token: "e2e-token", Active: true,
	})
	require.NoError(t, err)

	runner := sync.NewRunner(db, db, func(repo model.Repository) (sync.Tracker, error) {
		return gh.NewWithBaseURL(repo.Token, remote.URL, repo.Owner, repo.Name)
	})
	return db, remote, runner
}

// TestE2E_PaginatedPullPushPull seeds more issues than one page, pulls them,
// edits locally, pushes, and pulls again.
func TestE2E_PaginatedPullPushPull(t *testing.T) {
	ctx := context.Background()
	db, remote, runner := setup(t)
	remote.SetIssuesPerPage(10)

	for i := 1; i <= 25; i++ {
		state := "open"
		if i%5 == 0 {
			state = "closed"
		}
		remote.AddIssue(&github.Issue{
			Number: github.Int(i),
			Title:  github.String(fmt.Sprintf("Issue %d", i)),
			Body:   github.String("seeded"),
			State:  github.String(state),
			Labels: []*github.Label{{Name: github.String("triage"), Color: github.String("FBCA04")}},
		})
	}
	remote.AddComment(3, &github.IssueComment{Body: github.String("needs repro")})

	result, err := runner.Sync(ctx, project, sync.Options{Direction: sync.Pull, SyncLabels: true, SyncComments: true})
	require.NoError(t, err)
	require.True(t, result.Success, "errors: %+v", result.Errors)
	assert.Equal(t, 25, result.Created)

	counts, err := db.CountBySyncStatus(ctx, project)
	require.NoError(t, err)
	assert.Equal(t, 25, counts[model.SyncSynced])

	third, err := db.FindByRemoteNumber(ctx, project, 3)
	require.NoError(t, err)
	comments, err := db.ListComments(ctx, third.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)

	closed := model.StatusClosed
	require.NoError(t, db.UpdateLocal(ctx, third.ID, store.IssueUpdate{Status: &closed}))
	_, err = db.UpsertIssue(ctx, model.Issue{ProjectID: project, Title: "Written offline", SyncStatus: model.SyncPending})
	require.NoError(t, err)

	// Push first: a bidirectional run would pull #3 back to open before pushing.
	before := remote.Mutations()
	result, err = runner.Sync(ctx, project, sync.Options{Direction: sync.Push})
	require.NoError(t, err)
	require.True(t, result.Success, "errors: %+v", result.Errors)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 25, result.Updated)
	assert.Zero(t, result.Skipped)
	assert.Equal(t, 26, remote.Mutations()-before)

	assert.Equal(t, "closed", remote.GetIssue(3).GetState())
	assert.Equal(t, "Written offline", remote.GetIssue(26).GetTitle())

	result, err = runner.Sync(ctx, project, sync.DefaultOptions())
	require.NoError(t, err)
	require.True(t, result.Success, "errors: %+v", result.Errors)
	assert.Equal(t, 52, result.Updated)
	assert.Zero(t, result.Created)
	assert.Zero(t, result.Skipped)

	reclosed, err := db.FindByRemoteNumber(ctx, project, 3)
	require.NoError(t, err)
	assert.Equal(t, model.StatusClosed, reclosed.Status)
	assert.Equal(t, third.ID, reclosed.ID)

	all, err := db.ListByProject(ctx, project)
	require.NoError(t, err)
	assert.Len(t, all, 26)
	for _, issue := range all {
		assert.Equal(t, model.SyncSynced, issue.SyncStatus, "issue %s", issue.ID)
		assert.True(t, issue.HasRemote())
	}

	last, err := db.LastSyncAt(ctx, project)
	require.NoError(t, err)
	assert.NotNil(t, last)
	repo, err := db.GetRepository(ctx, project)
	require.NoError(t, err)
	assert.NotNil(t, repo.LastSyncAt)
}

// TestE2E_RateLimitedPushRecovers checks that a rate-limited push leaves a
// durable failure that the next run clears.
func TestE2E_RateLimitedPushRecovers(t *testing.T) {
	ctx := context.Background()
	db, remote, runner := setup(t)

	saved, err := db.UpsertIssue(ctx, model.Issue{ProjectID: project, Title: "Queued"})
	require.NoError(t, err)

	remote.FailCreates("Queued", 429, "API rate limit exceeded")
	result, err := runner.Sync(ctx, project, sync.Options{Direction: sync.Push})
	require.NoError(t, err)
	require.Len(t, result.Errors, 1)

	failed, err := db.GetIssue(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SyncFailed, failed.SyncStatus)
	require.NotNil(t, failed.SyncError)
	assert.Contains(t, *failed.SyncError, "rate limit")

	repo, err := db.GetRepository(ctx, project)
	require.NoError(t, err)
	assert.Nil(t, repo.LastSyncAt, "failed run must not stamp the binding")

	remote.Reset()
	result, err = runner.Sync(ctx, project, sync.Options{Direction: sync.Push})
	require.NoError(t, err)
	assert.True(t, result.Success)

	recovered, err := db.GetIssue(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SyncSynced, recovered.SyncStatus)
	assert.Nil(t, recovered.SyncError)
}
