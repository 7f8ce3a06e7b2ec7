// Package sync reconciles the local issue store with a remote tracker.
//
// Items are processed sequentially in fetch order. Each item commits on its
// own: a failure is recorded in the Result and the run moves on, nothing is
// rolled back. A run has no cancellation point of its own; ctx is handed to
// every store and tracker call, so cancelling it fails the remaining items.
package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/google/go-github/v57/github"

	"github.com/JohanCodinha/ghsync/internal/logger"
	"github.com/JohanCodinha/ghsync/internal/model"
	"github.com/JohanCodinha/ghsync/internal/translate"
)

// Engine runs sync for one project against one tracker.
type Engine struct {
	store     Store
	tracker   Tracker
	resolver  *Resolver
	projectID string
	now       func() time.Time
}

// New creates an engine for projectID.
func New(store Store, tracker Tracker, projectID string) *Engine {
	return &Engine{
		store:     store,
		tracker:   tracker,
		resolver:  NewResolver(store, projectID),
		projectID: projectID,
		now:       time.Now,
	}
}

// Run executes the direction selected in opts. The error is non-nil only for
// fatal setup failures, in which case the result is nil.
func (e *Engine) Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.SyncMilestones {
		logger.Info("sync: milestone sync is not implemented, ignoring")
	}

	switch opts.Direction {
	case Pull:
		return e.Pull(ctx, opts)
	case Push:
		return e.Push(ctx, opts)
	case Bidirectional:
		return e.Bidirectional(ctx, opts)
	default:
		return nil, fmt.Errorf("unknown sync direction %q", opts.Direction)
	}
}

// Bidirectional runs Pull to completion and then Push, merging both results.
func (e *Engine) Bidirectional(ctx context.Context, opts Options) (*Result, error) {
	result, err := e.Pull(ctx, opts)
	if err != nil {
		return nil, err
	}
	pushed, err := e.Push(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.merge(pushed)
	return result, nil
}

// Pull copies every remote issue into the local store.
func (e *Engine) Pull(ctx context.Context, opts Options) (*Result, error) {
	logger.Debug("sync: pulling %s/%s into project %s", e.tracker.Owner(), e.tracker.Repo(), e.projectID)

	remote, err := e.tracker.ListIssues(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list remote issues: %w", err)
	}

	result := newResult()
	for _, issue := range remote {
		if opts.DryRun {
			result.Skipped++
			continue
		}

		localID, created, err := e.pullIssue(ctx, issue, opts)
		if err != nil {
			logger.Warn("sync: pull of #%d failed: %v", issue.GetNumber(), err)
			result.recordError(err, localID, issue.Number)
			continue
		}
		result.recordSuccess(created)
	}

	logger.Info("sync: pull finished: %d synced (%d created, %d updated), %d skipped, %d errors",
		result.Synced, result.Created, result.Updated, result.Skipped, len(result.Errors))
	return result, nil
}

// pullIssue translates the remote issue and its labels before writing
// anything, so a translation failure leaves the store untouched.
func (e *Engine) pullIssue(ctx context.Context, remote *github.Issue, opts Options) (string, bool, error) {
	link, err := translate.RemoteLinkOf(remote)
	if err != nil {
		return "", false, err
	}

	existing, err := e.resolver.Local(ctx, link.Number)
	if err != nil {
		return "", false, err
	}

	base := model.Issue{ProjectID: e.projectID}
	localID := ""
	if existing != nil {
		base = *existing
		localID = existing.ID
	}
	base.RepositoryOwner = e.tracker.Owner()
	base.RepositoryName = e.tracker.Repo()

	local, err := translate.ToLocal(base, remote, e.now())
	if err != nil {
		return localID, false, err
	}

	var labels []model.Label
	if opts.SyncLabels {
		if labels, err = translate.Labels(remote.Labels); err != nil {
			return localID, false, err
		}
	}

	saved, err := e.store.UpsertIssue(ctx, local)
	if err != nil {
		return localID, false, err
	}

	if opts.SyncLabels {
		if err := e.store.ReplaceLabels(ctx, saved.ID, labels); err != nil {
			return saved.ID, false, err
		}
	}

	if opts.SyncComments {
		if err := e.pullComments(ctx, saved.ID, link.Number); err != nil {
			return saved.ID, false, err
		}
	}

	logger.Debug("sync: pulled #%d into %s (created=%v)", link.Number, saved.ID, existing == nil)
	return saved.ID, existing == nil, nil
}

// pullComments upserts remote comments by remote id. Local comments are
// never deleted, even when the remote one is gone.
func (e *Engine) pullComments(ctx context.Context, issueID string, number int) error {
	comments, err := e.tracker.ListComments(ctx, number)
	if err != nil {
		return err
	}

	for _, rc := range comments {
		c, err := translate.Comment(rc)
		if err != nil {
			return err
		}
		if _, err := e.store.UpsertComment(ctx, issueID, c); err != nil {
			return err
		}
	}
	return nil
}

// Push sends every local issue to the remote: linked issues are patched,
// unlinked ones are created. Local state wins over remote edits.
func (e *Engine) Push(ctx context.Context, opts Options) (*Result, error) {
	logger.Debug("sync: pushing project %s to %s/%s", e.projectID, e.tracker.Owner(), e.tracker.Repo())

	issues, err := e.store.ListByProject(ctx, e.projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list local issues: %w", err)
	}

	result := newResult()
	for _, issue := range issues {
		if opts.DryRun {
			result.Skipped++
			continue
		}

		created, number, err := e.pushIssue(ctx, issue)
		if err != nil {
			logger.Warn("sync: push of %s failed: %v", issue.ID, err)
			if markErr := e.store.MarkSyncFailed(ctx, issue.ID, err.Error()); markErr != nil {
				logger.Error("sync: failed to record push failure on %s: %v", issue.ID, markErr)
			}
			result.recordError(err, issue.ID, number)
			continue
		}
		result.recordSuccess(created)

		if opts.SyncComments {
			e.reportLocalComments(ctx, issue.ID)
		}
	}

	logger.Info("sync: push finished: %d synced (%d created, %d updated), %d skipped, %d errors",
		result.Synced, result.Created, result.Updated, result.Skipped, len(result.Errors))
	return result, nil
}

// pushIssue creates or patches the remote issue and writes the correlation
// back. Only bookkeeping columns are written locally. The returned number is
// the remote issue the local one is linked to, even on error.
func (e *Engine) pushIssue(ctx context.Context, issue model.Issue) (bool, *int, error) {
	if !e.resolver.NeedsCreation(issue) {
		number := issue.RemoteNumber
		req, err := translate.UpdateRequest(issue)
		if err != nil {
			return false, number, err
		}
		remote, err := e.tracker.UpdateIssue(ctx, *number, req)
		if err != nil {
			return false, number, err
		}
		link, err := translate.RemoteLinkOf(remote)
		if err != nil {
			return false, number, err
		}
		if err := e.store.MarkSynced(ctx, issue.ID, link, e.now()); err != nil {
			return false, number, err
		}
		logger.Debug("sync: pushed %s to #%d", issue.ID, link.Number)
		return false, number, nil
	}

	req, err := translate.CreateRequest(issue)
	if err != nil {
		return true, nil, err
	}
	remote, err := e.tracker.CreateIssue(ctx, req)
	if err != nil {
		return true, nil, err
	}
	link, err := translate.RemoteLinkOf(remote)
	if err != nil {
		return true, nil, err
	}
	number := &link.Number
	if err := e.store.MarkSynced(ctx, issue.ID, link, e.now()); err != nil {
		return true, number, err
	}
	logger.Debug("sync: created #%d from %s", link.Number, issue.ID)

	// GitHub opens every new issue. The link is already stored, so a failed
	// close is retried as a patch on the next push.
	if issue.Status == model.StatusClosed {
		closeReq := &github.IssueRequest{State: github.String("closed")}
		if _, err := e.tracker.UpdateIssue(ctx, link.Number, closeReq); err != nil {
			return true, number, fmt.Errorf("created #%d but failed to close it: %w", link.Number, err)
		}
	}
	return true, number, nil
}

func (e *Engine) reportLocalComments(ctx context.Context, issueID string) {
	comments, err := e.store.ListComments(ctx, issueID)
	if err != nil {
		logger.Debug("sync: could not list comments of %s: %v", issueID, err)
		return
	}
	local := 0
	for _, c := range comments {
		if c.RemoteID == nil {
			local++
		}
	}
	if local > 0 {
		logger.Debug("sync: %d local-only comments on %s were not pushed", local, issueID)
	}
}
