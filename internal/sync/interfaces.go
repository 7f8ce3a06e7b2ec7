package sync

import (
	"context"
	"time"

	"github.com/google/go-github/v57/github"

	"github.com/JohanCodinha/ghsync/internal/model"
)

//go:generate go tool mockgen -source=interfaces.go -destination=mocks/interfaces.gen.go -package=mocks

// Tracker is the remote side of a sync. *gh.Client implements it.
type Tracker interface {
	Owner() string
	Repo() string
	ListIssues(ctx context.Context) ([]*github.Issue, error)
	ListComments(ctx context.Context, number int) ([]*github.IssueComment, error)
	CreateIssue(ctx context.Context, req *github.IssueRequest) (*github.Issue, error)
	UpdateIssue(ctx context.Context, number int, req *github.IssueRequest) (*github.Issue, error)
}

// Store is the local side of a sync. *store.DB implements it.
type Store interface {
	FindByRemoteNumber(ctx context.Context, projectID string, number int) (*model.Issue, error)
	ListByProject(ctx context.Context, projectID string) ([]model.Issue, error)
	UpsertIssue(ctx context.Context, issue model.Issue) (*model.Issue, error)
	ReplaceLabels(ctx context.Context, issueID string, labels []model.Label) error
	UpsertComment(ctx context.Context, issueID string, c model.Comment) (*model.Comment, error)
	ListComments(ctx context.Context, issueID string) ([]model.Comment, error)
	MarkSynced(ctx context.Context, issueID string, link model.RemoteLink, at time.Time) error
	MarkSyncFailed(ctx context.Context, issueID string, message string) error
}
