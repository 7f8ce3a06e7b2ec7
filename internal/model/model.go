// Package model defines the local issue records that are synchronized with a remote tracker.
package model

import (
	"fmt"
	"strings"
	"time"
)

// IssueStatus is the local lifecycle status mirrored from the remote open/closed state.
type IssueStatus string

const (
	StatusOpen   IssueStatus = "OPEN"
	StatusClosed IssueStatus = "CLOSED"
)

// SyncStatus records how a local issue relates to its remote counterpart.
type SyncStatus string

const (
	// SyncSynced means the issue agrees with the remote as of LastSyncAt.
	SyncSynced SyncStatus = "SYNCED"
	// SyncPending means the issue has local changes that have not been pushed.
	SyncPending SyncStatus = "SYNC_PENDING"
	// SyncFailed means the last push failed; SyncError holds the reason.
	SyncFailed SyncStatus = "SYNC_FAILED"
)

// AllSyncStatuses lists every sync status in reporting order.
var AllSyncStatuses = []SyncStatus{SyncSynced, SyncPending, SyncFailed}

// Priority is a local-only classification.
type Priority string

const (
	PriorityCritical Priority = "CRITICAL"
	PriorityHigh     Priority = "HIGH"
	PriorityMedium   Priority = "MEDIUM"
	PriorityLow      Priority = "LOW"
)

// Severity is a local-only classification.
type Severity string

const (
	SeverityBlocker  Severity = "BLOCKER"
	SeverityCritical Severity = "CRITICAL"
	SeverityMajor    Severity = "MAJOR"
	SeverityNormal   Severity = "NORMAL"
	SeverityMinor    Severity = "MINOR"
	SeverityTrivial  Severity = "TRIVIAL"
)

// IssueType is a local-only classification.
type IssueType string

const (
	TypeBug           IssueType = "BUG"
	TypeFeature       IssueType = "FEATURE"
	TypeEnhancement   IssueType = "ENHANCEMENT"
	TypeTask          IssueType = "TASK"
	TypeDocumentation IssueType = "DOCUMENTATION"
	TypeQuestion      IssueType = "QUESTION"
)

// ParseIssueStatus accepts OPEN/CLOSED in any case.
func ParseIssueStatus(s string) (IssueStatus, error) {
	switch IssueStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case StatusOpen:
		return StatusOpen, nil
	case StatusClosed:
		return StatusClosed, nil
	default:
		return "", fmt.Errorf("unknown issue status %q: valid values are open, closed", s)
	}
}

// ParsePriority accepts any Priority value in any case.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToUpper(strings.TrimSpace(s)))
	switch p {
	case PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow:
		return p, nil
	default:
		return "", fmt.Errorf("unknown priority %q", s)
	}
}

// ParseSeverity accepts any Severity value in any case.
func ParseSeverity(s string) (Severity, error) {
	v := Severity(strings.ToUpper(strings.TrimSpace(s)))
	switch v {
	case SeverityBlocker, SeverityCritical, SeverityMajor, SeverityNormal, SeverityMinor, SeverityTrivial:
		return v, nil
	default:
		return "", fmt.Errorf("unknown severity %q", s)
	}
}

// ParseIssueType accepts any IssueType value in any case.
func ParseIssueType(s string) (IssueType, error) {
	v := IssueType(strings.ToUpper(strings.TrimSpace(s)))
	switch v {
	case TypeBug, TypeFeature, TypeEnhancement, TypeTask, TypeDocumentation, TypeQuestion:
		return v, nil
	default:
		return "", fmt.Errorf("unknown issue type %q", s)
	}
}

// UserRef is a flattened user identity. It is not a reference to a user table.
type UserRef struct {
	ID     string
	Name   string
	Avatar string
}

// IsZero reports whether no identity is set.
func (u UserRef) IsZero() bool {
	return u.ID == "" && u.Name == "" && u.Avatar == ""
}

// RemoteLink holds the correlation fields written onto a local issue once it
// has been pulled from or pushed to the remote.
type RemoteLink struct {
	ID      int64
	NodeID  string
	Number  int
	URL     string
	HTMLURL string
}

// Issue is a locally stored issue.
type Issue struct {
	ID        string
	ProjectID string

	// Remote correlation. RemoteNumber is nil until the issue has been
	// pushed to or pulled from the remote at least once.
	RemoteID        *int64
	RemoteNodeID    string
	RemoteNumber    *int
	RemoteURL       string
	RemoteHTMLURL   string
	RepositoryOwner string
	RepositoryName  string

	Title  string
	Body   string
	Status IssueStatus

	Priority Priority
	Severity Severity
	Type     IssueType

	Assignee UserRef
	Reporter UserRef

	ClosedAt *time.Time

	SyncStatus SyncStatus
	SyncError  *string
	LastSyncAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	// Labels is populated by store reads; it is not written by UpsertIssue.
	Labels []Label
}

// HasRemote reports whether the issue is correlated with a remote issue.
func (i *Issue) HasRemote() bool {
	return i.RemoteNumber != nil
}

// Link applies remote correlation fields.
func (i *Issue) Link(l RemoteLink) {
	id, number := l.ID, l.Number
	i.RemoteID = &id
	i.RemoteNumber = &number
	i.RemoteNodeID = l.NodeID
	i.RemoteURL = l.URL
	i.RemoteHTMLURL = l.HTMLURL
}

// LabelNames returns the names of the issue's labels in order.
func (i *Issue) LabelNames() []string {
	names := make([]string, len(i.Labels))
	for n, l := range i.Labels {
		names[n] = l.Name
	}
	return names
}

// Label belongs to exactly one issue; (IssueID, Name) is unique.
type Label struct {
	ID           int64
	IssueID      string
	Name         string
	Color        string // "#rrggbb"
	Description  string
	RemoteID     *int64
	RemoteNodeID string
}

// Comment belongs to exactly one issue; (IssueID, RemoteID) is unique when RemoteID is set.
// Comments without a RemoteID exist only locally.
type Comment struct {
	ID           string
	IssueID      string
	Content      string
	Author       UserRef
	RemoteID     *int64
	RemoteNodeID string
	RemoteURL    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Repository binds a project to one remote repository.
type Repository struct {
	ProjectID  string
	Owner      string
	Name       string
	FullName   string
	Token      string
	HTMLURL    string
	Active     bool
	LastSyncAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
