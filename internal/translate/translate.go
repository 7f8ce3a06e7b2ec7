// Package translate maps issues, labels and comments between the GitHub REST
// shapes and the local model.
//
// Every vocabulary field is matched exhaustively. A value outside the known
// set is an *Error wrapping ErrUnknownState or ErrMalformed; nothing is
// coerced to a default.
package translate

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/go-github/v57/github"

	"github.com/JohanCodinha/ghsync/internal/model"
)

var (
	// ErrUnknownState is returned for a remote or local state outside the known vocabulary.
	ErrUnknownState = errors.New("unknown state")
	// ErrMalformed is returned when a required field is missing or has the wrong format.
	ErrMalformed = errors.New("malformed payload")
)

// Error describes which field failed to translate.
type Error struct {
	Field string
	Value string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("translate %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

const (
	remoteOpen   = "open"
	remoteClosed = "closed"
)

// ParseRemoteState maps a GitHub issue state to the local status.
func ParseRemoteState(state string) (model.IssueStatus, error) {
	switch state {
	case remoteOpen:
		return model.StatusOpen, nil
	case remoteClosed:
		return model.StatusClosed, nil
	default:
		return "", &Error{Field: "state", Value: state, Err: ErrUnknownState}
	}
}

// RemoteState maps a local status to the GitHub issue state.
func RemoteState(status model.IssueStatus) (string, error) {
	switch status {
	case model.StatusOpen:
		return remoteOpen, nil
	case model.StatusClosed:
		return remoteClosed, nil
	default:
		return "", &Error{Field: "status", Value: string(status), Err: ErrUnknownState}
	}
}

// FlattenUser turns a GitHub user into an identity triple. The login is used
// as both id and name since it is what the issues API accepts on write.
func FlattenUser(u *github.User) model.UserRef {
	if u == nil || u.GetLogin() == "" {
		return model.UserRef{}
	}
	return model.UserRef{
		ID:     u.GetLogin(),
		Name:   u.GetLogin(),
		Avatar: u.GetAvatarURL(),
	}
}

// ToLocal applies a remote issue onto base and returns the result. base is
// the existing local issue, or an Issue carrying only the project and
// repository fields when the remote issue is new locally. Local-only fields
// (classification, labels, ids) are kept.
func ToLocal(base model.Issue, remote *github.Issue, now time.Time) (model.Issue, error) {
	link, err := RemoteLinkOf(remote)
	if err != nil {
		return model.Issue{}, err
	}
	status, err := ParseRemoteState(remote.GetState())
	if err != nil {
		return model.Issue{}, err
	}

	out := base
	out.Link(link)
	out.Title = remote.GetTitle()
	out.Body = remote.GetBody()
	out.Status = status
	out.Assignee = FlattenUser(remote.Assignee)
	out.Reporter = FlattenUser(remote.User)
	out.ClosedAt = timestampPtr(remote.ClosedAt)
	if out.CreatedAt.IsZero() && remote.CreatedAt != nil {
		out.CreatedAt = remote.CreatedAt.Time.UTC()
	}

	synced := now.UTC()
	out.SyncStatus = model.SyncSynced
	out.SyncError = nil
	out.LastSyncAt = &synced
	return out, nil
}

// RemoteLinkOf extracts the correlation fields of a remote issue.
func RemoteLinkOf(remote *github.Issue) (model.RemoteLink, error) {
	if remote.GetNumber() <= 0 {
		return model.RemoteLink{}, &Error{Field: "number", Value: strconv.Itoa(remote.GetNumber()), Err: ErrMalformed}
	}
	return model.RemoteLink{
		ID:      remote.GetID(),
		NodeID:  remote.GetNodeID(),
		Number:  remote.GetNumber(),
		URL:     remote.GetURL(),
		HTMLURL: remote.GetHTMLURL(),
	}, nil
}

var hexColor = regexp.MustCompile(`^[0-9a-fA-F]{6}$`)

// Labels maps a remote label list to local labels. Colors are stored with a
// leading '#'. The whole list fails if any label is malformed.
func Labels(remote []*github.Label) ([]model.Label, error) {
	labels := make([]model.Label, 0, len(remote))
	seen := make(map[string]bool, len(remote))
	for _, l := range remote {
		if l == nil || strings.TrimSpace(l.GetName()) == "" {
			return nil, &Error{Field: "label.name", Value: "", Err: ErrMalformed}
		}
		name := l.GetName()
		if seen[name] {
			return nil, &Error{Field: "label.name", Value: name, Err: ErrMalformed}
		}
		seen[name] = true

		color := strings.TrimPrefix(l.GetColor(), "#")
		if !hexColor.MatchString(color) {
			return nil, &Error{Field: "label.color", Value: l.GetColor(), Err: ErrMalformed}
		}

		var remoteID *int64
		if l.ID != nil {
			id := l.GetID()
			remoteID = &id
		}
		labels = append(labels, model.Label{
			Name:         name,
			Color:        "#" + strings.ToLower(color),
			Description:  l.GetDescription(),
			RemoteID:     remoteID,
			RemoteNodeID: l.GetNodeID(),
		})
	}
	return labels, nil
}

// Comment maps a remote comment to a local one keyed by its remote id.
func Comment(remote *github.IssueComment) (model.Comment, error) {
	if remote == nil || remote.ID == nil {
		return model.Comment{}, &Error{Field: "comment.id", Value: "", Err: ErrMalformed}
	}
	id := remote.GetID()
	c := model.Comment{
		Content:      remote.GetBody(),
		Author:       FlattenUser(remote.User),
		RemoteID:     &id,
		RemoteNodeID: remote.GetNodeID(),
		RemoteURL:    remote.GetHTMLURL(),
	}
	if remote.CreatedAt != nil {
		c.CreatedAt = remote.CreatedAt.Time.UTC()
	}
	if remote.UpdatedAt != nil {
		c.UpdatedAt = remote.UpdatedAt.Time.UTC()
	}
	return c, nil
}

// CreateRequest builds the payload that opens a local issue on GitHub.
// Labels are sent by name only. GitHub always opens new issues; a closed
// local issue needs a follow-up UpdateRequest.
func CreateRequest(local model.Issue) (*github.IssueRequest, error) {
	if strings.TrimSpace(local.Title) == "" {
		return nil, &Error{Field: "title", Value: local.Title, Err: ErrMalformed}
	}
	if _, err := RemoteState(local.Status); err != nil {
		return nil, err
	}

	req := &github.IssueRequest{
		Title: github.String(local.Title),
		Body:  github.String(local.Body),
	}
	if local.Assignee.ID != "" {
		req.Assignee = github.String(local.Assignee.ID)
	}
	if len(local.Labels) > 0 {
		names := local.LabelNames()
		req.Labels = &names
	}
	return req, nil
}

// UpdateRequest builds a partial patch of title, body, state and assignee.
// Labels are not patched.
func UpdateRequest(local model.Issue) (*github.IssueRequest, error) {
	state, err := RemoteState(local.Status)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(local.Title) == "" {
		return nil, &Error{Field: "title", Value: local.Title, Err: ErrMalformed}
	}

	req := &github.IssueRequest{
		Title: github.String(local.Title),
		Body:  github.String(local.Body),
		State: github.String(state),
	}
	if local.Assignee.ID != "" {
		req.Assignee = github.String(local.Assignee.ID)
	}
	return req, nil
}

func timestampPtr(ts *github.Timestamp) *time.Time {
	if ts == nil || ts.IsZero() {
		return nil
	}
	t := ts.Time.UTC()
	return &t
}
