package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JohanCodinha/ghsync/internal/model"
)

// ErrIssueNotFound is returned by writes that target a missing issue.
var ErrIssueNotFound = errors.New("issue not found")

const issueColumns = `
	id, project_id, remote_id, remote_node_id, remote_number, remote_url, remote_html_url,
	repository_owner, repository_name, title, body, status, priority, severity, issue_type,
	assignee_id, assignee_name, assignee_avatar, reporter_id, reporter_name, reporter_avatar,
	closed_at, sync_status, sync_error, last_sync_at, created_at, updated_at`

// UpsertIssue inserts the issue, or updates every mutable column when an issue
// with the same id exists. An empty id is assigned a new UUID. Labels are not
// written; use ReplaceLabels.
func (db *DB) UpsertIssue(ctx context.Context, issue model.Issue) (*model.Issue, error) {
	if issue.ProjectID == "" {
		return nil, fmt.Errorf("issue has no project id")
	}
	if issue.SyncStatus == model.SyncFailed && issue.SyncError == nil {
		return nil, fmt.Errorf("issue %s: sync status %s requires a sync error", issue.ID, model.SyncFailed)
	}

	now := db.now().UTC()
	if issue.ID == "" {
		issue.ID = uuid.NewString()
	}
	if issue.Status == "" {
		issue.Status = model.StatusOpen
	}
	if issue.SyncStatus == "" {
		issue.SyncStatus = model.SyncPending
	}
	if issue.CreatedAt.IsZero() {
		issue.CreatedAt = now
	}
	issue.UpdatedAt = now

	query := `
		INSERT INTO issues (` + issueColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			remote_id = excluded.remote_id,
			remote_node_id = excluded.remote_node_id,
			remote_number = excluded.remote_number,
			remote_url = excluded.remote_url,
			remote_html_url = excluded.remote_html_url,
			repository_owner = excluded.repository_owner,
			repository_name = excluded.repository_name,
			title = excluded.title,
			body = excluded.body,
			status = excluded.status,
			priority = excluded.priority,
			severity = excluded.severity,
			issue_type = excluded.issue_type,
			assignee_id = excluded.assignee_id,
			assignee_name = excluded.assignee_name,
			assignee_avatar = excluded.assignee_avatar,
			reporter_id = excluded.reporter_id,
			reporter_name = excluded.reporter_name,
			reporter_avatar = excluded.reporter_avatar,
			closed_at = excluded.closed_at,
			sync_status = excluded.sync_status,
			sync_error = excluded.sync_error,
			last_sync_at = excluded.last_sync_at,
			updated_at = excluded.updated_at
	`

	_, err := db.conn.ExecContext(ctx, query,
		issue.ID,
		issue.ProjectID,
		nullInt64(issue.RemoteID),
		nullString(issue.RemoteNodeID),
		nullInt(issue.RemoteNumber),
		nullString(issue.RemoteURL),
		nullString(issue.RemoteHTMLURL),
		nullString(issue.RepositoryOwner),
		nullString(issue.RepositoryName),
		issue.Title,
		nullString(issue.Body),
		string(issue.Status),
		nullString(string(issue.Priority)),
		nullString(string(issue.Severity)),
		nullString(string(issue.Type)),
		nullString(issue.Assignee.ID),
		nullString(issue.Assignee.Name),
		nullString(issue.Assignee.Avatar),
		nullString(issue.Reporter.ID),
		nullString(issue.Reporter.Name),
		nullString(issue.Reporter.Avatar),
		nullTime(issue.ClosedAt),
		string(issue.SyncStatus),
		nullStringPtr(issue.SyncError),
		nullTime(issue.LastSyncAt),
		formatTime(issue.CreatedAt),
		formatTime(issue.UpdatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert issue %s: %w", issue.ID, err)
	}

	return &issue, nil
}

// GetIssue retrieves an issue with its labels. Returns (nil, nil) when absent.
func (db *DB) GetIssue(ctx context.Context, id string) (*model.Issue, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+issueColumns+` FROM issues WHERE id = ?`, id)
	issue, err := scanIssueFrom(row)
	if err != nil || issue == nil {
		return issue, err
	}

	labels, err := db.ListLabels(ctx, issue.ID)
	if err != nil {
		return nil, err
	}
	issue.Labels = labels
	return issue, nil
}

// FindByRemoteNumber returns the project's issue correlated with the remote
// number, or (nil, nil) when there is none.
func (db *DB) FindByRemoteNumber(ctx context.Context, projectID string, number int) (*model.Issue, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+issueColumns+` FROM issues WHERE project_id = ? AND remote_number = ?`,
		projectID, number)
	issue, err := scanIssueFrom(row)
	if err != nil || issue == nil {
		return issue, err
	}

	labels, err := db.ListLabels(ctx, issue.ID)
	if err != nil {
		return nil, err
	}
	issue.Labels = labels
	return issue, nil
}

// ListByProject returns every issue of the project with labels, in creation order.
func (db *DB) ListByProject(ctx context.Context, projectID string) ([]model.Issue, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+issueColumns+` FROM issues WHERE project_id = ? ORDER BY created_at ASC, rowid ASC`,
		projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query issues: %w", err)
	}
	defer rows.Close()

	issues := []model.Issue{}
	for rows.Next() {
		issue, err := scanIssueFrom(rows)
		if err != nil {
			return nil, err
		}
		issues = append(issues, *issue)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating issue rows: %w", err)
	}
	rows.Close()

	labels, err := db.labelsForProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	for i := range issues {
		issues[i].Labels = labels[issues[i].ID]
	}

	return issues, nil
}

// IssueUpdate contains optional fields for a local edit. Nil fields are not updated.
type IssueUpdate struct {
	Title    *string
	Body     *string
	Status   *model.IssueStatus
	Priority *model.Priority
	Severity *model.Severity
	Type     *model.IssueType
	Assignee *model.UserRef
}

// UpdateLocal applies a local edit and marks the issue SYNC_PENDING so the next
// push carries it to the remote. Closing an issue stamps closed_at; reopening clears it.
func (db *DB) UpdateLocal(ctx context.Context, id string, update IssueUpdate) error {
	now := db.now()

	var setClauses []string
	var args []interface{}

	if update.Title != nil {
		setClauses = append(setClauses, "title = ?")
		args = append(args, *update.Title)
	}
	if update.Body != nil {
		setClauses = append(setClauses, "body = ?")
		args = append(args, nullString(*update.Body))
	}
	if update.Status != nil {
		setClauses = append(setClauses, "status = ?", "closed_at = ?")
		args = append(args, string(*update.Status))
		if *update.Status == model.StatusClosed {
			args = append(args, nullTime(&now))
		} else {
			args = append(args, sql.NullString{})
		}
	}
	if update.Priority != nil {
		setClauses = append(setClauses, "priority = ?")
		args = append(args, string(*update.Priority))
	}
	if update.Severity != nil {
		setClauses = append(setClauses, "severity = ?")
		args = append(args, string(*update.Severity))
	}
	if update.Type != nil {
		setClauses = append(setClauses, "issue_type = ?")
		args = append(args, string(*update.Type))
	}
	if update.Assignee != nil {
		setClauses = append(setClauses, "assignee_id = ?", "assignee_name = ?", "assignee_avatar = ?")
		args = append(args,
			nullString(update.Assignee.ID),
			nullString(update.Assignee.Name),
			nullString(update.Assignee.Avatar))
	}

	setClauses = append(setClauses, "sync_status = ?", "updated_at = ?")
	args = append(args, string(model.SyncPending), formatTime(now), id)

	query := fmt.Sprintf(`UPDATE issues SET %s WHERE id = ?`, strings.Join(setClauses, ", "))
	return db.execOne(ctx, "update issue", id, query, args...)
}

// MarkSynced writes only the bookkeeping columns of a successful push, so local
// edits made while the remote call was in flight are kept.
func (db *DB) MarkSynced(ctx context.Context, id string, link model.RemoteLink, at time.Time) error {
	query := `
		UPDATE issues
		SET remote_id = ?, remote_node_id = ?, remote_number = ?, remote_url = ?, remote_html_url = ?,
		    sync_status = ?, sync_error = NULL, last_sync_at = ?
		WHERE id = ?
	`
	return db.execOne(ctx, "mark issue synced", id, query,
		link.ID,
		nullString(link.NodeID),
		link.Number,
		nullString(link.URL),
		nullString(link.HTMLURL),
		string(model.SyncSynced),
		formatTime(at),
		id,
	)
}

// MarkSyncFailed records a failed sync attempt on the issue itself.
func (db *DB) MarkSyncFailed(ctx context.Context, id string, message string) error {
	query := `UPDATE issues SET sync_status = ?, sync_error = ? WHERE id = ?`
	return db.execOne(ctx, "mark issue failed", id, query, string(model.SyncFailed), message, id)
}

func (db *DB) execOne(ctx context.Context, op, id, query string, args ...interface{}) error {
	result, err := db.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to %s %s: %w", op, id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrIssueNotFound, id)
	}
	return nil
}

// scanIssueFrom scans a row into an Issue. Returns (nil, nil) on sql.ErrNoRows.
func scanIssueFrom(s scanner) (*model.Issue, error) {
	var issue model.Issue
	var remoteID, remoteNumber sql.NullInt64
	var remoteNodeID, remoteURL, remoteHTMLURL, repoOwner, repoName sql.NullString
	var body, priority, severity, issueType sql.NullString
	var assigneeID, assigneeName, assigneeAvatar sql.NullString
	var reporterID, reporterName, reporterAvatar sql.NullString
	var closedAt, syncError, lastSyncAt sql.NullString
	var status, syncStatus, createdAt, updatedAt string

	err := s.Scan(
		&issue.ID,
		&issue.ProjectID,
		&remoteID,
		&remoteNodeID,
		&remoteNumber,
		&remoteURL,
		&remoteHTMLURL,
		&repoOwner,
		&repoName,
		&issue.Title,
		&body,
		&status,
		&priority,
		&severity,
		&issueType,
		&assigneeID,
		&assigneeName,
		&assigneeAvatar,
		&reporterID,
		&reporterName,
		&reporterAvatar,
		&closedAt,
		&syncStatus,
		&syncError,
		&lastSyncAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan issue: %w", err)
	}

	issue.RemoteID = int64Ptr(remoteID)
	issue.RemoteNumber = intPtr(remoteNumber)
	issue.RemoteNodeID = remoteNodeID.String
	issue.RemoteURL = remoteURL.String
	issue.RemoteHTMLURL = remoteHTMLURL.String
	issue.RepositoryOwner = repoOwner.String
	issue.RepositoryName = repoName.String
	issue.Body = body.String
	issue.Status = model.IssueStatus(status)
	issue.Priority = model.Priority(priority.String)
	issue.Severity = model.Severity(severity.String)
	issue.Type = model.IssueType(issueType.String)
	issue.Assignee = model.UserRef{ID: assigneeID.String, Name: assigneeName.String, Avatar: assigneeAvatar.String}
	issue.Reporter = model.UserRef{ID: reporterID.String, Name: reporterName.String, Avatar: reporterAvatar.String}
	issue.SyncStatus = model.SyncStatus(syncStatus)
	if syncError.Valid {
		msg := syncError.String
		issue.SyncError = &msg
	}

	if issue.ClosedAt, err = parseNullTime(closedAt); err != nil {
		return nil, err
	}
	if issue.LastSyncAt, err = parseNullTime(lastSyncAt); err != nil {
		return nil, err
	}
	if issue.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if issue.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}

	return &issue, nil
}
