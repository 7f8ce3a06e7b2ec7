package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/JohanCodinha/ghsync/internal/model"
)

const commentColumns = `id, issue_id, content, author_id, author_name, author_avatar,
	remote_id, remote_node_id, remote_url, created_at, updated_at`

// UpsertComment stores a comment on the issue. A comment with a remote id
// replaces the existing comment with the same (issue, remote id) and keeps its
// local id; anything else is inserted as a new local comment.
func (db *DB) UpsertComment(ctx context.Context, issueID string, c model.Comment) (*model.Comment, error) {
	c.IssueID = issueID
	now := db.now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = c.CreatedAt
	}

	if c.RemoteID != nil {
		existingID, err := db.commentIDByRemote(ctx, issueID, *c.RemoteID)
		if err != nil {
			return nil, err
		}
		if existingID != "" {
			c.ID = existingID
			_, err := db.conn.ExecContext(ctx, `
				UPDATE issue_comments
				SET content = ?, author_id = ?, author_name = ?, author_avatar = ?,
				    remote_node_id = ?, remote_url = ?, created_at = ?, updated_at = ?
				WHERE id = ?`,
				c.Content,
				nullString(c.Author.ID),
				nullString(c.Author.Name),
				nullString(c.Author.Avatar),
				nullString(c.RemoteNodeID),
				nullString(c.RemoteURL),
				formatTime(c.CreatedAt),
				formatTime(c.UpdatedAt),
				c.ID,
			)
			if err != nil {
				return nil, fmt.Errorf("failed to update comment %s: %w", c.ID, err)
			}
			return &c, nil
		}
	}

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO issue_comments (`+commentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID,
		c.IssueID,
		c.Content,
		nullString(c.Author.ID),
		nullString(c.Author.Name),
		nullString(c.Author.Avatar),
		nullInt64(c.RemoteID),
		nullString(c.RemoteNodeID),
		nullString(c.RemoteURL),
		formatTime(c.CreatedAt),
		formatTime(c.UpdatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert comment: %w", err)
	}
	return &c, nil
}

func (db *DB) commentIDByRemote(ctx context.Context, issueID string, remoteID int64) (string, error) {
	var id string
	err := db.conn.QueryRowContext(ctx,
		`SELECT id FROM issue_comments WHERE issue_id = ? AND remote_id = ?`,
		issueID, remoteID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up comment: %w", err)
	}
	return id, nil
}

// ListComments returns the issue's comments oldest first.
func (db *DB) ListComments(ctx context.Context, issueID string) ([]model.Comment, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+commentColumns+` FROM issue_comments WHERE issue_id = ? ORDER BY created_at ASC, rowid ASC`,
		issueID)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		var c model.Comment
		var authorID, authorName, authorAvatar, remoteNodeID, remoteURL sql.NullString
		var remoteID sql.NullInt64
		var createdAt, updatedAt string

		if err := rows.Scan(&c.ID, &c.IssueID, &c.Content, &authorID, &authorName, &authorAvatar,
			&remoteID, &remoteNodeID, &remoteURL, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		c.Author = model.UserRef{ID: authorID.String, Name: authorName.String, Avatar: authorAvatar.String}
		c.RemoteID = int64Ptr(remoteID)
		c.RemoteNodeID = remoteNodeID.String
		c.RemoteURL = remoteURL.String
		if c.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comment rows: %w", err)
	}
	return comments, nil
}
