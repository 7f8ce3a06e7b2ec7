package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/JohanCodinha/ghsync/internal/model"
)

const labelColumns = `id, issue_id, name, color, description, remote_id, remote_node_id`

// ReplaceLabels deletes every label of the issue and inserts the given set in
// one transaction. There is no incremental diffing.
func (db *DB) ReplaceLabels(ctx context.Context, issueID string, labels []model.Label) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM issue_labels WHERE issue_id = ?", issueID); err != nil {
		return fmt.Errorf("failed to delete existing labels: %w", err)
	}

	query := `
		INSERT INTO issue_labels (issue_id, name, color, description, remote_id, remote_node_id)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	for _, label := range labels {
		_, err := tx.ExecContext(ctx, query,
			issueID,
			label.Name,
			label.Color,
			nullString(label.Description),
			nullInt64(label.RemoteID),
			nullString(label.RemoteNodeID),
		)
		if err != nil {
			return fmt.Errorf("failed to insert label %q: %w", label.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListLabels returns the labels of one issue in insertion order.
func (db *DB) ListLabels(ctx context.Context, issueID string) ([]model.Label, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+labelColumns+` FROM issue_labels WHERE issue_id = ? ORDER BY id ASC`, issueID)
	if err != nil {
		return nil, fmt.Errorf("failed to query labels: %w", err)
	}
	defer rows.Close()

	labels := []model.Label{}
	for rows.Next() {
		label, err := scanLabel(rows)
		if err != nil {
			return nil, err
		}
		labels = append(labels, label)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating label rows: %w", err)
	}
	return labels, nil
}

// labelsForProject loads every label of every issue in the project, keyed by issue id.
func (db *DB) labelsForProject(ctx context.Context, projectID string) (map[string][]model.Label, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT `+labelColumns+` FROM issue_labels
		WHERE issue_id IN (SELECT id FROM issues WHERE project_id = ?)
		ORDER BY id ASC`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query project labels: %w", err)
	}
	defer rows.Close()

	byIssue := make(map[string][]model.Label)
	for rows.Next() {
		label, err := scanLabel(rows)
		if err != nil {
			return nil, err
		}
		byIssue[label.IssueID] = append(byIssue[label.IssueID], label)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating label rows: %w", err)
	}
	return byIssue, nil
}

func scanLabel(s scanner) (model.Label, error) {
	var label model.Label
	var description, remoteNodeID sql.NullString
	var remoteID sql.NullInt64

	if err := s.Scan(&label.ID, &label.IssueID, &label.Name, &label.Color, &description, &remoteID, &remoteNodeID); err != nil {
		return model.Label{}, fmt.Errorf("failed to scan label: %w", err)
	}
	label.Description = description.String
	label.RemoteID = int64Ptr(remoteID)
	label.RemoteNodeID = remoteNodeID.String
	return label, nil
}
