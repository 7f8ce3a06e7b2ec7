package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/JohanCodinha/ghsync/internal/model"
)

// SaveRepository binds a project to a remote repository, replacing any
// previous binding. The original creation time and last sync time are kept.
func (db *DB) SaveRepository(ctx context.Context, repo model.Repository) (*model.Repository, error) {
	if repo.ProjectID == "" || repo.Owner == "" || repo.Name == "" {
		return nil, fmt.Errorf("repository binding requires project, owner and name")
	}
	now := db.now().UTC()
	if repo.FullName == "" {
		repo.FullName = repo.Owner + "/" + repo.Name
	}
	if repo.CreatedAt.IsZero() {
		repo.CreatedAt = now
	}
	repo.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO repositories (project_id, owner, name, full_name, token, html_url, active, last_sync_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(project_id) DO UPDATE SET
			owner = excluded.owner,
			name = excluded.name,
			full_name = excluded.full_name,
			token = excluded.token,
			html_url = excluded.html_url,
			active = excluded.active,
			updated_at = excluded.updated_at`,
		repo.ProjectID,
		repo.Owner,
		repo.Name,
		repo.FullName,
		nullString(repo.Token),
		nullString(repo.HTMLURL),
		boolToInt(repo.Active),
		nullTime(repo.LastSyncAt),
		formatTime(repo.CreatedAt),
		formatTime(repo.UpdatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save repository %s: %w", repo.FullName, err)
	}

	return db.GetRepository(ctx, repo.ProjectID)
}

// GetRepository returns the project's binding, or (nil, nil) when there is none.
func (db *DB) GetRepository(ctx context.Context, projectID string) (*model.Repository, error) {
	var repo model.Repository
	var token, htmlURL, lastSyncAt sql.NullString
	var active int
	var createdAt, updatedAt string

	err := db.conn.QueryRowContext(ctx, `
		SELECT project_id, owner, name, full_name, token, html_url, active, last_sync_at, created_at, updated_at
		FROM repositories WHERE project_id = ?`, projectID).Scan(
		&repo.ProjectID, &repo.Owner, &repo.Name, &repo.FullName,
		&token, &htmlURL, &active, &lastSyncAt, &createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get repository for project %s: %w", projectID, err)
	}

	repo.Token = token.String
	repo.HTMLURL = htmlURL.String
	repo.Active = active != 0
	if repo.LastSyncAt, err = parseNullTime(lastSyncAt); err != nil {
		return nil, err
	}
	if repo.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if repo.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &repo, nil
}

// SetRepositoryActive enables or disables sync for the project.
func (db *DB) SetRepositoryActive(ctx context.Context, projectID string, active bool) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE repositories SET active = ?, updated_at = ? WHERE project_id = ?`,
		boolToInt(active), formatTime(db.now()), projectID)
	if err != nil {
		return fmt.Errorf("failed to update repository: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("no repository bound to project %s", projectID)
	}
	return nil
}

// TouchRepositorySync records the time of the project's last successful sync run.
func (db *DB) TouchRepositorySync(ctx context.Context, projectID string, at time.Time) error {
	_, err := db.conn.ExecContext(ctx,
		`UPDATE repositories SET last_sync_at = ? WHERE project_id = ?`,
		formatTime(at), projectID)
	if err != nil {
		return fmt.Errorf("failed to record repository sync: %w", err)
	}
	return nil
}
