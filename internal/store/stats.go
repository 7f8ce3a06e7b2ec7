package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/JohanCodinha/ghsync/internal/model"
)

// CountBySyncStatus groups the project's issues by sync status. Statuses
// with no issues are absent from the map.
func (db *DB) CountBySyncStatus(ctx context.Context, projectID string) (map[model.SyncStatus]int, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT sync_status, COUNT(*) FROM issues WHERE project_id = ? GROUP BY sync_status`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to count issues: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.SyncStatus]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[model.SyncStatus(status)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating count rows: %w", err)
	}
	return counts, nil
}

// LastSyncAt returns the most recent per-issue sync time in the project, or
// nil when no issue has ever been synced.
func (db *DB) LastSyncAt(ctx context.Context, projectID string) (*time.Time, error) {
	var latest sql.NullString
	err := db.conn.QueryRowContext(ctx,
		`SELECT MAX(last_sync_at) FROM issues WHERE project_id = ?`, projectID).Scan(&latest)
	if err != nil {
		return nil, fmt.Errorf("failed to query last sync time: %w", err)
	}
	return parseNullTime(latest)
}
