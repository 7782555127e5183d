package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/devhub/internal/model"
	"github.com/sakif/devhub/internal/repository"
)

// compile-time check that *DB implements repository.ActivityRepository
var _ repository.ActivityRepository = (*DB)(nil)

// Record appends one entry to the activity log, filling in ID and timestamp.
func (db *DB) Record(ctx context.Context, entry *model.ActivityEntry) error {
	entry.ID = xid.New().String()
	entry.CreatedAt = time.Now()

	details := entry.Details
	if len(details) == 0 {
		details = json.RawMessage("{}")
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO activity_log (id, user_id, action, details, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		entry.ID,
		entry.UserID,
		entry.Action,
		string(details),
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: recording %s activity for %s: %w", entry.Action, entry.UserID, err)
	}
	return nil
}

// Recent returns up to limit entries for userID, newest first.
func (db *DB) Recent(ctx context.Context, userID string, limit int) ([]model.ActivityEntry, error) {
	if limit <= 0 {
		limit = repository.DefaultActivityLimit
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, action, details, created_at
		 FROM activity_log
		 WHERE user_id = ?
		 ORDER BY created_at DESC
		 LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing activity for %s: %w", userID, err)
	}
	defer rows.Close()

	entries := []model.ActivityEntry{}
	for rows.Next() {
		var (
			e       model.ActivityEntry
			details string
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.Action, &details, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning activity row: %w", err)
		}
		e.Details = json.RawMessage(details)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating activity rows: %w", err)
	}

	return entries, nil
}
