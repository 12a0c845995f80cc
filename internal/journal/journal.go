// Package journal records watcher activity (copies, deletions, faults)
// in the SQLite transfer log so transfers can be audited after the
// watcher process is gone.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Action classifies a transfer_log row.
type Action string

const (
	ActionCopy    Action = "copy"
	ActionDelete  Action = "delete"
	ActionWipe    Action = "wipe"
	ActionFault   Action = "fault"
	ActionPresave Action = "presave"
)

const maxDetailBytes = 4 * 1024

// Entry is one recorded transfer event.
type Entry struct {
	ID        string
	LinkID    int
	Action    Action
	Path      string
	Detail    string
	CreatedAt time.Time
}

// Journal wraps the transfer_log table.
type Journal struct {
	db *sql.DB
}

func New(db *sql.DB) *Journal {
	return &Journal{db: db}
}

// Record appends one event. Detail carries error text for fault rows
// and is truncated rather than rejected.
func (j *Journal) Record(ctx context.Context, linkID int, action Action, path, detail string) error {
	if linkID < 1 {
		return fmt.Errorf("link id is empty")
	}
	if action == "" {
		return fmt.Errorf("action is empty")
	}
	if len(detail) > maxDetailBytes {
		detail = detail[:maxDetailBytes]
	}

	id := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339Nano)

	var detailVal any
	if detail != "" {
		detailVal = detail
	}

	_, err := j.db.ExecContext(ctx, `
INSERT INTO transfer_log(id, link_id, action, path, detail, created_at)
VALUES(?, ?, ?, ?, ?, ?);
`, id, linkID, action, path, detailVal, now)
	if err != nil {
		return fmt.Errorf("record transfer: %w", err)
	}
	return nil
}

// ListByLink returns the newest events for one link, newest first.
func (j *Journal) ListByLink(ctx context.Context, linkID, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := j.db.QueryContext(ctx, `
SELECT id, link_id, action, path, detail, created_at
FROM transfer_log
WHERE link_id = ?
ORDER BY created_at DESC, rowid DESC
LIMIT ?;
`, linkID, limit)
	if err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// List returns the newest events across all links, newest first.
func (j *Journal) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := j.db.QueryContext(ctx, `
SELECT id, link_id, action, path, detail, created_at
FROM transfer_log
ORDER BY created_at DESC, rowid DESC
LIMIT ?;
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// Prune deletes events older than retention.
func (j *Journal) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-retention).Format(time.RFC3339Nano)
	res, err := j.db.ExecContext(ctx, `DELETE FROM transfer_log WHERE created_at < ?;`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune transfers: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune transfers: %w", err)
	}
	return n, nil
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var out []Entry
	for rows.Next() {
		var (
			e          Entry
			actionS    string
			detail     sql.NullString
			createdAtS string
		)
		if err := rows.Scan(&e.ID, &e.LinkID, &actionS, &e.Path, &detail, &createdAtS); err != nil {
			return nil, fmt.Errorf("scan transfer: %w", err)
		}
		e.Action = Action(actionS)
		if detail.Valid {
			e.Detail = detail.String
		}
		if t, err := time.Parse(time.RFC3339Nano, createdAtS); err == nil {
			e.CreatedAt = t
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan transfers: %w", err)
	}
	return out, nil
}
