package learning

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// LibSQLRepository stores conversation records in the chats table of a
// libsql database opened through db.Connect.
type LibSQLRepository struct {
	db *sql.DB
}

var _ Repository = (*LibSQLRepository)(nil)

// NewLibSQLRepository wraps an open, migrated database handle.
func NewLibSQLRepository(db *sql.DB) (*LibSQLRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("%w: database handle is required", ErrInvalidConfig)
	}
	return &LibSQLRepository{db: db}, nil
}

// Record inserts one conversation record.
func (r *LibSQLRepository) Record(ctx context.Context, entry Entry) error {
	ts := entry.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO chats (session_id, user_message, bot_response, timestamp, learned) VALUES (?, ?, ?, ?, ?)`,
		entry.SessionID, entry.UserMessage, entry.BotResponse, ts.UnixMilli(), boolToInt(entry.Learned),
	)
	if err != nil {
		return fmt.Errorf("failed to record chat: %w", err)
	}
	return nil
}

// ListLearned returns learned entries in insertion order.
func (r *LibSQLRepository) ListLearned(ctx context.Context) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT session_id, user_message, bot_response, timestamp, learned FROM chats WHERE learned = 1 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query learned chats: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e       Entry
			ts      int64
			learned int64
		)
		if err := rows.Scan(&e.SessionID, &e.UserMessage, &e.BotResponse, &ts, &learned); err != nil {
			return nil, fmt.Errorf("failed to scan learned chat: %w", err)
		}
		e.Timestamp = time.UnixMilli(ts)
		e.Learned = learned != 0
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate learned chats: %w", err)
	}
	return entries, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
