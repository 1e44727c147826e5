// Package learning answers from question/answer pairs users have taught the bot.
package learning

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidConfig is returned when a repository is missing required settings.
var ErrInvalidConfig = errors.New("invalid learning repository configuration")

// Entry is one persisted conversation record. Only entries with Learned set
// take part in matching.
type Entry struct {
	SessionID   string    `json:"session_id"`
	UserMessage string    `json:"user_message"`
	BotResponse string    `json:"bot_response"`
	Timestamp   time.Time `json:"timestamp"`
	Learned     bool      `json:"learned"`
}

// Repository persists conversation records.
type Repository interface {
	// Record inserts one conversation record.
	Record(ctx context.Context, entry Entry) error

	// ListLearned returns every learned entry in storage read order.
	ListLearned(ctx context.Context) ([]Entry, error)
}
