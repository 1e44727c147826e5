package learning

import (
	"context"
	"fmt"
	"time"

	"github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"
)

const defaultSupabaseTable = "chats"

// SupabaseConfig holds Supabase connection configuration.
type SupabaseConfig struct {
	URL    string
	APIKey string
	Table  string // Default: chats
}

// SupabaseRepository stores conversation records through the Supabase REST API.
// The PostgREST client takes no context, so ctx is only checked before each
// request and cannot cancel one in flight.
type SupabaseRepository struct {
	client *supabase.Client
	table  string
}

var _ Repository = (*SupabaseRepository)(nil)

// chatRow is the wire shape of a chats row; timestamp is unix milliseconds.
type chatRow struct {
	SessionID   string `json:"session_id"`
	UserMessage string `json:"user_message"`
	BotResponse string `json:"bot_response"`
	Timestamp   int64  `json:"timestamp"`
	Learned     bool   `json:"learned"`
}

// NewSupabaseRepository creates a repository backed by a Supabase project.
func NewSupabaseRepository(cfg SupabaseConfig) (*SupabaseRepository, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("%w: supabase URL is required", ErrInvalidConfig)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: supabase API key is required", ErrInvalidConfig)
	}
	if cfg.Table == "" {
		cfg.Table = defaultSupabaseTable
	}

	client, err := supabase.NewClient(cfg.URL, cfg.APIKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}

	return &SupabaseRepository{client: client, table: cfg.Table}, nil
}

// Record inserts one conversation record.
func (r *SupabaseRepository) Record(ctx context.Context, entry Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ts := entry.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	row := chatRow{
		SessionID:   entry.SessionID,
		UserMessage: entry.UserMessage,
		BotResponse: entry.BotResponse,
		Timestamp:   ts.UnixMilli(),
		Learned:     entry.Learned,
	}

	_, _, err := r.client.From(r.table).
		Insert(row, false, "", "minimal", "").
		Execute()
	if err != nil {
		return fmt.Errorf("failed to record chat: %w", err)
	}
	return nil
}

// ListLearned returns every learned entry in insertion order.
func (r *SupabaseRepository) ListLearned(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rows []chatRow
	_, err := r.client.From(r.table).
		Select("session_id,user_message,bot_response,timestamp,learned", "", false).
		Eq("learned", "true").
		Order("id", &postgrest.OrderOpts{Ascending: true}).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("failed to query learned chats: %w", err)
	}

	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, Entry{
			SessionID:   row.SessionID,
			UserMessage: row.UserMessage,
			BotResponse: row.BotResponse,
			Timestamp:   time.UnixMilli(row.Timestamp),
			Learned:     row.Learned,
		})
	}
	return entries, nil
}
