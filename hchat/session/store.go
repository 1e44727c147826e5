// Package session keeps bounded per-session conversation history.
package session

import (
	"context"
	"errors"
	"time"
)

// Common errors for session store operations.
var (
	ErrInvalidConfig    = errors.New("invalid session store configuration")
	ErrInvalidStoreType = errors.New("invalid session store type")
)

// Turn is one user/bot exchange. Turns are immutable once appended.
type Turn struct {
	User string    `json:"user"`
	Bot  string    `json:"bot"`
	At   time.Time `json:"at"`
}

// Store owns session history. Implementations must be safe for concurrent use.
type Store interface {
	// History returns the session's turns, oldest first.
	// Unknown sessions yield an empty history, not an error.
	History(ctx context.Context, sessionID string) ([]Turn, error)

	// AppendTurn creates the session if needed, appends one turn and then
	// applies the store's Retention.
	AppendTurn(ctx context.Context, sessionID, user, bot string) error

	// Close releases any resources held by the store.
	Close() error
}

// Retention bounds a session's history. Once the history grows beyond
// MaxTurns it is cut down to the trailing KeepTurns entries.
type Retention struct {
	MaxTurns  int
	KeepTurns int
}

// DefaultRetention is a sliding window over the last 8 turns.
func DefaultRetention() Retention {
	return Retention{MaxTurns: 8, KeepTurns: 8}
}

// LegacyRetention drops all but the last 2 turns once more than 8 are held.
func LegacyRetention() Retention {
	return Retention{MaxTurns: 8, KeepTurns: 2}
}

// Validate reports whether the policy keeps stored history at or below MaxTurns.
func (r Retention) Validate() error {
	if r.MaxTurns <= 0 || r.KeepTurns <= 0 || r.KeepTurns > r.MaxTurns {
		return ErrInvalidConfig
	}
	return nil
}

// Apply returns turns truncated according to the policy.
func (r Retention) Apply(turns []Turn) []Turn {
	if len(turns) <= r.MaxTurns {
		return turns
	}
	kept := make([]Turn, r.KeepTurns)
	copy(kept, turns[len(turns)-r.KeepTurns:])
	return kept
}
