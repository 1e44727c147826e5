// Package chat handles one chat exchange: reply, session bookkeeping and
// persistence of the exchange or of a taught answer.
package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/ZanzyTHEbar/hybridchat/hchat/learning"
	"github.com/ZanzyTHEbar/hybridchat/hchat/session"
	"github.com/ZanzyTHEbar/hybridchat/hchat/text"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SessionPrefix starts every generated session id.
const SessionPrefix = "session_"

// Responder produces a reply and records the turn in the session.
type Responder interface {
	GenerateResponse(ctx context.Context, input, sessionID string) (string, error)
}

// Request is one incoming chat message.
type Request struct {
	SessionID     string `json:"session_id,omitempty"`
	Message       string `json:"message"`
	TeachResponse string `json:"teach_response,omitempty"`
}

// Reply is the answer to a Request. History is omitted for teach requests.
type Reply struct {
	Response  string         `json:"response"`
	SessionID string         `json:"session_id"`
	History   []session.Turn `json:"history,omitempty"`
}

// Service runs chat exchanges.
type Service struct {
	responder Responder
	store     session.Store
	repo      learning.Repository
	newID     func() string
	now       func() time.Time
	logger    zerolog.Logger
}

// NewService creates a chat service.
func NewService(responder Responder, store session.Store, repo learning.Repository, logger zerolog.Logger) *Service {
	return &Service{
		responder: responder,
		store:     store,
		repo:      repo,
		newID:     newSessionID,
		now:       time.Now,
		logger:    logger.With().Str("component", "chat").Logger(),
	}
}

func newSessionID() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return SessionPrefix + id.String()
}

// Chat answers req. A taught answer is stored as a learned entry and
// acknowledged; otherwise the exchange is logged and the reply carries the
// session history as stored after this turn.
func (s *Service) Chat(ctx context.Context, req Request) (*Reply, error) {
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = s.newID()
	}

	message := text.Normalize(req.Message)

	response, err := s.responder.GenerateResponse(ctx, message, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate response: %w", err)
	}

	entry := learning.Entry{
		SessionID:   sessionID,
		UserMessage: message,
		BotResponse: response,
		Timestamp:   s.now(),
	}

	if req.TeachResponse != "" {
		entry.BotResponse = req.TeachResponse
		entry.Learned = true
		if err := s.repo.Record(ctx, entry); err != nil {
			return nil, fmt.Errorf("failed to store taught response: %w", err)
		}
		s.logger.Info().Str("session_id", sessionID).Msg("Learned new response")
		return &Reply{
			Response:  "Got it! I learned: " + req.TeachResponse,
			SessionID: sessionID,
		}, nil
	}

	if err := s.repo.Record(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to log chat: %w", err)
	}

	// Read back what the store retained so the echo honors its retention.
	history, err := s.store.History(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to read session history: %w", err)
	}
	return &Reply{
		Response:  response,
		SessionID: sessionID,
		History:   history,
	}, nil
}

// History returns a session's turns, oldest first.
func (s *Service) History(ctx context.Context, sessionID string) ([]session.Turn, error) {
	return s.store.History(ctx, sessionID)
}
