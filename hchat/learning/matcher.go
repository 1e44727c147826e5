package learning

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// DefaultThreshold is the minimum Ratio for a learned answer to be used.
const DefaultThreshold = 0.6

// Matcher finds the taught answer whose question best resembles the input.
type Matcher struct {
	repo      Repository
	threshold float64
	degrade   bool
	logger    zerolog.Logger
}

// MatcherOption configures a Matcher.
type MatcherOption func(*Matcher)

// WithThreshold overrides DefaultThreshold.
func WithThreshold(threshold float64) MatcherOption {
	return func(m *Matcher) {
		m.threshold = threshold
	}
}

// WithDegradeOnError makes repository failures count as "no match" instead
// of being returned to the caller.
func WithDegradeOnError(degrade bool) MatcherOption {
	return func(m *Matcher) {
		m.degrade = degrade
	}
}

// NewMatcher creates a Matcher reading from repo.
func NewMatcher(repo Repository, logger zerolog.Logger, opts ...MatcherOption) *Matcher {
	m := &Matcher{
		repo:      repo,
		threshold: DefaultThreshold,
		logger:    logger.With().Str("component", "learned_matcher").Logger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Match scans every learned entry and returns the best-scoring response when
// its score reaches the threshold. The first entry reaching the best score
// wins. input must already be normalized.
func (m *Matcher) Match(ctx context.Context, input string) (string, bool, error) {
	entries, err := m.repo.ListLearned(ctx)
	if err != nil {
		if m.degrade {
			m.logger.Warn().Err(err).Msg("Learned store unavailable, skipping learned answers")
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to load learned entries: %w", err)
	}

	var (
		bestScore    float64
		bestResponse string
		found        bool
	)
	for _, entry := range entries {
		score := Ratio(input, strings.ToLower(entry.UserMessage))
		if score > bestScore {
			bestScore = score
			bestResponse = entry.BotResponse
			found = true
		}
	}

	if !found || bestScore < m.threshold {
		return "", false, nil
	}

	m.logger.Debug().Float64("score", bestScore).Int("candidates", len(entries)).Msg("Learned answer matched")
	return bestResponse, true, nil
}
