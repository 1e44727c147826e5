package intent

import (
	"context"
	"math/rand/v2"

	"github.com/rs/zerolog"
)

// Picker returns an index in [0, n).
type Picker func(n int) int

// Adapter turns a classifier prediction into one of the intent's replies.
type Adapter struct {
	artifacts *Artifacts
	pick      Picker
	logger    zerolog.Logger
}

// NewAdapter creates an adapter over loaded artifacts. A nil picker selects
// uniformly at random.
func NewAdapter(artifacts *Artifacts, pick Picker, logger zerolog.Logger) *Adapter {
	if pick == nil {
		pick = rand.IntN
	}
	return &Adapter{
		artifacts: artifacts,
		pick:      pick,
		logger:    logger.With().Str("component", "intent_adapter").Logger(),
	}
}

// Classify predicts the input's intent and returns a random reply for it.
// Prediction failures and unknown tags yield ok=false; they are logged,
// never returned.
func (a *Adapter) Classify(ctx context.Context, input string) (string, bool) {
	if a.artifacts == nil || a.artifacts.Predictor == nil {
		return "", false
	}

	result, err := a.artifacts.Predictor.Predict(ctx, input)
	if err != nil {
		a.logger.Error().Err(err).Msg("Intent prediction failed")
		return "", false
	}

	responses, err := a.artifacts.Table.Responses(result.Tag)
	if err != nil {
		a.logger.Warn().Str("tag", result.Tag).Msg("Predicted tag has no intent definition")
		return "", false
	}
	if len(responses) == 0 {
		return "", false
	}

	a.logger.Debug().
		Str("tag", result.Tag).
		Float32("confidence", result.Confidence).
		Msg("Intent classified")
	return responses[a.pick(len(responses))], true
}
