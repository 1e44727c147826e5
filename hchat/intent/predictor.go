package intent

import (
	"context"
	"fmt"
)

// DefaultMaxSeqLen matches the sequence length the classifier was trained on.
const DefaultMaxSeqLen = 20

// ClassifierResult is the top prediction for one input.
type ClassifierResult struct {
	Tag        string
	Confidence float32
}

// Predictor is a classifier backend.
type Predictor interface {
	Predict(ctx context.Context, text string) (ClassifierResult, error)
}

// SequencePredictor classifies with a tokenizer, a sequence model and a
// label encoder exported from the training pipeline.
type SequencePredictor struct {
	tokenizer *Tokenizer
	model     *SequenceModel
	labels    Labels
	maxSeqLen int
}

var _ Predictor = (*SequencePredictor)(nil)

// NewSequencePredictor checks that the model emits one score per label.
func NewSequencePredictor(tokenizer *Tokenizer, model *SequenceModel, labels Labels, maxSeqLen int) (*SequencePredictor, error) {
	if tokenizer == nil || model == nil {
		return nil, fmt.Errorf("tokenizer and model are required")
	}
	if maxSeqLen <= 0 {
		maxSeqLen = DefaultMaxSeqLen
	}
	if got := model.OutputDim(); got != len(labels) {
		return nil, fmt.Errorf("model emits %d classes but %d labels are defined", got, len(labels))
	}
	return &SequencePredictor{
		tokenizer: tokenizer,
		model:     model,
		labels:    labels,
		maxSeqLen: maxSeqLen,
	}, nil
}

// Predict runs tokenize, pad, forward pass and arg-max.
func (p *SequencePredictor) Predict(ctx context.Context, text string) (ClassifierResult, error) {
	if err := ctx.Err(); err != nil {
		return ClassifierResult{}, err
	}

	ids := Pad(p.tokenizer.Sequence(text), p.maxSeqLen)
	scores, err := p.model.Predict(ids)
	if err != nil {
		return ClassifierResult{}, fmt.Errorf("sequence model inference failed: %w", err)
	}

	best := argmax(scores)
	tag, err := p.labels.Tag(best)
	if err != nil {
		return ClassifierResult{}, err
	}
	return ClassifierResult{Tag: tag, Confidence: float32(scores[best])}, nil
}
