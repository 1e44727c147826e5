package intent

import (
	"context"
	"fmt"
	"sync"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
)

// HugotPredictor classifies with a HuggingFace text-classification model
// exported to ONNX, run through a pure-Go hugot session. Labels come from
// the model's id2label mapping and must match intent tags.
type HugotPredictor struct {
	session  *hugot.Session
	pipeline *pipelines.TextClassificationPipeline
	mu       sync.Mutex
}

var _ Predictor = (*HugotPredictor)(nil)

// NewHugotPredictor loads the model directory (model.onnx plus tokenizer.json).
func NewHugotPredictor(modelPath string) (*HugotPredictor, error) {
	if modelPath == "" {
		return nil, fmt.Errorf("hugot model path is required")
	}

	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create hugot session: %w", err)
	}

	config := hugot.TextClassificationConfig{
		ModelPath: modelPath,
		Name:      "intent-classifier",
	}
	pipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		session.Destroy()
		return nil, fmt.Errorf("failed to create text classification pipeline: %w", err)
	}

	return &HugotPredictor{session: session, pipeline: pipeline}, nil
}

// Predict returns the top-scoring label.
func (p *HugotPredictor) Predict(ctx context.Context, text string) (ClassifierResult, error) {
	if err := ctx.Err(); err != nil {
		return ClassifierResult{}, err
	}

	p.mu.Lock()
	out, err := p.pipeline.RunPipeline([]string{text})
	p.mu.Unlock()
	if err != nil {
		return ClassifierResult{}, fmt.Errorf("hugot inference failed: %w", err)
	}
	if len(out.ClassificationOutputs) == 0 || len(out.ClassificationOutputs[0]) == 0 {
		return ClassifierResult{}, fmt.Errorf("hugot returned no classification")
	}

	best := out.ClassificationOutputs[0][0]
	for _, c := range out.ClassificationOutputs[0][1:] {
		if c.Score > best.Score {
			best = c
		}
	}
	return ClassifierResult{Tag: best.Label, Confidence: best.Score}, nil
}

// Close releases the hugot session.
func (p *HugotPredictor) Close() error {
	return p.session.Destroy()
}
