package intent

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"
)

// Backend selects the classifier implementation.
type Backend string

const (
	BackendSequence Backend = "sequence"
	BackendHugot    Backend = "hugot"
	BackendNone     Backend = "none"
)

// ArtifactConfig locates everything the classifier needs at startup.
type ArtifactConfig struct {
	Backend       Backend
	IntentsPath   string
	ModelPath     string
	TokenizerPath string
	LabelsPath    string
	MaxSeqLen     int
	HugotModel    string
}

// Artifacts is the immutable classifier context built once at startup.
type Artifacts struct {
	Table     *Table
	Predictor Predictor // nil when the backend is "none"
}

// LoadArtifacts reads every configured artifact concurrently. Any failure
// aborts startup.
func LoadArtifacts(ctx context.Context, cfg ArtifactConfig, logger zerolog.Logger) (*Artifacts, error) {
	if cfg.Backend == "" {
		cfg.Backend = BackendSequence
	}
	switch cfg.Backend {
	case BackendNone:
		logger.Info().Msg("Intent classifier disabled")
		return &Artifacts{Table: NewTable(nil)}, nil
	case BackendSequence, BackendHugot:
	default:
		return nil, fmt.Errorf("unknown classifier backend %q", cfg.Backend)
	}

	var (
		table     *Table
		tokenizer *Tokenizer
		model     *SequenceModel
		labels    Labels
		hugotPred *HugotPredictor
	)

	p := pool.New().WithErrors().WithContext(ctx)
	p.Go(func(context.Context) (err error) {
		table, err = LoadDefinitions(cfg.IntentsPath)
		return err
	})

	switch cfg.Backend {
	case BackendSequence:
		p.Go(func(context.Context) (err error) {
			tokenizer, err = LoadTokenizer(cfg.TokenizerPath)
			return err
		})
		p.Go(func(context.Context) (err error) {
			model, err = LoadModel(cfg.ModelPath)
			return err
		})
		p.Go(func(context.Context) (err error) {
			labels, err = LoadLabels(cfg.LabelsPath)
			return err
		})
	case BackendHugot:
		p.Go(func(context.Context) (err error) {
			hugotPred, err = NewHugotPredictor(cfg.HugotModel)
			return err
		})
	}

	if err := p.Wait(); err != nil {
		if hugotPred != nil {
			hugotPred.Close()
		}
		return nil, fmt.Errorf("failed to load classifier artifacts: %w", err)
	}

	a := &Artifacts{Table: table}
	switch cfg.Backend {
	case BackendSequence:
		pred, err := NewSequencePredictor(tokenizer, model, labels, cfg.MaxSeqLen)
		if err != nil {
			return nil, err
		}
		a.Predictor = pred
	case BackendHugot:
		a.Predictor = hugotPred
	}

	logger.Info().
		Str("backend", string(cfg.Backend)).
		Int("intents", table.Len()).
		Msg("Intent classifier artifacts loaded")
	return a, nil
}

// Close releases backend resources.
func (a *Artifacts) Close() error {
	if c, ok := a.Predictor.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
