// Package pipeline resolves a reply for a user message by trying each
// response strategy in a fixed order.
package pipeline

import (
	"context"
	"fmt"

	ports "github.com/ZanzyTHEbar/hybridchat/hchat/pipeline/ports"
	"github.com/ZanzyTHEbar/hybridchat/hchat/session"
	"github.com/rs/zerolog"
)

// Stage names the strategy that produced a reply.
type Stage int

const (
	StageNone Stage = iota
	StageLearned
	StageClassifier
	StageEscalation
	StageFallback
	StageCanned
)

func (s Stage) String() string {
	switch s {
	case StageLearned:
		return "learned"
	case StageClassifier:
		return "classifier"
	case StageEscalation:
		return "escalation"
	case StageFallback:
		return "fallback"
	case StageCanned:
		return "canned"
	default:
		return "none"
	}
}

// Resolution is a reply and the stage that produced it.
type Resolution struct {
	Text  string
	Stage Stage
}

// Stages are the optional strategies tried before the canned reply.
// A nil stage is skipped.
type Stages struct {
	Learned    ports.LearnedMatcher
	Classifier ports.IntentClassifier
	Escalation ports.EscalationDetector
	Generator  ports.Generator
}

// Orchestrator runs learned, classifier, escalation, fallback and canned in
// that order and stops at the first non-empty reply.
type Orchestrator struct {
	store  session.Store
	stages Stages
	canned *Canned
	tracer ports.Tracer
	logger zerolog.Logger
}

// NewOrchestrator creates an orchestrator. store is required; a nil canned
// uses the built-in replies and a nil tracer disables tracing.
func NewOrchestrator(
	store session.Store,
	stages Stages,
	canned *Canned,
	tracer ports.Tracer,
	logger zerolog.Logger,
) *Orchestrator {
	if canned == nil {
		canned = NewCanned(nil, nil)
	}
	if tracer == nil {
		tracer = &noOpTracer{}
	}
	return &Orchestrator{
		store:  store,
		stages: stages,
		canned: canned,
		tracer: tracer,
		logger: logger.With().Str("component", "orchestrator").Logger(),
	}
}

// GenerateResponse returns the reply for input. See Resolve.
func (o *Orchestrator) GenerateResponse(ctx context.Context, input, sessionID string) (string, error) {
	res, err := o.Resolve(ctx, input, sessionID)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

// Resolve finds a reply for the normalized input. With a non-empty
// sessionID exactly one turn is appended to that session; with an empty one
// session history is not touched. Only learned-store and session-store
// failures are returned.
func (o *Orchestrator) Resolve(ctx context.Context, input, sessionID string) (res Resolution, err error) {
	ctx, finish := o.tracer.StartSpan(ctx, "pipeline.resolve", map[string]any{
		"session_id": sessionID,
	})
	defer func() { finish(err) }()

	res, err = o.resolve(ctx, input)
	if err != nil {
		return Resolution{}, err
	}

	if sessionID != "" {
		if err := o.store.AppendTurn(ctx, sessionID, input, res.Text); err != nil {
			return Resolution{}, fmt.Errorf("failed to record session turn: %w", err)
		}
	}

	o.tracer.Event(ctx, "resolved", map[string]any{"stage": res.Stage.String()})
	return res, nil
}

func (o *Orchestrator) resolve(ctx context.Context, input string) (Resolution, error) {
	if m := o.stages.Learned; m != nil {
		resp, ok, err := m.Match(ctx, input)
		if err != nil {
			return Resolution{}, fmt.Errorf("learned stage: %w", err)
		}
		if ok && resp != "" {
			return Resolution{Text: resp, Stage: StageLearned}, nil
		}
		o.tracer.Event(ctx, "stage_miss", map[string]any{"stage": StageLearned.String()})
	}

	if c := o.stages.Classifier; c != nil {
		if resp, ok := c.Classify(ctx, input); ok && resp != "" {
			return Resolution{Text: resp, Stage: StageClassifier}, nil
		}
		o.tracer.Event(ctx, "stage_miss", map[string]any{"stage": StageClassifier.String()})
	}

	if d := o.stages.Escalation; d != nil {
		if resp, ok := d.Detect(input); ok && resp != "" {
			return Resolution{Text: resp, Stage: StageEscalation}, nil
		}
		o.tracer.Event(ctx, "stage_miss", map[string]any{"stage": StageEscalation.String()})
	}

	if g := o.stages.Generator; g != nil {
		if resp, ok := g.Generate(ctx, input); ok && resp != "" {
			return Resolution{Text: resp, Stage: StageFallback}, nil
		}
		o.tracer.Event(ctx, "stage_miss", map[string]any{"stage": StageFallback.String()})
	}

	return Resolution{Text: o.canned.Reply(), Stage: StageCanned}, nil
}
