// Package pipelineports declares the seams between the response pipeline
// and the components that back each of its stages.
package pipelineports

import "context"

// LearnedMatcher answers from taught question/answer pairs. Errors mean the
// learned store could not be read.
type LearnedMatcher interface {
	Match(ctx context.Context, input string) (response string, ok bool, err error)
}

// IntentClassifier answers from the trained intent model. It never fails;
// problems surface as ok=false.
type IntentClassifier interface {
	Classify(ctx context.Context, input string) (response string, ok bool)
}

// EscalationDetector answers requests for a human.
type EscalationDetector interface {
	Detect(input string) (response string, ok bool)
}

// Generator answers from a remote text-generation service.
type Generator interface {
	Generate(ctx context.Context, input string) (response string, ok bool)
}
