package pipeline

import (
	"context"

	"github.com/ZanzyTHEbar/hybridchat/hchat/config"
	"github.com/ZanzyTHEbar/hybridchat/hchat/escalation"
	"github.com/ZanzyTHEbar/hybridchat/hchat/fallback"
	"github.com/ZanzyTHEbar/hybridchat/hchat/intent"
	"github.com/ZanzyTHEbar/hybridchat/hchat/learning"
	"github.com/ZanzyTHEbar/hybridchat/hchat/pipeline/adapters"
	ports "github.com/ZanzyTHEbar/hybridchat/hchat/pipeline/ports"
	"github.com/ZanzyTHEbar/hybridchat/hchat/session"
	"github.com/rs/zerolog"
)

// Factory creates and wires pipeline components from configuration.
type Factory struct {
	cfg    *config.Config
	logger zerolog.Logger
}

// NewFactory creates a new pipeline factory.
func NewFactory(cfg *config.Config, logger zerolog.Logger) *Factory {
	return &Factory{cfg: cfg, logger: logger}
}

// CreateOrchestrator wires every stage. repo and artifacts may be nil, in
// which case the learned or classifier stage is skipped.
func (f *Factory) CreateOrchestrator(store session.Store, repo learning.Repository, artifacts *intent.Artifacts) *Orchestrator {
	stages := Stages{
		Escalation: escalation.NewDetector(f.cfg.Escalation.Keywords, f.cfg.Escalation.Response),
		Generator:  f.CreateGenerator(),
	}
	if repo != nil {
		stages.Learned = learning.NewMatcher(repo, f.logger,
			learning.WithThreshold(f.cfg.Learned.Threshold),
			learning.WithDegradeOnError(f.cfg.Learned.DegradeOnError),
		)
	}
	if artifacts != nil {
		stages.Classifier = intent.NewAdapter(artifacts, nil, f.logger)
	}

	return NewOrchestrator(
		store,
		stages,
		NewCanned(f.cfg.Canned.Responses, nil),
		f.createTracer(),
		f.logger,
	)
}

// CreateGenerator builds the remote fallback client with its cache and limiter.
func (f *Factory) CreateGenerator() *fallback.Client {
	fc := f.cfg.Fallback
	return fallback.NewClient(
		fallback.Config{
			Enabled:      fc.Enabled,
			URL:          fc.URL,
			Token:        fc.Token,
			Timeout:      fc.Timeout,
			Retries:      fc.Retries,
			RetryBackoff: fc.RetryBackoff,
		},
		f.logger,
		fallback.WithCache(f.createCache(), fc.CacheTTLSeconds),
		fallback.WithRateLimiter(f.createRateLimiter()),
	)
}

func (f *Factory) createCache() ports.Cache {
	if !f.cfg.Fallback.CacheEnabled {
		return &noOpCache{}
	}
	return adapters.NewLRUCache(f.cfg.Fallback.CacheCapacity)
}

func (f *Factory) createRateLimiter() ports.RateLimiter {
	if !f.cfg.Fallback.RateLimitEnabled {
		return &noOpRateLimiter{}
	}
	return adapters.NewTokenBucket(f.cfg.Fallback.RateLimitCapacity, f.cfg.Fallback.RateLimitRefillRate)
}

func (f *Factory) createTracer() ports.Tracer {
	if !f.cfg.Log.Tracing {
		return &noOpTracer{}
	}
	return adapters.NewZerologTracer(f.logger)
}

// noOpCache implements Cache with no-op behavior for a disabled cache.
type noOpCache struct{}

func (c *noOpCache) Get(ctx context.Context, key string) ([]byte, bool) { return nil, false }
func (c *noOpCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	return nil
}
func (c *noOpCache) Delete(ctx context.Context, key string) error { return nil }

// noOpRateLimiter implements RateLimiter with no-op behavior.
type noOpRateLimiter struct{}

func (r *noOpRateLimiter) Acquire(ctx context.Context, key string) (release func(), err error) {
	return func() {}, nil
}

// noOpTracer implements Tracer with no-op behavior.
type noOpTracer struct{}

func (t *noOpTracer) StartSpan(ctx context.Context, name string, attrs map[string]any) (context.Context, func(err error)) {
	return ctx, func(err error) {}
}

func (t *noOpTracer) Event(ctx context.Context, name string, attrs map[string]any) {}

var (
	_ ports.Cache       = (*noOpCache)(nil)
	_ ports.RateLimiter = (*noOpRateLimiter)(nil)
	_ ports.Tracer      = (*noOpTracer)(nil)
)
