package pipelineports

import "context"

// RateLimiter throttles calls to remote services.
type RateLimiter interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}
