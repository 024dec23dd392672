package ai

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ThrottledClient bounds completions with a token bucket and a weighted
// semaphore owned by the caller. Callers queue instead of being rejected.
type ThrottledClient struct {
	next    Client
	sem     *semaphore.Weighted
	limiter *rate.Limiter
}

// NewThrottledClient оборачивает клиента ограничением частоты и числа
// одновременных запросов.
func NewThrottledClient(next Client, maxConcurrent int64, perMinute, burst int) *ThrottledClient {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	var limiter *rate.Limiter
	if perMinute > 0 {
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(float64(perMinute)/60), burst)
	}

	return &ThrottledClient{
		next:    next,
		sem:     semaphore.NewWeighted(maxConcurrent),
		limiter: limiter,
	}
}

// Complete ждет своей очереди и передает запрос дальше.
func (c *ThrottledClient) Complete(ctx context.Context, req CompletionRequest) (Completion, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return Completion{}, fmt.Errorf("ai rate limit: %w", err)
		}
	}

	if err := c.sem.Acquire(ctx, 1); err != nil {
		return Completion{}, fmt.Errorf("ai concurrency limit: %w", err)
	}
	defer c.sem.Release(1)

	return c.next.Complete(ctx, req)
}
