// Package ratelimit throttles calls to a summarisation provider with a token
// bucket, and backs off when the provider answers 429.
package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/polidigest/internal/adapters/driven/llm"
	"github.com/custodia-labs/polidigest/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// DefaultBackoff applies when a 429 carries no Retry-After header.
const DefaultBackoff = 30 * time.Second

// Config holds rate limiting configuration.
type Config struct {
	// RequestsPerSecond is the sustained rate limit.
	RequestsPerSecond float64

	// BurstSize is the maximum burst size. Defaults to 1.
	BurstSize int
}

// LLMService wraps another LLMService with a token bucket.
type LLMService struct {
	next    driven.LLMService
	limiter *rate.Limiter

	mu      sync.Mutex
	retryAt time.Time
	now     func() time.Time
}

// Wrap returns next throttled by cfg. A non-positive rate returns next unchanged.
func Wrap(next driven.LLMService, cfg Config) driven.LLMService {
	if next == nil || cfg.RequestsPerSecond <= 0 {
		return next
	}
	return New(next, cfg)
}

// New creates a throttled LLMService.
func New(next driven.LLMService, cfg Config) *LLMService {
	if cfg.BurstSize <= 0 {
		cfg.BurstSize = 1
	}
	return &LLMService{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
		now:     time.Now,
	}
}

// Summarise waits for a token, then delegates.
func (s *LLMService) Summarise(ctx context.Context, content string, opts driven.SummariseOptions) (string, error) {
	if err := s.wait(ctx); err != nil {
		return "", err
	}

	out, err := s.next.Summarise(ctx, content, opts)
	var statusErr *llm.StatusError
	if errors.As(err, &statusErr) && statusErr.RateLimited() {
		s.backoff(statusErr.RetryAfter)
	}
	return out, err
}

// wait blocks until the backoff window has passed and a token is available.
func (s *LLMService) wait(ctx context.Context) error {
	s.mu.Lock()
	retryAt := s.retryAt
	s.mu.Unlock()

	if delay := retryAt.Sub(s.now()); delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return s.limiter.Wait(ctx)
}

// backoff pushes the retry window out by d, or DefaultBackoff when d is zero.
func (s *LLMService) backoff(d time.Duration) {
	if d <= 0 {
		d = DefaultBackoff
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if until := s.now().Add(d); until.After(s.retryAt) {
		s.retryAt = until
	}
}

// ModelName returns the wrapped model name.
func (s *LLMService) ModelName() string {
	return s.next.ModelName()
}

// Ping is not throttled.
func (s *LLMService) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}

// Close closes the wrapped service.
func (s *LLMService) Close() error {
	return s.next.Close()
}
