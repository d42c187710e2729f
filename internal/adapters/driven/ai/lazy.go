package ai

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/custodia-labs/polidigest/internal/core/domain"
	"github.com/custodia-labs/polidigest/internal/core/ports/driven"
)

// Ensure LazyLLM implements the interface.
var _ driven.LLMService = (*LazyLLM)(nil)

// LazyLLM defers provider construction to the first call and then reuses the
// same service for the life of the process. Construction happens at most once;
// a construction error is returned by every later call.
type LazyLLM struct {
	settings domain.LLMSettings
	prompts  driven.PromptStore
	create   func(*domain.LLMSettings, driven.PromptStore) (driven.LLMService, error)

	once sync.Once
	svc  driven.LLMService
	err  error
}

// NewLazyLLM returns a handle for settings. It performs no I/O.
func NewLazyLLM(settings domain.LLMSettings, prompts driven.PromptStore) *LazyLLM {
	return &LazyLLM{
		settings: settings,
		prompts:  prompts,
		create:   CreateLLMService,
	}
}

func (l *LazyLLM) get() (driven.LLMService, error) {
	l.once.Do(func() {
		l.svc, l.err = l.create(&l.settings, l.prompts)
		if l.err == nil && l.svc == nil {
			l.err = fmt.Errorf("provider %q is not configured", l.settings.Provider)
		}
	})
	if l.err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, l.err)
	}
	return l.svc, nil
}

// Summarise builds the provider on first use and delegates to it.
func (l *LazyLLM) Summarise(ctx context.Context, content string, opts driven.SummariseOptions) (string, error) {
	svc, err := l.get()
	if err != nil {
		return "", err
	}
	return svc.Summarise(ctx, content, opts)
}

// ModelName returns the configured model without constructing the provider.
func (l *LazyLLM) ModelName() string {
	return l.settings.Model
}

// Ping builds the provider if needed and checks connectivity.
func (l *LazyLLM) Ping(ctx context.Context) error {
	svc, err := l.get()
	if err != nil {
		return err
	}
	return svc.Ping(ctx)
}

// Close releases the provider if it was built. A handle closed before first
// use never builds one.
func (l *LazyLLM) Close() error {
	l.once.Do(func() {
		l.err = errors.New("closed before first use")
	})
	if l.svc == nil {
		return nil
	}
	return l.svc.Close()
}
