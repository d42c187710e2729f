package services

import (
	"context"
	"errors"
	"sync"

	"github.com/custodia-labs/polidigest/internal/core/domain"
	"github.com/custodia-labs/polidigest/internal/core/ports/driven"
)

// --- Mock implementations ---

// fakeLLM implements driven.LLMService with a scripted responder.
type fakeLLM struct {
	mu      sync.Mutex
	calls   []fakeCall
	respond func(ctx context.Context, content string, opts driven.SummariseOptions) (string, error)
}

type fakeCall struct {
	Content string
	Opts    driven.SummariseOptions
}

func (f *fakeLLM) Summarise(ctx context.Context, content string, opts driven.SummariseOptions) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, fakeCall{Content: content, Opts: opts})
	f.mu.Unlock()

	if f.respond == nil {
		return "", errors.New("no responder")
	}
	return f.respond(ctx, content, opts)
}

func (f *fakeLLM) ModelName() string {
	return "fake"
}

func (f *fakeLLM) Ping(_ context.Context) error {
	return nil
}

func (f *fakeLLM) Close() error {
	return nil
}

// callsWhere returns the recorded calls matching pred.
func (f *fakeLLM) callsWhere(pred func(fakeCall) bool) []fakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []fakeCall
	for _, c := range f.calls {
		if pred(c) {
			out = append(out, c)
		}
	}
	return out
}

// plainCalls matches chunk and compression calls, which carry no instruction.
func plainCalls(c fakeCall) bool {
	return c.Opts.Instruction == ""
}

// blockUntilDone waits for the call deadline like a provider that hangs.
func blockUntilDone(ctx context.Context) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

// recordingMetrics implements driven.MetricsRecorder.
type recordingMetrics struct {
	mu       sync.Mutex
	calls    map[string]int
	analyses map[string]int
	scores   []int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{
		calls:    make(map[string]int),
		analyses: make(map[string]int),
	}
}

func (m *recordingMetrics) LLMCall(stage, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[stage+"/"+outcome]++
}

func (m *recordingMetrics) StageDuration(_ string, _ float64) {}

func (m *recordingMetrics) Analysis(outcome string, score int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.analyses[outcome]++
	m.scores = append(m.scores, score)
}

func (m *recordingMetrics) callCount(stage, outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[stage+"/"+outcome]
}

// mockPromptStore implements driven.PromptStore.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	p, ok := m.prompts[name]
	if !ok {
		return "", errors.New("not found")
	}
	return p, nil
}

func (m *mockPromptStore) Reload() {}

// mockValidator implements driven.AIConfigValidator.
type mockValidator struct {
	err  error
	seen *domain.LLMSettings
}

func (m *mockValidator) ValidateLLM(config *domain.LLMSettings) error {
	m.seen = config
	return m.err
}

// panickyExtractor implements driven.EntityExtractor and always panics.
type panickyExtractor struct{}

func (panickyExtractor) Extract(string) domain.Entities {
	panic("extractor exploded")
}
