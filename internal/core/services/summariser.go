package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/polidigest/internal/core/domain"
	"github.com/custodia-labs/polidigest/internal/core/ports/driven"
	"github.com/custodia-labs/polidigest/internal/logger"
)

// Pipeline stage labels used in logs and metrics.
const (
	stageChunk    = "chunk"
	stageCompress = "compress"
	stageRefine   = "refine"
	stageSection  = "section"
)

const (
	// recompressThreshold is the merged word count that triggers a second compression call.
	recompressThreshold = 600

	// excerptWords is the size of the verbatim fallback for a failed chunk.
	excerptWords = 100

	// passthroughChars is the chunk length below which no call is made.
	passthroughChars = 50

	// sectionExcerptChars is the size of the verbatim fallback for a failed section.
	sectionExcerptChars = 400
)

// Instructions used when no prompt store is configured.
const (
	defaultRefineInstruction  = "Rewrite this summary in a formal, academic tone. Keep every fact, figure and date unchanged:"
	defaultSectionInstruction = "Summarise the %s section of this insurance policy, focusing on obligations, limits and exclusions:"
)

// chunkOutcome is the result of one summarisation call.
// Fallback is set when Summary is a verbatim excerpt; Err then holds the cause.
type chunkOutcome struct {
	Summary  string
	Fallback bool
	Err      error
}

// SummariserOption configures a Summariser.
type SummariserOption func(*Summariser)

// WithPromptStore sets the store the refinement and section instructions are loaded from.
func WithPromptStore(store driven.PromptStore) SummariserOption {
	return func(s *Summariser) {
		s.prompts = store
	}
}

// WithMetrics sets the recorder that receives call outcomes and stage durations.
func WithMetrics(m driven.MetricsRecorder) SummariserOption {
	return func(s *Summariser) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithStateObserver registers a callback invoked on every state transition.
func WithStateObserver(fn func(domain.SummaryState)) SummariserOption {
	return func(s *Summariser) {
		s.observe = fn
	}
}

// Summariser reduces the chunks of one document to a structured summary
// using the summarisation capability. It is safe for concurrent use; every
// call to Summarise owns its own state.
type Summariser struct {
	llm      driven.LLMService
	prompts  driven.PromptStore
	metrics  driven.MetricsRecorder
	settings domain.PipelineSettings
	observe  func(domain.SummaryState)
}

// NewSummariser creates a summariser around llm.
func NewSummariser(llm driven.LLMService, settings domain.PipelineSettings, opts ...SummariserOption) *Summariser {
	s := &Summariser{
		llm:      llm,
		metrics:  noopMetrics{},
		settings: settings,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Available reports whether a summarisation capability is configured.
func (s *Summariser) Available() bool {
	return s != nil && s.llm != nil
}

// summaryRun tracks the state of one Summarise call.
type summaryRun struct {
	docID   string
	state   domain.SummaryState
	observe func(domain.SummaryState)
}

func (r *summaryRun) to(state domain.SummaryState) {
	logger.Debug("Summary %s: %s -> %s", r.docID, r.state, state)
	r.state = state
	if r.observe != nil {
		r.observe(state)
	}
}

// Summarise runs fan-out, merge, refinement, length adjustment and
// structuring over chunks, then summarises each detected section.
// A global deadline bounds fan-out and merge; exceeding it fails the whole
// call with ErrCapabilityTimeout. Individual call failures degrade to
// verbatim excerpts and never fail the call.
func (s *Summariser) Summarise(
	ctx context.Context, doc *domain.Document, chunks []domain.Chunk, sections []domain.SectionSpan,
) (*domain.SummaryResult, error) {
	start := time.Now()
	run := &summaryRun{docID: doc.ID, state: domain.SummaryStateExtracted, observe: s.observe}

	if s.llm == nil {
		run.to(domain.SummaryStateFailed)
		return nil, domain.ErrLLMUnavailable
	}
	if len(chunks) == 0 {
		run.to(domain.SummaryStateFailed)
		return nil, fmt.Errorf("%w: no chunks to summarise", domain.ErrPrecondition)
	}
	run.to(domain.SummaryStateChunked)

	logger.Section("Summarisation")
	logger.Debug("Chunks: %d, concurrency: %d, call timeout: %s, global timeout: %s",
		len(chunks), s.settings.MaxConcurrency, s.settings.CallTimeout, s.settings.GlobalTimeout)

	run.to(domain.SummaryStateSummarizing)
	merged, fallbacks, err := s.fanOut(ctx, chunks)
	if err != nil {
		run.to(domain.SummaryStateFailed)
		return nil, err
	}

	run.to(domain.SummaryStateRefining)
	refined := s.refine(ctx, merged)

	text := adjustLength(refined, s.settings.TargetWords)
	run.to(domain.SummaryStateLengthAdjusted)

	sentences := splitSentences(text)
	result := &domain.SummaryResult{
		Text:              text,
		WordCount:         domain.CountWords(text),
		OriginalWordCount: doc.WordCount(),
		Sections:          structure(sentences),
		KeyFindings:       keyFindings(sentences),
		PolicySections:    s.summariseSections(ctx, sections),
		ChunkCount:        len(chunks),
		ChunkFallbacks:    fallbacks,
		Readability:       readability(text),
	}
	result.Duration = time.Since(start)
	run.to(domain.SummaryStateDone)

	logger.Info("Summary: %d words from %d (%d chunk fallbacks) in %s",
		result.WordCount, result.OriginalWordCount, fallbacks, result.Duration)
	return result, nil
}

// fanOut summarises every chunk concurrently and merges the results in
// chunk order, compressing once more when the merge is still long.
func (s *Summariser) fanOut(ctx context.Context, chunks []domain.Chunk) (string, int, error) {
	begin := time.Now()
	defer func() {
		s.metrics.StageDuration("fan_out", time.Since(begin).Seconds())
	}()

	phaseCtx, cancel := context.WithTimeout(ctx, s.settings.GlobalTimeout)
	defer cancel()

	outcomes := make([]chunkOutcome, len(chunks))
	var g errgroup.Group
	g.SetLimit(s.settings.MaxConcurrency)
	for i := range chunks {
		g.Go(func() error {
			outcomes[i] = s.summariseChunk(phaseCtx, chunks[i].Content)
			return nil
		})
	}
	_ = g.Wait()

	if err := phaseCtx.Err(); err != nil {
		return "", 0, s.phaseError(ctx, err)
	}

	merged, fallbacks := mergeOutcomes(outcomes)
	logger.Debug("Merged %d chunk summaries into %d words", len(outcomes), domain.CountWords(merged))

	if words := domain.CountWords(merged); words > recompressThreshold {
		maxLen, minLen := chunkBudget(words)
		out := s.call(phaseCtx, stageCompress, merged,
			driven.SummariseOptions{MaxLength: maxLen, MinLength: minLen}, merged)
		if err := phaseCtx.Err(); err != nil {
			return "", 0, s.phaseError(ctx, err)
		}
		merged = out.Summary
	}

	return merged, fallbacks, nil
}

// phaseError reports why the fan-out phase stopped.
func (s *Summariser) phaseError(parent context.Context, err error) error {
	if parent.Err() != nil {
		return fmt.Errorf("summarisation cancelled: %w", parent.Err())
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: fan-out exceeded %s", domain.ErrCapabilityTimeout, s.settings.GlobalTimeout)
	}
	return fmt.Errorf("%w: %w", domain.ErrUnexpected, err)
}

// summariseChunk summarises one chunk. Chunks shorter than passthroughChars
// are returned unchanged.
func (s *Summariser) summariseChunk(ctx context.Context, text string) chunkOutcome {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < passthroughChars {
		return chunkOutcome{Summary: text}
	}
	maxLen, minLen := chunkBudget(domain.CountWords(text))
	return s.call(ctx, stageChunk, text,
		driven.SummariseOptions{MaxLength: maxLen, MinLength: minLen}, excerpt(text, excerptWords))
}

// refine applies the style pass. Any failure keeps text unchanged.
func (s *Summariser) refine(ctx context.Context, text string) string {
	out := s.call(ctx, stageRefine, text, driven.SummariseOptions{
		MaxLength:   s.settings.MaxSummaryLength,
		MinLength:   s.settings.MinSummaryLength,
		Instruction: s.instruction(driven.PromptRefineStyle, defaultRefineInstruction),
	}, text)
	return out.Summary
}

// summariseSections summarises each detected section. Failed sections keep
// an excerpt of their content and are flagged as fallbacks.
func (s *Summariser) summariseSections(ctx context.Context, spans []domain.SectionSpan) map[string]domain.SectionSummary {
	if len(spans) == 0 {
		return nil
	}

	begin := time.Now()
	outcomes := make([]chunkOutcome, len(spans))
	maxLen := s.settings.SectionSummaryLength
	minLen := min(60, maxLen/2)

	var g errgroup.Group
	g.SetLimit(s.settings.MaxConcurrency)
	for i := range spans {
		g.Go(func() error {
			span := spans[i]
			outcomes[i] = s.call(ctx, stageSection, span.Content, driven.SummariseOptions{
				MaxLength:   maxLen,
				MinLength:   minLen,
				Instruction: s.instruction(driven.PromptSectionSummary, defaultSectionInstruction, span.Title),
			}, sectionExcerpt(span.Content))
			return nil
		})
	}
	_ = g.Wait()
	s.metrics.StageDuration(stageSection, time.Since(begin).Seconds())

	summaries := make(map[string]domain.SectionSummary, len(spans))
	for i, span := range spans {
		if _, seen := summaries[span.Title]; seen {
			continue
		}
		summaries[span.Title] = domain.SectionSummary{
			Text:     outcomes[i].Summary,
			Fallback: outcomes[i].Fallback,
		}
	}
	return summaries
}

// call makes one bounded summarisation call. On error, timeout or an empty
// reply it returns fallback with Fallback set. A provider that ignores its
// context is abandoned when the call deadline passes.
func (s *Summariser) call(
	ctx context.Context, stage, text string, opts driven.SummariseOptions, fallback string,
) chunkOutcome {
	callCtx, cancel := context.WithTimeout(ctx, s.settings.CallTimeout)
	defer cancel()

	type reply struct {
		text string
		err  error
	}
	replies := make(chan reply, 1)
	begin := time.Now()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				replies <- reply{err: fmt.Errorf("%w: provider panic: %v", domain.ErrUnexpected, r)}
			}
		}()
		out, err := s.llm.Summarise(callCtx, text, opts)
		replies <- reply{text: out, err: err}
	}()

	var r reply
	select {
	case r = <-replies:
	case <-callCtx.Done():
		r.err = callCtx.Err()
	}
	s.metrics.StageDuration(stage, time.Since(begin).Seconds())

	summary := strings.TrimSpace(r.text)
	switch {
	case r.err != nil && (errors.Is(r.err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded)):
		s.metrics.LLMCall(stage, driven.OutcomeTimeout)
		logger.Debug("%s call timed out after %s, using fallback", stage, time.Since(begin))
		return chunkOutcome{Summary: fallback, Fallback: true, Err: fmt.Errorf("%w: %w", domain.ErrCapabilityTimeout, r.err)}
	case r.err != nil:
		s.metrics.LLMCall(stage, driven.OutcomeFailed)
		logger.Debug("%s call failed: %v, using fallback", stage, r.err)
		return chunkOutcome{Summary: fallback, Fallback: true, Err: fmt.Errorf("%w: %w", domain.ErrCapabilityFailure, r.err)}
	case summary == "":
		s.metrics.LLMCall(stage, driven.OutcomeFallback)
		logger.Debug("%s call returned nothing, using fallback", stage)
		return chunkOutcome{Summary: fallback, Fallback: true, Err: fmt.Errorf("%w: empty response", domain.ErrCapabilityFailure)}
	}

	s.metrics.LLMCall(stage, driven.OutcomeOK)
	return chunkOutcome{Summary: summary}
}

// instruction loads a prompt by name, falling back to def.
// Templates without a %s placeholder are used as-is.
func (s *Summariser) instruction(name, def string, args ...any) string {
	tmpl := def
	if s.prompts != nil {
		if p, err := s.prompts.Load(name); err == nil && strings.TrimSpace(p) != "" {
			tmpl = strings.TrimSpace(p)
		}
	}
	if len(args) == 0 || !strings.Contains(tmpl, "%s") {
		return tmpl
	}
	return fmt.Sprintf(tmpl, args...)
}

// chunkBudget returns the max and min summary length for a text of words words.
func chunkBudget(words int) (maxLen, minLen int) {
	maxLen = min(180, max(80, words/3))
	minLen = min(60, maxLen/2)
	return maxLen, minLen
}

// noopMetrics discards measurements when no recorder is configured.
type noopMetrics struct{}

func (noopMetrics) LLMCall(string, string) {}
func (noopMetrics) StageDuration(string, float64) {}
func (noopMetrics) Analysis(string, int) {}
