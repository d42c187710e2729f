package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/custodia-labs/polidigest/internal/core/domain"
	"github.com/custodia-labs/polidigest/internal/core/ports/driven"
	"github.com/custodia-labs/polidigest/internal/core/ports/driving"
	"github.com/custodia-labs/polidigest/internal/logger"
	"github.com/custodia-labs/polidigest/internal/normalisers/canonical"
)

// Ensure AnalysisService implements the interface.
var _ driving.AnalysisService = (*AnalysisService)(nil)

// AnalysisService runs one raw document through the whole pipeline.
// The summariser is optional: without a configured LLM the result carries
// entities and compliance only.
type AnalysisService struct {
	registry   driven.NormaliserRegistry
	chunker    driven.PostProcessorPipeline
	detector   driven.SectionDetector
	summariser *Summariser
	extractor  driven.EntityExtractor
	scorer     driven.ComplianceScorer
	metrics    driven.MetricsRecorder
	settings   domain.AppSettings
}

// NewAnalysisService creates a new analysis service.
// The summariser parameter is optional (can be nil).
func NewAnalysisService(
	registry driven.NormaliserRegistry,
	chunker driven.PostProcessorPipeline,
	detector driven.SectionDetector,
	summariser *Summariser,
	extractor driven.EntityExtractor,
	scorer driven.ComplianceScorer,
	settings domain.AppSettings,
) *AnalysisService {
	return &AnalysisService{
		registry:   registry,
		chunker:    chunker,
		detector:   detector,
		summariser: summariser,
		extractor:  extractor,
		scorer:     scorer,
		metrics:    noopMetrics{},
		settings:   settings,
	}
}

// SetMetrics sets the recorder that receives analysis outcomes.
func (s *AnalysisService) SetMetrics(m driven.MetricsRecorder) {
	if m != nil {
		s.metrics = m
	}
}

// Analyse normalises, chunks, summarises and scores raw.
// Panics inside the pipeline are reported as ErrUnexpected.
func (s *AnalysisService) Analyse(ctx context.Context, raw *domain.RawDocument) (result *domain.AnalysisResult) {
	start := time.Now()
	id := uuid.NewString()
	uri := ""
	if raw != nil {
		uri = raw.URI
	}
	log := logger.With("analysis", id)

	defer func() {
		if r := recover(); r != nil {
			log.Errorf("analysis panicked: %v", r)
			result = s.fail(id, uri, fmt.Errorf("%w: %v", domain.ErrUnexpected, r))
		}
	}()

	logger.Section("Analysis")
	log.Debugf("Analysing %s", uri)

	doc, err := s.prepare(ctx, id, raw, s.settings.Pipeline.MinInputLength)
	if err != nil {
		log.Warnf("analysis rejected: %v", err)
		return s.fail(id, uri, err)
	}

	var summary *domain.SummaryResult
	if s.summariser.Available() {
		chunks, err := s.chunker.Process(ctx, doc)
		if err != nil {
			return s.fail(id, uri, unexpected(err))
		}
		spans := s.detector.Detect(doc.Content)
		log.Debugf("%d chunks, %d sections", len(chunks), len(spans))

		summary, err = s.summariser.Summarise(ctx, doc, chunks, spans)
		if err != nil {
			log.Warnf("summarisation failed: %v", err)
			return s.fail(id, uri, err)
		}
	} else {
		log.Infof("No LLM configured, skipping summarisation")
	}

	analysed := doc.Content
	if summary != nil {
		analysed = summary.Text
	}
	entities := s.extractor.Extract(analysed)
	if summary != nil {
		entities.Merge(s.extractor.Extract(doc.Content))
	}
	report := s.scorer.Score(analysed)

	result = &domain.AnalysisResult{
		ID:         id,
		URI:        uri,
		Success:    true,
		Summary:    summary,
		Entities:   entities,
		Compliance: report,
		Metrics: domain.AnalysisMetrics{
			OriginalWords: doc.WordCount(),
			Duration:      time.Since(start),
		},
	}
	if summary != nil {
		result.Metrics.SummaryWords = summary.WordCount
		result.Metrics.SummaryLength = utf8.RuneCountInString(summary.Text)
		result.Metrics.Chunks = summary.ChunkCount
		result.Metrics.ChunkFallbacks = summary.ChunkFallbacks
		result.Metrics.Readability = summary.Readability
	}

	s.metrics.Analysis(driven.OutcomeOK, report.Score)
	log.Infof("Analysis done in %s: %d entities, compliance %d (%s)",
		result.Metrics.Duration, len(entities), report.Score, report.Status)
	return result
}

// ExtractEntities runs only the entity extractor over the canonical text.
func (s *AnalysisService) ExtractEntities(ctx context.Context, raw *domain.RawDocument) (domain.Entities, error) {
	doc, err := s.prepare(ctx, uuid.NewString(), raw, 1)
	if err != nil {
		return nil, err
	}
	return s.extractor.Extract(doc.Content), nil
}

// CheckCompliance runs only the compliance scorer over the canonical text.
func (s *AnalysisService) CheckCompliance(ctx context.Context, raw *domain.RawDocument) (*domain.ComplianceReport, error) {
	doc, err := s.prepare(ctx, uuid.NewString(), raw, 1)
	if err != nil {
		return nil, err
	}
	return s.scorer.Score(doc.Content), nil
}

// Status reports the configuration the service runs with.
func (s *AnalysisService) Status() domain.AgentStatus {
	status := domain.AgentStatus{
		Ready:            s.summariser.Available(),
		TargetWords:      s.settings.Pipeline.TargetWords,
		GlobalTimeout:    s.settings.Pipeline.GlobalTimeout,
		SupportedFormats: domain.SupportedDeclaredTypes(),
	}
	if s.settings.LLM.IsConfigured() {
		status.Provider = s.settings.LLM.Provider
		status.Model = s.settings.LLM.Model
	}
	return status
}

// prepare extracts and canonicalises raw. Extracted text shorter than
// minLen characters is a precondition failure.
func (s *AnalysisService) prepare(
	ctx context.Context, id string, raw *domain.RawDocument, minLen int,
) (*domain.Document, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: no document", domain.ErrPrecondition)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := s.registry.Normalise(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("extract text from %s: %w", raw.URI, err)
	}

	extracted := strings.TrimSpace(res.Document.Content)
	if n := utf8.RuneCountInString(extracted); n == 0 || n < minLen {
		return nil, fmt.Errorf("%w: document appears empty (%d characters, need %d)", domain.ErrPrecondition, n, minLen)
	}

	doc := res.Document
	doc.ID = id
	doc.Content = canonical.Normalise(extracted)
	logger.Debug("Canonical text: %d words", doc.WordCount())
	return &doc, nil
}

// fail builds a failure result and records it.
func (s *AnalysisService) fail(id, uri string, err error) *domain.AnalysisResult {
	outcome := driven.OutcomeFailed
	if domain.KindOf(err) == domain.ErrorKindCapabilityTimeout {
		outcome = driven.OutcomeTimeout
	}
	s.metrics.Analysis(outcome, 0)
	return domain.Failed(id, uri, err)
}

// unexpected marks err as ErrUnexpected unless it already carries a kind.
func unexpected(err error) error {
	if domain.KindOf(err) != domain.ErrorKindUnexpected || errors.Is(err, domain.ErrUnexpected) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrUnexpected, err)
}
