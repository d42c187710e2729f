package driving

import (
	"context"

	"github.com/custodia-labs/polidigest/internal/core/domain"
)

// AnalysisService runs the policy document pipeline.
type AnalysisService interface {
	// Analyse normalises, summarises and scores a raw document.
	// It never returns a nil result; failures are reported in-band with
	// Success=false and an ErrorKind.
	Analyse(ctx context.Context, raw *domain.RawDocument) *domain.AnalysisResult

	// ExtractEntities runs only the entity extractor over the document text.
	// No summarisation capability is needed.
	ExtractEntities(ctx context.Context, raw *domain.RawDocument) (domain.Entities, error)

	// CheckCompliance runs only the compliance scorer over the document text.
	CheckCompliance(ctx context.Context, raw *domain.RawDocument) (*domain.ComplianceReport, error)

	// Status reports the configuration the service runs with.
	Status() domain.AgentStatus
}
