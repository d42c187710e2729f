package mcp

import (
	"context"

	"github.com/custodia-labs/polidigest/internal/core/domain"
)

// mockAnalysisService is a mock implementation of driving.AnalysisService.
type mockAnalysisService struct {
	result   *domain.AnalysisResult
	entities domain.Entities
	report   *domain.ComplianceReport
	status   domain.AgentStatus
	err      error

	lastRaw *domain.RawDocument
}

func (m *mockAnalysisService) Analyse(_ context.Context, raw *domain.RawDocument) *domain.AnalysisResult {
	m.lastRaw = raw
	return m.result
}

func (m *mockAnalysisService) ExtractEntities(_ context.Context, raw *domain.RawDocument) (domain.Entities, error) {
	m.lastRaw = raw
	return m.entities, m.err
}

func (m *mockAnalysisService) CheckCompliance(_ context.Context, raw *domain.RawDocument) (*domain.ComplianceReport, error) {
	m.lastRaw = raw
	return m.report, m.err
}

func (m *mockAnalysisService) Status() domain.AgentStatus {
	return m.status
}
