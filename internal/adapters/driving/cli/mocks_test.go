package cli

import (
	"context"
	"time"

	"github.com/spf13/pflag"

	"github.com/custodia-labs/polidigest/internal/core/domain"
)

// --- Mock implementations ---

// mockAnalysisService implements driving.AnalysisService.
type mockAnalysisService struct {
	result   *domain.AnalysisResult
	entities domain.Entities
	report   *domain.ComplianceReport
	err      error

	analysed []*domain.RawDocument
}

func (m *mockAnalysisService) Analyse(_ context.Context, raw *domain.RawDocument) *domain.AnalysisResult {
	m.analysed = append(m.analysed, raw)
	if m.result != nil {
		r := *m.result
		r.URI = raw.URI
		return &r
	}
	return &domain.AnalysisResult{
		ID:       "an-test",
		URI:      raw.URI,
		Success:  true,
		Entities: domain.Entities{domain.EntityPolicyNumber: "POL-2024-9981"},
		Compliance: &domain.ComplianceReport{
			SectionPresence: []domain.ClauseCheck{{Name: "coverage", Present: true}},
			Score:           100,
			Status:          domain.StatusCompliant,
			Recommendations: []string{"Policy appears comprehensive"},
		},
		Metrics: domain.AnalysisMetrics{OriginalWords: 120, Duration: time.Second},
	}
}

func (m *mockAnalysisService) ExtractEntities(_ context.Context, raw *domain.RawDocument) (domain.Entities, error) {
	m.analysed = append(m.analysed, raw)
	return m.entities, m.err
}

func (m *mockAnalysisService) CheckCompliance(_ context.Context, raw *domain.RawDocument) (*domain.ComplianceReport, error) {
	m.analysed = append(m.analysed, raw)
	return m.report, m.err
}

func (m *mockAnalysisService) Status() domain.AgentStatus {
	return domain.AgentStatus{
		Ready:            false,
		TargetWords:      500,
		GlobalTimeout:    30 * time.Second,
		SupportedFormats: domain.SupportedDeclaredTypes(),
	}
}

// mockSettingsService implements driving.SettingsService over an in-memory value.
type mockSettingsService struct {
	settings    domain.AppSettings
	validateErr error
	pingErr     error
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultAppSettings()}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	m.settings.LLM = domain.LLMSettings{Provider: provider, Model: model, APIKey: apiKey}
	return nil
}

func (m *mockSettingsService) SetPipeline(pipeline domain.PipelineSettings) error {
	if err := pipeline.Validate(); err != nil {
		return err
	}
	m.settings.Pipeline = pipeline
	return nil
}

func (m *mockSettingsService) Validate() error {
	return m.validateErr
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (m *mockSettingsService) ValidateLLMConfig() error {
	return m.pingErr
}

// setupTestServices installs mocks and returns a function restoring the previous state.
func setupTestServices() (*mockAnalysisService, *mockSettingsService, func()) {
	oldAnalysis, oldSettings, oldMetrics, oldWire := analysisService, settingsService, metricsHandler, wire

	analysis := &mockAnalysisService{}
	settings := newMockSettingsService()
	analysisService = analysis
	settingsService = settings
	metricsHandler = nil
	wire = nil

	return analysis, settings, func() {
		analysisService, settingsService, metricsHandler, wire = oldAnalysis, oldSettings, oldMetrics, oldWire
		outputJSON = false
		declaredType = ""
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		settingsPipelineCmd.Flags().VisitAll(func(f *pflag.Flag) { f.Changed = false })
	}
}
