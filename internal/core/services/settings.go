package services

import (
	"fmt"
	"os"
	"time"

	"github.com/custodia-labs/polidigest/internal/core/domain"
	"github.com/custodia-labs/polidigest/internal/core/ports/driven"
	"github.com/custodia-labs/polidigest/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyLLMProvider          = "llm.provider"
	keyLLMModel             = "llm.model"
	keyLLMBaseURL           = "llm.base_url"
	keyLLMAPIKey            = "llm.api_key"
	keyLLMRequestsPerSecond = "llm.requests_per_second"

	keyTargetWords          = "pipeline.target_words"
	keyMinSummaryLength     = "pipeline.min_summary_length"
	keyMaxSummaryLength     = "pipeline.max_summary_length"
	keySectionSummaryLength = "pipeline.section_summary_length"
	keyChunkSize            = "pipeline.chunk_size"
	keyChunkOverlap         = "pipeline.chunk_overlap"
	keyMaxChunks            = "pipeline.max_chunks"
	keyMaxConcurrency       = "pipeline.max_concurrency"
	keyCallTimeout          = "pipeline.call_timeout_seconds"
	keyGlobalTimeout        = "pipeline.global_timeout_seconds"
	keyMinInputLength       = "pipeline.min_input_length"
	keyRelevanceKeywords    = "pipeline.relevance_keywords"
	keySectionTitles        = "pipeline.section_titles"
)

// Environment variables consulted when the config file leaves a value unset.
//
//nolint:gosec // G101: These are variable names, not actual credentials.
const (
	EnvLLMProvider  = "POLIDIGEST_LLM_PROVIDER"
	EnvLLMModel     = "POLIDIGEST_LLM_MODEL"
	EnvLLMBaseURL   = "POLIDIGEST_LLM_BASE_URL"
	EnvLLMAPIKey    = "POLIDIGEST_LLM_API_KEY"
	EnvOpenAIKey    = "OPENAI_API_KEY"
	EnvAnthropicKey = "ANTHROPIC_API_KEY"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()
	p := defaults.Pipeline

	settings := &domain.AppSettings{
		LLM: s.getLLM(),
		Pipeline: domain.PipelineSettings{
			TargetWords:          s.getInt(keyTargetWords, p.TargetWords),
			MinSummaryLength:     s.getInt(keyMinSummaryLength, p.MinSummaryLength),
			MaxSummaryLength:     s.getInt(keyMaxSummaryLength, p.MaxSummaryLength),
			SectionSummaryLength: s.getInt(keySectionSummaryLength, p.SectionSummaryLength),
			ChunkSize:            s.getInt(keyChunkSize, p.ChunkSize),
			ChunkOverlap:         s.getInt(keyChunkOverlap, p.ChunkOverlap),
			MaxChunks:            s.getInt(keyMaxChunks, p.MaxChunks),
			MaxConcurrency:       s.getInt(keyMaxConcurrency, p.MaxConcurrency),
			CallTimeout:          s.getSeconds(keyCallTimeout, p.CallTimeout),
			GlobalTimeout:        s.getSeconds(keyGlobalTimeout, p.GlobalTimeout),
			MinInputLength:       s.getInt(keyMinInputLength, p.MinInputLength),
			RelevanceKeywords:    s.getStrings(keyRelevanceKeywords, p.RelevanceKeywords),
			SectionTitles:        s.getStrings(keySectionTitles, p.SectionTitles),
		},
	}

	return settings, nil
}

// getLLM reads the LLM settings, using environment variables for values the
// config file leaves unset.
func (s *SettingsService) getLLM() domain.LLMSettings {
	provider := s.getProvider(keyLLMProvider, domain.AIProvider(s.getenv(EnvLLMProvider)))

	llm := domain.LLMSettings{
		Provider:          provider,
		Model:             s.getString(keyLLMModel, s.getenv(EnvLLMModel)),
		BaseURL:           s.getString(keyLLMBaseURL, s.getenv(EnvLLMBaseURL)),
		APIKey:            s.getString(keyLLMAPIKey, s.envAPIKey(provider)),
		RequestsPerSecond: s.configStore.GetFloat(keyLLMRequestsPerSecond),
	}
	if !llm.Provider.IsValid() {
		llm.Provider = ""
	}
	if llm.Model == "" && llm.Provider.IsValid() {
		llm.Model = domain.DefaultLLMModels()[llm.Provider]
	}
	return llm
}

// envAPIKey returns the provider-specific key variable, then the generic one.
func (s *SettingsService) envAPIKey(provider domain.AIProvider) string {
	var key string
	switch provider {
	case domain.AIProviderOpenAI:
		key = s.getenv(EnvOpenAIKey)
	case domain.AIProviderAnthropic:
		key = s.getenv(EnvAnthropicKey)
	}
	if key == "" {
		key = s.getenv(EnvLLMAPIKey)
	}
	return key
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	p := settings.Pipeline
	values := map[string]any{
		keyLLMProvider:          settings.LLM.Provider.String(),
		keyLLMModel:             settings.LLM.Model,
		keyLLMBaseURL:           settings.LLM.BaseURL,
		keyLLMRequestsPerSecond: settings.LLM.RequestsPerSecond,

		keyTargetWords:          p.TargetWords,
		keyMinSummaryLength:     p.MinSummaryLength,
		keyMaxSummaryLength:     p.MaxSummaryLength,
		keySectionSummaryLength: p.SectionSummaryLength,
		keyChunkSize:            p.ChunkSize,
		keyChunkOverlap:         p.ChunkOverlap,
		keyMaxChunks:            p.MaxChunks,
		keyMaxConcurrency:       p.MaxConcurrency,
		keyCallTimeout:          p.CallTimeout.Seconds(),
		keyGlobalTimeout:        p.GlobalTimeout.Seconds(),
		keyMinInputLength:       p.MinInputLength,
		keyRelevanceKeywords:    p.RelevanceKeywords,
		keySectionTitles:        p.SectionTitles,
	}
	if settings.LLM.APIKey != "" {
		values[keyLLMAPIKey] = settings.LLM.APIKey
	}

	if err := s.configStore.SetMany(values); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}

	// Validate API key if required
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider

	// Set model - use provided or default
	if model != "" {
		settings.LLM.Model = model
	} else {
		settings.LLM.Model = domain.DefaultLLMModels()[provider]
	}

	// Set base URL based on provider type
	if provider.IsLocal() {
		if settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = "http://localhost:11434"
		}
	} else {
		settings.LLM.BaseURL = ""
	}

	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// SetPipeline replaces the pipeline tunables after validating them.
func (s *SettingsService) SetPipeline(pipeline domain.PipelineSettings) error {
	if err := pipeline.Validate(); err != nil {
		return err
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.Pipeline = pipeline
	return s.Save(settings)
}

// Validate checks that the current settings are usable.
// An unconfigured LLM is valid: analysis then skips summarisation.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if err := settings.Pipeline.Validate(); err != nil {
		return err
	}

	if settings.LLM.Provider != "" && !settings.LLM.IsConfigured() {
		return fmt.Errorf("LLM provider %q requires an API key", settings.LLM.Provider)
	}
	if settings.LLM.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: llm.requests_per_second must not be negative", domain.ErrInvalidInput)
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getSeconds(key string, defaultVal time.Duration) time.Duration {
	secs := s.configStore.GetFloat(key)
	if secs <= 0 {
		return defaultVal
	}
	return time.Duration(secs * float64(time.Second))
}

// getStrings returns the configured list. A key set to an empty list yields
// an empty, non-nil slice so callers can disable list-driven behaviour.
func (s *SettingsService) getStrings(key string, defaultVal []string) []string {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	val := s.configStore.GetStringSlice(key)
	if val == nil {
		return []string{}
	}
	return val
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
