package domain

import (
	"fmt"
	"time"
)

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for summarisation.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string

	// RequestsPerSecond throttles outbound calls. Zero disables throttling.
	RequestsPerSecond float64
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// PipelineSettings holds the tunables of the document pipeline.
type PipelineSettings struct {
	// TargetWords is the desired final summary length in words.
	TargetWords int

	// MinSummaryLength and MaxSummaryLength bound the style refinement call.
	MinSummaryLength int
	MaxSummaryLength int

	// SectionSummaryLength is the length budget for per-section summaries.
	SectionSummaryLength int

	// ChunkSize is the chunk window in words.
	ChunkSize int

	// ChunkOverlap is the number of words shared by consecutive chunks.
	ChunkOverlap int

	// MaxChunks caps the number of chunks submitted to the summariser.
	MaxChunks int

	// MaxConcurrency bounds simultaneous summarisation calls.
	MaxConcurrency int

	// CallTimeout bounds one summarisation call.
	CallTimeout time.Duration

	// GlobalTimeout bounds the fan-out and merge phase of one document.
	GlobalTimeout time.Duration

	// MinInputLength is the minimum extracted text length in characters.
	MinInputLength int

	// RelevanceKeywords drive the chunker's start-of-content heuristic.
	RelevanceKeywords []string

	// SectionTitles is the closed set of clause headings to detect.
	SectionTitles []string
}

// Validate checks that the tunables describe a runnable pipeline.
func (p PipelineSettings) Validate() error {
	switch {
	case p.TargetWords <= 0:
		return fmt.Errorf("%w: target_words must be positive", ErrInvalidInput)
	case p.MinSummaryLength <= 0 || p.MaxSummaryLength < p.MinSummaryLength:
		return fmt.Errorf("%w: summary length bounds must satisfy 0 < min <= max", ErrInvalidInput)
	case p.SectionSummaryLength <= 0:
		return fmt.Errorf("%w: section_summary_length must be positive", ErrInvalidInput)
	case p.ChunkSize <= 0:
		return fmt.Errorf("%w: chunk_size must be positive", ErrInvalidInput)
	case p.ChunkOverlap < 0 || p.ChunkOverlap >= p.ChunkSize:
		return fmt.Errorf("%w: chunk_overlap must be in [0, chunk_size)", ErrInvalidInput)
	case p.MaxChunks <= 0:
		return fmt.Errorf("%w: max_chunks must be positive", ErrInvalidInput)
	case p.MaxConcurrency <= 0:
		return fmt.Errorf("%w: max_concurrency must be positive", ErrInvalidInput)
	case p.CallTimeout <= 0 || p.GlobalTimeout <= 0:
		return fmt.Errorf("%w: timeouts must be positive", ErrInvalidInput)
	case p.MinInputLength < 0:
		return fmt.Errorf("%w: min_input_length must not be negative", ErrInvalidInput)
	}
	return nil
}

// AppSettings holds all application settings.
type AppSettings struct {
	// LLM holds LLM provider settings.
	LLM LLMSettings

	// Pipeline holds pipeline tunables.
	Pipeline PipelineSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// The LLM is left unconfigured; users set it up via 'polidigest settings llm'.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		LLM:      LLMSettings{},
		Pipeline: DefaultPipelineSettings(),
	}
}

// DefaultPipelineSettings returns the pipeline tunables used when nothing is configured.
func DefaultPipelineSettings() PipelineSettings {
	return PipelineSettings{
		TargetWords:          500,
		MinSummaryLength:     300,
		MaxSummaryLength:     512,
		SectionSummaryLength: 150,
		ChunkSize:            400,
		ChunkOverlap:         20,
		MaxChunks:            3,
		MaxConcurrency:       3,
		CallTimeout:          20 * time.Second,
		GlobalTimeout:        30 * time.Second,
		MinInputLength:       100,
		RelevanceKeywords:    DefaultRelevanceKeywords(),
		SectionTitles:        DefaultSectionTitles(),
	}
}

// DefaultRelevanceKeywords returns the keywords that mark substantive content.
func DefaultRelevanceKeywords() []string {
	return []string{"summary", "executive", "introduction", "abstract", "policy", "purpose", "objective"}
}

// DefaultSectionTitles returns the policy clause headings detected by default.
func DefaultSectionTitles() []string {
	return []string{
		"LOSS OF OR DAMAGE TO YOUR VEHICLE",
		"YOUR LIABILITY",
		"OPTIONAL COVER LIMITS",
		"POLICY COVERAGE",
		"EXCLUSIONS",
		"CLAIMS PROCEDURE",
		"GENERAL CONDITIONS",
		"ENDORSEMENTS",
		"RENEWAL TERMS",
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// SupportedDeclaredTypes returns the document formats accepted for analysis.
func SupportedDeclaredTypes() []DeclaredType {
	return []DeclaredType{DeclaredTypeText, DeclaredTypePDF, DeclaredTypeDOCX, DeclaredTypeHTML}
}
