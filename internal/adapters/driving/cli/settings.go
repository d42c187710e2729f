package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/polidigest/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the LLM provider and the pipeline tunables.

Settings are stored in ~/.polidigest/config.toml. Environment variables
(POLIDIGEST_LLM_PROVIDER, OPENAI_API_KEY, ANTHROPIC_API_KEY, ...) fill in
values the file does not set.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long:  `Configure the LLM provider used to summarise documents.`,
	RunE:  runSettingsLLM,
}

var settingsPipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Set pipeline tunables",
	Long: `Set summary length, chunking and timeout tunables. Only the flags given
are changed. Use --relevance-keywords "" to disable the chunker's
start-of-content heuristic.`,
	RunE: runSettingsPipeline,
}

func init() {
	f := settingsPipelineCmd.Flags()
	f.Int("target-words", 0, "final summary length in words")
	f.Int("min-summary", 0, "minimum length of the style refinement call")
	f.Int("max-summary", 0, "maximum length of the style refinement call")
	f.Int("section-summary", 0, "length budget of per-section summaries")
	f.Int("chunk-size", 0, "chunk window in words")
	f.Int("chunk-overlap", 0, "words shared by consecutive chunks")
	f.Int("max-chunks", 0, "maximum chunks submitted for summarisation")
	f.Int("concurrency", 0, "simultaneous summarisation calls")
	f.Duration("call-timeout", 0, "timeout of one summarisation call")
	f.Duration("global-timeout", 0, "timeout of the whole summarisation phase")
	f.Int("min-input", 0, "minimum extracted text length in characters")
	f.StringSlice("relevance-keywords", nil, "keywords marking substantive content")
	f.StringSlice("section-titles", nil, "clause headings to detect")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	settingsCmd.AddCommand(settingsPipelineCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	// LLM settings
	cmd.Println("[LLM]")
	cmd.Printf("  Provider: %s\n", settings.LLM.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.LLM.Model)
	if settings.LLM.Provider.IsLocal() {
		cmd.Printf("  Base URL: %s\n", settings.LLM.BaseURL)
	}
	if settings.LLM.Provider.RequiresAPIKey() {
		if settings.LLM.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(settings.LLM.APIKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	if settings.LLM.RequestsPerSecond > 0 {
		cmd.Printf("  Rate limit: %.2f req/s\n", settings.LLM.RequestsPerSecond)
	}
	status := "configured"
	if !settings.LLM.IsConfigured() {
		status = "not configured (summaries disabled)"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()

	// Pipeline settings
	p := settings.Pipeline
	cmd.Println("[Pipeline]")
	cmd.Printf("  Target words: %d\n", p.TargetWords)
	cmd.Printf("  Refinement length: %d-%d\n", p.MinSummaryLength, p.MaxSummaryLength)
	cmd.Printf("  Section summary length: %d\n", p.SectionSummaryLength)
	cmd.Printf("  Chunks: %d words, %d overlap, at most %d\n", p.ChunkSize, p.ChunkOverlap, p.MaxChunks)
	cmd.Printf("  Concurrency: %d\n", p.MaxConcurrency)
	cmd.Printf("  Timeouts: %s per call, %s overall\n", p.CallTimeout, p.GlobalTimeout)
	cmd.Printf("  Minimum input: %d characters\n", p.MinInputLength)
	cmd.Printf("  Relevance keywords: %s\n", listOrNone(p.RelevanceKeywords))
	cmd.Printf("  Section titles: %s\n", listOrNone(p.SectionTitles))
	cmd.Println()

	if analysisService != nil {
		st := analysisService.Status()
		formats := make([]string, len(st.SupportedFormats))
		for i, f := range st.SupportedFormats {
			formats[i] = string(f)
		}
		cmd.Println("[Agent]")
		cmd.Printf("  Ready: %t\n", st.Ready)
		cmd.Printf("  Supported formats: %s\n", strings.Join(formats, ", "))
		cmd.Println()
	}

	// Validation
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'polidigest settings llm' or 'polidigest settings pipeline' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	return configureLLMProvider(cmd, reader)
}

func runSettingsPipeline(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	p := settings.Pipeline
	f := cmd.Flags()
	ints := map[string]*int{
		"target-words":    &p.TargetWords,
		"min-summary":     &p.MinSummaryLength,
		"max-summary":     &p.MaxSummaryLength,
		"section-summary": &p.SectionSummaryLength,
		"chunk-size":      &p.ChunkSize,
		"chunk-overlap":   &p.ChunkOverlap,
		"max-chunks":      &p.MaxChunks,
		"concurrency":     &p.MaxConcurrency,
		"min-input":       &p.MinInputLength,
	}
	durations := map[string]*time.Duration{
		"call-timeout":   &p.CallTimeout,
		"global-timeout": &p.GlobalTimeout,
	}
	lists := map[string]*[]string{
		"relevance-keywords": &p.RelevanceKeywords,
		"section-titles":     &p.SectionTitles,
	}

	changed := 0
	for name, dst := range ints {
		if f.Changed(name) {
			*dst, _ = f.GetInt(name) //nolint:errcheck // flag type is fixed
			changed++
		}
	}
	for name, dst := range durations {
		if f.Changed(name) {
			*dst, _ = f.GetDuration(name) //nolint:errcheck // flag type is fixed
			changed++
		}
	}
	for name, dst := range lists {
		if f.Changed(name) {
			values, _ := f.GetStringSlice(name) //nolint:errcheck // flag type is fixed
			*dst = nonEmpty(values)
			changed++
		}
	}

	if changed == 0 {
		return errors.New("no pipeline flags given; see 'polidigest settings pipeline --help'")
	}

	if err := settingsService.SetPipeline(p); err != nil {
		return fmt.Errorf("failed to update pipeline settings: %w", err)
	}
	cmd.Printf("Updated %d pipeline setting(s).\n", changed)
	return nil
}

func configureLLMProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select LLM Provider")
	providers := domain.AllLLMProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(providers), 1)
	selectedProvider := providers[idx-1]

	// Get model
	defaults := domain.DefaultLLMModels()
	defaultModel := defaults[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	// Get API key if needed
	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword(cmd.InOrStdin(), reader)
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetLLMProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	// Validate the configuration by pinging the service
	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateLLMConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("LLM configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("LLM provider configured: %s (%s)\n\n", selectedProvider.Description(), model)
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

func readPassword(in io.Reader, reader *bufio.Reader) string {
	// Try to read password without echo
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func listOrNone(values []string) string {
	if len(values) == 0 {
		return "(none)"
	}
	return strings.Join(values, ", ")
}

// nonEmpty drops blank entries so an empty flag value clears the list.
func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
