package main

import (
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/polidigest/internal/adapters/driven/ai"
	"github.com/custodia-labs/polidigest/internal/adapters/driven/config/file"
	"github.com/custodia-labs/polidigest/internal/adapters/driven/metrics"
	"github.com/custodia-labs/polidigest/internal/adapters/driving/cli"
	"github.com/custodia-labs/polidigest/internal/analysers/compliance"
	"github.com/custodia-labs/polidigest/internal/analysers/entities"
	"github.com/custodia-labs/polidigest/internal/core/domain"
	"github.com/custodia-labs/polidigest/internal/core/services"
	"github.com/custodia-labs/polidigest/internal/logger"
	"github.com/custodia-labs/polidigest/internal/normalisers"
	"github.com/custodia-labs/polidigest/internal/postprocessors"
	"github.com/custodia-labs/polidigest/internal/postprocessors/sections"
)

// Rule tables that override the built-in defaults when present in the config directory.
const (
	entityRulesFile     = "entities.toml"
	complianceRulesFile = "compliance.toml"
	promptsDir          = "prompts"
)

// wire builds the services the CLI runs with from the config in configDir.
// An empty configDir means ~/.polidigest.
func wire(configDir string) (*cli.Services, error) {
	store, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}

	prompts, err := file.NewPromptStore(filepath.Join(store.Dir(), promptsDir))
	if err != nil {
		return nil, fmt.Errorf("failed to open prompts: %w", err)
	}

	settingsService := services.NewSettingsService(store, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	// Keep the settings command usable when the stored tunables are broken.
	if err := settings.Pipeline.Validate(); err != nil {
		logger.Warn("pipeline settings ignored: %v", err)
		settings.Pipeline = domain.DefaultPipelineSettings()
	}

	extractor, err := entityExtractor(store)
	if err != nil {
		return nil, err
	}
	scorer, err := complianceScorer(store)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.New(reg)

	var (
		summariser *services.Summariser
		closeFn    = func() error { return nil }
	)
	if settings.LLM.IsConfigured() {
		llm := ai.NewLazyLLM(settings.LLM, prompts)
		summariser = services.NewSummariser(llm, settings.Pipeline,
			services.WithPromptStore(prompts),
			services.WithMetrics(recorder),
			services.WithStateObserver(func(st domain.SummaryState) {
				logger.Debug("summary state: %s", st)
			}),
		)
		closeFn = llm.Close
	} else {
		logger.Info("no LLM provider configured; summaries disabled")
	}

	analysis := services.NewAnalysisService(
		normalisers.NewDefaultRegistry(),
		postprocessors.FromSettings(settings.Pipeline),
		sections.New(settings.Pipeline.SectionTitles,
			sections.WithMinInputLength(settings.Pipeline.MinInputLength),
		),
		summariser,
		extractor,
		scorer,
		*settings,
	)
	analysis.SetMetrics(recorder)

	return &cli.Services{
		Analysis: analysis,
		Settings: settingsService,
		Metrics:  metricsHandler(reg),
		Close:    closeFn,
	}, nil
}

func metricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

func entityExtractor(store *file.ConfigStore) (*entities.Extractor, error) {
	data, ok, err := store.ReadSibling(entityRulesFile)
	if err != nil {
		return nil, err
	}
	if !ok {
		return entities.Default(), nil
	}

	rules, err := entities.ParseRules(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", entityRulesFile, err)
	}
	extractor, err := entities.New(rules)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", entityRulesFile, err)
	}
	logger.Debug("loaded entity rules from %s", entityRulesFile)
	return extractor, nil
}

func complianceScorer(store *file.ConfigStore) (*compliance.Scorer, error) {
	data, ok, err := store.ReadSibling(complianceRulesFile)
	if err != nil {
		return nil, err
	}
	if !ok {
		return compliance.Default(), nil
	}

	rules, err := compliance.ParseRules(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", complianceRulesFile, err)
	}
	scorer, err := compliance.New(rules)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", complianceRulesFile, err)
	}
	logger.Debug("loaded compliance rules from %s", complianceRulesFile)
	return scorer, nil
}
