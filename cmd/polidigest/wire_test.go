package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/polidigest/internal/core/domain"
	"github.com/custodia-labs/polidigest/internal/core/services"
)

const policyText = `Policy Number: POL-2024-9981
Insured: Jane Doe
Coverage includes collision and theft. Exclusions apply to wear and tear.
Premium: $1,200.00 payable annually. The insurer may waive subrogation at its option.`

// clearLLMEnv stops the test environment from configuring a provider.
func clearLLMEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		services.EnvLLMProvider, services.EnvLLMModel, services.EnvLLMBaseURL,
		services.EnvOpenAIKey, services.EnvAnthropicKey, services.EnvLLMAPIKey,
	} {
		t.Setenv(key, "")
	}
}

func writeConfigFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestWire_EmptyConfigDir(t *testing.T) {
	clearLLMEnv(t)
	dir := t.TempDir()

	svc, err := wire(dir)
	require.NoError(t, err)
	defer func() { assert.NoError(t, svc.Close()) }()

	require.NotNil(t, svc.Analysis)
	require.NotNil(t, svc.Settings)
	require.NotNil(t, svc.Metrics)

	status := svc.Analysis.Status()
	assert.False(t, status.Ready, "no provider configured")
	assert.Equal(t, 500, status.TargetWords)

	result := svc.Analysis.Analyse(context.Background(), &domain.RawDocument{
		URI:          "policy.txt",
		DeclaredType: domain.DeclaredTypeText,
		Content:      []byte(policyText),
	})
	require.True(t, result.Success, result.Error)
	assert.Nil(t, result.Summary)
	assert.Equal(t, "POL-2024-9981", result.Entities[domain.EntityPolicyNumber])
}

func TestWire_MetricsHandlerServesAnalyses(t *testing.T) {
	svc, err := wire(t.TempDir())
	require.NoError(t, err)

	svc.Analysis.Analyse(context.Background(), &domain.RawDocument{
		URI:          "short.txt",
		DeclaredType: domain.DeclaredTypeText,
		Content:      []byte("too short"),
	})

	rec := httptest.NewRecorder()
	svc.Metrics.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "polidigest_analyses_total")
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestWire_ComplianceRulesOverride(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, complianceRulesFile, `
[[risks]]
phrase = "waive subrogation"
severity = "high"
description = "Insurer may give up recovery rights"
`)

	svc, err := wire(dir)
	require.NoError(t, err)

	report, err := svc.Analysis.CheckCompliance(context.Background(), &domain.RawDocument{
		URI:          "policy.txt",
		DeclaredType: domain.DeclaredTypeText,
		Content:      []byte(policyText),
	})
	require.NoError(t, err)
	require.Len(t, report.RiskFlags, 1)
	assert.Equal(t, "waive subrogation", report.RiskFlags[0].Phrase)
	assert.Equal(t, domain.SeverityHigh, report.RiskFlags[0].Severity)
}

func TestWire_InvalidRuleFiles(t *testing.T) {
	for _, name := range []string{entityRulesFile, complianceRulesFile} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfigFile(t, dir, name, "not = [valid")

			_, err := wire(dir)

			require.Error(t, err)
			assert.True(t, strings.HasPrefix(err.Error(), name), err.Error())
		})
	}
}

func TestWire_InvalidPipelineFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "config.toml", `
[pipeline]
target_words = 250
chunk_size = 10
chunk_overlap = 50
`)

	svc, err := wire(dir)
	require.NoError(t, err)

	assert.Equal(t, 500, svc.Analysis.Status().TargetWords)
	assert.Error(t, svc.Settings.Validate(), "stored settings stay invalid until fixed")
}

func TestWire_ConfiguredProviderIsLazy(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "config.toml", `
[llm]
provider = "ollama"
model = "llama3.2"
base_url = "http://127.0.0.1:1"
`)

	svc, err := wire(dir)
	require.NoError(t, err)

	status := svc.Analysis.Status()
	assert.Equal(t, domain.AIProviderOllama, status.Provider)
	assert.Equal(t, "llama3.2", status.Model)
	assert.NoError(t, svc.Close(), "closing an unused provider builds nothing")
	_, err = os.Stat(filepath.Join(dir, promptsDir))
	assert.True(t, os.IsNotExist(err), "prompts are created on first use")
}
