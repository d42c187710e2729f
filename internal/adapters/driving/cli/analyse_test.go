package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/polidigest/internal/core/domain"
)

// writePolicy writes content to a temporary file and returns its path.
func writePolicy(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestAnalyseCmd_Use(t *testing.T) {
	assert.Equal(t, "analyse [file]", analyseCmd.Use)
	assert.Contains(t, analyseCmd.Aliases, "analyze")
}

func TestAnalyseCmd_RequiresExactlyOneArg(t *testing.T) {
	_, _, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "analyse")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestAnalyseCmd_ServiceNotConfigured(t *testing.T) {
	_, _, cleanup := setupTestServices()
	defer cleanup()
	analysisService = nil

	_, err := execute(t, "analyse", writePolicy(t, "policy.txt", "text"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "analysis service not configured")
}

func TestAnalyseCmd_RendersDigest(t *testing.T) {
	analysis, _, cleanup := setupTestServices()
	defer cleanup()
	path := writePolicy(t, "policy.txt", "Policy Number: POL-2024-9981")

	out, err := execute(t, "analyse", path)

	require.NoError(t, err)
	assert.Contains(t, out, "Policy digest")
	assert.Contains(t, out, "Summary skipped")
	assert.Contains(t, out, "Policy number:")
	assert.Contains(t, out, "POL-2024-9981")
	assert.Contains(t, out, "Compliance 100/100 Compliant")
	assert.Contains(t, out, "> Policy appears comprehensive")

	require.Len(t, analysis.analysed, 1)
	assert.Equal(t, path, analysis.analysed[0].URI)
	assert.Equal(t, domain.DeclaredTypeText, analysis.analysed[0].DeclaredType)
}

func TestAnalyseCmd_JSONOutputMatchesContract(t *testing.T) {
	_, _, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "analyse", "--json", writePolicy(t, "policy.docx", "x"))

	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "an-test", decoded["id"])
	assert.Equal(t, true, decoded["success"])
}

func TestAnalyseCmd_FailureReturnsError(t *testing.T) {
	analysis, _, cleanup := setupTestServices()
	defer cleanup()
	analysis.result = domain.Failed("an-fail", "", domain.ErrPrecondition)

	out, err := execute(t, "analyse", writePolicy(t, "policy.txt", "short"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, errAnalysisFailed))
	assert.Contains(t, err.Error(), "precondition_failure")
	assert.Contains(t, out, "Analysis failed:")
}

func TestAnalyseCmd_ReadsStdin(t *testing.T) {
	analysis, _, cleanup := setupTestServices()
	defer cleanup()
	rootCmd.SetIn(strings.NewReader("<p>Policy</p>"))

	_, err := execute(t, "analyse", "--type", "html", "-")

	require.NoError(t, err)
	require.Len(t, analysis.analysed, 1)
	assert.Equal(t, "<p>Policy</p>", string(analysis.analysed[0].Content))
	assert.Equal(t, domain.DeclaredTypeHTML, analysis.analysed[0].DeclaredType)
}

func TestEntitiesCmd(t *testing.T) {
	analysis, _, cleanup := setupTestServices()
	defer cleanup()
	analysis.entities = domain.Entities{
		domain.EntityPremiumAmount: "$1,200.00",
		domain.EntityEffectiveDate: "March 1, 2024",
	}
	path := writePolicy(t, "policy.md", "Premium: $1,200.00")

	t.Run("text", func(t *testing.T) {
		out, err := execute(t, "entities", path)

		require.NoError(t, err)
		assert.Contains(t, out, "Premium amount:")
		assert.Contains(t, out, "$1,200.00")
		assert.Less(t, strings.Index(out, "Premium amount"), strings.Index(out, "Effective date"),
			"categories print in display order")
	})

	t.Run("json", func(t *testing.T) {
		out, err := execute(t, "entities", "--json", path)

		require.NoError(t, err)
		var decoded map[string]string
		require.NoError(t, json.Unmarshal([]byte(out), &decoded))
		assert.Equal(t, "March 1, 2024", decoded["effective_date"])
	})
}

func TestEntitiesCmd_ServiceError(t *testing.T) {
	analysis, _, cleanup := setupTestServices()
	defer cleanup()
	analysis.err = domain.ErrPrecondition

	_, err := execute(t, "entities", writePolicy(t, "empty.txt", ""))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to extract entities")
}

func TestComplianceCmd(t *testing.T) {
	analysis, _, cleanup := setupTestServices()
	defer cleanup()
	analysis.report = &domain.ComplianceReport{
		SectionPresence: []domain.ClauseCheck{
			{Name: "coverage", Present: true},
			{Name: "exclusions", Present: false},
		},
		RiskFlags: []domain.RiskFlag{
			{Phrase: "sole discretion", Severity: domain.SeverityMedium, Description: "Insurer-controlled decision"},
		},
		Score:           85,
		Status:          domain.StatusCompliant,
		Recommendations: []string{"Add missing sections: exclusions"},
	}

	out, err := execute(t, "compliance", writePolicy(t, "policy.txt", "text"))

	require.NoError(t, err)
	assert.Contains(t, out, "Compliance 85/100 Compliant")
	assert.Contains(t, out, "Missing clauses: exclusions")
	assert.Contains(t, out, "[medium] sole discretion: Insurer-controlled decision")
}

func TestReadDocument(t *testing.T) {
	dir := t.TempDir()
	docx := filepath.Join(dir, "policy.docx")
	require.NoError(t, os.WriteFile(docx, []byte("PK"), 0o600))

	tests := []struct {
		name     string
		path     string
		declared string
		wantType domain.DeclaredType
		wantErr  bool
	}{
		{"extension", docx, "", domain.DeclaredTypeDOCX, false},
		{"override", docx, "pdf", domain.DeclaredTypePDF, false},
		{"unknown type", docx, "xls", "", true},
		{"missing file", filepath.Join(dir, "absent.txt"), "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := readDocument(nil, tt.path, tt.declared)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, raw.DeclaredType)
			assert.Equal(t, tt.path, raw.URI)
		})
	}
}
