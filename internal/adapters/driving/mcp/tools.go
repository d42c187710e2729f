package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/polidigest/internal/adapters/driving/contract"
	"github.com/custodia-labs/polidigest/internal/core/domain"
)

// inlineURI names documents passed as text.
const inlineURI = "inline"

// DocumentInput is the input schema shared by all tools.
type DocumentInput struct {
	Text string `json:"text,omitempty" jsonschema:"policy document text; takes precedence over path"`
	Path string `json:"path,omitempty" jsonschema:"path of a local policy document (.txt, .md, .pdf, .docx, .html)"`
	Type string `json:"type,omitempty" jsonschema:"document type: text, pdf, docx or html (default from the path extension)"`
}

// AnalyseOutput is the output schema for the analyse_policy tool.
type AnalyseOutput struct {
	ID             string                         `json:"id"`
	Summary        string                         `json:"summary,omitempty"`
	KeyFindings    []string                       `json:"key_findings"`
	Sections       map[string][]string            `json:"sections,omitempty"`
	PolicySections map[string]PolicySectionOutput `json:"policy_sections,omitempty"`
	Entities       map[string]string              `json:"entities"`
	Compliance     ComplianceOutput               `json:"compliance"`
	OriginalWords  int                            `json:"original_words"`
	SummaryWords   int                            `json:"summary_words"`
	Readability    float64                        `json:"readability"`
}

// PolicySectionOutput is one summarised policy section. Fallback marks a
// verbatim excerpt used when the section could not be summarised.
type PolicySectionOutput struct {
	Text     string `json:"text"`
	Fallback bool   `json:"fallback"`
}

// EntitiesOutput is the output schema for the extract_entities tool.
type EntitiesOutput struct {
	Entities map[string]string `json:"entities"`
	Count    int               `json:"count"`
}

// ComplianceOutput is the output schema for the check_compliance tool.
type ComplianceOutput struct {
	Score           int              `json:"score"`
	Status          string           `json:"status"`
	Missing         []string         `json:"missing"`
	RiskFlags       []RiskFlagOutput `json:"risk_flags"`
	Recommendations []string         `json:"recommendations"`
}

// RiskFlagOutput represents a single flagged phrase.
type RiskFlagOutput struct {
	Phrase      string `json:"phrase"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyse_policy",
		Description: "Summarise an insurance policy and report its entities and compliance score",
	}, s.handleAnalyse)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "extract_entities",
		Description: "Extract policy number, insured name, amounts and dates from a policy",
	}, s.handleExtractEntities)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "check_compliance",
		Description: "Score a policy against required clauses and risk phrases",
	}, s.handleCheckCompliance)
}

// handleAnalyse handles the analyse_policy tool invocation.
func (s *Server) handleAnalyse(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DocumentInput,
) (*mcp.CallToolResult, AnalyseOutput, error) {
	raw, err := input.document()
	if err != nil {
		return nil, AnalyseOutput{}, err
	}

	result := s.ports.Analysis.Analyse(ctx, raw)
	if err := contract.Validate(result); err != nil {
		return nil, AnalyseOutput{}, err
	}
	if !result.Success {
		return nil, AnalyseOutput{}, fmt.Errorf("%s: %s", result.ErrorKind, result.Error)
	}

	output := AnalyseOutput{
		ID:            result.ID,
		KeyFindings:   []string{},
		Entities:      entityMap(result.Entities),
		OriginalWords: result.Metrics.OriginalWords,
		SummaryWords:  result.Metrics.SummaryWords,
		Readability:   result.Metrics.Readability,
	}
	if result.Compliance != nil {
		output.Compliance = complianceOutput(result.Compliance)
	}
	if sum := result.Summary; sum != nil {
		output.Summary = sum.Text
		output.Sections = sum.Sections
		if sum.KeyFindings != nil {
			output.KeyFindings = sum.KeyFindings
		}
		if len(sum.PolicySections) > 0 {
			output.PolicySections = make(map[string]PolicySectionOutput, len(sum.PolicySections))
			for title, section := range sum.PolicySections {
				output.PolicySections[title] = PolicySectionOutput{Text: section.Text, Fallback: section.Fallback}
			}
		}
	}

	return nil, output, nil
}

// handleExtractEntities handles the extract_entities tool invocation.
func (s *Server) handleExtractEntities(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DocumentInput,
) (*mcp.CallToolResult, EntitiesOutput, error) {
	raw, err := input.document()
	if err != nil {
		return nil, EntitiesOutput{}, err
	}

	found, err := s.ports.Analysis.ExtractEntities(ctx, raw)
	if err != nil {
		return nil, EntitiesOutput{}, err
	}

	entities := entityMap(found)
	return nil, EntitiesOutput{Entities: entities, Count: len(entities)}, nil
}

// handleCheckCompliance handles the check_compliance tool invocation.
func (s *Server) handleCheckCompliance(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DocumentInput,
) (*mcp.CallToolResult, ComplianceOutput, error) {
	raw, err := input.document()
	if err != nil {
		return nil, ComplianceOutput{}, err
	}

	report, err := s.ports.Analysis.CheckCompliance(ctx, raw)
	if err != nil {
		return nil, ComplianceOutput{}, err
	}

	return nil, complianceOutput(report), nil
}

// document builds the raw document a tool call refers to.
func (in DocumentInput) document() (*domain.RawDocument, error) {
	var (
		raw = &domain.RawDocument{DeclaredType: domain.DeclaredTypeText}
		err error
	)
	switch {
	case in.Text != "":
		raw.URI = inlineURI
		raw.Content = []byte(in.Text)
	case in.Path != "":
		raw.URI = in.Path
		raw.DeclaredType = domain.DeclaredTypeFromExtension(filepath.Ext(in.Path))
		if raw.Content, err = os.ReadFile(in.Path); err != nil {
			return nil, fmt.Errorf("reading %s: %w", in.Path, err)
		}
	default:
		return nil, ErrNoDocument
	}

	if in.Type != "" {
		raw.DeclaredType = domain.DeclaredType(in.Type)
		if !raw.DeclaredType.IsValid() {
			return nil, fmt.Errorf("%w: unknown document type %q", domain.ErrInvalidInput, in.Type)
		}
	}
	return raw, nil
}

func entityMap(e domain.Entities) map[string]string {
	out := make(map[string]string, len(e))
	for c, v := range e {
		out[c.String()] = v
	}
	return out
}

func complianceOutput(r *domain.ComplianceReport) ComplianceOutput {
	out := ComplianceOutput{
		Score:           r.Score,
		Status:          string(r.Status),
		Missing:         r.Missing(),
		RiskFlags:       make([]RiskFlagOutput, len(r.RiskFlags)),
		Recommendations: r.Recommendations,
	}
	if out.Missing == nil {
		out.Missing = []string{}
	}
	if out.Recommendations == nil {
		out.Recommendations = []string{}
	}
	for i, f := range r.RiskFlags {
		out.RiskFlags[i] = RiskFlagOutput{
			Phrase:      f.Phrase,
			Severity:    string(f.Severity),
			Description: f.Description,
		}
	}
	return out
}
