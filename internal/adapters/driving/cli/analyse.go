package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/polidigest/internal/adapters/driving/contract"
	"github.com/custodia-labs/polidigest/internal/core/domain"
)

// errAnalysisFailed is returned after a failed result has been printed.
var errAnalysisFailed = errors.New("analysis failed")

var (
	outputJSON   bool
	declaredType string
)

var analyseCmd = &cobra.Command{
	Use:     "analyse [file]",
	Aliases: []string{"analyze"},
	Short:   "Summarise and score a policy document",
	Long: `Runs the full pipeline on one document: text extraction, chunking,
section detection, summarisation, entity extraction and compliance scoring.

The document type is taken from the file extension (.txt, .md, .pdf,
.docx, .html) unless --type is given. Use "-" to read from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyse,
}

var entitiesCmd = &cobra.Command{
	Use:   "entities [file]",
	Short: "Extract policy facts from a document",
	Long:  `Extracts policy number, insured name, amounts and dates. No LLM is needed.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runEntities,
}

var complianceCmd = &cobra.Command{
	Use:   "compliance [file]",
	Short: "Score a document against the compliance rules",
	Long:  `Checks required clauses and risk phrases and prints a 0-100 score. No LLM is needed.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runCompliance,
}

func init() {
	for _, cmd := range []*cobra.Command{analyseCmd, entitiesCmd, complianceCmd} {
		cmd.Flags().BoolVar(&outputJSON, "json", false, "output as JSON")
		cmd.Flags().StringVarP(&declaredType, "type", "t", "", "document type: text, pdf, docx or html")
		rootCmd.AddCommand(cmd)
	}
}

func runAnalyse(cmd *cobra.Command, args []string) error {
	if analysisService == nil {
		return errors.New("analysis service not configured")
	}

	raw, err := readDocument(cmd.InOrStdin(), args[0], declaredType)
	if err != nil {
		return err
	}

	result := analysisService.Analyse(cmd.Context(), raw)

	if outputJSON {
		data, err := contract.Marshal(result)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
	} else {
		renderDigest(cmd.OutOrStdout(), result, stylesFor(cmd.OutOrStdout()))
	}

	if !result.Success {
		return fmt.Errorf("%w (%s): %s", errAnalysisFailed, result.ErrorKind, result.Error)
	}
	return nil
}

func runEntities(cmd *cobra.Command, args []string) error {
	if analysisService == nil {
		return errors.New("analysis service not configured")
	}

	raw, err := readDocument(cmd.InOrStdin(), args[0], declaredType)
	if err != nil {
		return err
	}

	found, err := analysisService.ExtractEntities(cmd.Context(), raw)
	if err != nil {
		return fmt.Errorf("failed to extract entities: %w", err)
	}

	if outputJSON {
		return printJSON(cmd, found)
	}
	renderEntities(cmd.OutOrStdout(), found, stylesFor(cmd.OutOrStdout()))
	return nil
}

func runCompliance(cmd *cobra.Command, args []string) error {
	if analysisService == nil {
		return errors.New("analysis service not configured")
	}

	raw, err := readDocument(cmd.InOrStdin(), args[0], declaredType)
	if err != nil {
		return err
	}

	report, err := analysisService.CheckCompliance(cmd.Context(), raw)
	if err != nil {
		return fmt.Errorf("failed to check compliance: %w", err)
	}

	if outputJSON {
		return printJSON(cmd, report)
	}
	renderCompliance(cmd.OutOrStdout(), report, stylesFor(cmd.OutOrStdout()))
	return nil
}

// readDocument loads path (or stdin for "-") as a raw document.
// An explicit declared type overrides the extension.
func readDocument(stdin io.Reader, path, declared string) (*domain.RawDocument, error) {
	var (
		content []byte
		err     error
	)
	if path == "-" {
		content, err = io.ReadAll(stdin)
	} else {
		content, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	dt := domain.DeclaredTypeFromExtension(filepath.Ext(path))
	if declared != "" {
		dt = domain.DeclaredType(declared)
		if !dt.IsValid() {
			return nil, fmt.Errorf("%w: unknown document type %q", domain.ErrInvalidInput, declared)
		}
	}

	return &domain.RawDocument{
		URI:          path,
		DeclaredType: dt,
		Content:      content,
	}, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
