package pdf

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/polidigest/internal/core/domain"
	"github.com/custodia-labs/polidigest/internal/core/ports/driven"
)

// binaryPDF is the shape of a real PDF file: header, binary stream, trailer.
var binaryPDF = []byte("%PDF-1.7\n1 0 obj\n<< /Length 12 >>\nstream\n\x8f\x00\xd3\x11\xfe\x02\nendstream\nendobj\n%%EOF\n")

// mockRunner is a test double for CommandRunner.
type mockRunner struct {
	output []byte
	err    error

	name string
	args []string
}

func (m *mockRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	m.name = name
	m.args = args
	return m.output, m.err
}

func TestNew(t *testing.T) {
	normaliser := New()
	require.NotNil(t, normaliser)
	assert.IsType(t, execRunner{}, normaliser.runner)
}

func TestSupportedMIMETypes(t *testing.T) {
	assert.Equal(t, []string{"application/pdf"}, New().SupportedMIMETypes())
}

func TestPriority(t *testing.T) {
	assert.Equal(t, 50, New().Priority())
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Normaliser = (*Normaliser)(nil)
}

func TestNormalise_NilDocument(t *testing.T) {
	result, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, result)
}

func TestNormalise_WithMockRunner(t *testing.T) {
	runner := &mockRunner{output: []byte("POLICY SCHEDULE\n\nPolicy Number: POL-2024-9981\n")}
	raw := &domain.RawDocument{
		URI:          "/path/to/motor_policy.pdf",
		DeclaredType: domain.DeclaredTypePDF,
		Content:      binaryPDF,
		Metadata:     map[string]any{"source": "upload"},
	}

	result, err := NewWithRunner(runner).Normalise(context.Background(), raw)
	require.NoError(t, err)

	doc := result.Document
	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, raw.URI, doc.URI)
	assert.Equal(t, "POLICY SCHEDULE", doc.Title)
	assert.Contains(t, doc.Content, "Policy Number: POL-2024-9981")
	assert.Equal(t, "application/pdf", doc.Metadata["mime_type"])
	assert.Equal(t, "pdf", doc.Metadata["format"])
	assert.Equal(t, "upload", doc.Metadata["source"])

	assert.Equal(t, "pdftotext", runner.name)
	require.NotEmpty(t, runner.args)
	assert.Equal(t, "-", runner.args[len(runner.args)-1], "text goes to stdout")
}

func TestNormalise_ExtractedTextPassesThrough(t *testing.T) {
	runner := &mockRunner{err: errors.New("must not run")}
	raw := &domain.RawDocument{
		URI:          "policy.pdf",
		DeclaredType: domain.DeclaredTypePDF,
		Content:      []byte("Extracted PDF text"),
	}

	result, err := NewWithRunner(runner).Normalise(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "Extracted PDF text", result.Document.Content)
	assert.Empty(t, runner.name)
}

func TestNormalise_Errors(t *testing.T) {
	tests := []struct {
		name    string
		runner  *mockRunner
		wantErr error
		wantMsg string
	}{
		{
			name:    "tool missing",
			runner:  &mockRunner{err: ErrPDFToolNotFound},
			wantErr: domain.ErrUnsupportedType,
		},
		{
			name:    "tool fails",
			runner:  &mockRunner{err: errors.New("Syntax Error: Couldn't find trailer dictionary")},
			wantMsg: "pdftotext failed",
		},
		{
			name:    "no text layer",
			runner:  &mockRunner{output: []byte("\f\n\f")},
			wantErr: domain.ErrPrecondition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := NewWithRunner(tt.runner).Normalise(context.Background(), &domain.RawDocument{
				URI:          "scan.pdf",
				DeclaredType: domain.DeclaredTypePDF,
				Content:      binaryPDF,
			})
			require.Error(t, err)
			assert.Nil(t, result)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestIsPDF(t *testing.T) {
	assert.True(t, IsPDF(binaryPDF))
	assert.True(t, IsPDF([]byte("\n  %PDF-1.4")))
	assert.False(t, IsPDF([]byte("Policy text mentioning %PDF-1.4")))
	assert.False(t, IsPDF(nil))
}

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		uri      string
		expected string
	}{
		{"first line as title", "Document Title\n\nSome content here.", "/doc.pdf", "Document Title"},
		{"skip empty lines", "\n\n\nActual Title\nContent", "/doc.pdf", "Actual Title"},
		{"fallback to filename", "", "/path/to/my_document.pdf", "my document"},
		{"skip very long first line", strings.Repeat("x", 250) + "\nShort Title\nContent", "/doc.pdf", "Short Title"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, extractTitle(tc.content, tc.uri))
		})
	}
}

func TestInstallInstructions(t *testing.T) {
	instructions := InstallInstructions()
	assert.Contains(t, instructions, "brew install poppler")
	assert.Contains(t, instructions, "apt install poppler-utils")
}

func TestCopyMetadata(t *testing.T) {
	assert.Nil(t, copyMetadata(nil))

	src := map[string]any{"key": "value"}
	dst := copyMetadata(src)
	dst["key"] = "changed"
	assert.Equal(t, "value", src["key"])
}

func TestNormalise_Integration(t *testing.T) {
	if err := CheckAvailable(); err != nil {
		t.Skip("pdftotext not available")
	}

	_, err := New().Normalise(context.Background(), &domain.RawDocument{
		URI:          "broken.pdf",
		DeclaredType: domain.DeclaredTypePDF,
		Content:      binaryPDF,
	})
	assert.Error(t, err, "a truncated PDF has no text to extract")
}
