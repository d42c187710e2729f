package domain

import "strings"

// DeclaredType is the document format claimed by the ingestion layer.
type DeclaredType string

// Supported declared types.
const (
	// DeclaredTypeText is plain text (also markdown and other text formats).
	DeclaredTypeText DeclaredType = "text"

	// DeclaredTypePDF is a PDF file, or text already extracted from one.
	DeclaredTypePDF DeclaredType = "pdf"

	// DeclaredTypeDOCX is a WordprocessingML document.
	DeclaredTypeDOCX DeclaredType = "docx"

	// DeclaredTypeHTML is an HTML document.
	DeclaredTypeHTML DeclaredType = "html"
)

// IsValid returns true if the declared type is recognised.
func (t DeclaredType) IsValid() bool {
	switch t {
	case DeclaredTypeText, DeclaredTypePDF, DeclaredTypeDOCX, DeclaredTypeHTML:
		return true
	default:
		return false
	}
}

// MIMEType returns the MIME type used to select a normaliser.
func (t DeclaredType) MIMEType() string {
	switch t {
	case DeclaredTypePDF:
		return "application/pdf"
	case DeclaredTypeDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case DeclaredTypeHTML:
		return "text/html"
	default:
		return "text/plain"
	}
}

// DeclaredTypeFromExtension maps a file extension (with or without dot) to a declared type.
// Unknown extensions map to DeclaredTypeText.
func DeclaredTypeFromExtension(ext string) DeclaredType {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "pdf":
		return DeclaredTypePDF
	case "docx":
		return DeclaredTypeDOCX
	case "html", "htm":
		return DeclaredTypeHTML
	default:
		return DeclaredTypeText
	}
}

// RawDocument represents the (content, declared type) pair handed over by ingestion.
// It is owned exclusively by the request that analyses it.
type RawDocument struct {
	// URI is the original location (file path, URL, etc).
	URI string

	// DeclaredType is the claimed format of Content.
	DeclaredType DeclaredType

	// MIMEType is the content type (e.g., "text/plain").
	// When empty it is derived from DeclaredType.
	MIMEType string

	// Content is the raw bytes.
	Content []byte

	// Metadata contains ingestion-specific key-value pairs.
	Metadata map[string]any
}

// ResolvedMIMEType returns MIMEType, or the one implied by DeclaredType.
func (r *RawDocument) ResolvedMIMEType() string {
	if r.MIMEType != "" {
		return r.MIMEType
	}
	return r.DeclaredType.MIMEType()
}
