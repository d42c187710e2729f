// Package mcp provides an MCP (Model Context Protocol) server adapter for polidigest.
// It lets AI assistants summarise policy documents and query their entities and compliance.
package mcp

import "errors"

// ErrMissingAnalysisService is returned when the analysis service is not provided.
var ErrMissingAnalysisService = errors.New("mcp: analysis service is required")

// ErrNoDocument is returned when a tool call carries neither text nor a path.
var ErrNoDocument = errors.New("mcp: either text or path is required")
