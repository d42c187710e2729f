package mcp

import (
	"net/http"

	"github.com/custodia-labs/polidigest/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Analysis runs the document pipeline.
	Analysis driving.AnalysisService

	// Metrics serves Prometheus metrics next to the HTTP transport. Optional.
	Metrics http.Handler
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Analysis == nil {
		return ErrMissingAnalysisService
	}
	return nil
}
