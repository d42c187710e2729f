package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/polidigest/internal/adapters/driving/contract"
)

const (
	// uriScheme is the custom URI scheme for polidigest resources.
	uriScheme = "polidigest://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Provider, model and limits the analysis service runs with.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "status",
		Name:        "status",
		Description: "Summarisation provider, target length, timeout and supported formats",
		MIMEType:    "application/json",
	}, s.handleStatusResource)

	// JSON Schema of the analysis result.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "schema/analysis-result",
		Name:        "analysis-result-schema",
		Description: "JSON Schema every analysis result conforms to",
		MIMEType:    "application/schema+json",
	}, s.handleSchemaResource)
}

// handleStatusResource returns the analysis service status.
func (s *Server) handleStatusResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(s.ports.Analysis.Status(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling status: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleSchemaResource returns the result contract.
func (s *Server) handleSchemaResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/schema+json",
			Text:     string(contract.Schema()),
		}},
	}, nil
}
