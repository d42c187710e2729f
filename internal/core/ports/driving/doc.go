// Package driving defines the interfaces the CLI and MCP server call into.
// These are the "driving" ports in hexagonal architecture terminology:
// AnalysisService runs the policy pipeline and SettingsService manages
// configuration.
//
// Implementations of these interfaces live in internal/core/services.
package driving
