// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The Summariser fans chunk summaries out over the summarisation capability
// and reduces them to one structured summary; AnalysisService wraps it with
// text extraction, entity extraction and compliance scoring.
package services
