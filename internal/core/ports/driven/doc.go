// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Normaliser / NormaliserRegistry: Extract text from raw documents
//   - PostProcessorPipeline: Split canonical text into chunks
//   - SectionDetector: Locate policy clause headings
//   - EntityExtractor: Recover structured facts
//   - ComplianceScorer: Score clause completeness and risk
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Summarisation capability. Without it, analysis reports entities and compliance only.
//   - PromptStore: Custom prompt templates. Without it, built-in prompts are used.
//   - MetricsRecorder: Pipeline measurements. Without it, nothing is recorded.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, normaliser or postprocessor package
package driven
