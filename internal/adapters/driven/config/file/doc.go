// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data under the user's config directory (~/.polidigest).
//
// Adapters:
//   - ConfigStore: TOML settings with dot-notation keys
//   - PromptStore: user-editable prompt templates
//
// Rule overrides (entities.toml, compliance.toml) sit next to config.toml
// and are read through ConfigStore.ReadSibling.
package file
