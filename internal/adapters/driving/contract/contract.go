// Package contract validates analysis results against the published JSON Schema
// before a driving adapter emits them.
package contract

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/custodia-labs/polidigest/internal/core/domain"
)

const schemaURL = "analysis-result.schema.json"

//go:embed result.schema.json
var schemaJSON []byte

var compiled = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
})

// Schema returns the raw JSON Schema document.
func Schema() []byte {
	return bytes.Clone(schemaJSON)
}

// ValidateJSON checks an encoded result against the schema.
func ValidateJSON(data []byte) error {
	schema, err := compiled()
	if err != nil {
		return err
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal result: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("result does not match schema: %w", err)
	}
	return nil
}

// Validate encodes result and checks it against the schema.
func Validate(result *domain.AnalysisResult) error {
	_, err := Marshal(result)
	return err
}

// Marshal encodes result as indented JSON and validates it.
// Nothing is returned when validation fails.
func Marshal(result *domain.AnalysisResult) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("%w: nil result", domain.ErrInvalidInput)
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	if err := ValidateJSON(data); err != nil {
		return nil, err
	}
	return data, nil
}
